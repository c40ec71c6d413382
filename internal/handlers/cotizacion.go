package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// CotizacionHandler coordinates quote HTTP handlers.
type CotizacionHandler struct {
	cotizacionService *services.CotizacionService
}

// NewCotizacionHandler creates a new CotizacionHandler.
func NewCotizacionHandler(cotizacionService *services.CotizacionService) *CotizacionHandler {
	return &CotizacionHandler{
		cotizacionService: cotizacionService,
	}
}

// CreateCotizacion creates a quote in Borrador.
func (h *CotizacionHandler) CreateCotizacion(c *gin.Context) {
	type CreateCotizacionRequest struct {
		Titulo        string          `json:"titulo" binding:"required,max=255"`
		ClienteID     string          `json:"cliente_id"`
		ClienteNombre string          `json:"cliente_nombre"`
		TipoProyecto  string          `json:"tipo_proyecto"`
		Descripcion   string          `json:"descripcion"`
		Alcance       models.Alcance  `json:"alcance"`
		Desglose      models.Desglose `json:"desglose"`
	}

	var req CreateCotizacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	cotizacion, err := h.cotizacionService.CreateCotizacion(services.CreateCotizacionInput{
		Titulo:        req.Titulo,
		ClienteID:     req.ClienteID,
		ClienteNombre: req.ClienteNombre,
		TipoProyecto:  req.TipoProyecto,
		Descripcion:   req.Descripcion,
		Alcance:       req.Alcance,
		Desglose:      req.Desglose,
		CreatedBy:     createdBy,
	})
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cotizacion)
}

// ListCotizaciones returns quotes, optionally filtered by estado.
func (h *CotizacionHandler) ListCotizaciones(c *gin.Context) {
	var estado *models.CotizacionEstado
	if e := c.Query("estado"); e != "" {
		value := models.CotizacionEstado(e)
		estado = &value
	}

	cotizaciones, err := h.cotizacionService.ListCotizaciones(estado)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch cotizaciones")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cotizaciones": cotizaciones})
}

// GetCotizacion returns a single quote.
func (h *CotizacionHandler) GetCotizacion(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	cotizacion, err := h.cotizacionService.GetCotizacion(id)
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, cotizacion)
}

// UpdateCotizacion applies a partial update to a quote.
func (h *CotizacionHandler) UpdateCotizacion(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	type UpdateCotizacionRequest struct {
		Titulo        *string          `json:"titulo"`
		ClienteID     *string          `json:"cliente_id"`
		ClienteNombre *string          `json:"cliente_nombre"`
		TipoProyecto  *string          `json:"tipo_proyecto"`
		Descripcion   *string          `json:"descripcion"`
		Alcance       *models.Alcance  `json:"alcance"`
		Desglose      *models.Desglose `json:"desglose"`
	}

	var req UpdateCotizacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	cotizacion, err := h.cotizacionService.UpdateCotizacion(id, services.UpdateCotizacionInput{
		Titulo:        req.Titulo,
		ClienteID:     req.ClienteID,
		ClienteNombre: req.ClienteNombre,
		TipoProyecto:  req.TipoProyecto,
		Descripcion:   req.Descripcion,
		Alcance:       req.Alcance,
		Desglose:      req.Desglose,
	})
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, cotizacion)
}

// ChangeEstado advances the quote workflow.
func (h *CotizacionHandler) ChangeEstado(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	type ChangeEstadoRequest struct {
		Estado string `json:"estado" binding:"required"`
	}

	var req ChangeEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	cotizacion, err := h.cotizacionService.ChangeEstado(id, models.CotizacionEstado(req.Estado))
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, cotizacion)
}

// UpdateContrato records contract milestones.
func (h *CotizacionHandler) UpdateContrato(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	type UpdateContratoRequest struct {
		ContratoGenerado *bool   `json:"contrato_generado"`
		ContratoURL      *string `json:"contrato_url"`
		ContratoRevisado *bool   `json:"contrato_revisado"`
		EnviadoAFirma    *bool   `json:"enviado_a_firma"`
		EnvelopeID       *string `json:"envelope_id"`
		EnvelopeStatus   *string `json:"envelope_status"`
		Firmado          *bool   `json:"firmado"`
		FirmadoPor       *string `json:"firmado_por"`
	}

	var req UpdateContratoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	cotizacion, err := h.cotizacionService.UpdateContrato(id, services.UpdateContratoInput{
		ContratoGenerado: req.ContratoGenerado,
		ContratoURL:      req.ContratoURL,
		ContratoRevisado: req.ContratoRevisado,
		EnviadoAFirma:    req.EnviadoAFirma,
		EnvelopeID:       req.EnvelopeID,
		EnvelopeStatus:   req.EnvelopeStatus,
		Firmado:          req.Firmado,
		FirmadoPor:       req.FirmadoPor,
	})
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, cotizacion)
}

// ConvertToProject turns a signed quote into a project.
func (h *CotizacionHandler) ConvertToProject(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	type ConvertRequest struct {
		Siglas string `json:"siglas" binding:"required"`
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	project, err := h.cotizacionService.ConvertToProject(id, req.Siglas, createdBy)
	if err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// DeleteCotizacion deletes a quote.
func (h *CotizacionHandler) DeleteCotizacion(c *gin.Context) {
	id, ok := parseCotizacionID(c)
	if !ok {
		return
	}

	if err := h.cotizacionService.DeleteCotizacion(id); err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cotización deleted successfully"})
}

// GetConfig returns the quoting configuration plus derived values.
func (h *CotizacionHandler) GetConfig(c *gin.Context) {
	cfg, err := h.cotizacionService.GetConfig()
	if err != nil {
		apierrors.InternalError(c, "Failed to load config")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config":       cfg,
		"tarifa_arely": services.CalcularTarifaArely(cfg),
	})
}

// SaveConfig validates and persists the quoting configuration.
func (h *CotizacionHandler) SaveConfig(c *gin.Context) {
	var cfg models.CotizacionesConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if errs := services.ValidateConfig(&cfg); len(errs) > 0 {
		apierrors.BadRequestWithDetails(c, "Configuración inválida", errs)
		return
	}

	if err := h.cotizacionService.SaveConfig(&cfg); err != nil {
		respondCotizacionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config":       cfg,
		"tarifa_arely": services.CalcularTarifaArely(&cfg),
	})
}

func parseCotizacionID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid cotización ID")
		return 0, false
	}
	return id, true
}

func respondCotizacionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCotizacionNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTransicionInvalida),
		errors.Is(err, services.ErrCotizacionNoFirmada):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTituloRequerido),
		errors.Is(err, services.ErrSiglasRequeridas),
		errors.Is(err, services.ErrConfigInvalida):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
