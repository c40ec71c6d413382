package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/services"
	"gorm.io/gorm"
)

// EgresoHandler coordinates expense HTTP handlers.
type EgresoHandler struct {
	egresoService *services.EgresoService
	precioRepo    repository.PrecioPorHoraRepository
}

// NewEgresoHandler creates a new EgresoHandler.
func NewEgresoHandler(egresoService *services.EgresoService, precioRepo repository.PrecioPorHoraRepository) *EgresoHandler {
	return &EgresoHandler{
		egresoService: egresoService,
		precioRepo:    precioRepo,
	}
}

// CreateEgreso creates an expense.
func (h *EgresoHandler) CreateEgreso(c *gin.Context) {
	type CreateEgresoRequest struct {
		LineaNegocio   string  `json:"linea_negocio"`
		Categoria      string  `json:"categoria"`
		Empresa        string  `json:"empresa"`
		ClienteID      string  `json:"cliente_id"`
		Equipo         string  `json:"equipo"`
		Concepto       string  `json:"concepto" binding:"required"`
		Subtotal       float64 `json:"subtotal" binding:"required"`
		AplicarIVA     bool    `json:"aplicar_iva"`
		Tipo           string  `json:"tipo"`
		Mes            string  `json:"mes"`
		Status         string  `json:"status"`
		FacturaURL     string  `json:"factura_url"`
		ComprobanteURL string  `json:"comprobante_url"`
		FechaPago      string  `json:"fecha_pago"`
	}

	var req CreateEgresoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	egreso, err := h.egresoService.CreateEgreso(services.CreateEgresoInput{
		LineaNegocio:   req.LineaNegocio,
		Categoria:      req.Categoria,
		Empresa:        req.Empresa,
		ClienteID:      req.ClienteID,
		Equipo:         req.Equipo,
		Concepto:       req.Concepto,
		Subtotal:       req.Subtotal,
		AplicarIVA:     req.AplicarIVA,
		Tipo:           models.EgresoTipo(req.Tipo),
		Mes:            req.Mes,
		Status:         models.EgresoStatus(req.Status),
		FacturaURL:     req.FacturaURL,
		ComprobanteURL: req.ComprobanteURL,
		FechaPago:      req.FechaPago,
		CreatedBy:      createdBy,
	})
	if err != nil {
		respondEgresoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, egreso)
}

// ListEgresos returns expenses with optional filters.
func (h *EgresoHandler) ListEgresos(c *gin.Context) {
	filter := repository.EgresoFilter{}

	if status := c.Query("status"); status != "" {
		s := models.EgresoStatus(status)
		filter.Status = &s
	}
	if tipo := c.Query("tipo"); tipo != "" {
		t := models.EgresoTipo(tipo)
		filter.Tipo = &t
	}
	if mes := c.Query("mes"); mes != "" {
		filter.Mes = &mes
	}
	if categoria := c.Query("categoria"); categoria != "" {
		filter.Categoria = &categoria
	}
	if linea := c.Query("linea_negocio"); linea != "" {
		filter.LineaNegocio = &linea
	}
	filter.BasadoEnHoras = c.Query("basado_en_horas") == "true"

	egresos, err := h.egresoService.ListEgresos(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch egresos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"egresos": egresos})
}

// GetEgreso returns a single expense.
func (h *EgresoHandler) GetEgreso(c *gin.Context) {
	egreso, err := h.egresoService.GetEgreso(c.Param("id"))
	if err != nil {
		respondEgresoError(c, err)
		return
	}

	c.JSON(http.StatusOK, egreso)
}

// UpdateEgreso applies a partial update to an expense.
func (h *EgresoHandler) UpdateEgreso(c *gin.Context) {
	type UpdateEgresoRequest struct {
		LineaNegocio   *string  `json:"linea_negocio"`
		Categoria      *string  `json:"categoria"`
		Empresa        *string  `json:"empresa"`
		Equipo         *string  `json:"equipo"`
		Concepto       *string  `json:"concepto"`
		Subtotal       *float64 `json:"subtotal"`
		AplicarIVA     *bool    `json:"aplicar_iva"`
		Tipo           *string  `json:"tipo"`
		Mes            *string  `json:"mes"`
		Status         *string  `json:"status"`
		FacturaURL     *string  `json:"factura_url"`
		ComprobanteURL *string  `json:"comprobante_url"`
		FechaPago      *string  `json:"fecha_pago"`
	}

	var req UpdateEgresoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateEgresoInput{
		LineaNegocio:   req.LineaNegocio,
		Categoria:      req.Categoria,
		Empresa:        req.Empresa,
		Equipo:         req.Equipo,
		Concepto:       req.Concepto,
		Subtotal:       req.Subtotal,
		AplicarIVA:     req.AplicarIVA,
		Mes:            req.Mes,
		FacturaURL:     req.FacturaURL,
		ComprobanteURL: req.ComprobanteURL,
		FechaPago:      req.FechaPago,
	}
	if req.Tipo != nil {
		tipo := models.EgresoTipo(*req.Tipo)
		input.Tipo = &tipo
	}
	if req.Status != nil {
		status := models.EgresoStatus(*req.Status)
		input.Status = &status
	}

	egreso, err := h.egresoService.UpdateEgreso(c.Param("id"), input)
	if err != nil {
		respondEgresoError(c, err)
		return
	}

	c.JSON(http.StatusOK, egreso)
}

// DeleteEgreso deletes an expense.
func (h *EgresoHandler) DeleteEgreso(c *gin.Context) {
	if err := h.egresoService.DeleteEgreso(c.Param("id")); err != nil {
		respondEgresoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Egreso deleted successfully"})
}

// UploadHistorical loads legacy expenses from a CSV export.
func (h *EgresoHandler) UploadHistorical(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "CSV file is required")
		return
	}
	defer file.Close()

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	result, err := h.egresoService.ImportHistoricalCSV(file, createdBy)
	if err != nil {
		respondEgresoError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateAutomatic derives hour-based egresos for the current month.
func (h *EgresoHandler) GenerateAutomatic(c *gin.Context) {
	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	result, err := h.egresoService.GenerateAutomatic(time.Now(), createdBy)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate egresos")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Diagnostico inspects the automatic-generation inputs.
func (h *EgresoHandler) Diagnostico(c *gin.Context) {
	diag, err := h.egresoService.RunDiagnostico(time.Now())
	if err != nil {
		apierrors.InternalError(c, "Failed to run diagnóstico")
		return
	}

	c.JSON(http.StatusOK, diag)
}

// FixCompletedTaskHours backfills actual hours on completed tasks.
func (h *EgresoHandler) FixCompletedTaskHours(c *gin.Context) {
	result, err := h.egresoService.FixCompletedTaskHours()
	if err != nil {
		apierrors.InternalError(c, "Failed to fix task hours")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPrecios returns the configured hourly rates.
func (h *EgresoHandler) ListPrecios(c *gin.Context) {
	precios, err := h.precioRepo.ListAll()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch hourly rates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"precios": precios})
}

// SavePrecio creates or updates a person's hourly rate.
func (h *EgresoHandler) SavePrecio(c *gin.Context) {
	type SavePrecioRequest struct {
		ID            uint64  `json:"id"`
		PersonaNombre string  `json:"persona_nombre" binding:"required"`
		PersonaEmail  string  `json:"persona_email" binding:"required,email"`
		PrecioPorHora float64 `json:"precio_por_hora" binding:"required,gt=0"`
	}

	var req SavePrecioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	precio := &models.PrecioPorHora{
		ID:            req.ID,
		PersonaNombre: req.PersonaNombre,
		PersonaEmail:  req.PersonaEmail,
		PrecioPorHora: req.PrecioPorHora,
	}

	if req.ID == 0 {
		if err := h.precioRepo.Create(precio); err != nil {
			apierrors.InternalError(c, "Failed to create hourly rate")
			return
		}
		c.JSON(http.StatusCreated, precio)
		return
	}

	if err := h.precioRepo.Update(precio); err != nil {
		apierrors.InternalError(c, "Failed to update hourly rate")
		return
	}
	c.JSON(http.StatusOK, precio)
}

// DeletePrecio removes a person's hourly rate.
func (h *EgresoHandler) DeletePrecio(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid rate ID")
		return
	}

	if _, err := h.precioRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Hourly rate not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if err := h.precioRepo.Delete(id); err != nil {
		apierrors.InternalError(c, "Failed to delete hourly rate")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hourly rate deleted successfully"})
}

func respondEgresoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEgresoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConceptoFaltante),
		errors.Is(err, services.ErrCSVHeaders),
		errors.Is(err, services.ErrEmptyCSV):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
