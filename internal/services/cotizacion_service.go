package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/visionarieshub/portal-api/internal/constants"
	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCotizacionNotFound  = errors.New("cotización not found")
	ErrTituloRequerido     = errors.New("titulo is required")
	ErrTransicionInvalida  = errors.New("invalid estado transition")
	ErrCotizacionNoFirmada = errors.New("only a signed cotización can be converted")
	ErrSiglasRequeridas    = errors.New("siglas are required to convert a cotización")
	ErrConfigInvalida      = errors.New("invalid cotizaciones config")
)

// estadoTransitions is the allowed estado workflow. Rechazada is reachable
// from every pre-signature state; Convertida only from Firmada.
var estadoTransitions = map[models.CotizacionEstado][]models.CotizacionEstado{
	models.EstadoBorrador:          {models.EstadoEnviada, models.EstadoRechazada},
	models.EstadoEnviada:           {models.EstadoEnRevision, models.EstadoRechazada},
	models.EstadoEnRevision:        {models.EstadoAceptada, models.EstadoRechazada},
	models.EstadoAceptada:          {models.EstadoGenerandoContrato, models.EstadoRechazada},
	models.EstadoGenerandoContrato: {models.EstadoContratoRevision, models.EstadoRechazada},
	models.EstadoContratoRevision:  {models.EstadoEnviadaAFirma, models.EstadoRechazada},
	models.EstadoEnviadaAFirma:     {models.EstadoFirmada, models.EstadoRechazada},
	models.EstadoFirmada:           {models.EstadoConvertida},
	models.EstadoRechazada:         {},
	models.EstadoConvertida:        {},
}

// CanTransition reports whether the estado workflow allows from → to.
func CanTransition(from, to models.CotizacionEstado) bool {
	for _, allowed := range estadoTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CotizacionService handles quote business logic
type CotizacionService struct {
	cotizacionRepo repository.CotizacionRepository
	projectRepo    repository.ProjectRepository
	configRepo     repository.ConfigRepository
}

// NewCotizacionService creates a new CotizacionService
func NewCotizacionService(
	cotizacionRepo repository.CotizacionRepository,
	projectRepo repository.ProjectRepository,
	configRepo repository.ConfigRepository,
) *CotizacionService {
	return &CotizacionService{
		cotizacionRepo: cotizacionRepo,
		projectRepo:    projectRepo,
		configRepo:     configRepo,
	}
}

// CreateCotizacionInput represents input for creating a cotización
type CreateCotizacionInput struct {
	Titulo        string
	ClienteID     string
	ClienteNombre string
	TipoProyecto  string
	Descripcion   string
	Alcance       models.Alcance
	Desglose      models.Desglose
	CreatedBy     string
}

// CreateCotizacion creates a quote in Borrador with a year-scoped folio.
func (s *CotizacionService) CreateCotizacion(input CreateCotizacionInput) (*models.Cotizacion, error) {
	if strings.TrimSpace(input.Titulo) == "" {
		return nil, ErrTituloRequerido
	}

	year := time.Now().Year()
	count, err := s.cotizacionRepo.CountByYear(year)
	if err != nil {
		return nil, fmt.Errorf("failed to count cotizaciones: %w", err)
	}

	desglose := RecomputeDesglose(input.Desglose)

	cotizacion := &models.Cotizacion{
		Folio:         utils.BuildFolio(year, int(count)+1),
		Titulo:        strings.TrimSpace(input.Titulo),
		ClienteID:     input.ClienteID,
		ClienteNombre: input.ClienteNombre,
		TipoProyecto:  input.TipoProyecto,
		Descripcion:   input.Descripcion,
		Estado:        models.EstadoBorrador,
		Alcance:       input.Alcance,
		Desglose:      desglose,
		CreatedBy:     input.CreatedBy,
	}

	if err := s.cotizacionRepo.Create(cotizacion); err != nil {
		return nil, fmt.Errorf("failed to create cotización: %w", err)
	}

	return cotizacion, nil
}

// RecomputeDesglose rebuilds the derived totals from the per-role rows, so
// clients cannot submit a price that disagrees with its own breakdown.
func RecomputeDesglose(d models.Desglose) models.Desglose {
	var horas, costo float64
	for i := range d.Roles {
		rol := &d.Roles[i]
		rol.Total = math.Round(rol.Horas*rol.TarifaPorHora*100) / 100
		horas += rol.Horas
		costo += rol.Total
	}
	if d.Prototipado.Incluido {
		costo += d.Prototipado.Costo
	}
	d.HorasTotales = horas
	d.CostoTotal = math.Round(costo*100) / 100
	if d.Meses > 0 {
		d.Mensualidad = math.Round(d.CostoTotal/float64(d.Meses)*100) / 100
	} else {
		d.Mensualidad = d.CostoTotal
	}
	return d
}

// GetCotizacion returns a cotización by id
func (s *CotizacionService) GetCotizacion(id uint64) (*models.Cotizacion, error) {
	cotizacion, err := s.cotizacionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCotizacionNotFound
		}
		return nil, fmt.Errorf("failed to find cotización: %w", err)
	}
	return cotizacion, nil
}

// ListCotizaciones returns cotizaciones, optionally filtered by estado
func (s *CotizacionService) ListCotizaciones(estado *models.CotizacionEstado) ([]models.Cotizacion, error) {
	cotizaciones, err := s.cotizacionRepo.List(estado)
	if err != nil {
		return nil, fmt.Errorf("failed to list cotizaciones: %w", err)
	}
	return cotizaciones, nil
}

// UpdateCotizacionInput represents a partial cotización update
type UpdateCotizacionInput struct {
	Titulo        *string
	ClienteID     *string
	ClienteNombre *string
	TipoProyecto  *string
	Descripcion   *string
	Alcance       *models.Alcance
	Desglose      *models.Desglose
}

// UpdateCotizacion applies a partial update. Estado changes go through
// ChangeEstado, not here.
func (s *CotizacionService) UpdateCotizacion(id uint64, input UpdateCotizacionInput) (*models.Cotizacion, error) {
	cotizacion, err := s.GetCotizacion(id)
	if err != nil {
		return nil, err
	}

	if input.Titulo != nil {
		if strings.TrimSpace(*input.Titulo) == "" {
			return nil, ErrTituloRequerido
		}
		cotizacion.Titulo = strings.TrimSpace(*input.Titulo)
	}
	if input.ClienteID != nil {
		cotizacion.ClienteID = *input.ClienteID
	}
	if input.ClienteNombre != nil {
		cotizacion.ClienteNombre = *input.ClienteNombre
	}
	if input.TipoProyecto != nil {
		cotizacion.TipoProyecto = *input.TipoProyecto
	}
	if input.Descripcion != nil {
		cotizacion.Descripcion = *input.Descripcion
	}
	if input.Alcance != nil {
		cotizacion.Alcance = *input.Alcance
	}
	if input.Desglose != nil {
		cotizacion.Desglose = RecomputeDesglose(*input.Desglose)
	}

	if err := s.cotizacionRepo.Update(cotizacion); err != nil {
		return nil, fmt.Errorf("failed to update cotización: %w", err)
	}

	return cotizacion, nil
}

// ChangeEstado advances the workflow, rejecting transitions the map does not
// allow.
func (s *CotizacionService) ChangeEstado(id uint64, estado models.CotizacionEstado) (*models.Cotizacion, error) {
	cotizacion, err := s.GetCotizacion(id)
	if err != nil {
		return nil, err
	}

	if cotizacion.Estado == estado {
		return cotizacion, nil
	}
	if !CanTransition(cotizacion.Estado, estado) {
		return nil, fmt.Errorf("%w: %s → %s", ErrTransicionInvalida, cotizacion.Estado, estado)
	}

	cotizacion.Estado = estado
	if err := s.cotizacionRepo.Update(cotizacion); err != nil {
		return nil, fmt.Errorf("failed to update cotización: %w", err)
	}

	logging.Logger.Infof("Cotización %s moved to estado %s", cotizacion.Folio, estado)
	return cotizacion, nil
}

// UpdateContratoInput mutates contract-tracking state. Setting a milestone
// also advances the estado when the workflow allows it.
type UpdateContratoInput struct {
	ContratoGenerado *bool
	ContratoURL      *string
	ContratoRevisado *bool
	EnviadoAFirma    *bool
	EnvelopeID       *string
	EnvelopeStatus   *string
	Firmado          *bool
	FirmadoPor       *string
}

// UpdateContrato records contract milestones on the quote.
func (s *CotizacionService) UpdateContrato(id uint64, input UpdateContratoInput) (*models.Cotizacion, error) {
	cotizacion, err := s.GetCotizacion(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().Format("2006-01-02")

	if input.ContratoGenerado != nil {
		cotizacion.Contrato.ContratoGenerado = *input.ContratoGenerado
		if *input.ContratoGenerado && CanTransition(cotizacion.Estado, models.EstadoContratoRevision) {
			cotizacion.Estado = models.EstadoContratoRevision
		}
	}
	if input.ContratoURL != nil {
		cotizacion.Contrato.ContratoURL = *input.ContratoURL
	}
	if input.ContratoRevisado != nil {
		cotizacion.Contrato.ContratoRevisado = *input.ContratoRevisado
	}
	if input.EnviadoAFirma != nil && *input.EnviadoAFirma {
		cotizacion.Contrato.EnviadoAFirma = true
		cotizacion.Contrato.FechaEnvioFirma = now
		if CanTransition(cotizacion.Estado, models.EstadoEnviadaAFirma) {
			cotizacion.Estado = models.EstadoEnviadaAFirma
		}
	}
	if input.EnvelopeID != nil {
		cotizacion.Contrato.EnvelopeID = *input.EnvelopeID
	}
	if input.EnvelopeStatus != nil {
		cotizacion.Contrato.EnvelopeStatus = *input.EnvelopeStatus
	}
	if input.Firmado != nil && *input.Firmado {
		cotizacion.Contrato.FechaFirmado = now
		if input.FirmadoPor != nil {
			cotizacion.Contrato.FirmadoPor = *input.FirmadoPor
		}
		if CanTransition(cotizacion.Estado, models.EstadoFirmada) {
			cotizacion.Estado = models.EstadoFirmada
		}
	}

	if err := s.cotizacionRepo.Update(cotizacion); err != nil {
		return nil, fmt.Errorf("failed to update cotización: %w", err)
	}

	return cotizacion, nil
}

// ConvertToProject turns a signed quote into a project and marks the quote
// Convertida.
func (s *CotizacionService) ConvertToProject(id uint64, siglas string, createdBy string) (*models.Project, error) {
	cotizacion, err := s.GetCotizacion(id)
	if err != nil {
		return nil, err
	}
	if cotizacion.Estado != models.EstadoFirmada {
		return nil, ErrCotizacionNoFirmada
	}
	siglas = strings.ToUpper(strings.TrimSpace(siglas))
	if siglas == "" {
		return nil, ErrSiglasRequeridas
	}

	project := &models.Project{
		Name:      cotizacion.Titulo,
		Siglas:    siglas,
		Phase:     1,
		ClienteID: cotizacion.ClienteID,
		Status:    models.ProjectStatusActivo,
		CreatedBy: createdBy,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	cotizacion.Estado = models.EstadoConvertida
	cotizacion.ProjectID = &project.ID
	if err := s.cotizacionRepo.Update(cotizacion); err != nil {
		return nil, fmt.Errorf("failed to update cotización: %w", err)
	}

	logging.Logger.Infof("Cotización %s converted into project %d (%s)", cotizacion.Folio, project.ID, siglas)
	return project, nil
}

// DeleteCotizacion deletes a cotización
func (s *CotizacionService) DeleteCotizacion(id uint64) error {
	if _, err := s.GetCotizacion(id); err != nil {
		return err
	}
	if err := s.cotizacionRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete cotización: %w", err)
	}
	return nil
}

// GetConfig returns the quoting configuration, falling back to defaults.
func (s *CotizacionService) GetConfig() (*models.CotizacionesConfig, error) {
	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// SaveConfig validates and persists the quoting configuration.
func (s *CotizacionService) SaveConfig(cfg *models.CotizacionesConfig) error {
	if errs := ValidateConfig(cfg); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalida, strings.Join(errs, "; "))
	}
	if err := s.configRepo.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ValidateConfig returns every rule violation in the configuration; an empty
// slice means the config is valid.
func ValidateConfig(cfg *models.CotizacionesConfig) []string {
	var errs []string

	if sum := cfg.Porcentajes.Sum(); math.Abs(sum-100) > constants.PercentSumTolerance {
		errs = append(errs, fmt.Sprintf("los porcentajes deben sumar 100%% (actual: %.2f%%)", sum))
	}
	if cfg.Tarifas.GabyMin < constants.MinGabyRate {
		errs = append(errs, fmt.Sprintf("la tarifa mínima de Gaby debe ser al menos $%.0f/hora", float64(constants.MinGabyRate)))
	}
	if cfg.Porcentajes.Desarrollador < constants.MinDeveloperPercent {
		errs = append(errs, fmt.Sprintf("el porcentaje de desarrollador debe ser al menos %d%%", constants.MinDeveloperPercent))
	}
	if cfg.Tarifas.DesarrolladorMin <= 0 {
		errs = append(errs, "la tarifa mínima de desarrollador debe ser positiva")
	}
	if cfg.Reglas.MensualidadMinima <= 0 {
		errs = append(errs, "la mensualidad mínima debe ser positiva")
	}
	if cfg.Reglas.TipoCambioUSD <= 0 {
		errs = append(errs, "el tipo de cambio debe ser positivo")
	}

	return errs
}

// CalcularTarifaArely derives Arely's hourly rate from the developer minimum
// and the configured percentage split.
func CalcularTarifaArely(cfg *models.CotizacionesConfig) float64 {
	if cfg.Porcentajes.Desarrollador == 0 {
		return 0
	}
	return cfg.Tarifas.DesarrolladorMin * cfg.Porcentajes.Arely / cfg.Porcentajes.Desarrollador
}
