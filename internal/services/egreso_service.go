package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visionarieshub/portal-api/internal/constants"
	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEgresoNotFound   = errors.New("egreso not found")
	ErrConceptoFaltante = errors.New("concepto is required")
	ErrCSVHeaders       = errors.New("CSV does not contain the expected headers")
)

// historicalCSVHeaders is the fixed header row of the historical import.
var historicalCSVHeaders = []string{
	"Línea de negocio", "Categoría", "Empresa", "Equipo", "Concepto",
	"Subtotal", "IVA", "Total", "Tipo", "Mes", "Status",
	"Factura", "Comprobante", "Fecha pago",
}

// mesesES maps a Go month to its Spanish name, used for the "Mes" bucket.
var mesesES = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MesActual returns the current month bucket, e.g. "Agosto 2026".
func MesActual(now time.Time) string {
	return fmt.Sprintf("%s %d", mesesES[now.Month()-1], now.Year())
}

// EgresoService handles expense business logic
type EgresoService struct {
	egresoRepo  repository.EgresoRepository
	precioRepo  repository.PrecioPorHoraRepository
	taskRepo    repository.TeamTaskRepository
	featureRepo repository.FeatureRepository
}

// NewEgresoService creates a new EgresoService
func NewEgresoService(
	egresoRepo repository.EgresoRepository,
	precioRepo repository.PrecioPorHoraRepository,
	taskRepo repository.TeamTaskRepository,
	featureRepo repository.FeatureRepository,
) *EgresoService {
	return &EgresoService{
		egresoRepo:  egresoRepo,
		precioRepo:  precioRepo,
		taskRepo:    taskRepo,
		featureRepo: featureRepo,
	}
}

// CalcularIVA derives iva and total from a subtotal. IVA is 16% when
// applied, zero otherwise; totals are rounded to centavos.
func CalcularIVA(subtotal float64, aplicarIva bool) (iva, total float64) {
	if aplicarIva {
		iva = roundCentavos(subtotal * constants.IVARate)
	}
	return iva, roundCentavos(subtotal + iva)
}

func roundCentavos(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateEgresoInput represents input for creating an egreso
type CreateEgresoInput struct {
	LineaNegocio   string
	Categoria      string
	Empresa        string
	ClienteID      string
	Equipo         string
	Concepto       string
	Subtotal       float64
	AplicarIVA     bool
	Tipo           models.EgresoTipo
	Mes            string
	Status         models.EgresoStatus
	FacturaURL     string
	ComprobanteURL string
	FechaPago      string
	CreatedBy      string
}

// CreateEgreso creates an expense, deriving iva/total server-side.
func (s *EgresoService) CreateEgreso(input CreateEgresoInput) (*models.Egreso, error) {
	if strings.TrimSpace(input.Concepto) == "" {
		return nil, ErrConceptoFaltante
	}
	if input.Tipo == "" {
		input.Tipo = models.EgresoVariable
	}
	if input.Status == "" {
		input.Status = models.EgresoPendiente
	}
	if input.Mes == "" {
		input.Mes = MesActual(time.Now())
	}

	iva, total := CalcularIVA(input.Subtotal, input.AplicarIVA)

	egreso := &models.Egreso{
		ID:                 uuid.New().String(),
		LineaNegocio:       input.LineaNegocio,
		Categoria:          input.Categoria,
		Empresa:            input.Empresa,
		EmpresaNormalizada: NormalizarEmpresa(input.Empresa),
		ClienteID:          input.ClienteID,
		Equipo:             input.Equipo,
		Concepto:           strings.TrimSpace(input.Concepto),
		Subtotal:           roundCentavos(input.Subtotal),
		IVA:                iva,
		Total:              total,
		Tipo:               input.Tipo,
		Mes:                input.Mes,
		Status:             input.Status,
		FacturaURL:         input.FacturaURL,
		ComprobanteURL:     input.ComprobanteURL,
		FechaPago:          input.FechaPago,
		CreatedBy:          input.CreatedBy,
	}

	if err := s.egresoRepo.Create(egreso); err != nil {
		return nil, fmt.Errorf("failed to create egreso: %w", err)
	}

	return egreso, nil
}

// NormalizarEmpresa canonicalizes a company name for grouping.
func NormalizarEmpresa(empresa string) string {
	normalized := strings.ToUpper(strings.TrimSpace(empresa))
	normalized = strings.Join(strings.Fields(normalized), " ")
	return normalized
}

// GetEgreso returns an egreso by id
func (s *EgresoService) GetEgreso(id string) (*models.Egreso, error) {
	egreso, err := s.egresoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEgresoNotFound
		}
		return nil, fmt.Errorf("failed to find egreso: %w", err)
	}
	return egreso, nil
}

// ListEgresos returns egresos matching the filter
func (s *EgresoService) ListEgresos(filter repository.EgresoFilter) ([]models.Egreso, error) {
	egresos, err := s.egresoRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list egresos: %w", err)
	}
	return egresos, nil
}

// UpdateEgresoInput represents a partial egreso update
type UpdateEgresoInput struct {
	LineaNegocio   *string
	Categoria      *string
	Empresa        *string
	Equipo         *string
	Concepto       *string
	Subtotal       *float64
	AplicarIVA     *bool
	Tipo           *models.EgresoTipo
	Mes            *string
	Status         *models.EgresoStatus
	FacturaURL     *string
	ComprobanteURL *string
	FechaPago      *string
}

// UpdateEgreso applies a partial update, recomputing iva/total whenever the
// subtotal or the IVA toggle changes.
func (s *EgresoService) UpdateEgreso(id string, input UpdateEgresoInput) (*models.Egreso, error) {
	egreso, err := s.GetEgreso(id)
	if err != nil {
		return nil, err
	}

	if input.LineaNegocio != nil {
		egreso.LineaNegocio = *input.LineaNegocio
	}
	if input.Categoria != nil {
		egreso.Categoria = *input.Categoria
	}
	if input.Empresa != nil {
		egreso.Empresa = *input.Empresa
		egreso.EmpresaNormalizada = NormalizarEmpresa(*input.Empresa)
	}
	if input.Equipo != nil {
		egreso.Equipo = *input.Equipo
	}
	if input.Concepto != nil {
		if strings.TrimSpace(*input.Concepto) == "" {
			return nil, ErrConceptoFaltante
		}
		egreso.Concepto = strings.TrimSpace(*input.Concepto)
	}
	if input.Tipo != nil {
		egreso.Tipo = *input.Tipo
	}
	if input.Mes != nil {
		egreso.Mes = *input.Mes
	}
	if input.Status != nil {
		egreso.Status = *input.Status
	}
	if input.FacturaURL != nil {
		egreso.FacturaURL = *input.FacturaURL
	}
	if input.ComprobanteURL != nil {
		egreso.ComprobanteURL = *input.ComprobanteURL
	}
	if input.FechaPago != nil {
		egreso.FechaPago = *input.FechaPago
	}

	if input.Subtotal != nil || input.AplicarIVA != nil {
		subtotal := egreso.Subtotal
		if input.Subtotal != nil {
			subtotal = *input.Subtotal
		}
		aplicarIva := egreso.IVA > 0
		if input.AplicarIVA != nil {
			aplicarIva = *input.AplicarIVA
		}
		egreso.Subtotal = roundCentavos(subtotal)
		egreso.IVA, egreso.Total = CalcularIVA(subtotal, aplicarIva)
	}

	if err := s.egresoRepo.Update(egreso); err != nil {
		return nil, fmt.Errorf("failed to update egreso: %w", err)
	}

	return egreso, nil
}

// DeleteEgreso deletes an egreso
func (s *EgresoService) DeleteEgreso(id string) error {
	if _, err := s.GetEgreso(id); err != nil {
		return err
	}
	if err := s.egresoRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete egreso: %w", err)
	}
	return nil
}

// HistoricalImportResult summarizes a historical CSV upload.
type HistoricalImportResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// ImportHistoricalCSV loads legacy expense rows from the fixed-format CSV.
// Rows with an unparseable amount are reported and skipped.
func (s *EgresoService) ImportHistoricalCSV(r io.Reader, createdBy string) (*HistoricalImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyCSV
	}

	headers := records[0]
	if len(headers) > 0 {
		// Strip a UTF-8 BOM exported by Excel
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range historicalCSVHeaders[:11] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: falta la columna %q", ErrCSVHeaders, required)
		}
	}

	get := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &HistoricalImportResult{Errors: []string{}}
	for rowIdx, record := range records[1:] {
		subtotal, err := parseMonto(get(record, "Subtotal"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: subtotal inválido", rowIdx+2))
			continue
		}
		iva, err := parseMonto(get(record, "IVA"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: IVA inválido", rowIdx+2))
			continue
		}
		total, err := parseMonto(get(record, "Total"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: total inválido", rowIdx+2))
			continue
		}

		empresa := get(record, "Empresa")
		egreso := &models.Egreso{
			ID:                 uuid.New().String(),
			LineaNegocio:       get(record, "Línea de negocio"),
			Categoria:          get(record, "Categoría"),
			Empresa:            empresa,
			EmpresaNormalizada: NormalizarEmpresa(empresa),
			Equipo:             get(record, "Equipo"),
			Concepto:           get(record, "Concepto"),
			Subtotal:           subtotal,
			IVA:                iva,
			Total:              total,
			Tipo:               models.EgresoTipo(get(record, "Tipo")),
			Mes:                get(record, "Mes"),
			Status:             models.EgresoStatus(get(record, "Status")),
			FacturaURL:         get(record, "Factura"),
			ComprobanteURL:     get(record, "Comprobante"),
			FechaPago:          get(record, "Fecha pago"),
			CreatedBy:          createdBy,
		}

		if err := s.egresoRepo.Create(egreso); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %v", rowIdx+2, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// parseMonto accepts "1,336.50", "$1336.5" and plain numbers.
func parseMonto(value string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	if cleaned == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cleaned, 64)
}

// AutoGenerateResult summarizes an automatic generation run.
type AutoGenerateResult struct {
	Mes               string           `json:"mes"`
	Creados           int              `json:"creados"`
	ResumenPorPersona []PersonaResumen `json:"resumen_por_persona"`
	Errores           []string         `json:"errores"`
	Mensaje           string           `json:"mensaje,omitempty"`
}

// PersonaResumen is the per-person count of generated egresos.
type PersonaResumen struct {
	Persona string `json:"persona"`
	Creados int    `json:"creados"`
}

// GenerateAutomatic derives hour-based egresos for the current month from
// every completed, time-tracked task and feature of each person with a
// configured hourly rate. A source task/feature that already produced an
// egreso this month is never billed twice.
func (s *EgresoService) GenerateAutomatic(now time.Time, createdBy string) (*AutoGenerateResult, error) {
	mes := MesActual(now)
	result := &AutoGenerateResult{Mes: mes, ResumenPorPersona: []PersonaResumen{}, Errores: []string{}}

	precios, err := s.precioRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load hourly rates: %w", err)
	}
	if len(precios) == 0 {
		result.Mensaje = "No hay precios por hora configurados"
		return result, nil
	}

	existentes, err := s.egresoRepo.ListByMes(mes)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing egresos: %w", err)
	}
	yaGenerado := make(map[string]bool)
	for _, e := range existentes {
		if e.TareaID != nil {
			yaGenerado[fmt.Sprintf("team-task-%d", *e.TareaID)] = true
		}
		if e.FeatureID != nil {
			yaGenerado[fmt.Sprintf("feature-%s", *e.FeatureID)] = true
		}
	}

	for _, precio := range precios {
		creados := 0

		tasks, err := s.taskRepo.ListCompletedByAssignee(precio.PersonaEmail)
		if err != nil {
			result.Errores = append(result.Errores,
				fmt.Sprintf("Error obteniendo tareas para %s: %v", precio.PersonaEmail, err))
			continue
		}
		for i := range tasks {
			task := &tasks[i]
			if task.ActualHours <= 0 || yaGenerado[fmt.Sprintf("team-task-%d", task.ID)] {
				continue
			}
			egreso := s.buildHourEgreso(precio, mes, createdBy, task.Title, task.ActualHours)
			egreso.TareaID = &task.ID
			if err := s.egresoRepo.Create(egreso); err != nil {
				result.Errores = append(result.Errores, fmt.Sprintf("%s: %v", task.Title, err))
				continue
			}
			creados++
		}

		features, err := s.featureRepo.ListCompletedByAssignee(precio.PersonaEmail)
		if err != nil {
			result.Errores = append(result.Errores,
				fmt.Sprintf("Error obteniendo funcionalidades para %s: %v", precio.PersonaEmail, err))
		} else {
			for i := range features {
				feature := &features[i]
				if feature.ActualHours <= 0 || yaGenerado[fmt.Sprintf("feature-%s", feature.ID)] {
					continue
				}
				egreso := s.buildHourEgreso(precio, mes, createdBy, feature.Title, feature.ActualHours)
				egreso.FeatureID = &feature.ID
				if err := s.egresoRepo.Create(egreso); err != nil {
					result.Errores = append(result.Errores, fmt.Sprintf("%s: %v", feature.Title, err))
					continue
				}
				creados++
			}
		}

		if creados > 0 {
			result.ResumenPorPersona = append(result.ResumenPorPersona, PersonaResumen{
				Persona: precio.PersonaEmail,
				Creados: creados,
			})
		}
		result.Creados += creados
	}

	logging.Logger.Infof("Generated %d automatic egresos for %s", result.Creados, mes)
	return result, nil
}

func (s *EgresoService) buildHourEgreso(precio models.PrecioPorHora, mes, createdBy, tarea string, horas float64) *models.Egreso {
	subtotal := roundCentavos(horas * precio.PrecioPorHora)
	return &models.Egreso{
		ID:            uuid.New().String(),
		LineaNegocio:  "Equipo",
		Categoria:     "Horas",
		Equipo:        precio.PersonaNombre,
		Concepto:      fmt.Sprintf("%s - %s (%s)", precio.PersonaNombre, tarea, mes),
		Subtotal:      subtotal,
		IVA:           0,
		Total:         subtotal,
		Tipo:          models.EgresoVariable,
		Mes:           mes,
		Status:        models.EgresoPendiente,
		Persona:       precio.PersonaEmail,
		Tarea:         tarea,
		Horas:         horas,
		PrecioPorHora: precio.PrecioPorHora,
		CreatedBy:     createdBy,
	}
}

// Diagnostico reports the state of the automatic-generation inputs without
// writing anything.
type Diagnostico struct {
	PreciosConfigurados   int      `json:"precios_configurados"`
	TareasSinHoras        []string `json:"tareas_sin_horas"`
	TareasFacturables     int      `json:"tareas_facturables"`
	FeaturesFacturables   int      `json:"features_facturables"`
	EgresosGeneradosEnMes int      `json:"egresos_generados_en_mes"`
}

// RunDiagnostico inspects completed work against configured rates.
func (s *EgresoService) RunDiagnostico(now time.Time) (*Diagnostico, error) {
	diag := &Diagnostico{TareasSinHoras: []string{}}

	precios, err := s.precioRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load hourly rates: %w", err)
	}
	diag.PreciosConfigurados = len(precios)

	existentes, err := s.egresoRepo.ListByMes(MesActual(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing egresos: %w", err)
	}
	for _, e := range existentes {
		if e.TareaID != nil || e.FeatureID != nil {
			diag.EgresosGeneradosEnMes++
		}
	}

	for _, precio := range precios {
		tasks, err := s.taskRepo.ListCompletedByAssignee(precio.PersonaEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to load tasks for %s: %w", precio.PersonaEmail, err)
		}
		for _, task := range tasks {
			if task.ActualHours > 0 {
				diag.TareasFacturables++
			} else if task.AccumulatedTime > 0 {
				diag.TareasSinHoras = append(diag.TareasSinHoras, task.Title)
			}
		}

		features, err := s.featureRepo.ListCompletedByAssignee(precio.PersonaEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to load features for %s: %w", precio.PersonaEmail, err)
		}
		for _, feature := range features {
			if feature.ActualHours > 0 {
				diag.FeaturesFacturables++
			}
		}
	}

	return diag, nil
}

// FixHoursResult reports the backfill outcome.
type FixHoursResult struct {
	Fixed  int      `json:"fixed"`
	Errors []string `json:"errors"`
}

// FixCompletedTaskHours backfills actualHours from accumulated timer seconds
// on completed tasks that tracked time but never got hours written.
func (s *EgresoService) FixCompletedTaskHours() (*FixHoursResult, error) {
	status := models.TeamTaskStatusCompleted
	tasks, _, err := s.taskRepo.List(repository.TeamTaskFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}

	result := &FixHoursResult{Errors: []string{}}
	for i := range tasks {
		task := &tasks[i]
		if task.ActualHours > 0 || task.AccumulatedTime <= 0 {
			continue
		}
		task.ActualHours = RoundHours(task.AccumulatedTime)
		if err := s.taskRepo.Update(task); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", task.Title, err))
			continue
		}
		result.Fixed++
	}

	return result, nil
}
