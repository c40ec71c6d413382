package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrFeatureNotFound    = errors.New("feature not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrFeatureTerminal    = errors.New("feature is done or completed and can no longer be edited or deleted")
	ErrEpicTitleRequired  = errors.New("epic title is required")
	ErrNoFeaturesSelected = errors.New("at least one feature id is required")
	ErrEmptyCSV           = errors.New("CSV file has no data rows")
)

// FeatureService handles feature business logic
type FeatureService struct {
	featureRepo repository.FeatureRepository
	projectRepo repository.ProjectRepository
	qaRepo      repository.QATaskRepository
	aiService   *AIService
}

// NewFeatureService creates a new FeatureService
func NewFeatureService(
	featureRepo repository.FeatureRepository,
	projectRepo repository.ProjectRepository,
	qaRepo repository.QATaskRepository,
	aiService *AIService,
) *FeatureService {
	return &FeatureService{
		featureRepo: featureRepo,
		projectRepo: projectRepo,
		qaRepo:      qaRepo,
		aiService:   aiService,
	}
}

// CreateFeatureInput represents input for creating a feature
type CreateFeatureInput struct {
	EpicTitle           string
	Title               string
	Description         string
	CriteriosAceptacion string
	Comentarios         string
	Tipo                models.FeatureType
	Categoria           string
	Priority            models.TaskPriority
	Assignee            string
	EstimatedHours      float64
	DueDate             *time.Time
	StoryPoints         int
	Sprint              string
	CreatedBy           string
}

// CreateFeature creates a feature with a generated SIGLAS-P{n}-{seq} id.
func (s *FeatureService) CreateFeature(projectID uint64, input CreateFeatureInput) (*models.Feature, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.EpicTitle) == "" {
		return nil, ErrEpicTitleRequired
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	count, err := s.featureRepo.CountByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count features: %w", err)
	}

	if input.Tipo == "" {
		input.Tipo = models.FeatureTypeFuncionalidad
	}
	if input.Categoria == "" {
		input.Categoria = string(models.FeatureTypeFuncionalidad)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	feature := &models.Feature{
		ID:                  utils.BuildFeatureID(project.Siglas, project.Phase, int(count)+1),
		ProjectID:           projectID,
		EpicTitle:           strings.TrimSpace(input.EpicTitle),
		Title:               strings.TrimSpace(input.Title),
		Description:         input.Description,
		CriteriosAceptacion: input.CriteriosAceptacion,
		Comentarios:         input.Comentarios,
		Tipo:                input.Tipo,
		Categoria:           input.Categoria,
		Status:              models.FeatureStatusBacklog,
		Priority:            input.Priority,
		Assignee:            input.Assignee,
		EstimatedHours:      input.EstimatedHours,
		DueDate:             input.DueDate,
		StoryPoints:         input.StoryPoints,
		Sprint:              input.Sprint,
		CreatedBy:           input.CreatedBy,
	}

	if err := s.featureRepo.Create(feature); err != nil {
		return nil, fmt.Errorf("failed to create feature: %w", err)
	}

	return feature, nil
}

// GetFeature returns a feature by id
func (s *FeatureService) GetFeature(id string) (*models.Feature, error) {
	feature, err := s.featureRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}
		return nil, fmt.Errorf("failed to find feature: %w", err)
	}
	return feature, nil
}

// EpicGroup is one epic with its features in sequence order.
type EpicGroup struct {
	EpicTitle string           `json:"epic_title"`
	Features  []models.Feature `json:"features"`
}

// ListFeatures returns a project's features ordered by the numeric suffix of
// their id, plus the same features grouped by epic. Epics are ordered by the
// smallest feature number they contain.
func (s *FeatureService) ListFeatures(projectID uint64) ([]models.Feature, []EpicGroup, error) {
	features, err := s.featureRepo.ListByProject(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list features: %w", err)
	}

	SortFeatures(features)

	groups := GroupByEpic(features)
	return features, groups, nil
}

// SortFeatures orders features by the trailing number of their id. Ids
// without a parseable suffix sort last.
func SortFeatures(features []models.Feature) {
	sort.SliceStable(features, func(i, j int) bool {
		return utils.ExtractFeatureNumber(features[i].ID) < utils.ExtractFeatureNumber(features[j].ID)
	})
}

// GroupByEpic groups already-sorted features by epic title, keeping epics in
// the order of their first (lowest-numbered) feature.
func GroupByEpic(features []models.Feature) []EpicGroup {
	index := make(map[string]int)
	groups := make([]EpicGroup, 0)

	for _, f := range features {
		i, ok := index[f.EpicTitle]
		if !ok {
			i = len(groups)
			index[f.EpicTitle] = i
			groups = append(groups, EpicGroup{EpicTitle: f.EpicTitle})
		}
		groups[i].Features = append(groups[i].Features, f)
	}

	return groups
}

// UpdateFeatureInput represents a partial feature update
type UpdateFeatureInput struct {
	EpicTitle           *string
	Title               *string
	Description         *string
	CriteriosAceptacion *string
	Comentarios         *string
	Tipo                *models.FeatureType
	Categoria           *string
	Status              *models.FeatureStatus
	Priority            *models.TaskPriority
	Assignee            *string
	EstimatedHours      *float64
	ActualHours         *float64
	DueDate             *time.Time
	GithubBranch        *string
	Commits             *int
	StoryPoints         *int
	Sprint              *string
}

// UpdateFeature applies a partial update. Features already done or completed
// are immutable; moving a feature INTO done/completed auto-creates its QA
// task when none exists yet.
func (s *FeatureService) UpdateFeature(id string, input UpdateFeatureInput, actor string) (*models.Feature, error) {
	feature, err := s.GetFeature(id)
	if err != nil {
		return nil, err
	}

	if feature.Status.IsTerminal() {
		return nil, ErrFeatureTerminal
	}

	if input.EpicTitle != nil {
		if strings.TrimSpace(*input.EpicTitle) == "" {
			return nil, ErrEpicTitleRequired
		}
		feature.EpicTitle = strings.TrimSpace(*input.EpicTitle)
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		feature.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		feature.Description = *input.Description
	}
	if input.CriteriosAceptacion != nil {
		feature.CriteriosAceptacion = *input.CriteriosAceptacion
	}
	if input.Comentarios != nil {
		feature.Comentarios = *input.Comentarios
	}
	if input.Tipo != nil {
		feature.Tipo = *input.Tipo
	}
	if input.Categoria != nil {
		feature.Categoria = *input.Categoria
	}
	if input.Priority != nil {
		feature.Priority = *input.Priority
	}
	if input.Assignee != nil {
		feature.Assignee = *input.Assignee
	}
	if input.EstimatedHours != nil {
		feature.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		feature.ActualHours = *input.ActualHours
	}
	if input.DueDate != nil {
		feature.DueDate = input.DueDate
	}
	if input.GithubBranch != nil {
		feature.GithubBranch = *input.GithubBranch
	}
	if input.Commits != nil {
		feature.Commits = *input.Commits
	}
	if input.StoryPoints != nil {
		feature.StoryPoints = *input.StoryPoints
	}
	if input.Sprint != nil {
		feature.Sprint = *input.Sprint
	}

	movedToTerminal := false
	if input.Status != nil {
		movedToTerminal = input.Status.IsTerminal() && !feature.Status.IsTerminal()
		feature.Status = *input.Status
	}

	if movedToTerminal && feature.QATaskID == nil {
		qaTask, err := s.createQATaskFor(feature, actor)
		if err != nil {
			return nil, err
		}
		feature.QATaskID = &qaTask.ID
	}

	if err := s.featureRepo.Update(feature); err != nil {
		return nil, fmt.Errorf("failed to update feature: %w", err)
	}

	return feature, nil
}

// DeleteFeature deletes a feature unless it is in a terminal state.
func (s *FeatureService) DeleteFeature(id string) error {
	feature, err := s.GetFeature(id)
	if err != nil {
		return err
	}
	if feature.Status.IsTerminal() {
		return ErrFeatureTerminal
	}
	if err := s.featureRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	return nil
}

// MoveToQA creates the QA task for a feature and marks it completed. The
// operation is idempotent: a feature whose QA task already exists returns it
// without creating another.
func (s *FeatureService) MoveToQA(featureID, actor string) (*models.QATask, bool, error) {
	feature, err := s.GetFeature(featureID)
	if err != nil {
		return nil, false, err
	}

	if feature.QATaskID != nil {
		existing, err := s.qaRepo.FindByID(*feature.QATaskID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("failed to load QA task: %w", err)
		}
		// Dangling reference, fall through and recreate
	}

	qaTask, err := s.createQATaskFor(feature, actor)
	if err != nil {
		return nil, false, err
	}

	feature.QATaskID = &qaTask.ID
	feature.Status = models.FeatureStatusCompleted
	if err := s.featureRepo.Update(feature); err != nil {
		return nil, false, fmt.Errorf("failed to link QA task: %w", err)
	}

	return qaTask, true, nil
}

// createQATaskFor copies the feature's acceptance criteria and notes into a
// new pending QA task. Comentarios falls back to the description.
func (s *FeatureService) createQATaskFor(feature *models.Feature, actor string) (*models.QATask, error) {
	comentarios := feature.Comentarios
	if comentarios == "" {
		comentarios = feature.Description
	}

	qaTask := &models.QATask{
		ProjectID:           feature.ProjectID,
		Titulo:              feature.Title,
		Categoria:           feature.Categoria,
		Tipo:                string(feature.Tipo),
		CriteriosAceptacion: feature.CriteriosAceptacion,
		Comentarios:         comentarios,
		Estado:              models.QAEstadoPendiente,
		FeatureID:           &feature.ID,
		FeatureTitle:        feature.Title,
		CreatedBy:           actor,
	}

	if err := s.qaRepo.Create(qaTask); err != nil {
		return nil, fmt.Errorf("failed to create QA task: %w", err)
	}
	return qaTask, nil
}

// BulkDeleteResult reports the outcome of a bulk delete.
type BulkDeleteResult struct {
	Deleted  []string `json:"deleted"`
	Excluded []string `json:"excluded"`
	Failed   []string `json:"failed"`
	Message  string   `json:"message"`
}

// BulkDelete deletes the selected features. Terminal features are excluded
// before any delete is issued; the remaining deletes run concurrently and a
// failure in one does not stop the others.
func (s *FeatureService) BulkDelete(ids []string) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoFeaturesSelected
	}

	result := &BulkDeleteResult{
		Deleted:  []string{},
		Excluded: []string{},
		Failed:   []string{},
	}

	deletable := make([]string, 0, len(ids))
	for _, id := range ids {
		feature, err := s.GetFeature(id)
		if err != nil {
			result.Failed = append(result.Failed, id)
			continue
		}
		if feature.Status.IsTerminal() {
			result.Excluded = append(result.Excluded, id)
			continue
		}
		deletable = append(deletable, id)
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, id := range deletable {
		id := id
		g.Go(func() error {
			err := s.featureRepo.Delete(id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, id)
				logging.Logger.Errorf("Bulk delete failed for feature %s: %v", id, err)
				return nil
			}
			result.Deleted = append(result.Deleted, id)
			return nil
		})
	}
	_ = g.Wait()

	result.Message = fmt.Sprintf("Se eliminaron %d funcionalidades, %d excluidas por estado terminal",
		len(result.Deleted), len(result.Excluded))
	if len(result.Failed) > 0 {
		result.Message += fmt.Sprintf(", %d con error", len(result.Failed))
	}

	return result, nil
}

// TrackTime applies a timer action to a feature and persists the result.
func (s *FeatureService) TrackTime(id string, action TimerAction, now time.Time) (*models.Feature, string, error) {
	feature, err := s.GetFeature(id)
	if err != nil {
		return nil, "", err
	}

	result, err := ApplyTimerAction(TimerState{
		StartedAt:       feature.StartedAt,
		AccumulatedTime: feature.AccumulatedTime,
	}, action, now)
	if err != nil {
		return nil, "", err
	}

	if !result.Changed {
		return feature, result.Message, nil
	}

	feature.StartedAt = result.StartedAt
	feature.AccumulatedTime = result.AccumulatedTime
	switch action {
	case TimerStart:
		feature.Status = models.FeatureStatusInProgress
	case TimerComplete:
		feature.Status = models.FeatureStatusCompleted
	}
	if result.SetActualHours {
		feature.ActualHours = result.ActualHours
	}

	if err := s.featureRepo.Update(feature); err != nil {
		return nil, "", fmt.Errorf("failed to update feature timer: %w", err)
	}

	return feature, result.Message, nil
}

// ColumnMapping is one suggested CSV column assignment.
type ColumnMapping struct {
	ColumnName  string  `json:"column_name"`
	MappedField string  `json:"mapped_field,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// CSVAnalysis is the result of inspecting an uploaded feature CSV.
type CSVAnalysis struct {
	Headers           []string            `json:"headers"`
	SuggestedMappings []ColumnMapping     `json:"suggested_mappings"`
	SampleRows        []map[string]string `json:"sample_rows"`
}

// featureFieldSynonyms maps normalized header names to feature fields.
var featureFieldSynonyms = map[string]string{
	"epic":                    "epic_title",
	"epic title":              "epic_title",
	"epica":                   "epic_title",
	"titulo":                  "title",
	"title":                   "title",
	"nombre":                  "title",
	"descripcion":             "description",
	"description":             "description",
	"criterios":               "criterios_aceptacion",
	"criterios aceptacion":    "criterios_aceptacion",
	"criterios de aceptacion": "criterios_aceptacion",
	"comentarios":             "comentarios",
	"tipo":                    "tipo",
	"categoria":               "categoria",
	"prioridad":               "priority",
	"priority":                "priority",
	"asignado":                "assignee",
	"assignee":                "assignee",
	"horas":                   "estimated_hours",
	"horas estimadas":         "estimated_hours",
	"estimated hours":         "estimated_hours",
	"story points":            "story_points",
	"sprint":                  "sprint",
}

// AnalyzeCSV reads an uploaded CSV and suggests a column-to-field mapping.
func (s *FeatureService) AnalyzeCSV(r io.Reader) (*CSVAnalysis, error) {
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
	analysis := &CSVAnalysis{
		Headers:           headers,
		SuggestedMappings: make([]ColumnMapping, 0, len(headers)),
		SampleRows:        []map[string]string{},
	}

	for _, header := range headers {
		mapping := ColumnMapping{ColumnName: header}
		normalized := normalizeHeader(header)
		if field, ok := featureFieldSynonyms[normalized]; ok {
			mapping.MappedField = field
			mapping.Confidence = 1.0
		} else {
			for synonym, field := range featureFieldSynonyms {
				if strings.Contains(normalized, synonym) {
					mapping.MappedField = field
					mapping.Confidence = 0.6
					break
				}
			}
		}
		analysis.SuggestedMappings = append(analysis.SuggestedMappings, mapping)
	}

	sampleLimit := 5
	for _, record := range records[1:] {
		if len(analysis.SampleRows) >= sampleLimit {
			break
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		analysis.SampleRows = append(analysis.SampleRows, row)
	}

	return analysis, nil
}

func normalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "_", " ", "-", " ")
	return replacer.Replace(normalized)
}

// BatchUploadResult summarizes a CSV feature upload.
type BatchUploadResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// UploadCSV creates features from a CSV using the provided column mapping
// (header -> feature field). Rows failing validation are reported and
// skipped; valid rows are still created.
func (s *FeatureService) UploadCSV(projectID uint64, r io.Reader, mapping map[string]string, createdBy string) (*BatchUploadResult, error) {
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
	result := &BatchUploadResult{Errors: []string{}}

	for rowIdx, record := range records[1:] {
		input := CreateFeatureInput{CreatedBy: createdBy}
		for i, header := range headers {
			if i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			switch mapping[header] {
			case "epic_title":
				input.EpicTitle = value
			case "title":
				input.Title = value
			case "description":
				input.Description = value
			case "criterios_aceptacion":
				input.CriteriosAceptacion = value
			case "comentarios":
				input.Comentarios = value
			case "tipo":
				input.Tipo = models.FeatureType(value)
			case "categoria":
				input.Categoria = value
			case "priority":
				input.Priority = models.TaskPriority(strings.ToLower(value))
			case "assignee":
				input.Assignee = value
			case "estimated_hours":
				if hours, err := strconv.ParseFloat(value, 64); err == nil {
					input.EstimatedHours = hours
				}
			case "story_points":
				if points, err := strconv.Atoi(value); err == nil {
					input.StoryPoints = points
				}
			case "sprint":
				input.Sprint = value
			}
		}

		if input.EpicTitle == "" {
			input.EpicTitle = "General"
		}

		if _, err := s.CreateFeature(projectID, input); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %v", rowIdx+2, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// ReEstimateResult reports the outcome of an AI re-estimation pass.
type ReEstimateResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// ReEstimate asks the AI for revised hour estimates on all non-terminal
// features of a project and applies them.
func (s *FeatureService) ReEstimate(ctx context.Context, projectID uint64) (*ReEstimateResult, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	features, err := s.featureRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	open := make([]ReEstimateInput, 0, len(features))
	byID := make(map[string]*models.Feature, len(features))
	for i := range features {
		if features[i].Status.IsTerminal() {
			continue
		}
		open = append(open, ReEstimateInput{
			FeatureID:      features[i].ID,
			Title:          features[i].Title,
			Description:    features[i].Description,
			EstimatedHours: features[i].EstimatedHours,
		})
		byID[features[i].ID] = &features[i]
	}

	result := &ReEstimateResult{Errors: []string{}}
	if len(open) == 0 {
		return result, nil
	}

	estimates, err := s.aiService.ReEstimateFeatures(ctx, open)
	if err != nil {
		return nil, fmt.Errorf("failed to re-estimate features: %w", err)
	}

	for _, estimate := range estimates {
		feature, ok := byID[estimate.FeatureID]
		if !ok || estimate.EstimatedHours <= 0 {
			continue
		}
		feature.EstimatedHours = estimate.EstimatedHours
		if err := s.featureRepo.Update(feature); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", estimate.FeatureID, err))
			continue
		}
		result.Updated++
	}

	return result, nil
}
