package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/visionarieshub/portal-api/internal/constants"
	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamTaskNotFound       = errors.New("team task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrUnknownCategory        = errors.New("unknown category")
	ErrCustomCategoryRequired = errors.New("custom category is required when category is Otra")
	ErrTranscriptTooShort     = errors.New("transcript must be at least 100 characters")
	ErrTranscriptTooLong      = errors.New("transcript must be at most 100000 characters")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrTrelloCardsMissing     = errors.New("Trello export must contain a cards array")
)

// TeamTaskService handles team task business logic
type TeamTaskService struct {
	taskRepo  repository.TeamTaskRepository
	aiService *AIService
}

// NewTeamTaskService creates a new TeamTaskService
func NewTeamTaskService(taskRepo repository.TeamTaskRepository, aiService *AIService) *TeamTaskService {
	return &TeamTaskService{
		taskRepo:  taskRepo,
		aiService: aiService,
	}
}

// CreateTeamTaskInput represents input for creating a team task
type CreateTeamTaskInput struct {
	Title          string
	Description    string
	Category       string
	CustomCategory string
	Priority       models.TaskPriority
	Assignee       string
	ProjectID      *uint64
	ProjectName    string
	DueDate        *time.Time
	EstimatedHours float64
	Comentarios    string
	TrelloCardID   string
	CreatedBy      string
}

// CreateTask creates a new team task with validation
func (s *TeamTaskService) CreateTask(input CreateTeamTaskInput) (*models.TeamTask, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.Category == "" {
		input.Category = models.CategoryOtra
	}
	if !models.IsKnownTeamTaskCategory(input.Category) {
		return nil, ErrUnknownCategory
	}
	if input.Category == models.CategoryOtra && strings.TrimSpace(input.CustomCategory) == "" {
		return nil, ErrCustomCategoryRequired
	}
	if input.Category != models.CategoryOtra {
		input.CustomCategory = ""
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	task := &models.TeamTask{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Category:       input.Category,
		CustomCategory: strings.TrimSpace(input.CustomCategory),
		Status:         models.TeamTaskStatusPending,
		Priority:       input.Priority,
		Assignee:       input.Assignee,
		ProjectID:      input.ProjectID,
		ProjectName:    input.ProjectName,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Comentarios:    input.Comentarios,
		TrelloCardID:   input.TrelloCardID,
		CreatedBy:      input.CreatedBy,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create team task: %w", err)
	}

	return task, nil
}

// GetTask returns a team task by id
func (s *TeamTaskService) GetTask(id uint64) (*models.TeamTask, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamTaskNotFound
		}
		return nil, fmt.Errorf("failed to find team task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks matching the filter
func (s *TeamTaskService) ListTasks(filter repository.TeamTaskFilter) ([]models.TeamTask, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTeamTaskInput represents a partial update
type UpdateTeamTaskInput struct {
	Title          *string
	Description    *string
	Category       *string
	CustomCategory *string
	Status         *models.TeamTaskStatus
	Priority       *models.TaskPriority
	Assignee       *string
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
	Comentarios    *string
}

// UpdateTask applies a partial update to a team task
func (s *TeamTaskService) UpdateTask(id uint64, input UpdateTeamTaskInput) (*models.TeamTask, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Category != nil {
		if !models.IsKnownTeamTaskCategory(*input.Category) {
			return nil, ErrUnknownCategory
		}
		task.Category = *input.Category
		if task.Category != models.CategoryOtra {
			task.CustomCategory = ""
		}
	}
	if input.CustomCategory != nil {
		task.CustomCategory = strings.TrimSpace(*input.CustomCategory)
	}
	if task.Category == models.CategoryOtra && task.CustomCategory == "" {
		return nil, ErrCustomCategoryRequired
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Assignee != nil {
		task.Assignee = *input.Assignee
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		task.ActualHours = *input.ActualHours
	}
	if input.Comentarios != nil {
		task.Comentarios = *input.Comentarios
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update team task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a team task
func (s *TeamTaskService) DeleteTask(id uint64) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete team task: %w", err)
	}
	return nil
}

// TrackTime applies a timer action to a team task and persists the result.
func (s *TeamTaskService) TrackTime(id uint64, action TimerAction, now time.Time) (*models.TeamTask, string, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, "", err
	}

	result, err := ApplyTimerAction(TimerState{
		StartedAt:       task.StartedAt,
		AccumulatedTime: task.AccumulatedTime,
	}, action, now)
	if err != nil {
		return nil, "", err
	}

	if !result.Changed {
		return task, result.Message, nil
	}

	task.StartedAt = result.StartedAt
	task.AccumulatedTime = result.AccumulatedTime
	switch action {
	case TimerStart:
		task.Status = models.TeamTaskStatusInProgress
	case TimerComplete:
		task.Status = models.TeamTaskStatusCompleted
	}
	if result.SetActualHours {
		task.ActualHours = result.ActualHours
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, "", fmt.Errorf("failed to update team task timer: %w", err)
	}

	return task, result.Message, nil
}

// GeneratedTeamTask is an AI draft annotated with duplicate detection.
type GeneratedTeamTask struct {
	AITaskDraft
	IsPossibleDuplicate bool    `json:"is_possible_duplicate"`
	DuplicateOf         string  `json:"duplicate_of,omitempty"`
	SimilarityScore     float64 `json:"similarity_score"`
}

// GenerateFromTranscript produces task drafts from a transcript and flags
// candidates whose title overlaps an existing task.
func (s *TeamTaskService) GenerateFromTranscript(ctx context.Context, transcript string) ([]GeneratedTeamTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if len(transcript) < constants.MinTranscriptLength {
		return nil, ErrTranscriptTooShort
	}
	if len(transcript) > constants.MaxTranscriptLength {
		return nil, ErrTranscriptTooLong
	}

	existing, err := s.taskRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load existing tasks: %w", err)
	}

	drafts, err := s.aiService.GenerateTasksFromTranscript(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	generated := make([]GeneratedTeamTask, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		item := GeneratedTeamTask{AITaskDraft: draft}
		if match := findSimilarTask(draft.Title, existing); match != nil {
			item.IsPossibleDuplicate = true
			item.DuplicateOf = match.Title
			item.SimilarityScore = 0.8
		}
		generated = append(generated, item)
	}

	if len(generated) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return generated, nil
}

// findSimilarTask matches by title containment in either direction, the same
// heuristic the duplicate warning in the UI relies on.
func findSimilarTask(title string, existing []models.TeamTask) *models.TeamTask {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	for i := range existing {
		have := strings.ToLower(strings.TrimSpace(existing[i].Title))
		if have == needle || strings.Contains(have, needle) || strings.Contains(needle, have) {
			return &existing[i]
		}
	}
	return nil
}

// CreateConfirmedDrafts creates the selected drafts one at a time. Creation
// is sequential on purpose: there is no batch endpoint and a failure should
// not abort the drafts already created.
func (s *TeamTaskService) CreateConfirmedDrafts(drafts []CreateTeamTaskInput) (created []models.TeamTask, errs []string) {
	for _, draft := range drafts {
		task, err := s.CreateTask(draft)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", draft.Title, err))
			continue
		}
		created = append(created, *task)
	}
	return created, errs
}

// TrelloCard is the subset of a Trello export card the import consumes.
type TrelloCard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Desc        string     `json:"desc"`
	Closed      bool       `json:"closed"`
	DueComplete bool       `json:"dueComplete"`
	Due         *time.Time `json:"due"`
}

// TrelloExport is the top-level shape of a Trello board export.
type TrelloExport struct {
	Cards []TrelloCard `json:"cards"`
}

// TrelloImportResult summarizes an import run.
type TrelloImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ImportTrelloJSON converts pending cards from a Trello export into team
// tasks, skipping cards already imported (matched by trello_card_id).
func (s *TeamTaskService) ImportTrelloJSON(ctx context.Context, export TrelloExport, createdBy string) (*TrelloImportResult, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if export.Cards == nil {
		return nil, ErrTrelloCardsMissing
	}

	pending := make([]TrelloCard, 0, len(export.Cards))
	for _, card := range export.Cards {
		if card.Closed || card.DueComplete {
			continue
		}
		pending = append(pending, card)
	}

	result := &TrelloImportResult{Errors: []string{}}
	if len(pending) == 0 {
		return result, nil
	}

	logging.Logger.Infof("Importing %d pending Trello cards of %d total", len(pending), len(export.Cards))

	drafts, err := s.aiService.GenerateTasksFromTrelloCards(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to map Trello cards: %w", err)
	}

	for _, draft := range drafts {
		if draft.TrelloCardID != "" {
			if _, err := s.taskRepo.FindByTrelloCardID(draft.TrelloCardID); err == nil {
				result.Skipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", draft.Title, err))
				continue
			}
		}

		category := draft.Category
		customCategory := ""
		if !models.IsKnownTeamTaskCategory(category) {
			customCategory = category
			category = models.CategoryOtra
		}
		if category == models.CategoryOtra && customCategory == "" {
			customCategory = "Trello"
		}

		_, err := s.CreateTask(CreateTeamTaskInput{
			Title:          draft.Title,
			Description:    draft.Description,
			Category:       category,
			CustomCategory: customCategory,
			Priority:       models.TaskPriority(draft.Priority),
			DueDate:        draft.DueDate,
			EstimatedHours: draft.EstimatedHours,
			TrelloCardID:   draft.TrelloCardID,
			CreatedBy:      createdBy,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", draft.Title, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// DisconnectTrello removes all stored Trello card links.
func (s *TeamTaskService) DisconnectTrello() (int64, error) {
	unlinked, err := s.taskRepo.ClearTrelloLinks()
	if err != nil {
		return 0, fmt.Errorf("failed to clear Trello links: %w", err)
	}
	return unlinked, nil
}
