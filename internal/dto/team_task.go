package dto

import (
	"time"

	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// TeamTaskDTO represents a team task in API responses
type TeamTaskDTO struct {
	ID              uint64                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	CustomCategory  string                `json:"custom_category,omitempty"`
	Status          models.TeamTaskStatus `json:"status"`
	Priority        models.TaskPriority   `json:"priority"`
	Assignee        string                `json:"assignee,omitempty"`
	ProjectID       *uint64               `json:"project_id,omitempty"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	DaysOverdue     *int                  `json:"days_overdue,omitempty"`
	EstimatedHours  float64               `json:"estimated_hours,omitempty"`
	ActualHours     float64               `json:"actual_hours,omitempty"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	AccumulatedTime int64                 `json:"accumulated_time"`
	TrelloCardID    string                `json:"trello_card_id,omitempty"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TeamTaskListResponse represents a paginated list of team tasks
type TeamTaskListResponse struct {
	Tasks      []TeamTaskDTO `json:"tasks"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToTeamTaskDTO converts a TeamTask model to TeamTaskDTO
func ToTeamTaskDTO(task models.TeamTask, now time.Time) TeamTaskDTO {
	dto := TeamTaskDTO{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Category:        task.Category,
		CustomCategory:  task.CustomCategory,
		Status:          task.Status,
		Priority:        task.Priority,
		Assignee:        task.Assignee,
		ProjectID:       task.ProjectID,
		DueDate:         task.DueDate,
		EstimatedHours:  task.EstimatedHours,
		ActualHours:     task.ActualHours,
		StartedAt:       task.StartedAt,
		AccumulatedTime: task.AccumulatedTime,
		TrelloCardID:    task.TrelloCardID,
		CreatedBy:       task.CreatedBy,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}

	// Overdue is only meaningful while work is still open
	if task.Status != models.TeamTaskStatusCompleted && task.Status != models.TeamTaskStatusCancelled {
		dto.DaysOverdue = services.DaysOverdue(task.DueDate, now)
	}

	return dto
}

// ToTeamTaskListResponse converts a slice of tasks to TeamTaskListResponse
func ToTeamTaskListResponse(tasks []models.TeamTask, page, pageSize int, totalCount int64) TeamTaskListResponse {
	now := time.Now()
	items := make([]TeamTaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTeamTaskDTO(task, now)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TeamTaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
