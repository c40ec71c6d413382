package models

import (
	"time"

	"gorm.io/gorm"
)

type TeamTaskStatus string

const (
	TeamTaskStatusPending    TeamTaskStatus = "pending"
	TeamTaskStatusInProgress TeamTaskStatus = "in-progress"
	TeamTaskStatusReview     TeamTaskStatus = "review"
	TeamTaskStatusCompleted  TeamTaskStatus = "completed"
	TeamTaskStatusCancelled  TeamTaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TeamTaskCategories are the known categories. "Otra" is the free-text
// escape hatch: tasks using it must carry CustomCategory.
var TeamTaskCategories = []string{
	"Propuestas",
	"Startups",
	"Evolution",
	"Pathway",
	"Desarrollo",
	"QA",
	"Portal Admin",
	"Aura",
	"Redes Sociales",
	"Conferencias",
	"Inversión",
	"Pagos",
	"Otra",
}

// CategoryOtra marks a custom category.
const CategoryOtra = "Otra"

// IsKnownTeamTaskCategory reports whether category is one of the known values.
func IsKnownTeamTaskCategory(category string) bool {
	for _, c := range TeamTaskCategories {
		if c == category {
			return true
		}
	}
	return false
}

type TeamTask struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       string         `gorm:"type:varchar(50);not null" json:"category"`
	CustomCategory string         `gorm:"type:varchar(100)" json:"custom_category,omitempty"`
	Status         TeamTaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority       TaskPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Assignee       string         `gorm:"type:varchar(255);index" json:"assignee,omitempty"`
	ProjectID      *uint64        `gorm:"index" json:"project_id,omitempty"`
	ProjectName    string         `gorm:"type:varchar(255)" json:"project_name,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	EstimatedHours float64        `json:"estimated_hours,omitempty"`
	ActualHours    float64        `json:"actual_hours,omitempty"`

	// Timer state. AccumulatedTime holds seconds banked at the last pause;
	// StartedAt is set only while the timer is running.
	StartedAt       *time.Time `json:"started_at,omitempty"`
	AccumulatedTime int64      `gorm:"not null;default:0" json:"accumulated_time"`

	Comentarios  string `gorm:"type:text" json:"comentarios,omitempty"`
	TrelloCardID string `gorm:"type:varchar(64);index" json:"trello_card_id,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
