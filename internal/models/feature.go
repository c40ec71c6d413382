package models

import (
	"time"

	"gorm.io/gorm"
)

type FeatureStatus string

const (
	FeatureStatusBacklog    FeatureStatus = "backlog"
	FeatureStatusTodo       FeatureStatus = "todo"
	FeatureStatusInProgress FeatureStatus = "in-progress"
	FeatureStatusReview     FeatureStatus = "review"
	FeatureStatusDone       FeatureStatus = "done"
	FeatureStatusCompleted  FeatureStatus = "completed"
)

// IsTerminal reports whether the status forbids further edits or deletion.
func (s FeatureStatus) IsTerminal() bool {
	return s == FeatureStatusDone || s == FeatureStatusCompleted
}

type FeatureType string

const (
	FeatureTypeFuncionalidad FeatureType = "Funcionalidad"
	FeatureTypeQA            FeatureType = "QA"
	FeatureTypeBug           FeatureType = "Bug"
)

// Feature is a unit of project work. Its ID follows the business format
// SIGLAS-P{phase}-{seq}; the trailing sequence number drives display order.
type Feature struct {
	ID                  string        `gorm:"primarykey;type:varchar(32)" json:"id"`
	ProjectID           uint64        `gorm:"not null;index" json:"project_id"`
	EpicTitle           string        `gorm:"type:varchar(255);not null;index" json:"epic_title"`
	Title               string        `gorm:"type:varchar(255);not null" json:"title"`
	Description         string        `gorm:"type:text" json:"description"`
	CriteriosAceptacion string        `gorm:"type:text" json:"criterios_aceptacion,omitempty"`
	Comentarios         string        `gorm:"type:text" json:"comentarios,omitempty"`
	Tipo                FeatureType   `gorm:"type:varchar(20);default:'Funcionalidad'" json:"tipo,omitempty"`
	Categoria           string        `gorm:"type:varchar(50);default:'Funcionalidad'" json:"categoria,omitempty"`
	Status              FeatureStatus `gorm:"type:varchar(20);not null;default:'backlog'" json:"status"`
	Priority            TaskPriority  `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Assignee            string        `gorm:"type:varchar(255);index" json:"assignee,omitempty"`
	EstimatedHours      float64       `json:"estimated_hours,omitempty"`
	ActualHours         float64       `json:"actual_hours,omitempty"`
	DueDate             *time.Time    `gorm:"index" json:"due_date,omitempty"`

	StartedAt       *time.Time `json:"started_at,omitempty"`
	AccumulatedTime int64      `gorm:"not null;default:0" json:"accumulated_time"`

	GithubBranch string `gorm:"type:varchar(255)" json:"github_branch,omitempty"`
	Commits      int    `json:"commits,omitempty"`
	StoryPoints  int    `json:"story_points,omitempty"`
	Sprint       string `gorm:"type:varchar(50)" json:"sprint,omitempty"`

	// QATaskID is set once a QA task has been created for this feature.
	QATaskID *uint64 `json:"qa_task_id,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	QATask  *QATask `gorm:"foreignKey:QATaskID" json:"qa_task,omitempty"`
}
