package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActivo     ProjectStatus = "Activo"
	ProjectStatusPausado    ProjectStatus = "Pausado"
	ProjectStatusCompletado ProjectStatus = "Completado"
)

type Project struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Siglas    string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"siglas"`
	Phase     int            `gorm:"not null;default:1" json:"phase"`
	ClienteID string         `gorm:"type:varchar(64)" json:"cliente_id"`
	Status    ProjectStatus  `gorm:"type:varchar(20);not null;default:'Activo'" json:"status"`
	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Features []Feature       `gorm:"foreignKey:ProjectID" json:"features,omitempty"`
	QATasks  []QATask        `gorm:"foreignKey:ProjectID" json:"qa_tasks,omitempty"`
	Events   []CalendarEvent `gorm:"foreignKey:ProjectID" json:"events,omitempty"`
}
