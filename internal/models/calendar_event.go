package models

import (
	"time"

	"gorm.io/gorm"
)

type CalendarEventType string

const (
	EventTypeEntrega CalendarEventType = "entrega"
	EventTypeReunion CalendarEventType = "reunion"
	EventTypeSprint  CalendarEventType = "sprint"
	EventTypeOtro    CalendarEventType = "otro"
)

type CalendarEvent struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	ProjectID   uint64            `gorm:"not null;index" json:"project_id"`
	Title       string            `gorm:"type:varchar(255);not null" json:"title"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Type        CalendarEventType `gorm:"type:varchar(20);not null;default:'otro'" json:"type"`
	StartsAt    time.Time         `gorm:"not null;index" json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at,omitempty"`
	Attendees   StringList        `gorm:"type:text" json:"attendees"`

	// FeatureID links events produced by calendar sync to their source.
	FeatureID *string `gorm:"type:varchar(32);index" json:"feature_id,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
