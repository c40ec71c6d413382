package models

import (
	"time"

	"gorm.io/gorm"
)

type QATaskEstado string

const (
	QAEstadoPendiente  QATaskEstado = "Pendiente"
	QAEstadoEnProgreso QATaskEstado = "En Progreso"
	QAEstadoCompletado QATaskEstado = "Completado"
	QAEstadoBloqueado  QATaskEstado = "Bloqueado"
	QAEstadoCancelado  QATaskEstado = "Cancelado"
)

type QATask struct {
	ID                  uint64       `gorm:"primarykey" json:"id"`
	ProjectID           uint64       `gorm:"not null;index" json:"project_id"`
	Titulo              string       `gorm:"type:varchar(255);not null" json:"titulo"`
	Categoria           string       `gorm:"type:varchar(50);default:'Funcionalidad'" json:"categoria"`
	Tipo                string       `gorm:"type:varchar(20);default:'Funcionalidad'" json:"tipo"`
	CriteriosAceptacion string       `gorm:"type:text" json:"criterios_aceptacion"`
	Comentarios         string       `gorm:"type:text" json:"comentarios"`
	Estado              QATaskEstado `gorm:"type:varchar(20);not null;default:'Pendiente'" json:"estado"`

	// Origin feature, when the task came from move-to-QA.
	FeatureID    *string `gorm:"type:varchar(32);index" json:"feature_id,omitempty"`
	FeatureTitle string  `gorm:"type:varchar(255)" json:"feature_title,omitempty"`
	FeatureNote  string  `gorm:"type:varchar(255)" json:"feature_note,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
