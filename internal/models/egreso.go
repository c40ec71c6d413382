package models

import (
	"time"

	"gorm.io/gorm"
)

type EgresoTipo string

const (
	EgresoVariable EgresoTipo = "Variable"
	EgresoFijo     EgresoTipo = "Fijo"
)

type EgresoStatus string

const (
	EgresoPagado    EgresoStatus = "Pagado"
	EgresoPendiente EgresoStatus = "Pendiente"
	EgresoCancelado EgresoStatus = "Cancelado"
)

// Egreso is an outgoing expense record. Hour-based egresos are derived
// automatically from completed, time-tracked work and reference their source
// via TareaID or FeatureID.
type Egreso struct {
	ID                 string       `gorm:"primarykey;type:varchar(64)" json:"id"`
	LineaNegocio       string       `gorm:"type:varchar(100);index" json:"linea_negocio"`
	Categoria          string       `gorm:"type:varchar(100);index" json:"categoria"`
	Empresa            string       `gorm:"type:varchar(255)" json:"empresa"`
	EmpresaNormalizada string       `gorm:"type:varchar(255);index" json:"empresa_normalizada"`
	ClienteID          string       `gorm:"type:varchar(64)" json:"cliente_id,omitempty"`
	Equipo             string       `gorm:"type:varchar(255)" json:"equipo"`
	Concepto           string       `gorm:"type:text" json:"concepto"`
	Subtotal           float64      `gorm:"not null" json:"subtotal"`
	IVA                float64      `gorm:"not null" json:"iva"`
	Total              float64      `gorm:"not null" json:"total"`
	Tipo               EgresoTipo   `gorm:"type:varchar(10);not null;default:'Variable'" json:"tipo"`
	Mes                string       `gorm:"type:varchar(30);index" json:"mes"`
	Status             EgresoStatus `gorm:"type:varchar(10);not null;default:'Pendiente'" json:"status"`
	FacturaURL         string       `gorm:"type:text" json:"factura_url,omitempty"`
	ComprobanteURL     string       `gorm:"type:text" json:"comprobante_url,omitempty"`
	FechaPago          string       `gorm:"type:varchar(20)" json:"fecha_pago,omitempty"`

	// Hour-based fields, set only for derived egresos.
	Persona       string  `gorm:"type:varchar(255)" json:"persona,omitempty"`
	Tarea         string  `gorm:"type:varchar(255)" json:"tarea,omitempty"`
	Horas         float64 `json:"horas,omitempty"`
	PrecioPorHora float64 `json:"precio_por_hora,omitempty"`
	TareaID       *uint64 `gorm:"index" json:"tarea_id,omitempty"`
	FeatureID     *string `gorm:"type:varchar(32);index" json:"feature_id,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PrecioPorHora is the configured hourly rate for one person, used when
// deriving egresos from completed work.
type PrecioPorHora struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	PersonaNombre string         `gorm:"type:varchar(255);not null" json:"persona_nombre"`
	PersonaEmail  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"persona_email"`
	PrecioPorHora float64        `gorm:"not null" json:"precio_por_hora"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
