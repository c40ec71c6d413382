package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

type CotizacionEstado string

const (
	EstadoBorrador          CotizacionEstado = "Borrador"
	EstadoEnviada           CotizacionEstado = "Enviada"
	EstadoEnRevision        CotizacionEstado = "En revisión"
	EstadoAceptada          CotizacionEstado = "Aceptada"
	EstadoGenerandoContrato CotizacionEstado = "Generando Contrato"
	EstadoContratoRevision  CotizacionEstado = "Contrato en Revisión"
	EstadoEnviadaAFirma     CotizacionEstado = "Enviada a Firma"
	EstadoFirmada           CotizacionEstado = "Firmada"
	EstadoRechazada         CotizacionEstado = "Rechazada"
	EstadoConvertida        CotizacionEstado = "Convertida"
)

// Alcance describes the quoted scope.
type Alcance struct {
	Pantallas       []AlcancePantalla      `json:"pantallas"`
	Funcionalidades []AlcanceFuncionalidad `json:"funcionalidades"`
	Flujos          []AlcanceFlujo         `json:"flujos"`
	Integraciones   []string               `json:"integraciones"`
}

type AlcancePantalla struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

type AlcanceFuncionalidad struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Prioridad   string `json:"prioridad"`
}

type AlcanceFlujo struct {
	Nombre string   `json:"nombre"`
	Pasos  []string `json:"pasos"`
}

func (a Alcance) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Alcance) Scan(value interface{}) error {
	if value == nil {
		*a = Alcance{}
		return nil
	}
	return scanJSON(value, a)
}

// Desglose is the hour/rate breakdown behind the quoted price.
type Desglose struct {
	Roles        []DesgloseRol `json:"roles"`
	HorasTotales float64       `json:"horas_totales"`
	CostoTotal   float64       `json:"costo_total"`
	Mensualidad  float64       `json:"mensualidad"`
	Meses        int           `json:"meses"`
	Prototipado  Prototipado   `json:"prototipado"`
}

type DesgloseRol struct {
	Rol           string  `json:"rol"`
	Horas         float64 `json:"horas"`
	TarifaPorHora float64 `json:"tarifa_por_hora"`
	Total         float64 `json:"total"`
}

type Prototipado struct {
	Incluido bool    `json:"incluido"`
	Costo    float64 `json:"costo"`
}

func (d Desglose) Value() (driver.Value, error) { return jsonValue(d) }
func (d *Desglose) Scan(value interface{}) error {
	if value == nil {
		*d = Desglose{}
		return nil
	}
	return scanJSON(value, d)
}

// Contrato tracks the signature workflow state of a quote.
type Contrato struct {
	ContratoGenerado bool   `json:"contrato_generado"`
	ContratoURL      string `json:"contrato_url,omitempty"`
	ContratoRevisado bool   `json:"contrato_revisado"`
	EnviadoAFirma    bool   `json:"enviado_a_firma"`
	EnvelopeID       string `json:"envelope_id,omitempty"`
	EnvelopeStatus   string `json:"envelope_status,omitempty"`
	FechaEnvioFirma  string `json:"fecha_envio_firma,omitempty"`
	FechaFirmado     string `json:"fecha_firmado,omitempty"`
	FirmadoPor       string `json:"firmado_por,omitempty"`
}

func (ct Contrato) Value() (driver.Value, error) { return jsonValue(ct) }
func (ct *Contrato) Scan(value interface{}) error {
	if value == nil {
		*ct = Contrato{}
		return nil
	}
	return scanJSON(value, ct)
}

type Cotizacion struct {
	ID            uint64           `gorm:"primarykey" json:"id"`
	Folio         string           `gorm:"type:varchar(20);uniqueIndex;not null" json:"folio"`
	Titulo        string           `gorm:"type:varchar(255);not null" json:"titulo"`
	ClienteID     string           `gorm:"type:varchar(64)" json:"cliente_id"`
	ClienteNombre string           `gorm:"type:varchar(255)" json:"cliente_nombre"`
	TipoProyecto  string           `gorm:"type:varchar(50)" json:"tipo_proyecto"`
	Descripcion   string           `gorm:"type:text" json:"descripcion"`
	Estado        CotizacionEstado `gorm:"type:varchar(30);not null;default:'Borrador'" json:"estado"`
	Alcance       Alcance          `gorm:"type:text" json:"alcance"`
	Desglose      Desglose         `gorm:"type:text" json:"desglose"`
	Contrato      Contrato         `gorm:"type:text" json:"contrato"`

	// ProjectID is set when the quote has been converted into a project.
	ProjectID *uint64 `json:"project_id,omitempty"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
