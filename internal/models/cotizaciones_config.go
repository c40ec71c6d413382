package models

import (
	"database/sql/driver"
	"time"
)

// Tarifas holds the configured minimum hourly rates (MXN/hora).
type Tarifas struct {
	DesarrolladorMin float64 `json:"desarrollador_min"`
	GabyMin          float64 `json:"gaby_min"`
}

func (t Tarifas) Value() (driver.Value, error) { return jsonValue(t) }
func (t *Tarifas) Scan(value interface{}) error {
	if value == nil {
		*t = Tarifas{}
		return nil
	}
	return scanJSON(value, t)
}

// Porcentajes is the revenue distribution; it must sum to 100%.
type Porcentajes struct {
	Impuestos        float64 `json:"impuestos"`
	Arely            float64 `json:"arely"`
	Desarrollador    float64 `json:"desarrollador"`
	GastosOperativos float64 `json:"gastos_operativos"`
	Marketing        float64 `json:"marketing"`
	Ahorro           float64 `json:"ahorro"`
	Gaby             float64 `json:"gaby"`
}

// Sum returns the total of all percentage shares.
func (p Porcentajes) Sum() float64 {
	return p.Impuestos + p.Arely + p.Desarrollador + p.GastosOperativos +
		p.Marketing + p.Ahorro + p.Gaby
}

func (p Porcentajes) Value() (driver.Value, error) { return jsonValue(p) }
func (p *Porcentajes) Scan(value interface{}) error {
	if value == nil {
		*p = Porcentajes{}
		return nil
	}
	return scanJSON(value, p)
}

// Reglas are the quoting business rules.
type Reglas struct {
	MensualidadMinima   float64 `json:"mensualidad_minima"`
	HorasTrabajoSemana  float64 `json:"horas_trabajo_semana"`
	CostoPrototipadoUSD float64 `json:"costo_prototipado_usd"`
	TipoCambioUSD       float64 `json:"tipo_cambio_usd"`
}

func (r Reglas) Value() (driver.Value, error) { return jsonValue(r) }
func (r *Reglas) Scan(value interface{}) error {
	if value == nil {
		*r = Reglas{}
		return nil
	}
	return scanJSON(value, r)
}

// CotizacionesConfig is the single-row quoting configuration.
type CotizacionesConfig struct {
	ID          uint64      `gorm:"primarykey" json:"id"`
	Tarifas     Tarifas     `gorm:"type:text" json:"tarifas"`
	Porcentajes Porcentajes `gorm:"type:text" json:"porcentajes"`
	Reglas      Reglas      `gorm:"type:text" json:"reglas"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DefaultCotizacionesConfig returns the baseline configuration.
func DefaultCotizacionesConfig() CotizacionesConfig {
	return CotizacionesConfig{
		Tarifas: Tarifas{
			DesarrolladorMin: 800,
			GabyMin:          1000,
		},
		Porcentajes: Porcentajes{
			Impuestos:        2,
			Arely:            5,
			Desarrollador:    27,
			GastosOperativos: 18,
			Marketing:        3,
			Ahorro:           5,
			Gaby:             40,
		},
		Reglas: Reglas{
			MensualidadMinima:   64000,
			HorasTrabajoSemana:  20,
			CostoPrototipadoUSD: 600,
			TipoCambioUSD:       20,
		},
	}
}
