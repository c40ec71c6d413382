package repository

import (
	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormEgresoRepository is a GORM implementation of EgresoRepository
type GormEgresoRepository struct {
	db *gorm.DB
}

// NewEgresoRepository creates a new EgresoRepository
func NewEgresoRepository(db *gorm.DB) EgresoRepository {
	return &GormEgresoRepository{db: db}
}

func (r *GormEgresoRepository) Create(egreso *models.Egreso) error {
	return r.db.Create(egreso).Error
}

func (r *GormEgresoRepository) FindByID(id string) (*models.Egreso, error) {
	var egreso models.Egreso
	if err := r.db.Where("id = ?", id).First(&egreso).Error; err != nil {
		return nil, err
	}
	return &egreso, nil
}

// List retrieves egresos matching the filter. Filters mirror the query
// parameters the finance screens send, one dimension at a time.
func (r *GormEgresoRepository) List(filter EgresoFilter) ([]models.Egreso, error) {
	var egresos []models.Egreso

	query := r.db.Model(&models.Egreso{})

	if filter.BasadoEnHoras {
		query = query.Where("tarea_id IS NOT NULL OR feature_id IS NOT NULL")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Tipo != nil {
		query = query.Where("tipo = ?", *filter.Tipo)
	}
	if filter.Mes != nil {
		query = query.Where("mes = ?", *filter.Mes)
	}
	if filter.Categoria != nil {
		query = query.Where("categoria = ?", *filter.Categoria)
	}
	if filter.LineaNegocio != nil {
		query = query.Where("linea_negocio = ?", *filter.LineaNegocio)
	}

	if err := query.Order("created_at DESC").Find(&egresos).Error; err != nil {
		return nil, err
	}
	return egresos, nil
}

func (r *GormEgresoRepository) ListByMes(mes string) ([]models.Egreso, error) {
	var egresos []models.Egreso
	if err := r.db.Where("mes = ?", mes).Find(&egresos).Error; err != nil {
		return nil, err
	}
	return egresos, nil
}

func (r *GormEgresoRepository) Update(egreso *models.Egreso) error {
	return r.db.Save(egreso).Error
}

func (r *GormEgresoRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Egreso{}).Error
}
