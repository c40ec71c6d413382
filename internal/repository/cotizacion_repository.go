package repository

import (
	"time"

	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormCotizacionRepository is a GORM implementation of CotizacionRepository
type GormCotizacionRepository struct {
	db *gorm.DB
}

// NewCotizacionRepository creates a new CotizacionRepository
func NewCotizacionRepository(db *gorm.DB) CotizacionRepository {
	return &GormCotizacionRepository{db: db}
}

func (r *GormCotizacionRepository) Create(cotizacion *models.Cotizacion) error {
	return r.db.Create(cotizacion).Error
}

func (r *GormCotizacionRepository) FindByID(id uint64) (*models.Cotizacion, error) {
	var cotizacion models.Cotizacion
	if err := r.db.First(&cotizacion, id).Error; err != nil {
		return nil, err
	}
	return &cotizacion, nil
}

func (r *GormCotizacionRepository) List(estado *models.CotizacionEstado) ([]models.Cotizacion, error) {
	var cotizaciones []models.Cotizacion
	query := r.db.Model(&models.Cotizacion{})
	if estado != nil {
		query = query.Where("estado = ?", *estado)
	}
	if err := query.Order("created_at DESC").Find(&cotizaciones).Error; err != nil {
		return nil, err
	}
	return cotizaciones, nil
}

// CountByYear counts quotes created in a calendar year, soft-deleted rows
// included so folios are never reused.
func (r *GormCotizacionRepository) CountByYear(year int) (int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var count int64
	err := r.db.Model(&models.Cotizacion{}).
		Unscoped().
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *GormCotizacionRepository) Update(cotizacion *models.Cotizacion) error {
	return r.db.Save(cotizacion).Error
}

func (r *GormCotizacionRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Cotizacion{}, id).Error
}
