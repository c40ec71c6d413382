package repository

import (
	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormCalendarRepository is a GORM implementation of CalendarRepository
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &GormCalendarRepository{db: db}
}

func (r *GormCalendarRepository) Create(event *models.CalendarEvent) error {
	return r.db.Create(event).Error
}

func (r *GormCalendarRepository) FindByID(id uint64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormCalendarRepository) List(filter CalendarFilter) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent

	query := r.db.Where("project_id = ?", filter.ProjectID)
	if filter.From != nil {
		query = query.Where("starts_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("starts_at < ?", *filter.To)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormCalendarRepository) FindByFeature(projectID uint64, featureID string) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := r.db.Where("project_id = ? AND feature_id = ?", projectID, featureID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormCalendarRepository) Update(event *models.CalendarEvent) error {
	return r.db.Save(event).Error
}

func (r *GormCalendarRepository) Delete(id uint64) error {
	return r.db.Delete(&models.CalendarEvent{}, id).Error
}
