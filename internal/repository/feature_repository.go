package repository

import (
	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormFeatureRepository is a GORM implementation of FeatureRepository
type GormFeatureRepository struct {
	db *gorm.DB
}

// NewFeatureRepository creates a new FeatureRepository
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &GormFeatureRepository{db: db}
}

func (r *GormFeatureRepository) Create(feature *models.Feature) error {
	return r.db.Create(feature).Error
}

// FindByID finds a feature by ID with optional preloading
func (r *GormFeatureRepository) FindByID(id string, preload ...string) (*models.Feature, error) {
	var feature models.Feature
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&feature).Error; err != nil {
		return nil, err
	}

	return &feature, nil
}

// ListByProject returns all features of a project. Ordering by the id's
// numeric suffix happens in the service layer; the suffix is not a column.
func (r *GormFeatureRepository) ListByProject(projectID uint64) ([]models.Feature, error) {
	var features []models.Feature
	if err := r.db.Where("project_id = ?", projectID).Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

func (r *GormFeatureRepository) ListCompletedByAssignee(assignee string) ([]models.Feature, error) {
	var features []models.Feature
	err := r.db.
		Where("status IN ? AND assignee = ?",
			[]models.FeatureStatus{models.FeatureStatusDone, models.FeatureStatusCompleted},
			assignee).
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

// CountByProject includes soft-deleted rows so sequence numbers are never
// reused after a delete.
func (r *GormFeatureRepository) CountByProject(projectID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Feature{}).
		Unscoped().
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *GormFeatureRepository) Update(feature *models.Feature) error {
	return r.db.Save(feature).Error
}

// Delete soft deletes a feature
func (r *GormFeatureRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Feature{}).Error
}
