package repository

import (
	"errors"

	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormQATaskRepository is a GORM implementation of QATaskRepository
type GormQATaskRepository struct {
	db *gorm.DB
}

// NewQATaskRepository creates a new QATaskRepository
func NewQATaskRepository(db *gorm.DB) QATaskRepository {
	return &GormQATaskRepository{db: db}
}

func (r *GormQATaskRepository) Create(task *models.QATask) error {
	return r.db.Create(task).Error
}

func (r *GormQATaskRepository) FindByID(id uint64) (*models.QATask, error) {
	var task models.QATask
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormQATaskRepository) ListByProject(projectID uint64) ([]models.QATask, error) {
	var tasks []models.QATask
	if err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormQATaskRepository) Update(task *models.QATask) error {
	return r.db.Save(task).Error
}

// GormPrecioPorHoraRepository is a GORM implementation of PrecioPorHoraRepository
type GormPrecioPorHoraRepository struct {
	db *gorm.DB
}

// NewPrecioPorHoraRepository creates a new PrecioPorHoraRepository
func NewPrecioPorHoraRepository(db *gorm.DB) PrecioPorHoraRepository {
	return &GormPrecioPorHoraRepository{db: db}
}

func (r *GormPrecioPorHoraRepository) Create(precio *models.PrecioPorHora) error {
	return r.db.Create(precio).Error
}

func (r *GormPrecioPorHoraRepository) FindByID(id uint64) (*models.PrecioPorHora, error) {
	var precio models.PrecioPorHora
	if err := r.db.First(&precio, id).Error; err != nil {
		return nil, err
	}
	return &precio, nil
}

func (r *GormPrecioPorHoraRepository) ListAll() ([]models.PrecioPorHora, error) {
	var precios []models.PrecioPorHora
	if err := r.db.Order("persona_nombre ASC").Find(&precios).Error; err != nil {
		return nil, err
	}
	return precios, nil
}

func (r *GormPrecioPorHoraRepository) Update(precio *models.PrecioPorHora) error {
	return r.db.Save(precio).Error
}

func (r *GormPrecioPorHoraRepository) Delete(id uint64) error {
	return r.db.Delete(&models.PrecioPorHora{}, id).Error
}

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) ListAll() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// GormConfigRepository stores the single quoting configuration row.
type GormConfigRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &GormConfigRepository{db: db}
}

// Get returns the stored configuration, falling back to defaults when no row
// has been saved yet.
func (r *GormConfigRepository) Get() (*models.CotizacionesConfig, error) {
	var cfg models.CotizacionesConfig
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := models.DefaultCotizacionesConfig()
			return &def, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *GormConfigRepository) Save(cfg *models.CotizacionesConfig) error {
	return r.db.Save(cfg).Error
}
