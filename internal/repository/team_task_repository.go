package repository

import (
	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamTaskRepository is a GORM implementation of TeamTaskRepository
type GormTeamTaskRepository struct {
	db *gorm.DB
}

// NewTeamTaskRepository creates a new TeamTaskRepository
func NewTeamTaskRepository(db *gorm.DB) TeamTaskRepository {
	return &GormTeamTaskRepository{db: db}
}

func (r *GormTeamTaskRepository) Create(task *models.TeamTask) error {
	return r.db.Create(task).Error
}

func (r *GormTeamTaskRepository) FindByID(id uint64) (*models.TeamTask, error) {
	var task models.TeamTask
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTeamTaskRepository) FindByTrelloCardID(cardID string) (*models.TeamTask, error) {
	var task models.TeamTask
	if err := r.db.Where("trello_card_id = ?", cardID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves team tasks with filtering and pagination
func (r *GormTeamTaskRepository) List(filter TeamTaskFilter) ([]models.TeamTask, int64, error) {
	var tasks []models.TeamTask

	query := r.db.Model(&models.TeamTask{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Assignee != nil {
		query = query.Where("assignee = ?", *filter.Assignee)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *GormTeamTaskRepository) ListAll() ([]models.TeamTask, error) {
	var tasks []models.TeamTask
	if err := r.db.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTeamTaskRepository) ListCompletedByAssignee(assignee string) ([]models.TeamTask, error) {
	var tasks []models.TeamTask
	err := r.db.
		Where("status = ? AND assignee = ?", models.TeamTaskStatusCompleted, assignee).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTeamTaskRepository) Update(task *models.TeamTask) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a team task
func (r *GormTeamTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.TeamTask{}, id).Error
}

// ClearTrelloLinks removes every stored Trello card reference and returns
// how many tasks were unlinked.
func (r *GormTeamTaskRepository) ClearTrelloLinks() (int64, error) {
	result := r.db.Model(&models.TeamTask{}).
		Where("trello_card_id <> ''").
		Update("trello_card_id", "")
	return result.RowsAffected, result.Error
}
