package repository

import (
	"time"

	"github.com/visionarieshub/portal-api/internal/models"
)

// TeamTaskFilter holds filtering options for listing team tasks
type TeamTaskFilter struct {
	Status    *models.TeamTaskStatus
	Category  *string
	Assignee  *string
	ProjectID *uint64
	DueBefore *time.Time
	Page      int
	PageSize  int
}

// TeamTaskRepository defines the interface for team task data access
type TeamTaskRepository interface {
	Create(task *models.TeamTask) error
	FindByID(id uint64) (*models.TeamTask, error)
	FindByTrelloCardID(cardID string) (*models.TeamTask, error)
	List(filter TeamTaskFilter) ([]models.TeamTask, int64, error)
	ListAll() ([]models.TeamTask, error)
	ListCompletedByAssignee(assignee string) ([]models.TeamTask, error)
	Update(task *models.TeamTask) error
	Delete(id uint64) error
	ClearTrelloLinks() (int64, error)
}

// FeatureRepository defines the interface for feature data access
type FeatureRepository interface {
	Create(feature *models.Feature) error
	FindByID(id string, preload ...string) (*models.Feature, error)
	ListByProject(projectID uint64) ([]models.Feature, error)
	ListCompletedByAssignee(assignee string) ([]models.Feature, error)
	CountByProject(projectID uint64) (int64, error)
	Update(feature *models.Feature) error
	Delete(id string) error
}

// QATaskRepository defines the interface for QA task data access
type QATaskRepository interface {
	Create(task *models.QATask) error
	FindByID(id uint64) (*models.QATask, error)
	ListByProject(projectID uint64) ([]models.QATask, error)
	Update(task *models.QATask) error
}

// EgresoFilter holds filtering options for listing egresos
type EgresoFilter struct {
	Status        *models.EgresoStatus
	Tipo          *models.EgresoTipo
	Mes           *string
	Categoria     *string
	LineaNegocio  *string
	BasadoEnHoras bool
}

// EgresoRepository defines the interface for egreso data access
type EgresoRepository interface {
	Create(egreso *models.Egreso) error
	FindByID(id string) (*models.Egreso, error)
	List(filter EgresoFilter) ([]models.Egreso, error)
	ListByMes(mes string) ([]models.Egreso, error)
	Update(egreso *models.Egreso) error
	Delete(id string) error
}

// PrecioPorHoraRepository defines the interface for hourly rate data access
type PrecioPorHoraRepository interface {
	Create(precio *models.PrecioPorHora) error
	FindByID(id uint64) (*models.PrecioPorHora, error)
	ListAll() ([]models.PrecioPorHora, error)
	Update(precio *models.PrecioPorHora) error
	Delete(id uint64) error
}

// CotizacionRepository defines the interface for cotización data access
type CotizacionRepository interface {
	Create(cotizacion *models.Cotizacion) error
	FindByID(id uint64) (*models.Cotizacion, error)
	List(estado *models.CotizacionEstado) ([]models.Cotizacion, error)
	CountByYear(year int) (int64, error)
	Update(cotizacion *models.Cotizacion) error
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	ListInternal() ([]models.User, error)
	Update(user *models.User) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)
	ListAll() ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uint64) error
}

// CalendarFilter holds filtering options for listing calendar events
type CalendarFilter struct {
	ProjectID uint64
	From      *time.Time
	To        *time.Time
	Type      *models.CalendarEventType
}

// CalendarRepository defines the interface for calendar event data access
type CalendarRepository interface {
	Create(event *models.CalendarEvent) error
	FindByID(id uint64) (*models.CalendarEvent, error)
	List(filter CalendarFilter) ([]models.CalendarEvent, error)
	FindByFeature(projectID uint64, featureID string) (*models.CalendarEvent, error)
	Update(event *models.CalendarEvent) error
	Delete(id uint64) error
}

// ConfigRepository defines the interface for the quoting configuration row
type ConfigRepository interface {
	Get() (*models.CotizacionesConfig, error)
	Save(cfg *models.CotizacionesConfig) error
}
