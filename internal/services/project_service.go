package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSiglasInvalidas = errors.New("siglas must be 2-6 uppercase letters")
	ErrNombreRequerido = errors.New("project name is required")
	ErrQATaskNotFound  = errors.New("QA task not found")
)

var siglasRe = regexp.MustCompile(`^[A-Z]{2,6}$`)

// ProjectService handles project and QA task business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	qaTaskRepo  repository.QATaskRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, qaTaskRepo repository.QATaskRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, qaTaskRepo: qaTaskRepo}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name      string
	Siglas    string
	Phase     int
	ClienteID string
	CreatedBy string
}

// CreateProject creates a project. Siglas are uppercased and validated
// because every feature ID in the project is prefixed with them.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNombreRequerido
	}
	siglas := strings.ToUpper(strings.TrimSpace(input.Siglas))
	if !siglasRe.MatchString(siglas) {
		return nil, ErrSiglasInvalidas
	}
	if input.Phase < 1 {
		input.Phase = 1
	}

	project := &models.Project{
		Name:      strings.TrimSpace(input.Name),
		Siglas:    siglas,
		Phase:     input.Phase,
		ClienteID: input.ClienteID,
		Status:    models.ProjectStatusActivo,
		CreatedBy: input.CreatedBy,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project by id
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	projects, err := s.projectRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput represents a partial project update. Siglas are
// immutable after creation since existing feature IDs embed them.
type UpdateProjectInput struct {
	Name      *string
	Phase     *int
	ClienteID *string
	Status    *models.ProjectStatus
}

// UpdateProject applies a partial update to a project.
func (s *ProjectService) UpdateProject(id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrNombreRequerido
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phase != nil && *input.Phase >= 1 {
		project.Phase = *input.Phase
	}
	if input.ClienteID != nil {
		project.ClienteID = *input.ClienteID
	}
	if input.Status != nil {
		project.Status = *input.Status
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject deletes a project
func (s *ProjectService) DeleteProject(id uint64) error {
	if _, err := s.GetProject(id); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListQATasks returns the QA tasks of a project
func (s *ProjectService) ListQATasks(projectID uint64) ([]models.QATask, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	tasks, err := s.qaTaskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list QA tasks: %w", err)
	}
	return tasks, nil
}

// UpdateQAEstado sets the estado of a QA task.
func (s *ProjectService) UpdateQAEstado(id uint64, estado models.QATaskEstado) (*models.QATask, error) {
	task, err := s.qaTaskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQATaskNotFound
		}
		return nil, fmt.Errorf("failed to find QA task: %w", err)
	}

	task.Estado = estado
	if err := s.qaTaskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update QA task: %w", err)
	}

	return task, nil
}
