package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrEventTitleNeeded = errors.New("event title is required")
	ErrEventTimeNeeded  = errors.New("event start time is required")
)

// CalendarService handles per-project calendar events
type CalendarService struct {
	calendarRepo repository.CalendarRepository
	featureRepo  repository.FeatureRepository
	projectRepo  repository.ProjectRepository
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(
	calendarRepo repository.CalendarRepository,
	featureRepo repository.FeatureRepository,
	projectRepo repository.ProjectRepository,
) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		featureRepo:  featureRepo,
		projectRepo:  projectRepo,
	}
}

// CreateEventInput represents input for creating a calendar event
type CreateEventInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Type        models.CalendarEventType
	StartsAt    time.Time
	EndsAt      *time.Time
	Attendees   []string
	CreatedBy   string
}

// CreateEvent creates an event on a project's calendar.
func (s *CalendarService) CreateEvent(input CreateEventInput) (*models.CalendarEvent, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEventTitleNeeded
	}
	if input.StartsAt.IsZero() {
		return nil, ErrEventTimeNeeded
	}
	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if input.Type == "" {
		input.Type = models.EventTypeOtro
	}

	event := &models.CalendarEvent{
		ProjectID:   input.ProjectID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        input.Type,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Attendees:   input.Attendees,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.calendarRepo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// ListEvents returns events matching the filter
func (s *CalendarService) ListEvents(filter repository.CalendarFilter) ([]models.CalendarEvent, error) {
	events, err := s.calendarRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEventInput represents a partial event update
type UpdateEventInput struct {
	Title       *string
	Description *string
	Type        *models.CalendarEventType
	StartsAt    *time.Time
	EndsAt      *time.Time
	Attendees   *[]string
}

// UpdateEvent applies a partial update to an event.
func (s *CalendarService) UpdateEvent(id uint64, input UpdateEventInput) (*models.CalendarEvent, error) {
	event, err := s.calendarRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrEventTitleNeeded
		}
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Type != nil {
		event.Type = *input.Type
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = input.EndsAt
	}
	if input.Attendees != nil {
		event.Attendees = *input.Attendees
	}

	if err := s.calendarRepo.Update(event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// DeleteEvent deletes an event
func (s *CalendarService) DeleteEvent(id uint64) error {
	if _, err := s.calendarRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to find event: %w", err)
	}
	if err := s.calendarRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// SyncResult reports how many events a calendar sync touched.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncFromFeatures upserts one "entrega" event per feature with a due date.
// Re-running the sync after a due date moves updates the existing event
// instead of duplicating it.
func (s *CalendarService) SyncFromFeatures(projectID uint64) (*SyncResult, error) {
	features, err := s.featureRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	result := &SyncResult{}
	for i := range features {
		feature := &features[i]
		if feature.DueDate == nil {
			continue
		}

		title := fmt.Sprintf("Entrega: %s", feature.Title)
		description := feature.ID
		if feature.Sprint != "" {
			description = fmt.Sprintf("%s · %s", feature.ID, feature.Sprint)
		}

		existing, err := s.calendarRepo.FindByFeature(projectID, feature.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up event for %s: %w", feature.ID, err)
		}

		if existing != nil {
			if existing.StartsAt.Equal(*feature.DueDate) && existing.Title == title {
				continue
			}
			existing.Title = title
			existing.Description = description
			existing.StartsAt = *feature.DueDate
			if err := s.calendarRepo.Update(existing); err != nil {
				return nil, fmt.Errorf("failed to update event for %s: %w", feature.ID, err)
			}
			result.Updated++
			continue
		}

		featureID := feature.ID
		event := &models.CalendarEvent{
			ProjectID:   projectID,
			Title:       title,
			Description: description,
			Type:        models.EventTypeEntrega,
			StartsAt:    *feature.DueDate,
			FeatureID:   &featureID,
			Attendees:   []string{},
		}
		if feature.Assignee != "" {
			event.Attendees = []string{feature.Assignee}
		}
		if err := s.calendarRepo.Create(event); err != nil {
			return nil, fmt.Errorf("failed to create event for %s: %w", feature.ID, err)
		}
		result.Created++
	}

	logging.Logger.Infof("Calendar sync for project %d: %d created, %d updated", projectID, result.Created, result.Updated)
	return result, nil
}
