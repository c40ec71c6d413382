package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/visionarieshub/portal-api/internal/database"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CalendarServiceTestSuite defines the test suite for CalendarService
type CalendarServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CalendarService
	project *models.Project
}

// SetupTest runs before each test
func (suite *CalendarServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Project{},
		&models.Feature{},
		&models.CalendarEvent{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.service = NewCalendarService(
		repository.NewCalendarRepository(suite.db),
		repository.NewFeatureRepository(suite.db),
		repository.NewProjectRepository(suite.db),
	)

	suite.project = &models.Project{
		Name:   "Sistema Pathway",
		Siglas: "SP",
		Phase:  1,
		Status: models.ProjectStatusActivo,
	}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

// TearDownTest runs after each test
func (suite *CalendarServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *CalendarServiceTestSuite) seedFeature(id, title string, due *time.Time) {
	suite.Require().NoError(suite.db.Create(&models.Feature{
		ID:        id,
		ProjectID: suite.project.ID,
		EpicTitle: "Autenticación",
		Title:     title,
		Status:    models.FeatureStatusTodo,
		Priority:  models.PriorityMedium,
		Assignee:  "dev@portal",
		Sprint:    "Sprint 3",
		DueDate:   due,
	}).Error)
}

func (suite *CalendarServiceTestSuite) TestCreateEvent() {
	event, err := suite.service.CreateEvent(CreateEventInput{
		ProjectID: suite.project.ID,
		Title:     "  Demo con cliente ",
		StartsAt:  time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC),
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "Demo con cliente", event.Title)
	assert.Equal(suite.T(), models.EventTypeOtro, event.Type)
}

func (suite *CalendarServiceTestSuite) TestCreateEvent_Validation() {
	_, err := suite.service.CreateEvent(CreateEventInput{
		ProjectID: suite.project.ID,
		StartsAt:  time.Now(),
	})
	assert.ErrorIs(suite.T(), err, ErrEventTitleNeeded)

	_, err = suite.service.CreateEvent(CreateEventInput{
		ProjectID: suite.project.ID,
		Title:     "Demo",
	})
	assert.ErrorIs(suite.T(), err, ErrEventTimeNeeded)

	_, err = suite.service.CreateEvent(CreateEventInput{
		ProjectID: 999,
		Title:     "Demo",
		StartsAt:  time.Now(),
	})
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
}

func (suite *CalendarServiceTestSuite) TestSyncFromFeatures_CreatesEntregaEvents() {
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	suite.seedFeature("SP-P1-1", "Login con Google", &due)
	suite.seedFeature("SP-P1-2", "Sin fecha", nil)

	result, err := suite.service.SyncFromFeatures(suite.project.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1, result.Created)
	assert.Equal(suite.T(), 0, result.Updated)

	events, err := suite.service.ListEvents(repository.CalendarFilter{ProjectID: suite.project.ID})
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	assert.Equal(suite.T(), "Entrega: Login con Google", events[0].Title)
	assert.Equal(suite.T(), models.EventTypeEntrega, events[0].Type)
	assert.Contains(suite.T(), events[0].Description, "SP-P1-1")
	assert.Contains(suite.T(), events[0].Description, "Sprint 3")
	assert.Equal(suite.T(), []string{"dev@portal"}, []string(events[0].Attendees))
}

func (suite *CalendarServiceTestSuite) TestSyncFromFeatures_Idempotent() {
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	suite.seedFeature("SP-P1-1", "Login con Google", &due)

	_, err := suite.service.SyncFromFeatures(suite.project.ID)
	suite.Require().NoError(err)

	second, err := suite.service.SyncFromFeatures(suite.project.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, second.Created)
	assert.Equal(suite.T(), 0, second.Updated)
}

func (suite *CalendarServiceTestSuite) TestSyncFromFeatures_MovedDueDateUpdatesEvent() {
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	suite.seedFeature("SP-P1-1", "Login con Google", &due)

	_, err := suite.service.SyncFromFeatures(suite.project.ID)
	suite.Require().NoError(err)

	moved := due.AddDate(0, 0, 7)
	suite.Require().NoError(suite.db.Model(&models.Feature{}).
		Where("id = ?", "SP-P1-1").Update("due_date", moved).Error)

	result, err := suite.service.SyncFromFeatures(suite.project.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, result.Created)
	assert.Equal(suite.T(), 1, result.Updated)

	events, err := suite.service.ListEvents(repository.CalendarFilter{ProjectID: suite.project.ID})
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	assert.True(suite.T(), events[0].StartsAt.Equal(moved))
}

func (suite *CalendarServiceTestSuite) TestUpdateAndDeleteEvent() {
	event, err := suite.service.CreateEvent(CreateEventInput{
		ProjectID: suite.project.ID,
		Title:     "Retro",
		StartsAt:  time.Now(),
	})
	suite.Require().NoError(err)

	title := "Retro del sprint"
	updated, err := suite.service.UpdateEvent(event.ID, UpdateEventInput{Title: &title})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Retro del sprint", updated.Title)

	suite.Require().NoError(suite.service.DeleteEvent(event.ID))
	assert.ErrorIs(suite.T(), suite.service.DeleteEvent(event.ID), ErrEventNotFound)
}

func TestCalendarServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CalendarServiceTestSuite))
}
