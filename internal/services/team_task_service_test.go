package services

import (
	"context"
	"strings"
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

// TeamTaskServiceTestSuite defines the test suite for TeamTaskService
type TeamTaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TeamTaskService
}

// SetupTest runs before each test
func (suite *TeamTaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.TeamTask{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.service = NewTeamTaskService(repository.NewTeamTaskRepository(suite.db), nil)
}

// TearDownTest runs after each test
func (suite *TeamTaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TeamTaskServiceTestSuite) TestCreateTask_Defaults() {
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Preparar propuesta",
		Category: "Propuestas",
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TeamTaskStatusPending, task.Status)
	assert.Equal(suite.T(), models.PriorityMedium, task.Priority)
}

func (suite *TeamTaskServiceTestSuite) TestCreateTask_OtraRequiresCustomCategory() {
	_, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Algo fuera de catálogo",
		Category: models.CategoryOtra,
	})
	assert.ErrorIs(suite.T(), err, ErrCustomCategoryRequired)
}

func (suite *TeamTaskServiceTestSuite) TestCreateTask_KnownCategoryClearsCustom() {
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:          "Revisión QA",
		Category:       "QA",
		CustomCategory: "sobrante",
	})
	suite.Require().NoError(err)

	assert.Empty(suite.T(), task.CustomCategory)
}

func (suite *TeamTaskServiceTestSuite) TestCreateTask_UnknownCategoryRejected() {
	_, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Categoria rara",
		Category: "Inventada",
	})
	assert.ErrorIs(suite.T(), err, ErrUnknownCategory)
}

func (suite *TeamTaskServiceTestSuite) TestTrackTime_StartSetsInProgress() {
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Con timer",
		Category: "Desarrollo",
	})
	suite.Require().NoError(err)

	updated, message, err := suite.service.TrackTime(task.ID, TimerStart, time.Now())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TeamTaskStatusInProgress, updated.Status)
	assert.NotNil(suite.T(), updated.StartedAt)
	assert.Equal(suite.T(), "Timer iniciado", message)
}

func (suite *TeamTaskServiceTestSuite) TestTrackTime_PauseWithoutTimerIsNoOp() {
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Sin timer",
		Category: "Desarrollo",
	})
	suite.Require().NoError(err)

	updated, message, err := suite.service.TrackTime(task.ID, TimerPause, time.Now())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(0), updated.AccumulatedTime)
	assert.Equal(suite.T(), "No hay timer corriendo", message)
}

func (suite *TeamTaskServiceTestSuite) TestTrackTime_CompleteDerivesActualHours() {
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Terminar",
		Category: "Desarrollo",
	})
	suite.Require().NoError(err)

	started := time.Now().Add(-2 * time.Hour)
	suite.Require().NoError(suite.db.Model(&models.TeamTask{}).
		Where("id = ?", task.ID).
		Update("started_at", started).Error)

	updated, _, err := suite.service.TrackTime(task.ID, TimerComplete, time.Now())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TeamTaskStatusCompleted, updated.Status)
	assert.Equal(suite.T(), 2.0, updated.ActualHours)
}

func (suite *TeamTaskServiceTestSuite) TestUpdateTask_ClearDueDate() {
	due := time.Now().Add(72 * time.Hour)
	task, err := suite.service.CreateTask(CreateTeamTaskInput{
		Title:    "Con fecha",
		Category: "Desarrollo",
		DueDate:  &due,
	})
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateTask(task.ID, UpdateTeamTaskInput{ClearDueDate: true})
	suite.Require().NoError(err)

	assert.Nil(suite.T(), updated.DueDate)
}

func (suite *TeamTaskServiceTestSuite) TestGenerateFromTranscript_RequiresAIService() {
	transcript := strings.Repeat("acordamos revisar el backlog ", 10)
	_, err := suite.service.GenerateFromTranscript(context.Background(), transcript)
	assert.ErrorIs(suite.T(), err, ErrAIServiceNotConfigured)
}

func (suite *TeamTaskServiceTestSuite) TestFindSimilarTask_ContainmentBothWays() {
	existing := []models.TeamTask{
		{Title: "Preparar demo para cliente"},
		{Title: "Deploy"},
	}

	match := findSimilarTask("demo para cliente", existing)
	suite.Require().NotNil(match)
	assert.Equal(suite.T(), "Preparar demo para cliente", match.Title)

	match = findSimilarTask("Deploy a producción con checklist", existing)
	suite.Require().NotNil(match)
	assert.Equal(suite.T(), "Deploy", match.Title)

	assert.Nil(suite.T(), findSimilarTask("Contratar diseñador", existing))
}

func (suite *TeamTaskServiceTestSuite) TestDisconnectTrello_ClearsLinks() {
	for _, cardID := range []string{"card-1", "card-2"} {
		suite.Require().NoError(suite.db.Create(&models.TeamTask{
			Title:        "Importada " + cardID,
			Category:     "Desarrollo",
			TrelloCardID: cardID,
		}).Error)
	}
	suite.Require().NoError(suite.db.Create(&models.TeamTask{
		Title:    "Local",
		Category: "Desarrollo",
	}).Error)

	cleared, err := suite.service.DisconnectTrello()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), cleared)

	var linked int64
	suite.db.Model(&models.TeamTask{}).Where("trello_card_id <> ''").Count(&linked)
	assert.Equal(suite.T(), int64(0), linked)
}

func TestTeamTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TeamTaskServiceTestSuite))
}
