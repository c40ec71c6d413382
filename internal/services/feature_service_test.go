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

// FeatureServiceTestSuite defines the test suite for FeatureService
type FeatureServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *FeatureService
	project *models.Project
}

// SetupTest runs before each test
func (suite *FeatureServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Project{},
		&models.Feature{},
		&models.QATask{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.service = NewFeatureService(
		repository.NewFeatureRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewQATaskRepository(suite.db),
		nil,
	)

	suite.project = &models.Project{Name: "Socialmente Preparado", Siglas: "SP", Phase: 7}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

// TearDownTest runs after each test
func (suite *FeatureServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *FeatureServiceTestSuite) createFeature(id, epic, title string, status models.FeatureStatus) *models.Feature {
	feature := &models.Feature{
		ID:        id,
		ProjectID: suite.project.ID,
		EpicTitle: epic,
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
	}
	suite.Require().NoError(suite.db.Create(feature).Error)
	return feature
}

func (suite *FeatureServiceTestSuite) TestCreateFeature_GeneratesSequentialID() {
	first, err := suite.service.CreateFeature(suite.project.ID, CreateFeatureInput{
		EpicTitle: "Onboarding",
		Title:     "Pantalla de registro",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "SP-P7-1", first.ID)
	assert.Equal(suite.T(), models.FeatureStatusBacklog, first.Status)

	second, err := suite.service.CreateFeature(suite.project.ID, CreateFeatureInput{
		EpicTitle: "Onboarding",
		Title:     "Login con correo",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "SP-P7-2", second.ID)
}

func (suite *FeatureServiceTestSuite) TestCreateFeature_SequenceSurvivesDelete() {
	feature, err := suite.service.CreateFeature(suite.project.ID, CreateFeatureInput{
		EpicTitle: "Onboarding",
		Title:     "Pantalla de registro",
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.DeleteFeature(feature.ID))

	next, err := suite.service.CreateFeature(suite.project.ID, CreateFeatureInput{
		EpicTitle: "Onboarding",
		Title:     "Login con correo",
	})
	suite.Require().NoError(err)

	// Soft-deleted rows still count, so ids are never reused
	assert.Equal(suite.T(), "SP-P7-2", next.ID)
}

func (suite *FeatureServiceTestSuite) TestCreateFeature_RequiresEpicTitle() {
	_, err := suite.service.CreateFeature(suite.project.ID, CreateFeatureInput{Title: "Sin epica"})
	assert.ErrorIs(suite.T(), err, ErrEpicTitleRequired)
}

func (suite *FeatureServiceTestSuite) TestListFeatures_NumericSuffixOrder() {
	suite.createFeature("SP-P7-10", "Core", "Decima", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-3", "Core", "Tercera", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-97", "Core", "Grande", models.FeatureStatusTodo)

	features, _, err := suite.service.ListFeatures(suite.project.ID)
	suite.Require().NoError(err)

	ids := []string{features[0].ID, features[1].ID, features[2].ID}
	assert.Equal(suite.T(), []string{"SP-P7-3", "SP-P7-10", "SP-P7-97"}, ids)
}

func (suite *FeatureServiceTestSuite) TestListFeatures_MalformedIDsSortLast() {
	suite.createFeature("legacy-import", "Core", "Sin numero", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-2", "Core", "Segunda", models.FeatureStatusTodo)

	features, _, err := suite.service.ListFeatures(suite.project.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "SP-P7-2", features[0].ID)
	assert.Equal(suite.T(), "legacy-import", features[1].ID)
}

func (suite *FeatureServiceTestSuite) TestListFeatures_EpicsOrderedBySmallestNumber() {
	suite.createFeature("SP-P7-5", "Pagos", "Checkout", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-2", "Onboarding", "Registro", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-8", "Onboarding", "Perfil", models.FeatureStatusTodo)

	_, epics, err := suite.service.ListFeatures(suite.project.ID)
	suite.Require().NoError(err)

	suite.Require().Len(epics, 2)
	assert.Equal(suite.T(), "Onboarding", epics[0].EpicTitle)
	assert.Len(suite.T(), epics[0].Features, 2)
	assert.Equal(suite.T(), "Pagos", epics[1].EpicTitle)
}

func (suite *FeatureServiceTestSuite) TestUpdateFeature_TerminalIsImmutable() {
	suite.createFeature("SP-P7-1", "Core", "Terminada", models.FeatureStatusDone)

	newTitle := "Renombrada"
	_, err := suite.service.UpdateFeature("SP-P7-1", UpdateFeatureInput{Title: &newTitle}, "pm@portal")

	assert.ErrorIs(suite.T(), err, ErrFeatureTerminal)
}

func (suite *FeatureServiceTestSuite) TestDeleteFeature_TerminalIsProtected() {
	suite.createFeature("SP-P7-1", "Core", "Terminada", models.FeatureStatusCompleted)

	err := suite.service.DeleteFeature("SP-P7-1")

	assert.ErrorIs(suite.T(), err, ErrFeatureTerminal)
}

func (suite *FeatureServiceTestSuite) TestUpdateFeature_MovingToDoneCreatesQATask() {
	feature := suite.createFeature("SP-P7-1", "Core", "Con criterios", models.FeatureStatusInProgress)
	feature.CriteriosAceptacion = "Debe validar el correo"
	suite.Require().NoError(suite.db.Save(feature).Error)

	done := models.FeatureStatusDone
	updated, err := suite.service.UpdateFeature("SP-P7-1", UpdateFeatureInput{Status: &done}, "pm@portal")
	suite.Require().NoError(err)

	suite.Require().NotNil(updated.QATaskID)

	var qaTask models.QATask
	suite.Require().NoError(suite.db.First(&qaTask, *updated.QATaskID).Error)
	assert.Equal(suite.T(), "Con criterios", qaTask.Titulo)
	assert.Equal(suite.T(), "Debe validar el correo", qaTask.CriteriosAceptacion)
	assert.Equal(suite.T(), models.QAEstadoPendiente, qaTask.Estado)
}

func (suite *FeatureServiceTestSuite) TestMoveToQA_Idempotent() {
	suite.createFeature("SP-P7-1", "Core", "Para QA", models.FeatureStatusReview)

	first, created, err := suite.service.MoveToQA("SP-P7-1", "pm@portal")
	suite.Require().NoError(err)
	assert.True(suite.T(), created)

	second, created, err := suite.service.MoveToQA("SP-P7-1", "pm@portal")
	suite.Require().NoError(err)
	assert.False(suite.T(), created)
	assert.Equal(suite.T(), first.ID, second.ID)

	var count int64
	suite.db.Model(&models.QATask{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *FeatureServiceTestSuite) TestMoveToQA_SetsFeatureCompleted() {
	suite.createFeature("SP-P7-1", "Core", "Para QA", models.FeatureStatusReview)

	_, _, err := suite.service.MoveToQA("SP-P7-1", "pm@portal")
	suite.Require().NoError(err)

	var feature models.Feature
	suite.Require().NoError(suite.db.First(&feature, "id = ?", "SP-P7-1").Error)
	assert.Equal(suite.T(), models.FeatureStatusCompleted, feature.Status)
}

func (suite *FeatureServiceTestSuite) TestBulkDelete_ExcludesTerminalFeatures() {
	suite.createFeature("SP-P7-1", "Core", "Abierta", models.FeatureStatusTodo)
	suite.createFeature("SP-P7-2", "Core", "En progreso", models.FeatureStatusInProgress)
	suite.createFeature("SP-P7-3", "Core", "Cerrada", models.FeatureStatusDone)

	result, err := suite.service.BulkDelete([]string{"SP-P7-1", "SP-P7-2", "SP-P7-3"})
	suite.Require().NoError(err)

	assert.ElementsMatch(suite.T(), []string{"SP-P7-1", "SP-P7-2"}, result.Deleted)
	assert.Equal(suite.T(), []string{"SP-P7-3"}, result.Excluded)
	assert.Empty(suite.T(), result.Failed)
	assert.Contains(suite.T(), result.Message, "2")
	assert.Contains(suite.T(), result.Message, "1")
}

func (suite *FeatureServiceTestSuite) TestBulkDelete_RequiresSelection() {
	_, err := suite.service.BulkDelete(nil)
	assert.ErrorIs(suite.T(), err, ErrNoFeaturesSelected)
}

func (suite *FeatureServiceTestSuite) TestTrackTime_StartMovesToInProgress() {
	suite.createFeature("SP-P7-1", "Core", "Con timer", models.FeatureStatusTodo)

	feature, _, err := suite.service.TrackTime("SP-P7-1", TimerStart, time.Now())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.FeatureStatusInProgress, feature.Status)
	assert.NotNil(suite.T(), feature.StartedAt)
}

func (suite *FeatureServiceTestSuite) TestTrackTime_CompleteWritesActualHours() {
	feature := suite.createFeature("SP-P7-1", "Core", "Con timer", models.FeatureStatusInProgress)
	started := time.Now().Add(-90 * time.Minute)
	feature.StartedAt = &started
	suite.Require().NoError(suite.db.Save(feature).Error)

	updated, _, err := suite.service.TrackTime("SP-P7-1", TimerComplete, time.Now())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.FeatureStatusCompleted, updated.Status)
	assert.Nil(suite.T(), updated.StartedAt)
	assert.Equal(suite.T(), 1.5, updated.ActualHours)
}

func TestFeatureServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeatureServiceTestSuite))
}
