package services

import (
	"fmt"
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

// CotizacionServiceTestSuite defines the test suite for CotizacionService
type CotizacionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CotizacionService
}

// SetupTest runs before each test
func (suite *CotizacionServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Cotizacion{},
		&models.Project{},
		&models.CotizacionesConfig{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.service = NewCotizacionService(
		repository.NewCotizacionRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewConfigRepository(suite.db),
	)
}

// TearDownTest runs after each test
func (suite *CotizacionServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *CotizacionServiceTestSuite) createCotizacion(estado models.CotizacionEstado) *models.Cotizacion {
	cotizacion, err := suite.service.CreateCotizacion(CreateCotizacionInput{
		Titulo: "App demo",
	})
	suite.Require().NoError(err)
	if estado != models.EstadoBorrador {
		suite.Require().NoError(suite.db.Model(cotizacion).Update("estado", estado).Error)
		cotizacion.Estado = estado
	}
	return cotizacion
}

func (suite *CotizacionServiceTestSuite) TestCreateCotizacion_YearScopedFolio() {
	year := time.Now().Year()

	first, err := suite.service.CreateCotizacion(CreateCotizacionInput{Titulo: "Primera"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), fmt.Sprintf("COT-%d-001", year), first.Folio)
	assert.Equal(suite.T(), models.EstadoBorrador, first.Estado)

	second, err := suite.service.CreateCotizacion(CreateCotizacionInput{Titulo: "Segunda"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), fmt.Sprintf("COT-%d-002", year), second.Folio)
}

func (suite *CotizacionServiceTestSuite) TestCreateCotizacion_FolioSurvivesDelete() {
	year := time.Now().Year()

	first, err := suite.service.CreateCotizacion(CreateCotizacionInput{Titulo: "Primera"})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.DeleteCotizacion(first.ID))

	second, err := suite.service.CreateCotizacion(CreateCotizacionInput{Titulo: "Segunda"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), fmt.Sprintf("COT-%d-002", year), second.Folio)
}

func (suite *CotizacionServiceTestSuite) TestChangeEstado_ValidChain() {
	cotizacion := suite.createCotizacion(models.EstadoBorrador)

	for _, estado := range []models.CotizacionEstado{
		models.EstadoEnviada,
		models.EstadoEnRevision,
		models.EstadoAceptada,
		models.EstadoGenerandoContrato,
		models.EstadoContratoRevision,
		models.EstadoEnviadaAFirma,
		models.EstadoFirmada,
	} {
		updated, err := suite.service.ChangeEstado(cotizacion.ID, estado)
		suite.Require().NoError(err)
		assert.Equal(suite.T(), estado, updated.Estado)
	}
}

func (suite *CotizacionServiceTestSuite) TestChangeEstado_SkippingStagesRejected() {
	cotizacion := suite.createCotizacion(models.EstadoBorrador)

	_, err := suite.service.ChangeEstado(cotizacion.ID, models.EstadoFirmada)

	assert.ErrorIs(suite.T(), err, ErrTransicionInvalida)
}

func (suite *CotizacionServiceTestSuite) TestChangeEstado_RechazadaFromPreSignature() {
	cotizacion := suite.createCotizacion(models.EstadoEnRevision)

	updated, err := suite.service.ChangeEstado(cotizacion.ID, models.EstadoRechazada)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.EstadoRechazada, updated.Estado)
}

func (suite *CotizacionServiceTestSuite) TestChangeEstado_FirmadaCannotBeRechazada() {
	cotizacion := suite.createCotizacion(models.EstadoFirmada)

	_, err := suite.service.ChangeEstado(cotizacion.ID, models.EstadoRechazada)

	assert.ErrorIs(suite.T(), err, ErrTransicionInvalida)
}

func (suite *CotizacionServiceTestSuite) TestConvertToProject_OnlyFromFirmada() {
	cotizacion := suite.createCotizacion(models.EstadoAceptada)

	_, err := suite.service.ConvertToProject(cotizacion.ID, "AP", "pm@portal")

	assert.ErrorIs(suite.T(), err, ErrCotizacionNoFirmada)
}

func (suite *CotizacionServiceTestSuite) TestConvertToProject_CreatesProjectAndMarksConvertida() {
	cotizacion := suite.createCotizacion(models.EstadoFirmada)

	project, err := suite.service.ConvertToProject(cotizacion.ID, "ap", "pm@portal")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "AP", project.Siglas)
	assert.Equal(suite.T(), "App demo", project.Name)
	assert.Equal(suite.T(), 1, project.Phase)

	reloaded, err := suite.service.GetCotizacion(cotizacion.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.EstadoConvertida, reloaded.Estado)
	suite.Require().NotNil(reloaded.ProjectID)
	assert.Equal(suite.T(), project.ID, *reloaded.ProjectID)
}

func (suite *CotizacionServiceTestSuite) TestGetConfig_FallsBackToDefaults() {
	cfg, err := suite.service.GetConfig()
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 800.0, cfg.Tarifas.DesarrolladorMin)
	assert.Equal(suite.T(), 100.0, cfg.Porcentajes.Sum())
}

func TestRecomputeDesglose(t *testing.T) {
	desglose := RecomputeDesglose(models.Desglose{
		Roles: []models.DesgloseRol{
			{Rol: "Desarrollador", Horas: 100, TarifaPorHora: 800, Total: 1}, // stale total is ignored
			{Rol: "Diseño", Horas: 20, TarifaPorHora: 600},
		},
		Meses:       4,
		Prototipado: models.Prototipado{Incluido: true, Costo: 12000},
	})

	assert.Equal(t, 120.0, desglose.HorasTotales)
	assert.Equal(t, 80000.0, desglose.Roles[0].Total)
	assert.Equal(t, 12000.0, desglose.Roles[1].Total)
	assert.Equal(t, 104000.0, desglose.CostoTotal)
	assert.Equal(t, 26000.0, desglose.Mensualidad)
}

func TestValidateConfig(t *testing.T) {
	cfg := models.DefaultCotizacionesConfig()
	assert.Empty(t, ValidateConfig(&cfg))

	// Within the ±0.01 tolerance
	cfg.Porcentajes.Marketing = 2.99
	assert.Empty(t, ValidateConfig(&cfg))

	// Outside the tolerance
	cfg.Porcentajes.Marketing = 2.98
	errs := ValidateConfig(&cfg)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "100%")
}

func TestValidateConfig_RateFloors(t *testing.T) {
	cfg := models.DefaultCotizacionesConfig()
	cfg.Tarifas.GabyMin = 900
	cfg.Reglas.TipoCambioUSD = 0

	errs := ValidateConfig(&cfg)
	assert.Len(t, errs, 2)
}

func TestCalcularTarifaArely(t *testing.T) {
	cfg := models.DefaultCotizacionesConfig()

	// 800 × 5 / 27
	assert.InDelta(t, 148.148, CalcularTarifaArely(&cfg), 0.001)

	cfg.Porcentajes.Desarrollador = 0
	assert.Equal(t, 0.0, CalcularTarifaArely(&cfg))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.EstadoBorrador, models.EstadoEnviada))
	assert.True(t, CanTransition(models.EstadoFirmada, models.EstadoConvertida))
	assert.False(t, CanTransition(models.EstadoBorrador, models.EstadoAceptada))
	assert.False(t, CanTransition(models.EstadoRechazada, models.EstadoEnviada))
	assert.False(t, CanTransition(models.EstadoConvertida, models.EstadoBorrador))
}

func TestCotizacionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CotizacionServiceTestSuite))
}
