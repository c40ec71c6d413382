package services

import (
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

// EgresoServiceTestSuite defines the test suite for EgresoService
type EgresoServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *EgresoService
}

// SetupTest runs before each test
func (suite *EgresoServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Egreso{},
		&models.PrecioPorHora{},
		&models.TeamTask{},
		&models.Feature{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.service = NewEgresoService(
		repository.NewEgresoRepository(suite.db),
		repository.NewPrecioPorHoraRepository(suite.db),
		repository.NewTeamTaskRepository(suite.db),
		repository.NewFeatureRepository(suite.db),
	)
}

// TearDownTest runs after each test
func (suite *EgresoServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *EgresoServiceTestSuite) seedPrecio(email, nombre string, tarifa float64) {
	suite.Require().NoError(suite.db.Create(&models.PrecioPorHora{
		PersonaEmail:  email,
		PersonaNombre: nombre,
		PrecioPorHora: tarifa,
	}).Error)
}

func (suite *EgresoServiceTestSuite) seedCompletedTask(title, assignee string, hours float64) *models.TeamTask {
	task := &models.TeamTask{
		Title:       title,
		Assignee:    assignee,
		Status:      models.TeamTaskStatusCompleted,
		Category:    "Desarrollo",
		Priority:    models.PriorityMedium,
		ActualHours: hours,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *EgresoServiceTestSuite) TestCreateEgreso_DerivesIVAAndTotal() {
	egreso, err := suite.service.CreateEgreso(CreateEgresoInput{
		Concepto:   "Licencias Figma",
		Empresa:    "  figma   inc ",
		Subtotal:   1000,
		AplicarIVA: true,
	})
	suite.Require().NoError(err)

	assert.NotEmpty(suite.T(), egreso.ID)
	assert.Equal(suite.T(), 160.0, egreso.IVA)
	assert.Equal(suite.T(), 1160.0, egreso.Total)
	assert.Equal(suite.T(), "FIGMA INC", egreso.EmpresaNormalizada)
	assert.Equal(suite.T(), models.EgresoVariable, egreso.Tipo)
	assert.Equal(suite.T(), models.EgresoPendiente, egreso.Status)
	assert.Equal(suite.T(), MesActual(time.Now()), egreso.Mes)
}

func (suite *EgresoServiceTestSuite) TestCreateEgreso_SinIVA() {
	egreso, err := suite.service.CreateEgreso(CreateEgresoInput{
		Concepto: "Hosting",
		Subtotal: 1000,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 0.0, egreso.IVA)
	assert.Equal(suite.T(), 1000.0, egreso.Total)
}

func (suite *EgresoServiceTestSuite) TestCreateEgreso_RequiresConcepto() {
	_, err := suite.service.CreateEgreso(CreateEgresoInput{Subtotal: 100})

	assert.ErrorIs(suite.T(), err, ErrConceptoFaltante)
}

func (suite *EgresoServiceTestSuite) TestUpdateEgreso_TogglingIVARecomputesTotal() {
	egreso, err := suite.service.CreateEgreso(CreateEgresoInput{
		Concepto:   "Servidores",
		Subtotal:   2500,
		AplicarIVA: true,
	})
	suite.Require().NoError(err)

	aplicar := false
	updated, err := suite.service.UpdateEgreso(egreso.ID, UpdateEgresoInput{AplicarIVA: &aplicar})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 0.0, updated.IVA)
	assert.Equal(suite.T(), 2500.0, updated.Total)
}

func (suite *EgresoServiceTestSuite) TestUpdateEgreso_NewSubtotalKeepsIVAToggle() {
	egreso, err := suite.service.CreateEgreso(CreateEgresoInput{
		Concepto:   "Servidores",
		Subtotal:   1000,
		AplicarIVA: true,
	})
	suite.Require().NoError(err)

	subtotal := 2000.0
	updated, err := suite.service.UpdateEgreso(egreso.ID, UpdateEgresoInput{Subtotal: &subtotal})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 320.0, updated.IVA)
	assert.Equal(suite.T(), 2320.0, updated.Total)
}

func (suite *EgresoServiceTestSuite) TestGenerateAutomatic_BillsCompletedWork() {
	suite.seedPrecio("dev@portal", "Dev Uno", 350)
	suite.seedCompletedTask("Integración Stripe", "dev@portal", 4)
	suite.seedCompletedTask("Sin horas", "dev@portal", 0)

	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	result, err := suite.service.GenerateAutomatic(now, "admin@portal")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1, result.Creados)
	assert.Equal(suite.T(), "Agosto 2026", result.Mes)
	suite.Require().Len(result.ResumenPorPersona, 1)
	assert.Equal(suite.T(), "dev@portal", result.ResumenPorPersona[0].Persona)

	egresos, err := suite.service.ListEgresos(repository.EgresoFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(egresos, 1)
	assert.Equal(suite.T(), 1400.0, egresos[0].Subtotal)
	assert.Equal(suite.T(), "Equipo", egresos[0].LineaNegocio)
	assert.Equal(suite.T(), "Horas", egresos[0].Categoria)
	assert.Contains(suite.T(), egresos[0].Concepto, "Integración Stripe")
}

func (suite *EgresoServiceTestSuite) TestGenerateAutomatic_NeverBillsTwice() {
	suite.seedPrecio("dev@portal", "Dev Uno", 350)
	suite.seedCompletedTask("Integración Stripe", "dev@portal", 4)

	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	first, err := suite.service.GenerateAutomatic(now, "admin@portal")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, first.Creados)

	second, err := suite.service.GenerateAutomatic(now, "admin@portal")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, second.Creados)
	assert.Empty(suite.T(), second.ResumenPorPersona)
}

func (suite *EgresoServiceTestSuite) TestGenerateAutomatic_WithoutRatesReturnsMessage() {
	result, err := suite.service.GenerateAutomatic(time.Now(), "admin@portal")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 0, result.Creados)
	assert.NotEmpty(suite.T(), result.Mensaje)
}

func (suite *EgresoServiceTestSuite) TestFixCompletedTaskHours_BackfillsFromTimer() {
	task := suite.seedCompletedTask("Migración", "dev@portal", 0)
	suite.Require().NoError(suite.db.Model(task).Update("accumulated_time", int64(5400)).Error)

	result, err := suite.service.FixCompletedTaskHours()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, result.Fixed)

	var reloaded models.TeamTask
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Equal(suite.T(), 1.5, reloaded.ActualHours)
}

func (suite *EgresoServiceTestSuite) TestImportHistoricalCSV() {
	csvData := "Línea de negocio,Categoría,Empresa,Equipo,Concepto,Subtotal,IVA,Total,Tipo,Mes,Status,Factura,Comprobante,Fecha pago\n" +
		"Operación,Software,Adobe,Diseño,Creative Cloud,\"$1,336.50\",213.84,\"1,550.34\",Fijo,Julio 2026,Pagado,,,2026-07-05\n" +
		"Operación,Software,Slack,Equipo,Mensualidad,no-numero,0,0,Fijo,Julio 2026,Pagado,,,\n"

	result, err := suite.service.ImportHistoricalCSV(strings.NewReader(csvData), "admin@portal")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1, result.Created)
	suite.Require().Len(result.Errors, 1)
	assert.Contains(suite.T(), result.Errors[0], "fila 3")

	egresos, err := suite.service.ListEgresos(repository.EgresoFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(egresos, 1)
	assert.Equal(suite.T(), 1336.5, egresos[0].Subtotal)
	assert.Equal(suite.T(), "ADOBE", egresos[0].EmpresaNormalizada)
}

func (suite *EgresoServiceTestSuite) TestImportHistoricalCSV_MissingHeader() {
	csvData := "Concepto,Subtotal\nAlgo,100\n"

	_, err := suite.service.ImportHistoricalCSV(strings.NewReader(csvData), "admin@portal")

	assert.ErrorIs(suite.T(), err, ErrCSVHeaders)
}

func TestMesActual(t *testing.T) {
	assert.Equal(t, "Enero 2027", MesActual(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre 2026", MesActual(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestCalcularIVA(t *testing.T) {
	iva, total := CalcularIVA(1000, true)
	assert.Equal(t, 160.0, iva)
	assert.Equal(t, 1160.0, total)

	iva, total = CalcularIVA(1000, false)
	assert.Equal(t, 0.0, iva)
	assert.Equal(t, 1000.0, total)

	// Rounded to centavos
	iva, total = CalcularIVA(99.99, true)
	assert.Equal(t, 16.0, iva)
	assert.Equal(t, 115.99, total)
}

func TestNormalizarEmpresa(t *testing.T) {
	assert.Equal(t, "AMAZON WEB SERVICES", NormalizarEmpresa("  amazon   web  services "))
	assert.Equal(t, "", NormalizarEmpresa("   "))
}

func TestEgresoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EgresoServiceTestSuite))
}
