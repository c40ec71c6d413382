package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/visionarieshub/portal-api/internal/database"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type cotizacionTestEnv struct {
	db      *gorm.DB
	handler *CotizacionHandler
	service *services.CotizacionService
}

func setupCotizacionTestEnv(t *testing.T) cotizacionTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Cotizacion{},
		&models.Project{},
		&models.CotizacionesConfig{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	service := services.NewCotizacionService(
		repository.NewCotizacionRepository(db),
		repository.NewProjectRepository(db),
		repository.NewConfigRepository(db),
	)
	handler := NewCotizacionHandler(service)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return cotizacionTestEnv{
		db:      db,
		handler: handler,
		service: service,
	}
}

func TestCotizacionHandler_Create(t *testing.T) {
	env := setupCotizacionTestEnv(t)

	r := gin.New()
	r.POST("/api/cotizaciones", env.handler.CreateCotizacion)

	payload := map[string]interface{}{
		"titulo":         "Plataforma de reservas",
		"cliente_nombre": "Hotel Azul",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/cotizaciones", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response models.Cotizacion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Plataforma de reservas", response.Titulo)
	require.Equal(t, models.EstadoBorrador, response.Estado)
	require.NotEmpty(t, response.Folio)
}

func TestCotizacionHandler_ChangeEstado_InvalidTransition(t *testing.T) {
	env := setupCotizacionTestEnv(t)

	cotizacion, err := env.service.CreateCotizacion(services.CreateCotizacionInput{
		Titulo: "Plataforma de reservas",
	})
	require.NoError(t, err)

	r := gin.New()
	r.PUT("/api/cotizaciones/:id/estado", env.handler.ChangeEstado)

	body, err := json.Marshal(map[string]string{"estado": string(models.EstadoFirmada)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut,
		"/api/cotizaciones/"+strconv.FormatUint(cotizacion.ID, 10)+"/estado", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCotizacionHandler_ConvertRequiresFirmada(t *testing.T) {
	env := setupCotizacionTestEnv(t)

	cotizacion, err := env.service.CreateCotizacion(services.CreateCotizacionInput{
		Titulo: "Plataforma de reservas",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/cotizaciones/:id/convert", env.handler.ConvertToProject)

	body, err := json.Marshal(map[string]string{"siglas": "PR"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost,
		"/api/cotizaciones/"+strconv.FormatUint(cotizacion.ID, 10)+"/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCotizacionHandler_SaveConfig_Invalid(t *testing.T) {
	env := setupCotizacionTestEnv(t)

	r := gin.New()
	r.PUT("/api/config/cotizaciones", env.handler.SaveConfig)

	cfg := models.DefaultCotizacionesConfig()
	cfg.Tarifas.GabyMin = 500
	body, err := json.Marshal(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/config/cotizaciones", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
