package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/visionarieshub/portal-api/internal/config"
	"github.com/visionarieshub/portal-api/internal/constants"
	"github.com/visionarieshub/portal-api/internal/database"
	"github.com/visionarieshub/portal-api/internal/handlers"
	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logging with file rotation
	logging.InitLogger(cfg.LogDir)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // username (empty for default user)
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTeamTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	featureRepo := repository.NewFeatureRepository(db)
	qaTaskRepo := repository.NewQATaskRepository(db)
	egresoRepo := repository.NewEgresoRepository(db)
	precioRepo := repository.NewPrecioPorHoraRepository(db)
	cotizacionRepo := repository.NewCotizacionRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	adminService := services.NewAdminService(userRepo)
	taskService := services.NewTeamTaskService(taskRepo, aiService)
	projectService := services.NewProjectService(projectRepo, qaTaskRepo)
	featureService := services.NewFeatureService(featureRepo, projectRepo, qaTaskRepo, aiService)
	egresoService := services.NewEgresoService(egresoRepo, precioRepo, taskRepo, featureRepo)
	cotizacionService := services.NewCotizacionService(cotizacionRepo, projectRepo, configRepo)
	calendarService := services.NewCalendarService(calendarRepo, featureRepo, projectRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(adminService)
	taskHandler := handlers.NewTeamTaskHandler(taskService, authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	featureHandler := handlers.NewFeatureHandler(featureService)
	egresoHandler := handlers.NewEgresoHandler(egresoService, precioRepo)
	cotizacionHandler := handlers.NewCotizacionHandler(cotizacionService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Portal de Operaciones API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Admin routes (superadmin only)
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireSuperadmin())
		{
			admin.GET("/list-internal-users", adminHandler.ListInternalUsers)
			admin.POST("/update-user-role", adminHandler.UpdateUserRole)
			admin.POST("/revoke-internal-access", adminHandler.RevokeInternalAccess)
		}

		// User access routes (superadmin only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireSuperadmin())
		{
			users.POST("/assign-access", adminHandler.AssignAccess)
			users.POST("/set-portal-access", adminHandler.SetPortalAccess)
		}

		// Trello integration routes
		trello := api.Group("/trello")
		trello.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireInternal(), middleware.RequireCapability(services.CapManageIntegrations))
		{
			trello.POST("/disconnect", taskHandler.DisconnectTrello)
		}

		// Team task routes (internal users)
		tasks := api.Group("/team-tasks")
		tasks.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireInternal())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequireCapability(services.CapManageTasks), taskHandler.CreateTask)
			tasks.POST("/generate-from-transcript", middleware.RequireCapability(services.CapManageTasks), taskHandler.GenerateFromTranscript)
			tasks.POST("/confirm-generated", middleware.RequireCapability(services.CapManageTasks), taskHandler.ConfirmGenerated)
			tasks.POST("/import-trello-json", middleware.RequireCapability(services.CapManageIntegrations), taskHandler.ImportTrelloJSON)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireCapability(services.CapManageTasks), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireCapability(services.CapManageTasks), taskHandler.DeleteTask)
			tasks.POST("/:id/time-tracking", middleware.RequireCapability(services.CapManageTasks), taskHandler.TrackTime)
		}

		// Project routes
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(), middleware.LoadUser())
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", middleware.RequireCapability(services.CapManageProjects), projectHandler.CreateProject)
			projects.GET("/:id", middleware.RequireProject(), projectHandler.GetProject)
			projects.PATCH("/:id", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), projectHandler.DeleteProject)

			// Features
			projects.GET("/:id/features", middleware.RequireProject(), featureHandler.ListFeatures)
			projects.POST("/:id/features", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.CreateFeature)
			projects.POST("/:id/features/bulk-delete", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.BulkDelete)
			projects.POST("/:id/features/analyze", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.AnalyzeCSV)
			projects.POST("/:id/features/upload", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.UploadCSV)
			projects.POST("/:id/features/re-estimate", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.ReEstimate)
			projects.GET("/:id/features/:featureId", middleware.RequireProject(), featureHandler.GetFeature)
			projects.PATCH("/:id/features/:featureId", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.UpdateFeature)
			projects.DELETE("/:id/features/:featureId", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.DeleteFeature)
			projects.POST("/:id/features/:featureId/move-to-qa", middleware.RequireProject(), middleware.RequireCapability(services.CapManageProjects), featureHandler.MoveToQA)
			projects.POST("/:id/features/:featureId/time-tracking", middleware.RequireProject(), featureHandler.TrackTime)

			// QA tasks
			projects.GET("/:id/qa-tasks", middleware.RequireProject(), projectHandler.ListQATasks)
			projects.PATCH("/:id/qa-tasks/:qaTaskId", middleware.RequireProject(), projectHandler.UpdateQAEstado)

			// Calendar
			projects.GET("/:id/calendar", middleware.RequireProject(), calendarHandler.ListEvents)
			projects.GET("/:id/calendar/filter", middleware.RequireProject(), calendarHandler.ListEvents)
			projects.POST("/:id/calendar", middleware.RequireProject(), calendarHandler.CreateEvent)
			projects.POST("/:id/calendar/sync", middleware.RequireProject(), calendarHandler.Sync)
			projects.PATCH("/:id/calendar/:eventId", middleware.RequireProject(), calendarHandler.UpdateEvent)
			projects.DELETE("/:id/calendar/:eventId", middleware.RequireProject(), calendarHandler.DeleteEvent)
		}

		// Finance routes
		egresos := api.Group("/egresos")
		egresos.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireCapability(services.CapViewFinanzas))
		{
			egresos.GET("", egresoHandler.ListEgresos)
			egresos.POST("", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.CreateEgreso)
			egresos.POST("/upload-historical", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.UploadHistorical)
			egresos.POST("/generar-automaticos-todos", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.GenerateAutomatic)
			egresos.GET("/diagnostico", egresoHandler.Diagnostico)
			egresos.POST("/fix-completed-tasks-hours", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.FixCompletedTaskHours)
			egresos.GET("/precios-por-hora", egresoHandler.ListPrecios)
			egresos.POST("/precios-por-hora", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.SavePrecio)
			egresos.DELETE("/precios-por-hora/:id", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.DeletePrecio)
			egresos.GET("/:id", egresoHandler.GetEgreso)
			egresos.PATCH("/:id", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.UpdateEgreso)
			egresos.DELETE("/:id", middleware.RequireCapability(services.CapManageFinanzas), egresoHandler.DeleteEgreso)
		}

		// Quote routes
		cotizaciones := api.Group("/cotizaciones")
		cotizaciones.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireCapability(services.CapViewCotizaciones))
		{
			cotizaciones.GET("", cotizacionHandler.ListCotizaciones)
			cotizaciones.POST("", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.CreateCotizacion)
			cotizaciones.GET("/:id", cotizacionHandler.GetCotizacion)
			cotizaciones.PATCH("/:id", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.UpdateCotizacion)
			cotizaciones.DELETE("/:id", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.DeleteCotizacion)
			cotizaciones.POST("/:id/estado", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.ChangeEstado)
			cotizaciones.PATCH("/:id/contrato", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.UpdateContrato)
			cotizaciones.POST("/:id/convert", middleware.RequireCapability(services.CapManageCotizaciones), cotizacionHandler.ConvertToProject)
		}

		// Quoting configuration
		configGroup := api.Group("/config")
		configGroup.Use(middleware.RequireAuth(), middleware.LoadUser(), middleware.RequireCapability(services.CapManageCotizaciones))
		{
			configGroup.GET("/cotizaciones", cotizacionHandler.GetConfig)
			configGroup.PUT("/cotizaciones", cotizacionHandler.SaveConfig)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
