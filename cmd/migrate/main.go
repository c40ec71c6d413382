package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/visionarieshub/portal-api/internal/config"
	"github.com/visionarieshub/portal-api/internal/database"
	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MigrationStats tracks the outcome for one collection.
type MigrationStats struct {
	Collection string
	Total      int
	Migrated   int
	Failed     int
}

type seeder func(db *gorm.DB, dryRun bool) MigrationStats

var collections = []string{"projects", "clientes", "cotizaciones", "egresos", "config"}

func main() {
	dryRun := flag.Bool("dry-run", false, "validate and report without writing anything")
	collection := flag.String("collection", "", "seed a single collection (projects, clientes, cotizaciones, egresos, config)")
	flag.Parse()

	cfg := config.Load()
	logging.InitLogger(cfg.LogDir)

	if err := database.Connect(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run schema migrations: %v\n", err)
		os.Exit(1)
	}

	seeders := map[string]seeder{
		"projects":     seedProjects,
		"clientes":     seedClientes,
		"cotizaciones": seedCotizaciones,
		"egresos":      seedEgresos,
		"config":       seedConfig,
	}

	selected := collections
	if *collection != "" {
		if _, ok := seeders[*collection]; !ok {
			fmt.Fprintf(os.Stderr, "unknown collection %q, valid: %v\n", *collection, collections)
			os.Exit(1)
		}
		selected = []string{*collection}
	}

	db := database.GetDB()
	failed := false
	for _, name := range selected {
		stats := seeders[name](db, *dryRun)
		mode := ""
		if *dryRun {
			mode = " (dry run)"
		}
		fmt.Printf("%-14s total=%d migrated=%d failed=%d%s\n",
			stats.Collection, stats.Total, stats.Migrated, stats.Failed, mode)
		if stats.Failed > 0 {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func seedProjects(db *gorm.DB, dryRun bool) MigrationStats {
	projects := []models.Project{
		{Name: "Socialmente Preparado", Siglas: "SP", Phase: 7, Status: models.ProjectStatusActivo, CreatedBy: "migration"},
		{Name: "Aura Platform", Siglas: "AU", Phase: 2, Status: models.ProjectStatusActivo, CreatedBy: "migration"},
		{Name: "Pathway LMS", Siglas: "PW", Phase: 1, Status: models.ProjectStatusPausado, CreatedBy: "migration"},
	}

	stats := MigrationStats{Collection: "projects", Total: len(projects)}
	for i := range projects {
		if dryRun {
			stats.Migrated++
			continue
		}
		if err := db.Where(models.Project{Siglas: projects[i].Siglas}).
			FirstOrCreate(&projects[i]).Error; err != nil {
			logging.Logger.Errorf("project %s: %v", projects[i].Siglas, err)
			stats.Failed++
			continue
		}
		stats.Migrated++
	}
	return stats
}

func seedClientes(db *gorm.DB, dryRun bool) MigrationStats {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme-2025"), bcrypt.DefaultCost)
	if err != nil {
		return MigrationStats{Collection: "clientes", Total: 0, Failed: 1}
	}

	clientes := []models.User{
		{Email: "cliente@socialmentepreparado.com", Name: "Socialmente Preparado", Role: models.RoleClient, PasswordHash: string(hash)},
		{Email: "contacto@aurahealth.mx", Name: "Aura Health", Role: models.RoleClient, PasswordHash: string(hash)},
		{Email: "admin@visionarieshub.com", Name: "Portal Admin", Role: models.RoleAdmin, Internal: true, Superadmin: true, PasswordHash: string(hash)},
	}

	stats := MigrationStats{Collection: "clientes", Total: len(clientes)}
	for i := range clientes {
		if dryRun {
			stats.Migrated++
			continue
		}
		if err := db.Where(models.User{Email: clientes[i].Email}).
			FirstOrCreate(&clientes[i]).Error; err != nil {
			logging.Logger.Errorf("cliente %s: %v", clientes[i].Email, err)
			stats.Failed++
			continue
		}
		stats.Migrated++
	}
	return stats
}

func seedCotizaciones(db *gorm.DB, dryRun bool) MigrationStats {
	year := time.Now().Year()
	cotizaciones := []models.Cotizacion{
		{
			Folio:         fmt.Sprintf("COT-%d-001", year),
			Titulo:        "App de seguimiento nutricional",
			ClienteNombre: "Aura Health",
			TipoProyecto:  "MVP",
			Estado:        models.EstadoBorrador,
			Desglose: services.RecomputeDesglose(models.Desglose{
				Roles: []models.DesgloseRol{
					{Rol: "Desarrollador", Horas: 160, TarifaPorHora: 800},
					{Rol: "Diseño", Horas: 40, TarifaPorHora: 600},
				},
				Meses: 3,
			}),
			CreatedBy: "migration",
		},
		{
			Folio:         fmt.Sprintf("COT-%d-002", year),
			Titulo:        "Rediseño portal corporativo",
			ClienteNombre: "Socialmente Preparado",
			TipoProyecto:  "Evolución",
			Estado:        models.EstadoEnviada,
			CreatedBy:     "migration",
		},
	}

	stats := MigrationStats{Collection: "cotizaciones", Total: len(cotizaciones)}
	for i := range cotizaciones {
		if dryRun {
			stats.Migrated++
			continue
		}
		if err := db.Where(models.Cotizacion{Folio: cotizaciones[i].Folio}).
			FirstOrCreate(&cotizaciones[i]).Error; err != nil {
			logging.Logger.Errorf("cotización %s: %v", cotizaciones[i].Folio, err)
			stats.Failed++
			continue
		}
		stats.Migrated++
	}
	return stats
}

func seedEgresos(db *gorm.DB, dryRun bool) MigrationStats {
	mes := services.MesActual(time.Now())
	egresos := []models.Egreso{
		{
			ID:           uuid.New().String(),
			LineaNegocio: "Operación",
			Categoria:    "Software",
			Empresa:      "Google",
			Concepto:     "Google Workspace",
			Subtotal:     1200,
			IVA:          192,
			Total:        1392,
			Tipo:         models.EgresoFijo,
			Mes:          mes,
			Status:       models.EgresoPagado,
			CreatedBy:    "migration",
		},
		{
			ID:           uuid.New().String(),
			LineaNegocio: "Operación",
			Categoria:    "Infraestructura",
			Empresa:      "Amazon Web Services",
			Concepto:     "Hosting mensual",
			Subtotal:     2500,
			IVA:          400,
			Total:        2900,
			Tipo:         models.EgresoFijo,
			Mes:          mes,
			Status:       models.EgresoPendiente,
			CreatedBy:    "migration",
		},
	}

	stats := MigrationStats{Collection: "egresos", Total: len(egresos)}
	for i := range egresos {
		if dryRun {
			stats.Migrated++
			continue
		}
		egresos[i].EmpresaNormalizada = services.NormalizarEmpresa(egresos[i].Empresa)
		if err := db.Where("concepto = ? AND mes = ?", egresos[i].Concepto, mes).
			FirstOrCreate(&egresos[i]).Error; err != nil {
			logging.Logger.Errorf("egreso %s: %v", egresos[i].Concepto, err)
			stats.Failed++
			continue
		}
		stats.Migrated++
	}
	return stats
}

func seedConfig(db *gorm.DB, dryRun bool) MigrationStats {
	stats := MigrationStats{Collection: "config", Total: 1}
	if dryRun {
		stats.Migrated++
		return stats
	}

	cfg := models.DefaultCotizacionesConfig()
	cfg.ID = 1
	if err := db.Where(models.CotizacionesConfig{ID: 1}).
		FirstOrCreate(&cfg).Error; err != nil {
		logging.Logger.Errorf("config: %v", err)
		stats.Failed++
		return stats
	}
	stats.Migrated++
	return stats
}
