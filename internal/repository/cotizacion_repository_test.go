package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionarieshub/portal-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

// CountByYear must count soft-deleted rows too, otherwise a deleted quote
// would free its folio for reuse.
func TestCotizacionRepository_CountByYearIgnoresSoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCotizacionRepository(db)

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "cotizacions" WHERE created_at >= \$1 AND created_at < \$2`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByYear(2026)
	require.NoError(t, err)

	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCotizacionRepository_ListFiltersByEstado(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCotizacionRepository(db)

	estado := models.EstadoEnviada
	mock.ExpectQuery(`SELECT \* FROM "cotizacions" WHERE estado = \$1 AND "cotizacions"\."deleted_at" IS NULL ORDER BY created_at DESC`).
		WithArgs(string(estado)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "folio", "estado"}).
			AddRow(1, "COT-2026-001", string(estado)))

	cotizaciones, err := repo.List(&estado)
	require.NoError(t, err)

	require.Len(t, cotizaciones, 1)
	assert.Equal(t, "COT-2026-001", cotizaciones[0].Folio)
	assert.NoError(t, mock.ExpectationsWereMet())
}
