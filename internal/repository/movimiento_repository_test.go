package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/config"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/database"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

func newTestRepository(t *testing.T) *MovimientoRepository {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "control.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMovimientoRepository(db)
}

func TestMovimientoRepository_CreateAssignsID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	m, err := repo.Create(ctx, models.NewMovimiento{Fecha: "2025-03-14", Ventas: 1500, Gastos: 200, Comentarios: "caja"})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, 1300.0, m.Balance())

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, "caja", list[0].Comentarios)
	assert.Equal(t, 1500.0, list[0].Ventas)
	assert.Equal(t, 200.0, list[0].Gastos)
}

func TestMovimientoRepository_ListOrdersByFechaDesc(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, fecha := range []string{"2025-01-10", "2025-03-01", "2025-02-15"} {
		_, err := repo.Create(ctx, models.NewMovimiento{Fecha: fecha, Ventas: 10})
		require.NoError(t, err)
	}
	later, err := repo.Create(ctx, models.NewMovimiento{Fecha: "2025-03-01", Ventas: 20})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	assert.Equal(t, later.ID, list[0].ID, "mismo día: el último creado va primero")
	assert.Equal(t, "2025-03-01", list[1].Fecha)
	assert.Equal(t, "2025-02-15", list[2].Fecha)
	assert.Equal(t, "2025-01-10", list[3].Fecha)
}

func TestMovimientoRepository_EmptyList(t *testing.T) {
	repo := newTestRepository(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
