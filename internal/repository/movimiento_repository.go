package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

type MovimientoRepository struct {
	db *sql.DB
}

func NewMovimientoRepository(db *sql.DB) *MovimientoRepository {
	return &MovimientoRepository{
		db: db,
	}
}

// Create inserta el movimiento; el id y created_at los asigna el repositorio
func (r *MovimientoRepository) Create(ctx context.Context, in models.NewMovimiento) (models.Movimiento, error) {
	m := models.Movimiento{
		ID:          uuid.NewString(),
		Fecha:       in.Fecha,
		Ventas:      in.Ventas,
		Gastos:      in.Gastos,
		Comentarios: in.Comentarios,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO movimientos (id, fecha, ventas, gastos, comentarios, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, m.ID, m.Fecha, m.Ventas, m.Gastos, m.Comentarios, m.CreatedAt)
	if err != nil {
		return models.Movimiento{}, fmt.Errorf("error insertando movimiento: %w", err)
	}

	return m, nil
}

// List devuelve todos los movimientos, los más recientes primero
func (r *MovimientoRepository) List(ctx context.Context) ([]models.Movimiento, error) {
	movimientos := []models.Movimiento{}
	query := `
		SELECT id, fecha, ventas, gastos, comentarios, created_at
		FROM movimientos
		ORDER BY fecha DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error consultando movimientos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Movimiento
		var comentarios sql.NullString
		var createdAt sql.NullTime
		err := rows.Scan(
			&m.ID,
			&m.Fecha,
			&m.Ventas,
			&m.Gastos,
			&comentarios,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error leyendo movimiento: %w", err)
		}
		m.Comentarios = comentarios.String
		m.CreatedAt = createdAt.Time
		movimientos = append(movimientos, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error recorriendo movimientos: %w", err)
	}

	return movimientos, nil
}
