package models

import "time"

// Movimiento representa un registro diario de ventas y gastos
type Movimiento struct {
	ID          string    `json:"id"`
	Fecha       string    `json:"fecha"` // yyyy-MM-dd
	Ventas      float64   `json:"ventas"`
	Gastos      float64   `json:"gastos"`
	Comentarios string    `json:"comentarios"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance devuelve ventas - gastos del movimiento
func (m Movimiento) Balance() float64 {
	return m.Ventas - m.Gastos
}

// NewMovimiento es lo que envía el cliente; el id lo asigna el store
type NewMovimiento struct {
	Fecha       string  `json:"fecha"`
	Ventas      float64 `json:"ventas"`
	Gastos      float64 `json:"gastos"`
	Comentarios string  `json:"comentarios"`
}

// MovimientoView agrega el balance por fila para la tabla del frontend
type MovimientoView struct {
	Movimiento
	Balance float64 `json:"balance"`
}
