package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/config"
)

// Canal de NOTIFY que usa el trigger de postgres
const MovimientosChannel = "movimientos"

var baseMigrations = []string{
	`CREATE TABLE IF NOT EXISTS movimientos (
		id TEXT PRIMARY KEY,
		fecha TEXT NOT NULL,
		ventas DOUBLE PRECISION NOT NULL DEFAULT 0,
		gastos DOUBLE PRECISION NOT NULL DEFAULT 0,
		comentarios TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movimientos_fecha
	ON movimientos(fecha, created_at)`,
}

// Trigger que avisa a los listeners cada vez que se inserta un movimiento
var postgresMigrations = []string{
	`CREATE OR REPLACE FUNCTION notify_movimientos() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + MovimientosChannel + `', NEW.id);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS movimientos_notify ON movimientos`,
	`CREATE TRIGGER movimientos_notify
	AFTER INSERT ON movimientos
	FOR EACH ROW EXECUTE FUNCTION notify_movimientos()`,
}

// RunMigrations crea el esquema si no existe. Todas las sentencias son idempotentes.
func RunMigrations(db *sql.DB, driver string) error {
	log.Info().Str("driver", driver).Msg("Ejecutando migraciones de la base de datos")

	statements := baseMigrations
	if driver == config.DriverPostgres {
		statements = append(append([]string{}, baseMigrations...), postgresMigrations...)
	}

	for i, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error en migración %d: %w", i+1, err)
		}
	}

	log.Info().Int("migrations", len(statements)).Msg("Migraciones aplicadas")
	return nil
}
