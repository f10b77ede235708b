package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/config"
)

var DB *sql.DB

// InitDB abre la base configurada, la deja en DB y corre las migraciones
func InitDB(cfg *config.Config) error {
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == config.DriverSQLite {
		dsn = cfg.SQLitePath
	}

	db, err := Open(cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open conecta con el driver indicado y ejecuta las migraciones
func Open(driver, dsn string) (*sql.DB, error) {
	if driver == config.DriverSQLite {
		// Crear el directorio de la base si no existe
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("error creando directorio %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error abriendo la base (%s): %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// sqlite no admite escritores concurrentes
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error conectando a la base (%s): %w", driver, err)
	}

	if err := RunMigrations(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
