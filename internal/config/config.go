// Package config carga la configuración desde el entorno (.env opcional).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de base de datos soportados
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config contiene la configuración de la aplicación
type Config struct {
	Port                int
	DBDriver            string
	DatabaseURL         string // DSN de postgres
	SQLitePath          string
	CORSOrigins         []string
	LogLevel            string
	LogPretty           bool
	SessionTTL          time.Duration
	CryptoAPIKey        string
	CryptoAPIURL        string
	RateRefreshInterval time.Duration // 0 desactiva la actualización de cotizaciones
}

// Load lee la configuración de las variables de entorno
func Load() (*Config, error) {
	// El .env es opcional
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8080),
		DBDriver:            getEnv("DB_DRIVER", DriverSQLite),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "database/control_diario.db"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", false),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		CryptoAPIKey:        getEnv("CRYPTO_API_KEY", ""),
		CryptoAPIURL:        getEnv("CRYPTO_API_URL", "https://min-api.cryptocompare.com"),
		RateRefreshInterval: getEnvAsDuration("RATE_REFRESH_INTERVAL", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica que la configuración sea usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT inválido: %d", c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH es obligatorio con DB_DRIVER=%s", DriverSQLite)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL es obligatorio con DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("DB_DRIVER desconocido: %q", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL debe ser positivo")
	}
	if c.RateRefreshInterval < 0 {
		return fmt.Errorf("RATE_REFRESH_INTERVAL no puede ser negativo")
	}
	return nil
}

// Addr devuelve la dirección de escucha del servidor
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
