package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/calculator"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/config"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/database"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/ledger"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/logger"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/middleware"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/repository"
	routes "github.com/AgusMolinaCode/ControlDiario_Api/internal/server"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/services"
)

func main() {
	// Cargar configuración (.env opcional)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuración inválida")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(appLog)
	middleware.SetLogger(appLog)

	// Inicializar base de datos
	if err := database.InitDB(cfg); err != nil {
		appLog.Fatal().Err(err).Msg("Error al inicializar la base de datos")
	}
	defer database.DB.Close()

	// Feed de movimientos
	feed := ledger.NewFeed(repository.NewMovimientoRepository(database.DB), appLog)
	if err := feed.Refresh(context.Background()); err != nil {
		appLog.Fatal().Err(err).Msg("Error al cargar los movimientos")
	}
	middleware.InitLedger(feed, cfg.CORSOrigins)

	// Con postgres también escuchamos inserciones de otros procesos
	if cfg.DBDriver == config.DriverPostgres {
		listener := ledger.NewPGListener(cfg.DatabaseURL, database.MovimientosChannel, feed, appLog)
		if err := listener.Start(); err != nil {
			appLog.Error().Err(err).Msg("No se pudo iniciar el listener de movimientos")
		} else {
			defer listener.Stop()
		}
	}

	// Calculadora
	middleware.InitCalculator(calculator.NewSessionStore(cfg.SessionTTL))

	// Iniciar el servicio de actualización de cotizaciones
	rateUpdater := services.NewRateUpdater(
		cfg.RateRefreshInterval,
		services.NewRateService(cfg.CryptoAPIURL, cfg.CryptoAPIKey, appLog),
		appLog,
	)
	rateUpdater.Start()
	defer rateUpdater.Stop()
	middleware.SetRateSource(rateUpdater)

	// Crear el router de Gin
	if !cfg.LogPretty {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Configurar CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Configurar las rutas
	routes.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		appLog.Info().Str("addr", srv.Addr).Str("driver", cfg.DBDriver).Msg("Servidor iniciado")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Error al iniciar el servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info().Msg("Apagando servidor...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error().Err(err).Msg("Error al apagar el servidor")
	}
}
