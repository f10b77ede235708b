package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// QuoteFetcher obtiene una cotización nueva
type QuoteFetcher interface {
	GetUSDTQuote(ctx context.Context) (models.RateQuote, error)
}

// RateUpdater refresca periódicamente la cotización de USDT y guarda la última buena
type RateUpdater struct {
	interval    time.Duration
	fetcher     QuoteFetcher
	log         zerolog.Logger
	isRunning   bool
	stopChan    chan struct{}
	mutex       sync.Mutex
	lastUpdated time.Time
	latest      models.RateQuote
	hasQuote    bool
}

// NewRateUpdater crea el actualizador; un intervalo 0 lo deja desactivado
func NewRateUpdater(interval time.Duration, fetcher QuoteFetcher, log zerolog.Logger) *RateUpdater {
	return &RateUpdater{
		interval: interval,
		fetcher:  fetcher,
		log:      log.With().Str("component", "rate_updater").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start inicia el servicio de actualización de cotizaciones
func (u *RateUpdater) Start() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if u.isRunning {
		return
	}
	if u.interval <= 0 {
		u.log.Info().Msg("Actualización de cotizaciones desactivada")
		return
	}

	u.isRunning = true
	u.stopChan = make(chan struct{})
	stop := u.stopChan

	go func() {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()

		// Actualizar inmediatamente al iniciar
		u.Update(context.Background())

		for {
			select {
			case <-ticker.C:
				u.Update(context.Background())
			case <-stop:
				return
			}
		}
	}()

	u.log.Info().Dur("interval", u.interval).Msg("Servicio de actualización de cotizaciones iniciado")
}

// Stop detiene el servicio de actualización de cotizaciones
func (u *RateUpdater) Stop() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.isRunning {
		return
	}

	u.isRunning = false
	close(u.stopChan)
	u.log.Info().Msg("Servicio de actualización de cotizaciones detenido")
}

// Update pide una cotización nueva; si falla se conserva la anterior
func (u *RateUpdater) Update(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	quote, err := u.fetcher.GetUSDTQuote(ctx)
	if err != nil {
		u.log.Warn().Err(err).Msg("No se pudo actualizar la cotización")
		return
	}

	u.mutex.Lock()
	u.latest = quote
	u.hasQuote = true
	u.lastUpdated = time.Now()
	u.mutex.Unlock()

	u.log.Debug().Float64("usdt_brl", quote.UsdtBrl).Float64("usdt_ars", quote.UsdtArs).Msg("Cotización actualizada")
}

// Latest devuelve la última cotización válida y si existe
func (u *RateUpdater) Latest() (models.RateQuote, bool) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.latest, u.hasQuote
}

// GetLastUpdated obtiene la última vez que se actualizó la cotización
func (u *RateUpdater) GetLastUpdated() time.Time {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.lastUpdated
}
