package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Refresher es lo que el listener necesita del feed
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PGListener escucha NOTIFY de postgres y recarga el feed, así los movimientos
// insertados por otros procesos también llegan a los suscriptores.
type PGListener struct {
	dsn       string
	channel   string
	feed      Refresher
	log       zerolog.Logger
	timeout   time.Duration
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
	mutex     sync.Mutex
	listener  *pq.Listener
}

// NewPGListener crea el puente LISTEN/NOTIFY para el canal indicado
func NewPGListener(dsn, channel string, feed Refresher, log zerolog.Logger) *PGListener {
	return &PGListener{
		dsn:     dsn,
		channel: channel,
		feed:    feed,
		log:     log.With().Str("component", "ledger_listener").Logger(),
		timeout: 10 * time.Second,
	}
}

// Start abre la conexión de LISTEN y arranca la goroutine de escucha
func (l *PGListener) Start() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.isRunning {
		return nil
	}

	listener := pq.NewListener(l.dsn, 10*time.Second, time.Minute, l.reportProblem)
	if err := listener.Listen(l.channel); err != nil {
		listener.Close()
		return fmt.Errorf("error escuchando canal %s: %w", l.channel, err)
	}

	l.listener = listener
	l.isRunning = true
	l.stopChan = make(chan struct{})
	l.done = make(chan struct{})

	go l.loop(listener, l.stopChan, l.done)

	l.log.Info().Str("channel", l.channel).Msg("Escuchando notificaciones de movimientos")
	return nil
}

// Stop detiene la escucha y cierra la conexión
func (l *PGListener) Stop() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isRunning {
		return
	}

	l.isRunning = false
	close(l.stopChan)
	<-l.done
	if err := l.listener.Close(); err != nil {
		l.log.Warn().Err(err).Msg("Error cerrando listener")
	}
	l.log.Info().Msg("Listener de movimientos detenido")
}

func (l *PGListener) loop(listener *pq.Listener, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case n, ok := <-listener.Notify:
			if !ok {
				return
			}
			l.handle(n)
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("Ping al listener falló")
				}
			}()
		case <-stop:
			return
		}
	}
}

// handle recarga el feed. n es nil cuando pq se reconectó y pudo perder avisos.
func (l *PGListener) handle(n *pq.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	evt := l.log.Debug()
	if n != nil {
		evt = evt.Str("id", n.Extra)
	} else {
		evt = evt.Bool("reconnected", true)
	}
	evt.Msg("Notificación de movimientos")

	if err := l.feed.Refresh(ctx); err != nil {
		l.log.Error().Err(err).Msg("Error recargando movimientos")
	}
}

func (l *PGListener) reportProblem(ev pq.ListenerEventType, err error) {
	if err != nil {
		l.log.Warn().Err(err).Int("event", int(ev)).Msg("Evento del listener de postgres")
	}
}
