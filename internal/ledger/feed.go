// Package ledger mantiene la lista viva de movimientos y su balance.
//
// Feed es la frontera asíncrona del sistema: cada suscriptor recibe la lista
// completa al suscribirse y de nuevo después de cada cambio. Las entregas se
// hacen de a una, nunca superpuestas.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// FechaLayout es el formato de fecha de los movimientos
const FechaLayout = "2006-01-02"

// ErrInvalidFecha se devuelve cuando la fecha no respeta yyyy-MM-dd
var ErrInvalidFecha = errors.New("fecha inválida, se espera yyyy-MM-dd")

// Store es el almacenamiento de movimientos
type Store interface {
	Create(ctx context.Context, in models.NewMovimiento) (models.Movimiento, error)
	List(ctx context.Context) ([]models.Movimiento, error)
}

// PersistenceError envuelve una falla de lectura o escritura del store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error de persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Listener recibe la lista completa de movimientos. No debe llamar a
// Append ni a Refresh de forma sincrónica.
type Listener func([]models.Movimiento)

type Feed struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time

	deliverMu sync.Mutex // serializa las entregas

	mu      sync.Mutex
	subs    map[uint64]Listener
	nextID  uint64
	current []models.Movimiento
}

// NewFeed crea un feed vacío; llamar a Refresh para cargar el estado inicial
func NewFeed(store Store, log zerolog.Logger) *Feed {
	return &Feed{
		store:   store,
		log:     log.With().Str("component", "ledger_feed").Logger(),
		now:     time.Now,
		subs:    make(map[uint64]Listener),
		current: []models.Movimiento{},
	}
}

// Subscribe entrega la lista actual de inmediato y luego en cada cambio.
// La función devuelta cancela la suscripción y se puede llamar más de una vez.
func (f *Feed) Subscribe(onChange Listener) (unsubscribe func()) {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = onChange
	snapshot := cloneMovimientos(f.current)
	f.mu.Unlock()

	onChange(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Append valida y guarda un movimiento y después notifica a los suscriptores
func (f *Feed) Append(ctx context.Context, in models.NewMovimiento) (models.Movimiento, error) {
	in, err := f.normalize(in)
	if err != nil {
		return models.Movimiento{}, err
	}

	m, err := f.store.Create(ctx, in)
	if err != nil {
		return models.Movimiento{}, &PersistenceError{Op: "append", Err: err}
	}

	// El movimiento ya quedó guardado: si falla la recarga sólo se registra
	if err := f.Refresh(ctx); err != nil {
		f.log.Warn().Err(err).Str("id", m.ID).Msg("No se pudo recargar el feed después de guardar")
	}

	return m, nil
}

// Refresh relee el store y entrega la lista nueva a todos los suscriptores
func (f *Feed) Refresh(ctx context.Context) error {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	list, err := f.store.List(ctx)
	if err != nil {
		return &PersistenceError{Op: "list", Err: err}
	}

	f.mu.Lock()
	f.current = cloneMovimientos(list)
	ids := make([]uint64, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, f.subs[id])
	}
	f.mu.Unlock()

	for _, l := range listeners {
		l(cloneMovimientos(list))
	}

	f.log.Debug().Int("movimientos", len(list)).Int("subscribers", len(listeners)).Msg("Feed actualizado")
	return nil
}

// List lee los movimientos directamente del store
func (f *Feed) List(ctx context.Context) ([]models.Movimiento, error) {
	list, err := f.store.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return list, nil
}

// Current devuelve la última lista entregada
func (f *Feed) Current() []models.Movimiento {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneMovimientos(f.current)
}

// Subscribers devuelve la cantidad de suscriptores activos
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) normalize(in models.NewMovimiento) (models.NewMovimiento, error) {
	in.Fecha = strings.TrimSpace(in.Fecha)
	if in.Fecha == "" {
		in.Fecha = f.now().Format(FechaLayout)
		return in, nil
	}
	if _, err := time.Parse(FechaLayout, in.Fecha); err != nil {
		return in, fmt.Errorf("%w: %q", ErrInvalidFecha, in.Fecha)
	}
	return in, nil
}

// Balance suma ventas - gastos de todos los registros
func Balance(records []models.Movimiento) float64 {
	total := decimal.Zero
	for _, m := range records {
		total = total.Add(decimal.NewFromFloat(m.Ventas)).Sub(decimal.NewFromFloat(m.Gastos))
	}
	return total.InexactFloat64()
}

// Views agrega el balance de cada fila
func Views(records []models.Movimiento) []models.MovimientoView {
	views := make([]models.MovimientoView, 0, len(records))
	for _, m := range records {
		views = append(views, models.MovimientoView{Movimiento: m, Balance: m.Balance()})
	}
	return views
}

func cloneMovimientos(in []models.Movimiento) []models.Movimiento {
	out := make([]models.Movimiento, len(in))
	copy(out, in)
	return out
}
