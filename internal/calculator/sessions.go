package calculator

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrSessionNotFound se devuelve cuando la sesión no existe o expiró
var ErrSessionNotFound = errors.New("sesión no encontrada")

// SessionStore guarda los tableros abiertos. Una sesión vive mientras se use;
// pasado el TTL sin accesos se descarta junto con su historial.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore crea un store con el TTL indicado
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Create abre un tablero nuevo y devuelve su id
func (s *SessionStore) Create() (string, *Dashboard) {
	id := uuid.NewString()
	d := NewDashboard()
	s.cache.Set(id, d, s.ttl)
	return id, d
}

// Get busca un tablero y renueva su expiración
func (s *SessionStore) Get(id string) (*Dashboard, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	d := v.(*Dashboard)
	s.cache.Set(id, d, s.ttl)
	return d, nil
}

// Count devuelve la cantidad de sesiones abiertas
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
