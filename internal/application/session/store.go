package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Identity usuario autenticado de una sesión. Viaja explícitamente (locals de Fiber → casos de uso).
type Identity struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired indica si la sesión venció en now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// EventType cambio de estado de autenticación.
type EventType string

// Eventos publicados por el Store.
const (
	EventSignedIn       EventType = "signed_in"
	EventTokenRefreshed EventType = "token_refreshed"
	EventSignedOut      EventType = "signed_out"
)

// Event notificación de cambio de sesión entre instancias.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Identity  *Identity `json:"identity,omitempty"`
}

// Backend almacenamiento compartido de sesiones y canal de eventos.
type Backend interface {
	Save(ctx context.Context, id Identity, ttl time.Duration) error
	// Load devuelve (nil, nil) si la sesión no existe.
	Load(ctx context.Context, sessionID string) (*Identity, error)
	Delete(ctx context.Context, sessionID string) error
	Publish(ctx context.Context, ev Event) error
	// Subscribe entrega eventos hasta que ctx se cancela; entonces cierra el canal.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Store caché local de sesiones respaldada por un Backend.
// La suscripción a eventos se abre una sola vez (Init) y vive lo que el proceso o hasta Close.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]Identity

	once    sync.Once
	initErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewStore construye el store. ttl es la vida de una sesión nueva.
func NewStore(backend Backend, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]Identity),
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// TTL vida configurada de una sesión.
func (s *Store) TTL() time.Duration { return s.ttl }

// Init abre la suscripción a eventos. Llamadas posteriores devuelven el resultado de la primera.
func (s *Store) Init(ctx context.Context) error {
	s.once.Do(func() {
		subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		events, err := s.backend.Subscribe(subCtx)
		if err != nil {
			cancel()
			s.initErr = fmt.Errorf("session: suscribirse a eventos: %w", err)
			log.Warn().Err(err).Msg("sesiones sin invalidación entre instancias")
			return
		}
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.listen(events)
	})
	return s.initErr
}

func (s *Store) listen(events <-chan Event) {
	defer close(s.done)
	for ev := range events {
		s.apply(ev)
	}
}

// apply sobrescribe sin condiciones la identidad cacheada de la sesión del evento.
func (s *Store) apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Type == EventSignedOut || ev.Identity == nil {
		delete(s.cache, ev.SessionID)
		return
	}
	s.cache[ev.SessionID] = *ev.Identity
}

// Close cancela la suscripción y espera a que termine.
func (s *Store) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Current identidad de la sesión o nil si no existe o expiró.
func (s *Store) Current(ctx context.Context, sessionID string) (*Identity, error) {
	_ = s.Init(ctx)
	now := s.now()

	s.mu.RLock()
	id, ok := s.cache[sessionID]
	s.mu.RUnlock()
	if ok {
		if id.Expired(now) {
			s.forget(sessionID)
			return nil, nil
		}
		return &id, nil
	}

	loaded, err := s.backend.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: cargar %s: %w", sessionID, err)
	}
	if loaded == nil || loaded.Expired(now) {
		return nil, nil
	}
	s.mu.Lock()
	s.cache[sessionID] = *loaded
	s.mu.Unlock()
	return loaded, nil
}

// SignIn persiste la sesión nueva y la anuncia.
func (s *Store) SignIn(ctx context.Context, id Identity) error {
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = s.now().Add(s.ttl)
	}
	return s.persist(ctx, id, EventSignedIn)
}

// Refresh extiende la vida de una sesión existente hasta expiresAt.
func (s *Store) Refresh(ctx context.Context, sessionID string, expiresAt time.Time) (*Identity, error) {
	cur, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, nil
	}
	cur.ExpiresAt = expiresAt
	if err := s.persist(ctx, *cur, EventTokenRefreshed); err != nil {
		return nil, err
	}
	return cur, nil
}

// Clear cierra la sesión: la borra del backend, de la caché y publica signed_out.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_ = s.Init(ctx)
	if err := s.backend.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("session: borrar %s: %w", sessionID, err)
	}
	s.forget(sessionID)
	if err := s.backend.Publish(ctx, Event{Type: EventSignedOut, SessionID: sessionID}); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("no se pudo publicar signed_out")
	}
	return nil
}

func (s *Store) persist(ctx context.Context, id Identity, typ EventType) error {
	_ = s.Init(ctx)
	ttl := id.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session: %s ya expirada", id.SessionID)
	}
	if err := s.backend.Save(ctx, id, ttl); err != nil {
		return fmt.Errorf("session: guardar %s: %w", id.SessionID, err)
	}
	s.mu.Lock()
	s.cache[id.SessionID] = id
	s.mu.Unlock()
	if err := s.backend.Publish(ctx, Event{Type: typ, SessionID: id.SessionID, Identity: &id}); err != nil {
		log.Warn().Err(err).Str("session_id", id.SessionID).Str("event", string(typ)).Msg("no se pudo publicar evento de sesión")
	}
	return nil
}

func (s *Store) forget(sessionID string) {
	s.mu.Lock()
	delete(s.cache, sessionID)
	s.mu.Unlock()
}
