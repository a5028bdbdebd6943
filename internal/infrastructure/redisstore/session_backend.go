package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/caminvoice-api/internal/application/session"
)

// Claves y canal por defecto.
const (
	DefaultKeyPrefix = "caminvoice:session:"
	DefaultChannel   = "caminvoice:auth-events"
)

// SessionBackend implementa session.Backend: una clave JSON con TTL por sesión
// y un canal pub/sub para los eventos de autenticación.
type SessionBackend struct {
	client  *redis.Client
	prefix  string
	channel string
}

// NewSessionBackend construye el backend. prefix y channel vacíos toman los valores por defecto.
func NewSessionBackend(client *redis.Client, prefix, channel string) *SessionBackend {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &SessionBackend{client: client, prefix: prefix, channel: channel}
}

func (b *SessionBackend) key(sessionID string) string { return b.prefix + sessionID }

// Save escribe la identidad con expiración ttl.
func (b *SessionBackend) Save(ctx context.Context, id session.Identity, ttl time.Duration) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("redis: serializar sesión: %w", err)
	}
	return b.client.Set(ctx, b.key(id.SessionID), raw, ttl).Err()
}

// Load devuelve (nil, nil) si la clave no existe o expiró.
func (b *SessionBackend) Load(ctx context.Context, sessionID string) (*session.Identity, error) {
	raw, err := b.client.Get(ctx, b.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var id session.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("redis: sesión corrupta %s: %w", sessionID, err)
	}
	return &id, nil
}

// Delete borra la sesión.
func (b *SessionBackend) Delete(ctx context.Context, sessionID string) error {
	return b.client.Del(ctx, b.key(sessionID)).Err()
}

// Publish difunde el evento a todas las instancias suscritas.
func (b *SessionBackend) Publish(ctx context.Context, ev session.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis: serializar evento: %w", err)
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

// Subscribe abre la suscripción y reenvía los eventos decodificados hasta que ctx se cancela.
func (b *SessionBackend) Subscribe(ctx context.Context) (<-chan session.Event, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	out := make(chan session.Event)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev session.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn().Err(err).Str("channel", msg.Channel).Msg("evento de sesión inválido")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
