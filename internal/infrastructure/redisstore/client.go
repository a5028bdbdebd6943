package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/caminvoice-api/pkg/config"
)

// NewClient conecta con Redis. Si no responde solo se registra un aviso: el cliente reconecta solo.
func NewClient(cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("no se pudo contactar Redis")
	} else {
		log.Info().Str("addr", cfg.Addr).Msg("conectado a Redis")
	}
	return client
}

// Ping verifica la conectividad (health check).
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return errors.New("redis client not configured")
	}
	return client.Ping(ctx).Err()
}
