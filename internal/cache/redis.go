package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"movielens-etl/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// InitRedis conecta al Redis de cfg. Con REDIS_ADDR vacío el cache queda
// deshabilitado y los helpers no hacen nada.
func InitRedis(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("redis")
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR vacío, cache deshabilitado")
		return nil
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("conectando a redis %s: %w", cfg.RedisAddr, err)
	}

	client = c
	log.Info("Redis OK", zap.String("addr", cfg.RedisAddr))
	return nil
}

// SetClient reemplaza el cliente global (nil deshabilita el cache).
func SetClient(c *redis.Client) {
	client = c
}

// Close cierra el cliente global, si lo hay.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// =======================================================
//  Helpers JSON para usar desde los servicios
// =======================================================

// GetJSON lee una key de Redis, si existe deserializa el JSON en `dest`.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa `value` a JSON y lo guarda en Redis con TTL en segundos.
func SetJSON(ctx context.Context, key string, value any, ttlSeconds int) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	return client.Set(ctx, key, b, ttl).Err()
}

// Delete borra las keys indicadas.
func Delete(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}
