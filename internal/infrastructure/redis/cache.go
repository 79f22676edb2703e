// Package redis implementa la caché local sobre Redis, para despliegues donde varios
// procesos del mismo sitio comparten la caché.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.LocalCache = (*Cache)(nil)

// DefaultPrefix prefijo de las claves de la caché en Redis.
const DefaultPrefix = "maquipaes:"

// Cache claves con prefijo sobre un cliente go-redis.
type Cache struct {
	rdb    *goredis.Client
	prefix string
}

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, cfg Config) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("conectar redis %s: %w", cfg.Addr, err)
	}
	return New(rdb, cfg.Prefix), nil
}

// New envuelve un cliente existente.
func New(rdb *goredis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

// Close cierra el cliente.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("leer %s: %w", key, err)
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, c.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("escribir %s: %w", key, err)
	}
	return nil
}

// SetMulti escribe las claves en un MULTI/EXEC.
func (c *Cache) SetMulti(ctx context.Context, values map[string]string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, c.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("escribir lote: %w", err)
	}
	return nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("eliminar %s: %w", key, err)
	}
	return nil
}
