package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.LocalCache = (*LocalCache)(nil)

// LocalCache caché local en memoria (no persiste entre procesos).
type LocalCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewLocalCache construye la caché vacía.
func NewLocalCache() *LocalCache {
	return &LocalCache{values: make(map[string]string)}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *LocalCache) SetMulti(_ context.Context, values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.values[k] = v
	}
	return nil
}

func (c *LocalCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
