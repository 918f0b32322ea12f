package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	sharedCache "github.com/davicafu/hexasalon/shared/platform/cache"
)

// ErrCacheDown simula una caché caída.
var ErrCacheDown = errors.New("cache unavailable")

// DummyCache es un mock de caché en memoria, seguro para concurrencia.
// El valor cero es usable. Con Fail=true todas las operaciones devuelven ErrCacheDown.
type DummyCache struct {
	store map[string][]byte
	mu    sync.RWMutex
	Fail  bool
	Sets  int
}

// Verificación estática para asegurar que implementa la interfaz compartida.
var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{
		store: make(map[string][]byte),
	}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Fail {
		return false, ErrCacheDown
	}

	data, ok := c.store[key]
	if !ok {
		return false, nil // Cache miss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ErrCacheDown
	}

	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if c.store == nil {
		c.store = make(map[string][]byte)
	}
	c.store[key] = data
	c.Sets++
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ErrCacheDown
	}
	delete(c.store, key)
	return nil
}
