package cache

import (
	"strings"
	"sync"
	"time"
)

// ============================================================================
// CACHE EN MEMORIA CON TTL
// ============================================================================
// Almacén thread-safe con expiración automática. Se usa cuando no hay Redis
// configurado (desarrollo, tests, una sola instancia).
//
// Uso:
//   c := NewCache(30*time.Second, time.Minute)
//   c.Set("dashboard:summary", data)
//   if v, ok := c.Get("dashboard:summary"); ok { ... }

// CacheItem es un valor con su expiración (UnixNano, 0 = no expira)
type CacheItem struct {
	Value      any
	Expiration int64
}

// Cache es un almacén key-value con TTL
type Cache struct {
	items             map[string]CacheItem
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan struct{}
	stopOnce          sync.Once
}

// NewCache crea un caché con TTL por defecto; cleanupInterval controla la
// limpieza periódica de items expirados (0 = sin limpieza)
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items:             make(map[string]CacheItem),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.startCleanupTimer()
	}
	return c
}

// Set almacena un valor con la expiración por defecto
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL almacena un valor con una duración específica
func (c *Cache) SetWithTTL(key string, value any, duration time.Duration) {
	var expiration int64
	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = CacheItem{Value: value, Expiration: expiration}
	c.mu.Unlock()
}

// Get retorna (valor, true) si existe y no ha expirado
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}
	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}
	return item.Value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix elimina todas las keys con el prefijo dado
// (ej: "dashboard:" invalida todos los resúmenes)
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			count++
		}
	}
	return count
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]CacheItem)
	c.mu.Unlock()
}

// Count retorna el número de items (incluye expirados aún no limpiados)
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop detiene la limpieza automática. Es seguro llamarlo más de una vez.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
