package handlers

import (
	"database/sql"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/salesdash/internal/cache"
)

// StatusHandler expone el estado interno del proceso (pool de conexiones,
// caché, clientes websocket). Requiere autenticación.
type StatusHandler struct {
	db        func() sql.DBStats
	cache     cache.Store
	hub       HubStats
	version   string
	startTime time.Time
}

// HubStats es la parte de events.Hub que se reporta
type HubStats interface {
	ClientCount() int
	Dropped() uint64
}

func NewStatusHandler(version string, db func() sql.DBStats, c cache.Store, hub HubStats) *StatusHandler {
	return &StatusHandler{db: db, cache: c, hub: hub, version: version, startTime: time.Now()}
}

// SystemStatus representa el estado completo del sistema
type SystemStatus struct {
	Backend  BackendStatus   `json:"backend"`
	Database ConnectionStats `json:"database"`
	Cache    CacheStatus     `json:"cache"`
	Events   *EventsStatus   `json:"events,omitempty"`
}

type BackendStatus struct {
	Uptime     int64  `json:"uptime_seconds"`
	Version    string `json:"version,omitempty"`
	Goroutines int    `json:"goroutines"`
}

// ConnectionStats representa estadísticas del pool de conexiones
type ConnectionStats struct {
	Open         int   `json:"open"`
	InUse        int   `json:"in_use"`
	Idle         int   `json:"idle"`
	MaxOpen      int   `json:"max_open"`
	WaitCount    int64 `json:"wait_count"`
	WaitDuration int64 `json:"wait_duration_ms"`
}

type CacheStatus struct {
	Backend string       `json:"backend"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

type EventsStatus struct {
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped"`
}

// GetStatus (GET /api/status)
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	stats := h.db()
	status := SystemStatus{
		Backend: BackendStatus{
			Uptime:     int64(time.Since(h.startTime).Seconds()),
			Version:    h.version,
			Goroutines: runtime.NumGoroutine(),
		},
		Database: ConnectionStats{
			Open:         stats.OpenConnections,
			InUse:        stats.InUse,
			Idle:         stats.Idle,
			MaxOpen:      stats.MaxOpenConnections,
			WaitCount:    stats.WaitCount,
			WaitDuration: stats.WaitDuration.Milliseconds(),
		},
		Cache: CacheStatus{Backend: h.cache.Name()},
	}

	// solo Redis lleva contadores de hits/misses
	if rs, ok := h.cache.(*cache.RedisStore); ok {
		s := rs.Stats()
		status.Cache.Stats = &s
	}
	if h.hub != nil {
		status.Events = &EventsStatus{Clients: h.hub.ClientCount(), Dropped: h.hub.Dropped()}
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(status)
}
