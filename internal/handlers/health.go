package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse representa el estado de salud del sistema
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// HealthCheck es un servicio a verificar (base de datos, caché)
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []HealthCheck
	version string
	timeout time.Duration
}

func NewHealthHandler(version string, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, version: version, timeout: 2 * time.Second}
}

// Health (GET /api/health) verifica cada servicio; 503 si alguno falla
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	services := make(map[string]string, len(h.checks))
	overall := "healthy"

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		err := check.Ping(ctx)
		cancel()

		if err != nil {
			services[check.Name] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services[check.Name] = "healthy"
		}
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   h.version,
	})
}
