package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/handlers"
	"github.com/yourorg/salesdash/internal/middleware"
	"github.com/yourorg/salesdash/internal/models"
)

// Deps agrupa los handlers ya construidos por cmd/server.
type Deps struct {
	Tokens        *auth.TokenService
	Auth          *handlers.AuthHandler
	Products      *handlers.ResourceHandler[models.Product]
	WebsiteVisits *handlers.ResourceHandler[models.WebsiteVisit]
	StoreVisits   *handlers.ResourceHandler[models.StoreVisit]
	Dashboard     *handlers.DashboardHandler
	Health        *handlers.HealthHandler
	Status        *handlers.StatusHandler
	Hub           *events.Hub

	// LimiterStorage es opcional; nil guarda los contadores en memoria
	LimiterStorage fiber.Storage
}

func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	// Health check (sin auth ni rate limiting)
	api.Get("/health", d.Health.Health)

	requireAuth := middleware.RequireAuth(d.Tokens)
	authLimit := middleware.AuthRateLimiter(d.LimiterStorage)
	apiLimit := middleware.APIRateLimiter(d.LimiterStorage)

	// ============================================================================
	// AUTENTICACIÓN (rate limiting estricto)
	// ============================================================================
	authGroup := api.Group("/auth", authLimit)
	authGroup.Post("/register", d.Auth.Register)
	authGroup.Post("/login", d.Auth.Login)

	api.Get("/users", requireAuth, apiLimit, d.Auth.GetUser)
	api.Post("/users", authLimit, d.Auth.CreateUser)

	// ============================================================================
	// RECURSOS (requieren Bearer token)
	// ============================================================================
	mountResource(api.Group("/products", requireAuth, apiLimit), d.Products)
	mountResource(api.Group("/website-visits", requireAuth, apiLimit), d.WebsiteVisits)
	mountResource(api.Group("/store-visits", requireAuth, apiLimit), d.StoreVisits)

	api.Get("/dashboard/summary", requireAuth, apiLimit, d.Dashboard.Summary)

	if d.Status != nil {
		api.Get("/status", requireAuth, apiLimit, d.Status.GetStatus)
	}

	// ============================================================================
	// EVENTOS EN VIVO
	// ============================================================================
	// GET /api/ws/events?token=<jwt>
	if d.Hub != nil {
		api.Get("/ws/events", middleware.RequireWebSocketAuth(d.Tokens), d.Hub.Handler())
	}
}

func mountResource[T any](r fiber.Router, h *handlers.ResourceHandler[T]) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}
