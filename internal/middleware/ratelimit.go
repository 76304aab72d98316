package middleware

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/yourorg/salesdash/internal/config"
)

// Limits per client IP.
const (
	AuthMax        = 10
	AuthExpiration = time.Minute
	APIMax         = 100
	APIExpiration  = time.Minute
)

// AuthRateLimiter limits register/login attempts per IP. A nil storage keeps
// the counters in memory.
func AuthRateLimiter(storage fiber.Storage) fiber.Handler {
	return newLimiter("auth:", AuthMax, AuthExpiration, storage,
		"Too many authentication attempts, try again in a minute")
}

// APIRateLimiter limits the authenticated resource endpoints per IP.
func APIRateLimiter(storage fiber.Storage) fiber.Handler {
	return newLimiter("api:", APIMax, APIExpiration, storage,
		"Too many requests, try again in a minute")
}

// newLimiter keys counters by prefix+IP so limiters sharing one storage keep
// separate budgets.
func newLimiter(prefix string, max int, expiration time.Duration, storage fiber.Storage, msg string) fiber.Handler {
	retryAfter := int(expiration.Seconds())
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return prefix + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       msg,
				"retry_after": retryAfter,
			})
		},
		Storage: storage,
	})
}

// NewRedisStorage returns limiter storage shared by every instance behind
// the same Redis. The fiber driver panics when Redis is unreachable, so
// callers ping first.
func NewRedisStorage(cfg config.RedisConfig) *fiberredis.Storage {
	host, port := splitAddr(cfg.Addr)
	return fiberredis.New(fiberredis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.Password,
		Database: cfg.DB,
		PoolSize: 10,
	})
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}
