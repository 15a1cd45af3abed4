package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Check is a named readiness probe of one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// DBCheck pings a database/sql pool.
func DBCheck(db *sql.DB) Check {
	return Check{Name: "database", Ping: db.PingContext}
}

// RedisCheck pings a Redis client.
func RedisCheck(client redis.UniversalClient) Check {
	return Check{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// HealthCheck reports readiness: 200 when every dependency answers within two seconds, 503 otherwise.
func HealthCheck(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", chk.Name+" unavailable", nil)
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
