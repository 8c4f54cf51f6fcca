// Package ratelimit keeps request counters in Redis so limits hold across
// instances; nothing is stored in process-global maps.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	config "github.com/desainhub/desainhub-api/configs"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
)

var Ctx = context.Background()
var Client *redis.Client

func ConnectRedis() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR not set, rate limiting disabled")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := Client.Ping(Ctx).Result(); err != nil {
		log.Fatalf("🔥 Failed to connect to Redis: %v", err)
	}

	log.Println("✅ Redis connected")
}

// PerActor limits each actor to limit requests per window within the given
// scope. The counter key carries a TTL so entries evict themselves. When
// Redis is unavailable the limiter fails open.
func PerActor(scope string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Client == nil {
			return c.Next()
		}

		actor := c.IP()
		if token, ok := c.Locals("user").(*jwt.Token); ok {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if id, ok := claims["user_id"].(string); ok {
					actor = id
				}
			}
		}

		key := fmt.Sprintf("rl:%s:%s", scope, actor)
		n, err := Client.Incr(Ctx, key).Result()
		if err != nil {
			log.Printf("Rate limit check failed for %s: %v", key, err)
			return c.Next()
		}
		if n == 1 {
			Client.Expire(Ctx, key, window)
		}

		if n > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please slow down",
			})
		}
		return c.Next()
	}
}
