package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/someoxygen/chat-app/internal/auth"
)

// identityKey is where the auth middleware parks the verified username.
const identityKey = "user"

// JWTAuth rejects any request without a valid bearer token and makes
// the verified identity available to handlers. Handlers never trust
// identity fields from the request body.
func JWTAuth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ParseBearer(c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		identity, err := tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// Identity returns the verified username set by JWTAuth.
func Identity(c *fiber.Ctx) string {
	if v, ok := c.Locals(identityKey).(string); ok {
		return v
	}
	return ""
}

// RateLimiter is a fixed-window per-key limiter backed by Redis.
type RateLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: rdb, prefix: prefix, limit: limit, window: window}
}

func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := Identity(c)
		if key == "" {
			key = c.IP()
		}
		ctx := context.Background()
		redisKey := fmt.Sprintf("%s:%s", r.prefix, key)
		count, err := r.redis.Incr(ctx, redisKey).Result()
		if err != nil {
			// Rate limiting is protection, not a dependency; fail open.
			return c.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, redisKey, r.window)
		}
		if count > int64(r.limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
