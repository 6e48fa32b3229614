package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"

	"github.com/someoxygen/chat-app/internal/auth"
	"github.com/someoxygen/chat-app/internal/config"
	"github.com/someoxygen/chat-app/internal/metrics"
	wstransport "github.com/someoxygen/chat-app/internal/ws"
)

// Options carries the wired collaborators the router needs.
type Options struct {
	Handlers   *Handlers
	Tokens     *auth.TokenManager
	WS         *wstransport.Server
	Redis      *redis.Client // optional, enables rate limiting
	UploadsDir string        // non-empty when the disk blob store is used
}

func NewServer(cfg *config.Config, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 500 * 1024 * 1024, // media arrives base64-inlined
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	h := opts.Handlers
	app.Post("/register", h.register)
	app.Post("/login", h.login)
	app.Post("/refresh", h.refresh)

	if opts.UploadsDir != "" {
		app.Static("/uploads", opts.UploadsDir)
	}

	authed := app.Group("", JWTAuth(opts.Tokens))
	if opts.Redis != nil {
		rl := NewRateLimiter(opts.Redis, "ratelimit", cfg.RateLimit.Requests, cfg.RateWindow)
		authed.Use(rl.Middleware())
	}

	authed.Post("/logout", h.logout)
	authed.Get("/users", h.listUsers)
	authed.Get("/private-messages/:user1/:user2", h.listConversation)
	authed.Post("/private-message", h.sendMessage)
	authed.Put("/private-message/:id", h.editMessage)
	authed.Delete("/private-message/:id", h.deleteMessage)
	authed.Delete("/private-messages/:user1/:user2", h.deleteConversation)
	authed.Post("/upload", h.uploadImage)
	authed.Post("/upload-audio", h.uploadAudio)
	authed.Post("/upload-video", h.uploadVideo)

	// The live channel authenticates in-band (query token or join
	// frame), so the upgrade route sits outside the bearer middleware.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(opts.WS.Handle()))

	return app
}
