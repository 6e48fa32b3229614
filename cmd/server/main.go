package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/someoxygen/chat-app/internal/api"
	"github.com/someoxygen/chat-app/internal/auth"
	"github.com/someoxygen/chat-app/internal/chat"
	"github.com/someoxygen/chat-app/internal/config"
	"github.com/someoxygen/chat-app/internal/delivery"
	"github.com/someoxygen/chat-app/internal/events"
	"github.com/someoxygen/chat-app/internal/logger"
	"github.com/someoxygen/chat-app/internal/media"
	"github.com/someoxygen/chat-app/internal/presence"
	"github.com/someoxygen/chat-app/internal/store"
	"github.com/someoxygen/chat-app/internal/user"
	"github.com/someoxygen/chat-app/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt secret is required")
	}

	zl, err := logger.New(logger.Config{Development: cfg.App.Env != "production"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	var msgStore store.MessageStore
	var users user.Repository
	if cfg.Mongo.URI != "" {
		mc, err := store.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			zl.Fatalw("mongo init", "err", err)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		db := mc.Database(cfg.Mongo.Database)
		msgStore = store.NewMongoStore(db.Collection(cfg.Mongo.Collection))
		users = user.NewMongoRepository(db.Collection(cfg.Mongo.Users))
		zl.Infow("using mongo store", "database", cfg.Mongo.Database)
	} else {
		msgStore = store.NewMemoryStore()
		users = user.NewMemoryRepository()
		zl.Warn("no mongo uri configured, using in-memory store")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	var pub *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		pub = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl)
		defer func() { _ = pub.Close() }()
	}

	var blobs media.BlobStore
	var uploadsDir string
	switch cfg.Media.Backend {
	case "s3":
		blobs, err = media.NewS3Store(ctx, cfg.Media.AWSRegion, cfg.Media.AWSBucket)
		if err != nil {
			zl.Fatalw("s3 init", "err", err)
		}
	default:
		disk, err := media.NewDiskStore(cfg.Media.Dir, cfg.App.PublicBaseURL)
		if err != nil {
			zl.Fatalw("disk store init", "err", err)
		}
		blobs = disk
		uploadsDir = disk.Dir()
	}

	registry := presence.NewRegistry()
	router := delivery.NewRouter(registry, zl)
	chatSvc := chat.NewService(msgStore, router, pub, zl)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTTL)
	authSvc := auth.NewService(users, tokens, rdb, cfg.RefreshTTL)
	mediaSvc := media.NewService(blobs, zl)

	wsSrv := ws.NewServer(chatSvc, registry, tokens, cfg, zl)
	handlers := api.NewHandlers(chatSvc, authSvc, mediaSvc, users, zl)
	app := api.NewServer(cfg, api.Options{
		Handlers:   handlers,
		Tokens:     tokens,
		WS:         wsSrv,
		Redis:      rdb,
		UploadsDir: uploadsDir,
	})

	errs := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.App.Port)
		zl.Infow("server starting", "addr", addr)
		errs <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zl.Fatalw("server error", "err", err)
	case sig := <-quit:
		zl.Infow("signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Warnw("shutdown", "err", err)
	}
	zl.Info("server stopped")
}
