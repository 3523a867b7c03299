package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"

	"ghg_inventory_backend/internals/configs"
	database "ghg_inventory_backend/internals/databases"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
	middlewares "ghg_inventory_backend/internals/middlewares"
	routes "ghg_inventory_backend/internals/route"
	"ghg_inventory_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	if err := logger.Init(configs.LogLevel, configs.LogFormat); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               8 * 1024 * 1024,
	})

	// Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (matches statement_timeout on the DB side)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Debugw("request", "id", id, "method", c.Method(), "url", c.OriginalURL(),
			"status", c.Response().StatusCode(), "dur", time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	// DB connect + pool + migrations
	if err := database.ConnectDB(); err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	database.TunePool()
	if err := database.Ping(); err != nil {
		log.Fatalw("database ping failed", "error", err)
	}
	if configs.AutoMigrate {
		if err := database.RunMigrations(database.DB); err != nil {
			log.Fatalw("migration failed", "error", err)
		}
	}
	if configs.SeedOnStart {
		if err := seeds.RunAllSeeds(context.Background(), database.DB); err != nil {
			log.Fatalw("seeding failed", "error", err)
		}
	}

	summaryCache := cache.New(configs.RedisURL, configs.SummaryCacheTTL)

	routes.SetupRoutes(app, database.DB, summaryCache)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Infof("listening on :%s", configs.Port)
		if err := app.Listen("0.0.0.0:" + configs.Port); err != nil {
			log.Fatalw("server error", "error", err)
		}
	}()

	// graceful shutdown, then close cache and DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warnw("shutdown", "error", err)
	}
	if err := summaryCache.Close(); err != nil {
		log.Warnw("close cache", "error", err)
	}
	database.Close()
}
