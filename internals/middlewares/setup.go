package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"ghg_inventory_backend/internals/configs"
	reqLogger "ghg_inventory_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware(configs.CorsAllowOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(reqLogger.LoggerMiddleware())
	app.Use(MetricsMiddleware())
	app.Use(GlobalRateLimiter(configs.GetEnvInt("RATE_LIMIT_PER_MINUTE", 100)))
}
