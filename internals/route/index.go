package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/configs"
	"ghg_inventory_backend/internals/constants"
	analyticsRoute "ghg_inventory_backend/internals/features/forms/analytics/route"
	schemaRoute "ghg_inventory_backend/internals/features/forms/schemas/route"
	submissionRoute "ghg_inventory_backend/internals/features/forms/submissions/route"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
	authMiddleware "ghg_inventory_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, c *cache.SummaryCache) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== GROUPS =====================

	logger.Sugar.Info("Setting up ADMIN group (Auth + admin role)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(configs.JWTSecret),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("form administration"), constants.AdminOnly),
	)

	logger.Sugar.Info("Setting up USER group (Auth + enumerator/admin)...")
	user := app.Group("/api/u",
		authMiddleware.AuthMiddleware(configs.JWTSecret),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorEnumerator("data entry"), constants.EnumeratorAndAbove),
	)

	// ===================== MOUNT ROUTES =====================

	logger.Sugar.Info("Mounting form schema routes...")
	schemaRoute.SchemaAdminRoutes(admin, db, c)
	schemaRoute.SchemaUserRoutes(user, db, c)

	logger.Sugar.Info("Mounting submission routes...")
	submissionRoute.SubmissionAdminRoutes(admin, db, c)
	submissionRoute.SubmissionUserRoutes(user, db, c)

	logger.Sugar.Info("Mounting analytics routes...")
	analyticsRoute.AnalyticsAdminRoutes(admin, db, c)
}
