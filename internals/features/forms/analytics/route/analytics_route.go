package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/analytics/controller"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/middlewares"
)

// Mounted under /api/a.
func AnalyticsAdminRoutes(r fiber.Router, db *gorm.DB, c *cache.SummaryCache) {
	ctl := controller.NewAnalyticsController(db, c)

	g := r.Group("/form-types/:id/years/:year")
	g.Get("/summary", ctl.FormSummary)
	g.Get("/fields/:field_key/summary", ctl.FieldSummary)
	g.Get("/responses", ctl.Responses)
	g.Get("/export", middlewares.ExportRateLimiter(), ctl.Export)
}
