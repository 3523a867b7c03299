package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/schemas/controller"
	"ghg_inventory_backend/internals/helpers/cache"
)

// Mounted under /api/a (admin only).
func SchemaAdminRoutes(r fiber.Router, db *gorm.DB, c *cache.SummaryCache) {
	ft := controller.NewFormTypeController(db, c)
	sv := controller.NewSchemaVersionController(db, c)

	g := r.Group("/form-types")
	g.Get("/", ft.List)
	g.Post("/", ft.Create)
	g.Get("/:id", ft.GetByID)
	g.Patch("/:id", ft.Patch)
	g.Delete("/:id", ft.Delete)
	g.Post("/:id/schemas", sv.Create)
	g.Put("/:id/mappings/:year", sv.SaveMapping)

	r.Patch("/schemas/:id/status", sv.PatchStatus)
}

// Mounted under /api/u (enumerators and admins).
func SchemaUserRoutes(r fiber.Router, db *gorm.DB, c *cache.SummaryCache) {
	ft := controller.NewFormTypeController(db, c)
	sv := controller.NewSchemaVersionController(db, c)

	g := r.Group("/form-types")
	g.Get("/", ft.ListActive)
	g.Get("/:id/years/:year/schema", sv.Effective)
}
