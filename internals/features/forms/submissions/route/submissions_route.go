package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/submissions/controller"
	"ghg_inventory_backend/internals/helpers/cache"
)

func SubmissionAdminRoutes(r fiber.Router, db *gorm.DB, c *cache.SummaryCache) {
	ctl := controller.NewSubmissionController(db, c)

	g := r.Group("/submissions")
	g.Patch("/:id/review", ctl.Review)
	g.Delete("/:id", ctl.Delete)
}

func SubmissionUserRoutes(r fiber.Router, db *gorm.DB, c *cache.SummaryCache) {
	ctl := controller.NewSubmissionController(db, c)

	g := r.Group("/submissions")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Patch)
	g.Patch("/:id/answers", ctl.SaveAnswers)
	g.Post("/:id/submit", ctl.Submit)
}
