package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/analytics/service"
	submissionDTO "ghg_inventory_backend/internals/features/forms/submissions/dto"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsController struct {
	Svc *service.AnalyticsService
}

func NewAnalyticsController(db *gorm.DB, c *cache.SummaryCache) *AnalyticsController {
	return &AnalyticsController{Svc: service.NewAnalyticsService(db, c)}
}

func typeAndYear(c *fiber.Ctx) (int64, int, error) {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	year, err := helper.ParseIntParam(c, "year")
	if err != nil {
		return 0, 0, err
	}
	return id, year, nil
}

// GET /form-types/:id/years/:year/summary
func (ctl *AnalyticsController) FormSummary(c *fiber.Ctx) error {
	id, year, err := typeAndYear(c)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	sum, err := ctl.Svc.SummaryForForm(c.UserContext(), id, year)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "form summary", sum)
}

// GET /form-types/:id/years/:year/fields/:field_key/summary
func (ctl *AnalyticsController) FieldSummary(c *fiber.Ctx) error {
	id, year, err := typeAndYear(c)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	key := strings.TrimSpace(c.Params("field_key"))
	if key == "" {
		return helper.JsonFieldError(c, fiber.StatusBadRequest, "field_key", "is required")
	}
	fs, err := ctl.Svc.SummaryForField(c.UserContext(), id, year, key)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "field summary", fs)
}

// GET /form-types/:id/years/:year/responses?page=&per_page=
func (ctl *AnalyticsController) Responses(c *fiber.Ctx) error {
	id, year, err := typeAndYear(c)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", c.Query("limit")))

	rows, pagination, err := ctl.Svc.IndividualIndex(c.UserContext(), id, year, page, perPage)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonList(c, "responses", submissionDTO.FromSubmissions(rows), pagination)
}

// GET /form-types/:id/years/:year/export
func (ctl *AnalyticsController) Export(c *fiber.Ctx) error {
	id, year, err := typeAndYear(c)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	f, filename, err := ctl.Svc.ExportResponses(c.UserContext(), id, year)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Sugar.Warnw("[AnalyticsController] close workbook", "error", cerr)
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
