package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/schemas/dto"
	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/features/forms/schemas/service"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
)

type SchemaVersionController struct {
	DB        *gorm.DB
	Svc       *service.SchemaService
	Validator *validator.Validate
}

func NewSchemaVersionController(db *gorm.DB, c *cache.SummaryCache) *SchemaVersionController {
	return &SchemaVersionController{
		DB:        db,
		Svc:       service.NewSchemaService(db, c),
		Validator: helper.Validator(),
	}
}

// POST /form-types/:id/schemas
func (ctl *SchemaVersionController) Create(c *fiber.Ctx) error {
	formTypeID, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.CreateSchemaVersionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	sv, err := ctl.Svc.CreateSchemaVersion(c.UserContext(), req.ToInput(formTypeID))
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonCreated(c, "schema version created", dto.FromSchemaVersion(*sv))
}

// PATCH /schemas/:id/status
func (ctl *SchemaVersionController) PatchStatus(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.PatchSchemaStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	sv, err := ctl.Svc.SetSchemaVersionStatus(c.UserContext(), id, model.SchemaStatus(req.Status))
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "schema status updated", dto.FromSchemaVersion(*sv))
}

// PUT /form-types/:id/mappings/:year
func (ctl *SchemaVersionController) SaveMapping(c *fiber.Ctx) error {
	formTypeID, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	year, err := helper.ParseIntParam(c, "year")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.SaveFieldMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	m, err := ctl.Svc.SaveFieldMapping(c.UserContext(), formTypeID, year, req.Mapping)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "field mapping saved", dto.FromFieldMapping(*m))
}

// GET /form-types/:id/years/:year/schema
// Returns the schema to fill in: the active version, else the newest.
func (ctl *SchemaVersionController) Effective(c *fiber.Ctx) error {
	formTypeID, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	year, err := helper.ParseIntParam(c, "year")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	sv, err := service.ResolveEffectiveSchema(c.UserContext(), ctl.DB, formTypeID, year, service.PreferActive)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "schema", dto.FromSchemaVersion(*sv))
}
