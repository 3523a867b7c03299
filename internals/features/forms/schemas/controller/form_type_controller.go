package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/schemas/dto"
	"ghg_inventory_backend/internals/features/forms/schemas/service"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
)

type FormTypeController struct {
	Svc       *service.SchemaService
	Validator *validator.Validate
}

func NewFormTypeController(db *gorm.DB, c *cache.SummaryCache) *FormTypeController {
	return &FormTypeController{
		Svc:       service.NewSchemaService(db, c),
		Validator: helper.Validator(),
	}
}

// writeErr rewrites a duplicate key into a field message the form can show.
func writeErr(c *fiber.Ctx, err error) error {
	if helper.IsConflict(err) {
		return helper.JsonFieldError(c, fiber.StatusConflict, "form_type_key", "a form with this key already exists")
	}
	return helper.JsonServiceError(c, err)
}

// GET /form-types?sector_key=&active_only=&year=
func (ctl *FormTypeController) List(c *fiber.Ctx) error {
	var q dto.ListFormTypesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	list, err := ctl.Svc.ListFormTypes(c.UserContext(), q.ToFilter())
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "form types", dto.FromFormTypes(list))
}

// GET /form-types (user): active only
func (ctl *FormTypeController) ListActive(c *fiber.Ctx) error {
	var q dto.ListFormTypesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	q.ActiveOnly = true
	list, err := ctl.Svc.ListFormTypes(c.UserContext(), q.ToFilter())
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "form types", dto.FromFormTypes(list))
}

// GET /form-types/:id
func (ctl *FormTypeController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	m, err := ctl.Svc.GetFormType(c.UserContext(), id)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "form type", dto.FromFormType(*m))
}

// POST /form-types
func (ctl *FormTypeController) Create(c *fiber.Ctx) error {
	var req dto.CreateFormTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	m, err := ctl.Svc.CreateFormType(c.UserContext(), req.ToModel())
	if err != nil {
		return writeErr(c, err)
	}
	return helper.JsonCreated(c, "form type created", dto.FromFormType(*m))
}

// PATCH /form-types/:id
func (ctl *FormTypeController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.PatchFormTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	patch, err := req.ToPatch()
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	m, err := ctl.Svc.UpdateFormType(c.UserContext(), id, patch)
	if err != nil {
		return writeErr(c, err)
	}
	return helper.JsonUpdated(c, "form type updated", dto.FromFormType(*m))
}

// DELETE /form-types/:id (cascades to versions, mappings, submissions, answers)
func (ctl *FormTypeController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	if err := ctl.Svc.DeleteFormType(c.UserContext(), id); err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonDeleted(c, "form type deleted", fiber.Map{"form_type_id": id})
}
