package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/constants"
	"ghg_inventory_backend/internals/features/forms/submissions/dto"
	"ghg_inventory_backend/internals/features/forms/submissions/model"
	"ghg_inventory_backend/internals/features/forms/submissions/service"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
)

const (
	listDefaultPerPage = 20
	listMaxPerPage     = 100
)

type SubmissionController struct {
	Svc       *service.SubmissionService
	Validator *validator.Validate
}

func NewSubmissionController(db *gorm.DB, c *cache.SummaryCache) *SubmissionController {
	return &SubmissionController{
		Svc:       service.NewSubmissionService(db, c),
		Validator: helper.Validator(),
	}
}

func isAdmin(c *fiber.Ctx) bool { return helper.GetUserRole(c) == constants.RoleAdmin }

// ensureOwner hides submissions created by someone else from non-admin callers.
func (ctl *SubmissionController) ensureOwner(c *fiber.Ctx, id int64) (*service.SubmissionDetail, error) {
	d, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if isAdmin(c) {
		return d, nil
	}
	me := helper.GetUserUUID(c)
	owner := d.Submission.FormSubmissionCreatedBy
	if me == nil || owner == nil || *owner != *me {
		return nil, helper.NotFound("submission %d", id)
	}
	return d, nil
}

// POST /submissions
func (ctl *SubmissionController) Create(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	m, err := ctl.Svc.Create(c.UserContext(), req.ToInput(helper.GetUserUUID(c)))
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonCreated(c, "submission created", dto.FromSubmission(*m))
}

// GET /submissions
func (ctl *SubmissionController) List(c *fiber.Ctx) error {
	var q dto.ListSubmissionsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	f := q.ToFilter()
	if !isAdmin(c) {
		me := helper.GetUserUUID(c)
		if me == nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "missing user id")
		}
		f.CreatedBy = me
	}
	pg := helper.ResolvePaging(c, listDefaultPerPage, listMaxPerPage)

	rows, total, err := ctl.Svc.List(c.UserContext(), f, pg)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonList(c, "submissions", dto.FromSubmissions(rows),
		helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage))
}

// GET /submissions/:id (includes answers)
func (ctl *SubmissionController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	d, err := ctl.ensureOwner(c, id)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "submission", dto.FromDetail(d))
}

// PATCH /submissions/:id
func (ctl *SubmissionController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.PatchSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	if _, err := ctl.ensureOwner(c, id); err != nil {
		return helper.JsonServiceError(c, err)
	}
	m, err := ctl.Svc.UpdateMeta(c.UserContext(), id, req.ToPatch())
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "submission updated", dto.FromSubmission(*m))
}

// PATCH /submissions/:id/answers {answers, mode}
func (ctl *SubmissionController) SaveAnswers(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.SaveAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	if _, err := ctl.ensureOwner(c, id); err != nil {
		return helper.JsonServiceError(c, err)
	}

	if req.Mode == dto.ModeSubmit {
		_, err = ctl.Svc.Submit(c.UserContext(), id, req.Answers)
	} else {
		_, err = ctl.Svc.SaveDraftAnswers(c.UserContext(), id, req.Answers)
	}
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	d, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "answers saved", dto.FromDetail(d))
}

// POST /submissions/:id/submit {answers?}
func (ctl *SubmissionController) Submit(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
		}
	}
	if _, err := ctl.ensureOwner(c, id); err != nil {
		return helper.JsonServiceError(c, err)
	}
	m, err := ctl.Svc.Submit(c.UserContext(), id, req.Answers)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "submission submitted", dto.FromSubmission(*m))
}

// PATCH /submissions/:id/review (admin)
func (ctl *SubmissionController) Review(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	m, err := ctl.Svc.Review(c.UserContext(), id, model.SubmissionStatus(req.Status), helper.GetUserUUID(c), req.Note)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonUpdated(c, "submission reviewed", dto.FromSubmission(*m))
}

// DELETE /submissions/:id (admin)
func (ctl *SubmissionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonDeleted(c, "submission deleted", fiber.Map{"form_submission_id": id})
}
