package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	answerService "ghg_inventory_backend/internals/features/forms/answers/service"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	schemaService "ghg_inventory_backend/internals/features/forms/schemas/service"
	"ghg_inventory_backend/internals/features/forms/submissions/model"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
	"ghg_inventory_backend/internals/helpers/metrics"
)

type SubmissionService struct {
	DB      *gorm.DB
	Answers *answerService.AnswerService
	Cache   *cache.SummaryCache
}

func NewSubmissionService(db *gorm.DB, c *cache.SummaryCache) *SubmissionService {
	return &SubmissionService{
		DB:      db,
		Answers: answerService.NewAnswerService(db),
		Cache:   c,
	}
}

type LocationTags struct {
	Region   *string
	Province *string
	City     *string
	Barangay *string
}

type CreateInput struct {
	FormTypeID int64
	Year       int
	Source     string
	CreatedBy  *uuid.UUID
	Location   LocationTags
}

type MetaPatch struct {
	Year       *int
	FormTypeID *int64
	Region     helper.UpdateField[string]
	Province   helper.UpdateField[string]
	City       helper.UpdateField[string]
	Barangay   helper.UpdateField[string]
}

type ListFilter struct {
	FormTypeID int64
	Year       int
	Status     model.SubmissionStatus
	Source     string
	Region     string
	Province   string
	City       string
	Barangay   string
	CreatedBy  *uuid.UUID
}

type SubmissionDetail struct {
	Submission model.SubmissionModel
	Answers    []answerModel.AnswerModel
}

/* =========================================================
   Helpers
========================================================= */

func normalizeSource(src string) (string, error) {
	src = strings.ToLower(strings.TrimSpace(src))
	if src == "" {
		return model.SourceAdmin, nil
	}
	if utf8.RuneCountInString(src) > 32 || !helper.IsSlugKey(src) {
		return "", helper.InvalidArgument("source", "must be a short lowercase tag such as admin or mobile")
	}
	return src, nil
}

func cleanTag(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > 150 {
		s = string([]rune(s)[:150])
	}
	return &s
}

func applyTag(dst **string, f helper.UpdateField[string]) {
	if !f.ShouldUpdate() {
		return
	}
	if f.IsNull() {
		*dst = nil
		return
	}
	v := f.Val()
	*dst = cleanTag(&v)
}

func formTypeExists(db *gorm.DB, id int64) error {
	var n int64
	if err := db.Model(&schemaModel.FormTypeModel{}).Where("form_type_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return helper.NotFound("form type %d", id)
	}
	return nil
}

func loadForUpdate(tx *gorm.DB, id int64) (*model.SubmissionModel, error) {
	var m model.SubmissionModel
	if err := helper.ForUpdate(tx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFound("submission %d", id)
		}
		return nil, err
	}
	return &m, nil
}

// pinSchema points an editable submission at the effective schema of its
// (form type, year), the same version data entry is served. Answers are
// always checked against it, so a draft follows newly activated versions.
func pinSchema(ctx context.Context, tx *gorm.DB, m *model.SubmissionModel) (*schemaModel.SchemaVersionModel, error) {
	sv, err := schemaService.ResolveEffectiveSchema(ctx, tx, m.FormSubmissionFormTypeID, m.FormSubmissionYear, schemaService.PreferActive)
	if err != nil {
		return nil, err
	}
	if m.FormSubmissionSchemaVersionID == nil || *m.FormSubmissionSchemaVersionID != sv.FormSchemaVersionID {
		logger.Sugar.Debugw("[SubmissionService] schema pinned", "submission_id", m.FormSubmissionID, "schema_version_id", sv.FormSchemaVersionID)
	}
	m.FormSubmissionSchemaVersionID = &sv.FormSchemaVersionID
	return sv, nil
}

/* =========================================================
   Lifecycle
========================================================= */

// Create opens a draft for (form type, year), pinned to the effective schema
// when one exists.
func (s *SubmissionService) Create(ctx context.Context, in CreateInput) (*model.SubmissionModel, error) {
	if in.FormTypeID <= 0 {
		return nil, helper.InvalidArgument("form_type_id", "is required")
	}
	if !schemaModel.ValidYear(in.Year) {
		return nil, helper.InvalidArgument("year", "must be between %d and %d", schemaModel.MinYear, schemaModel.MaxYear)
	}
	src, err := normalizeSource(in.Source)
	if err != nil {
		return nil, err
	}

	m := &model.SubmissionModel{
		FormSubmissionFormTypeID: in.FormTypeID,
		FormSubmissionYear:       in.Year,
		FormSubmissionSource:     src,
		FormSubmissionStatus:     model.SubmissionStatusDraft,
		FormSubmissionCreatedBy:  in.CreatedBy,
		FormSubmissionRegion:     cleanTag(in.Location.Region),
		FormSubmissionProvince:   cleanTag(in.Location.Province),
		FormSubmissionCity:       cleanTag(in.Location.City),
		FormSubmissionBarangay:   cleanTag(in.Location.Barangay),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := formTypeExists(tx, in.FormTypeID); err != nil {
			return err
		}
		sv, err := schemaService.ResolveEffectiveSchema(ctx, tx, in.FormTypeID, in.Year, schemaService.PreferActive)
		switch {
		case err == nil:
			m.FormSubmissionSchemaVersionID = &sv.FormSchemaVersionID
		case helper.IsNotFound(err):
			logger.Sugar.Warnw("[SubmissionService] no schema yet, creating unpinned draft", "form_type_id", in.FormTypeID, "year", in.Year)
		default:
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMeta corrects a misfiled submission. Allowed in every state. Moving
// it to another form type or year re-pins the schema and retags its answers.
func (s *SubmissionService) UpdateMeta(ctx context.Context, id int64, p MetaPatch) (*model.SubmissionModel, error) {
	var (
		m       *model.SubmissionModel
		oldType int64
		oldYear int
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		oldType, oldYear = m.FormSubmissionFormTypeID, m.FormSubmissionYear

		if p.Year != nil {
			if !schemaModel.ValidYear(*p.Year) {
				return helper.InvalidArgument("year", "must be between %d and %d", schemaModel.MinYear, schemaModel.MaxYear)
			}
			m.FormSubmissionYear = *p.Year
		}
		if p.FormTypeID != nil && *p.FormTypeID != m.FormSubmissionFormTypeID {
			if err := formTypeExists(tx, *p.FormTypeID); err != nil {
				return err
			}
			m.FormSubmissionFormTypeID = *p.FormTypeID
		}
		applyTag(&m.FormSubmissionRegion, p.Region)
		applyTag(&m.FormSubmissionProvince, p.Province)
		applyTag(&m.FormSubmissionCity, p.City)
		applyTag(&m.FormSubmissionBarangay, p.Barangay)

		if m.FormSubmissionFormTypeID != oldType || m.FormSubmissionYear != oldYear {
			m.FormSubmissionSchemaVersionID = nil
			if _, err := pinSchema(ctx, tx, m); err != nil && !helper.IsNotFound(err) {
				return err
			}
			if err := s.Answers.RetagAnswers(ctx, tx, m.FormSubmissionID, m.FormSubmissionFormTypeID, m.FormSubmissionYear); err != nil {
				return err
			}
		}
		return tx.Save(m).Error
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateForm(ctx, oldType, oldYear)
	s.Cache.InvalidateForm(ctx, m.FormSubmissionFormTypeID, m.FormSubmissionYear)
	return m, nil
}

func (s *SubmissionService) saveAnswersTx(ctx context.Context, tx *gorm.DB, m *model.SubmissionModel, answers map[string]json.RawMessage) error {
	if !m.FormSubmissionStatus.Editable() {
		return helper.Conflict("submission %d is %s and can no longer be edited", m.FormSubmissionID, m.FormSubmissionStatus)
	}
	if len(answers) == 0 {
		return nil
	}
	sv, err := pinSchema(ctx, tx, m)
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.InvalidArgument("answers", "form type %d has no schema for year %d", m.FormSubmissionFormTypeID, m.FormSubmissionYear)
		}
		return err
	}
	meta, err := sv.FieldMeta()
	if err != nil {
		return err
	}
	if err := s.Answers.UpsertAnswers(ctx, tx, answerService.UpsertInput{
		SubmissionID: m.FormSubmissionID,
		FormTypeID:   m.FormSubmissionFormTypeID,
		Year:         m.FormSubmissionYear,
		Answers:      answers,
		Meta:         meta,
	}); err != nil {
		return err
	}
	return tx.Model(m).Update("form_submission_schema_version_id", m.FormSubmissionSchemaVersionID).Error
}

// SaveDraftAnswers upserts answers without touching the status.
func (s *SubmissionService) SaveDraftAnswers(ctx context.Context, id int64, answers map[string]json.RawMessage) (*model.SubmissionModel, error) {
	var m *model.SubmissionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		return s.saveAnswersTx(ctx, tx, m, answers)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateForm(ctx, m.FormSubmissionFormTypeID, m.FormSubmissionYear)
	return m, nil
}

// Submit saves the given answers and moves the submission to submitted,
// stamping submitted_at. Submitting again only re-stamps.
func (s *SubmissionService) Submit(ctx context.Context, id int64, answers map[string]json.RawMessage) (*model.SubmissionModel, error) {
	var (
		m         *model.SubmissionModel
		fromDraft bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		if err := s.saveAnswersTx(ctx, tx, m, answers); err != nil {
			return err
		}
		fromDraft = m.FormSubmissionStatus == model.SubmissionStatusDraft
		now := time.Now().UTC()
		m.FormSubmissionStatus = model.SubmissionStatusSubmitted
		m.FormSubmissionSubmittedAt = &now
		return tx.Model(m).Updates(map[string]any{
			"form_submission_status":       m.FormSubmissionStatus,
			"form_submission_submitted_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if fromDraft {
		metrics.SubmissionsSubmitted.WithLabelValues(m.FormSubmissionSource).Inc()
	}
	s.Cache.InvalidateForm(ctx, m.FormSubmissionFormTypeID, m.FormSubmissionYear)
	return m, nil
}

// Review closes a submitted record as reviewed or rejected.
func (s *SubmissionService) Review(ctx context.Context, id int64, status model.SubmissionStatus, reviewer *uuid.UUID, note *string) (*model.SubmissionModel, error) {
	if status != model.SubmissionStatusReviewed && status != model.SubmissionStatusRejected {
		return nil, helper.InvalidArgument("status", "must be reviewed or rejected")
	}
	var m *model.SubmissionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		if m.FormSubmissionStatus != model.SubmissionStatusSubmitted {
			return helper.Conflict("only submitted records can be reviewed (current: %s)", m.FormSubmissionStatus)
		}
		now := time.Now().UTC()
		m.FormSubmissionStatus = status
		m.FormSubmissionReviewedAt = &now
		m.FormSubmissionReviewedBy = reviewer
		m.FormSubmissionReviewNote = cleanNote(note)
		return tx.Save(m).Error
	})
	if err != nil {
		return nil, err
	}
	metrics.SubmissionsReviewed.WithLabelValues(string(status)).Inc()
	s.Cache.InvalidateForm(ctx, m.FormSubmissionFormTypeID, m.FormSubmissionYear)
	return m, nil
}

func cleanNote(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

/* =========================================================
   Read / delete
========================================================= */

func (s *SubmissionService) Get(ctx context.Context, id int64) (*SubmissionDetail, error) {
	var m model.SubmissionModel
	if err := s.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFound("submission %d", id)
		}
		return nil, err
	}
	answers, err := s.Answers.GetAnswers(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &SubmissionDetail{Submission: m, Answers: answers}, nil
}

func applyListFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	if f.FormTypeID > 0 {
		q = q.Where("form_submission_form_type_id = ?", f.FormTypeID)
	}
	if f.Year > 0 {
		q = q.Where("form_submission_year = ?", f.Year)
	}
	if f.Status != "" {
		q = q.Where("form_submission_status = ?", f.Status)
	}
	if v := strings.TrimSpace(f.Source); v != "" {
		q = q.Where("form_submission_source = ?", strings.ToLower(v))
	}
	locations := []struct{ col, val string }{
		{"form_submission_region", f.Region},
		{"form_submission_province", f.Province},
		{"form_submission_city", f.City},
		{"form_submission_barangay", f.Barangay},
	}
	for _, l := range locations {
		if v := strings.TrimSpace(l.val); v != "" {
			q = q.Where("LOWER("+l.col+") = ?", strings.ToLower(v))
		}
	}
	if f.CreatedBy != nil {
		q = q.Where("form_submission_created_by = ?", *f.CreatedBy)
	}
	return q
}

// List returns one page of submissions, newest first, and the total count.
func (s *SubmissionService) List(ctx context.Context, f ListFilter, pg helper.Paging) ([]model.SubmissionModel, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, helper.InvalidArgument("status", "unknown status %q", f.Status)
	}
	q := applyListFilter(s.DB.WithContext(ctx).Model(&model.SubmissionModel{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []model.SubmissionModel{}
	if err := q.Order("form_submission_id DESC").Offset(pg.Offset).Limit(pg.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Delete removes the submission and its answers.
func (s *SubmissionService) Delete(ctx context.Context, id int64) error {
	var m *model.SubmissionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		if err := s.Answers.DeleteAnswers(ctx, tx, id); err != nil {
			return err
		}
		return tx.Delete(&model.SubmissionModel{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateForm(ctx, m.FormSubmissionFormTypeID, m.FormSubmissionYear)
	logger.Sugar.Infow("[SubmissionService] submission deleted", "id", id)
	return nil
}
