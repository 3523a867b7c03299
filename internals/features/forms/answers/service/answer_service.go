package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
	helper "ghg_inventory_backend/internals/helpers"
)

type AnswerService struct {
	DB *gorm.DB
}

func NewAnswerService(db *gorm.DB) *AnswerService {
	return &AnswerService{DB: db}
}

type UpsertInput struct {
	SubmissionID int64
	FormTypeID   int64
	Year         int
	Answers      map[string]json.RawMessage
	Meta         map[string]schemaModel.FieldDef
}

var upsertColumns = []string{
	"form_answer_form_type_id",
	"form_answer_year",
	"form_answer_value_text",
	"form_answer_value_number",
	"form_answer_value_bool",
	"form_answer_value_json",
	"form_answer_option_key",
	"form_answer_option_label",
	"form_answer_field_label",
	"form_answer_field_type",
	"form_answer_updated_at",
}

func (s *AnswerService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

func ensureSubmission(db *gorm.DB, submissionID int64) error {
	var n int64
	if err := db.Model(&submissionModel.SubmissionModel{}).
		Where("form_submission_id = ?", submissionID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return helper.NotFound("submission %d", submissionID)
	}
	return nil
}

// BuildRows classifies every answer against its field definition. Keys
// without a definition are rejected.
func BuildRows(in UpsertInput) ([]model.AnswerModel, error) {
	keys := make([]string, 0, len(in.Answers))
	for k := range in.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]model.AnswerModel, 0, len(keys))
	for _, k := range keys {
		def, ok := in.Meta[k]
		if !ok {
			return nil, helper.InvalidArgument("answers."+k, "unknown field %q", k)
		}
		v, err := Classify(in.Answers[k], def)
		if err != nil {
			return nil, err
		}

		label := def.DisplayLabel()
		ftype := string(def.Type)
		row := model.AnswerModel{
			FormAnswerSubmissionID: in.SubmissionID,
			FormAnswerFormTypeID:   in.FormTypeID,
			FormAnswerYear:         in.Year,
			FormAnswerFieldKey:     k,
			FormAnswerFieldLabel:   &label,
			FormAnswerFieldType:    &ftype,
		}
		row.SetValue(v)
		rows = append(rows, row)
	}
	return rows, nil
}

// UpsertAnswers writes one row per answered key, overwriting earlier values.
// Either every answer is stored or none is. tx may be nil.
func (s *AnswerService) UpsertAnswers(ctx context.Context, tx *gorm.DB, in UpsertInput) error {
	rows, err := BuildRows(in)
	if err != nil {
		return err
	}
	return s.conn(ctx, tx).Transaction(func(db *gorm.DB) error {
		if err := ensureSubmission(db, in.SubmissionID); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "form_answer_submission_id"},
				{Name: "form_answer_field_key"},
			},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(&rows).Error
	})
}

// GetAnswers lists a submission's answers ordered by field key.
func (s *AnswerService) GetAnswers(ctx context.Context, tx *gorm.DB, submissionID int64) ([]model.AnswerModel, error) {
	db := s.conn(ctx, tx)
	if err := ensureSubmission(db, submissionID); err != nil {
		return nil, err
	}
	var rows []model.AnswerModel
	if err := db.Where("form_answer_submission_id = ?", submissionID).
		Order("form_answer_field_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AnswerMap is the field key -> value form of a submission's answers.
func AnswerMap(rows []model.AnswerModel) map[string]model.AnswerValue {
	out := make(map[string]model.AnswerValue, len(rows))
	for i := range rows {
		out[rows[i].FormAnswerFieldKey] = rows[i].Value()
	}
	return out
}

func (s *AnswerService) DeleteAnswers(ctx context.Context, tx *gorm.DB, submissionID int64) error {
	err := s.conn(ctx, tx).
		Where("form_answer_submission_id = ?", submissionID).
		Delete(&model.AnswerModel{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// RetagAnswers follows a submission that moved to another form type or year.
func (s *AnswerService) RetagAnswers(ctx context.Context, tx *gorm.DB, submissionID, formTypeID int64, year int) error {
	return s.conn(ctx, tx).Model(&model.AnswerModel{}).
		Where("form_answer_submission_id = ?", submissionID).
		Updates(map[string]any{
			"form_answer_form_type_id": formTypeID,
			"form_answer_year":         year,
		}).Error
}
