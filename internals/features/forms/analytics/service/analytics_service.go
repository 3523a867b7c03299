package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/analytics/dto"
	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	schemaService "ghg_inventory_backend/internals/features/forms/schemas/service"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
)

const (
	FormOptionLimit     = 20
	FormSampleLimit     = 20
	FieldSampleLimit    = 200
	IndexMinPerPage     = 5
	IndexMaxPerPage     = 100
	IndexDefaultPerPage = 20
)

// AnalyticsService is read-only over answers and submissions.
type AnalyticsService struct {
	DB    *gorm.DB
	Cache *cache.SummaryCache
}

func NewAnalyticsService(db *gorm.DB, c *cache.SummaryCache) *AnalyticsService {
	return &AnalyticsService{DB: db, Cache: c}
}

const answeredCondition = "(form_answer_value_text IS NOT NULL OR form_answer_value_number IS NOT NULL OR " +
	"form_answer_value_bool IS NOT NULL OR form_answer_value_json IS NOT NULL OR form_answer_option_key IS NOT NULL)"

func (s *AnalyticsService) fieldScope(ctx context.Context, formTypeID int64, year int, fieldKey string) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&answerModel.AnswerModel{}).
		Where("form_answer_form_type_id = ? AND form_answer_year = ? AND form_answer_field_key = ?", formTypeID, year, fieldKey)
}

// ResponseCount counts distinct submissions holding any value for the field.
func (s *AnalyticsService) ResponseCount(ctx context.Context, formTypeID int64, year int, fieldKey string) (int64, error) {
	var n int64
	err := s.fieldScope(ctx, formTypeID, year, fieldKey).
		Where(answeredCondition).
		Select("COUNT(DISTINCT form_answer_submission_id)").
		Scan(&n).Error
	return n, err
}

// OptionCounts groups option answers, most frequent first. limit <= 0 means all.
func (s *AnalyticsService) OptionCounts(ctx context.Context, formTypeID int64, year int, fieldKey string, limit int) ([]dto.OptionCount, error) {
	const k = "COALESCE(form_answer_option_label, form_answer_option_key)"
	q := s.fieldScope(ctx, formTypeID, year, fieldKey).
		Where("form_answer_option_label IS NOT NULL").
		Select(k + " AS k, COUNT(*) AS c").
		Group(k).
		Order("c DESC").
		Order("k ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := []dto.OptionCount{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Samples returns the most recent free-text values.
func (s *AnalyticsService) Samples(ctx context.Context, formTypeID int64, year int, fieldKey string, limit int) ([]string, error) {
	out := []string{}
	err := s.fieldScope(ctx, formTypeID, year, fieldKey).
		Where("form_answer_value_text IS NOT NULL").
		Order("form_answer_id DESC").
		Limit(limit).
		Pluck("form_answer_value_text", &out).Error
	return out, err
}

func (s *AnalyticsService) NumberStats(ctx context.Context, formTypeID int64, year int, fieldKey string) (*dto.NumberStats, error) {
	var row struct {
		MinValue   decimal.NullDecimal
		MaxValue   decimal.NullDecimal
		AvgValue   decimal.NullDecimal
		SumValue   decimal.NullDecimal
		CountValue int64
	}
	err := s.fieldScope(ctx, formTypeID, year, fieldKey).
		Where("form_answer_value_number IS NOT NULL").
		Select("MIN(form_answer_value_number) AS min_value, " +
			"MAX(form_answer_value_number) AS max_value, " +
			"AVG(form_answer_value_number) AS avg_value, " +
			"SUM(form_answer_value_number) AS sum_value, " +
			"COUNT(form_answer_value_number) AS count_value").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	st := &dto.NumberStats{
		Min: row.MinValue,
		Max: row.MaxValue,
		Avg: row.AvgValue,
		Sum: row.SumValue,
		N:   row.CountValue,
	}
	if st.Avg.Valid {
		st.Avg.Decimal = st.Avg.Decimal.Round(6)
	}
	return st, nil
}

func (s *AnalyticsService) TotalSubmissions(ctx context.Context, formTypeID int64, year int) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&submissionModel.SubmissionModel{}).
		Where("form_submission_form_type_id = ? AND form_submission_year = ?", formTypeID, year).
		Where("form_submission_status IN ?", submissionModel.CountedStatuses).
		Count(&n).Error
	return n, err
}

// fieldsFor lists the fields to summarise: the newest schema's fields, or,
// when no schema exists, whatever keys were answered.
func (s *AnalyticsService) fieldsFor(ctx context.Context, formTypeID int64, year int) ([]schemaModel.FieldDef, *int64, error) {
	sv, err := schemaService.ResolveEffectiveSchema(ctx, s.DB, formTypeID, year, schemaService.PreferNewest)
	switch {
	case err == nil:
		fields, err := sv.Fields()
		if err != nil {
			return nil, nil, err
		}
		return fields, &sv.FormSchemaVersionID, nil
	case !helper.IsNotFound(err):
		return nil, nil, err
	}

	var rows []struct {
		FieldKey   string
		FieldLabel *string
		FieldType  *string
	}
	if err := s.DB.WithContext(ctx).Model(&answerModel.AnswerModel{}).
		Select("form_answer_field_key AS field_key, MAX(form_answer_field_label) AS field_label, MAX(form_answer_field_type) AS field_type").
		Where("form_answer_form_type_id = ? AND form_answer_year = ?", formTypeID, year).
		Group("form_answer_field_key").
		Order("form_answer_field_key ASC").
		Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	fields := make([]schemaModel.FieldDef, 0, len(rows))
	for _, r := range rows {
		f := schemaModel.FieldDef{Key: r.FieldKey}
		if r.FieldLabel != nil {
			f.Label = *r.FieldLabel
		}
		if r.FieldType != nil {
			f.Type = schemaModel.FieldType(*r.FieldType)
		}
		fields = append(fields, f)
	}
	return fields, nil, nil
}

// SummaryForForm summarises every field of the newest schema for (form type, year).
func (s *AnalyticsService) SummaryForForm(ctx context.Context, formTypeID int64, year int) (*dto.FormSummary, error) {
	key := cache.FormKey(formTypeID, year)
	if b, ok := s.Cache.Get(ctx, key); ok {
		var cached dto.FormSummary
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	fields, svID, err := s.fieldsFor(ctx, formTypeID, year)
	if err != nil {
		return nil, err
	}
	total, err := s.TotalSubmissions(ctx, formTypeID, year)
	if err != nil {
		return nil, err
	}

	out := &dto.FormSummary{
		FormTypeID:       formTypeID,
		Year:             year,
		SchemaVersionID:  svID,
		TotalSubmissions: total,
		Fields:           make([]dto.FieldSummary, 0, len(fields)),
		GeneratedAt:      time.Now().UTC(),
	}
	for _, f := range fields {
		fs, err := s.fieldSummary(ctx, formTypeID, year, f, FormOptionLimit, FormSampleLimit)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, *fs)
	}

	if b, err := json.Marshal(out); err == nil {
		s.Cache.Set(ctx, key, b)
	} else {
		logger.Sugar.Warnf("[AnalyticsService] cache encode: %v", err)
	}
	return out, nil
}

func (s *AnalyticsService) fieldSummary(ctx context.Context, formTypeID int64, year int, f schemaModel.FieldDef, optionLimit, sampleLimit int) (*dto.FieldSummary, error) {
	rc, err := s.ResponseCount(ctx, formTypeID, year, f.Key)
	if err != nil {
		return nil, err
	}
	opts, err := s.OptionCounts(ctx, formTypeID, year, f.Key, optionLimit)
	if err != nil {
		return nil, err
	}
	samples, err := s.Samples(ctx, formTypeID, year, f.Key, sampleLimit)
	if err != nil {
		return nil, err
	}
	return &dto.FieldSummary{
		FieldKey:      f.Key,
		Label:         f.DisplayLabel(),
		FieldType:     string(f.Type),
		ResponseCount: rc,
		OptionCounts:  opts,
		Samples:       samples,
	}, nil
}

// SummaryForField is the drill-down view: all option counts, more samples and
// numeric stats. Unknown keys give empty results.
func (s *AnalyticsService) SummaryForField(ctx context.Context, formTypeID int64, year int, fieldKey string) (*dto.FieldSummary, error) {
	fieldKey = strings.TrimSpace(fieldKey)
	def := schemaModel.FieldDef{Key: fieldKey}
	if sv, err := schemaService.ResolveEffectiveSchema(ctx, s.DB, formTypeID, year, schemaService.PreferNewest); err == nil {
		if meta, err := sv.FieldMeta(); err == nil {
			if f, ok := meta[fieldKey]; ok {
				def = f
			}
		}
	} else if !helper.IsNotFound(err) {
		return nil, err
	}

	fs, err := s.fieldSummary(ctx, formTypeID, year, def, 0, FieldSampleLimit)
	if err != nil {
		return nil, err
	}
	if fs.NumberStats, err = s.NumberStats(ctx, formTypeID, year, fieldKey); err != nil {
		return nil, err
	}
	return fs, nil
}

// IndividualIndex pages raw submissions of (form type, year), newest first.
// perPage is clamped to [5, 100].
func (s *AnalyticsService) IndividualIndex(ctx context.Context, formTypeID int64, year, page, perPage int) ([]submissionModel.SubmissionModel, helper.Pagination, error) {
	pg := helper.NewPaging(page, ClampPerPage(perPage), IndexDefaultPerPage, IndexMaxPerPage)

	q := s.DB.WithContext(ctx).Model(&submissionModel.SubmissionModel{}).
		Where("form_submission_form_type_id = ? AND form_submission_year = ?", formTypeID, year)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, helper.Pagination{}, err
	}
	rows := []submissionModel.SubmissionModel{}
	if err := q.Order("form_submission_id DESC").Offset(pg.Offset).Limit(pg.Limit).Find(&rows).Error; err != nil {
		return nil, helper.Pagination{}, err
	}
	return rows, helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage), nil
}

func ClampPerPage(perPage int) int {
	switch {
	case perPage <= 0:
		return IndexDefaultPerPage
	case perPage < IndexMinPerPage:
		return IndexMinPerPage
	case perPage > IndexMaxPerPage:
		return IndexMaxPerPage
	}
	return perPage
}
