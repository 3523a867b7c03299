package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	"ghg_inventory_backend/internals/features/forms/schemas/model"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/cache"
	"ghg_inventory_backend/internals/helpers/logger"
	"ghg_inventory_backend/internals/helpers/metrics"
)

const maxVersionAttempts = 3

type SchemaService struct {
	DB    *gorm.DB
	Cache *cache.SummaryCache
}

func NewSchemaService(db *gorm.DB, c *cache.SummaryCache) *SchemaService {
	return &SchemaService{DB: db, Cache: c}
}

/* =========================================================
   Form types
========================================================= */

type FormTypePatch struct {
	Key         *string
	Name        *string
	SectorKey   *string
	Description helper.UpdateField[string]
	IsActive    *bool
}

type ListFormTypesFilter struct {
	SectorKey  string
	ActiveOnly bool
	Year       int // <= 0 means all years
}

func validateFormType(m *model.FormTypeModel) error {
	m.FormTypeKey = strings.TrimSpace(m.FormTypeKey)
	m.FormTypeName = strings.TrimSpace(m.FormTypeName)
	m.FormTypeSectorKey = strings.TrimSpace(m.FormTypeSectorKey)

	if !helper.IsSlugKey(m.FormTypeKey) {
		return helper.InvalidArgument("form_type_key", "must match [a-z0-9._-] and be 1..%d chars", helper.MaxKeyLength)
	}
	if n := utf8.RuneCountInString(m.FormTypeName); n == 0 || n > 200 {
		return helper.InvalidArgument("form_type_name", "must be 1..200 chars")
	}
	if n := utf8.RuneCountInString(m.FormTypeSectorKey); n == 0 || n > 100 {
		return helper.InvalidArgument("form_type_sector_key", "must be 1..100 chars")
	}
	return nil
}

func (s *SchemaService) keyTaken(ctx context.Context, key string, exceptID int64) (bool, error) {
	var n int64
	q := s.DB.WithContext(ctx).Model(&model.FormTypeModel{}).Where("form_type_key = ?", key)
	if exceptID > 0 {
		q = q.Where("form_type_id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SchemaService) CreateFormType(ctx context.Context, m *model.FormTypeModel) (*model.FormTypeModel, error) {
	if err := validateFormType(m); err != nil {
		return nil, err
	}
	taken, err := s.keyTaken(ctx, m.FormTypeKey, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, helper.Conflict("form type key %q already exists", m.FormTypeKey)
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Conflict("form type key %q already exists", m.FormTypeKey)
		}
		return nil, err
	}
	logger.Sugar.Infow("[SchemaService] form type created", "id", m.FormTypeID, "key", m.FormTypeKey)
	return m, nil
}

func (s *SchemaService) UpdateFormType(ctx context.Context, id int64, p FormTypePatch) (*model.FormTypeModel, error) {
	var m model.FormTypeModel
	if err := s.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFound("form type %d", id)
		}
		return nil, err
	}

	keyChanged := false
	if p.Key != nil && strings.TrimSpace(*p.Key) != m.FormTypeKey {
		m.FormTypeKey = *p.Key
		keyChanged = true
	}
	if p.Name != nil {
		m.FormTypeName = *p.Name
	}
	if p.SectorKey != nil {
		m.FormTypeSectorKey = *p.SectorKey
	}
	if p.Description.ShouldUpdate() {
		if p.Description.IsNull() || strings.TrimSpace(p.Description.Val()) == "" {
			m.FormTypeDescription = nil
		} else {
			d := strings.TrimSpace(p.Description.Val())
			m.FormTypeDescription = &d
		}
	}
	if p.IsActive != nil {
		m.FormTypeIsActive = *p.IsActive
	}

	if err := validateFormType(&m); err != nil {
		return nil, err
	}
	if keyChanged {
		taken, err := s.keyTaken(ctx, m.FormTypeKey, m.FormTypeID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, helper.Conflict("form type key %q already exists", m.FormTypeKey)
		}
	}

	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Conflict("form type key %q already exists", m.FormTypeKey)
		}
		return nil, err
	}
	return &m, nil
}

// ListFormTypes returns form types ordered by (sector, name), each with its
// versions (year desc, version desc) and mappings (year desc, id desc).
func (s *SchemaService) ListFormTypes(ctx context.Context, f ListFormTypesFilter) ([]model.FormTypeModel, error) {
	q := s.DB.WithContext(ctx).Model(&model.FormTypeModel{})
	if sk := strings.TrimSpace(f.SectorKey); sk != "" {
		q = q.Where("form_type_sector_key = ?", sk)
	}
	if f.ActiveOnly {
		q = q.Where("form_type_is_active = ?", true)
	}

	var types []model.FormTypeModel
	if err := q.Order("form_type_sector_key ASC").Order("form_type_name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, types, f.Year); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *SchemaService) GetFormType(ctx context.Context, id int64) (*model.FormTypeModel, error) {
	var m model.FormTypeModel
	if err := s.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFound("form type %d", id)
		}
		return nil, err
	}
	list := []model.FormTypeModel{m}
	if err := s.attachChildren(ctx, list, 0); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *SchemaService) attachChildren(ctx context.Context, types []model.FormTypeModel, year int) error {
	if len(types) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.FormTypeID)
	}

	vq := s.DB.WithContext(ctx).Where("form_schema_version_form_type_id IN ?", ids)
	mq := s.DB.WithContext(ctx).Where("form_field_mapping_form_type_id IN ?", ids)
	if year > 0 {
		vq = vq.Where("form_schema_version_year = ?", year)
		mq = mq.Where("form_field_mapping_year = ?", year)
	}

	var versions []model.SchemaVersionModel
	if err := vq.Order("form_schema_version_year DESC").Order("form_schema_version_version DESC").Find(&versions).Error; err != nil {
		return err
	}
	var mappings []model.FieldMappingModel
	if err := mq.Order("form_field_mapping_year DESC").Order("form_field_mapping_id DESC").Find(&mappings).Error; err != nil {
		return err
	}

	byType := make(map[int64]int, len(types))
	for i := range types {
		byType[types[i].FormTypeID] = i
		types[i].SchemaVersions = []model.SchemaVersionModel{}
		types[i].FieldMappings = []model.FieldMappingModel{}
	}
	for _, v := range versions {
		i := byType[v.FormSchemaVersionFormTypeID]
		types[i].SchemaVersions = append(types[i].SchemaVersions, v)
	}
	for _, m := range mappings {
		i := byType[m.FormFieldMappingFormTypeID]
		types[i].FieldMappings = append(types[i].FieldMappings, m)
	}
	return nil
}

// DeleteFormType removes the form type together with its versions, mappings,
// submissions and their answers.
func (s *SchemaService) DeleteFormType(ctx context.Context, id int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ft model.FormTypeModel
		if err := helper.ForUpdate(tx).First(&ft, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("form type %d", id)
			}
			return err
		}

		subIDs := tx.Model(&submissionModel.SubmissionModel{}).
			Select("form_submission_id").
			Where("form_submission_form_type_id = ?", id)

		steps := []struct {
			name string
			run  func() error
		}{
			{"answers", func() error {
				return tx.Where("form_answer_submission_id IN (?) OR form_answer_form_type_id = ?", subIDs, id).
					Delete(&answerModel.AnswerModel{}).Error
			}},
			{"submissions", func() error {
				return tx.Where("form_submission_form_type_id = ?", id).Delete(&submissionModel.SubmissionModel{}).Error
			}},
			{"field mappings", func() error {
				return tx.Where("form_field_mapping_form_type_id = ?", id).Delete(&model.FieldMappingModel{}).Error
			}},
			{"schema versions", func() error {
				return tx.Where("form_schema_version_form_type_id = ?", id).Delete(&model.SchemaVersionModel{}).Error
			}},
			{"form type", func() error {
				return tx.Delete(&model.FormTypeModel{}, id).Error
			}},
		}
		for _, st := range steps {
			if err := st.run(); err != nil {
				return fmt.Errorf("delete %s: %w", st.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateFormType(ctx, id)
	logger.Sugar.Infow("[SchemaService] form type deleted", "id", id)
	return nil
}

/* =========================================================
   Schema versions
========================================================= */

type CreateSchemaVersionInput struct {
	FormTypeID int64
	Year       int
	Fields     []model.FieldDef
	UIHints    json.RawMessage
	Status     model.SchemaStatus
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}

func (in *CreateSchemaVersionInput) validate() error {
	if in.FormTypeID <= 0 {
		return helper.InvalidArgument("form_type_id", "is required")
	}
	if !model.ValidYear(in.Year) {
		return helper.InvalidArgument("year", "must be between %d and %d", model.MinYear, model.MaxYear)
	}
	if err := model.ValidateFields(in.Fields); err != nil {
		return err
	}
	if in.Status == "" {
		in.Status = model.SchemaStatusDraft
	}
	if !in.Status.Valid() {
		return helper.InvalidArgument("status", "must be one of draft, active, deprecated")
	}
	if len(in.UIHints) > 0 && string(in.UIHints) != "null" && !isJSONObject(in.UIHints) {
		return helper.InvalidArgument("ui_hints", "must be a JSON object")
	}
	return nil
}

// demoteActiveSiblings moves every other active version of (form type, year)
// to deprecated. Must run inside the transaction that activates.
func demoteActiveSiblings(tx *gorm.DB, formTypeID int64, year int, exceptID int64) error {
	q := tx.Model(&model.SchemaVersionModel{}).
		Where("form_schema_version_form_type_id = ? AND form_schema_version_year = ? AND form_schema_version_status = ?",
			formTypeID, year, model.SchemaStatusActive)
	if exceptID > 0 {
		q = q.Where("form_schema_version_id <> ?", exceptID)
	}
	return q.Update("form_schema_version_status", model.SchemaStatusDeprecated).Error
}

func lockFormType(tx *gorm.DB, formTypeID int64) error {
	var ft model.FormTypeModel
	err := helper.ForUpdate(tx).Select("form_type_id").First(&ft, formTypeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.NotFound("form type %d", formTypeID)
	}
	return err
}

// CreateSchemaVersion stores the next version (max+1) of (form type, year).
// Numbering happens under a row lock on the form type and is retried if the
// unique (form type, year, version) index still reports a clash.
func (s *SchemaService) CreateSchemaVersion(ctx context.Context, in CreateSchemaVersionInput) (*model.SchemaVersionModel, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	fieldsJSON, err := json.Marshal(in.Fields)
	if err != nil {
		return nil, err
	}
	var hints datatypes.JSON
	if len(in.UIHints) > 0 && string(in.UIHints) != "null" {
		hints = datatypes.JSON(in.UIHints)
	}

	var created *model.SchemaVersionModel
	for attempt := 1; attempt <= maxVersionAttempts; attempt++ {
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockFormType(tx, in.FormTypeID); err != nil {
				return err
			}

			var maxVersion int
			if err := tx.Model(&model.SchemaVersionModel{}).
				Where("form_schema_version_form_type_id = ? AND form_schema_version_year = ?", in.FormTypeID, in.Year).
				Select("COALESCE(MAX(form_schema_version_version), 0)").
				Scan(&maxVersion).Error; err != nil {
				return err
			}

			if in.Status == model.SchemaStatusActive {
				if err := demoteActiveSiblings(tx, in.FormTypeID, in.Year, 0); err != nil {
					return err
				}
			}

			sv := &model.SchemaVersionModel{
				FormSchemaVersionFormTypeID: in.FormTypeID,
				FormSchemaVersionYear:       in.Year,
				FormSchemaVersionVersion:    maxVersion + 1,
				FormSchemaVersionFields:     datatypes.JSON(fieldsJSON),
				FormSchemaVersionUIHints:    hints,
				FormSchemaVersionStatus:     in.Status,
			}
			if err := tx.Create(sv).Error; err != nil {
				return err
			}
			created = sv
			return nil
		})
		if err == nil || !helper.IsUniqueViolation(err) {
			break
		}
		logger.Sugar.Warnw("[SchemaService] version clash, retrying", "form_type_id", in.FormTypeID, "year", in.Year, "attempt", attempt)
	}
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Conflict("could not allocate a version for form type %d year %d", in.FormTypeID, in.Year)
		}
		return nil, err
	}

	if created.IsActive() {
		metrics.SchemaActivations.Inc()
	}
	s.Cache.InvalidateForm(ctx, in.FormTypeID, in.Year)
	return created, nil
}

func (s *SchemaService) SetSchemaVersionStatus(ctx context.Context, id int64, status model.SchemaStatus) (*model.SchemaVersionModel, error) {
	if !status.Valid() {
		return nil, helper.InvalidArgument("status", "must be one of draft, active, deprecated")
	}

	var sv model.SchemaVersionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("schema version %d", id)
			}
			return err
		}
		if status == model.SchemaStatusActive {
			if err := lockFormType(tx, sv.FormSchemaVersionFormTypeID); err != nil {
				return err
			}
			if err := demoteActiveSiblings(tx, sv.FormSchemaVersionFormTypeID, sv.FormSchemaVersionYear, sv.FormSchemaVersionID); err != nil {
				return err
			}
		}
		sv.FormSchemaVersionStatus = status
		return tx.Model(&sv).Update("form_schema_version_status", status).Error
	})
	if err != nil {
		return nil, err
	}

	if status == model.SchemaStatusActive {
		metrics.SchemaActivations.Inc()
	}
	s.Cache.InvalidateForm(ctx, sv.FormSchemaVersionFormTypeID, sv.FormSchemaVersionYear)
	return &sv, nil
}

/* =========================================================
   Field mappings
========================================================= */

// SaveFieldMapping replaces the whole mapping object of (form type, year).
func (s *SchemaService) SaveFieldMapping(ctx context.Context, formTypeID int64, year int, mapping json.RawMessage) (*model.FieldMappingModel, error) {
	if !model.ValidYear(year) {
		return nil, helper.InvalidArgument("year", "must be between %d and %d", model.MinYear, model.MaxYear)
	}
	if !isJSONObject(mapping) {
		return nil, helper.InvalidArgument("mapping", "must be a JSON object")
	}

	var out model.FieldMappingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ft model.FormTypeModel
		if err := tx.Select("form_type_id").First(&ft, formTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("form type %d", formTypeID)
			}
			return err
		}

		row := model.FieldMappingModel{
			FormFieldMappingFormTypeID: formTypeID,
			FormFieldMappingYear:       year,
			FormFieldMappingMapping:    datatypes.JSON(mapping),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "form_field_mapping_form_type_id"},
				{Name: "form_field_mapping_year"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"form_field_mapping_mapping",
				"form_field_mapping_updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		return tx.Where("form_field_mapping_form_type_id = ? AND form_field_mapping_year = ?", formTypeID, year).
			First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
