package dto

import (
	"encoding/json"
	"strings"
	"time"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/features/forms/schemas/service"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/logger"
)

/* =========================================================
   Requests
========================================================= */

type CreateFormTypeRequest struct {
	FormTypeKey         string  `json:"form_type_key" validate:"required,slugkey"`
	FormTypeName        string  `json:"form_type_name" validate:"required,max=200"`
	FormTypeSectorKey   string  `json:"form_type_sector_key" validate:"required,max=100"`
	FormTypeDescription *string `json:"form_type_description" validate:"omitempty"`
	FormTypeIsActive    *bool   `json:"form_type_is_active" validate:"omitempty"`
}

func (r *CreateFormTypeRequest) Normalize() {
	r.FormTypeKey = strings.TrimSpace(r.FormTypeKey)
	r.FormTypeName = strings.TrimSpace(r.FormTypeName)
	r.FormTypeSectorKey = strings.TrimSpace(r.FormTypeSectorKey)
	if r.FormTypeDescription != nil {
		d := strings.TrimSpace(*r.FormTypeDescription)
		if d == "" {
			r.FormTypeDescription = nil
		} else {
			r.FormTypeDescription = &d
		}
	}
}

func (r CreateFormTypeRequest) ToModel() *model.FormTypeModel {
	active := true
	if r.FormTypeIsActive != nil {
		active = *r.FormTypeIsActive
	}
	return &model.FormTypeModel{
		FormTypeKey:         r.FormTypeKey,
		FormTypeName:        r.FormTypeName,
		FormTypeSectorKey:   r.FormTypeSectorKey,
		FormTypeDescription: r.FormTypeDescription,
		FormTypeIsActive:    active,
	}
}

// PATCH: only fields present in the body are applied.
type PatchFormTypeRequest struct {
	FormTypeKey         helper.UpdateField[string] `json:"form_type_key"`
	FormTypeName        helper.UpdateField[string] `json:"form_type_name"`
	FormTypeSectorKey   helper.UpdateField[string] `json:"form_type_sector_key"`
	FormTypeDescription helper.UpdateField[string] `json:"form_type_description"`
	FormTypeIsActive    helper.UpdateField[bool]   `json:"form_type_is_active"`
}

func (r PatchFormTypeRequest) ToPatch() (service.FormTypePatch, error) {
	var p service.FormTypePatch
	str := func(f helper.UpdateField[string], name string) (*string, error) {
		if !f.ShouldUpdate() {
			return nil, nil
		}
		if f.IsNull() {
			return nil, helper.InvalidArgument(name, "cannot be null")
		}
		v := f.Val()
		return &v, nil
	}
	var err error
	if p.Key, err = str(r.FormTypeKey, "form_type_key"); err != nil {
		return p, err
	}
	if p.Name, err = str(r.FormTypeName, "form_type_name"); err != nil {
		return p, err
	}
	if p.SectorKey, err = str(r.FormTypeSectorKey, "form_type_sector_key"); err != nil {
		return p, err
	}
	p.Description = r.FormTypeDescription
	if r.FormTypeIsActive.ShouldUpdate() {
		if r.FormTypeIsActive.IsNull() {
			return p, helper.InvalidArgument("form_type_is_active", "cannot be null")
		}
		v := r.FormTypeIsActive.Val()
		p.IsActive = &v
	}
	return p, nil
}

// GET /form-types?sector_key=&active_only=&year=
type ListFormTypesQuery struct {
	SectorKey  string `query:"sector_key"`
	ActiveOnly bool   `query:"active_only"`
	Year       int    `query:"year"`
}

func (q ListFormTypesQuery) ToFilter() service.ListFormTypesFilter {
	return service.ListFormTypesFilter{SectorKey: q.SectorKey, ActiveOnly: q.ActiveOnly, Year: q.Year}
}

/* =========================================================
   Responses
========================================================= */

type SchemaVersionResponse struct {
	ID         int64              `json:"form_schema_version_id"`
	FormTypeID int64              `json:"form_type_id"`
	Year       int                `json:"year"`
	Version    int                `json:"version"`
	Fields     []model.FieldDef   `json:"fields"`
	UIHints    json.RawMessage    `json:"ui_hints,omitempty"`
	Status     model.SchemaStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type FieldMappingResponse struct {
	ID         int64           `json:"form_field_mapping_id"`
	FormTypeID int64           `json:"form_type_id"`
	Year       int             `json:"year"`
	Mapping    json.RawMessage `json:"mapping"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type FormTypeResponse struct {
	ID             int64                   `json:"form_type_id"`
	Key            string                  `json:"form_type_key"`
	Name           string                  `json:"form_type_name"`
	SectorKey      string                  `json:"form_type_sector_key"`
	Description    *string                 `json:"form_type_description,omitempty"`
	IsActive       bool                    `json:"form_type_is_active"`
	CreatedAt      time.Time               `json:"form_type_created_at"`
	UpdatedAt      time.Time               `json:"form_type_updated_at"`
	SchemaVersions []SchemaVersionResponse `json:"schema_versions"`
	FieldMappings  []FieldMappingResponse  `json:"field_mappings"`
}

func FromSchemaVersion(m model.SchemaVersionModel) SchemaVersionResponse {
	fields, err := m.Fields()
	if err != nil {
		logger.Sugar.Errorw("[SchemaVersion] stored field list does not decode",
			"form_schema_version_id", m.FormSchemaVersionID, "error", err)
	}
	if fields == nil {
		fields = []model.FieldDef{}
	}
	var hints json.RawMessage
	if len(m.FormSchemaVersionUIHints) > 0 {
		hints = json.RawMessage(m.FormSchemaVersionUIHints)
	}
	return SchemaVersionResponse{
		ID:         m.FormSchemaVersionID,
		FormTypeID: m.FormSchemaVersionFormTypeID,
		Year:       m.FormSchemaVersionYear,
		Version:    m.FormSchemaVersionVersion,
		Fields:     fields,
		UIHints:    hints,
		Status:     m.FormSchemaVersionStatus,
		CreatedAt:  m.FormSchemaVersionCreatedAt,
		UpdatedAt:  m.FormSchemaVersionUpdatedAt,
	}
}

func FromFieldMapping(m model.FieldMappingModel) FieldMappingResponse {
	return FieldMappingResponse{
		ID:         m.FormFieldMappingID,
		FormTypeID: m.FormFieldMappingFormTypeID,
		Year:       m.FormFieldMappingYear,
		Mapping:    json.RawMessage(m.FormFieldMappingMapping),
		UpdatedAt:  m.FormFieldMappingUpdatedAt,
	}
}

func FromFormType(m model.FormTypeModel) FormTypeResponse {
	out := FormTypeResponse{
		ID:             m.FormTypeID,
		Key:            m.FormTypeKey,
		Name:           m.FormTypeName,
		SectorKey:      m.FormTypeSectorKey,
		Description:    m.FormTypeDescription,
		IsActive:       m.FormTypeIsActive,
		CreatedAt:      m.FormTypeCreatedAt,
		UpdatedAt:      m.FormTypeUpdatedAt,
		SchemaVersions: make([]SchemaVersionResponse, 0, len(m.SchemaVersions)),
		FieldMappings:  make([]FieldMappingResponse, 0, len(m.FieldMappings)),
	}
	for _, v := range m.SchemaVersions {
		out.SchemaVersions = append(out.SchemaVersions, FromSchemaVersion(v))
	}
	for _, fm := range m.FieldMappings {
		out.FieldMappings = append(out.FieldMappings, FromFieldMapping(fm))
	}
	return out
}

func FromFormTypes(list []model.FormTypeModel) []FormTypeResponse {
	out := make([]FormTypeResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromFormType(m))
	}
	return out
}
