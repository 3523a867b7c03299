package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SchemaStatus string

const (
	SchemaStatusDraft      SchemaStatus = "draft"
	SchemaStatusActive     SchemaStatus = "active"
	SchemaStatusDeprecated SchemaStatus = "deprecated"
)

func (s SchemaStatus) Valid() bool {
	switch s {
	case SchemaStatusDraft, SchemaStatusActive, SchemaStatusDeprecated:
		return true
	}
	return false
}

const (
	MinYear = 2000
	MaxYear = 2100
)

func ValidYear(y int) bool { return y >= MinYear && y <= MaxYear }

type SchemaVersionModel struct {
	FormSchemaVersionID         int64          `gorm:"column:form_schema_version_id;primaryKey;autoIncrement" json:"form_schema_version_id"`
	FormSchemaVersionFormTypeID int64          `gorm:"column:form_schema_version_form_type_id;not null;uniqueIndex:uq_fsv_type_year_version,priority:1" json:"form_schema_version_form_type_id"`
	FormSchemaVersionYear       int            `gorm:"column:form_schema_version_year;not null;uniqueIndex:uq_fsv_type_year_version,priority:2" json:"form_schema_version_year"`
	FormSchemaVersionVersion    int            `gorm:"column:form_schema_version_version;not null;uniqueIndex:uq_fsv_type_year_version,priority:3" json:"form_schema_version_version"`
	FormSchemaVersionFields     datatypes.JSON `gorm:"column:form_schema_version_fields;not null" json:"form_schema_version_fields"`
	FormSchemaVersionUIHints    datatypes.JSON `gorm:"column:form_schema_version_ui_hints" json:"form_schema_version_ui_hints,omitempty"`
	FormSchemaVersionStatus     SchemaStatus   `gorm:"column:form_schema_version_status;type:varchar(16);not null" json:"form_schema_version_status"`
	FormSchemaVersionCreatedAt  time.Time      `gorm:"column:form_schema_version_created_at;autoCreateTime" json:"form_schema_version_created_at"`
	FormSchemaVersionUpdatedAt  time.Time      `gorm:"column:form_schema_version_updated_at;autoUpdateTime" json:"form_schema_version_updated_at"`
}

func (SchemaVersionModel) TableName() string { return "form_schema_versions" }

// Fields decodes the stored field list.
func (m *SchemaVersionModel) Fields() ([]FieldDef, error) {
	var out []FieldDef
	if len(m.FormSchemaVersionFields) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(m.FormSchemaVersionFields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldMeta indexes the field list by key.
func (m *SchemaVersionModel) FieldMeta() (map[string]FieldDef, error) {
	fields, err := m.Fields()
	if err != nil {
		return nil, err
	}
	meta := make(map[string]FieldDef, len(fields))
	for _, f := range fields {
		meta[f.Key] = f
	}
	return meta, nil
}

func (m *SchemaVersionModel) IsActive() bool { return m.FormSchemaVersionStatus == SchemaStatusActive }
