package model

import (
	"time"

	"gorm.io/datatypes"
)

// FieldMappingModel maps schema field keys to keys of an external consumer
// (e.g. the emissions calculator). One row per (form type, year).
type FieldMappingModel struct {
	FormFieldMappingID         int64          `gorm:"column:form_field_mapping_id;primaryKey;autoIncrement" json:"form_field_mapping_id"`
	FormFieldMappingFormTypeID int64          `gorm:"column:form_field_mapping_form_type_id;not null;uniqueIndex:uq_ffm_type_year,priority:1" json:"form_field_mapping_form_type_id"`
	FormFieldMappingYear       int            `gorm:"column:form_field_mapping_year;not null;uniqueIndex:uq_ffm_type_year,priority:2" json:"form_field_mapping_year"`
	FormFieldMappingMapping    datatypes.JSON `gorm:"column:form_field_mapping_mapping;not null" json:"form_field_mapping_mapping"`
	FormFieldMappingCreatedAt  time.Time      `gorm:"column:form_field_mapping_created_at;autoCreateTime" json:"form_field_mapping_created_at"`
	FormFieldMappingUpdatedAt  time.Time      `gorm:"column:form_field_mapping_updated_at;autoUpdateTime" json:"form_field_mapping_updated_at"`
}

func (FieldMappingModel) TableName() string { return "form_field_mappings" }
