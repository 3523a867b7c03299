package model

import "time"

type FormTypeModel struct {
	FormTypeID          int64     `gorm:"column:form_type_id;primaryKey;autoIncrement" json:"form_type_id"`
	FormTypeKey         string    `gorm:"column:form_type_key;type:varchar(100);not null;uniqueIndex:uq_form_type_key" json:"form_type_key"`
	FormTypeName        string    `gorm:"column:form_type_name;type:varchar(200);not null" json:"form_type_name"`
	FormTypeSectorKey   string    `gorm:"column:form_type_sector_key;type:varchar(100);not null;index:idx_form_type_sector_name,priority:1" json:"form_type_sector_key"`
	FormTypeDescription *string   `gorm:"column:form_type_description;type:text" json:"form_type_description,omitempty"`
	FormTypeIsActive    bool      `gorm:"column:form_type_is_active;not null" json:"form_type_is_active"`
	FormTypeCreatedAt   time.Time `gorm:"column:form_type_created_at;autoCreateTime" json:"form_type_created_at"`
	FormTypeUpdatedAt   time.Time `gorm:"column:form_type_updated_at;autoUpdateTime" json:"form_type_updated_at"`

	SchemaVersions []SchemaVersionModel `gorm:"-" json:"schema_versions"`
	FieldMappings  []FieldMappingModel  `gorm:"-" json:"field_mappings"`
}

func (FormTypeModel) TableName() string { return "form_types" }
