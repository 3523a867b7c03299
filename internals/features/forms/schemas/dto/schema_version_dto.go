package dto

import (
	"encoding/json"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/features/forms/schemas/service"
)

type CreateSchemaVersionRequest struct {
	Year    int              `json:"year" validate:"required"`
	Fields  []model.FieldDef `json:"fields" validate:"required"`
	UIHints json.RawMessage  `json:"ui_hints"`
	Status  string           `json:"status" validate:"omitempty,oneof=draft active deprecated"`
}

func (r CreateSchemaVersionRequest) ToInput(formTypeID int64) service.CreateSchemaVersionInput {
	return service.CreateSchemaVersionInput{
		FormTypeID: formTypeID,
		Year:       r.Year,
		Fields:     r.Fields,
		UIHints:    r.UIHints,
		Status:     model.SchemaStatus(r.Status),
	}
}

type PatchSchemaStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active deprecated"`
}

type SaveFieldMappingRequest struct {
	Mapping json.RawMessage `json:"mapping" validate:"required"`
}
