package dto

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/helpers/logger"
)

func TestFromSchemaVersionLogsUndecodableFields(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Sugar
	logger.Sugar = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Sugar = prev })

	res := FromSchemaVersion(model.SchemaVersionModel{
		FormSchemaVersionID:     7,
		FormSchemaVersionFields: datatypes.JSON(`{"not":"a list"`),
		FormSchemaVersionStatus: model.SchemaStatusActive,
	})
	if res.Fields == nil || len(res.Fields) != 0 {
		t.Fatalf("fields = %#v, want empty list", res.Fields)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["form_schema_version_id"]; got != int64(7) {
		t.Fatalf("logged id = %v", got)
	}
}

func TestFromSchemaVersionDecodesFields(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Sugar
	logger.Sugar = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Sugar = prev })

	res := FromSchemaVersion(model.SchemaVersionModel{
		FormSchemaVersionFields: datatypes.JSON(`[{"key":"liters","label":"Liters","type":"number"}]`),
	})
	if len(res.Fields) != 1 || res.Fields[0].Key != "liters" {
		t.Fatalf("fields = %#v", res.Fields)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected log: %v", logs.All())
	}
}
