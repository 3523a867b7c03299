package form_types

import (
	"context"
	"testing"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/testutil"
)

func TestSeedFormTypesIsRepeatable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	n, err := SeedFormTypesFromJSON(ctx, db, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("created = %d, want 3", n)
	}

	n, err = SeedFormTypesFromJSON(ctx, db, nil)
	if err != nil || n != 0 {
		t.Fatalf("second run: n=%d err=%v", n, err)
	}

	var active int64
	db.Model(&model.SchemaVersionModel{}).
		Where("form_schema_version_status = ?", model.SchemaStatusActive).
		Count(&active)
	if active != 3 {
		t.Fatalf("active schemas = %d, want 3", active)
	}
}

func TestSeedRejectsBadSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	bad := []byte(`[{"key":"x","name":"X","sector_key":"energy","year":1800,"fields":[{"key":"a","type":"text"}]}]`)
	if _, err := SeedFormTypesFromJSON(context.Background(), db, bad); err == nil {
		t.Fatal("expected year validation error")
	}
}
