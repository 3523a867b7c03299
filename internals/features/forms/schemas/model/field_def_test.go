package model

import (
	"testing"

	helper "ghg_inventory_backend/internals/helpers"
)

func TestValidateFields(t *testing.T) {
	ok := []FieldDef{
		{Key: "fuel_type", Label: "Fuel type", Type: FieldTypeSelect, Options: []string{"LPG", "Diesel"}},
		{Key: "annual_total_consumption", Label: "Annual consumption", Type: FieldTypeNumber, Required: true},
	}
	if err := ValidateFields(ok); err != nil {
		t.Fatalf("valid list rejected: %v", err)
	}

	bad := map[string][]FieldDef{
		"empty":          {},
		"bad key":        {{Key: "Fuel Type", Label: "x", Type: FieldTypeText}},
		"duplicate key":  {{Key: "a", Label: "A", Type: FieldTypeText}, {Key: "a", Label: "B", Type: FieldTypeText}},
		"missing label":  {{Key: "a", Label: " ", Type: FieldTypeText}},
		"unknown type":   {{Key: "a", Label: "A", Type: "checkbox"}},
		"select no opts": {{Key: "a", Label: "A", Type: FieldTypeSelect}},
		"blank option":   {{Key: "a", Label: "A", Type: FieldTypeSelect, Options: []string{"x", ""}}},
	}
	for name, fields := range bad {
		if err := ValidateFields(fields); !helper.IsInvalidArgument(err) {
			t.Errorf("%s: want InvalidArgument, got %v", name, err)
		}
	}
}

func TestDisplayLabelFallback(t *testing.T) {
	if got := (FieldDef{Key: "fuel_type"}).DisplayLabel(); got != "Fuel Type" {
		t.Fatalf("got %q", got)
	}
	if got := (FieldDef{Key: "x", Label: "Explicit"}).DisplayLabel(); got != "Explicit" {
		t.Fatalf("got %q", got)
	}
}

func TestYearBounds(t *testing.T) {
	for y, want := range map[int]bool{1999: false, 2000: true, 2100: true, 2101: false} {
		if ValidYear(y) != want {
			t.Errorf("ValidYear(%d) != %v", y, want)
		}
	}
}
