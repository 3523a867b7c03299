package model

import (
	"fmt"
	"strings"

	helper "ghg_inventory_backend/internals/helpers"
)

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeSelect FieldType = "select"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeSelect:
		return true
	}
	return false
}

// FieldDef is one entry of a schema version's field list. The JSON shape is
// what the form renderer consumes, so field order and names are fixed.
type FieldDef struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// DisplayLabel falls back to a label derived from the key.
func (f FieldDef) DisplayLabel() string {
	if l := strings.TrimSpace(f.Label); l != "" {
		return l
	}
	return helper.DeriveLabel(f.Key)
}

// ValidateFields checks a whole field list: non-empty, keys slug-safe and
// unique, labels present, known types, select fields carry options.
func ValidateFields(fields []FieldDef) error {
	if len(fields) == 0 {
		return helper.InvalidArgument("fields", "at least one field is required")
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		path := fmt.Sprintf("fields[%d]", i)
		if !helper.IsSlugKey(f.Key) {
			return helper.InvalidArgument(path+".key", "key %q must match [a-z0-9._-] (1..%d chars)", f.Key, helper.MaxKeyLength)
		}
		if _, dup := seen[f.Key]; dup {
			return helper.InvalidArgument(path+".key", "duplicate key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
		if strings.TrimSpace(f.Label) == "" {
			return helper.InvalidArgument(path+".label", "label is required")
		}
		if !f.Type.Valid() {
			return helper.InvalidArgument(path+".type", "type %q must be one of text, number, date, select", f.Type)
		}
		if f.Type == FieldTypeSelect {
			if len(f.Options) == 0 {
				return helper.InvalidArgument(path+".options", "select fields need at least one option")
			}
			for _, o := range f.Options {
				if strings.TrimSpace(o) == "" {
					return helper.InvalidArgument(path+".options", "options must not be blank")
				}
			}
		}
	}
	return nil
}
