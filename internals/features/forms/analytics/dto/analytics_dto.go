package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OptionCount struct {
	K string `json:"k"`
	C int64  `json:"c"`
}

type NumberStats struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
	Avg decimal.NullDecimal `json:"avg"`
	Sum decimal.NullDecimal `json:"sum"`
	N   int64               `json:"n"`
}

type FieldSummary struct {
	FieldKey      string        `json:"field_key"`
	Label         string        `json:"label"`
	FieldType     string        `json:"field_type,omitempty"`
	ResponseCount int64         `json:"response_count"`
	OptionCounts  []OptionCount `json:"option_counts"`
	Samples       []string      `json:"samples"`
	NumberStats   *NumberStats  `json:"number_stats,omitempty"`
}

type FormSummary struct {
	FormTypeID       int64          `json:"form_type_id"`
	Year             int            `json:"year"`
	SchemaVersionID  *int64         `json:"schema_version_id"`
	TotalSubmissions int64          `json:"total_submissions"`
	Fields           []FieldSummary `json:"fields"`
	GeneratedAt      time.Time      `json:"generated_at"`
}
