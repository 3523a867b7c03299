package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ValueKind string

const (
	KindEmpty  ValueKind = "empty"
	KindText   ValueKind = "text"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
	KindJSON   ValueKind = "json"
	KindOption ValueKind = "option"
)

// AnswerValue is a closed tagged union; only the member matching Kind is meaningful.
type AnswerValue struct {
	Kind        ValueKind
	Text        string
	Number      decimal.Decimal
	Bool        bool
	JSON        datatypes.JSON
	OptionKey   string
	OptionLabel string
}

func EmptyValue() AnswerValue                   { return AnswerValue{Kind: KindEmpty} }
func TextValue(s string) AnswerValue            { return AnswerValue{Kind: KindText, Text: s} }
func NumberValue(d decimal.Decimal) AnswerValue { return AnswerValue{Kind: KindNumber, Number: d} }
func BoolValue(b bool) AnswerValue              { return AnswerValue{Kind: KindBool, Bool: b} }
func JSONValue(raw []byte) AnswerValue          { return AnswerValue{Kind: KindJSON, JSON: datatypes.JSON(raw)} }
func OptionValue(key, label string) AnswerValue {
	return AnswerValue{Kind: KindOption, OptionKey: key, OptionLabel: label}
}

func (v AnswerValue) IsEmpty() bool { return v.Kind == KindEmpty || v.Kind == "" }

// Interface returns the plain value used in API responses and exports.
func (v AnswerValue) Interface() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	case KindJSON:
		return json.RawMessage(v.JSON)
	case KindOption:
		return v.OptionLabel
	}
	return nil
}

// String is the flat text form (spreadsheet cells, samples).
func (v AnswerValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number.String()
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindJSON:
		return string(v.JSON)
	case KindOption:
		return v.OptionLabel
	}
	return ""
}
