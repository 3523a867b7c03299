package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	helper "ghg_inventory_backend/internals/helpers"
)

const (
	DateLayout   = "2006-01-02"
	numberScale  = 6
	numberDigits = 12 // integer digits of numeric(18,6)
)

var numberLimit = decimal.New(1, numberDigits)

// Classify routes one raw JSON answer into the slot its field type calls for.
//
//	null / ""            -> empty (clears the answer)
//	number field         -> number, from a JSON number or numeric string
//	true / false         -> bool (rejected for number and date fields)
//	select + known option-> option{key, label}
//	date field           -> text, must be YYYY-MM-DD
//	object / array       -> json
//	anything else        -> text
func Classify(raw json.RawMessage, def schemaModel.FieldDef) (model.AnswerValue, error) {
	field := "answers." + def.Key
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return model.EmptyValue(), nil
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return model.AnswerValue{}, helper.InvalidArgument(field, "invalid string")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return model.EmptyValue(), nil
		}
		return classifyScalar(s, def, false)

	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return model.AnswerValue{}, helper.InvalidArgument(field, "invalid value")
		}
		switch def.Type {
		case schemaModel.FieldTypeNumber:
			return model.AnswerValue{}, helper.InvalidArgument(field, "expected a number, got a boolean")
		case schemaModel.FieldTypeDate:
			return model.AnswerValue{}, helper.InvalidArgument(field, "expected a date (YYYY-MM-DD), got a boolean")
		}
		return model.BoolValue(b), nil

	case c == '{' || c == '[':
		switch def.Type {
		case schemaModel.FieldTypeNumber:
			return model.AnswerValue{}, helper.InvalidArgument(field, "expected a number")
		case schemaModel.FieldTypeDate:
			return model.AnswerValue{}, helper.InvalidArgument(field, "expected a date (YYYY-MM-DD)")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return model.AnswerValue{}, helper.InvalidArgument(field, "invalid JSON")
		}
		return model.JSONValue(buf.Bytes()), nil

	default:
		if !json.Valid(trimmed) {
			return model.AnswerValue{}, helper.InvalidArgument(field, "invalid JSON value")
		}
		return classifyScalar(string(trimmed), def, true)
	}
}

func classifyScalar(s string, def schemaModel.FieldDef, fromNumberLiteral bool) (model.AnswerValue, error) {
	field := "answers." + def.Key

	switch def.Type {
	case schemaModel.FieldTypeNumber:
		d, err := ParseNumber(s)
		if err != nil {
			return model.AnswerValue{}, helper.InvalidArgument(field, "%q is not a number", s)
		}
		if d.Abs().GreaterThanOrEqual(numberLimit) {
			return model.AnswerValue{}, helper.InvalidArgument(field, "%s is out of range", s)
		}
		return model.NumberValue(d), nil

	case schemaModel.FieldTypeDate:
		if fromNumberLiteral {
			return model.AnswerValue{}, helper.InvalidArgument(field, "expected a date (YYYY-MM-DD)")
		}
		if _, err := time.Parse(DateLayout, s); err != nil {
			return model.AnswerValue{}, helper.InvalidArgument(field, "%q is not a date (YYYY-MM-DD)", s)
		}
		return model.TextValue(s), nil

	case schemaModel.FieldTypeSelect:
		if key, label, ok := MatchOption(def.Options, s); ok {
			return model.OptionValue(key, label), nil
		}
		return model.TextValue(s), nil
	}
	return model.TextValue(s), nil
}

// ParseNumber reads the exact decimal text, rounded to the storage scale.
func ParseNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(numberScale), nil
}

// MatchOption finds s among options by label or option key, case-insensitive.
func MatchOption(options []string, s string) (key, label string, ok bool) {
	for _, o := range options {
		k := OptionKey(o)
		if strings.EqualFold(strings.TrimSpace(o), s) || strings.EqualFold(k, s) {
			return k, strings.TrimSpace(o), true
		}
	}
	return "", "", false
}

func OptionKey(option string) string {
	return helper.Slugify(option, helper.MaxKeyLength)
}
