package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AnswerModel is one "submission S has value V for field K" fact. Exactly one
// value slot is populated (or none, for a cleared answer). Form type, year,
// label and type are copied at write time so aggregation and historical
// display do not depend on later schema edits.
type AnswerModel struct {
	FormAnswerID           int64               `gorm:"column:form_answer_id;primaryKey;autoIncrement" json:"form_answer_id"`
	FormAnswerSubmissionID int64               `gorm:"column:form_answer_submission_id;not null;uniqueIndex:uq_fa_submission_field,priority:1" json:"form_answer_submission_id"`
	FormAnswerFormTypeID   int64               `gorm:"column:form_answer_form_type_id;not null;index:idx_fa_type_year_field,priority:1" json:"form_answer_form_type_id"`
	FormAnswerYear         int                 `gorm:"column:form_answer_year;not null;index:idx_fa_type_year_field,priority:2" json:"form_answer_year"`
	FormAnswerFieldKey     string              `gorm:"column:form_answer_field_key;type:varchar(100);not null;uniqueIndex:uq_fa_submission_field,priority:2;index:idx_fa_type_year_field,priority:3" json:"form_answer_field_key"`
	FormAnswerValueText    *string             `gorm:"column:form_answer_value_text;type:text" json:"form_answer_value_text"`
	FormAnswerValueNumber  decimal.NullDecimal `gorm:"column:form_answer_value_number;type:numeric(18,6)" json:"form_answer_value_number"`
	FormAnswerValueBool    *bool               `gorm:"column:form_answer_value_bool" json:"form_answer_value_bool"`
	FormAnswerValueJSON    datatypes.JSON      `gorm:"column:form_answer_value_json" json:"form_answer_value_json,omitempty"`
	FormAnswerOptionKey    *string             `gorm:"column:form_answer_option_key;type:varchar(100)" json:"form_answer_option_key"`
	FormAnswerOptionLabel  *string             `gorm:"column:form_answer_option_label;type:text" json:"form_answer_option_label"`
	FormAnswerFieldLabel   *string             `gorm:"column:form_answer_field_label;type:text" json:"form_answer_field_label"`
	FormAnswerFieldType    *string             `gorm:"column:form_answer_field_type;type:varchar(16)" json:"form_answer_field_type"`
	FormAnswerCreatedAt    time.Time           `gorm:"column:form_answer_created_at;autoCreateTime" json:"form_answer_created_at"`
	FormAnswerUpdatedAt    time.Time           `gorm:"column:form_answer_updated_at;autoUpdateTime" json:"form_answer_updated_at"`
}

func (AnswerModel) TableName() string { return "form_answers" }

// Value rebuilds the typed value from the storage slots.
func (m *AnswerModel) Value() AnswerValue {
	switch {
	case m.FormAnswerOptionKey != nil:
		label := ""
		if m.FormAnswerOptionLabel != nil {
			label = *m.FormAnswerOptionLabel
		}
		return OptionValue(*m.FormAnswerOptionKey, label)
	case m.FormAnswerValueNumber.Valid:
		return NumberValue(m.FormAnswerValueNumber.Decimal)
	case m.FormAnswerValueBool != nil:
		return BoolValue(*m.FormAnswerValueBool)
	case len(m.FormAnswerValueJSON) > 0:
		return JSONValue(m.FormAnswerValueJSON)
	case m.FormAnswerValueText != nil:
		return TextValue(*m.FormAnswerValueText)
	}
	return EmptyValue()
}

// SetValue writes v into the storage slots, clearing the others.
func (m *AnswerModel) SetValue(v AnswerValue) {
	m.FormAnswerValueText = nil
	m.FormAnswerValueNumber = decimal.NullDecimal{}
	m.FormAnswerValueBool = nil
	m.FormAnswerValueJSON = nil
	m.FormAnswerOptionKey = nil
	m.FormAnswerOptionLabel = nil

	switch v.Kind {
	case KindText:
		s := v.Text
		m.FormAnswerValueText = &s
	case KindNumber:
		m.FormAnswerValueNumber = decimal.NewNullDecimal(v.Number)
	case KindBool:
		b := v.Bool
		m.FormAnswerValueBool = &b
	case KindJSON:
		m.FormAnswerValueJSON = v.JSON
	case KindOption:
		k, l := v.OptionKey, v.OptionLabel
		m.FormAnswerOptionKey = &k
		m.FormAnswerOptionLabel = &l
	}
}
