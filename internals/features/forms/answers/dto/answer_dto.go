package dto

import (
	"sort"

	"ghg_inventory_backend/internals/features/forms/answers/model"
)

type AnswerResponse struct {
	FieldKey    string  `json:"field_key"`
	FieldLabel  *string `json:"field_label,omitempty"`
	FieldType   *string `json:"field_type,omitempty"`
	Kind        string  `json:"kind"`
	Value       any     `json:"value"`
	OptionKey   *string `json:"option_key,omitempty"`
	OptionLabel *string `json:"option_label,omitempty"`
}

func FromAnswer(m model.AnswerModel) AnswerResponse {
	v := m.Value()
	return AnswerResponse{
		FieldKey:    m.FormAnswerFieldKey,
		FieldLabel:  m.FormAnswerFieldLabel,
		FieldType:   m.FormAnswerFieldType,
		Kind:        string(v.Kind),
		Value:       v.Interface(),
		OptionKey:   m.FormAnswerOptionKey,
		OptionLabel: m.FormAnswerOptionLabel,
	}
}

// FromAnswers returns the answers ordered by field key.
func FromAnswers(rows []model.AnswerModel) []AnswerResponse {
	out := make([]AnswerResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromAnswer(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldKey < out[j].FieldKey })
	return out
}
