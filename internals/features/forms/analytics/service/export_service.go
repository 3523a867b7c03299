package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
)

const (
	responsesSheet = "Responses"
	summarySheet   = "Summary"
)

var fixedHeaders = []string{"Submission ID", "Status", "Source", "Region", "Province", "City", "Barangay", "Submitted At"}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ExportResponses builds a workbook with one row per submission of
// (form type, year) and one column per field, plus a per-field summary sheet.
func (s *AnalyticsService) ExportResponses(ctx context.Context, formTypeID int64, year int) (*excelize.File, string, error) {
	fields, _, err := s.fieldsFor(ctx, formTypeID, year)
	if err != nil {
		return nil, "", err
	}

	var subs []submissionModel.SubmissionModel
	if err := s.DB.WithContext(ctx).
		Where("form_submission_form_type_id = ? AND form_submission_year = ?", formTypeID, year).
		Order("form_submission_id ASC").
		Find(&subs).Error; err != nil {
		return nil, "", err
	}

	var answers []answerModel.AnswerModel
	if err := s.DB.WithContext(ctx).
		Where("form_answer_form_type_id = ? AND form_answer_year = ?", formTypeID, year).
		Find(&answers).Error; err != nil {
		return nil, "", err
	}
	bySub := make(map[int64]map[string]answerModel.AnswerValue, len(subs))
	for i := range answers {
		a := &answers[i]
		if bySub[a.FormAnswerSubmissionID] == nil {
			bySub[a.FormAnswerSubmissionID] = map[string]answerModel.AnswerValue{}
		}
		bySub[a.FormAnswerSubmissionID][a.FormAnswerFieldKey] = a.Value()
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", responsesSheet); err != nil {
		return nil, "", err
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := append([]string{}, fixedHeaders...)
	for _, fd := range fields {
		headers = append(headers, fd.DisplayLabel())
	}
	if err := writeHeader(f, responsesSheet, headers, headerStyle); err != nil {
		return nil, "", err
	}

	for i, sub := range subs {
		row := i + 2
		submittedAt := ""
		if sub.FormSubmissionSubmittedAt != nil {
			submittedAt = sub.FormSubmissionSubmittedAt.UTC().Format("2006-01-02 15:04:05")
		}
		values := []any{
			sub.FormSubmissionID,
			string(sub.FormSubmissionStatus),
			sub.FormSubmissionSource,
			strOrEmpty(sub.FormSubmissionRegion),
			strOrEmpty(sub.FormSubmissionProvince),
			strOrEmpty(sub.FormSubmissionCity),
			strOrEmpty(sub.FormSubmissionBarangay),
			submittedAt,
		}
		for _, fd := range fields {
			values = append(values, cellValue(bySub[sub.FormSubmissionID][fd.Key]))
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(responsesSheet, cell, &values); err != nil {
			return nil, "", err
		}
	}
	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(responsesSheet, col, col, 18)
	}

	if err := s.writeSummarySheet(ctx, f, formTypeID, year, fields, headerStyle); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("form-%d-%d-responses.xlsx", formTypeID, year)
	return f, filename, nil
}

func (s *AnalyticsService) writeSummarySheet(ctx context.Context, f *excelize.File, formTypeID int64, year int, fields []schemaModel.FieldDef, style int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := writeHeader(f, summarySheet, []string{"Field Key", "Label", "Type", "Responses", "Top Option"}, style); err != nil {
		return err
	}
	for i, fd := range fields {
		rc, err := s.ResponseCount(ctx, formTypeID, year, fd.Key)
		if err != nil {
			return err
		}
		top := ""
		if opts, err := s.OptionCounts(ctx, formTypeID, year, fd.Key, 1); err != nil {
			return err
		} else if len(opts) > 0 {
			top = fmt.Sprintf("%s (%d)", opts[0].K, opts[0].C)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{fd.Key, fd.DisplayLabel(), string(fd.Type), rc, top}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "E", 22)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func cellValue(v answerModel.AnswerValue) any {
	switch v.Kind {
	case answerModel.KindNumber:
		return v.Number.InexactFloat64()
	case answerModel.KindBool:
		return v.Bool
	case answerModel.KindEmpty, "":
		return ""
	}
	return v.String()
}
