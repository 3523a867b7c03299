package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
	submissionService "ghg_inventory_backend/internals/features/forms/submissions/service"
	"ghg_inventory_backend/internals/testutil"
)

var fields = []schemaModel.FieldDef{
	{Key: "fuel_type", Label: "Fuel", Type: schemaModel.FieldTypeSelect, Options: []string{"LPG", "Diesel"}},
	{Key: "liters", Label: "Liters", Type: schemaModel.FieldTypeNumber},
	{Key: "remarks", Label: "Remarks", Type: schemaModel.FieldTypeText},
}

type fixture struct {
	db     *gorm.DB
	svc    *AnalyticsService
	subs   *submissionService.SubmissionService
	typeID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ft := testutil.SeedFormType(t, db, "fuel")
	testutil.SeedSchema(t, db, ft.FormTypeID, 2023, 1, schemaModel.SchemaStatusActive, fields)
	return &fixture{
		db:     db,
		svc:    NewAnalyticsService(db, nil),
		subs:   submissionService.NewSubmissionService(db, nil),
		typeID: ft.FormTypeID,
	}
}

// answer creates a submission with the given answers, submitting it when submit is set.
func (f *fixture) answer(t *testing.T, kv map[string]string, submit bool) *submissionModel.SubmissionModel {
	t.Helper()
	ctx := context.Background()
	m, err := f.subs.Create(ctx, submissionService.CreateInput{FormTypeID: f.typeID, Year: 2023})
	if err != nil {
		t.Fatal(err)
	}
	answers := map[string]json.RawMessage{}
	for k, v := range kv {
		answers[k] = json.RawMessage(v)
	}
	if submit {
		m, err = f.subs.Submit(ctx, m.FormSubmissionID, answers)
	} else {
		m, err = f.subs.SaveDraftAnswers(ctx, m.FormSubmissionID, answers)
	}
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestFormSummaryOptionCounts(t *testing.T) {
	f := newFixture(t)
	f.answer(t, map[string]string{"fuel_type": `"LPG"`, "remarks": `"kitchen"`}, true)
	f.answer(t, map[string]string{"fuel_type": `"lpg"`}, true)
	f.answer(t, map[string]string{"fuel_type": `"Diesel"`, "remarks": `"generator"`}, true)
	f.answer(t, map[string]string{"fuel_type": `null`}, false)

	sum, err := f.svc.SummaryForForm(context.Background(), f.typeID, 2023)
	if err != nil {
		t.Fatalf("SummaryForForm: %v", err)
	}
	if sum.TotalSubmissions != 3 {
		t.Fatalf("total submissions = %d, want 3 (drafts excluded)", sum.TotalSubmissions)
	}
	if sum.SchemaVersionID == nil || len(sum.Fields) != 3 {
		t.Fatalf("fields = %+v", sum.Fields)
	}

	fuel := sum.Fields[0]
	if fuel.FieldKey != "fuel_type" || fuel.ResponseCount != 3 {
		t.Fatalf("fuel summary = %+v", fuel)
	}
	if len(fuel.OptionCounts) != 2 ||
		fuel.OptionCounts[0].K != "LPG" || fuel.OptionCounts[0].C != 2 ||
		fuel.OptionCounts[1].K != "Diesel" || fuel.OptionCounts[1].C != 1 {
		t.Fatalf("option counts = %+v", fuel.OptionCounts)
	}

	remarks := sum.Fields[2]
	if remarks.ResponseCount != 2 || len(remarks.Samples) != 2 || remarks.Samples[0] != "generator" {
		t.Fatalf("remarks summary = %+v", remarks)
	}
}

func TestFieldSummaryNumberStats(t *testing.T) {
	f := newFixture(t)
	for _, v := range []string{`10.5`, `"20.25"`, `30.0`} {
		f.answer(t, map[string]string{"liters": v}, true)
	}

	fs, err := f.svc.SummaryForField(context.Background(), f.typeID, 2023, "liters")
	if err != nil {
		t.Fatalf("SummaryForField: %v", err)
	}
	st := fs.NumberStats
	if st == nil || st.N != 3 {
		t.Fatalf("stats = %+v", st)
	}
	want := map[string]struct {
		got  decimal.NullDecimal
		want string
	}{
		"min": {st.Min, "10.5"},
		"max": {st.Max, "30"},
		"avg": {st.Avg, "20.25"},
		"sum": {st.Sum, "60.75"},
	}
	for name, w := range want {
		if !w.got.Valid || !w.got.Decimal.Equal(decimal.RequireFromString(w.want)) {
			t.Errorf("%s = %v, want %s", name, w.got, w.want)
		}
	}
	if fs.ResponseCount != 3 || fs.Label != "Liters" {
		t.Fatalf("field summary = %+v", fs)
	}
}

func TestFieldSummaryUnknownKey(t *testing.T) {
	f := newFixture(t)
	fs, err := f.svc.SummaryForField(context.Background(), f.typeID, 2023, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if fs.ResponseCount != 0 || len(fs.OptionCounts) != 0 || len(fs.Samples) != 0 || fs.NumberStats.N != 0 || fs.NumberStats.Min.Valid {
		t.Fatalf("unknown field should be empty: %+v", fs)
	}
}

func TestSummaryWithoutSchemaFallsBackToAnsweredKeys(t *testing.T) {
	f := newFixture(t)
	f.answer(t, map[string]string{"liters": `1`, "remarks": `"x"`}, true)

	// drop the schema; answers keep their copied labels
	if err := f.db.Where("1 = 1").Delete(&schemaModel.SchemaVersionModel{}).Error; err != nil {
		t.Fatal(err)
	}
	sum, err := f.svc.SummaryForForm(context.Background(), f.typeID, 2023)
	if err != nil {
		t.Fatal(err)
	}
	if sum.SchemaVersionID != nil || len(sum.Fields) != 2 {
		t.Fatalf("fallback summary = %+v", sum)
	}
	if sum.Fields[0].FieldKey != "liters" || sum.Fields[0].Label != "Liters" || sum.Fields[0].ResponseCount != 1 {
		t.Fatalf("fallback field = %+v", sum.Fields[0])
	}
}

func TestIndividualIndexClampsPerPage(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		f.answer(t, map[string]string{"liters": `1`}, i%2 == 0)
	}

	cases := []struct{ perPage, want int }{{0, 20}, {-3, 20}, {1, 5}, {5, 5}, {50, 50}, {1000, 100}}
	for _, tc := range cases {
		if got := ClampPerPage(tc.perPage); got != tc.want {
			t.Errorf("ClampPerPage(%d) = %d, want %d", tc.perPage, got, tc.want)
		}
	}

	rows, p, err := f.svc.IndividualIndex(context.Background(), f.typeID, 2023, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.PerPage != 5 || p.Total != 7 || p.TotalPages != 2 || len(rows) != 2 || !p.HasPrev || p.HasNext {
		t.Fatalf("page 2: rows=%d pagination=%+v", len(rows), p)
	}
}

func TestExportResponses(t *testing.T) {
	f := newFixture(t)
	f.answer(t, map[string]string{"fuel_type": `"LPG"`, "liters": `10.5`}, true)
	f.answer(t, map[string]string{"remarks": `"none"`}, false)

	wb, name, err := f.svc.ExportResponses(context.Background(), f.typeID, 2023)
	if err != nil {
		t.Fatalf("ExportResponses: %v", err)
	}
	defer wb.Close()

	if name == "" {
		t.Fatal("empty filename")
	}
	rows, err := wb.GetRows(responsesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	header := rows[0]
	if len(header) != len(fixedHeaders)+len(fields) || header[len(fixedHeaders)] != "Fuel" {
		t.Fatalf("header = %v", header)
	}
	if got := rows[1][len(fixedHeaders)]; got != "LPG" {
		t.Fatalf("fuel cell = %q", got)
	}
	if got := rows[1][len(fixedHeaders)+1]; got != "10.5" {
		t.Fatalf("liters cell = %q", got)
	}

	summary, err := wb.GetRows(summarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 1+len(fields) || summary[1][4] != "LPG (1)" {
		t.Fatalf("summary sheet = %v", summary)
	}
}
