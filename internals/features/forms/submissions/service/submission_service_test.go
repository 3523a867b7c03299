package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	schemaService "ghg_inventory_backend/internals/features/forms/schemas/service"
	"ghg_inventory_backend/internals/features/forms/submissions/model"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/testutil"
)

var fields = []schemaModel.FieldDef{
	{Key: "fuel_type", Label: "Fuel", Type: schemaModel.FieldTypeSelect, Options: []string{"LPG", "Diesel"}},
	{Key: "liters", Label: "Liters", Type: schemaModel.FieldTypeNumber},
}

type fixture struct {
	svc    *SubmissionService
	db     *gorm.DB
	typeID int64
	schema *schemaModel.SchemaVersionModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ft := testutil.SeedFormType(t, db, "fuel")
	sv := testutil.SeedSchema(t, db, ft.FormTypeID, 2023, 1, schemaModel.SchemaStatusActive, fields)
	return &fixture{svc: NewSubmissionService(db, nil), db: db, typeID: ft.FormTypeID, schema: sv}
}

func (f *fixture) create(t *testing.T, year int) *model.SubmissionModel {
	t.Helper()
	m, err := f.svc.Create(context.Background(), CreateInput{FormTypeID: f.typeID, Year: year})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return m
}

func raw(kv map[string]string) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	for k, v := range kv {
		out[k] = json.RawMessage(v)
	}
	return out
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.create(t, 2023)
	if m.FormSubmissionStatus != model.SubmissionStatusDraft || m.FormSubmissionSource != model.SourceAdmin {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if m.FormSubmissionSchemaVersionID == nil || *m.FormSubmissionSchemaVersionID != f.schema.FormSchemaVersionID {
		t.Fatal("draft should be pinned to the active schema")
	}

	unpinned := f.create(t, 2030)
	if unpinned.FormSubmissionSchemaVersionID != nil {
		t.Fatal("no schema for 2030, draft must be unpinned")
	}

	region := "  Region VII "
	m, err := f.svc.Create(ctx, CreateInput{FormTypeID: f.typeID, Year: 2023, Source: "Mobile", Location: LocationTags{Region: &region}})
	if err != nil {
		t.Fatal(err)
	}
	if m.FormSubmissionSource != model.SourceMobile || m.FormSubmissionRegion == nil || *m.FormSubmissionRegion != "Region VII" {
		t.Fatalf("source/region not normalised: %+v", m)
	}

	if _, err := f.svc.Create(ctx, CreateInput{FormTypeID: f.typeID, Year: 1999}); !helper.IsInvalidArgument(err) {
		t.Fatalf("bad year: want InvalidArgument, got %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateInput{FormTypeID: 9999, Year: 2023}); !helper.IsNotFound(err) {
		t.Fatalf("unknown type: want NotFound, got %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateInput{FormTypeID: f.typeID, Year: 2023, Source: "not a tag!"}); !helper.IsInvalidArgument(err) {
		t.Fatalf("bad source: want InvalidArgument, got %v", err)
	}
}

func TestSaveDraftWithoutSchema(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, 2030)
	_, err := f.svc.SaveDraftAnswers(context.Background(), m.FormSubmissionID, raw(map[string]string{"liters": "1"}))
	if !helper.IsInvalidArgument(err) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestDraftFollowsNewlyActivatedSchema(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2023)

	v2Fields := append(append([]schemaModel.FieldDef{}, fields...),
		schemaModel.FieldDef{Key: "vehicle_count", Label: "Vehicles", Type: schemaModel.FieldTypeNumber})
	v2, err := schemaService.NewSchemaService(f.db, nil).CreateSchemaVersion(ctx, schemaService.CreateSchemaVersionInput{
		FormTypeID: f.typeID,
		Year:       2023,
		Fields:     v2Fields,
		Status:     schemaModel.SchemaStatusActive,
	})
	if err != nil {
		t.Fatalf("CreateSchemaVersion: %v", err)
	}
	served, err := schemaService.ResolveEffectiveSchema(ctx, f.db, f.typeID, 2023, schemaService.PreferActive)
	if err != nil || served.FormSchemaVersionID != v2.FormSchemaVersionID {
		t.Fatalf("effective schema = %+v, %v", served, err)
	}

	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"vehicle_count": "4"})); err != nil {
		t.Fatalf("field added in the active version rejected: %v", err)
	}
	var stored model.SubmissionModel
	if err := f.db.First(&stored, m.FormSubmissionID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.FormSubmissionSchemaVersionID == nil || *stored.FormSubmissionSchemaVersionID != v2.FormSchemaVersionID {
		t.Fatalf("schema version = %v, want %d", stored.FormSubmissionSchemaVersionID, v2.FormSchemaVersionID)
	}

	// a key from neither version is still rejected
	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"odometer": "1"})); !helper.IsInvalidArgument(err) {
		t.Fatalf("unknown key: want InvalidArgument, got %v", err)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2023)

	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"fuel_type": `"LPG"`})); err != nil {
		t.Fatal(err)
	}
	first, err := f.svc.Submit(ctx, m.FormSubmissionID, raw(map[string]string{"liters": `12`}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if first.FormSubmissionStatus != model.SubmissionStatusSubmitted || first.FormSubmissionSubmittedAt == nil {
		t.Fatalf("after submit: %+v", first)
	}
	stamp := *first.FormSubmissionSubmittedAt

	second, err := f.svc.Submit(ctx, m.FormSubmissionID, nil)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.FormSubmissionStatus != model.SubmissionStatusSubmitted || second.FormSubmissionSubmittedAt.Before(stamp) {
		t.Fatalf("resubmit: %+v", second)
	}

	d, err := f.svc.Get(ctx, m.FormSubmissionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(d.Answers))
	}

	// submitted records stay editable until reviewed
	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"liters": `13`})); err != nil {
		t.Fatalf("edit after submit: %v", err)
	}
}

func TestReviewLocksAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviewer := uuid.New()
	m := f.create(t, 2023)

	if _, err := f.svc.Review(ctx, m.FormSubmissionID, model.SubmissionStatusReviewed, &reviewer, nil); !helper.IsConflict(err) {
		t.Fatalf("review draft: want Conflict, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, m.FormSubmissionID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, m.FormSubmissionID, model.SubmissionStatusDraft, &reviewer, nil); !helper.IsInvalidArgument(err) {
		t.Fatalf("review to draft: want InvalidArgument, got %v", err)
	}

	note := " looks fine "
	got, err := f.svc.Review(ctx, m.FormSubmissionID, model.SubmissionStatusReviewed, &reviewer, &note)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.FormSubmissionReviewedBy == nil || *got.FormSubmissionReviewedBy != reviewer ||
		got.FormSubmissionReviewNote == nil || *got.FormSubmissionReviewNote != "looks fine" {
		t.Fatalf("review fields: %+v", got)
	}

	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"liters": `1`})); !helper.IsConflict(err) {
		t.Fatalf("edit reviewed: want Conflict, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, m.FormSubmissionID, nil); !helper.IsConflict(err) {
		t.Fatalf("submit reviewed: want Conflict, got %v", err)
	}
}

func TestUpdateMetaRetagsAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	next := testutil.SeedSchema(t, f.db, f.typeID, 2024, 1, schemaModel.SchemaStatusActive, fields)
	m := f.create(t, 2023)

	if _, err := f.svc.SaveDraftAnswers(ctx, m.FormSubmissionID, raw(map[string]string{"liters": `5`})); err != nil {
		t.Fatal(err)
	}

	year := 2024
	got, err := f.svc.UpdateMeta(ctx, m.FormSubmissionID, MetaPatch{Year: &year, City: helper.Set("Cebu City")})
	if err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if got.FormSubmissionYear != 2024 || got.FormSubmissionSchemaVersionID == nil || *got.FormSubmissionSchemaVersionID != next.FormSchemaVersionID {
		t.Fatalf("not re-pinned: %+v", got)
	}
	if got.FormSubmissionCity == nil || *got.FormSubmissionCity != "Cebu City" {
		t.Fatal("city not set")
	}

	var stale int64
	f.db.Model(&answerModel.AnswerModel{}).Where("form_answer_year = ?", 2023).Count(&stale)
	if stale != 0 {
		t.Fatalf("answers still tagged 2023: %d", stale)
	}

	got, err = f.svc.UpdateMeta(ctx, m.FormSubmissionID, MetaPatch{City: helper.SetNull[string]()})
	if err != nil {
		t.Fatal(err)
	}
	if got.FormSubmissionCity != nil {
		t.Fatal("city should be cleared")
	}

	bad := 2200
	if _, err := f.svc.UpdateMeta(ctx, m.FormSubmissionID, MetaPatch{Year: &bad}); !helper.IsInvalidArgument(err) {
		t.Fatalf("bad year: want InvalidArgument, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	cebu, manila := "Cebu", "Manila"

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Create(ctx, CreateInput{FormTypeID: f.typeID, Year: 2023, CreatedBy: &owner, Location: LocationTags{City: &cebu}}); err != nil {
			t.Fatal(err)
		}
	}
	other, err := f.svc.Create(ctx, CreateInput{FormTypeID: f.typeID, Year: 2023, Location: LocationTags{City: &manila}})
	if err != nil {
		t.Fatal(err)
	}

	rows, total, err := f.svc.List(ctx, ListFilter{City: "cebu"}, helper.NewPaging(1, 2, 20, 100))
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 2 || rows[0].FormSubmissionID < rows[1].FormSubmissionID {
		t.Fatalf("city filter: total=%d rows=%d", total, len(rows))
	}
	if _, total, _ = f.svc.List(ctx, ListFilter{CreatedBy: &owner}, helper.NewPaging(1, 20, 20, 100)); total != 3 {
		t.Fatalf("owner filter total = %d", total)
	}
	if _, _, err := f.svc.List(ctx, ListFilter{Status: "archived"}, helper.NewPaging(1, 20, 20, 100)); !helper.IsInvalidArgument(err) {
		t.Fatalf("bad status: want InvalidArgument, got %v", err)
	}

	if _, err := f.svc.SaveDraftAnswers(ctx, other.FormSubmissionID, raw(map[string]string{"liters": `1`})); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, other.FormSubmissionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var n int64
	f.db.Model(&answerModel.AnswerModel{}).Where("form_answer_submission_id = ?", other.FormSubmissionID).Count(&n)
	if n != 0 {
		t.Fatalf("orphan answers: %d", n)
	}
	if _, err := f.svc.Get(ctx, other.FormSubmissionID); !helper.IsNotFound(err) {
		t.Fatalf("get deleted: want NotFound, got %v", err)
	}
}
