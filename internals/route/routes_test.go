package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ghg_inventory_backend/internals/configs"
	"ghg_inventory_backend/internals/constants"
	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/testutil"
)

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	ErrorCode  string              `json:"error_code"`
	Errors     map[string][]string `json:"errors"`
	Data       json.RawMessage     `json:"data"`
	Pagination *helper.Pagination  `json:"pagination"`
}

func (e envelope) into(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	configs.JWTSecret = testutil.JWTSecret
	db := testutil.SetupTestDB(t)
	app := fiber.New()
	SetupRoutes(app, db, nil)
	return app
}

func TestAuthAndRoles(t *testing.T) {
	app := newApp(t)
	enumerator := testutil.Token(t, uuid.New(), constants.RoleEnumerator)

	var env envelope
	if code := testutil.Do(t, app, http.MethodGet, "/api/a/form-types", "", nil, &env); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, "/api/a/form-types", "garbage", nil, &env); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, "/api/a/form-types", enumerator, nil, &env); code != http.StatusForbidden {
		t.Fatalf("enumerator on admin: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, "/api/u/form-types", enumerator, nil, &env); code != http.StatusOK {
		t.Fatalf("enumerator on user: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, "/health", "", nil, &env); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
}

func TestFormsEndToEnd(t *testing.T) {
	app := newApp(t)
	admin := testutil.Token(t, uuid.New(), constants.RoleAdmin)
	alice := testutil.Token(t, uuid.New(), constants.RoleEnumerator)
	bob := testutil.Token(t, uuid.New(), constants.RoleEnumerator)

	// ---- form type + schema (admin)
	var env envelope
	code := testutil.Do(t, app, http.MethodPost, "/api/a/form-types", admin, fiber.Map{
		"form_type_key":        "stationary_combustion",
		"form_type_name":       "Stationary Combustion",
		"form_type_sector_key": "energy",
	}, &env)
	if code != http.StatusCreated {
		t.Fatalf("create form type: %d %s", code, env.Message)
	}
	var ft struct {
		ID       int64 `json:"form_type_id"`
		IsActive bool  `json:"form_type_is_active"`
	}
	env.into(t, &ft)
	if !ft.IsActive {
		t.Fatal("form types default to active")
	}

	env = envelope{}
	code = testutil.Do(t, app, http.MethodPost, "/api/a/form-types", admin, fiber.Map{
		"form_type_key": "stationary_combustion", "form_type_name": "Dup", "form_type_sector_key": "energy",
	}, &env)
	if code != http.StatusConflict || len(env.Errors["form_type_key"]) == 0 {
		t.Fatalf("duplicate key: %d %+v", code, env)
	}

	env = envelope{}
	code = testutil.Do(t, app, http.MethodPost, "/api/a/form-types", admin, fiber.Map{"form_type_name": "No key"}, &env)
	if code != http.StatusUnprocessableEntity || len(env.Errors["form_type_key"]) == 0 {
		t.Fatalf("missing key: %d %+v", code, env)
	}

	schemaPath := fmt.Sprintf("/api/a/form-types/%d/schemas", ft.ID)
	fields := []fiber.Map{
		{"key": "fuel_type", "label": "Fuel", "type": "select", "options": []string{"LPG", "Diesel"}},
		{"key": "liters", "label": "Liters", "type": "number"},
	}
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodPost, schemaPath, admin, fiber.Map{"year": 1999, "fields": fields}, &env); code != http.StatusUnprocessableEntity || len(env.Errors["year"]) == 0 {
		t.Fatalf("bad year: %d %+v", code, env)
	}
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodPost, schemaPath, admin, fiber.Map{"year": 2023, "fields": fields, "status": "active"}, &env); code != http.StatusCreated {
		t.Fatalf("create schema: %d %s", code, env.Message)
	}
	var sv struct {
		Version int    `json:"version"`
		Status  string `json:"status"`
	}
	env.into(t, &sv)
	if sv.Version != 1 || sv.Status != "active" {
		t.Fatalf("schema = %+v", sv)
	}

	mappingPath := fmt.Sprintf("/api/a/form-types/%d/mappings/2023", ft.ID)
	if code := testutil.Do(t, app, http.MethodPut, mappingPath, admin, fiber.Map{"mapping": fiber.Map{"liters": "activity"}}, &env); code != http.StatusOK {
		t.Fatalf("save mapping: %d", code)
	}

	// ---- data entry (enumerator)
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/u/form-types/%d/years/2023/schema", ft.ID), alice, nil, &env); code != http.StatusOK {
		t.Fatalf("effective schema: %d", code)
	}

	env = envelope{}
	code = testutil.Do(t, app, http.MethodPost, "/api/u/submissions", alice, fiber.Map{
		"form_type_id": ft.ID, "year": 2023, "source": "mobile", "city": "Cebu",
	}, &env)
	if code != http.StatusCreated {
		t.Fatalf("create submission: %d %s", code, env.Message)
	}
	var sub struct {
		ID     int64  `json:"form_submission_id"`
		Status string `json:"form_submission_status"`
	}
	env.into(t, &sub)
	subPath := fmt.Sprintf("/api/u/submissions/%d", sub.ID)

	env = envelope{}
	code = testutil.Do(t, app, http.MethodPatch, subPath+"/answers", alice, fiber.Map{
		"answers": fiber.Map{"fuel_type": "lpg", "unknown": 1},
	}, &env)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown key: %d", code)
	}

	env = envelope{}
	code = testutil.Do(t, app, http.MethodPatch, subPath+"/answers", alice, fiber.Map{
		"answers": fiber.Map{"fuel_type": "lpg", "liters": "12.5"},
		"mode":    "submit",
	}, &env)
	if code != http.StatusOK {
		t.Fatalf("save+submit: %d %s", code, env.Message)
	}
	var detail struct {
		Status  string `json:"form_submission_status"`
		Answers []struct {
			FieldKey string `json:"field_key"`
			Kind     string `json:"kind"`
		} `json:"answers"`
	}
	env.into(t, &detail)
	if detail.Status != "submitted" || len(detail.Answers) != 2 || detail.Answers[0].Kind != "option" {
		t.Fatalf("detail = %+v", detail)
	}

	// someone else's submission is invisible
	if code := testutil.Do(t, app, http.MethodGet, subPath, bob, nil, &env); code != http.StatusNotFound {
		t.Fatalf("bob get: %d", code)
	}
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodGet, "/api/u/submissions", bob, nil, &env); code != http.StatusOK || env.Pagination == nil || env.Pagination.Total != 0 {
		t.Fatalf("bob list: %d %+v", code, env.Pagination)
	}

	// ---- analytics (admin)
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/a/form-types/%d/years/2023/summary", ft.ID), admin, nil, &env); code != http.StatusOK {
		t.Fatalf("summary: %d", code)
	}
	var sum struct {
		Total int64 `json:"total_submissions"`
	}
	env.into(t, &sum)
	if sum.Total != 1 {
		t.Fatalf("total = %d", sum.Total)
	}
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/a/form-types/%d/years/2023/responses?per_page=1", ft.ID), admin, nil, &env); code != http.StatusOK || env.Pagination == nil || env.Pagination.PerPage != 5 {
		t.Fatalf("responses: %d %+v", code, env.Pagination)
	}
	if code := testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/a/form-types/%d/years/2023/export", ft.ID), admin, nil, nil); code != http.StatusOK {
		t.Fatalf("export: %d", code)
	}

	// ---- review locks the record
	reviewPath := fmt.Sprintf("/api/a/submissions/%d/review", sub.ID)
	env = envelope{}
	if code := testutil.Do(t, app, http.MethodPatch, reviewPath, admin, fiber.Map{"status": "reviewed", "note": "ok"}, &env); code != http.StatusOK {
		t.Fatalf("review: %d %s", code, env.Message)
	}
	if code := testutil.Do(t, app, http.MethodPatch, subPath+"/answers", alice, fiber.Map{"answers": fiber.Map{"liters": 1}}, &env); code != http.StatusConflict {
		t.Fatalf("edit reviewed: %d", code)
	}

	// ---- cascade delete
	typePath := fmt.Sprintf("/api/a/form-types/%d", ft.ID)
	if code := testutil.Do(t, app, http.MethodDelete, typePath, admin, nil, &env); code != http.StatusOK {
		t.Fatalf("delete form type: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, typePath, admin, nil, &env); code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", code)
	}
	if code := testutil.Do(t, app, http.MethodGet, subPath, alice, nil, &env); code != http.StatusNotFound {
		t.Fatalf("submission should be gone: %d", code)
	}
}
