// Package testutil wires an in-memory database and signed tokens for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	answerModel "ghg_inventory_backend/internals/features/forms/answers/model"
	schemaModel "ghg_inventory_backend/internals/features/forms/schemas/model"
	submissionModel "ghg_inventory_backend/internals/features/forms/submissions/model"
)

const JWTSecret = "test-secret"

// SetupTestDB opens a private in-memory sqlite database with every forms
// table migrated. One connection only, so transactions serialise.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&schemaModel.FormTypeModel{},
		&schemaModel.SchemaVersionModel{},
		&schemaModel.FieldMappingModel{},
		&submissionModel.SubmissionModel{},
		&answerModel.AnswerModel{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// SeedFormType inserts an active form type.
func SeedFormType(t *testing.T, db *gorm.DB, key string) *schemaModel.FormTypeModel {
	t.Helper()
	m := &schemaModel.FormTypeModel{
		FormTypeKey:       key,
		FormTypeName:      key,
		FormTypeSectorKey: "energy",
		FormTypeIsActive:  true,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed form type: %v", err)
	}
	return m
}

// SeedSchema inserts a schema version directly, bypassing numbering.
func SeedSchema(t *testing.T, db *gorm.DB, formTypeID int64, year, version int, status schemaModel.SchemaStatus, fields []schemaModel.FieldDef) *schemaModel.SchemaVersionModel {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	sv := &schemaModel.SchemaVersionModel{
		FormSchemaVersionFormTypeID: formTypeID,
		FormSchemaVersionYear:       year,
		FormSchemaVersionVersion:    version,
		FormSchemaVersionFields:     datatypes.JSON(raw),
		FormSchemaVersionStatus:     status,
	}
	if err := db.Create(sv).Error; err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	return sv
}

// Token signs an HS256 access token for the given user and role.
func Token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":   userID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// Do sends a request through app and decodes the JSON response body into out
// (when out is non-nil). It returns the status code.
func Do(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode
}
