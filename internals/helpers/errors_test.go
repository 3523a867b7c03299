package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TestErrorKinds(t *testing.T) {
	inv := InvalidArgument("year", "must be between %d and %d", 2000, 2100)
	if !IsInvalidArgument(inv) || IsNotFound(inv) {
		t.Fatalf("InvalidArgument kind mismatch: %v", inv)
	}
	if inv.Error() != "year: must be between 2000 and 2100" {
		t.Fatalf("message = %q", inv.Error())
	}
	wrapped := fmt.Errorf("create: %w", NotFound("form type %d", 9))
	if !IsNotFound(wrapped) {
		t.Fatal("wrapped NotFound lost its kind")
	}
	if !IsConflict(Conflict("dup")) {
		t.Fatal("Conflict kind")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Error("gorm.ErrDuplicatedKey")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: form_types.form_type_key")) {
		t.Error("sqlite message")
	}
	if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
		t.Error("false positive")
	}
}

func TestJsonServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{InvalidArgument("key", "bad"), fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{InvalidArgument("", "bad"), fiber.StatusBadRequest, "BAD_REQUEST"},
		{NotFound("submission 1"), fiber.StatusNotFound, "NOT_FOUND"},
		{gorm.ErrRecordNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{Conflict("locked"), fiber.StatusConflict, "CONFLICT"},
		{gorm.ErrDuplicatedKey, fiber.StatusConflict, "CONFLICT"},
		{fiber.NewError(fiber.StatusForbidden, "no"), fiber.StatusForbidden, "FORBIDDEN"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return JsonServiceError(c, tc.err) })
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%v: status %d, want %d", tc.err, resp.StatusCode, tc.want)
		}
		body, _ := io.ReadAll(resp.Body)
		var er ErrorResponse
		if err := json.Unmarshal(body, &er); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if er.Success || er.ErrorCode != tc.code {
			t.Errorf("%v: envelope %+v", tc.err, er)
		}
	}
}
