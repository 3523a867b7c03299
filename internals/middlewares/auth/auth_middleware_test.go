package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	helper "ghg_inventory_backend/internals/helpers"
)

const secret = "unit-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(secret))
	app.Get("/whoami", OnlyRoles("", "admin", "enumerator"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(helper.LocUserID).(string) + "|" + c.Locals(helper.LocUserRole).(string))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	uid := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "", http.StatusUnauthorized},
		{"role claim", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"id": uid.String(), "role": "Admin", "exp": exp}), "", http.StatusOK},
		{"roles array via sub", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": uid.String(), "roles": []string{"enumerator"}, "exp": exp}), "", http.StatusOK},
		{"cookie", "", sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"user_id": uid.String(), "role": "enumerator", "exp": exp}), http.StatusOK},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"id": uid.String(), "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"no exp", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"id": uid.String(), "role": "admin"}), "", http.StatusUnauthorized},
		{"bad user id", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"id": "nope", "role": "admin", "exp": exp}), "", http.StatusUnauthorized},
		{"other role", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"id": uid.String(), "role": "viewer", "exp": exp}), "", http.StatusForbidden},
	}

	app := newApp()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tc.cookie})
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestWrongSigningKey(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": uuid.NewString(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	resp, err := newApp().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestExtractRole(t *testing.T) {
	if got := extractRole(jwt.MapClaims{"roles": []interface{}{"", " Enumerator "}}); got != "enumerator" {
		t.Fatalf("got %q", got)
	}
	if got := extractRole(jwt.MapClaims{}); got != "" {
		t.Fatalf("got %q", got)
	}
}
