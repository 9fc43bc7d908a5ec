package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"face-attendance/pkg/config"
	"face-attendance/pkg/utils"
)

const secret = "test-secret"

func okHandler(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

func token(t *testing.T, privileges ...string) string {
	t.Helper()
	tok, err := utils.GenerateToken(utils.UserContext{ID: uuid.New(), Privileges: privileges}, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestProtectedAndRequirePrivilege(t *testing.T) {
	app := fiber.New()
	app.Get("/search", Protected(secret), RequirePrivilege("SearchFace"), okHandler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"missing privilege", "Bearer " + token(t, "ViewUnit"), fiber.StatusForbidden},
		{"allowed", "Bearer " + token(t, "SearchFace"), fiber.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/search", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAdminToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		admin config.AdminConfig
		token string
		want  int
	}{
		{"hash match", config.AdminConfig{TokenHash: string(hash)}, "s3cret", fiber.StatusNoContent},
		{"hash mismatch", config.AdminConfig{TokenHash: string(hash)}, "guess", fiber.StatusUnauthorized},
		{"plain match", config.AdminConfig{Token: "plain"}, "plain", fiber.StatusNoContent},
		{"jwt secret fallback", config.AdminConfig{}, secret, fiber.StatusNoContent},
		{"missing", config.AdminConfig{Token: "plain"}, "", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/admin", AdminToken(tt.admin, secret), okHandler)

			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.token != "" {
				req.Header.Set("X-Admin-Token", tt.token)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimiter(config.RateLimitConfig{Enabled: true, MaxRequests: 1, WindowSeconds: 60}))
	app.Get("/", okHandler)

	first, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	second, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	if first.StatusCode != fiber.StatusNoContent || second.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("statuses = %d, %d", first.StatusCode, second.StatusCode)
	}
}
