package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/security"
)

const testTokenSecret = "0123456789abcdef0123456789abcdef"

func TestBearerAuthDisabledWithoutSecret(t *testing.T) {
	app := newTestApp(t, "")
	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil), fiber.StatusOK)
}

func TestBearerAuthAcceptsIssuedToken(t *testing.T) {
	app := newTestApp(t, testTokenSecret)

	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil), fiber.StatusUnauthorized)
	requireStatus(t, app.do(t, http.MethodGet, "/healthz", nil), fiber.StatusOK)

	token, err := security.IssueToken([]byte(testTokenSecret), "cli", time.Hour, app.clock.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil, "Authorization", "Bearer "+token), fiber.StatusOK)

	app.clock.Advance(2 * time.Hour)
	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil, "Authorization", "Bearer "+token), fiber.StatusUnauthorized)
}

func TestBearerAuthThrottlesRepeatedFailures(t *testing.T) {
	app := newTestApp(t, testTokenSecret)

	for attempt := 0; attempt < defaultTokenFailureLimit; attempt++ {
		requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil, "Authorization", "Bearer nope"), fiber.StatusUnauthorized)
	}
	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil, "Authorization", "Bearer nope"), fiber.StatusTooManyRequests)

	app.clock.Advance(defaultTokenFailureWindow + time.Second)
	requireStatus(t, app.do(t, http.MethodGet, "/api/colors", nil, "Authorization", "Bearer nope"), fiber.StatusUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer  abc ", want: "abc", ok: true},
		{header: "Basic abc", ok: false},
		{header: "Bearer", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testTokenSecret)
	seedToken, err := security.IssueToken([]byte(testTokenSecret), "cli", time.Hour, app.clock.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	requireStatus(t, app.do(t, http.MethodGet, "/api/due", nil, "Authorization", "Bearer "+seedToken), fiber.StatusOK)

	response := app.do(t, http.MethodGet, "/metrics", nil)
	requireStatus(t, response, fiber.StatusOK)
}
