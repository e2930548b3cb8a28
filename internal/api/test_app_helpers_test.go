package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/config"
	"github.com/terraincognita07/medport/internal/db"
	"github.com/terraincognita07/medport/internal/metrics"
)

type testApp struct {
	app   *fiber.App
	clock *clock.Fixed
}

func newTestApp(t *testing.T, secret string) testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "medport-api-test.db")
	database, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: databasePath, LogLevel: "silent"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	fixed := clock.NewFixed(time.Date(2025, time.March, 12, 9, 5, 0, 0, time.UTC))
	handler, err := NewHandler(database, Options{
		Location: time.UTC,
		Clock:    fixed,
		Secret:   secret,
		Metrics:  metrics.New(),
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return testApp{app: NewApp(handler, AppOptions{AppName: "Medport test"}), clock: fixed}
}

func (app testApp) do(t *testing.T, method string, path string, body any, headers ...string) *http.Response {
	t.Helper()

	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for index := 0; index+1 < len(headers); index += 2 {
		request.Header.Set(headers[index], headers[index+1])
	}

	response, err := app.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func requireStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		payload, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, string(payload))
	}
}

func decodeJSON[T any](t *testing.T, response *http.Response) T {
	t.Helper()

	var payload T
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
	return payload
}

type apiErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func (app testApp) createMedication(t *testing.T, body map[string]any) medicationResponse {
	t.Helper()
	response := app.do(t, http.MethodPost, "/api/medications", body)
	requireStatus(t, response, fiber.StatusCreated)
	return decodeJSON[medicationResponse](t, response)
}

func (app testApp) createReminder(t *testing.T, body map[string]any) reminderResponse {
	t.Helper()
	response := app.do(t, http.MethodPost, "/api/reminders", body)
	requireStatus(t, response, fiber.StatusCreated)
	return decodeJSON[reminderResponse](t, response)
}
