package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantCode   int
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     map[string]HealthCheck{},
			wantCode:   fiber.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "all passing",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
			},
			wantCode:   fiber.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "one failing",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantCode:   fiber.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.checks).Health)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.wantCode)
			}

			var body struct {
				Status     string            `json:"status"`
				Components map[string]string `json:"components"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if len(body.Components) != len(tt.checks) {
				t.Errorf("components = %v", body.Components)
			}
		})
	}
}
