package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devexchange/orgs-backend/v1/config"
)

func TestNewFiberApp_Health(t *testing.T) {
	app := NewFiberApp(&config.Config{
		AppName:     "test",
		BodyLimit:   1024,
		ReadTimeout: 5,
		CorsOrigins: "http://localhost:3000",
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Frame-Options") == "" {
		t.Error("expected security headers from helmet")
	}
}
