package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type memRoster struct {
	users map[string]*model.User
}

func (m *memRoster) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

func (m *memRoster) ListSuperusers(context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.IsSuperuser() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memRoster) SetRoles(_ context.Context, username string, roles []string) (bool, error) {
	u, ok := m.users[username]
	if ok {
		u.Roles = roles
	}
	return ok, nil
}

func newApp(t *testing.T) (*fiber.App, *memRoster, *auth.Tokens) {
	t.Helper()
	store := &memRoster{users: map[string]*model.User{
		"root":  {Key: "1", Username: "root", Roles: []string{"user", model.RoleAdmin}},
		"alice": {Key: "2", Username: "alice", Roles: []string{"user"}},
	}}
	tokens, _ := auth.NewTokens("secret")

	app := fiber.New()
	Register(app.Group("/api/v1"), NewHandlers(store, zap.NewNop()), auth.NewMiddleware(tokens, store, zap.NewNop()))
	return app, store, tokens
}

func post(t *testing.T, app *fiber.App, tokens *auth.Tokens, username string, body *bytes.Buffer, contentType string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/roster", body)
	req.Header.Set("Content-Type", contentType)
	token, _ := tokens.Generate(username)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestApplyRoster_RawYAML(t *testing.T) {
	app, store, tokens := newApp(t)

	status, body := post(t, app, tokens, "root", bytes.NewBufferString("superusers:\n  - username: root\n  - username: alice\n"), "application/x-yaml")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if !store.users["alice"].IsSuperuser() {
		t.Error("alice should have been granted the admin role")
	}
}

func TestApplyRoster_Upload(t *testing.T) {
	app, store, tokens := newApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "roster.yaml")
	_, _ = part.Write([]byte("superusers:\n  - username: alice\n"))
	_ = w.Close()

	status, body := post(t, app, tokens, "root", &buf, w.FormDataContentType())
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if store.users["root"].IsSuperuser() {
		t.Error("root is not listed and should lose the admin role")
	}
	if !store.users["alice"].IsSuperuser() {
		t.Error("alice should be a superuser")
	}
}

func TestApplyRoster_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		username string
		body     string
		status   int
	}{
		{"not a superuser", "alice", "superusers: []\n", fiber.StatusForbidden},
		{"empty body", "root", "", fiber.StatusBadRequest},
		{"invalid roster", "root", "superusers:\n  - email: x@example.com\n", fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, tokens := newApp(t)
			status, body := post(t, app, tokens, tt.username, bytes.NewBufferString(tt.body), "application/x-yaml")
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if msg, _ := body["message"].(string); strings.TrimSpace(msg) == "" {
				t.Errorf("expected message, got %v", body)
			}
		})
	}
}
