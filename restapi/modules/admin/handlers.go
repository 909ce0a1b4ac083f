// Package admin implements the REST API handlers for platform administration.
// It applies the superuser roster posted as YAML or uploaded as a file.
package admin

import (
	"io"
	"sync"

	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handlers serves the admin routes
type Handlers struct {
	store  auth.RosterStore
	logger *zap.Logger

	mu sync.Mutex
}

// NewHandlers creates the admin handlers
func NewHandlers(store auth.RosterStore, logger *zap.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// Register mounts the admin routes. Every route requires a superuser.
func Register(router fiber.Router, h *Handlers, mw *auth.Middleware) {
	router.Post("/admin/roster", mw.RequireAuth, auth.RequireSuperuser, h.ApplyRoster)
}

// ApplyRoster reconciles superusers with the roster carried by the request:
// either a multipart "file" upload or the raw YAML body.
func (h *Handlers) ApplyRoster(c *fiber.Ctx) error {
	data, err := rosterBytes(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	roster, err := auth.ParseRoster(data)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	}

	// one reconcile at a time so grants and revokes do not interleave
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := auth.ApplyRoster(c.UserContext(), h.store, roster, h.logger)
	if err != nil {
		h.logger.Error("roster apply failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Roster applied",
		"result":  result,
	})
}

func rosterBytes(c *fiber.Ctx) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Failed to open file")
		}
		defer opened.Close()
		return io.ReadAll(opened)
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Roster body is empty")
	}
	return body, nil
}
