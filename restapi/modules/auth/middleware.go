package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// CookieName carries the session token
	CookieName = "auth_token"

	localUser = "user"
)

var errInvalidToken = errors.New("invalid or expired session")

// UserLookup finds the user named by a token subject
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Middleware authenticates requests and stores the acting user in Locals
type Middleware struct {
	tokens *Tokens
	users  UserLookup
	logger *zap.Logger
}

// NewMiddleware creates the auth middleware
func NewMiddleware(tokens *Tokens, users UserLookup, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

// CurrentUser returns the authenticated user, or nil for guests
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(localUser).(*model.User)
	return u
}

func tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (m *Middleware) resolve(c *fiber.Ctx) (*model.User, error) {
	token := tokenFrom(c)
	if token == "" {
		return nil, nil
	}

	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	user, err := m.users.GetUserByUsername(c.UserContext(), claims.Subject)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func messageJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// RequireAuth blocks guests and requests whose token names an unknown user
func (m *Middleware) RequireAuth(c *fiber.Ctx) error {
	user, err := m.resolve(c)
	switch {
	case errors.Is(err, errInvalidToken):
		return messageJSON(c, fiber.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, database.ErrNotFound), err == nil && user == nil:
		return messageJSON(c, fiber.StatusUnauthorized, "Authentication required")
	case err != nil:
		m.logger.Error("failed to load session user", zap.Error(err))
		return messageJSON(c, fiber.StatusInternalServerError, "Failed to load session user")
	}

	c.Locals(localUser, user)
	return c.Next()
}

// OptionalAuth identifies the user if a token is present but does not block guests.
// Invalid or expired tokens are treated as guest access.
func (m *Middleware) OptionalAuth(c *fiber.Ctx) error {
	user, err := m.resolve(c)
	if err != nil {
		m.logger.Debug("treating request as guest", zap.Error(err))
		return c.Next()
	}
	if user != nil {
		c.Locals(localUser, user)
	}
	return c.Next()
}

// RequireSuperuser allows only users holding the platform admin role. Use after RequireAuth.
func RequireSuperuser(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return messageJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	if !user.IsSuperuser() {
		return messageJSON(c, fiber.StatusForbidden, "Insufficient permissions")
	}
	return c.Next()
}
