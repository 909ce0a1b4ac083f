package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionResponse is the session info returned to the frontend
type SessionResponse struct {
	Key         string   `json:"_key"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
	OrgsAdmin   []string `json:"orgsAdmin"`
	OrgsMember  []string `json:"orgsMember"`
	OrgsPending []string `json:"orgsPending"`
}

// Me returns the authenticated user with their org references. Use after RequireAuth.
func Me(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return messageJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(SessionResponse{
		Key:         user.Key,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.Name(),
		Roles:       user.Roles,
		OrgsAdmin:   user.OrgsAdmin,
		OrgsMember:  user.OrgsMember,
		OrgsPending: user.OrgsPending,
	})
}

// Logout clears the auth cookie
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		Path:     "/",
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
