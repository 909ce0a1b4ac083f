package orgs

import (
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// Register mounts the org routes on router. Static paths are registered
// before :orgId so "my" and "myadmin" are never taken for an org key.
func Register(router fiber.Router, h *Handlers, mw *auth.Middleware) {
	orgs := router.Group("/orgs")

	orgs.Get("/", h.ListOrgs)
	orgs.Post("/", mw.RequireAuth, h.CreateOrg)
	orgs.Get("/my", mw.RequireAuth, h.MyOrgs)
	orgs.Get("/myadmin", mw.RequireAuth, h.MyAdminOrgs)

	orgs.Get("/:orgId", mw.OptionalAuth, h.LoadOrg, h.GetOrg)
	orgs.Put("/:orgId", mw.RequireAuth, h.LoadOrg, h.UpdateOrg)
	orgs.Delete("/:orgId", mw.RequireAuth, h.LoadOrg, h.DeleteOrg)

	orgs.Post("/:orgId/join", mw.RequireAuth, h.LoadOrg, h.RequestJoin)
	orgs.Post("/:orgId/accept/:userId", mw.RequireAuth, h.LoadOrg, h.AcceptRequest)
	orgs.Post("/:orgId/decline/:userId", mw.RequireAuth, h.LoadOrg, h.DeclineRequest)
	orgs.Delete("/:orgId/members/:userId", mw.RequireAuth, h.LoadOrg, h.RemoveMember)
	orgs.Delete("/:orgId/leave", mw.RequireAuth, h.LoadOrg, h.LeaveOrg)
	orgs.Post("/:orgId/invite", mw.RequireAuth, h.LoadOrg, h.InviteUsers)
}
