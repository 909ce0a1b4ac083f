package orgs

import (
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// JoinResponse is returned after a join request
type JoinResponse struct {
	Org  interface{} `json:"org"`
	User *model.User `json:"user"`
}

// InviteRequest carries the addresses to invite
type InviteRequest struct {
	Emails []string `json:"emails"`
}

// respondView answers with the org as seen by the acting user
func (h *Handlers) respondView(c *fiber.Ctx, org *model.Org, viewer *model.User) error {
	view, err := h.svc.ResolveOrgView(c.UserContext(), org, viewer)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

// ListOrgs returns the public listing of every org
func (h *Handlers) ListOrgs(c *fiber.Ctx) error {
	orgs, err := h.svc.ListOrgs(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(orgs)
}

// MyOrgs returns the orgs the acting user belongs to
func (h *Handlers) MyOrgs(c *fiber.Ctx) error {
	orgs, err := h.svc.MyOrgs(c.UserContext(), auth.CurrentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(orgs)
}

// MyAdminOrgs returns the orgs the acting user administers
func (h *Handlers) MyAdminOrgs(c *fiber.Ctx) error {
	orgs, err := h.svc.MyAdminOrgs(c.UserContext(), auth.CurrentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(orgs)
}

// CreateOrg creates an org owned by the acting user
func (h *Handlers) CreateOrg(c *fiber.Ctx) error {
	var input model.OrgInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	org, _, err := h.svc.CreateOrg(c.UserContext(), auth.CurrentUser(c), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(org)
}

// GetOrg returns the full org to admins and the public view to everybody else
func (h *Handlers) GetOrg(c *fiber.Ctx) error {
	oc := FromCtx(c)
	return h.respondView(c, oc.Org, oc.User)
}

// UpdateOrg overwrites the descriptive fields of the org
func (h *Handlers) UpdateOrg(c *fiber.Ctx) error {
	oc := FromCtx(c)
	var input model.OrgInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	org, err := h.svc.UpdateOrg(c.UserContext(), oc.Org, input, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, org, oc.User)
}

// DeleteOrg removes the org and every user reference to it
func (h *Handlers) DeleteOrg(c *fiber.Ctx) error {
	oc := FromCtx(c)
	if err := h.svc.DeleteOrg(c.UserContext(), oc.Org, oc.User); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Org deleted"})
}

// RequestJoin records a join request by the acting user
func (h *Handlers) RequestJoin(c *fiber.Ctx) error {
	oc := FromCtx(c)
	org, user, err := h.svc.RequestJoin(c.UserContext(), oc.Org, oc.User)
	if err != nil {
		return h.fail(c, err)
	}

	view, err := h.svc.ResolveOrgView(c.UserContext(), org, user)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(JoinResponse{Org: view, User: user})
}

// AcceptRequest accepts the join request of :userId
func (h *Handlers) AcceptRequest(c *fiber.Ctx) error {
	oc := FromCtx(c)
	target, err := h.targetUser(c)
	if err != nil {
		return h.fail(c, err)
	}

	org, _, err := h.svc.AcceptRequest(c.UserContext(), oc.Org, target, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, org, oc.User)
}

// DeclineRequest declines the join request of :userId
func (h *Handlers) DeclineRequest(c *fiber.Ctx) error {
	oc := FromCtx(c)
	target, err := h.targetUser(c)
	if err != nil {
		return h.fail(c, err)
	}

	org, _, err := h.svc.DeclineRequest(c.UserContext(), oc.Org, target, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, org, oc.User)
}

// RemoveMember removes :userId from the org on behalf of an admin
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	oc := FromCtx(c)
	target, err := h.targetUser(c)
	if err != nil {
		return h.fail(c, err)
	}

	org, err := h.svc.RemoveUserFromOrg(c.UserContext(), oc.Org, target, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, org, oc.User)
}

// LeaveOrg removes the acting user from the org
func (h *Handlers) LeaveOrg(c *fiber.Ctx) error {
	oc := FromCtx(c)
	org, err := h.svc.LeaveOrg(c.UserContext(), oc.Org, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, org, oc.User)
}

// InviteUsers invites the posted email addresses to the org
func (h *Handlers) InviteUsers(c *fiber.Ctx) error {
	oc := FromCtx(c)
	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.svc.InviteUsers(c.UserContext(), oc.Org, req.Emails, oc.User)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}
