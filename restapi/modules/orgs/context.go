// Package orgs implements the REST API handlers for orgs and membership.
package orgs

import (
	"context"
	"errors"

	"github.com/devexchange/orgs-backend/v1/internal/services"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/devexchange/orgs-backend/v1/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const localOrgContext = "orgContext"

// Service is the membership service surface used by the handlers
type Service interface {
	GetOrg(ctx context.Context, key string) (*model.Org, error)
	GetUser(ctx context.Context, key string) (*model.User, error)
	RequestJoin(ctx context.Context, org *model.Org, user *model.User) (*model.Org, *model.User, error)
	AcceptRequest(ctx context.Context, org *model.Org, requesting, acting *model.User) (*model.Org, *model.User, error)
	DeclineRequest(ctx context.Context, org *model.Org, requesting, acting *model.User) (*model.Org, *model.User, error)
	RemoveUserFromOrg(ctx context.Context, org *model.Org, target, acting *model.User) (*model.Org, error)
	LeaveOrg(ctx context.Context, org *model.Org, self *model.User) (*model.Org, error)
	CreateOrg(ctx context.Context, owner *model.User, input model.OrgInput) (*model.Org, *model.User, error)
	UpdateOrg(ctx context.Context, org *model.Org, input model.OrgInput, acting *model.User) (*model.Org, error)
	DeleteOrg(ctx context.Context, org *model.Org, acting *model.User) error
	ResolveOrgView(ctx context.Context, org *model.Org, viewer *model.User) (interface{}, error)
	ListOrgs(ctx context.Context) ([]model.PublicOrg, error)
	MyOrgs(ctx context.Context, user *model.User) ([]model.Org, error)
	MyAdminOrgs(ctx context.Context, user *model.User) ([]model.Org, error)
	InviteUsers(ctx context.Context, org *model.Org, emails []string, acting *model.User) (*services.InviteResult, error)
}

// OrgContext is the org addressed by the :orgId route parameter together with the acting user
type OrgContext struct {
	Org  *model.Org
	User *model.User
}

// FromCtx returns the OrgContext stored by LoadOrg
func FromCtx(c *fiber.Ctx) *OrgContext {
	oc, _ := c.Locals(localOrgContext).(*OrgContext)
	return oc
}

// Handlers serves the org routes
type Handlers struct {
	svc    Service
	logger *zap.Logger
}

// NewHandlers creates the org handlers
func NewHandlers(svc Service, logger *zap.Logger) *Handlers {
	return &Handlers{svc: svc, logger: logger}
}

// LoadOrg resolves :orgId and stores an OrgContext for the downstream handlers.
// It runs after the auth middleware so the acting user, if any, is known.
func (h *Handlers) LoadOrg(c *fiber.Ctx) error {
	id := c.Params("orgId")
	if !util.IsValidKey(id) {
		return message(c, fiber.StatusBadRequest, "Malformed org identifier")
	}

	org, err := h.svc.GetOrg(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}

	c.Locals(localOrgContext, &OrgContext{Org: org, User: auth.CurrentUser(c)})
	return c.Next()
}

// targetUser resolves the :userId route parameter
func (h *Handlers) targetUser(c *fiber.Ctx) (*model.User, error) {
	id := c.Params("userId")
	if !util.IsValidKey(id) {
		return nil, errMalformedUser
	}
	return h.svc.GetUser(c.UserContext(), id)
}

var errMalformedUser = errors.New("malformed user identifier")

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// fail maps service errors onto HTTP statuses
func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	var perr *services.PersistenceError
	switch {
	case errors.Is(err, errMalformedUser):
		return message(c, fiber.StatusBadRequest, "Malformed user identifier")
	case errors.Is(err, services.ErrForbidden):
		return message(c, fiber.StatusForbidden, "User is not authorized")
	case errors.Is(err, services.ErrNotFound):
		return message(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrConflict):
		return message(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &perr):
		h.logger.Error("persistence failure", zap.String("path", c.Path()), zap.Error(err))
		return message(c, fiber.StatusInternalServerError, perr.Err.Error())
	default:
		h.logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return message(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
