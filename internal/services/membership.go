package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/util"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OrgStore persists orgs and assembles their read views
type OrgStore interface {
	GetOrg(ctx context.Context, key string) (*model.Org, error)
	CreateOrg(ctx context.Context, org *model.Org) error
	SaveOrg(ctx context.Context, org *model.Org) error
	DeleteOrg(ctx context.Context, key string) error
	ListPublic(ctx context.Context) ([]model.PublicOrg, error)
	ResolvePublic(ctx context.Context, key string) (*model.PublicOrg, error)
	ResolveFull(ctx context.Context, key string) (*model.FullOrg, error)
	ListByMember(ctx context.Context, userKey string) ([]model.Org, error)
	ListByAdmin(ctx context.Context, userKey string) ([]model.Org, error)
}

// UserStore persists users
type UserStore interface {
	GetUser(ctx context.Context, key string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsers(ctx context.Context, keys []string) ([]model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
}

// ProposalStore reads and updates the proposals of an org
type ProposalStore interface {
	ListByOrg(ctx context.Context, orgKey string) ([]model.ProposalWithOpportunity, error)
	SaveProposal(ctx context.Context, p *model.Proposal) error
}

// Notifier delivers a named message to each recipient
type Notifier interface {
	SendMessages(ctx context.Context, event string, recipients []model.User, data model.MessageData) error
}

// OrgListCache caches the public org listing
type OrgListCache interface {
	GetPublicList(ctx context.Context) ([]model.PublicOrg, bool)
	SetPublicList(ctx context.Context, orgs []model.PublicOrg)
	Invalidate(ctx context.Context)
}

// MembershipService handles org CRUD and the membership workflow.
// It keeps the Org and User reference sets consistent and triggers notifications.
type MembershipService struct {
	orgs      OrgStore
	users     UserStore
	proposals ProposalStore
	notifier  Notifier
	cache     OrgListCache
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a MembershipService
type Option func(*MembershipService)

// WithCache sets the public org list cache
func WithCache(c OrgListCache) Option {
	return func(s *MembershipService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides the time source used for proposal deadlines
func WithClock(now func() time.Time) Option {
	return func(s *MembershipService) {
		s.now = now
	}
}

// NewMembershipService creates the membership service
func NewMembershipService(orgs OrgStore, users UserStore, proposals ProposalStore, notifier Notifier, logger *zap.Logger, opts ...Option) *MembershipService {
	s := &MembershipService{
		orgs:      orgs,
		users:     users,
		proposals: proposals,
		notifier:  notifier,
		cache:     noopCache{},
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAdmin reports whether user may perform administrative actions on org.
func IsAdmin(org *model.Org, user *model.User) bool {
	if org == nil || user == nil {
		return false
	}
	if user.IsSuperuser() {
		return true
	}
	return util.Contains(org.Admins, user.Key)
}

// GetOrg loads an org, translating a missing document to ErrNotFound
func (s *MembershipService) GetOrg(ctx context.Context, key string) (*model.Org, error) {
	if !util.IsValidKey(key) {
		return nil, invalid("malformed org id")
	}
	org, err := s.orgs.GetOrg(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: no org with that identifier has been found", ErrNotFound)
		}
		return nil, persistErr("failed to load org", err)
	}
	return org, nil
}

// GetUser loads a user, translating a missing document to ErrNotFound
func (s *MembershipService) GetUser(ctx context.Context, key string) (*model.User, error) {
	if !util.IsValidKey(key) {
		return nil, invalid("malformed user id")
	}
	user, err := s.users.GetUser(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with that identifier has been found", ErrNotFound)
		}
		return nil, persistErr("failed to load user", err)
	}
	return user, nil
}

// RequestJoin records a pending join request of user on org and tells the org admins.
func (s *MembershipService) RequestJoin(ctx context.Context, org *model.Org, user *model.User) (*model.Org, *model.User, error) {
	if org == nil || user == nil {
		return nil, nil, invalid("org and user are required")
	}
	if util.ContainsAny(user.Key, org.JoinRequests, org.Members, org.Admins) {
		return org, user, fmt.Errorf("%w: a join request or membership already exists", ErrConflict)
	}

	o, u := *org, *user
	o.JoinRequests = util.AddKey(o.JoinRequests, u.Key)
	u.OrgsPending = util.AddKey(u.OrgsPending, o.Key)

	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, nil, persistErr("failed to save org", err)
	}
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return nil, nil, persistErr("failed to save user", err)
	}

	admins, err := s.users.GetUsers(ctx, o.Admins)
	if err != nil {
		s.logger.Warn("could not load org admins for join request notification",
			zap.String("org", o.Key), zap.Error(err))
	} else {
		s.notify(ctx, model.EventJoinRequest, admins, model.MessageData{Org: &o, RequestingUser: &u})
	}

	s.logger.Info("join request submitted", zap.String("org", o.Key), zap.String("user", u.Key))
	return &o, &u, nil
}

// AcceptRequest moves a pending join request into the org members.
// A user without a pending request, or already a member, leaves the org unchanged.
func (s *MembershipService) AcceptRequest(ctx context.Context, org *model.Org, requesting, acting *model.User) (*model.Org, *model.User, error) {
	if !IsAdmin(org, acting) {
		return nil, nil, ErrForbidden
	}
	if requesting == nil {
		return nil, nil, invalid("requesting user is required")
	}
	if !util.Contains(org.JoinRequests, requesting.Key) || util.Contains(org.Members, requesting.Key) {
		return org, requesting, nil
	}

	o, u := *org, *requesting
	o.JoinRequests = util.RemoveKey(o.JoinRequests, u.Key)
	o.Members = util.AddKey(o.Members, u.Key)
	u.OrgsPending = util.RemoveKey(u.OrgsPending, o.Key)
	u.OrgsMember = util.AddKey(u.OrgsMember, o.Key)

	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, nil, persistErr("failed to save org", err)
	}
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return nil, nil, persistErr("failed to save user", err)
	}

	s.notify(ctx, model.EventJoinRequestAccepted, []model.User{u}, model.MessageData{Org: &o})
	s.logger.Info("join request accepted",
		zap.String("org", o.Key), zap.String("user", u.Key), zap.String("by", acting.Key))
	return &o, &u, nil
}

// DeclineRequest drops the join request of requesting from org. Declining twice is harmless.
func (s *MembershipService) DeclineRequest(ctx context.Context, org *model.Org, requesting, acting *model.User) (*model.Org, *model.User, error) {
	if !IsAdmin(org, acting) {
		return nil, nil, ErrForbidden
	}
	if requesting == nil {
		return nil, nil, invalid("requesting user is required")
	}

	o, u := *org, *requesting
	o.JoinRequests = util.RemoveKey(o.JoinRequests, u.Key)
	u.OrgsPending = util.RemoveKey(u.OrgsPending, o.Key)

	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, nil, persistErr("failed to save org", err)
	}
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return nil, nil, persistErr("failed to save user", err)
	}

	s.notify(ctx, model.EventJoinRequestDeclined, []model.User{u}, model.MessageData{Org: &o})
	s.logger.Info("join request declined",
		zap.String("org", o.Key), zap.String("user", u.Key), zap.String("by", acting.Key))
	return &o, &u, nil
}

// RemoveUserFromOrg is the admin call site of RemoveMember
func (s *MembershipService) RemoveUserFromOrg(ctx context.Context, org *model.Org, target, acting *model.User) (*model.Org, error) {
	if !IsAdmin(org, acting) {
		return nil, ErrForbidden
	}
	if target == nil {
		return nil, invalid("user is required")
	}
	return s.RemoveMember(ctx, target, org)
}

// LeaveOrg is the self-service call site of RemoveMember. No admin check applies.
func (s *MembershipService) LeaveOrg(ctx context.Context, org *model.Org, self *model.User) (*model.Org, error) {
	if org == nil || self == nil {
		return nil, invalid("org and user are required")
	}
	return s.RemoveMember(ctx, self, org)
}

// RemoveMember takes user out of org in three ordered steps: the user side is
// saved first, then the org's open proposals are cleaned, and only then is the
// org saved. A failure stops the sequence; earlier writes are not rolled back.
func (s *MembershipService) RemoveMember(ctx context.Context, user *model.User, org *model.Org) (*model.Org, error) {
	if org == nil || user == nil {
		return nil, invalid("org and user are required")
	}

	u := *user
	u.OrgsAdmin = util.RemoveKey(u.OrgsAdmin, org.Key)
	u.OrgsMember = util.RemoveKey(u.OrgsMember, org.Key)
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return nil, persistErr("failed to save user", err)
	}

	if _, err := s.CleanupProposals(ctx, &u, org); err != nil {
		return nil, err
	}

	o := *org
	o.Members = util.RemoveKey(o.Members, u.Key)
	o.Admins = util.RemoveKey(o.Admins, u.Key)
	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, persistErr("failed to save org", err)
	}

	s.logger.Info("member removed from org", zap.String("org", o.Key), zap.String("user", u.Key))
	return &o, nil
}

// CleanupProposals strips user from the phase teams of every open sprint-with-us
// proposal of org and sets changed proposals back to Draft. Closed or other
// proposals are left alone. A failed proposal save is logged and skipped; only a
// failure to list the proposals is returned. It returns the number of proposals saved.
func (s *MembershipService) CleanupProposals(ctx context.Context, user *model.User, org *model.Org) (int, error) {
	list, err := s.proposals.ListByOrg(ctx, org.Key)
	if err != nil {
		return 0, persistErr("failed to list org proposals", err)
	}

	now := s.now()
	updated := 0
	for i := range list {
		p := list[i].Proposal
		if !list[i].Opportunity.IsOpenSprint(now) {
			continue
		}

		before := p.TeamSize()
		p.Phases.Inception.Team = util.RemoveKey(p.Phases.Inception.Team, user.Key)
		p.Phases.Proto.Team = util.RemoveKey(p.Phases.Proto.Team, user.Key)
		p.Phases.Implementation.Team = util.RemoveKey(p.Phases.Implementation.Team, user.Key)
		if p.TeamSize() == before {
			continue
		}

		p.Status = model.ProposalDraft
		if err := s.proposals.SaveProposal(ctx, &p); err != nil {
			s.logger.Error("failed to save proposal during member removal",
				zap.String("proposal", p.Key), zap.String("org", org.Key), zap.Error(err))
			continue
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("proposals reset to draft",
			zap.String("org", org.Key), zap.String("user", user.Key), zap.Int("count", updated))
	}
	return updated, nil
}

// CreateOrg creates an org owned by owner and links it back to the owner.
func (s *MembershipService) CreateOrg(ctx context.Context, owner *model.User, input model.OrgInput) (*model.Org, *model.User, error) {
	if owner == nil {
		return nil, nil, invalid("owner is required")
	}
	input.Name = util.NormalizeOrgName(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, invalid(err.Error())
	}

	org := model.NewOrg(owner.Key)
	input.Apply(org)
	if err := s.orgs.CreateOrg(ctx, org); err != nil {
		return nil, nil, persistErr("failed to create org", err)
	}

	u := *owner
	u.OrgsAdmin = util.AddKey(u.OrgsAdmin, org.Key)
	u.OrgsMember = util.AddKey(u.OrgsMember, org.Key)
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return nil, nil, persistErr("failed to save user", err)
	}

	s.cache.Invalidate(ctx)
	s.logger.Info("org created", zap.String("org", org.Key), zap.String("owner", u.Key))
	return org, &u, nil
}

// UpdateOrg overwrites the descriptive fields of org. Membership sets are not writable here.
func (s *MembershipService) UpdateOrg(ctx context.Context, org *model.Org, input model.OrgInput, acting *model.User) (*model.Org, error) {
	if !IsAdmin(org, acting) {
		return nil, ErrForbidden
	}
	input.Name = util.NormalizeOrgName(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, invalid(err.Error())
	}

	o := *org
	input.Apply(&o)
	o.UpdatedBy = acting.Key
	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, persistErr("failed to save org", err)
	}

	s.cache.Invalidate(ctx)
	return &o, nil
}

// DeleteOrg unlinks org from every referenced user and then deletes it.
func (s *MembershipService) DeleteOrg(ctx context.Context, org *model.Org, acting *model.User) error {
	if !IsAdmin(org, acting) {
		return ErrForbidden
	}

	var keys []string
	keys = append(keys, org.Owner)
	keys = append(keys, org.Admins...)
	keys = append(keys, org.Members...)
	keys = append(keys, org.JoinRequests...)
	users, err := s.users.GetUsers(ctx, util.Unique(keys))
	if err != nil {
		return persistErr("failed to load org users", err)
	}

	for i := range users {
		u := users[i]
		if !util.ContainsAny(org.Key, u.OrgsAdmin, u.OrgsMember, u.OrgsPending) {
			continue
		}
		u.OrgsAdmin = util.RemoveKey(u.OrgsAdmin, org.Key)
		u.OrgsMember = util.RemoveKey(u.OrgsMember, org.Key)
		u.OrgsPending = util.RemoveKey(u.OrgsPending, org.Key)
		if err := s.users.SaveUser(ctx, &u); err != nil {
			return persistErr("failed to save user", err)
		}
	}

	if err := s.orgs.DeleteOrg(ctx, org.Key); err != nil {
		return persistErr("failed to delete org", err)
	}

	s.cache.Invalidate(ctx)
	s.logger.Info("org deleted", zap.String("org", org.Key), zap.String("by", acting.Key))
	return nil
}

// ResolveOrgView returns the fully expanded org for admins and the public
// whitelist view for everybody else, guests included.
func (s *MembershipService) ResolveOrgView(ctx context.Context, org *model.Org, viewer *model.User) (interface{}, error) {
	if org == nil {
		return nil, invalid("org is required")
	}
	if IsAdmin(org, viewer) {
		full, err := s.orgs.ResolveFull(ctx, org.Key)
		if err != nil {
			return nil, persistErr("failed to resolve org", err)
		}
		return full, nil
	}
	public, err := s.orgs.ResolvePublic(ctx, org.Key)
	if err != nil {
		return nil, persistErr("failed to resolve org", err)
	}
	return public, nil
}

// ListOrgs returns the public view of every org
func (s *MembershipService) ListOrgs(ctx context.Context) ([]model.PublicOrg, error) {
	if orgs, ok := s.cache.GetPublicList(ctx); ok {
		return orgs, nil
	}
	orgs, err := s.orgs.ListPublic(ctx)
	if err != nil {
		return nil, persistErr("failed to list orgs", err)
	}
	s.cache.SetPublicList(ctx, orgs)
	return orgs, nil
}

// MyOrgs returns the orgs user is a member of
func (s *MembershipService) MyOrgs(ctx context.Context, user *model.User) ([]model.Org, error) {
	if user == nil {
		return nil, invalid("user is required")
	}
	orgs, err := s.orgs.ListByMember(ctx, user.Key)
	if err != nil {
		return nil, persistErr("failed to list orgs", err)
	}
	return orgs, nil
}

// MyAdminOrgs returns the orgs user administers
func (s *MembershipService) MyAdminOrgs(ctx context.Context, user *model.User) ([]model.Org, error) {
	if user == nil {
		return nil, invalid("user is required")
	}
	orgs, err := s.orgs.ListByAdmin(ctx, user.Key)
	if err != nil {
		return nil, persistErr("failed to list orgs", err)
	}
	return orgs, nil
}

func (s *MembershipService) notify(ctx context.Context, event string, recipients []model.User, data model.MessageData) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	if err := s.notifier.SendMessages(ctx, event, recipients, data); err != nil {
		s.logger.Error("notification dispatch failed",
			zap.String("event", event), zap.Int("recipients", len(recipients)), zap.Error(err))
	}
}

type noopCache struct{}

func (noopCache) GetPublicList(context.Context) ([]model.PublicOrg, bool) { return nil, false }
func (noopCache) SetPublicList(context.Context, []model.PublicOrg)        {}
func (noopCache) Invalidate(context.Context)                              {}
