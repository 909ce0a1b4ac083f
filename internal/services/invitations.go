package services

import (
	"context"
	"errors"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/util"
	"go.uber.org/zap"
)

// InviteResult reports what an invitation round did
type InviteResult struct {
	Org      *model.Org `json:"org"`
	Invited  []string   `json:"invited"`
	NonUsers []string   `json:"nonUsers"`
	Skipped  []string   `json:"skipped"`
}

// InviteUsers invites people to org by email. Known users are recorded in
// invitedUsers, unknown addresses in invitedNonUsers. Current members, admins
// and repeat invitations are skipped.
func (s *MembershipService) InviteUsers(ctx context.Context, org *model.Org, emails []string, acting *model.User) (*InviteResult, error) {
	if !IsAdmin(org, acting) {
		return nil, ErrForbidden
	}

	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, util.NormalizeEmail(e))
	}
	normalized = util.Unique(normalized)
	if len(normalized) == 0 {
		return nil, invalid("at least one email is required")
	}

	o := *org
	result := &InviteResult{Invited: []string{}, NonUsers: []string{}, Skipped: []string{}}
	var users []model.User
	var nonUsers []model.User

	for _, email := range normalized {
		if err := s.validate.Var(email, "email"); err != nil {
			result.Skipped = append(result.Skipped, email)
			continue
		}

		user, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case errors.Is(err, database.ErrNotFound):
			if util.Contains(o.InvitedNonUsers, email) {
				result.Skipped = append(result.Skipped, email)
				continue
			}
			o.InvitedNonUsers = util.AddKey(o.InvitedNonUsers, email)
			result.NonUsers = append(result.NonUsers, email)
			nonUsers = append(nonUsers, model.User{Email: email})
		case err != nil:
			return nil, persistErr("failed to look up user", err)
		default:
			if util.ContainsAny(user.Key, o.Members, o.Admins, o.InvitedUsers) {
				result.Skipped = append(result.Skipped, email)
				continue
			}
			o.InvitedUsers = util.AddKey(o.InvitedUsers, user.Key)
			result.Invited = append(result.Invited, email)
			users = append(users, *user)
		}
	}

	if len(users) == 0 && len(nonUsers) == 0 {
		result.Org = org
		return result, nil
	}

	o.UpdatedBy = acting.Key
	if err := s.orgs.SaveOrg(ctx, &o); err != nil {
		return nil, persistErr("failed to save org", err)
	}
	result.Org = &o

	data := model.MessageData{Org: &o, InvitingUser: acting}
	s.notify(ctx, model.EventInvitation, users, data)
	s.notify(ctx, model.EventInvitationNonUser, nonUsers, data)

	s.logger.Info("org invitations sent", zap.String("org", o.Key),
		zap.Int("users", len(users)), zap.Int("nonUsers", len(nonUsers)))
	return result, nil
}
