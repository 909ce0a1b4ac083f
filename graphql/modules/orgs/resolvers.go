package orgs

import (
	"context"
	"errors"

	"github.com/devexchange/orgs-backend/v1/internal/services"
	"github.com/devexchange/orgs-backend/v1/model"
)

type viewerKey struct{}

// Service is the membership service surface the queries use
type Service interface {
	GetOrg(ctx context.Context, key string) (*model.Org, error)
	ResolveOrgView(ctx context.Context, org *model.Org, viewer *model.User) (interface{}, error)
	ListOrgs(ctx context.Context) ([]model.PublicOrg, error)
}

// WithViewer stores the requesting user in ctx. A nil user means a guest.
func WithViewer(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, viewerKey{}, user)
}

// ViewerFrom returns the requesting user stored by WithViewer
func ViewerFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(viewerKey{}).(*model.User)
	return u
}

// ResolveOrg returns the org view for the viewer in ctx, or nil when the org does not exist
func ResolveOrg(ctx context.Context, svc Service, id string) (interface{}, error) {
	org, err := svc.GetOrg(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return svc.ResolveOrgView(ctx, org, ViewerFrom(ctx))
}

// ResolveOrgs returns the public listing
func ResolveOrgs(ctx context.Context, svc Service) ([]model.PublicOrg, error) {
	return svc.ListOrgs(ctx)
}
