package database

import (
	"context"
	"errors"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
)

// ErrNotFound is returned when a document lookup matches nothing
var ErrNotFound = errors.New("document not found")

// OrgRepo persists org documents
type OrgRepo struct {
	db DBConnection
}

// NewOrgRepo creates an org repository on top of the connection
func NewOrgRepo(db DBConnection) *OrgRepo {
	return &OrgRepo{db: db}
}

// GetOrg loads one org by key
func (r *OrgRepo) GetOrg(ctx context.Context, key string) (*model.Org, error) {
	var org model.Org
	found, err := queryOne(ctx, r.db.Database, `
		LET o = DOCUMENT("orgs", @key)
		FILTER o != null
		RETURN o
	`, map[string]interface{}{"key": key}, &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &org, nil
}

// CreateOrg inserts a new org and sets its generated key
func (r *OrgRepo) CreateOrg(ctx context.Context, org *model.Org) error {
	var created model.Org
	found, err := queryOne(ctx, r.db.Database, `
		INSERT @doc INTO orgs
		RETURN NEW
	`, map[string]interface{}{"doc": org}, &created)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("insert returned no document")
	}
	*org = created
	return nil
}

// SaveOrg replaces the stored org with the given document. Last write wins.
func (r *OrgRepo) SaveOrg(ctx context.Context, org *model.Org) error {
	org.Updated = time.Now()
	var saved model.Org
	found, err := queryOne(ctx, r.db.Database, `
		REPLACE @key WITH UNSET(@doc, "_key", "_id", "_rev") IN orgs
		RETURN NEW
	`, map[string]interface{}{"key": org.Key, "doc": org}, &saved)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	*org = saved
	return nil
}

// DeleteOrg removes the org document
func (r *OrgRepo) DeleteOrg(ctx context.Context, key string) error {
	return exec(ctx, r.db.Database, `REMOVE @key IN orgs`, map[string]interface{}{"key": key})
}

// ListPublic returns the restricted view of every org sorted by name
func (r *OrgRepo) ListPublic(ctx context.Context) ([]model.PublicOrg, error) {
	return queryAll[model.PublicOrg](ctx, r.db.Database, `
		FOR o IN orgs
			SORT o.name ASC
			RETURN {
				_key: o._key,
				_id: o._id,
				orgImageURL: o.orgImageURL,
				name: o.name,
				website: o.website,
				capabilities: DOCUMENT("capabilities", o.capabilities || [])
			}
	`, nil)
}

// ResolvePublic returns the restricted view of one org
func (r *OrgRepo) ResolvePublic(ctx context.Context, key string) (*model.PublicOrg, error) {
	var org model.PublicOrg
	found, err := queryOne(ctx, r.db.Database, `
		LET o = DOCUMENT("orgs", @key)
		FILTER o != null
		RETURN {
			_key: o._key,
			_id: o._id,
			orgImageURL: o.orgImageURL,
			name: o.name,
			website: o.website,
			capabilities: DOCUMENT("capabilities", o.capabilities || [])
		}
	`, map[string]interface{}{"key": key}, &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &org, nil
}

// ResolveFull expands every reference field of the org in a single query.
// Members and join requests carry their capabilities and skills expanded too.
func (r *OrgRepo) ResolveFull(ctx context.Context, key string) (*model.FullOrg, error) {
	var org model.FullOrg
	found, err := queryOne(ctx, r.db.Database, `
		LET o = DOCUMENT("orgs", @key)
		FILTER o != null
		LET members = (
			FOR u IN DOCUMENT("users", o.members || [])
				RETURN MERGE(KEEP(u, "_key", "username", "email", "displayName", "firstName", "lastName"), {
					capabilities: DOCUMENT("capabilities", u.capabilities || []),
					capabilitySkills: DOCUMENT("capabilityskills", u.capabilitySkills || [])
				})
		)
		LET joinRequests = (
			FOR u IN DOCUMENT("users", o.joinRequests || [])
				RETURN MERGE(KEEP(u, "_key", "username", "email", "displayName", "firstName", "lastName"), {
					capabilities: DOCUMENT("capabilities", u.capabilities || []),
					capabilitySkills: DOCUMENT("capabilityskills", u.capabilitySkills || [])
				})
		)
		RETURN MERGE(o, {
			owner: DOCUMENT("users", o.owner),
			createdBy: DOCUMENT("users", o.createdBy),
			updatedBy: DOCUMENT("users", o.updatedBy),
			admins: DOCUMENT("users", o.admins || []),
			members: members,
			joinRequests: joinRequests,
			capabilities: DOCUMENT("capabilities", o.capabilities || []),
			capabilitySkills: DOCUMENT("capabilityskills", o.capabilitySkills || []),
			invitedUsers: DOCUMENT("users", o.invitedUsers || []),
			invitedNonUsers: o.invitedNonUsers || []
		})
	`, map[string]interface{}{"key": key}, &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &org, nil
}

// ListByMember returns orgs whose members contain the user key
func (r *OrgRepo) ListByMember(ctx context.Context, userKey string) ([]model.Org, error) {
	return queryAll[model.Org](ctx, r.db.Database, `
		FOR o IN orgs
			FILTER @user IN o.members
			SORT o.name ASC
			RETURN o
	`, map[string]interface{}{"user": userKey})
}

// ListByAdmin returns orgs whose admins contain the user key
func (r *OrgRepo) ListByAdmin(ctx context.Context, userKey string) ([]model.Org, error) {
	return queryAll[model.Org](ctx, r.db.Database, `
		FOR o IN orgs
			FILTER @user IN o.admins
			SORT o.name ASC
			RETURN o
	`, map[string]interface{}{"user": userKey})
}
