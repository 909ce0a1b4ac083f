package database

import (
	"context"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
)

// UserRepo persists user documents
type UserRepo struct {
	db DBConnection
}

// NewUserRepo creates a user repository on top of the connection
func NewUserRepo(db DBConnection) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser loads one user by key
func (r *UserRepo) GetUser(ctx context.Context, key string) (*model.User, error) {
	var user model.User
	found, err := queryOne(ctx, r.db.Database, `
		LET u = DOCUMENT("users", @key)
		FILTER u != null
		RETURN u
	`, map[string]interface{}{"key": key}, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	found, err := queryOne(ctx, r.db.Database, `
		FOR u IN users
			FILTER u.username == @username
			LIMIT 1
			RETURN u
	`, map[string]interface{}{"username": username}, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, case insensitive
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	found, err := queryOne(ctx, r.db.Database, `
		FOR u IN users
			FILTER LOWER(u.email) == LOWER(@email)
			LIMIT 1
			RETURN u
	`, map[string]interface{}{"email": email}, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUsers loads the users with the given keys, skipping unknown keys
func (r *UserRepo) GetUsers(ctx context.Context, keys []string) ([]model.User, error) {
	if len(keys) == 0 {
		return []model.User{}, nil
	}
	return queryAll[model.User](ctx, r.db.Database, `
		FOR u IN DOCUMENT("users", @keys)
			RETURN u
	`, map[string]interface{}{"keys": keys})
}

// saveUserRefsQuery writes only the org reference sets. The rest of the user
// document belongs to the account system and is left as stored.
const saveUserRefsQuery = `
	UPDATE @key WITH {
		orgsAdmin: @orgsAdmin,
		orgsMember: @orgsMember,
		orgsPending: @orgsPending,
		updated_at: @now
	} IN users
	RETURN NEW
`

func saveUserRefsBindVars(user *model.User, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"key":         user.Key,
		"orgsAdmin":   orEmpty(user.OrgsAdmin),
		"orgsMember":  orEmpty(user.OrgsMember),
		"orgsPending": orEmpty(user.OrgsPending),
		"now":         now,
	}
}

func orEmpty(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

// SaveUser updates the org reference sets of the stored user. Last write wins.
func (r *UserRepo) SaveUser(ctx context.Context, user *model.User) error {
	var saved model.User
	found, err := queryOne(ctx, r.db.Database, saveUserRefsQuery, saveUserRefsBindVars(user, time.Now()), &saved)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	*user = saved
	return nil
}

// SetRoles overwrites the roles of the user with the given username
func (r *UserRepo) SetRoles(ctx context.Context, username string, roles []string) (bool, error) {
	var key string
	return queryOne(ctx, r.db.Database, `
		FOR u IN users
			FILTER u.username == @username
			UPDATE u WITH { roles: @roles, updated_at: @now } IN users
			RETURN NEW._key
	`, map[string]interface{}{
		"username": username,
		"roles":    roles,
		"now":      time.Now(),
	}, &key)
}

// ListSuperusers returns every user holding the platform admin role
func (r *UserRepo) ListSuperusers(ctx context.Context) ([]model.User, error) {
	return queryAll[model.User](ctx, r.db.Database, `
		FOR u IN users
			FILTER @role IN u.roles
			RETURN u
	`, map[string]interface{}{"role": model.RoleAdmin})
}
