package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/util"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Roster lists the platform superusers
type Roster struct {
	Superusers []RosterUser `yaml:"superusers"`
}

// RosterUser names one superuser
type RosterUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email,omitempty"`
}

// RosterResult tracks the outcome of applying a roster
type RosterResult struct {
	Granted  []string `json:"granted"`
	Revoked  []string `json:"revoked"`
	NotFound []string `json:"notFound"`
	Errors   []string `json:"errors"`
}

// RosterStore is the user store surface the roster needs
type RosterStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListSuperusers(ctx context.Context) ([]model.User, error)
	SetRoles(ctx context.Context, username string, roles []string) (bool, error)
}

// ParseRoster decodes and validates roster YAML
func ParseRoster(data []byte) (*Roster, error) {
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool)
	for _, u := range roster.Superusers {
		if u.Username == "" {
			return nil, fmt.Errorf("invalid roster: username is required")
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("invalid roster: duplicate username: %s", u.Username)
		}
		seen[u.Username] = true
	}
	return &roster, nil
}

// LoadRoster reads the roster file at path
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data)
}

// ApplyRoster grants the admin role to every listed user and revokes it from
// current superusers who are not listed. Users are never created.
func ApplyRoster(ctx context.Context, store RosterStore, roster *Roster, logger *zap.Logger) (*RosterResult, error) {
	result := &RosterResult{Granted: []string{}, Revoked: []string{}, NotFound: []string{}, Errors: []string{}}

	current, err := store.ListSuperusers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch superusers: %w", err)
	}

	listed := make(map[string]bool)
	for _, ru := range roster.Superusers {
		listed[ru.Username] = true

		user, err := store.GetUserByUsername(ctx, ru.Username)
		if errors.Is(err, database.ErrNotFound) {
			result.NotFound = append(result.NotFound, ru.Username)
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to load %s: %v", ru.Username, err))
			continue
		}
		if user.IsSuperuser() {
			continue
		}
		if _, err := store.SetRoles(ctx, user.Username, util.AddKey(user.Roles, model.RoleAdmin)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to grant %s: %v", ru.Username, err))
			continue
		}
		result.Granted = append(result.Granted, ru.Username)
	}

	for _, user := range current {
		if listed[user.Username] {
			continue
		}
		if _, err := store.SetRoles(ctx, user.Username, util.RemoveKey(user.Roles, model.RoleAdmin)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to revoke %s: %v", user.Username, err))
			continue
		}
		result.Revoked = append(result.Revoked, user.Username)
	}

	logger.Info("superuser roster applied",
		zap.Strings("granted", result.Granted), zap.Strings("revoked", result.Revoked),
		zap.Strings("notFound", result.NotFound), zap.Int("errors", len(result.Errors)))
	return result, nil
}
