// Package model provides data models for the org service.
package model

import (
	"time"
)

// RoleAdmin is the platform-wide superuser role
const RoleAdmin = "admin"

// User represents a user in the system
type User struct {
	Key             string    `json:"_key,omitempty"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName,omitempty"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	Roles           []string  `json:"roles"`
	OrgsAdmin       []string  `json:"orgsAdmin"`
	OrgsMember      []string  `json:"orgsMember"`
	OrgsPending     []string  `json:"orgsPending"`
	Capabilities    []string  `json:"capabilities,omitempty"`
	CapabilitySkill []string  `json:"capabilitySkills,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUser creates a new user with default values
func NewUser(username, email string) *User {
	now := time.Now()
	return &User{
		Username:    username,
		Email:       email,
		Roles:       []string{"user"},
		OrgsAdmin:   []string{},
		OrgsMember:  []string{},
		OrgsPending: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasRole checks if the user carries the given role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSuperuser returns true if user holds the platform admin role
func (u *User) IsSuperuser() bool {
	return u.HasRole(RoleAdmin)
}

// Name returns the best display name available
func (u *User) Name() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.FirstName != "" || u.LastName != "":
		return u.FirstName + " " + u.LastName
	default:
		return u.Username
	}
}
