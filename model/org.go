// Package model defines the data structures for organization management.
package model

import "time"

// Org represents an organization in the system.
// Reference fields hold document keys only, never expanded documents.
type Org struct {
	Key             string    `json:"_key,omitempty"`
	ID              string    `json:"_id,omitempty"`
	Rev             string    `json:"_rev,omitempty"`
	Name            string    `json:"name"`
	Dba             string    `json:"dba,omitempty"`
	Website         string    `json:"website,omitempty"`
	OrgImageURL     string    `json:"orgImageURL,omitempty"`
	Description     string    `json:"description,omitempty"`
	Address         string    `json:"address,omitempty"`
	City            string    `json:"city,omitempty"`
	Province        string    `json:"province,omitempty"`
	PostalCode      string    `json:"postalcode,omitempty"`
	ContactName     string    `json:"contactName,omitempty"`
	ContactEmail    string    `json:"contactEmail,omitempty"`
	ContactPhone    string    `json:"contactPhone,omitempty"`
	BusinessNumber  string    `json:"businessNumber,omitempty"`
	IsAcceptedTerms bool      `json:"isAcceptedTerms"`
	Owner           string    `json:"owner"`
	Admins          []string  `json:"admins"`
	Members         []string  `json:"members"`
	JoinRequests    []string  `json:"joinRequests"`
	Capabilities    []string  `json:"capabilities"`
	CapabilitySkill []string  `json:"capabilitySkills"`
	InvitedUsers    []string  `json:"invitedUsers"`
	InvitedNonUsers []string  `json:"invitedNonUsers"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	UpdatedBy       string    `json:"updatedBy,omitempty"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
}

// NewOrg creates an org owned by ownerKey. The owner is seeded as admin and member.
func NewOrg(ownerKey string) *Org {
	now := time.Now()
	return &Org{
		Owner:           ownerKey,
		Admins:          []string{ownerKey},
		Members:         []string{ownerKey},
		JoinRequests:    []string{},
		Capabilities:    []string{},
		CapabilitySkill: []string{},
		InvitedUsers:    []string{},
		InvitedNonUsers: []string{},
		CreatedBy:       ownerKey,
		UpdatedBy:       ownerKey,
		Created:         now,
		Updated:         now,
	}
}

// OrgInput carries the writable, non-membership fields of an org.
type OrgInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Dba             string   `json:"dba,omitempty" validate:"max=200"`
	Website         string   `json:"website,omitempty" validate:"omitempty,url"`
	OrgImageURL     string   `json:"orgImageURL,omitempty"`
	Description     string   `json:"description,omitempty"`
	Address         string   `json:"address,omitempty"`
	City            string   `json:"city,omitempty"`
	Province        string   `json:"province,omitempty"`
	PostalCode      string   `json:"postalcode,omitempty"`
	ContactName     string   `json:"contactName,omitempty"`
	ContactEmail    string   `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone    string   `json:"contactPhone,omitempty"`
	BusinessNumber  string   `json:"businessNumber,omitempty"`
	IsAcceptedTerms bool     `json:"isAcceptedTerms"`
	Capabilities    []string `json:"capabilities,omitempty"`
	CapabilitySkill []string `json:"capabilitySkills,omitempty"`
}

// Apply copies the input fields onto the org.
func (in OrgInput) Apply(o *Org) {
	o.Name = in.Name
	o.Dba = in.Dba
	o.Website = in.Website
	o.OrgImageURL = in.OrgImageURL
	o.Description = in.Description
	o.Address = in.Address
	o.City = in.City
	o.Province = in.Province
	o.PostalCode = in.PostalCode
	o.ContactName = in.ContactName
	o.ContactEmail = in.ContactEmail
	o.ContactPhone = in.ContactPhone
	o.BusinessNumber = in.BusinessNumber
	o.IsAcceptedTerms = in.IsAcceptedTerms
	if in.Capabilities != nil {
		o.Capabilities = in.Capabilities
	}
	if in.CapabilitySkill != nil {
		o.CapabilitySkill = in.CapabilitySkill
	}
}

// MemberView is a user with capabilities and skills expanded
type MemberView struct {
	Key             string            `json:"_key"`
	Username        string            `json:"username"`
	Email           string            `json:"email"`
	DisplayName     string            `json:"displayName,omitempty"`
	FirstName       string            `json:"firstName,omitempty"`
	LastName        string            `json:"lastName,omitempty"`
	Capabilities    []Capability      `json:"capabilities"`
	CapabilitySkill []CapabilitySkill `json:"capabilitySkills"`
}

// FullOrg is an org with every reference field expanded, returned to admins.
type FullOrg struct {
	Key             string            `json:"_key"`
	ID              string            `json:"_id,omitempty"`
	Name            string            `json:"name"`
	Dba             string            `json:"dba,omitempty"`
	Website         string            `json:"website,omitempty"`
	OrgImageURL     string            `json:"orgImageURL,omitempty"`
	Description     string            `json:"description,omitempty"`
	Address         string            `json:"address,omitempty"`
	City            string            `json:"city,omitempty"`
	Province        string            `json:"province,omitempty"`
	PostalCode      string            `json:"postalcode,omitempty"`
	ContactName     string            `json:"contactName,omitempty"`
	ContactEmail    string            `json:"contactEmail,omitempty"`
	ContactPhone    string            `json:"contactPhone,omitempty"`
	BusinessNumber  string            `json:"businessNumber,omitempty"`
	IsAcceptedTerms bool              `json:"isAcceptedTerms"`
	Owner           *User             `json:"owner"`
	CreatedBy       *User             `json:"createdBy"`
	UpdatedBy       *User             `json:"updatedBy"`
	Admins          []User            `json:"admins"`
	Members         []MemberView      `json:"members"`
	JoinRequests    []MemberView      `json:"joinRequests"`
	Capabilities    []Capability      `json:"capabilities"`
	CapabilitySkill []CapabilitySkill `json:"capabilitySkills"`
	InvitedUsers    []User            `json:"invitedUsers"`
	InvitedNonUsers []string          `json:"invitedNonUsers"`
	Created         time.Time         `json:"created"`
	Updated         time.Time         `json:"updated"`
}

// PublicOrg is the restricted org view for guests and non-admins.
type PublicOrg struct {
	Key          string       `json:"_key"`
	ID           string       `json:"_id,omitempty"`
	OrgImageURL  string       `json:"orgImageURL,omitempty"`
	Name         string       `json:"name"`
	Website      string       `json:"website,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}
