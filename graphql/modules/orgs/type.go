// Package orgs defines the GraphQL types and queries for orgs.
package orgs

import (
	"github.com/graphql-go/graphql"
)

// resolveKey maps the GraphQL "key" field onto the "_key" json field of the source
func resolveKey(p graphql.ResolveParams) (interface{}, error) {
	p.Info.FieldName = "_key"
	return graphql.DefaultResolveFn(p)
}

func keyField() *graphql.Field {
	return &graphql.Field{Type: graphql.String, Resolve: resolveKey}
}

// UserType is a user as referenced by an org
var UserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"key":         keyField(),
		"username":    &graphql.Field{Type: graphql.String},
		"email":       &graphql.Field{Type: graphql.String},
		"displayName": &graphql.Field{Type: graphql.String},
		"firstName":   &graphql.Field{Type: graphql.String},
		"lastName":    &graphql.Field{Type: graphql.String},
	},
})

// CapabilityType is a capability with its code
var CapabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Capability",
	Fields: graphql.Fields{
		"key":  keyField(),
		"name": &graphql.Field{Type: graphql.String},
		"code": &graphql.Field{Type: graphql.String},
	},
})

// CapabilitySkillType is a single skill
var CapabilitySkillType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CapabilitySkill",
	Fields: graphql.Fields{
		"key":  keyField(),
		"name": &graphql.Field{Type: graphql.String},
		"code": &graphql.Field{Type: graphql.String},
	},
})

// MemberType is a member or join requester with capabilities expanded
var MemberType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Member",
	Fields: graphql.Fields{
		"key":              keyField(),
		"username":         &graphql.Field{Type: graphql.String},
		"email":            &graphql.Field{Type: graphql.String},
		"displayName":      &graphql.Field{Type: graphql.String},
		"firstName":        &graphql.Field{Type: graphql.String},
		"lastName":         &graphql.Field{Type: graphql.String},
		"capabilities":     &graphql.Field{Type: graphql.NewList(CapabilityType)},
		"capabilitySkills": &graphql.Field{Type: graphql.NewList(CapabilitySkillType)},
	},
})

// OrgType serves both org views. Fields missing from the public view resolve to null.
var OrgType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Org",
	Fields: graphql.Fields{
		"key":              keyField(),
		"name":             &graphql.Field{Type: graphql.String},
		"dba":              &graphql.Field{Type: graphql.String},
		"website":          &graphql.Field{Type: graphql.String},
		"orgImageURL":      &graphql.Field{Type: graphql.String},
		"description":      &graphql.Field{Type: graphql.String},
		"address":          &graphql.Field{Type: graphql.String},
		"city":             &graphql.Field{Type: graphql.String},
		"province":         &graphql.Field{Type: graphql.String},
		"postalcode":       &graphql.Field{Type: graphql.String},
		"contactName":      &graphql.Field{Type: graphql.String},
		"contactEmail":     &graphql.Field{Type: graphql.String},
		"contactPhone":     &graphql.Field{Type: graphql.String},
		"businessNumber":   &graphql.Field{Type: graphql.String},
		"isAcceptedTerms":  &graphql.Field{Type: graphql.Boolean},
		"owner":            &graphql.Field{Type: UserType},
		"createdBy":        &graphql.Field{Type: UserType},
		"updatedBy":        &graphql.Field{Type: UserType},
		"admins":           &graphql.Field{Type: graphql.NewList(UserType)},
		"members":          &graphql.Field{Type: graphql.NewList(MemberType)},
		"joinRequests":     &graphql.Field{Type: graphql.NewList(MemberType)},
		"capabilities":     &graphql.Field{Type: graphql.NewList(CapabilityType)},
		"capabilitySkills": &graphql.Field{Type: graphql.NewList(CapabilitySkillType)},
		"invitedUsers":     &graphql.Field{Type: graphql.NewList(UserType)},
		"invitedNonUsers":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"created":          &graphql.Field{Type: graphql.DateTime},
		"updated":          &graphql.Field{Type: graphql.DateTime},
	},
})
