// Package graphql assembles the GraphQL schema.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/devexchange/orgs-backend/v1/graphql/modules/orgs"
)

// CreateSchema builds the root query from every module
func CreateSchema(svc orgs.Service) (gql.Schema, error) {
	fields := gql.Fields{}
	for name, field := range orgs.GetQueryFields(svc) {
		fields[name] = field
	}

	return gql.NewSchema(gql.SchemaConfig{
		Query: gql.NewObject(gql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}
