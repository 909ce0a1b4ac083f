package orgs

import (
	"context"

	"github.com/graphql-go/graphql"
)

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

// GetQueryFields returns the org queries to be mounted in the root schema.
func GetQueryFields(svc Service) graphql.Fields {
	return graphql.Fields{
		"org": &graphql.Field{
			Type: OrgType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := p.Args["id"].(string)
				return ResolveOrg(contextOf(p), svc, id)
			},
		},
		"orgs": &graphql.Field{
			Type: graphql.NewList(OrgType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveOrgs(contextOf(p), svc)
			},
		},
	}
}
