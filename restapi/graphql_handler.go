// Package restapi mounts the REST routes and the GraphQL endpoint.
package restapi

import (
	"github.com/devexchange/orgs-backend/v1/graphql/modules/orgs"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// GraphQLHandler returns a Fiber handler for GraphQL requests. Use after OptionalAuth
// so org queries resolve the admin view for org admins.
func GraphQLHandler(schema graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params struct {
			Query         string                 `json:"query"`
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}

		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []map[string]interface{}{{"message": "Invalid request body"}},
			})
		}

		opName := params.OperationName
		if opName == "" {
			opName = "-"
		}
		c.Locals("graphql_op", opName)

		ctx := orgs.WithViewer(c.UserContext(), auth.CurrentUser(c))

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  params.Query,
			VariableValues: params.Variables,
			OperationName:  params.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
