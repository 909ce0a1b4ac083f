package restapi

import (
	"github.com/devexchange/orgs-backend/v1/restapi/modules/admin"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/orgs"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint under /api/v1
func SetupRoutes(app *fiber.App, schema graphql.Schema, orgHandlers *orgs.Handlers, adminHandlers *admin.Handlers, mw *auth.Middleware, logger *zap.Logger) {
	api := app.Group("/api/v1")

	api.Post("/graphql", mw.OptionalAuth, GraphQLHandler(schema))

	authGroup := api.Group("/auth")
	authGroup.Get("/me", mw.RequireAuth, auth.Me)
	authGroup.Post("/logout", auth.Logout)

	orgs.Register(api, orgHandlers, mw)
	admin.Register(api, adminHandlers, mw)

	logger.Info("API routes initialized")
}
