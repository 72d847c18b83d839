package server

import (
	"postboard/internal/models"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// graphqlRequest is the body of a GraphQL call, over HTTP or inside a
// subscribe message.
type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQL handles POST /graphql. Field errors are reported in the response
// body with status 200.
func (s *Server) GraphQL(c *fiber.Ctx) error {
	var req graphqlRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Query is required"))
	}

	resp := s.schema.Exec(c.UserContext(), req.Query, req.OperationName, req.Variables)
	return c.JSON(resp)
}

// Playground serves the GraphQL playground page on GET /graphql.
func (s *Server) Playground() fiber.Handler {
	return adaptor.HTTPHandlerFunc(playground.Handler("postboard", graphqlPath))
}
