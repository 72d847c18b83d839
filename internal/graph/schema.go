// Package graph binds the resolver rules to the GraphQL schema.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"postboard/internal/observability"

	"github.com/graph-gophers/graphql-go"
	gqlotel "github.com/graph-gophers/graphql-go/trace/otel"
)

//go:embed schema.graphql
var schemaSDL string

// DefaultMaxDepth bounds query nesting when no limit is configured.
const DefaultMaxDepth = 8

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver, maxDepth int) (*graphql.Schema, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	schema, err := graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxDepth),
		graphql.Logger(panicLogger{}),
		graphql.Tracer(&gqlotel.Tracer{Tracer: observability.Tracer}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

// SDL returns the schema definition served by the API.
func SDL() string { return schemaSDL }

type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	observability.Logger.ErrorContext(ctx, "panic during graphql execution",
		slog.String("panic", fmt.Sprint(value)),
	)
}
