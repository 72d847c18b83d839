// Package service implements the query and mutation rules behind the GraphQL
// and REST surfaces: input validation, ownership checks, store writes,
// hydration and change publication.
package service

import (
	"context"
	"strings"

	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/observability"
)

// observe opens a service span and counts the operation by outcome.
// The returned func must be called with the operation's final error.
func observe(ctx context.Context, service, method string) (context.Context, func(error)) {
	ctx, span := observability.StartServiceSpan(ctx, service, method)
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = strings.ToLower(models.AsAppError(err).Code)
		}
		observability.ResolverOperations.WithLabelValues(service+"."+method, outcome).Inc()
		observability.EndSpan(span, err)
	}
}

// publish hands ev to the broker. A nil publisher drops the event.
func publish(ctx context.Context, events notifications.Publisher, ev notifications.Event) {
	if events == nil {
		return
	}
	events.Publish(ctx, ev)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// normalizeEmail matches the form verified identities carry.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func errUnauthorizedAction() *models.AppError {
	return models.NewForbiddenError("Unauthorized action")
}
