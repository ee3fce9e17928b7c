package api

import (
	"context"

	"github.com/zirakhr/zirak/internal/assessment"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (assessment.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(assessment.Principal)
	return p, ok
}

// ContextWithPrincipal attaches the caller to ctx.
func ContextWithPrincipal(ctx context.Context, p assessment.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
