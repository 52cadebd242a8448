package shared

import (
	"context"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Principal describes the authenticated caller for the current request.
type Principal struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	Role          string
	IsStaff       bool
	TermsAccepted bool
}

// IsAdmin reports whether the principal carries admin privileges.
func (p Principal) IsAdmin() bool {
	return p.IsStaff || p.Role == RoleAdmin
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. The second
// return value is false for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
