// Package authz centralises the three authorization checks shared by all
// resource modules: owner-or-admin, admin-only and the terms gate.
package authz

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Owned is the capability a resource implements to expose its owner.
// The second return value is false for rows without an owner (anonymous
// donations, anonymous feedback), which always denies the ownership leg.
type Owned interface {
	OwnerID() (uuid.UUID, bool)
}

// CanModify reports whether the principal may mutate the resource:
// admins and staff always, otherwise only the designated owner.
func CanModify(p shared.Principal, res Owned) bool {
	if p.IsAdmin() {
		return true
	}
	ownerID, ok := res.OwnerID()
	return ok && ownerID == p.ID
}

// AuthorizeModify extracts the principal from context and applies the
// owner-or-admin rule. Read operations should not call this.
func AuthorizeModify(p shared.Principal, ok bool, res Owned) error {
	if !ok {
		return shared.ErrUnauthorized
	}
	if !CanModify(p, res) {
		return shared.ErrForbidden
	}
	return nil
}

// RequireAuth ensures a principal is present on the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures the caller is authenticated and carries the staff
// flag or admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		if !p.IsAdmin() {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTerms gates mutating requests on terms acceptance. Safe methods
// always pass.
func RequireTerms(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		if !p.TermsAccepted {
			httpx.Fail(w, http.StatusForbidden, "you must accept the latest terms and conditions to perform this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}
