package accounts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// AuthMiddleware resolves bearer tokens into request principals.
type AuthMiddleware struct {
	sessions *SessionIssuer
	repo     Repository
	logger   *slog.Logger
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(sessions *SessionIssuer, repo Repository, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{sessions: sessions, repo: repo, logger: logger}
}

// Authenticate verifies the Authorization header when present and stores
// the principal in the request context. Requests without a bearer token
// pass through unauthenticated; route groups decide whether that is
// acceptable. A present-but-invalid token is rejected outright.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		userID, err := m.sessions.VerifyAccess(strings.TrimSpace(tokenString))
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		// The account row is loaded per request so role, verification and
		// terms flags are always current, never stale claims.
		user, err := m.repo.GetUserByID(r.Context(), userID)
		if err != nil {
			m.logger.Warn("load principal", slog.Any("error", err))
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		if !user.IsActive {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		principal := shared.Principal{
			ID:            user.ID,
			Email:         user.Email,
			FullName:      user.FullName,
			Role:          user.Role,
			IsStaff:       user.IsStaff,
			TermsAccepted: user.TermsAccepted,
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
