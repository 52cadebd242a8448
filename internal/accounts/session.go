package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/HttpsPratik/new-life/internal/shared"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	revocationKeyPrefix = "session:revoked:"
)

// TokenPair is the bearer credential pair returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// sessionClaims are the signed claims carried by both token kinds.
type sessionClaims struct {
	TokenType string `json:"typ"`
	Role      string `json:"role,omitempty"`
	IsStaff   bool   `json:"staff,omitempty"`
	jwt.RegisteredClaims
}

// SessionIssuer issues and invalidates JWT session pairs. Access tokens
// verify without any store lookup; refresh tokens are checked against a
// Redis revocation list before they may mint new access tokens.
type SessionIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    *redis.Client
}

// NewSessionIssuer constructs a SessionIssuer.
func NewSessionIssuer(secret string, accessTTL, refreshTTL time.Duration, revoked *redis.Client) *SessionIssuer {
	return &SessionIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
	}
}

// Issue returns a fresh access/refresh pair for the user.
func (s *SessionIssuer) Issue(user *User) (TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.sign(sessionClaims{
		TokenType: tokenTypeAccess,
		Role:      user.Role,
		IsStaff:   user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.sign(sessionClaims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Invalidate adds the refresh token to the revocation list. Malformed,
// expired or already-revoked tokens report a client error.
func (s *SessionIssuer) Invalidate(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return err
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return fmt.Errorf("%w: token is already revoked", shared.ErrValidation)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return fmt.Errorf("%w: token is expired", shared.ErrValidation)
	}
	if err := s.revoked.Set(ctx, revocationKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("accounts: revoke session: %w", err)
	}
	return nil
}

// Refresh mints a new access token from a live refresh token. The refresh
// token itself is returned unchanged.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken string, user *User) (TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if revoked {
		return TokenPair{}, fmt.Errorf("%w: token is revoked", shared.ErrUnauthorized)
	}

	now := time.Now().UTC()
	access, err := s.sign(sessionClaims{
		TokenType: tokenTypeAccess,
		Role:      user.Role,
		IsStaff:   user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refreshToken}, nil
}

// Subject parses a refresh token and returns the account ID it was issued
// to, without any revocation check. Used to load the user before Refresh.
func (s *SessionIssuer) Subject(refreshToken string) (uuid.UUID, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", shared.ErrValidation)
	}
	return id, nil
}

// VerifyAccess validates an access token and returns the account ID. This
// is a pure signature/expiry check with no store round trip.
func (s *SessionIssuer) VerifyAccess(accessToken string) (uuid.UUID, error) {
	claims, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return id, nil
}

func (s *SessionIssuer) sign(claims sessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("accounts: sign token: %w", err)
	}
	return signed, nil
}

func (s *SessionIssuer) parse(tokenString, wantType string) (*sessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: token is invalid or expired", shared.ErrValidation)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: wrong token type", shared.ErrValidation)
	}
	return &claims, nil
}

func (s *SessionIssuer) isRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := s.revoked.Get(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("accounts: revocation lookup: %w", err)
	}
	return true, nil
}
