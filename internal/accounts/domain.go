// Package accounts implements the account lifecycle: registration, email
// verification, login/logout session issuance, profile management and
// password rotation/reset.
package accounts

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account record.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	FullName       string
	PhoneNumber    string
	Location       string
	Role           string
	IsStaff        bool
	IsActive       bool
	IsVerified     bool
	TermsAccepted  bool
	TermsAcceptedAt *time.Time
	TermsVersion   string
	DateJoined     time.Time
	LastLogin      *time.Time
}

// VerificationToken is the one-time email verification token. At most one
// live token exists per account; minting a new one supersedes the old.
type VerificationToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResetToken is a one-time password reset token. Valid only while
// now < ExpiresAt and not IsUsed. Consumed tokens are kept for audit.
type ResetToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// Valid reports whether the token can still be consumed at the given time.
func (t ResetToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt) && !t.IsUsed
}

// Valid reports whether the verification token is unexpired at the given time.
func (t VerificationToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged" for PATCH; PUT sets every field.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	Location    *string
}
