// Package terms manages terms-and-conditions versions and the per-user
// acceptance audit trail.
package terms

import (
	"time"

	"github.com/google/uuid"
)

// Terms is a single version of the terms and conditions. At most one
// version is active at a time.
type Terms struct {
	ID            int64
	Version       string
	Content       string
	EffectiveDate time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Acceptance is the audit record of a user accepting a terms version.
// A user can accept each version at most once.
type Acceptance struct {
	ID         int64
	UserID     uuid.UUID
	TermsID    int64
	Version    string
	AcceptedAt time.Time
	IPAddress  string
	UserAgent  string
}
