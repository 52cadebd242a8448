// Package missing manages missing-pet reports.
package missing

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses.
const (
	StatusMissing = "MISSING"
	StatusFound   = "FOUND"
	StatusClosed  = "CLOSED"
)

// Report is a missing-pet report. Name may be empty when the pet is
// unidentified.
type Report struct {
	ID               uuid.UUID
	Reporter         uuid.UUID
	Name             string
	Category         string
	Breed            string
	Gender           string
	Description      string
	LastSeenLocation string
	LastSeenDate     time.Time
	RewardOffered    *float64
	ContactPhone     string
	ContactEmail     string
	Status           string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	FoundDate        *time.Time
}

// OwnerID exposes the reporter for authorization checks.
func (r *Report) OwnerID() (uuid.UUID, bool) {
	return r.Reporter, true
}

// ListFilter narrows the public report query. Zero values mean "any".
type ListFilter struct {
	Category string
	Location string
	Status   string
	Page     int
	PerPage  int
}

// Update carries a partial report update. Nil fields are left unchanged.
type Update struct {
	Name             *string
	Category         *string
	Breed            *string
	Gender           *string
	Description      *string
	LastSeenLocation *string
	LastSeenDate     *time.Time
	RewardOffered    *float64
	ContactPhone     *string
	ContactEmail     *string
	Status           *string
}
