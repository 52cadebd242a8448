// Package donations records donations. Payment gateways are not called;
// every donation starts PENDING with a locally generated reference and an
// admin confirms completion.
package donations

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods.
const (
	MethodESewa        = "ESEWA"
	MethodPayPal       = "PAYPAL"
	MethodBankTransfer = "BANK_TRANSFER"
)

// Payment statuses.
const (
	StatusPending  = "PENDING"
	StatusSuccess  = "SUCCESS"
	StatusFailed   = "FAILED"
	StatusRefunded = "REFUNDED"
)

// Donation is a single donation record. Donor is nil for anonymous or
// unregistered donors.
type Donation struct {
	ID               uuid.UUID
	Donor            *uuid.UUID
	DonorName        string
	DonorEmail       string
	DonorPhone       string
	Amount           float64
	Currency         string
	PaymentMethod    string
	PaymentReference string
	PaymentStatus    string
	Message          string
	IsAnonymous      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// OwnerID exposes the linked donor for authorization checks. Donations
// without a registered donor have no owner.
func (d *Donation) OwnerID() (uuid.UUID, bool) {
	if d.Donor == nil {
		return uuid.Nil, false
	}
	return *d.Donor, true
}

// DisplayName is the donor name for public payloads, respecting the
// anonymity flag.
func (d *Donation) DisplayName() string {
	if d.IsAnonymous || d.DonorName == "" {
		return "Anonymous"
	}
	return d.DonorName
}

// ListFilter narrows the admin listing query. Zero values mean "any".
type ListFilter struct {
	Status  string
	Method  string
	Page    int
	PerPage int
}
