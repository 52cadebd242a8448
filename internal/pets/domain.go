// Package pets manages adoption listings and their image records.
package pets

import (
	"time"

	"github.com/google/uuid"
)

// Pet categories.
const (
	CategoryCat   = "CAT"
	CategoryDog   = "DOG"
	CategoryOther = "OTHER"
)

// Pet listing statuses.
const (
	StatusAvailable = "AVAILABLE"
	StatusAdopted   = "ADOPTED"
	StatusPending   = "PENDING"
	StatusRemoved   = "REMOVED"
)

// Pet is a single adoption listing. Age is in months.
type Pet struct {
	ID           uuid.UUID
	Owner        uuid.UUID
	Name         string
	Category     string
	Breed        string
	Age          int
	Gender       string
	Size         string
	Description  string
	HealthInfo   string
	Location     string
	ContactPhone string
	ContactEmail string
	Status       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AdoptionDate *time.Time
	Images       []Image
}

// OwnerID exposes the listing owner for authorization checks.
func (p *Pet) OwnerID() (uuid.UUID, bool) {
	return p.Owner, true
}

// Image is a URL-backed picture attached to a listing. At most one image
// per pet is primary.
type Image struct {
	ID         int64
	PetID      uuid.UUID
	URL        string
	Caption    string
	IsPrimary  bool
	UploadedAt time.Time
}

// ListFilter narrows the public listing query. Zero values mean "any".
type ListFilter struct {
	Category string
	Location string
	Status   string
	Page     int
	PerPage  int
}

// Update carries a partial listing update. Nil fields are left unchanged.
type Update struct {
	Name         *string
	Category     *string
	Breed        *string
	Age          *int
	Gender       *string
	Size         *string
	Description  *string
	HealthInfo   *string
	Location     *string
	ContactPhone *string
	ContactEmail *string
	Status       *string
}
