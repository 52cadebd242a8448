// Package rescue maintains the directory of shelters and veterinarians.
package rescue

import "time"

// Contact types.
const (
	TypeShelter      = "SHELTER"
	TypeVeterinarian = "VETERINARIAN"
)

// Contact is a directory entry for a shelter or a veterinary clinic.
// Capacity applies to shelters; specialization and services to vets.
type Contact struct {
	ID               int64
	Name             string
	Type             string
	Address          string
	City             string
	Phone            string
	Email            string
	Website          string
	Description      string
	OperatingHours   string
	Capacity         *int
	Specialization   string
	Services         string
	EmergencyService bool
	IsVerified       bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ListFilter narrows the public directory query. Zero values mean "any".
type ListFilter struct {
	Type          string
	City          string
	EmergencyOnly bool
	VerifiedOnly  bool
	Page          int
	PerPage       int
}

// Update carries a partial contact update. Nil fields are left unchanged.
type Update struct {
	Name             *string
	Type             *string
	Address          *string
	City             *string
	Phone            *string
	Email            *string
	Website          *string
	Description      *string
	OperatingHours   *string
	Capacity         *int
	Specialization   *string
	Services         *string
	EmergencyService *bool
	IsVerified       *bool
}
