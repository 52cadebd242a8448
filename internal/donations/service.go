package donations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Service handles donation business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRequest carries a new donation. Donor is nil for anonymous or
// unregistered callers.
type CreateRequest struct {
	Donor         *uuid.UUID
	DonorName     string
	DonorEmail    string
	DonorPhone    string
	Amount        float64
	Currency      string
	PaymentMethod string
	Message       string
	IsAnonymous   bool
}

// Create records the donation as PENDING with a generated payment
// reference. No gateway is contacted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Donation, error) {
	id := uuid.New()
	d := Donation{
		ID:               id,
		Donor:            req.Donor,
		DonorName:        req.DonorName,
		DonorEmail:       req.DonorEmail,
		DonorPhone:       req.DonorPhone,
		Amount:           req.Amount,
		Currency:         req.Currency,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: paymentReference(req.PaymentMethod, id),
		PaymentStatus:    StatusPending,
		Message:          req.Message,
		IsAnonymous:      req.IsAnonymous,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// paymentReference builds a human-readable stand-in for the transaction ID
// a real gateway would return.
func paymentReference(method string, id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:12]
	return fmt.Sprintf("%s-%s", method, short)
}

// Get returns a donation visible to the caller: the linked donor or an
// admin. Anonymous donations are admin-only reads.
func (s *Service) Get(ctx context.Context, principal shared.Principal, authenticated bool, id uuid.UUID) (*Donation, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		return nil, shared.ErrUnauthorized
	}
	if !authz.CanModify(principal, d) {
		return nil, shared.ErrForbidden
	}
	return d, nil
}

// Mine returns the caller's donations.
func (s *Service) Mine(ctx context.Context, donorID uuid.UUID) ([]Donation, error) {
	return s.repo.ListByDonor(ctx, donorID)
}

// List returns all donations for the admin view.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Donation, shared.Pagination, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 20
	}
	out, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return out, shared.NewPagination(f.Page, f.PerPage, total), nil
}

// Complete confirms a pending donation.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return s.repo.Complete(ctx, id)
}
