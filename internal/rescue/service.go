package rescue

import (
	"context"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Service handles rescue directory business logic. Mutations are
// admin-only and enforced at the route level.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns active contacts matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Contact, shared.Pagination, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 20
	}
	contacts, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return contacts, shared.NewPagination(f.Page, f.PerPage, total), nil
}

// Get returns a single active contact.
func (s *Service) Get(ctx context.Context, id int64) (*Contact, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new contact.
func (s *Service) Create(ctx context.Context, c Contact) (*Contact, error) {
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Contact, error) {
	return s.repo.Update(ctx, id, upd)
}

// Delete soft-deletes the contact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
