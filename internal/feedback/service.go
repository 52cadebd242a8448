package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Service handles feedback business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRequest carries a new submission. User is nil for anonymous
// senders.
type CreateRequest struct {
	User    *uuid.UUID
	Name    string
	Email   string
	Subject string
	Type    string
	Message string
}

// Create records the submission with NEW status.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Feedback, error) {
	f := Feedback{
		User:      req.User,
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Type:      req.Type,
		Message:   req.Message,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	id, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	f.ID = id
	return &f, nil
}

// List returns feedback for the admin view.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Feedback, shared.Pagination, error) {
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

// Get returns one submission for the admin view.
func (s *Service) Get(ctx context.Context, id int64) (*Feedback, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus advances the handling status, optionally with notes.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*Feedback, error) {
	return s.repo.UpdateStatus(ctx, id, status, adminNotes)
}
