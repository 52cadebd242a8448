package terms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Service handles terms business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all terms versions.
func (s *Service) List(ctx context.Context) ([]Terms, error) {
	return s.repo.ListTerms(ctx)
}

// Current returns the active terms version.
func (s *Service) Current(ctx context.Context) (*Terms, error) {
	return s.repo.GetActive(ctx)
}

// ActiveVersion returns the active version string. Implements the
// accounts registration terms source.
func (s *Service) ActiveVersion(ctx context.Context) (string, error) {
	t, err := s.repo.GetActive(ctx)
	if err != nil {
		return "", err
	}
	return t.Version, nil
}

// CreateRequest carries a new terms version.
type CreateRequest struct {
	Version       string
	Content       string
	EffectiveDate time.Time
}

// Create stores a new, initially inactive version.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Terms, error) {
	t := Terms{
		Version:       req.Version,
		Content:       req.Content,
		EffectiveDate: req.EffectiveDate,
	}
	id, err := s.repo.CreateTerms(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return &t, nil
}

// Activate makes the version with the given ID the active one.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.Activate(ctx, id)
}

// Accept records the caller's acceptance of the given version. Only the
// active version can be accepted, and only once per user.
func (s *Service) Accept(ctx context.Context, userID uuid.UUID, termsID int64, ipAddress, userAgent string) (*Acceptance, error) {
	t, err := s.repo.GetByID(ctx, termsID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, fmt.Errorf("%w: this terms version is not currently active", shared.ErrValidation)
	}

	a := Acceptance{
		UserID:     userID,
		TermsID:    t.ID,
		Version:    t.Version,
		AcceptedAt: time.Now().UTC(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	id, err := s.repo.CreateAcceptance(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

// MyAcceptances returns the caller's acceptance history.
func (s *Service) MyAcceptances(ctx context.Context, userID uuid.UUID) ([]Acceptance, error) {
	return s.repo.ListAcceptances(ctx, userID)
}
