package missing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/mail"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Service handles missing-pet report business logic.
type Service struct {
	repo        Repository
	mailer      mail.Mailer
	logger      *slog.Logger
	frontendURL string
}

// NewService builds a Service instance.
func NewService(repo Repository, mailer mail.Mailer, logger *slog.Logger, frontendURL string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mailer: mailer, logger: logger, frontendURL: frontendURL}
}

// List returns active reports matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Report, shared.Pagination, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 20
	}
	reports, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return reports, shared.NewPagination(f.Page, f.PerPage, total), nil
}

// Get returns a single active report.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// CreateRequest carries a new report.
type CreateRequest struct {
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
}

// Create stores the report and sends a best-effort confirmation email.
func (s *Service) Create(ctx context.Context, principal shared.Principal, req CreateRequest) (*Report, error) {
	rep := Report{
		ID:               uuid.New(),
		Reporter:         principal.ID,
		Name:             req.Name,
		Category:         req.Category,
		Breed:            req.Breed,
		Gender:           req.Gender,
		Description:      req.Description,
		LastSeenLocation: req.LastSeenLocation,
		LastSeenDate:     req.LastSeenDate,
		RewardOffered:    req.RewardOffered,
		ContactPhone:     req.ContactPhone,
		ContactEmail:     req.ContactEmail,
		Status:           StatusMissing,
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}

	reportURL := fmt.Sprintf("%s/missing-pets/%s", s.frontendURL, rep.ID)
	subject, body := mail.MissingReportEmail(principal.FullName, reportURL)
	if err := s.mailer.Send(principal.Email, subject, body); err != nil {
		s.logger.Warn("send report confirmation", slog.Any("error", err))
	}
	return &rep, nil
}

// Update applies an owner-or-admin partial update.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, upd Update) (*Report, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete soft-deletes the report, owner-or-admin only.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// Found marks the report found, owner-or-admin only.
func (s *Service) Found(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Report, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return nil, err
	}
	return s.repo.MarkFound(ctx, id)
}
