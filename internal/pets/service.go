package pets

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

// Service handles pet listing business logic.
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

// List returns active listings matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, shared.Pagination, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 20
	}
	pets, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return pets, shared.NewPagination(f.Page, f.PerPage, total), nil
}

// Get returns a single active listing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pet, error) {
	return s.repo.Get(ctx, id)
}

// CreateRequest carries a new listing.
type CreateRequest struct {
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
}

// Create stores the listing and sends a best-effort confirmation email.
func (s *Service) Create(ctx context.Context, principal shared.Principal, req CreateRequest) (*Pet, error) {
	p := Pet{
		ID:           uuid.New(),
		Owner:        principal.ID,
		Name:         req.Name,
		Category:     req.Category,
		Breed:        req.Breed,
		Age:          req.Age,
		Gender:       req.Gender,
		Size:         req.Size,
		Description:  req.Description,
		HealthInfo:   req.HealthInfo,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Status:       StatusAvailable,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	listingURL := fmt.Sprintf("%s/pets/%s", s.frontendURL, p.ID)
	subject, body := mail.PetListingEmail(principal.FullName, p.Name, listingURL)
	if err := s.mailer.Send(principal.Email, subject, body); err != nil {
		s.logger.Warn("send listing confirmation", slog.Any("error", err))
	}
	return &p, nil
}

// Update applies an owner-or-admin partial update.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, upd Update) (*Pet, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete soft-deletes the listing, owner-or-admin only.
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

// Adopt marks the listing adopted, owner-or-admin only.
func (s *Service) Adopt(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Pet, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return nil, err
	}
	return s.repo.MarkAdopted(ctx, id)
}

// AddImage attaches an image record to the listing, owner-or-admin only.
func (s *Service) AddImage(ctx context.Context, principal shared.Principal, petID uuid.UUID, url, caption string, isPrimary bool) (*Image, error) {
	existing, err := s.repo.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeModify(principal, true, existing); err != nil {
		return nil, err
	}
	img := Image{
		PetID:      petID,
		URL:        url,
		Caption:    caption,
		IsPrimary:  isPrimary,
		UploadedAt: time.Now().UTC(),
	}
	id, err := s.repo.AddImage(ctx, img)
	if err != nil {
		return nil, err
	}
	img.ID = id
	return &img, nil
}
