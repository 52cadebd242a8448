package pets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HttpsPratik/new-life/internal/shared"
)

type memoryPetsRepo struct {
	pets        map[uuid.UUID]*Pet
	images      map[uuid.UUID][]Image
	nextImageID int64
}

func newMemoryPetsRepo() *memoryPetsRepo {
	return &memoryPetsRepo{
		pets:   make(map[uuid.UUID]*Pet),
		images: make(map[uuid.UUID][]Image),
	}
}

func (r *memoryPetsRepo) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	var out []Pet
	for _, p := range r.pets {
		if !p.IsActive {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		copied := *p
		copied.Images = r.images[p.ID]
		out = append(out, copied)
	}
	return out, len(out), nil
}

func (r *memoryPetsRepo) Get(ctx context.Context, id uuid.UUID) (*Pet, error) {
	p, ok := r.pets[id]
	if !ok || !p.IsActive {
		return nil, shared.ErrNotFound
	}
	copied := *p
	copied.Images = r.images[id]
	return &copied, nil
}

func (r *memoryPetsRepo) Create(ctx context.Context, p Pet) error {
	copied := p
	r.pets[p.ID] = &copied
	return nil
}

func (r *memoryPetsRepo) Update(ctx context.Context, id uuid.UUID, upd Update) (*Pet, error) {
	p, ok := r.pets[id]
	if !ok || !p.IsActive {
		return nil, shared.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPetsRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.pets[id]
	if !ok || !p.IsActive {
		return shared.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (r *memoryPetsRepo) MarkAdopted(ctx context.Context, id uuid.UUID) (*Pet, error) {
	p, ok := r.pets[id]
	if !ok || !p.IsActive {
		return nil, shared.ErrNotFound
	}
	if p.Status == StatusAdopted {
		return nil, fmt.Errorf("%w: pet is already marked as adopted", shared.ErrValidation)
	}
	now := time.Now()
	p.Status = StatusAdopted
	p.AdoptionDate = &now
	copied := *p
	return &copied, nil
}

func (r *memoryPetsRepo) AddImage(ctx context.Context, img Image) (int64, error) {
	if img.IsPrimary {
		existing := r.images[img.PetID]
		for i := range existing {
			existing[i].IsPrimary = false
		}
	}
	r.nextImageID++
	img.ID = r.nextImageID
	r.images[img.PetID] = append(r.images[img.PetID], img)
	return img.ID, nil
}

var _ Repository = (*memoryPetsRepo)(nil)

type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) IsEnabled() bool { return true }

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, subject)
	return nil
}

func ownerPrincipal() shared.Principal {
	return shared.Principal{
		ID:            uuid.New(),
		Email:         "owner@example.com",
		FullName:      "Pet Owner",
		Role:          shared.RoleUser,
		TermsAccepted: true,
	}
}

func createListing(t *testing.T, svc *Service, principal shared.Principal) *Pet {
	t.Helper()
	p, err := svc.Create(context.Background(), principal, CreateRequest{
		Name:         "Rex",
		Category:     CategoryDog,
		Age:          24,
		Gender:       "MALE",
		Size:         "LARGE",
		Description:  "Friendly dog",
		Location:     "Kathmandu",
		ContactPhone: "9800000000",
		ContactEmail: "owner@example.com",
	})
	require.NoError(t, err)
	return p
}

func TestCreateListingSendsConfirmation(t *testing.T) {
	repo := newMemoryPetsRepo()
	mailer := &fakeMailer{}
	svc := NewService(repo, mailer, nil, "http://localhost:3000")
	owner := ownerPrincipal()

	p := createListing(t, svc, owner)
	require.Equal(t, StatusAvailable, p.Status)
	require.Equal(t, owner.ID, p.Owner)
	require.True(t, p.IsActive)
	require.Len(t, mailer.sent, 1)
}

func TestCreateListingSurvivesMailFailure(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{fail: true}, nil, "http://localhost:3000")

	p := createListing(t, svc, ownerPrincipal())
	require.NotNil(t, p)
	_, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
}

func TestUpdateListingOwnerOnly(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	owner := ownerPrincipal()
	p := createListing(t, svc, owner)

	stranger := ownerPrincipal()
	name := "Bello"
	_, err := svc.Update(context.Background(), stranger, p.ID, Update{Name: &name})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.Update(context.Background(), owner, p.ID, Update{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Bello", updated.Name)
}

func TestAdminCanModifyAnyListing(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	p := createListing(t, svc, ownerPrincipal())

	admin := shared.Principal{ID: uuid.New(), Role: shared.RoleAdmin, TermsAccepted: true}
	require.NoError(t, svc.Delete(context.Background(), admin, p.ID))

	_, err := svc.Get(context.Background(), p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAdoptMarksOnce(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	owner := ownerPrincipal()
	p := createListing(t, svc, owner)

	adopted, err := svc.Adopt(context.Background(), owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAdopted, adopted.Status)
	require.NotNil(t, adopted.AdoptionDate)

	_, err = svc.Adopt(context.Background(), owner, p.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddImageKeepsSinglePrimary(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	owner := ownerPrincipal()
	p := createListing(t, svc, owner)

	_, err := svc.AddImage(context.Background(), owner, p.ID, "https://img.example.com/1.jpg", "", true)
	require.NoError(t, err)
	_, err = svc.AddImage(context.Background(), owner, p.ID, "https://img.example.com/2.jpg", "", true)
	require.NoError(t, err)

	loaded, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 2)

	primaries := 0
	for _, img := range loaded.Images {
		if img.IsPrimary {
			primaries++
			require.Equal(t, "https://img.example.com/2.jpg", img.URL)
		}
	}
	require.Equal(t, 1, primaries)
}

func TestAddImageOwnerOnly(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	p := createListing(t, svc, ownerPrincipal())

	_, err := svc.AddImage(context.Background(), ownerPrincipal(), p.ID, "https://img.example.com/1.jpg", "", false)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListFiltersByCategory(t *testing.T) {
	repo := newMemoryPetsRepo()
	svc := NewService(repo, &fakeMailer{}, nil, "http://localhost:3000")
	owner := ownerPrincipal()
	createListing(t, svc, owner)

	cats, _, err := svc.List(context.Background(), ListFilter{Category: CategoryCat})
	require.NoError(t, err)
	require.Empty(t, cats)

	dogs, pagination, err := svc.List(context.Background(), ListFilter{Category: CategoryDog})
	require.NoError(t, err)
	require.Len(t, dogs, 1)
	require.Equal(t, 1, pagination.Total)
}
