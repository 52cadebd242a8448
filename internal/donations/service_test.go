package donations

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HttpsPratik/new-life/internal/shared"
)

type memoryDonationsRepo struct {
	donations map[uuid.UUID]*Donation
}

func newMemoryDonationsRepo() *memoryDonationsRepo {
	return &memoryDonationsRepo{donations: make(map[uuid.UUID]*Donation)}
}

func (r *memoryDonationsRepo) Create(ctx context.Context, d Donation) error {
	copied := d
	r.donations[d.ID] = &copied
	return nil
}

func (r *memoryDonationsRepo) Get(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, ok := r.donations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *memoryDonationsRepo) List(ctx context.Context, f ListFilter) ([]Donation, int, error) {
	var out []Donation
	for _, d := range r.donations {
		if f.Status != "" && d.PaymentStatus != f.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (r *memoryDonationsRepo) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]Donation, error) {
	var out []Donation
	for _, d := range r.donations {
		if d.Donor != nil && *d.Donor == donorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memoryDonationsRepo) Complete(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, ok := r.donations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if d.PaymentStatus != StatusPending {
		return nil, fmt.Errorf("%w: donation is not pending", shared.ErrValidation)
	}
	now := time.Now()
	d.PaymentStatus = StatusSuccess
	d.CompletedAt = &now
	copied := *d
	return &copied, nil
}

var _ Repository = (*memoryDonationsRepo)(nil)

func TestCreateDonationStartsPending(t *testing.T) {
	svc := NewService(newMemoryDonationsRepo())

	d, err := svc.Create(context.Background(), CreateRequest{
		DonorName:     "Jane Doe",
		DonorEmail:    "jane@example.com",
		Amount:        500,
		Currency:      "NPR",
		PaymentMethod: MethodESewa,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, d.PaymentStatus)
	require.True(t, strings.HasPrefix(d.PaymentReference, "ESEWA-"))
	require.Nil(t, d.CompletedAt)
}

func TestAnonymousDonationHidesName(t *testing.T) {
	svc := NewService(newMemoryDonationsRepo())

	d, err := svc.Create(context.Background(), CreateRequest{
		DonorName:     "Jane Doe",
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "NPR",
		PaymentMethod: MethodPayPal,
		IsAnonymous:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "Anonymous", d.DisplayName())
}

func TestCompleteDonationOnce(t *testing.T) {
	repo := newMemoryDonationsRepo()
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), CreateRequest{
		DonorEmail:    "jane@example.com",
		Amount:        250,
		Currency:      "USD",
		PaymentMethod: MethodBankTransfer,
	})
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, completed.PaymentStatus)
	require.NotNil(t, completed.CompletedAt)

	_, err = svc.Complete(context.Background(), d.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetDonationDonorOrAdminOnly(t *testing.T) {
	repo := newMemoryDonationsRepo()
	svc := NewService(repo)
	donorID := uuid.New()

	d, err := svc.Create(context.Background(), CreateRequest{
		Donor:         &donorID,
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "NPR",
		PaymentMethod: MethodESewa,
	})
	require.NoError(t, err)

	donor := shared.Principal{ID: donorID, Role: shared.RoleUser}
	_, err = svc.Get(context.Background(), donor, true, d.ID)
	require.NoError(t, err)

	stranger := shared.Principal{ID: uuid.New(), Role: shared.RoleUser}
	_, err = svc.Get(context.Background(), stranger, true, d.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	admin := shared.Principal{ID: uuid.New(), Role: shared.RoleAdmin}
	_, err = svc.Get(context.Background(), admin, true, d.ID)
	require.NoError(t, err)
}

func TestAnonymousDonationIsAdminOnlyRead(t *testing.T) {
	repo := newMemoryDonationsRepo()
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), CreateRequest{
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "NPR",
		PaymentMethod: MethodESewa,
	})
	require.NoError(t, err)

	user := shared.Principal{ID: uuid.New(), Role: shared.RoleUser}
	_, err = svc.Get(context.Background(), user, true, d.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(context.Background(), shared.Principal{}, false, d.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestMineReturnsOnlyOwnDonations(t *testing.T) {
	repo := newMemoryDonationsRepo()
	svc := NewService(repo)
	donorID := uuid.New()

	_, err := svc.Create(context.Background(), CreateRequest{
		Donor:         &donorID,
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "NPR",
		PaymentMethod: MethodESewa,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{
		DonorEmail:    "someone@example.com",
		Amount:        50,
		Currency:      "NPR",
		PaymentMethod: MethodESewa,
	})
	require.NoError(t, err)

	mine, err := svc.Mine(context.Background(), donorID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}
