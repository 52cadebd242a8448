package missing

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

type memoryMissingRepo struct {
	reports map[uuid.UUID]*Report
}

func newMemoryMissingRepo() *memoryMissingRepo {
	return &memoryMissingRepo{reports: make(map[uuid.UUID]*Report)}
}

func (r *memoryMissingRepo) List(ctx context.Context, f ListFilter) ([]Report, int, error) {
	var out []Report
	for _, rep := range r.reports {
		if !rep.IsActive {
			continue
		}
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		out = append(out, *rep)
	}
	return out, len(out), nil
}

func (r *memoryMissingRepo) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok || !rep.IsActive {
		return nil, shared.ErrNotFound
	}
	copied := *rep
	return &copied, nil
}

func (r *memoryMissingRepo) Create(ctx context.Context, rep Report) error {
	copied := rep
	r.reports[rep.ID] = &copied
	return nil
}

func (r *memoryMissingRepo) Update(ctx context.Context, id uuid.UUID, upd Update) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok || !rep.IsActive {
		return nil, shared.ErrNotFound
	}
	if upd.Description != nil {
		rep.Description = *upd.Description
	}
	if upd.Status != nil {
		rep.Status = *upd.Status
	}
	copied := *rep
	return &copied, nil
}

func (r *memoryMissingRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	rep, ok := r.reports[id]
	if !ok || !rep.IsActive {
		return shared.ErrNotFound
	}
	rep.IsActive = false
	return nil
}

func (r *memoryMissingRepo) MarkFound(ctx context.Context, id uuid.UUID) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok || !rep.IsActive {
		return nil, shared.ErrNotFound
	}
	if rep.Status == StatusFound {
		return nil, fmt.Errorf("%w: report is already marked as found", shared.ErrValidation)
	}
	now := time.Now()
	rep.Status = StatusFound
	rep.FoundDate = &now
	copied := *rep
	return &copied, nil
}

var _ Repository = (*memoryMissingRepo)(nil)

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

func reporterPrincipal() shared.Principal {
	return shared.Principal{
		ID:            uuid.New(),
		Email:         "reporter@example.com",
		FullName:      "Pet Reporter",
		Role:          shared.RoleUser,
		TermsAccepted: true,
	}
}

func createReport(t *testing.T, svc *Service, principal shared.Principal) *Report {
	t.Helper()
	rep, err := svc.Create(context.Background(), principal, CreateRequest{
		Name:             "Milo",
		Category:         "CAT",
		Gender:           "MALE",
		Description:      "Grey tabby, white paws",
		LastSeenLocation: "Patan",
		LastSeenDate:     time.Now().AddDate(0, 0, -2),
		ContactPhone:     "9800000000",
		ContactEmail:     "reporter@example.com",
	})
	require.NoError(t, err)
	return rep
}

func TestCreateReportSendsConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(newMemoryMissingRepo(), mailer, nil, "http://localhost:3000")
	reporter := reporterPrincipal()

	rep := createReport(t, svc, reporter)
	require.Equal(t, StatusMissing, rep.Status)
	require.Equal(t, reporter.ID, rep.Reporter)
	require.Len(t, mailer.sent, 1)
}

func TestFoundMarksOnce(t *testing.T) {
	svc := NewService(newMemoryMissingRepo(), &fakeMailer{}, nil, "http://localhost:3000")
	reporter := reporterPrincipal()
	rep := createReport(t, svc, reporter)

	found, err := svc.Found(context.Background(), reporter, rep.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFound, found.Status)
	require.NotNil(t, found.FoundDate)

	_, err = svc.Found(context.Background(), reporter, rep.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestFoundReporterOrAdminOnly(t *testing.T) {
	svc := NewService(newMemoryMissingRepo(), &fakeMailer{}, nil, "http://localhost:3000")
	rep := createReport(t, svc, reporterPrincipal())

	stranger := reporterPrincipal()
	_, err := svc.Found(context.Background(), stranger, rep.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	admin := shared.Principal{ID: uuid.New(), Role: shared.RoleAdmin}
	_, err = svc.Found(context.Background(), admin, rep.ID)
	require.NoError(t, err)
}

func TestDeleteReportHidesIt(t *testing.T) {
	svc := NewService(newMemoryMissingRepo(), &fakeMailer{}, nil, "http://localhost:3000")
	reporter := reporterPrincipal()
	rep := createReport(t, svc, reporter)

	require.NoError(t, svc.Delete(context.Background(), reporter, rep.ID))

	_, err := svc.Get(context.Background(), rep.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	reports, _, listErr := svc.List(context.Background(), ListFilter{})
	require.NoError(t, listErr)
	require.Empty(t, reports)
}
