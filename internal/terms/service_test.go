package terms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HttpsPratik/new-life/internal/shared"
)

type memoryTermsRepo struct {
	terms       map[int64]*Terms
	acceptances []Acceptance
	nextTermsID int64
	nextAcceptID int64
}

func newMemoryTermsRepo() *memoryTermsRepo {
	return &memoryTermsRepo{terms: make(map[int64]*Terms)}
}

func (r *memoryTermsRepo) ListTerms(ctx context.Context) ([]Terms, error) {
	var out []Terms
	for _, t := range r.terms {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memoryTermsRepo) GetActive(ctx context.Context) (*Terms, error) {
	for _, t := range r.terms {
		if t.IsActive {
			copied := *t
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryTermsRepo) GetByID(ctx context.Context, id int64) (*Terms, error) {
	t, ok := r.terms[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memoryTermsRepo) CreateTerms(ctx context.Context, t Terms) (int64, error) {
	for _, existing := range r.terms {
		if existing.Version == t.Version {
			return 0, fmt.Errorf("%w: version already exists", shared.ErrDuplicate)
		}
	}
	r.nextTermsID++
	t.ID = r.nextTermsID
	r.terms[t.ID] = &t
	return t.ID, nil
}

func (r *memoryTermsRepo) Activate(ctx context.Context, id int64) error {
	target, ok := r.terms[id]
	if !ok {
		return shared.ErrNotFound
	}
	for _, t := range r.terms {
		t.IsActive = false
	}
	target.IsActive = true
	return nil
}

func (r *memoryTermsRepo) CreateAcceptance(ctx context.Context, a Acceptance) (int64, error) {
	for _, existing := range r.acceptances {
		if existing.UserID == a.UserID && existing.TermsID == a.TermsID {
			return 0, fmt.Errorf("%w: you have already accepted this version", shared.ErrDuplicate)
		}
	}
	r.nextAcceptID++
	a.ID = r.nextAcceptID
	r.acceptances = append(r.acceptances, a)
	return a.ID, nil
}

func (r *memoryTermsRepo) ListAcceptances(ctx context.Context, userID uuid.UUID) ([]Acceptance, error) {
	var out []Acceptance
	for _, a := range r.acceptances {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ Repository = (*memoryTermsRepo)(nil)

func seedVersion(t *testing.T, repo *memoryTermsRepo, version string, active bool) int64 {
	t.Helper()
	id, err := repo.CreateTerms(context.Background(), Terms{
		Version:       version,
		Content:       "content " + version,
		EffectiveDate: time.Now(),
	})
	require.NoError(t, err)
	if active {
		require.NoError(t, repo.Activate(context.Background(), id))
	}
	return id
}

func TestAcceptActiveVersion(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	id := seedVersion(t, repo, "1.0", true)
	userID := uuid.New()

	a, err := svc.Accept(context.Background(), userID, id, "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Equal(t, "1.0", a.Version)
	require.Equal(t, "203.0.113.7", a.IPAddress)
}

func TestAcceptInactiveVersionRejected(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	seedVersion(t, repo, "1.0", true)
	oldID := seedVersion(t, repo, "0.9", false)

	_, err := svc.Accept(context.Background(), uuid.New(), oldID, "203.0.113.7", "test-agent")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAcceptSameVersionTwiceRejected(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	id := seedVersion(t, repo, "1.0", true)
	userID := uuid.New()

	_, err := svc.Accept(context.Background(), userID, id, "203.0.113.7", "test-agent")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), userID, id, "203.0.113.7", "test-agent")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAcceptTwoDifferentVersions(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	first := seedVersion(t, repo, "1.0", true)
	userID := uuid.New()

	_, err := svc.Accept(context.Background(), userID, first, "203.0.113.7", "test-agent")
	require.NoError(t, err)

	second := seedVersion(t, repo, "2.0", true)
	_, err = svc.Accept(context.Background(), userID, second, "203.0.113.7", "test-agent")
	require.NoError(t, err)

	history, err := svc.MyAcceptances(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestActivationKeepsSingleActiveVersion(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	seedVersion(t, repo, "1.0", true)
	next := seedVersion(t, repo, "2.0", false)

	require.NoError(t, svc.Activate(context.Background(), next))

	active := 0
	for _, tt := range repo.terms {
		if tt.IsActive {
			active++
		}
	}
	require.Equal(t, 1, active)

	version, err := svc.ActiveVersion(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2.0", version)
}

func TestCreateStartsInactive(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{
		Version:       "1.0",
		Content:       "the terms",
		EffectiveDate: time.Now(),
	})
	require.NoError(t, err)
	require.False(t, created.IsActive)

	_, err = svc.Current(context.Background())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateDuplicateVersionRejected(t *testing.T) {
	repo := newMemoryTermsRepo()
	svc := NewService(repo)
	seedVersion(t, repo, "1.0", false)

	_, err := svc.Create(context.Background(), CreateRequest{
		Version:       "1.0",
		Content:       "again",
		EffectiveDate: time.Now(),
	})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}
