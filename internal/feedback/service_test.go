package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HttpsPratik/new-life/internal/shared"
)

type memoryFeedbackRepo struct {
	items  map[int64]*Feedback
	nextID int64
}

func newMemoryFeedbackRepo() *memoryFeedbackRepo {
	return &memoryFeedbackRepo{items: make(map[int64]*Feedback)}
}

func (r *memoryFeedbackRepo) Create(ctx context.Context, f Feedback) (int64, error) {
	r.nextID++
	f.ID = r.nextID
	r.items[f.ID] = &f
	return f.ID, nil
}

func (r *memoryFeedbackRepo) Get(ctx context.Context, id int64) (*Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *memoryFeedbackRepo) List(ctx context.Context, f ListFilter) ([]Feedback, int, error) {
	var out []Feedback
	for _, item := range r.items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Type != "" && item.Type != f.Type {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (r *memoryFeedbackRepo) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	f.Status = status
	if adminNotes != nil {
		f.AdminNotes = *adminNotes
	}
	copied := *f
	return &copied, nil
}

var _ Repository = (*memoryFeedbackRepo)(nil)

func TestCreateFeedbackStartsNew(t *testing.T) {
	svc := NewService(newMemoryFeedbackRepo())

	f, err := svc.Create(context.Background(), CreateRequest{
		Email:   "jane@example.com",
		Subject: "Great site",
		Type:    TypeFeedback,
		Message: "Found my cat through a report here.",
	})
	require.NoError(t, err)
	require.Equal(t, StatusNew, f.Status)
	require.Equal(t, "Anonymous", f.SenderDisplay())
}

func TestCreateFeedbackLinksUser(t *testing.T) {
	svc := NewService(newMemoryFeedbackRepo())
	userID := uuid.New()

	f, err := svc.Create(context.Background(), CreateRequest{
		User:    &userID,
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Bug on listing page",
		Type:    TypeBugReport,
		Message: "The image carousel loops forever.",
	})
	require.NoError(t, err)
	require.NotNil(t, f.User)
	require.Equal(t, "Jane Doe", f.SenderDisplay())
}

func TestUpdateStatusWithNotes(t *testing.T) {
	repo := newMemoryFeedbackRepo()
	svc := NewService(repo)

	f, err := svc.Create(context.Background(), CreateRequest{
		Email:   "jane@example.com",
		Subject: "Complaint",
		Type:    TypeComplaint,
		Message: "No reply to my messages.",
	})
	require.NoError(t, err)

	notes := "Followed up by email."
	updated, err := svc.UpdateStatus(context.Background(), f.ID, StatusResolved, &notes)
	require.NoError(t, err)
	require.Equal(t, StatusResolved, updated.Status)
	require.Equal(t, notes, updated.AdminNotes)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newMemoryFeedbackRepo()
	svc := NewService(repo)

	first, err := svc.Create(context.Background(), CreateRequest{
		Email: "a@example.com", Subject: "A", Type: TypeFeedback, Message: "m",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{
		Email: "b@example.com", Subject: "B", Type: TypeFeedback, Message: "m",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), first.ID, StatusClosed, nil)
	require.NoError(t, err)

	closed, _, err := svc.List(context.Background(), ListFilter{Status: StatusClosed})
	require.NoError(t, err)
	require.Len(t, closed, 1)
}
