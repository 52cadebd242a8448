package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for feedback.
type Repository interface {
	Create(ctx context.Context, f Feedback) (int64, error)
	Get(ctx context.Context, id int64) (*Feedback, error)
	List(ctx context.Context, f ListFilter) ([]Feedback, int, error)
	// UpdateStatus sets the handling status and optionally admin notes.
	UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*Feedback, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const feedbackColumns = `id, user_id, COALESCE(name, ''), email, subject, type, message,
	status, COALESCE(admin_notes, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (*Feedback, error) {
	var f Feedback
	err := row.Scan(
		&f.ID, &f.User, &f.Name, &f.Email, &f.Subject, &f.Type, &f.Message,
		&f.Status, &f.AdminNotes, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Create inserts a feedback row.
func (r *PGRepository) Create(ctx context.Context, f Feedback) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO feedback (user_id, name, email, subject, type, message, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		f.User, f.Name, f.Email, f.Subject, f.Type, f.Message, f.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("feedback: create: %w", err)
	}
	return id, nil
}

// Get returns one feedback row.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Feedback, error) {
	return scanFeedback(r.pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id))
}

// List returns feedback matching the filter, newest first.
func (r *PGRepository) List(ctx context.Context, f ListFilter) ([]Feedback, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(f.Type))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("feedback: count: %w", err)
	}

	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("feedback: list: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *fb)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the status and, when provided, the admin notes.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*Feedback, error) {
	return scanFeedback(r.pool.QueryRow(ctx, `
		UPDATE feedback SET status = $2, admin_notes = COALESCE($3, admin_notes), updated_at = NOW()
		WHERE id = $1
		RETURNING `+feedbackColumns,
		id, status, adminNotes,
	))
}

var _ Repository = (*PGRepository)(nil)
