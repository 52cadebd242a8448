package missing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for missing-pet reports.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Report, int, error)
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	Create(ctx context.Context, rep Report) error
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Report, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// MarkFound flips an open report to FOUND and stamps the found date.
	// Reports already marked found are reported as ErrValidation.
	MarkFound(ctx context.Context, id uuid.UUID) (*Report, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const reportColumns = `id, reporter_id, COALESCE(name, ''), category, COALESCE(breed, ''), gender,
	description, last_seen_location, last_seen_date, reward_offered,
	contact_phone, contact_email, status, is_active, created_at, updated_at, found_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var rep Report
	err := row.Scan(
		&rep.ID, &rep.Reporter, &rep.Name, &rep.Category, &rep.Breed, &rep.Gender,
		&rep.Description, &rep.LastSeenLocation, &rep.LastSeenDate, &rep.RewardOffered,
		&rep.ContactPhone, &rep.ContactEmail, &rep.Status, &rep.IsActive,
		&rep.CreatedAt, &rep.UpdatedAt, &rep.FoundDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// List returns active reports matching the filter, newest first.
func (r *PGRepository) List(ctx context.Context, f ListFilter) ([]Report, int, error) {
	where := []string{"is_active = TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Location != "" {
		where = append(where, "last_seen_location ILIKE "+arg("%"+f.Location+"%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM missing_pets WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("missing: count: %w", err)
	}

	query := `SELECT ` + reportColumns + ` FROM missing_pets WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("missing: list: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rep)
	}
	return out, total, rows.Err()
}

// Get returns one active report.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM missing_pets WHERE id = $1 AND is_active = TRUE`, id))
}

// Create inserts a new report.
func (r *PGRepository) Create(ctx context.Context, rep Report) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO missing_pets (id, reporter_id, name, category, breed, gender,
			description, last_seen_location, last_seen_date, reward_offered,
			contact_phone, contact_email, status, is_active, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW())`,
		rep.ID, rep.Reporter, rep.Name, rep.Category, rep.Breed, rep.Gender,
		rep.Description, rep.LastSeenLocation, rep.LastSeenDate, rep.RewardOffered,
		rep.ContactPhone, rep.ContactEmail, rep.Status,
	)
	if err != nil {
		return fmt.Errorf("missing: create: %w", err)
	}
	return nil
}

// Update applies the partial update and returns the refreshed report.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, upd Update) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx, `
		UPDATE missing_pets SET
			name               = COALESCE($2, name),
			category           = COALESCE($3, category),
			breed              = COALESCE($4, breed),
			gender             = COALESCE($5, gender),
			description        = COALESCE($6, description),
			last_seen_location = COALESCE($7, last_seen_location),
			last_seen_date     = COALESCE($8, last_seen_date),
			reward_offered     = COALESCE($9, reward_offered),
			contact_phone      = COALESCE($10, contact_phone),
			contact_email      = COALESCE($11, contact_email),
			status             = COALESCE($12, status),
			updated_at         = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+reportColumns,
		id, upd.Name, upd.Category, upd.Breed, upd.Gender, upd.Description,
		upd.LastSeenLocation, upd.LastSeenDate, upd.RewardOffered,
		upd.ContactPhone, upd.ContactEmail, upd.Status,
	))
}

// SoftDelete deactivates the report.
func (r *PGRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE missing_pets SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("missing: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkFound stamps the report found. The status guard keeps concurrent
// found calls from double-stamping.
func (r *PGRepository) MarkFound(ctx context.Context, id uuid.UUID) (*Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, `
		UPDATE missing_pets SET status = $2, found_date = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE AND status <> $2
		RETURNING `+reportColumns,
		id, StatusFound,
	))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if _, lookupErr := r.Get(ctx, id); lookupErr == nil {
				return nil, fmt.Errorf("%w: report is already marked as found", shared.ErrValidation)
			}
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

var _ Repository = (*PGRepository)(nil)
