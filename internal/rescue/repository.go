package rescue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for the rescue directory.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Contact, int, error)
	Get(ctx context.Context, id int64) (*Contact, error)
	Create(ctx context.Context, c Contact) (int64, error)
	Update(ctx context.Context, id int64, upd Update) (*Contact, error)
	SoftDelete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const contactColumns = `id, name, type, address, city, phone, email, COALESCE(website, ''),
	COALESCE(description, ''), COALESCE(operating_hours, ''), capacity,
	COALESCE(specialization, ''), COALESCE(services, ''), emergency_service,
	is_verified, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.Name, &c.Type, &c.Address, &c.City, &c.Phone, &c.Email, &c.Website,
		&c.Description, &c.OperatingHours, &c.Capacity, &c.Specialization, &c.Services,
		&c.EmergencyService, &c.IsVerified, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns active contacts matching the filter, ordered by type then name.
func (r *PGRepository) List(ctx context.Context, f ListFilter) ([]Contact, int, error) {
	where := []string{"is_active = TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "type = "+arg(f.Type))
	}
	if f.City != "" {
		where = append(where, "city ILIKE "+arg("%"+f.City+"%"))
	}
	if f.EmergencyOnly {
		where = append(where, "emergency_service = TRUE")
	}
	if f.VerifiedOnly {
		where = append(where, "is_verified = TRUE")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rescue_contacts WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("rescue: count: %w", err)
	}

	query := `SELECT ` + contactColumns + ` FROM rescue_contacts WHERE ` + cond +
		` ORDER BY type, name LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("rescue: list: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// Get returns one active contact.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Contact, error) {
	return scanContact(r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM rescue_contacts WHERE id = $1 AND is_active = TRUE`, id))
}

// Create inserts a new contact.
func (r *PGRepository) Create(ctx context.Context, c Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rescue_contacts (name, type, address, city, phone, email, website,
			description, operating_hours, capacity, specialization, services,
			emergency_service, is_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			$10, NULLIF($11, ''), NULLIF($12, ''), $13, $14, TRUE, NOW(), NOW())
		RETURNING id`,
		c.Name, c.Type, c.Address, c.City, c.Phone, c.Email, c.Website,
		c.Description, c.OperatingHours, c.Capacity, c.Specialization, c.Services,
		c.EmergencyService, c.IsVerified,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("rescue: create: %w", err)
	}
	return id, nil
}

// Update applies the partial update and returns the refreshed contact.
func (r *PGRepository) Update(ctx context.Context, id int64, upd Update) (*Contact, error) {
	return scanContact(r.pool.QueryRow(ctx, `
		UPDATE rescue_contacts SET
			name              = COALESCE($2, name),
			type              = COALESCE($3, type),
			address           = COALESCE($4, address),
			city              = COALESCE($5, city),
			phone             = COALESCE($6, phone),
			email             = COALESCE($7, email),
			website           = COALESCE($8, website),
			description       = COALESCE($9, description),
			operating_hours   = COALESCE($10, operating_hours),
			capacity          = COALESCE($11, capacity),
			specialization    = COALESCE($12, specialization),
			services          = COALESCE($13, services),
			emergency_service = COALESCE($14, emergency_service),
			is_verified       = COALESCE($15, is_verified),
			updated_at        = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+contactColumns,
		id, upd.Name, upd.Type, upd.Address, upd.City, upd.Phone, upd.Email,
		upd.Website, upd.Description, upd.OperatingHours, upd.Capacity,
		upd.Specialization, upd.Services, upd.EmergencyService, upd.IsVerified,
	))
}

// SoftDelete deactivates the contact.
func (r *PGRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rescue_contacts SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("rescue: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
