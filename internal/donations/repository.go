package donations

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

// Repository defines persistence operations for donations.
type Repository interface {
	Create(ctx context.Context, d Donation) error
	Get(ctx context.Context, id uuid.UUID) (*Donation, error)
	List(ctx context.Context, f ListFilter) ([]Donation, int, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]Donation, error)
	// Complete flips a pending donation to SUCCESS and stamps completion.
	// Already-settled donations are reported as ErrValidation.
	Complete(ctx context.Context, id uuid.UUID) (*Donation, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const donationColumns = `id, donor_id, COALESCE(donor_name, ''), donor_email, COALESCE(donor_phone, ''),
	amount, currency, payment_method, COALESCE(payment_reference, ''), payment_status,
	COALESCE(message, ''), is_anonymous, created_at, updated_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*Donation, error) {
	var d Donation
	err := row.Scan(
		&d.ID, &d.Donor, &d.DonorName, &d.DonorEmail, &d.DonorPhone,
		&d.Amount, &d.Currency, &d.PaymentMethod, &d.PaymentReference, &d.PaymentStatus,
		&d.Message, &d.IsAnonymous, &d.CreatedAt, &d.UpdatedAt, &d.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a donation record.
func (r *PGRepository) Create(ctx context.Context, d Donation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO donations (id, donor_id, donor_name, donor_email, donor_phone,
			amount, currency, payment_method, payment_reference, payment_status,
			message, is_anonymous, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), $12, NOW(), NOW())`,
		d.ID, d.Donor, d.DonorName, d.DonorEmail, d.DonorPhone,
		d.Amount, d.Currency, d.PaymentMethod, d.PaymentReference, d.PaymentStatus,
		d.Message, d.IsAnonymous,
	)
	if err != nil {
		return fmt.Errorf("donations: create: %w", err)
	}
	return nil
}

// Get returns one donation.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return scanDonation(r.pool.QueryRow(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id = $1`, id))
}

// List returns donations matching the filter, newest first.
func (r *PGRepository) List(ctx context.Context, f ListFilter) ([]Donation, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "payment_status = "+arg(f.Status))
	}
	if f.Method != "" {
		where = append(where, "payment_method = "+arg(f.Method))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("donations: count: %w", err)
	}

	query := `SELECT ` + donationColumns + ` FROM donations WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("donations: list: %w", err)
	}
	defer rows.Close()

	var out []Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// ListByDonor returns a donor's donations, newest first.
func (r *PGRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]Donation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE donor_id = $1 ORDER BY created_at DESC`, donorID)
	if err != nil {
		return nil, fmt.Errorf("donations: list by donor: %w", err)
	}
	defer rows.Close()

	var out []Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Complete marks a pending donation successful. The status guard keeps a
// donation from being completed twice.
func (r *PGRepository) Complete(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, err := scanDonation(r.pool.QueryRow(ctx, `
		UPDATE donations SET payment_status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND payment_status = $3
		RETURNING `+donationColumns,
		id, StatusSuccess, StatusPending,
	))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if _, lookupErr := r.Get(ctx, id); lookupErr == nil {
				return nil, fmt.Errorf("%w: donation is not pending", shared.ErrValidation)
			}
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

var _ Repository = (*PGRepository)(nil)
