package terms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/platform/db"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for the terms module.
type Repository interface {
	ListTerms(ctx context.Context) ([]Terms, error)
	GetActive(ctx context.Context) (*Terms, error)
	GetByID(ctx context.Context, id int64) (*Terms, error)
	CreateTerms(ctx context.Context, t Terms) (int64, error)
	// Activate flips the active flag to the given version. The previous
	// active version is unset in the same transaction, so exactly one
	// version is active at any point.
	Activate(ctx context.Context, id int64) error
	// CreateAcceptance writes the audit row and refreshes the account's
	// cached terms fields in one transaction. ErrDuplicate when the user
	// already accepted that version.
	CreateAcceptance(ctx context.Context, a Acceptance) (int64, error)
	ListAcceptances(ctx context.Context, userID uuid.UUID) ([]Acceptance, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const termsColumns = `id, version, content, effective_date, is_active, created_at, updated_at`

func scanTerms(row pgx.Row) (*Terms, error) {
	var t Terms
	err := row.Scan(&t.ID, &t.Version, &t.Content, &t.EffectiveDate, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTerms returns all versions, newest effective date first.
func (r *PGRepository) ListTerms(ctx context.Context) ([]Terms, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+termsColumns+` FROM terms_and_conditions ORDER BY effective_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("terms: list: %w", err)
	}
	defer rows.Close()

	var out []Terms
	for rows.Next() {
		var t Terms
		if err := rows.Scan(&t.ID, &t.Version, &t.Content, &t.EffectiveDate, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetActive returns the currently active version.
func (r *PGRepository) GetActive(ctx context.Context) (*Terms, error) {
	return scanTerms(r.pool.QueryRow(ctx, `SELECT `+termsColumns+` FROM terms_and_conditions WHERE is_active = TRUE`))
}

// GetByID returns a version by ID.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Terms, error) {
	return scanTerms(r.pool.QueryRow(ctx, `SELECT `+termsColumns+` FROM terms_and_conditions WHERE id = $1`, id))
}

// CreateTerms inserts a new inactive version.
func (r *PGRepository) CreateTerms(ctx context.Context, t Terms) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO terms_and_conditions (version, content, effective_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		RETURNING id`,
		t.Version, t.Content, t.EffectiveDate,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: version already exists", shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("terms: create: %w", err)
	}
	return id, nil
}

// Activate makes the given version the single active one.
func (r *PGRepository) Activate(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE terms_and_conditions SET is_active = FALSE, updated_at = NOW() WHERE is_active = TRUE AND id <> $1`,
			id,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE terms_and_conditions SET is_active = TRUE, updated_at = NOW() WHERE id = $1`,
			id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CreateAcceptance writes the audit row and updates the account's cached flags.
func (r *PGRepository) CreateAcceptance(ctx context.Context, a Acceptance) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO terms_acceptance (user_id, terms_id, accepted_at, ip_address, user_agent)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			a.UserID, a.TermsID, a.AcceptedAt, a.IPAddress, a.UserAgent,
		).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: you have already accepted this version", shared.ErrDuplicate)
			}
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET terms_accepted = TRUE, terms_accepted_at = $2, terms_version = $3
			WHERE id = $1`,
			a.UserID, a.AcceptedAt, a.Version,
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListAcceptances returns a user's acceptance history, newest first.
func (r *PGRepository) ListAcceptances(ctx context.Context, userID uuid.UUID) ([]Acceptance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.user_id, a.terms_id, t.version, a.accepted_at, a.ip_address, COALESCE(a.user_agent, '')
		FROM terms_acceptance a
		JOIN terms_and_conditions t ON t.id = a.terms_id
		WHERE a.user_id = $1
		ORDER BY a.accepted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("terms: list acceptances: %w", err)
	}
	defer rows.Close()

	var out []Acceptance
	for rows.Next() {
		var a Acceptance
		if err := rows.Scan(&a.ID, &a.UserID, &a.TermsID, &a.Version, &a.AcceptedAt, &a.IPAddress, &a.UserAgent); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
