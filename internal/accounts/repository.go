package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/platform/db"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for the accounts module.
type Repository interface {
	// CreateUser inserts the account and its initial verification token in
	// one transaction, so a valid registration always leaves exactly one
	// live verification token behind.
	CreateUser(ctx context.Context, user *User, token VerificationToken) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// ReplaceVerificationToken supersedes any live verification token for
	// the token's account.
	ReplaceVerificationToken(ctx context.Context, token VerificationToken) error
	// ConsumeVerificationToken atomically marks the account verified and
	// deletes the token. ErrInvalidToken for unknown tokens, ErrExpiredToken
	// past expiry.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error)

	// ReplaceResetToken deletes all unused reset tokens for the account and
	// inserts the new one in a single transaction.
	ReplaceResetToken(ctx context.Context, token ResetToken) error
	GetResetToken(ctx context.Context, token string) (*ResetToken, error)
	// ConsumeResetToken atomically marks the token used and replaces the
	// account password. The conditional update decides concurrent races.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error)
	// DeleteResetToken removes a token that was issued but whose reset email
	// could not be dispatched.
	DeleteResetToken(ctx context.Context, token string) error
}

const userColumns = `id, email, password_hash, full_name,
	COALESCE(phone_number, ''), COALESCE(location, ''), role, is_staff,
	is_active, is_verified, terms_accepted, terms_accepted_at,
	COALESCE(terms_version, ''), date_joined, last_login`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.PhoneNumber, &u.Location, &u.Role, &u.IsStaff,
		&u.IsActive, &u.IsVerified, &u.TermsAccepted, &u.TermsAcceptedAt,
		&u.TermsVersion, &u.DateJoined, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts the account and its verification token transactionally.
func (r *PGRepository) CreateUser(ctx context.Context, user *User, token VerificationToken) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (
				id, email, password_hash, full_name, phone_number, location,
				role, is_staff, is_active, is_verified, terms_accepted,
				terms_accepted_at, terms_version, date_joined
			) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14)`,
			user.ID, user.Email, user.PasswordHash, user.FullName,
			user.PhoneNumber, user.Location, user.Role, user.IsStaff,
			user.IsActive, user.IsVerified, user.TermsAccepted,
			user.TermsAcceptedAt, user.TermsVersion, user.DateJoined,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO email_verification_tokens (token, user_id, created_at, expires_at)
			VALUES ($1, $2, $3, $4)`,
			token.Token, token.UserID, token.CreatedAt, token.ExpiresAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a user with this email already exists", shared.ErrDuplicate)
		}
		return fmt.Errorf("accounts: create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user by case-normalized email.
func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID fetches a user by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateProfile updates the mutable profile fields and returns the fresh row.
func (r *PGRepository) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			full_name    = COALESCE($2, full_name),
			phone_number = COALESCE($3, phone_number),
			location     = COALESCE($4, location)
		WHERE id = $1
		RETURNING `+userColumns,
		id, upd.FullName, upd.PhoneNumber, upd.Location,
	)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("accounts: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TouchLastLogin records the login timestamp.
func (r *PGRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

// ReplaceVerificationToken supersedes the previous token for the account.
func (r *PGRepository) ReplaceVerificationToken(ctx context.Context, token VerificationToken) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM email_verification_tokens WHERE user_id = $1`, token.UserID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO email_verification_tokens (token, user_id, created_at, expires_at)
			VALUES ($1, $2, $3, $4)`,
			token.Token, token.UserID, token.CreatedAt, token.ExpiresAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("accounts: replace verification token: %w", err)
	}
	return nil
}

// ConsumeVerificationToken verifies the account and deletes the token.
func (r *PGRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	var user *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var userID uuid.UUID
		var expiresAt time.Time
		err := tx.QueryRow(ctx,
			`SELECT user_id, expires_at FROM email_verification_tokens WHERE token = $1`,
			token,
		).Scan(&userID, &expiresAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrInvalidToken
			}
			return err
		}
		if !now.Before(expiresAt) {
			return shared.ErrExpiredToken
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM email_verification_tokens WHERE token = $1`, token); err != nil {
			return err
		}
		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ReplaceResetToken enforces the single-live-reset-token policy.
func (r *PGRepository) ReplaceResetToken(ctx context.Context, token ResetToken) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM password_reset_tokens WHERE user_id = $1 AND is_used = FALSE`,
			token.UserID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO password_reset_tokens (token, user_id, created_at, expires_at, is_used)
			VALUES ($1, $2, $3, $4, FALSE)`,
			token.Token, token.UserID, token.CreatedAt, token.ExpiresAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("accounts: replace reset token: %w", err)
	}
	return nil
}

// GetResetToken fetches a reset token by value.
func (r *PGRepository) GetResetToken(ctx context.Context, token string) (*ResetToken, error) {
	var t ResetToken
	err := r.pool.QueryRow(ctx, `
		SELECT token, user_id, created_at, expires_at, is_used
		FROM password_reset_tokens WHERE token = $1`,
		token,
	).Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	return &t, nil
}

// ConsumeResetToken marks the token used and replaces the password.
func (r *PGRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error) {
	var user *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var t ResetToken
		err := tx.QueryRow(ctx, `
			SELECT token, user_id, created_at, expires_at, is_used
			FROM password_reset_tokens WHERE token = $1`,
			token,
		).Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrInvalidToken
			}
			return err
		}
		if t.IsUsed {
			return shared.ErrUsedToken
		}
		if !now.Before(t.ExpiresAt) {
			return shared.ErrExpiredToken
		}

		// Conditional update decides concurrent consumers; the loser sees
		// zero rows and reports the token as used.
		tag, err := tx.Exec(ctx,
			`UPDATE password_reset_tokens SET is_used = TRUE WHERE token = $1 AND is_used = FALSE`,
			token,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrUsedToken
		}

		if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, t.UserID, passwordHash); err != nil {
			return err
		}
		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, t.UserID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteResetToken removes a token after a failed email dispatch.
func (r *PGRepository) DeleteResetToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE token = $1`, token)
	return err
}

var _ Repository = (*PGRepository)(nil)
