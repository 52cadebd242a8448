package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HttpsPratik/new-life/internal/platform/db"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Repository defines persistence operations for pet listings.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Pet, int, error)
	// Get returns the listing with its images. shared.ErrNotFound when the
	// listing does not exist or has been soft deleted.
	Get(ctx context.Context, id uuid.UUID) (*Pet, error)
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Pet, error)
	// SoftDelete deactivates the listing; the row is kept.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// MarkAdopted flips an available listing to ADOPTED and stamps the
	// adoption date. Already-adopted listings are reported as ErrValidation.
	MarkAdopted(ctx context.Context, id uuid.UUID) (*Pet, error)
	// AddImage stores the image record. When the new image is primary, the
	// previous primary is demoted in the same transaction.
	AddImage(ctx context.Context, img Image) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const petColumns = `id, owner_id, name, category, COALESCE(breed, ''), age, gender, size,
	description, COALESCE(health_info, ''), location, contact_phone, contact_email,
	status, is_active, created_at, updated_at, adoption_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (*Pet, error) {
	var p Pet
	err := row.Scan(
		&p.ID, &p.Owner, &p.Name, &p.Category, &p.Breed, &p.Age, &p.Gender, &p.Size,
		&p.Description, &p.HealthInfo, &p.Location, &p.ContactPhone, &p.ContactEmail,
		&p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.AdoptionDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns active listings matching the filter, newest first, plus the
// total match count for pagination.
func (r *PGRepository) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
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
		where = append(where, "location ILIKE "+arg("%"+f.Location+"%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pets WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pets: count: %w", err)
	}

	query := `SELECT ` + petColumns + ` FROM pets WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pets: list: %w", err)
	}
	defer rows.Close()

	var out []Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachImages(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepository) attachImages(ctx context.Context, pets []Pet) error {
	if len(pets) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(pets))
	index := make(map[uuid.UUID]*Pet, len(pets))
	for i := range pets {
		ids[i] = pets[i].ID
		index[pets[i].ID] = &pets[i]
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, pet_id, url, COALESCE(caption, ''), is_primary, uploaded_at
		FROM pet_images WHERE pet_id = ANY($1)
		ORDER BY is_primary DESC, uploaded_at`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("pets: images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.PetID, &img.URL, &img.Caption, &img.IsPrimary, &img.UploadedAt); err != nil {
			return err
		}
		if p, ok := index[img.PetID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

// Get returns one active listing with its images.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Pet, error) {
	p, err := scanPet(r.pool.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = $1 AND is_active = TRUE`, id))
	if err != nil {
		return nil, err
	}
	single := []Pet{*p}
	if err := r.attachImages(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// Create inserts a new listing.
func (r *PGRepository) Create(ctx context.Context, p Pet) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pets (id, owner_id, name, category, breed, age, gender, size,
			description, health_info, location, contact_phone, contact_email,
			status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13, $14, TRUE, NOW(), NOW())`,
		p.ID, p.Owner, p.Name, p.Category, p.Breed, p.Age, p.Gender, p.Size,
		p.Description, p.HealthInfo, p.Location, p.ContactPhone, p.ContactEmail, p.Status,
	)
	if err != nil {
		return fmt.Errorf("pets: create: %w", err)
	}
	return nil
}

// Update applies the partial update and returns the refreshed listing.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, upd Update) (*Pet, error) {
	p, err := scanPet(r.pool.QueryRow(ctx, `
		UPDATE pets SET
			name          = COALESCE($2, name),
			category      = COALESCE($3, category),
			breed         = COALESCE($4, breed),
			age           = COALESCE($5, age),
			gender        = COALESCE($6, gender),
			size          = COALESCE($7, size),
			description   = COALESCE($8, description),
			health_info   = COALESCE($9, health_info),
			location      = COALESCE($10, location),
			contact_phone = COALESCE($11, contact_phone),
			contact_email = COALESCE($12, contact_email),
			status        = COALESCE($13, status),
			updated_at    = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+petColumns,
		id, upd.Name, upd.Category, upd.Breed, upd.Age, upd.Gender, upd.Size,
		upd.Description, upd.HealthInfo, upd.Location, upd.ContactPhone, upd.ContactEmail, upd.Status,
	))
	if err != nil {
		return nil, err
	}
	single := []Pet{*p}
	if err := r.attachImages(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// SoftDelete deactivates the listing.
func (r *PGRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pets SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("pets: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkAdopted stamps the adoption. The status guard makes concurrent adopt
// calls settle on a single winner.
func (r *PGRepository) MarkAdopted(ctx context.Context, id uuid.UUID) (*Pet, error) {
	p, err := scanPet(r.pool.QueryRow(ctx, `
		UPDATE pets SET status = $2, adoption_date = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE AND status <> $2
		RETURNING `+petColumns,
		id, StatusAdopted,
	))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Distinguish a missing listing from an already-adopted one.
			if _, lookupErr := r.Get(ctx, id); lookupErr == nil {
				return nil, fmt.Errorf("%w: pet is already marked as adopted", shared.ErrValidation)
			}
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// AddImage inserts the record, demoting any previous primary image first.
func (r *PGRepository) AddImage(ctx context.Context, img Image) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if img.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE pet_images SET is_primary = FALSE WHERE pet_id = $1 AND is_primary = TRUE`,
				img.PetID,
			); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO pet_images (pet_id, url, caption, is_primary, uploaded_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, NOW())
			RETURNING id`,
			img.PetID, img.URL, img.Caption, img.IsPrimary,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("pets: add image: %w", err)
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
