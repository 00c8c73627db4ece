package passes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

// Repository handles fest_pass persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a passes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const passColumns = `id, user_id, fest_id, status, qr_code, checked_in, created_at`

func scanPass(row pgx.Row) (*models.FestPass, error) {
	var p models.FestPass
	err := row.Scan(&p.ID, &p.UserID, &p.FestID, &p.Status, &p.QRCode, &p.CheckedIn, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetFestBySlug returns the fest a pass operation targets.
func (r *Repository) GetFestBySlug(ctx context.Context, slug string) (*models.Fest, error) {
	const q = `SELECT id, slug, name, COALESCE(tagline,''), COALESCE(banner_url,''), COALESCE(logo_url,''), college_id, status, created_at
		FROM fests WHERE slug = $1`
	var f models.Fest
	err := r.pool.QueryRow(ctx, q, slug).
		Scan(&f.ID, &f.Slug, &f.Name, &f.Tagline, &f.BannerURL, &f.LogoURL, &f.CollegeID, &f.Status, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// GetByUserAndFest returns the user's pass for a fest.
func (r *Repository) GetByUserAndFest(ctx context.Context, userID, festID int64) (*models.FestPass, error) {
	const q = `SELECT ` + passColumns + ` FROM fest_passes WHERE user_id = $1 AND fest_id = $2`
	return scanPass(r.pool.QueryRow(ctx, q, userID, festID))
}

// GetByID returns a pass by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.FestPass, error) {
	const q = `SELECT ` + passColumns + ` FROM fest_passes WHERE id = $1`
	return scanPass(r.pool.QueryRow(ctx, q, id))
}

// Create inserts a pass. On a (user_id, fest_id) conflict the insert is
// skipped and the existing row is read back, so concurrent claims agree
// on one pass.
func (r *Repository) Create(ctx context.Context, pass *models.FestPass) (*models.FestPass, bool, error) {
	const q = `INSERT INTO fest_passes (user_id, fest_id, status, qr_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, fest_id) DO NOTHING
		RETURNING ` + passColumns
	created, err := scanPass(r.pool.QueryRow(ctx, q, pass.UserID, pass.FestID, string(pass.Status), pass.QRCode))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	existing, err := r.GetByUserAndFest(ctx, pass.UserID, pass.FestID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// MarkCheckedIn flips checked_in to true. The WHERE guard keeps the
// transition one-way even under concurrent scans.
func (r *Repository) MarkCheckedIn(ctx context.Context, id int64) (*models.FestPass, error) {
	const q = `UPDATE fest_passes SET checked_in = TRUE
		WHERE id = $1 AND checked_in = FALSE AND status = 'approved'
		RETURNING ` + passColumns
	pass, err := scanPass(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Row exists but guard failed: a concurrent scan won.
			return nil, ErrAlreadyUsed
		}
		return nil, err
	}
	return pass, nil
}

// Block marks a pass blocked. Admin moderation only; blocked is absorbing.
func (r *Repository) Block(ctx context.Context, id int64) (*models.FestPass, error) {
	const q = `UPDATE fest_passes SET status = 'blocked' WHERE id = $1 RETURNING ` + passColumns
	return scanPass(r.pool.QueryRow(ctx, q, id))
}
