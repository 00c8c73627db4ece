package fests

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

// Repository handles fest and fest_member persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a fests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const festColumns = `id, slug, name, COALESCE(tagline,''), COALESCE(banner_url,''), COALESCE(logo_url,''), college_id, status, created_at`

func scanFest(row pgx.Row) (*models.Fest, error) {
	var f models.Fest
	err := row.Scan(&f.ID, &f.Slug, &f.Name, &f.Tagline, &f.BannerURL, &f.LogoURL, &f.CollegeID, &f.Status, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// GetBySlug returns a fest by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Fest, error) {
	return scanFest(r.pool.QueryRow(ctx, `SELECT `+festColumns+` FROM fests WHERE slug = $1`, slug))
}

// GetByID returns a fest by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Fest, error) {
	return scanFest(r.pool.QueryRow(ctx, `SELECT `+festColumns+` FROM fests WHERE id = $1`, id))
}

// List returns fests newest first, optionally restricted to live ones.
func (r *Repository) List(ctx context.Context, liveOnly bool) ([]models.Fest, error) {
	q := `SELECT ` + festColumns + ` FROM fests ORDER BY created_at DESC`
	if liveOnly {
		q = `SELECT ` + festColumns + ` FROM fests WHERE status = 'live' ORDER BY created_at DESC`
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Fest
	for rows.Next() {
		var f models.Fest
		if err := rows.Scan(&f.ID, &f.Slug, &f.Name, &f.Tagline, &f.BannerURL, &f.LogoURL, &f.CollegeID, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// CreateWithOwner inserts the fest and the creator's owner membership in
// one transaction.
func (r *Repository) CreateWithOwner(ctx context.Context, fest *models.Fest, creatorID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const ins = `INSERT INTO fests (slug, name, tagline, banner_url, logo_url, college_id, status)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6, $7)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, ins, fest.Slug, fest.Name, fest.Tagline, fest.BannerURL, fest.LogoURL, fest.CollegeID, string(fest.Status)).
		Scan(&fest.ID, &fest.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	const mem = `INSERT INTO fest_members (fest_id, user_id, role) VALUES ($1, $2, 'owner')`
	if _, err := tx.Exec(ctx, mem, fest.ID, creatorID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MemberRole returns the user's committee role in the fest, if any.
func (r *Repository) MemberRole(ctx context.Context, festID, userID int64) (models.FestMemberRole, bool, error) {
	const q = `SELECT role FROM fest_members WHERE fest_id = $1 AND user_id = $2`
	var role models.FestMemberRole
	err := r.pool.QueryRow(ctx, q, festID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// UpsertMember adds a user to the fest committee, overwriting the role of
// an existing membership.
func (r *Repository) UpsertMember(ctx context.Context, festID, userID int64, role models.FestMemberRole) (*models.FestMember, error) {
	const q = `INSERT INTO fest_members (fest_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (fest_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, fest_id, user_id, role, created_at`
	var m models.FestMember
	err := r.pool.QueryRow(ctx, q, festID, userID, string(role)).
		Scan(&m.ID, &m.FestID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RemoveMember deletes a committee membership.
func (r *Repository) RemoveMember(ctx context.Context, festID, userID int64) error {
	const q = `DELETE FROM fest_members WHERE fest_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, q, festID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMembers returns the fest committee, oldest membership first.
func (r *Repository) ListMembers(ctx context.Context, festID int64) ([]models.FestMember, error) {
	const q = `SELECT id, fest_id, user_id, role, created_at FROM fest_members
		WHERE fest_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, festID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FestMember
	for rows.Next() {
		var m models.FestMember
		if err := rows.Scan(&m.ID, &m.FestID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SetStatusGuarded writes the new status while holding the fest row lock;
// a transition to live fails with ErrNoOwner unless at least one owner
// membership exists. The lock closes the owner-removed-while-going-live
// window.
func (r *Repository) SetStatusGuarded(ctx context.Context, festID int64, status models.FestStatus) (*models.Fest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT id FROM fests WHERE id = $1 FOR UPDATE`, festID); err != nil {
		return nil, err
	}

	if status == models.FestStatusLive {
		var owners int
		const cnt = `SELECT COUNT(*) FROM fest_members WHERE fest_id = $1 AND role = 'owner'`
		if err := tx.QueryRow(ctx, cnt, festID).Scan(&owners); err != nil {
			return nil, err
		}
		if owners == 0 {
			return nil, ErrNoOwner
		}
	}

	fest, err := scanFest(tx.QueryRow(ctx,
		`UPDATE fests SET status = $1 WHERE id = $2 RETURNING `+festColumns, string(status), festID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return fest, nil
}

// UserExists reports whether a user row exists.
func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
