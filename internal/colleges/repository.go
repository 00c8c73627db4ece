package colleges

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

var (
	// ErrNotFound is returned when a college lookup misses.
	ErrNotFound = errors.New("college not found")
	// ErrDuplicateName is returned when a college name is already taken.
	ErrDuplicateName = errors.New("college name already exists")
)

// Repository handles college persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a colleges repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const collegeColumns = `id, name, COALESCE(area,''), COALESCE(emoji,''), COALESCE(website,'')`

func scanCollege(row pgx.Row) (*models.College, error) {
	var col models.College
	err := row.Scan(&col.ID, &col.Name, &col.Area, &col.Emoji, &col.Website)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &col, nil
}

// Create inserts a college.
func (r *Repository) Create(ctx context.Context, col *models.College) (*models.College, error) {
	const q = `INSERT INTO colleges (name, area, emoji, website)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + collegeColumns
	created, err := scanCollege(r.pool.QueryRow(ctx, q, col.Name, col.Area, col.Emoji, col.Website))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return created, nil
}

// GetByID returns a college by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.College, error) {
	const q = `SELECT ` + collegeColumns + ` FROM colleges WHERE id = $1`
	return scanCollege(r.pool.QueryRow(ctx, q, id))
}

// List returns all colleges ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.College, error) {
	const q = `SELECT ` + collegeColumns + ` FROM colleges ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make([]models.College, 0)
	for rows.Next() {
		var col models.College
		if err := rows.Scan(&col.ID, &col.Name, &col.Area, &col.Emoji, &col.Website); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// Delete removes a college after unlinking the fests and events that
// reference it; linked records survive with college_id cleared.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE events SET college_id = NULL WHERE college_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE fests SET college_id = NULL WHERE college_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM colleges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
