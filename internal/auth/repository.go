package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository handles user and organizer-request persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, name, email, passwordHash, string(role)).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRole updates a user's role. Reachable only through admin moderation.
func (r *Repository) SetRole(ctx context.Context, userID int64, role models.Role) error {
	const q = `UPDATE users SET role = $1 WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, string(role), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOrganizerRequest inserts a pending organizer request; idempotent per user.
func (r *Repository) CreateOrganizerRequest(ctx context.Context, userID int64) (*models.OrganizerRequest, error) {
	const q = `INSERT INTO organizer_requests (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, status, requested_at, reviewed_at`
	var req models.OrganizerRequest
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&req.ID, &req.UserID, &req.Status, &req.RequestedAt, &req.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingOrganizerRequests returns requests awaiting admin review.
func (r *Repository) ListPendingOrganizerRequests(ctx context.Context) ([]models.OrganizerRequest, error) {
	const q = `SELECT id, user_id, status, requested_at, reviewed_at
		FROM organizer_requests WHERE status = 'pending' ORDER BY requested_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrganizerRequest
	for rows.Next() {
		var req models.OrganizerRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.Status, &req.RequestedAt, &req.ReviewedAt); err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// GetOrganizerRequest returns a request by ID.
func (r *Repository) GetOrganizerRequest(ctx context.Context, id int64) (*models.OrganizerRequest, error) {
	const q = `SELECT id, user_id, status, requested_at, reviewed_at FROM organizer_requests WHERE id = $1`
	var req models.OrganizerRequest
	err := r.pool.QueryRow(ctx, q, id).Scan(&req.ID, &req.UserID, &req.Status, &req.RequestedAt, &req.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ReviewOrganizerRequest marks a request approved or rejected and, on
// approval, promotes the user to organizer. Both writes commit together.
func (r *Repository) ReviewOrganizerRequest(ctx context.Context, requestID int64, approve bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status := models.OrganizerRequestRejected
	if approve {
		status = models.OrganizerRequestApproved
	}
	var userID int64
	const upd = `UPDATE organizer_requests SET status = $1, reviewed_at = NOW() WHERE id = $2 RETURNING user_id`
	if err := tx.QueryRow(ctx, upd, string(status), requestID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if approve {
		if _, err := tx.Exec(ctx, `UPDATE users SET role = 'organizer' WHERE id = $1`, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
