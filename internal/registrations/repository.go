package registrations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

// Repository handles event_registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const regColumns = `id, fest_pass_id, event_id, approval_status, payment_status, created_at`

func scanRegistration(row pgx.Row) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := row.Scan(&reg.ID, &reg.FestPassID, &reg.EventID, &reg.ApprovalStatus, &reg.PaymentStatus, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// GetEvent returns the event a registration operation targets.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	const q = `SELECT id, event_type, title, COALESCE(description,''), COALESCE(location,''), date,
		COALESCE("time",''), COALESCE(image_url,''), COALESCE(category,''), price, is_free, status,
		organizer_id, college_id, fest_id, requires_registration, is_paid, registration_limit,
		approval_mode, created_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&e.ID, &e.EventType, &e.Title, &e.Description, &e.Location, &e.Date,
		&e.Time, &e.ImageURL, &e.Category, &e.Price, &e.IsFree, &e.Status,
		&e.OrganizerID, &e.CollegeID, &e.FestID, &e.RequiresRegistration, &e.IsPaid,
		&e.RegistrationLimit, &e.ApprovalMode, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetPassByUserAndFest returns the user's entry pass for a fest.
func (r *Repository) GetPassByUserAndFest(ctx context.Context, userID, festID int64) (*models.FestPass, error) {
	const q = `SELECT id, user_id, fest_id, status, qr_code, checked_in, created_at
		FROM fest_passes WHERE user_id = $1 AND fest_id = $2`
	var p models.FestPass
	err := r.pool.QueryRow(ctx, q, userID, festID).
		Scan(&p.ID, &p.UserID, &p.FestID, &p.Status, &p.QRCode, &p.CheckedIn, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByPassAndEvent returns the registration for one (pass, event) pair.
func (r *Repository) GetByPassAndEvent(ctx context.Context, festPassID, eventID int64) (*models.EventRegistration, error) {
	const q = `SELECT ` + regColumns + ` FROM event_registrations
		WHERE fest_pass_id = $1 AND event_id = $2`
	return scanRegistration(r.pool.QueryRow(ctx, q, festPassID, eventID))
}

// CreateCapped inserts a registration under the event's capacity limit.
// The event row is locked for the transaction so the active count cannot
// move between the check and the insert; concurrent registrations
// serialize on the lock and over-subscription cannot commit.
func (r *Repository) CreateCapped(ctx context.Context, reg *models.EventRegistration, limit *int) (*models.EventRegistration, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	if limit != nil {
		var locked int64
		const lockQ = `SELECT id FROM events WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockQ, reg.EventID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, false, ErrNotFound
			}
			return nil, false, err
		}

		var active int
		const countQ = `SELECT COUNT(*) FROM event_registrations
			WHERE event_id = $1 AND approval_status IN ('approved', 'pending')`
		if err := tx.QueryRow(ctx, countQ, reg.EventID).Scan(&active); err != nil {
			return nil, false, err
		}
		if active >= *limit {
			return nil, false, ErrCapacityExceeded
		}
	}

	const insertQ = `INSERT INTO event_registrations (fest_pass_id, event_id, approval_status, payment_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fest_pass_id, event_id) DO NOTHING
		RETURNING ` + regColumns
	created, err := scanRegistration(tx.QueryRow(ctx, insertQ,
		reg.FestPassID, reg.EventID, string(reg.ApprovalStatus), string(reg.PaymentStatus)))
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// Conflict: a concurrent registration for the same pair won.
	existing, err := scanRegistration(tx.QueryRow(ctx,
		`SELECT `+regColumns+` FROM event_registrations WHERE fest_pass_id = $1 AND event_id = $2`,
		reg.FestPassID, reg.EventID))
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ListByEvent returns all registrations for an event, oldest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	const q = `SELECT ` + regColumns + ` FROM event_registrations
		WHERE event_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, q, eventID)
}

// ListByUser returns the user's registrations across all their passes,
// newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.EventRegistration, error) {
	const q = `SELECT r.id, r.fest_pass_id, r.event_id, r.approval_status, r.payment_status, r.created_at
		FROM event_registrations r
		JOIN fest_passes p ON p.id = r.fest_pass_id
		WHERE p.user_id = $1
		ORDER BY r.created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *Repository) list(ctx context.Context, q string, arg any) ([]models.EventRegistration, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.EventRegistration, 0)
	for rows.Next() {
		var reg models.EventRegistration
		if err := rows.Scan(&reg.ID, &reg.FestPassID, &reg.EventID, &reg.ApprovalStatus, &reg.PaymentStatus, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
