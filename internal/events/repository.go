package events

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventx/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, event_type, title, COALESCE(description,''), COALESCE(location,''), date,
	COALESCE("time",''), COALESCE(image_url,''), COALESCE(category,''), price, is_free, status,
	organizer_id, college_id, fest_id, requires_registration, is_paid, registration_limit,
	approval_mode, created_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
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

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

// Create inserts a pending event.
func (r *Repository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	const q = `INSERT INTO events (event_type, title, description, location, date, "time",
			image_url, category, price, is_free, status, organizer_id, college_id, fest_id,
			requires_registration, is_paid, registration_limit, approval_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q,
		string(e.EventType), e.Title, e.Description, e.Location, e.Date, e.Time,
		e.ImageURL, e.Category, e.Price, e.IsFree, string(e.Status), e.OrganizerID,
		e.CollegeID, e.FestID, e.RequiresRegistration, e.IsPaid, e.RegistrationLimit,
		string(e.ApprovalMode)))
}

// Update persists every mutable field of the event.
func (r *Repository) Update(ctx context.Context, e *models.Event) (*models.Event, error) {
	const q = `UPDATE events SET title = $2, description = $3, location = $4, date = $5,
			"time" = $6, image_url = $7, category = $8, price = $9, is_free = $10,
			requires_registration = $11, is_paid = $12, registration_limit = $13,
			approval_mode = $14
		WHERE id = $1
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q,
		e.ID, e.Title, e.Description, e.Location, e.Date, e.Time, e.ImageURL,
		e.Category, e.Price, e.IsFree, e.RequiresRegistration, e.IsPaid,
		e.RegistrationLimit, string(e.ApprovalMode)))
}

// SetStatus moves an event through admin moderation.
func (r *Repository) SetStatus(ctx context.Context, id int64, status models.ModerationStatus) (*models.Event, error) {
	const q = `UPDATE events SET status = $2 WHERE id = $1 RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, id, string(status)))
}

// ActiveRegistrationCount counts approved+pending registrations for an event.
func (r *Repository) ActiveRegistrationCount(ctx context.Context, eventID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM event_registrations
		WHERE event_id = $1 AND approval_status IN ('approved', 'pending')`
	var n int
	err := r.pool.QueryRow(ctx, q, eventID).Scan(&n)
	return n, err
}

// ListApproved returns all approved events, soonest first.
func (r *Repository) ListApproved(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE status = 'approved' ORDER BY date ASC`
	return r.list(ctx, q)
}

// ListCity returns approved city events, soonest first.
func (r *Repository) ListCity(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE status = 'approved' AND event_type = 'city' ORDER BY date ASC`
	return r.list(ctx, q)
}

// ListByFest returns a fest's approved events, soonest first.
func (r *Repository) ListByFest(ctx context.Context, festID int64) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE status = 'approved' AND fest_id = $1 ORDER BY date ASC`
	return r.list(ctx, q, festID)
}

// ListByOrganizer returns an organizer's city events in every moderation
// state, newest first.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE organizer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, organizerID)
}

// FestIDBySlug resolves a fest slug for the per-fest event listing.
func (r *Repository) FestIDBySlug(ctx context.Context, slug string) (int64, error) {
	const q = `SELECT id FROM fests WHERE slug = $1`
	var id int64
	err := r.pool.QueryRow(ctx, q, slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// ListPending returns events awaiting moderation, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE status = 'pending' ORDER BY created_at ASC`
	return r.list(ctx, q)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID, &e.EventType, &e.Title, &e.Description, &e.Location, &e.Date,
			&e.Time, &e.ImageURL, &e.Category, &e.Price, &e.IsFree, &e.Status,
			&e.OrganizerID, &e.CollegeID, &e.FestID, &e.RequiresRegistration, &e.IsPaid,
			&e.RegistrationLimit, &e.ApprovalMode, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
