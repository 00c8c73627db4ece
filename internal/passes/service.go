package passes

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
)

// Store is the persistence surface the pass issuer needs.
type Store interface {
	GetFestBySlug(ctx context.Context, slug string) (*models.Fest, error)
	GetByUserAndFest(ctx context.Context, userID, festID int64) (*models.FestPass, error)
	// Create inserts the pass; when a pass already exists for the
	// (user, fest) pair it returns that row instead with created=false.
	Create(ctx context.Context, pass *models.FestPass) (*models.FestPass, bool, error)
	GetByID(ctx context.Context, id int64) (*models.FestPass, error)
	MarkCheckedIn(ctx context.Context, id int64) (*models.FestPass, error)
}

// PrivilegeResolver resolves an actor's capability on a fest.
type PrivilegeResolver interface {
	ResolvePrivilege(ctx context.Context, festID int64, actor fests.Actor) (fests.Privilege, error)
}

// Service implements entry-pass issuance and the gate check-in state
// machine. A pass moves approved/not-checked-in → approved/checked-in
// exactly once; blocked is absorbing and only admin moderation sets it.
type Service struct {
	store Store
	priv  PrivilegeResolver
}

// NewService creates a pass service.
func NewService(store Store, priv PrivilegeResolver) *Service {
	return &Service{store: store, priv: priv}
}

// Claim issues a FestPass for the user on a live fest. Idempotent: an
// existing pass for (user, fest) is returned unchanged. The returned
// bool reports whether a new pass was created.
func (s *Service) Claim(ctx context.Context, slug string, userID int64) (*models.FestPass, bool, error) {
	fest, err := s.store.GetFestBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	if fest.Status != models.FestStatusLive {
		return nil, false, ErrNotLive
	}

	if existing, err := s.store.GetByUserAndFest(ctx, userID, fest.ID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	pass := &models.FestPass{
		UserID: userID,
		FestID: fest.ID,
		Status: models.FestPassApproved,
		QRCode: uuid.New().String(),
	}
	// The unique (user_id, fest_id) constraint makes concurrent claims
	// collapse to one row; Create hands back the winner.
	return s.store.Create(ctx, pass)
}

// GetMine returns the user's pass for the fest.
func (s *Service) GetMine(ctx context.Context, slug string, userID int64) (*models.FestPass, error) {
	fest, err := s.store.GetFestBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.GetByUserAndFest(ctx, userID, fest.ID)
}

// Scan marks a pass as checked in at the gate. Requires the actor to be
// admin or an owner/core member of the fest. The checked_in transition is
// one-way; a second scan fails. Gate admission is fest-entry-only and
// never consults event registrations.
func (s *Service) Scan(ctx context.Context, slug string, passID int64, actor fests.Actor) (*models.FestPass, error) {
	fest, err := s.store.GetFestBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	priv, err := s.priv.ResolvePrivilege(ctx, fest.ID, actor)
	if err != nil {
		return nil, err
	}
	if !priv.Privileged() {
		return nil, ErrForbidden
	}

	pass, err := s.store.GetByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass.FestID != fest.ID {
		return nil, ErrNotFound
	}
	if pass.Status != models.FestPassApproved {
		return nil, ErrPassBlocked
	}
	if pass.CheckedIn {
		return nil, ErrAlreadyUsed
	}
	return s.store.MarkCheckedIn(ctx, pass.ID)
}
