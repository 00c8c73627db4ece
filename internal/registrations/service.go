package registrations

import (
	"context"
	"errors"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/internal/payments"
)

// Store is the persistence surface the registration engine needs.
type Store interface {
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	GetPassByUserAndFest(ctx context.Context, userID, festID int64) (*models.FestPass, error)
	GetByPassAndEvent(ctx context.Context, festPassID, eventID int64) (*models.EventRegistration, error)
	// CreateCapped inserts the registration, enforcing the capacity limit
	// (nil = unlimited) against the event's active registration count in
	// the same transaction. A concurrent duplicate insert for the same
	// (pass, event) pair yields the existing row with created=false.
	CreateCapped(ctx context.Context, reg *models.EventRegistration, limit *int) (*models.EventRegistration, bool, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
	ListByUser(ctx context.Context, userID int64) ([]models.EventRegistration, error)
}

// PrivilegeResolver resolves an actor's capability on a fest.
type PrivilegeResolver interface {
	ResolvePrivilege(ctx context.Context, festID int64, actor fests.Actor) (fests.Privilege, error)
}

// Service implements the event registration engine. Registration is a
// pipeline of ordered checks that short-circuits on the first failure;
// the capacity check and insert run inside one transaction so the
// count-then-insert window is closed.
type Service struct {
	store   Store
	priv    PrivilegeResolver
	gateway payments.Gateway
}

// NewService creates a registration service.
func NewService(store Store, priv PrivilegeResolver, gateway payments.Gateway) *Service {
	return &Service{store: store, priv: priv, gateway: gateway}
}

// Register registers the user for a fest event through their entry pass.
// Idempotent: an existing registration for the pair is returned unchanged
// and bypasses capacity re-validation. The returned bool reports whether
// a new registration was created.
func (s *Service) Register(ctx context.Context, eventID, userID int64) (*models.EventRegistration, bool, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if event.EventType != models.EventTypeFest {
		return nil, false, ErrWrongEventType
	}
	if !event.RequiresRegistration {
		return nil, false, ErrRegistrationNotRequired
	}

	pass, err := s.store.GetPassByUserAndFest(ctx, userID, *event.FestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, ErrNoEntryPass
		}
		return nil, false, err
	}
	if pass.Status != models.FestPassApproved {
		return nil, false, ErrNoEntryPass
	}

	if existing, err := s.store.GetByPassAndEvent(ctx, pass.ID, event.ID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	reg := &models.EventRegistration{
		FestPassID:     pass.ID,
		EventID:        event.ID,
		ApprovalStatus: models.RegistrationApproved,
		PaymentStatus:  models.PaymentUnpaid,
	}
	switch {
	case event.IsPaid:
		if err := s.gateway.Charge(ctx, userID, event.Price); err != nil {
			return nil, false, err
		}
		reg.PaymentStatus = models.PaymentPaid
	case event.ApprovalMode == models.ApprovalManual:
		reg.ApprovalStatus = models.RegistrationPending
	}

	return s.store.CreateCapped(ctx, reg, event.RegistrationLimit)
}

// ListForEvent returns all registrations for a fest event. Requires the
// actor to be admin or an owner/core member of the event's fest.
func (s *Service) ListForEvent(ctx context.Context, eventID int64, actor fests.Actor) ([]models.EventRegistration, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.EventType != models.EventTypeFest {
		return nil, ErrWrongEventType
	}
	priv, err := s.priv.ResolvePrivilege(ctx, *event.FestID, actor)
	if err != nil {
		return nil, err
	}
	if !priv.Privileged() {
		return nil, ErrForbidden
	}
	return s.store.ListByEvent(ctx, eventID)
}

// ListMine returns the user's registrations across all their passes,
// newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]models.EventRegistration, error) {
	return s.store.ListByUser(ctx, userID)
}
