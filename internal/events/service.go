package events

import (
	"context"
	"time"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
)

// Store is the persistence surface the event rules need.
type Store interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) (*models.Event, error)
	// ActiveRegistrationCount counts approved+pending registrations.
	ActiveRegistrationCount(ctx context.Context, eventID int64) (int, error)
}

// PrivilegeResolver resolves an actor's capability on a fest.
type PrivilegeResolver interface {
	ResolvePrivilege(ctx context.Context, festID int64, actor fests.Actor) (fests.Privilege, error)
}

// Service implements event creation and the mutation guard. Listing and
// moderation are plain reads/writes and go straight to the repository.
type Service struct {
	store Store
	priv  PrivilegeResolver
}

// NewService creates an events service.
func NewService(store Store, priv PrivilegeResolver) *Service {
	return &Service{store: store, priv: priv}
}

// CreateEventInput is the validated payload for Create.
type CreateEventInput struct {
	EventType            models.EventType
	Title                string
	Description          string
	Location             string
	Date                 time.Time
	Time                 string
	ImageURL             string
	Category             string
	Price                float64
	FestID               *int64
	CollegeID            *int64
	RequiresRegistration bool
	IsPaid               bool
	RegistrationLimit    *int
	ApprovalMode         models.ApprovalMode
}

// Create creates a pending event on one of the two branches. Fest events
// require committee privilege on the fest; city events require the
// organizer role and are owned by the creator.
func (s *Service) Create(ctx context.Context, in CreateEventInput, actor fests.Actor) (*models.Event, error) {
	var e *models.Event
	switch in.EventType {
	case models.EventTypeFest:
		if in.FestID == nil {
			return nil, models.ErrFestIDRequired
		}
		priv, err := s.priv.ResolvePrivilege(ctx, *in.FestID, actor)
		if err != nil {
			return nil, err
		}
		if !priv.Privileged() {
			return nil, ErrForbidden
		}
		e = models.NewFestEvent(*in.FestID, in.Title, in.Date)
		e.RequiresRegistration = in.RequiresRegistration
		e.IsPaid = in.IsPaid
		e.RegistrationLimit = in.RegistrationLimit
		if in.ApprovalMode != "" {
			if in.ApprovalMode != models.ApprovalAuto && in.ApprovalMode != models.ApprovalManual {
				return nil, ErrUnknownApproval
			}
			e.ApprovalMode = in.ApprovalMode
		}
	case models.EventTypeCity:
		if actor.Role != models.RoleOrganizer && actor.Role != models.RoleAdmin {
			return nil, ErrForbidden
		}
		e = models.NewCityEvent(actor.ID, in.Title, in.Date)
	default:
		return nil, ErrUnknownType
	}

	e.Description = in.Description
	e.Location = in.Location
	e.Time = in.Time
	e.ImageURL = in.ImageURL
	e.Category = in.Category
	e.Price = in.Price
	e.IsFree = in.Price == 0
	e.CollegeID = in.CollegeID

	if err := e.ValidateScope(); err != nil {
		return nil, err
	}
	if err := e.ValidateRegistration(); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, e)
}

// Update applies a patch under the mutation guard. Ownership is checked
// per branch; once an event has active registrations, patches touching
// the registration terms fail with LockedFieldsError listing every
// offending field. Descriptive fields pass regardless.
func (s *Service) Update(ctx context.Context, eventID int64, actor fests.Actor, patch Patch) (*models.Event, error) {
	event, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch event.EventType {
	case models.EventTypeCity:
		if actor.Role != models.RoleAdmin && actor.ID != *event.OrganizerID {
			return nil, ErrForbidden
		}
	case models.EventTypeFest:
		priv, err := s.priv.ResolvePrivilege(ctx, *event.FestID, actor)
		if err != nil {
			return nil, err
		}
		if !priv.Privileged() {
			return nil, ErrForbidden
		}
	}

	activeCount := 0
	if event.EventType == models.EventTypeFest {
		activeCount, err = s.store.ActiveRegistrationCount(ctx, event.ID)
		if err != nil {
			return nil, err
		}
	}
	if locked := lockedFields(event, patch, activeCount); len(locked) > 0 {
		return nil, &LockedFieldsError{Fields: locked}
	}

	applyPatch(event, patch)
	if event.ApprovalMode != models.ApprovalAuto && event.ApprovalMode != models.ApprovalManual {
		return nil, ErrUnknownApproval
	}
	if err := event.ValidateRegistration(); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, event)
}
