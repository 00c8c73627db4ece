package fests_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventx/backend/internal/events"
	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/internal/passes"
	"github.com/eventx/backend/internal/registrations"
)

// world is a shared in-memory store backing every service, so the full
// fest lifecycle can run through the real service layer.
type world struct {
	fests   map[string]*models.Fest
	members map[[2]int64]models.FestMemberRole
	users   map[int64]bool
	passes  map[int64]*models.FestPass
	events  map[int64]*models.Event
	regs    map[int64]*models.EventRegistration
	nextID  int64
}

func newWorld() *world {
	return &world{
		fests:   make(map[string]*models.Fest),
		members: make(map[[2]int64]models.FestMemberRole),
		users:   make(map[int64]bool),
		passes:  make(map[int64]*models.FestPass),
		events:  make(map[int64]*models.Event),
		regs:    make(map[int64]*models.EventRegistration),
	}
}

func (w *world) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *world) festByID(id int64) *models.Fest {
	for _, f := range w.fests {
		if f.ID == id {
			return f
		}
	}
	return nil
}

type festStore struct{ w *world }

func (s festStore) GetBySlug(_ context.Context, slug string) (*models.Fest, error) {
	f, ok := s.w.fests[slug]
	if !ok {
		return nil, fests.ErrNotFound
	}
	return f, nil
}

func (s festStore) CreateWithOwner(_ context.Context, fest *models.Fest, creatorID int64) error {
	if _, ok := s.w.fests[fest.Slug]; ok {
		return fests.ErrDuplicateSlug
	}
	fest.ID = s.w.id()
	s.w.fests[fest.Slug] = fest
	s.w.members[[2]int64{fest.ID, creatorID}] = models.FestRoleOwner
	return nil
}

func (s festStore) MemberRole(_ context.Context, festID, userID int64) (models.FestMemberRole, bool, error) {
	role, ok := s.w.members[[2]int64{festID, userID}]
	return role, ok, nil
}

func (s festStore) UpsertMember(_ context.Context, festID, userID int64, role models.FestMemberRole) (*models.FestMember, error) {
	s.w.members[[2]int64{festID, userID}] = role
	return &models.FestMember{FestID: festID, UserID: userID, Role: role}, nil
}

func (s festStore) RemoveMember(_ context.Context, festID, userID int64) error {
	delete(s.w.members, [2]int64{festID, userID})
	return nil
}

func (s festStore) SetStatusGuarded(_ context.Context, festID int64, status models.FestStatus) (*models.Fest, error) {
	fest := s.w.festByID(festID)
	if fest == nil {
		return nil, fests.ErrNotFound
	}
	if status == models.FestStatusLive {
		hasOwner := false
		for k, role := range s.w.members {
			if k[0] == festID && role == models.FestRoleOwner {
				hasOwner = true
			}
		}
		if !hasOwner {
			return nil, fests.ErrNoOwner
		}
	}
	fest.Status = status
	return fest, nil
}

func (s festStore) UserExists(_ context.Context, userID int64) (bool, error) {
	return s.w.users[userID], nil
}

type passStore struct{ w *world }

func (s passStore) GetFestBySlug(_ context.Context, slug string) (*models.Fest, error) {
	f, ok := s.w.fests[slug]
	if !ok {
		return nil, passes.ErrNotFound
	}
	return f, nil
}

func (s passStore) GetByUserAndFest(_ context.Context, userID, festID int64) (*models.FestPass, error) {
	for _, p := range s.w.passes {
		if p.UserID == userID && p.FestID == festID {
			return p, nil
		}
	}
	return nil, passes.ErrNotFound
}

func (s passStore) Create(_ context.Context, pass *models.FestPass) (*models.FestPass, bool, error) {
	if existing, err := s.GetByUserAndFest(context.Background(), pass.UserID, pass.FestID); err == nil {
		return existing, false, nil
	}
	pass.ID = s.w.id()
	s.w.passes[pass.ID] = pass
	return pass, true, nil
}

func (s passStore) GetByID(_ context.Context, id int64) (*models.FestPass, error) {
	p, ok := s.w.passes[id]
	if !ok {
		return nil, passes.ErrNotFound
	}
	return p, nil
}

func (s passStore) MarkCheckedIn(_ context.Context, id int64) (*models.FestPass, error) {
	p, ok := s.w.passes[id]
	if !ok {
		return nil, passes.ErrNotFound
	}
	if p.CheckedIn || p.Status != models.FestPassApproved {
		return nil, passes.ErrAlreadyUsed
	}
	p.CheckedIn = true
	return p, nil
}

type eventStore struct{ w *world }

func (s eventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e, ok := s.w.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return e, nil
}

func (s eventStore) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	e.ID = s.w.id()
	s.w.events[e.ID] = e
	return e, nil
}

func (s eventStore) Update(_ context.Context, e *models.Event) (*models.Event, error) {
	s.w.events[e.ID] = e
	return e, nil
}

func (s eventStore) ActiveRegistrationCount(_ context.Context, eventID int64) (int, error) {
	n := 0
	for _, r := range s.w.regs {
		if r.EventID == eventID && r.ApprovalStatus != models.RegistrationRejected {
			n++
		}
	}
	return n, nil
}

type regStore struct{ w *world }

func (s regStore) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	e, ok := s.w.events[id]
	if !ok {
		return nil, registrations.ErrNotFound
	}
	return e, nil
}

func (s regStore) GetPassByUserAndFest(_ context.Context, userID, festID int64) (*models.FestPass, error) {
	for _, p := range s.w.passes {
		if p.UserID == userID && p.FestID == festID {
			return p, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (s regStore) GetByPassAndEvent(_ context.Context, festPassID, eventID int64) (*models.EventRegistration, error) {
	for _, r := range s.w.regs {
		if r.FestPassID == festPassID && r.EventID == eventID {
			return r, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (s regStore) CreateCapped(_ context.Context, reg *models.EventRegistration, limit *int) (*models.EventRegistration, bool, error) {
	if limit != nil {
		n, _ := eventStore{s.w}.ActiveRegistrationCount(context.Background(), reg.EventID)
		if n >= *limit {
			return nil, false, registrations.ErrCapacityExceeded
		}
	}
	if existing, err := s.GetByPassAndEvent(context.Background(), reg.FestPassID, reg.EventID); err == nil {
		return existing, false, nil
	}
	reg.ID = s.w.id()
	s.w.regs[reg.ID] = reg
	return reg, true, nil
}

func (s regStore) ListByEvent(_ context.Context, eventID int64) ([]models.EventRegistration, error) {
	out := make([]models.EventRegistration, 0)
	for _, r := range s.w.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s regStore) ListByUser(_ context.Context, userID int64) ([]models.EventRegistration, error) {
	out := make([]models.EventRegistration, 0)
	for _, r := range s.w.regs {
		if p, ok := s.w.passes[r.FestPassID]; ok && p.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type noopGateway struct{}

func (noopGateway) Charge(context.Context, int64, float64) error { return nil }

// TestFestLifecycle walks the whole flow: create a draft fest, go live,
// claim an entry pass, publish a manual-approval fest event, register,
// and finally scan the pass at the gate.
func TestFestLifecycle(t *testing.T) {
	w := newWorld()
	festSvc := fests.NewService(festStore{w})
	passSvc := passes.NewService(passStore{w}, festSvc)
	eventSvc := events.NewService(eventStore{w}, festSvc)
	regSvc := registrations.NewService(regStore{w}, festSvc, noopGateway{})
	ctx := context.Background()

	organizer := fests.Actor{ID: 1, Role: models.RoleOrganizer}
	admin := fests.Actor{ID: 2, Role: models.RoleAdmin}
	attendee := int64(3)

	fest, err := festSvc.CreateFest(ctx, fests.CreateFestInput{Slug: "techfest", Name: "TechFest"}, organizer)
	if err != nil {
		t.Fatalf("CreateFest: %v", err)
	}
	if fest.Status != models.FestStatusDraft {
		t.Fatalf("new fest status = %q, want draft", fest.Status)
	}

	// A pass cannot be claimed while the fest is a draft.
	if _, _, err := passSvc.Claim(ctx, "techfest", attendee); !errors.Is(err, passes.ErrNotLive) {
		t.Fatalf("draft Claim error = %v, want ErrNotLive", err)
	}

	if _, err := festSvc.SetStatus(ctx, "techfest", organizer, models.FestStatusLive); err != nil {
		t.Fatalf("SetStatus live: %v", err)
	}

	pass, created, err := passSvc.Claim(ctx, "techfest", attendee)
	if err != nil || !created {
		t.Fatalf("Claim = (created=%v, err=%v)", created, err)
	}
	if pass.CheckedIn || pass.Status != models.FestPassApproved {
		t.Fatalf("fresh pass = (checked_in=%v, status=%q)", pass.CheckedIn, pass.Status)
	}
	if _, err := uuid.Parse(pass.QRCode); err != nil {
		t.Fatalf("qr_code %q is not a uuid: %v", pass.QRCode, err)
	}

	event, err := eventSvc.Create(ctx, events.CreateEventInput{
		EventType:            models.EventTypeFest,
		Title:                "robowars",
		Date:                 time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC),
		FestID:               &fest.ID,
		RequiresRegistration: true,
		ApprovalMode:         models.ApprovalManual,
	}, organizer)
	if err != nil {
		t.Fatalf("Create event: %v", err)
	}
	if event.Status != models.ModerationPending {
		t.Fatalf("new event status = %q, want pending", event.Status)
	}
	w.events[event.ID].Status = models.ModerationApproved

	reg, created, err := regSvc.Register(ctx, event.ID, attendee)
	if err != nil || !created {
		t.Fatalf("Register = (created=%v, err=%v)", created, err)
	}
	if reg.ApprovalStatus != models.RegistrationPending || reg.PaymentStatus != models.PaymentUnpaid {
		t.Fatalf("registration outcome = (%s, %s), want (pending, unpaid)", reg.ApprovalStatus, reg.PaymentStatus)
	}

	// Gate admission checks the pass only, not event registrations.
	scanned, err := passSvc.Scan(ctx, "techfest", pass.ID, admin)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !scanned.CheckedIn {
		t.Fatal("scanned pass not checked in")
	}
}
