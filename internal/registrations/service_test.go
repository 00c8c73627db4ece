package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
)

type regKey struct {
	passID  int64
	eventID int64
}

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	events map[int64]*models.Event
	passes map[int64]*models.FestPass // keyed by user ID, one fest per test
	regs   map[regKey]*models.EventRegistration
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[int64]*models.Event),
		passes: make(map[int64]*models.FestPass),
		regs:   make(map[regKey]*models.EventRegistration),
	}
}

func (f *fakeStore) addFestEvent(mutate func(*models.Event)) *models.Event {
	f.nextID++
	e := models.NewFestEvent(1, "robowars", testDate())
	e.ID = f.nextID
	e.RequiresRegistration = true
	if mutate != nil {
		mutate(e)
	}
	f.events[e.ID] = e
	return e
}

func (f *fakeStore) addPass(userID int64, status models.FestPassStatus) *models.FestPass {
	f.nextID++
	pass := &models.FestPass{ID: f.nextID, UserID: userID, FestID: 1, Status: status}
	f.passes[userID] = pass
	return pass
}

func (f *fakeStore) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) GetPassByUserAndFest(_ context.Context, userID, festID int64) (*models.FestPass, error) {
	pass, ok := f.passes[userID]
	if !ok || pass.FestID != festID {
		return nil, ErrNotFound
	}
	return pass, nil
}

func (f *fakeStore) GetByPassAndEvent(_ context.Context, festPassID, eventID int64) (*models.EventRegistration, error) {
	reg, ok := f.regs[regKey{festPassID, eventID}]
	if !ok {
		return nil, ErrNotFound
	}
	return reg, nil
}

func (f *fakeStore) CreateCapped(_ context.Context, reg *models.EventRegistration, limit *int) (*models.EventRegistration, bool, error) {
	if limit != nil {
		active := 0
		for _, r := range f.regs {
			if r.EventID == reg.EventID && r.ApprovalStatus != models.RegistrationRejected {
				active++
			}
		}
		if active >= *limit {
			return nil, false, ErrCapacityExceeded
		}
	}
	key := regKey{reg.FestPassID, reg.EventID}
	if existing, ok := f.regs[key]; ok {
		return existing, false, nil
	}
	f.nextID++
	reg.ID = f.nextID
	f.regs[key] = reg
	return reg, true, nil
}

func (f *fakeStore) ListByEvent(_ context.Context, eventID int64) ([]models.EventRegistration, error) {
	out := make([]models.EventRegistration, 0)
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]models.EventRegistration, error) {
	pass, ok := f.passes[userID]
	if !ok {
		return []models.EventRegistration{}, nil
	}
	out := make([]models.EventRegistration, 0)
	for _, r := range f.regs {
		if r.FestPassID == pass.ID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// fakePrivileges resolves privilege from a static map.
type fakePrivileges struct {
	byUser map[int64]fests.Privilege
}

func (f *fakePrivileges) ResolvePrivilege(_ context.Context, _ int64, actor fests.Actor) (fests.Privilege, error) {
	if actor.Role == models.RoleAdmin {
		return fests.PrivilegeAdmin, nil
	}
	return f.byUser[actor.ID], nil
}

// countingGateway records charges.
type countingGateway struct {
	charges []float64
}

func (g *countingGateway) Charge(_ context.Context, _ int64, amount float64) error {
	g.charges = append(g.charges, amount)
	return nil
}

func testDate() time.Time {
	return time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore, priv map[int64]fests.Privilege) (*Service, *countingGateway) {
	gw := &countingGateway{}
	return NewService(store, &fakePrivileges{byUser: priv}, gw), gw
}

func TestRegisterOrderedChecks(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)
	ctx := context.Background()

	city := models.NewCityEvent(5, "concert", testDate())
	store.nextID++
	city.ID = store.nextID
	store.events[city.ID] = city

	open := store.addFestEvent(func(e *models.Event) { e.RequiresRegistration = false })
	gated := store.addFestEvent(nil)

	if _, _, err := svc.Register(ctx, 999, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing event error = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.Register(ctx, city.ID, 42); !errors.Is(err, ErrWrongEventType) {
		t.Fatalf("city event error = %v, want ErrWrongEventType", err)
	}
	if _, _, err := svc.Register(ctx, open.ID, 42); !errors.Is(err, ErrRegistrationNotRequired) {
		t.Fatalf("open event error = %v, want ErrRegistrationNotRequired", err)
	}
	if _, _, err := svc.Register(ctx, gated.ID, 42); !errors.Is(err, ErrNoEntryPass) {
		t.Fatalf("no pass error = %v, want ErrNoEntryPass", err)
	}

	store.addPass(42, models.FestPassBlocked)
	if _, _, err := svc.Register(ctx, gated.ID, 42); !errors.Is(err, ErrNoEntryPass) {
		t.Fatalf("blocked pass error = %v, want ErrNoEntryPass", err)
	}
}

func TestRegisterOutcomeMatrix(t *testing.T) {
	tests := []struct {
		name         string
		isPaid       bool
		price        float64
		approvalMode models.ApprovalMode
		wantApproval models.RegistrationApproval
		wantPayment  models.RegistrationPayment
		wantCharges  int
	}{
		{"paid event", true, 250, models.ApprovalAuto, models.RegistrationApproved, models.PaymentPaid, 1},
		{"free auto event", false, 0, models.ApprovalAuto, models.RegistrationApproved, models.PaymentUnpaid, 0},
		{"free manual event", false, 0, models.ApprovalManual, models.RegistrationPending, models.PaymentUnpaid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc, gw := newTestService(store, nil)
			event := store.addFestEvent(func(e *models.Event) {
				e.IsPaid = tt.isPaid
				e.Price = tt.price
				e.ApprovalMode = tt.approvalMode
			})
			store.addPass(42, models.FestPassApproved)

			reg, created, err := svc.Register(context.Background(), event.ID, 42)
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if !created {
				t.Fatal("Register() created = false, want true")
			}
			if reg.ApprovalStatus != tt.wantApproval || reg.PaymentStatus != tt.wantPayment {
				t.Fatalf("outcome = (%s, %s), want (%s, %s)",
					reg.ApprovalStatus, reg.PaymentStatus, tt.wantApproval, tt.wantPayment)
			}
			if len(gw.charges) != tt.wantCharges {
				t.Fatalf("charges = %d, want %d", len(gw.charges), tt.wantCharges)
			}
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, gw := newTestService(store, nil)
	ctx := context.Background()
	limit := 1
	event := store.addFestEvent(func(e *models.Event) {
		e.IsPaid = true
		e.Price = 100
		e.RegistrationLimit = &limit
	})
	store.addPass(42, models.FestPassApproved)

	first, created, err := svc.Register(ctx, event.ID, 42)
	if err != nil || !created {
		t.Fatalf("first Register() = (created=%v, err=%v)", created, err)
	}

	// The repeat call returns the same row before the capacity check runs
	// and is never charged again.
	second, created, err := svc.Register(ctx, event.ID, 42)
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if created {
		t.Fatal("second Register() created = true, want false")
	}
	if second.ID != first.ID {
		t.Fatalf("second Register() id = %d, want %d", second.ID, first.ID)
	}
	if len(gw.charges) != 1 {
		t.Fatalf("charges = %d, want 1", len(gw.charges))
	}
}

func TestRegisterCapacity(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, nil)
	ctx := context.Background()
	limit := 2
	event := store.addFestEvent(func(e *models.Event) { e.RegistrationLimit = &limit })

	for userID := int64(1); userID <= 2; userID++ {
		store.addPass(userID, models.FestPassApproved)
		if _, _, err := svc.Register(ctx, event.ID, userID); err != nil {
			t.Fatalf("Register(user %d) error = %v", userID, err)
		}
	}

	store.addPass(3, models.FestPassApproved)
	if _, _, err := svc.Register(ctx, event.ID, 3); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("over-limit Register() error = %v, want ErrCapacityExceeded", err)
	}
}

func TestListForEventPrivilege(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, map[int64]fests.Privilege{1: fests.PrivilegeOwner})
	ctx := context.Background()
	event := store.addFestEvent(nil)
	store.addPass(42, models.FestPassApproved)
	if _, _, err := svc.Register(ctx, event.ID, 42); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.ListForEvent(ctx, event.ID, fests.Actor{ID: 9, Role: models.RoleUser}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unprivileged list error = %v, want ErrForbidden", err)
	}
	regs, err := svc.ListForEvent(ctx, event.ID, fests.Actor{ID: 1, Role: models.RoleUser})
	if err != nil {
		t.Fatalf("owner list error = %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("registrations = %d, want 1", len(regs))
	}
}
