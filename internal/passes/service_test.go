package passes

import (
	"context"
	"errors"
	"testing"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
)

type passKey struct {
	userID int64
	festID int64
}

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	fests  map[string]*models.Fest
	passes map[passKey]*models.FestPass
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fests:  make(map[string]*models.Fest),
		passes: make(map[passKey]*models.FestPass),
	}
}

func (f *fakeStore) addFest(slug string, status models.FestStatus) *models.Fest {
	f.nextID++
	fest := &models.Fest{ID: f.nextID, Slug: slug, Status: status}
	f.fests[slug] = fest
	return fest
}

func (f *fakeStore) GetFestBySlug(_ context.Context, slug string) (*models.Fest, error) {
	fest, ok := f.fests[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return fest, nil
}

func (f *fakeStore) GetByUserAndFest(_ context.Context, userID, festID int64) (*models.FestPass, error) {
	pass, ok := f.passes[passKey{userID, festID}]
	if !ok {
		return nil, ErrNotFound
	}
	return pass, nil
}

func (f *fakeStore) Create(_ context.Context, pass *models.FestPass) (*models.FestPass, bool, error) {
	key := passKey{pass.UserID, pass.FestID}
	if existing, ok := f.passes[key]; ok {
		return existing, false, nil
	}
	f.nextID++
	pass.ID = f.nextID
	f.passes[key] = pass
	return pass, true, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*models.FestPass, error) {
	for _, pass := range f.passes {
		if pass.ID == id {
			return pass, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) MarkCheckedIn(_ context.Context, id int64) (*models.FestPass, error) {
	pass, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if pass.CheckedIn || pass.Status != models.FestPassApproved {
		return nil, ErrAlreadyUsed
	}
	pass.CheckedIn = true
	return pass, nil
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

func newTestService(store *fakeStore, priv map[int64]fests.Privilege) *Service {
	return NewService(store, &fakePrivileges{byUser: priv})
}

func TestClaimIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addFest("techfest", models.FestStatusLive)
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, created, err := svc.Claim(ctx, "techfest", 42)
	if err != nil {
		t.Fatalf("first Claim() error = %v", err)
	}
	if !created {
		t.Fatal("first Claim() created = false, want true")
	}
	if first.CheckedIn {
		t.Fatal("new pass starts checked in")
	}
	if first.QRCode == "" {
		t.Fatal("new pass has empty qr_code")
	}

	second, created, err := svc.Claim(ctx, "techfest", 42)
	if err != nil {
		t.Fatalf("second Claim() error = %v", err)
	}
	if created {
		t.Fatal("second Claim() created = true, want false")
	}
	if second.ID != first.ID {
		t.Fatalf("second Claim() pass id = %d, want %d", second.ID, first.ID)
	}
	if len(store.passes) != 1 {
		t.Fatalf("pass rows = %d, want 1", len(store.passes))
	}
}

func TestClaimRequiresLiveFest(t *testing.T) {
	store := newFakeStore()
	store.addFest("draftfest", models.FestStatusDraft)
	svc := newTestService(store, nil)

	if _, _, err := svc.Claim(context.Background(), "draftfest", 42); !errors.Is(err, ErrNotLive) {
		t.Fatalf("Claim() on draft fest error = %v, want ErrNotLive", err)
	}
	if _, _, err := svc.Claim(context.Background(), "missing", 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Claim() on missing fest error = %v, want ErrNotFound", err)
	}
}

func TestScanStateMachine(t *testing.T) {
	store := newFakeStore()
	store.addFest("techfest", models.FestStatusLive)
	svc := newTestService(store, map[int64]fests.Privilege{1: fests.PrivilegeCore})
	ctx := context.Background()

	pass, _, err := svc.Claim(ctx, "techfest", 42)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	gate := fests.Actor{ID: 1, Role: models.RoleUser}
	scanned, err := svc.Scan(ctx, "techfest", pass.ID, gate)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !scanned.CheckedIn {
		t.Fatal("scanned pass not checked in")
	}

	// Second scan of the same pass fails; checked_in never reverts.
	if _, err := svc.Scan(ctx, "techfest", pass.ID, gate); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("second Scan() error = %v, want ErrAlreadyUsed", err)
	}
	if !pass.CheckedIn {
		t.Fatal("checked_in reverted after failed scan")
	}
}

func TestScanRequiresPrivilege(t *testing.T) {
	store := newFakeStore()
	store.addFest("techfest", models.FestStatusLive)
	svc := newTestService(store, nil)
	ctx := context.Background()

	pass, _, _ := svc.Claim(ctx, "techfest", 42)

	if _, err := svc.Scan(ctx, "techfest", pass.ID, fests.Actor{ID: 9, Role: models.RoleUser}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unprivileged Scan() error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Scan(ctx, "techfest", pass.ID, fests.Actor{ID: 9, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("admin Scan() error = %v", err)
	}
}

func TestScanRejectsBlockedPass(t *testing.T) {
	store := newFakeStore()
	store.addFest("techfest", models.FestStatusLive)
	svc := newTestService(store, nil)
	ctx := context.Background()

	pass, _, _ := svc.Claim(ctx, "techfest", 42)
	pass.Status = models.FestPassBlocked

	if _, err := svc.Scan(ctx, "techfest", pass.ID, fests.Actor{ID: 9, Role: models.RoleAdmin}); !errors.Is(err, ErrPassBlocked) {
		t.Fatalf("Scan() of blocked pass error = %v, want ErrPassBlocked", err)
	}
}

func TestScanWrongFest(t *testing.T) {
	store := newFakeStore()
	store.addFest("techfest", models.FestStatusLive)
	store.addFest("artsfest", models.FestStatusLive)
	svc := newTestService(store, nil)
	ctx := context.Background()

	pass, _, _ := svc.Claim(ctx, "techfest", 42)

	if _, err := svc.Scan(ctx, "artsfest", pass.ID, fests.Actor{ID: 9, Role: models.RoleAdmin}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-fest Scan() error = %v, want ErrNotFound", err)
	}
}
