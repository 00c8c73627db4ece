package fests

import (
	"context"

	"github.com/eventx/backend/internal/models"
)

// Store is the persistence surface the fest registry needs.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (*models.Fest, error)
	// CreateWithOwner inserts the fest and an owner membership for
	// creatorID in one transaction; both rows commit or neither does.
	CreateWithOwner(ctx context.Context, fest *models.Fest, creatorID int64) error
	MemberRole(ctx context.Context, festID, userID int64) (models.FestMemberRole, bool, error)
	UpsertMember(ctx context.Context, festID, userID int64, role models.FestMemberRole) (*models.FestMember, error)
	RemoveMember(ctx context.Context, festID, userID int64) error
	// SetStatusGuarded persists the transition; it fails with ErrNoOwner
	// when status is live and the fest has no owner member, checking and
	// writing under the fest row lock.
	SetStatusGuarded(ctx context.Context, festID int64, status models.FestStatus) (*models.Fest, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Service implements the fest registry rules: who may create fests,
// manage committee membership, and flip a fest between draft and live.
type Service struct {
	store Store
}

// NewService creates a fest registry service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateFestInput is the validated payload for CreateFest.
type CreateFestInput struct {
	Slug      string
	Name      string
	Tagline   string
	BannerURL string
	LogoURL   string
	CollegeID *int64
	Live      bool
}

// CreateFest creates a fest plus its creator's owner membership atomically.
// Only organizers and admins may create fests.
func (s *Service) CreateFest(ctx context.Context, in CreateFestInput, actor Actor) (*models.Fest, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleOrganizer {
		return nil, ErrForbidden
	}
	status := models.FestStatusDraft
	if in.Live {
		status = models.FestStatusLive
	}
	fest := &models.Fest{
		Slug:      in.Slug,
		Name:      in.Name,
		Tagline:   in.Tagline,
		BannerURL: in.BannerURL,
		LogoURL:   in.LogoURL,
		CollegeID: in.CollegeID,
		Status:    status,
	}
	if err := s.store.CreateWithOwner(ctx, fest, actor.ID); err != nil {
		return nil, err
	}
	return fest, nil
}

// AddMember upserts a committee membership. Requires fest privilege;
// granting owner requires a platform admin. Existing memberships have
// their role overwritten.
func (s *Service) AddMember(ctx context.Context, slug string, actor Actor, targetUserID int64, role models.FestMemberRole) (*models.FestMember, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}
	fest, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	priv, err := s.ResolvePrivilege(ctx, fest.ID, actor)
	if err != nil {
		return nil, err
	}
	if !priv.Privileged() {
		return nil, ErrForbidden
	}
	if role == models.FestRoleOwner && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	ok, err := s.store.UserExists(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.UpsertMember(ctx, fest.ID, targetUserID, role)
}

// RemoveMember deletes a committee membership. Owners may only be
// removed by an admin.
func (s *Service) RemoveMember(ctx context.Context, slug string, actor Actor, targetUserID int64) error {
	fest, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	priv, err := s.ResolvePrivilege(ctx, fest.ID, actor)
	if err != nil {
		return err
	}
	if !priv.Privileged() {
		return ErrForbidden
	}
	role, ok, err := s.store.MemberRole(ctx, fest.ID, targetUserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if role == models.FestRoleOwner && actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return s.store.RemoveMember(ctx, fest.ID, targetUserID)
}

// SetStatus moves a fest between draft and live. Going live requires at
// least one owner membership; the store enforces that under lock.
func (s *Service) SetStatus(ctx context.Context, slug string, actor Actor, status models.FestStatus) (*models.Fest, error) {
	if status != models.FestStatusDraft && status != models.FestStatusLive {
		return nil, ErrUnknownStatus
	}
	fest, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	priv, err := s.ResolvePrivilege(ctx, fest.ID, actor)
	if err != nil {
		return nil, err
	}
	if !priv.Privileged() {
		return nil, ErrForbidden
	}
	return s.store.SetStatusGuarded(ctx, fest.ID, status)
}
