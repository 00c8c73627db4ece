package fests

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/middleware"
	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/pkg/redis"
	"github.com/eventx/backend/pkg/response"
)

// cacheKeyLive caches the public live-fest listing.
const cacheKeyLive = "fests:live"

// Handler handles fest HTTP endpoints.
type Handler struct {
	svc    *Service
	repo   *Repository
	cache  *redis.Cache
	logger *zap.Logger
}

// NewHandler creates a fests handler.
func NewHandler(svc *Service, repo *Repository, cache *redis.Cache, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, cache: cache, logger: logger}
}

// ActorFromContext builds the fest actor from JWT claims set by middleware.
func ActorFromContext(c *gin.Context) Actor {
	return Actor{
		ID:   c.MustGet(middleware.ContextUserID).(int64),
		Role: models.Role(c.MustGet(middleware.ContextUserRole).(string)),
	}
}

// CreateFestRequest is the body for POST /fests.
type CreateFestRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Tagline   string `json:"tagline"`
	BannerURL string `json:"banner_url"`
	LogoURL   string `json:"logo_url"`
	CollegeID *int64 `json:"college_id"`
	Status    string `json:"status"`
}

// AddMemberRequest is the body for POST /fests/:slug/members.
type AddMemberRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// SetStatusRequest is the body for PATCH /fests/:slug/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List handles GET /fests. Returns live fests only (public).
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var cached []models.Fest
	if h.cache.Get(ctx, cacheKeyLive, &cached) {
		response.OK(c, cached)
		return
	}
	list, err := h.repo.List(ctx, true)
	if err != nil {
		h.logger.Error("list fests failed", zap.Error(err))
		response.Internal(c, "failed to list fests")
		return
	}
	h.cache.Set(ctx, cacheKeyLive, list)
	response.OK(c, list)
}

// ListAll handles GET /fests/all. Returns every fest regardless of status
// (admin/organizer only, enforced by route middleware).
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), false)
	if err != nil {
		response.Internal(c, "failed to list fests")
		return
	}
	response.OK(c, list)
}

// Get handles GET /fests/:slug.
func (h *Handler) Get(c *gin.Context) {
	fest, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "fest not found")
			return
		}
		response.Internal(c, "failed to load fest")
		return
	}
	response.OK(c, fest)
}

// Create handles POST /fests. The creator becomes the fest's owner.
func (h *Handler) Create(c *gin.Context) {
	var req CreateFestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := CreateFestInput{
		Slug:      req.Slug,
		Name:      req.Name,
		Tagline:   req.Tagline,
		BannerURL: req.BannerURL,
		LogoURL:   req.LogoURL,
		CollegeID: req.CollegeID,
		Live:      req.Status == string(models.FestStatusLive),
	}
	fest, err := h.svc.CreateFest(c.Request.Context(), in, ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, "only organizers and admins can create fests")
		case errors.Is(err, ErrDuplicateSlug):
			response.Conflict(c, "slug already in use")
		default:
			h.logger.Error("create fest failed", zap.Error(err), zap.String("slug", req.Slug))
			response.Internal(c, "failed to create fest")
		}
		return
	}
	h.cache.Invalidate(c.Request.Context(), cacheKeyLive)
	response.Created(c, fest)
}

// ListMembers handles GET /fests/:slug/members (any authenticated user).
func (h *Handler) ListMembers(c *gin.Context) {
	fest, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "fest not found")
			return
		}
		response.Internal(c, "failed to load fest")
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), fest.ID)
	if err != nil {
		response.Internal(c, "failed to list members")
		return
	}
	response.OK(c, members)
}

// AddMember handles POST /fests/:slug/members.
func (h *Handler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := models.FestMemberRole(req.Role)
	if req.Role == "" {
		role = models.FestRoleVolunteer
	}
	member, err := h.svc.AddMember(c.Request.Context(), c.Param("slug"), ActorFromContext(c), req.UserID, role)
	if err != nil {
		h.writeMemberError(c, err)
		return
	}
	response.Created(c, member)
}

// RemoveMember handles DELETE /fests/:slug/members/:user_id.
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), c.Param("slug"), ActorFromContext(c), userID); err != nil {
		h.writeMemberError(c, err)
		return
	}
	response.NoContent(c)
}

// SetStatus handles PATCH /fests/:slug/status.
func (h *Handler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	fest, err := h.svc.SetStatus(c.Request.Context(), c.Param("slug"), ActorFromContext(c), models.FestStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "fest not found")
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, "must be a fest owner or core member")
		case errors.Is(err, ErrNoOwner):
			response.BadRequest(c, "cannot set fest to live: no owner exists")
		case errors.Is(err, ErrUnknownStatus):
			response.BadRequest(c, "status must be draft or live")
		default:
			h.logger.Error("set fest status failed", zap.Error(err))
			response.Internal(c, "failed to update status")
		}
		return
	}
	h.cache.Invalidate(c.Request.Context(), cacheKeyLive)
	response.OK(c, fest)
}

func (h *Handler) writeMemberError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, "insufficient fest privileges")
	case errors.Is(err, ErrUnknownRole):
		response.BadRequest(c, "role must be owner, core, or volunteer")
	default:
		h.logger.Error("fest member operation failed", zap.Error(err))
		response.Internal(c, "operation failed")
	}
}
