package events

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/pkg/redis"
	"github.com/eventx/backend/pkg/response"
)

// cacheKeyApproved caches the public approved-events feed.
const cacheKeyApproved = "events:approved"

// Handler handles event HTTP endpoints.
type Handler struct {
	svc    *Service
	repo   *Repository
	cache  *redis.Cache
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(svc *Service, repo *Repository, cache *redis.Cache, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, cache: cache, logger: logger}
}

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	EventType            string    `json:"event_type" binding:"required"`
	Title                string    `json:"title" binding:"required"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	Date                 time.Time `json:"date" binding:"required"`
	Time                 string    `json:"time"`
	ImageURL             string    `json:"image_url"`
	Category             string    `json:"category"`
	Price                float64   `json:"price"`
	FestID               *int64    `json:"fest_id"`
	CollegeID            *int64    `json:"college_id"`
	RequiresRegistration bool      `json:"requires_registration"`
	IsPaid               bool      `json:"is_paid"`
	RegistrationLimit    *int      `json:"registration_limit"`
	ApprovalMode         string    `json:"approval_mode"`
}

// List handles GET /events. Returns the approved feed (public).
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var cached []models.Event
	if h.cache.Get(ctx, cacheKeyApproved, &cached) {
		response.OK(c, cached)
		return
	}
	list, err := h.repo.ListApproved(ctx)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	h.cache.Set(ctx, cacheKeyApproved, list)
	response.OK(c, list)
}

// ListCity handles GET /events/city (public).
func (h *Handler) ListCity(c *gin.Context) {
	list, err := h.repo.ListCity(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// ListMine handles GET /events/mine. Returns the organizer's own events
// in every moderation state.
func (h *Handler) ListMine(c *gin.Context) {
	actor := fests.ActorFromContext(c)
	list, err := h.repo.ListByOrganizer(c.Request.Context(), actor.ID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id (public).
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, event)
}

// ListForFest handles GET /fests/:slug/events. Returns the fest's
// approved events (public).
func (h *Handler) ListForFest(c *gin.Context) {
	festID, err := h.repo.FestIDBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "fest not found")
			return
		}
		response.Internal(c, "failed to load fest")
		return
	}
	list, err := h.repo.ListByFest(c.Request.Context(), festID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Create handles POST /events. New events start pending moderation.
func (h *Handler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := CreateEventInput{
		EventType:            models.EventType(req.EventType),
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		Date:                 req.Date,
		Time:                 req.Time,
		ImageURL:             req.ImageURL,
		Category:             req.Category,
		Price:                req.Price,
		FestID:               req.FestID,
		CollegeID:            req.CollegeID,
		RequiresRegistration: req.RequiresRegistration,
		IsPaid:               req.IsPaid,
		RegistrationLimit:    req.RegistrationLimit,
		ApprovalMode:         models.ApprovalMode(req.ApprovalMode),
	}
	event, err := h.svc.Create(c.Request.Context(), in, fests.ActorFromContext(c))
	if err != nil {
		h.writeEventError(c, err)
		return
	}
	response.Created(c, event)
}

// Patch handles PATCH /events/:id under the mutation guard.
func (h *Handler) Patch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	event, err := h.svc.Update(c.Request.Context(), id, fests.ActorFromContext(c), patch)
	if err != nil {
		h.writeEventError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), cacheKeyApproved)
	response.OK(c, event)
}

// ListPending handles GET /admin/events/pending.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.repo.ListPending(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list pending events")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /admin/events/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	h.moderate(c, models.ModerationApproved)
}

// Reject handles POST /admin/events/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	h.moderate(c, models.ModerationRejected)
}

func (h *Handler) moderate(c *gin.Context, status models.ModerationStatus) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("event moderation failed", zap.Error(err), zap.Int64("event_id", id))
		response.Internal(c, "moderation failed")
		return
	}
	h.cache.Invalidate(c.Request.Context(), cacheKeyApproved)
	response.OK(c, event)
}

func (h *Handler) writeEventError(c *gin.Context, err error) {
	var lfe *LockedFieldsError
	switch {
	case errors.As(err, &lfe):
		response.BadRequest(c, lfe.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "event not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, "you do not manage this event")
	case errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrUnknownApproval),
		errors.Is(err, models.ErrFestIDRequired),
		errors.Is(err, models.ErrOrganizerIDRequired),
		errors.Is(err, models.ErrScopeConflict),
		errors.Is(err, models.ErrPaidNeedsPrice),
		errors.Is(err, models.ErrBadRegistrationCap):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("event operation failed", zap.Error(err))
		response.Internal(c, "operation failed")
	}
}
