package registrations

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/middleware"
	"github.com/eventx/backend/pkg/response"
)

// Handler handles event-registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /fest-events/:id/register. Returns 201 on a new
// registration, 200 with the existing one on repeat calls.
func (h *Handler) Register(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(int64)

	reg, created, err := h.svc.Register(c.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "event not found")
		case errors.Is(err, ErrWrongEventType):
			response.BadRequest(c, "registrations are only taken for fest events")
		case errors.Is(err, ErrRegistrationNotRequired):
			response.BadRequest(c, "this event does not take registrations")
		case errors.Is(err, ErrNoEntryPass):
			response.BadRequest(c, "claim an entry pass for the fest first")
		case errors.Is(err, ErrCapacityExceeded):
			response.BadRequest(c, "registration limit reached")
		default:
			h.logger.Error("register failed", zap.Error(err),
				zap.Int64("event_id", eventID), zap.Int64("user_id", userID))
			response.Internal(c, "registration failed")
		}
		return
	}
	if created {
		response.Created(c, reg)
		return
	}
	response.OK(c, reg)
}

// ListForEvent handles GET /fest-events/:id/registrations (owner/core/admin).
func (h *Handler) ListForEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	regs, err := h.svc.ListForEvent(c.Request.Context(), eventID, fests.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "event not found")
		case errors.Is(err, ErrWrongEventType):
			response.BadRequest(c, "city events have no registrations")
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, "listing registrations requires owner or core member role")
		default:
			response.Internal(c, "failed to list registrations")
		}
		return
	}
	response.OK(c, regs)
}

// ListMine handles GET /fest-events/my-registrations.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)
	regs, err := h.svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, regs)
}
