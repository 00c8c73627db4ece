package passes

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/middleware"
	"github.com/eventx/backend/pkg/response"
)

// Handler handles entry-pass HTTP endpoints.
type Handler struct {
	svc    *Service
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a passes handler.
func NewHandler(svc *Service, repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, logger: logger}
}

// Claim handles POST /fests/:slug/entry-pass. Entry is always free.
// Returns 201 on first issue, 200 with the existing pass thereafter.
func (h *Handler) Claim(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)
	pass, created, err := h.svc.Claim(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "fest not found")
		case errors.Is(err, ErrNotLive):
			response.BadRequest(c, "fest is not live yet")
		default:
			h.logger.Error("claim pass failed", zap.Error(err), zap.Int64("user_id", userID))
			response.Internal(c, "failed to claim pass")
		}
		return
	}
	if created {
		response.Created(c, pass)
		return
	}
	response.OK(c, pass)
}

// GetMine handles GET /fests/:slug/my-pass.
func (h *Handler) GetMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)
	pass, err := h.svc.GetMine(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "no entry pass found for this fest")
			return
		}
		response.Internal(c, "failed to load pass")
		return
	}
	response.OK(c, pass)
}

// GetMineQR handles GET /fests/:slug/my-pass/qr. Renders the pass token
// as a PNG for the gate scanner.
func (h *Handler) GetMineQR(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)
	pass, err := h.svc.GetMine(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "no entry pass found for this fest")
			return
		}
		response.Internal(c, "failed to load pass")
		return
	}
	png, err := qrcode.Encode(pass.QRCode, qrcode.Medium, 256)
	if err != nil {
		h.logger.Error("qr encode failed", zap.Error(err), zap.Int64("pass_id", pass.ID))
		response.Internal(c, "failed to render QR code")
		return
	}
	c.Data(200, "image/png", png)
}

// Scan handles POST /fests/:slug/gate-scan/:pass_id (owner/core/admin).
func (h *Handler) Scan(c *gin.Context) {
	passID, err := strconv.ParseInt(c.Param("pass_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid pass id")
		return
	}
	pass, err := h.svc.Scan(c.Request.Context(), c.Param("slug"), passID, fests.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "pass not found")
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, "gate access requires owner or core member role")
		case errors.Is(err, ErrPassBlocked):
			response.BadRequest(c, "pass is blocked, entry denied")
		case errors.Is(err, ErrAlreadyUsed):
			response.BadRequest(c, "pass already used, entry denied")
		default:
			h.logger.Error("gate scan failed", zap.Error(err), zap.Int64("pass_id", passID))
			response.Internal(c, "gate scan failed")
		}
		return
	}
	response.OK(c, pass)
}

// Block handles POST /admin/passes/:id/block. This is the moderation
// path that makes the blocked state reachable.
func (h *Handler) Block(c *gin.Context) {
	passID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid pass id")
		return
	}
	pass, err := h.repo.Block(c.Request.Context(), passID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "pass not found")
			return
		}
		response.Internal(c, "failed to block pass")
		return
	}
	response.OK(c, pass)
}
