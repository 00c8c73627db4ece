package colleges

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/pkg/response"
)

// Handler handles college HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a colleges handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateCollegeRequest is the body for POST /admin/colleges.
type CreateCollegeRequest struct {
	Name    string `json:"name" binding:"required"`
	Area    string `json:"area"`
	Emoji   string `json:"emoji"`
	Website string `json:"website"`
}

// Create handles POST /admin/colleges.
func (h *Handler) Create(c *gin.Context) {
	var req CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	col, err := h.repo.Create(c.Request.Context(), &models.College{
		Name:    req.Name,
		Area:    req.Area,
		Emoji:   req.Emoji,
		Website: req.Website,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			response.Conflict(c, "college name already exists")
			return
		}
		h.logger.Error("create college failed", zap.Error(err), zap.String("name", req.Name))
		response.Internal(c, "failed to create college")
		return
	}
	response.Created(c, col)
}

// List handles GET /colleges (public).
func (h *Handler) List(c *gin.Context) {
	cols, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list colleges")
		return
	}
	response.OK(c, cols)
}

// Get handles GET /colleges/:id (public).
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid college id")
		return
	}
	col, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "college not found")
			return
		}
		response.Internal(c, "failed to load college")
		return
	}
	response.OK(c, col)
}

// Delete handles DELETE /admin/colleges/:id. Fests and events linked to
// the college are kept with the link cleared.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid college id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "college not found")
			return
		}
		h.logger.Error("delete college failed", zap.Error(err), zap.Int64("college_id", id))
		response.Internal(c, "failed to delete college")
		return
	}
	response.NoContent(c)
}
