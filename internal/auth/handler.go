package auth

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventx/backend/internal/models"
	"github.com/eventx/backend/pkg/response"
	"github.com/eventx/backend/pkg/utils"
)

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Signup handles POST /auth/signup. New accounts always start as plain users;
// the organizer role is granted only through admin review.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, hash, models.RoleUser)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /users/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(int64)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// RequestOrganizer handles POST /users/request-organizer.
func (h *Handler) RequestOrganizer(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(int64)
	req, err := h.repo.CreateOrganizerRequest(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("create organizer request failed", zap.Error(err), zap.Int64("user_id", userID))
		response.Internal(c, "failed to submit request")
		return
	}
	response.Created(c, req)
}

// ListOrganizerRequests handles GET /admin/organizer-requests (admin only).
func (h *Handler) ListOrganizerRequests(c *gin.Context) {
	list, err := h.repo.ListPendingOrganizerRequests(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// ReviewOrganizerRequest returns a handler for approve/reject of an
// organizer request (admin only).
func (h *Handler) ReviewOrganizerRequest(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid request id")
			return
		}
		if err := h.repo.ReviewOrganizerRequest(c.Request.Context(), id, approve); err != nil {
			if errors.Is(err, ErrNotFound) {
				response.NotFound(c, "request not found")
				return
			}
			response.Internal(c, "failed to review request")
			return
		}
		if approve {
			response.OK(c, gin.H{"message": "organizer approved"})
			return
		}
		response.OK(c, gin.H{"message": "request rejected"})
	}
}
