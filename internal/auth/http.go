package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/respond"
)

// RegisterRoutes mounts authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handler.login)

		authenticated := authGroup.Group("", AuthMiddleware(service))
		authenticated.POST("/logout", handler.logout)
		authenticated.GET("/me", handler.me)
	}
}

// RegisterAdminRoutes mounts user management. The group must already enforce
// the admin role.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/users", handler.listUsers)
	group.POST("/users", handler.createUser)
	group.PATCH("/users/:userId", handler.updateUser)
}

type httpHandler struct {
	service *Service
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type createUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"omitempty,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,max=50"`
	Role      Role   `json:"role" binding:"omitempty,oneof=user admin"`
}

type updateUserRequest struct {
	Role      *Role   `json:"role" binding:"omitempty,oneof=user admin"`
	IsActive  *bool   `json:"isActive"`
	FirstName *string `json:"firstName" binding:"omitempty,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,max=50"`
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), LoginInput{
		Login:    req.Username,
		Password: req.Password,
	}, activity.RequestContextFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, ErrInactiveUser):
			respond.Error(c, http.StatusUnauthorized, "account is deactivated")
		default:
			logger.FromContext(c).Error("login failed", zap.Error(err))
			respond.Error(c, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	respond.Data(c, http.StatusOK, loginResponse{
		User:      result.User,
		Token:     result.Token.Token,
		ExpiresAt: result.Token.ExpiresAt.UTC(),
	})
}

func (h *httpHandler) logout(c *gin.Context) {
	userID, _, ok := RequireUser(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.service.Logout(c.Request.Context(), userID, activity.RequestContextFrom(c))
	respond.Message(c, http.StatusOK, "logged out")
}

func (h *httpHandler) me(c *gin.Context) {
	userID, _, ok := RequireUser(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respond.Error(c, http.StatusNotFound, "user not found")
			return
		}
		logger.FromContext(c).Error("load current user failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	respond.Data(c, http.StatusOK, user)
}

func (h *httpHandler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		logger.FromContext(c).Error("list users failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	respond.Data(c, http.StatusOK, users)
}

func (h *httpHandler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			respond.Error(c, http.StatusConflict, "username or email already registered")
		case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrWeakPassword):
			respond.Error(c, http.StatusBadRequest, err.Error())
		default:
			logger.FromContext(c).Error("create user failed", zap.Error(err))
			respond.Error(c, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	respond.Data(c, http.StatusCreated, user)
}

func (h *httpHandler) updateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), userID, UserUpdate{
		Role:      req.Role,
		IsActive:  req.IsActive,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respond.Error(c, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrInvalidRole):
			respond.Error(c, http.StatusBadRequest, err.Error())
		default:
			logger.FromContext(c).Error("update user failed", zap.Error(err))
			respond.Error(c, http.StatusInternalServerError, "failed to update user")
		}
		return
	}
	respond.Data(c, http.StatusOK, user)
}
