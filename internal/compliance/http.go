package compliance

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/respond"
)

// RegisterRoutes mounts the test record endpoints under the provided group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/my-tests", handler.listMine)
	group.GET("/history/:testType", handler.history)
	group.POST("/create", handler.create)
	group.PUT("/:testId/update", handler.update)
	group.GET("/stats", handler.stats)
}

type httpHandler struct {
	service *Service
}

type createRequest struct {
	TestType TestType        `json:"testType" binding:"required"`
	TestData json.RawMessage `json:"testData" binding:"required"`
	Notes    *string         `json:"notes"`
}

type updateRequest struct {
	Status *string         `json:"status"`
	Result json.RawMessage `json:"result"`
	Notes  json.RawMessage `json:"notes"`
}

func (h *httpHandler) listMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	tests, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		serverError(c, err, "failed to fetch tests")
		return
	}
	respond.Data(c, http.StatusOK, tests)
}

func (h *httpHandler) history(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	tests, err := h.service.History(c.Request.Context(), userID, TestType(c.Param("testType")))
	if err != nil {
		h.fail(c, err, "failed to fetch test history")
		return
	}
	respond.Data(c, http.StatusOK, tests)
}

func (h *httpHandler) create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	test, err := h.service.Create(c.Request.Context(), userID, CreateInput{
		TestType: req.TestType,
		TestData: req.TestData,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(c, err, "failed to create test")
		return
	}
	respond.Data(c, http.StatusCreated, test)
}

func (h *httpHandler) update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid test id")
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	in := UpdateInput{Result: req.Result, Notes: req.Notes}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			respond.Invalid(c, respond.FieldError{Field: "status", Message: "status must be one of: pending completed failed"})
			return
		}
		in.Status = &status
	}

	test, err := h.service.Update(c.Request.Context(), userID, testID, in)
	if err != nil {
		h.fail(c, err, "failed to update test")
		return
	}
	respond.Data(c, http.StatusOK, test)
}

func (h *httpHandler) stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		serverError(c, err, "failed to fetch test statistics")
		return
	}
	respond.Data(c, http.StatusOK, stats)
}

func (h *httpHandler) fail(c *gin.Context, err error, message string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Invalid(c, verr.Fields...)
	case errors.Is(err, ErrTestNotFound):
		respond.Error(c, http.StatusNotFound, "test not found")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrTransitionNotAllowed):
		respond.Error(c, http.StatusBadRequest, err.Error())
	default:
		serverError(c, err, message)
	}
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

func serverError(c *gin.Context, err error, message string) {
	logger.FromContext(c).Error(message, zap.Error(err))
	respond.Error(c, http.StatusInternalServerError, message)
}
