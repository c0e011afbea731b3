package checklist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/respond"
)

// RegisterRoutes mounts the venue checklist endpoints under the provided group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("", handler.list)
	group.GET("/:id", handler.get)
	group.POST("", handler.create)
	group.PUT("/:id", handler.update)
	group.PATCH("/:id/items", handler.patchItems)
	group.PATCH("/:id/complete", handler.complete)
	group.DELETE("/:id", handler.delete)
}

type httpHandler struct {
	service *Service
}

type createRequest struct {
	ChecklistType string  `json:"checklistType" binding:"required,oneof=opening closing"`
	ConductedBy   string  `json:"conductedBy" binding:"required,max=100"`
	CheckDate     string  `json:"checkDate"`
	Notes         *string `json:"notes"`
}

type updateRequest struct {
	ConductedBy *string `json:"conductedBy" binding:"omitempty,min=1,max=100"`
	Notes       *string `json:"notes"`
	Status      *string `json:"status" binding:"omitempty,oneof=in_progress completed verified"`
}

type itemsRequest struct {
	Items map[string]bool `json:"items" binding:"required"`
}

type completeRequest struct {
	OverallConfirmation string  `json:"overallConfirmation" binding:"required,max=100"`
	Signature           *string `json:"signature"`
}

func (h *httpHandler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	checklists, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		serverError(c, err, "failed to fetch checklists")
		return
	}
	respond.Data(c, http.StatusOK, checklists)
}

func (h *httpHandler) get(c *gin.Context) {
	userID, id, ok := requireTarget(c)
	if !ok {
		return
	}

	cl, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, "failed to fetch checklist")
		return
	}
	respond.Data(c, http.StatusOK, cl)
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

	in := CreateInput{ChecklistType: Type(req.ChecklistType), ConductedBy: req.ConductedBy, Notes: req.Notes}
	checkDate, err := activity.ParseDate(req.CheckDate)
	if err != nil {
		respond.Invalid(c, respond.FieldError{Field: "checkDate", Message: "checkDate must be an ISO 8601 date"})
		return
	}
	if checkDate != nil {
		in.CheckDate = checkDate.UTC()
	}

	cl, err := h.service.Create(c.Request.Context(), userID, activity.RequestContextFrom(c), in)
	if err != nil {
		h.fail(c, err, "failed to create checklist")
		return
	}
	respond.Data(c, http.StatusCreated, cl)
}

func (h *httpHandler) update(c *gin.Context) {
	userID, id, ok := requireTarget(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	in := UpdateInput{ConductedBy: req.ConductedBy, Notes: req.Notes}
	if req.Status != nil {
		status := Status(*req.Status)
		in.Status = &status
	}

	cl, err := h.service.Update(c.Request.Context(), userID, id, activity.RequestContextFrom(c), in)
	if err != nil {
		h.fail(c, err, "failed to update checklist")
		return
	}
	respond.Data(c, http.StatusOK, cl)
}

func (h *httpHandler) patchItems(c *gin.Context) {
	userID, id, ok := requireTarget(c)
	if !ok {
		return
	}

	var req itemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	cl, err := h.service.PatchItems(c.Request.Context(), userID, id, activity.RequestContextFrom(c), req.Items)
	if err != nil {
		h.fail(c, err, "failed to update checklist items")
		return
	}
	respond.Data(c, http.StatusOK, cl)
}

func (h *httpHandler) complete(c *gin.Context) {
	userID, id, ok := requireTarget(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	cl, err := h.service.Complete(c.Request.Context(), userID, id, activity.RequestContextFrom(c), CompleteInput{
		OverallConfirmation: req.OverallConfirmation,
		Signature:           req.Signature,
	})
	if err != nil {
		h.fail(c, err, "failed to complete checklist")
		return
	}
	respond.Data(c, http.StatusOK, cl)
}

func (h *httpHandler) delete(c *gin.Context) {
	userID, id, ok := requireTarget(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id, activity.RequestContextFrom(c)); err != nil {
		h.fail(c, err, "failed to delete checklist")
		return
	}
	respond.Message(c, http.StatusOK, "Checklist deleted successfully")
}

func (h *httpHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrChecklistNotFound):
		respond.Error(c, http.StatusNotFound, "checklist not found")
	case errors.Is(err, ErrUnknownType):
		respond.Invalid(c, respond.FieldError{Field: "checklistType", Message: "checklistType must be one of: opening closing"})
	case errors.Is(err, ErrUnknownItem):
		respond.Invalid(c, respond.FieldError{Field: "items", Message: err.Error()})
	case errors.Is(err, ErrNoItems):
		respond.Invalid(c, respond.FieldError{Field: "items", Message: ErrNoItems.Error()})
	case errors.Is(err, ErrConfirmationRequired):
		respond.Invalid(c, respond.FieldError{Field: "overallConfirmation", Message: ErrConfirmationRequired.Error()})
	case errors.Is(err, ErrInvalidStatus):
		respond.Invalid(c, respond.FieldError{Field: "status", Message: "status must be one of: in_progress completed verified"})
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

func requireTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid checklist id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func serverError(c *gin.Context, err error, message string) {
	logger.FromContext(c).Error(message, zap.Error(err))
	respond.Error(c, http.StatusInternalServerError, message)
}
