package activity

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/respond"
)

// RegisterAdminRoutes mounts the activity queries. The group must already
// enforce the admin role.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/activity-log", handler.listActivity)
	group.GET("/activity-stats", handler.stats)
	group.GET("/user-activity/:userId", handler.userActivity)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) listActivity(c *gin.Context) {
	var (
		f      Filter
		fields []respond.FieldError
		err    error
	)

	if f.Page, err = intQuery(c, "page"); err != nil {
		fields = append(fields, respond.FieldError{Field: "page", Message: "page must be an integer"})
	}
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		fields = append(fields, respond.FieldError{Field: "limit", Message: "limit must be an integer"})
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields = append(fields, respond.FieldError{Field: "userId", Message: "userId must be a UUID"})
		} else {
			f.ActorID = &id
		}
	}
	if raw := c.Query("activityType"); raw != "" {
		kind := Kind(raw)
		if !kind.Valid() {
			fields = append(fields, respond.FieldError{Field: "activityType", Message: "activityType is not a known activity kind"})
		} else {
			f.Kind = &kind
		}
	}
	from, to, rangeErrs := dateRange(c)
	fields = append(fields, rangeErrs...)
	if len(fields) > 0 {
		respond.Invalid(c, fields...)
		return
	}
	f.From, f.To = from, to

	page, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		logger.FromContext(c).Error("list activity failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to fetch activity log")
		return
	}

	respond.Paged(c, page.Records, page.Pagination)
}

func (h *httpHandler) stats(c *gin.Context) {
	from, to, fields := dateRange(c)
	if len(fields) > 0 {
		respond.Invalid(c, fields...)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), from, to)
	if err != nil {
		logger.FromContext(c).Error("activity stats failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to fetch activity statistics")
		return
	}

	respond.Data(c, http.StatusOK, stats)
}

func (h *httpHandler) userActivity(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}
	from, to, fields := dateRange(c)
	if len(fields) > 0 {
		respond.Invalid(c, fields...)
		return
	}

	report, err := h.service.UserActivity(c.Request.Context(), userID, from, to)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respond.Error(c, http.StatusNotFound, "user not found")
			return
		}
		logger.FromContext(c).Error("user activity failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to fetch user activity")
		return
	}

	respond.Data(c, http.StatusOK, report)
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func dateRange(c *gin.Context) (*time.Time, *time.Time, []respond.FieldError) {
	var fields []respond.FieldError
	from, err := ParseDate(c.Query("startDate"))
	if err != nil {
		fields = append(fields, respond.FieldError{Field: "startDate", Message: "startDate must be a date or RFC 3339 timestamp"})
	}
	to, err := ParseDate(c.Query("endDate"))
	if err != nil {
		fields = append(fields, respond.FieldError{Field: "endDate", Message: "endDate must be a date or RFC 3339 timestamp"})
	}
	return from, to, fields
}

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date (midnight UTC).
// An empty string yields nil.
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
