package file

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/respond"
)

// RegisterRoutes mounts file browsing operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/list", handler.list)
	group.GET("/details", handler.details)
	group.GET("/view", handler.view)
	group.GET("/download", handler.download)
	group.GET("/search", handler.search)
	group.GET("/bucket-info", handler.bucketInfo)
	group.GET("/navigate", handler.navigate)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) list(c *gin.Context) {
	listing, err := h.service.List(c.Request.Context(), c.Query("path"))
	if err != nil {
		serverError(c, err, "failed to list files")
		return
	}
	respond.Data(c, http.StatusOK, listing)
}

func (h *httpHandler) details(c *gin.Context) {
	path, ok := requirePath(c)
	if !ok {
		return
	}

	details, err := h.service.Details(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			respond.Error(c, http.StatusNotFound, "file not found")
			return
		}
		serverError(c, err, "failed to get file details")
		return
	}
	respond.Data(c, http.StatusOK, details)
}

func (h *httpHandler) view(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	path, ok := requirePath(c)
	if !ok {
		return
	}

	result, err := h.service.View(c.Request.Context(), userID, activity.RequestContextFrom(c), path)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			respond.Error(c, http.StatusNotFound, "file not found")
			return
		}
		serverError(c, err, "failed to view file")
		return
	}
	respond.Data(c, http.StatusOK, result)
}

func (h *httpHandler) download(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	path, ok := requirePath(c)
	if !ok {
		return
	}

	var expires int
	if raw := c.Query("expires"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Invalid(c, respond.FieldError{Field: "expires", Message: "expires must be an integer number of seconds"})
			return
		}
		expires = n
	}

	link, err := h.service.Download(c.Request.Context(), userID, activity.RequestContextFrom(c), path, expires)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			respond.Error(c, http.StatusNotFound, "file not found")
			return
		}
		serverError(c, err, "failed to generate download URL")
		return
	}
	respond.Data(c, http.StatusOK, link)
}

func (h *httpHandler) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respond.Invalid(c, respond.FieldError{Field: "q", Message: "search query is required"})
		return
	}

	result, err := h.service.Search(c.Request.Context(), query, c.Query("path"))
	if err != nil {
		serverError(c, err, "failed to search files")
		return
	}
	respond.Data(c, http.StatusOK, result)
}

func (h *httpHandler) bucketInfo(c *gin.Context) {
	respond.Data(c, http.StatusOK, h.service.BucketInfo(c.Request.Context()))
}

func (h *httpHandler) navigate(c *gin.Context) {
	listing, err := h.service.Navigate(c.Request.Context(), c.Query("path"))
	if err != nil {
		serverError(c, err, "failed to navigate")
		return
	}
	respond.Data(c, http.StatusOK, listing)
}

func requirePath(c *gin.Context) (string, bool) {
	path := c.Query("path")
	if path == "" {
		respond.Invalid(c, respond.FieldError{Field: "path", Message: "file path is required"})
		return "", false
	}
	return path, true
}

// serverError logs the cause and answers with a generic message, so store
// configuration never reaches the client.
func serverError(c *gin.Context, err error, message string) {
	logger.FromContext(c).Error(message, zap.Error(err))
	respond.Error(c, http.StatusInternalServerError, message)
}
