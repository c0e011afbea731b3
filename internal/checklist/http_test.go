package checklist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinityfire/api/internal/auth"
)

func newTestRouter(service *Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/venue-checklists", func(c *gin.Context) {
		auth.SetUser(c, auth.ContextUser{ID: userID.String(), Role: auth.RoleUser})
		c.Next()
	})
	RegisterRoutes(group, service)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestCreateHandlerValidatesBody(t *testing.T) {
	service, _, _ := newTestService(t)
	r := newTestRouter(service, uuid.New())

	rr := serve(r, http.MethodPost, "/api/venue-checklists", `{"checklistType":"midday"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "checklistType must be one of: opening closing")
	assert.Contains(t, rr.Body.String(), "conductedBy is required")
}

func TestCreateHandlerRejectsBadCheckDate(t *testing.T) {
	service, _, _ := newTestService(t)
	r := newTestRouter(service, uuid.New())

	rr := serve(r, http.MethodPost, "/api/venue-checklists", `{"checklistType":"closing","conductedBy":"Sam","checkDate":"last friday"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "checkDate")
}

func TestChecklistLifecycleOverHTTP(t *testing.T) {
	service, store, _ := newTestService(t)
	user := uuid.New()
	r := newTestRouter(service, user)

	rr := serve(r, http.MethodPost, "/api/venue-checklists", `{"checklistType":"closing","conductedBy":"Sam","checkDate":"2024-06-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Data struct {
			ID    uuid.UUID       `json:"id"`
			Items map[string]bool `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Len(t, created.Data.Items, len(closingItemKeys))
	base := "/api/venue-checklists/" + created.Data.ID.String()

	rr = serve(r, http.MethodPatch, base+"/items", `{"items":{"lasersOn":true}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, http.MethodPatch, base+"/items", `{"items":{"gasesOff":true}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, store.rows[created.Data.ID].items["gasesOff"])

	rr = serve(r, http.MethodPatch, base+"/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, http.MethodPatch, base+"/complete", `{"overallConfirmation":"Building secure"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"completed"`)

	rr = serve(r, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Checklist deleted successfully"}`, rr.Body.String())

	rr = serve(r, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateHandlerRejectsUnknownStatus(t *testing.T) {
	service, _, _ := newTestService(t)
	user := uuid.New()
	cl := createOpening(t, service, user)
	r := newTestRouter(service, user)

	rr := serve(r, http.MethodPut, "/api/venue-checklists/"+cl.ID.String(), `{"status":"archived"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetHandlerRejectsMalformedID(t *testing.T) {
	service, _, _ := newTestService(t)
	r := newTestRouter(service, uuid.New())

	rr := serve(r, http.MethodGet, "/api/venue-checklists/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
