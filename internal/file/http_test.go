package file

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/objectstore"
)

func newTestRouter(store *fakeObjectStore, recorder *fakeRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/files", func(c *gin.Context) {
		auth.SetUser(c, auth.ContextUser{ID: uuid.NewString(), Role: auth.RoleUser})
		c.Next()
	})
	RegisterRoutes(group, NewService(store, recorder, defaultPolicy))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestDownloadRejectsNonIntegerExpires(t *testing.T) {
	store := newFakeObjectStore()
	store.add("a.txt", "text/plain", "a")
	recorder := &fakeRecorder{}
	r := newTestRouter(store, recorder)

	rr := get(r, "/api/files/download?path=a.txt&expires=soon")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"field":"expires"`)
	assert.Empty(t, recorder.records)
}

func TestDownloadEnvelope(t *testing.T) {
	store := newFakeObjectStore()
	store.add("docs/a.txt", "text/plain", "a")
	r := newTestRouter(store, &fakeRecorder{})

	rr := get(r, "/api/files/download?path=docs/a.txt&expires=60")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Success bool         `json:"success"`
		Data    DownloadLink `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 300, body.Data.ExpiresIn)
	assert.NotEmpty(t, body.Data.DownloadURL)
}

func TestPathRequired(t *testing.T) {
	r := newTestRouter(newFakeObjectStore(), &fakeRecorder{})

	for _, target := range []string{"/api/files/details", "/api/files/view", "/api/files/download", "/api/files/search"} {
		rr := get(r, target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestDetailsAndViewNotFound(t *testing.T) {
	r := newTestRouter(newFakeObjectStore(), &fakeRecorder{})

	assert.Equal(t, http.StatusNotFound, get(r, "/api/files/details?path=missing.txt").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/files/view?path=missing.txt").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/files/download?path=missing.txt").Code)
}

func TestViewBinaryReturnsNullContent(t *testing.T) {
	store := newFakeObjectStore()
	store.add("plans/site.png", "image/png", "\x89PNG")
	r := newTestRouter(store, &fakeRecorder{})

	rr := get(r, "/api/files/view?path=plans/site.png")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"content":null`)
	assert.Contains(t, rr.Body.String(), `"isBinary":true`)
}

func TestStoreFailureHidesDetail(t *testing.T) {
	store := newFakeObjectStore()
	store.failWith = errors.New("InvalidAccessKeyId: AKIA-secret")
	r := newTestRouter(store, &fakeRecorder{})

	rr := get(r, "/api/files/list?path=docs/")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"failed to list files"}`, rr.Body.String())
}

func TestBucketInfoAlwaysOK(t *testing.T) {
	r := newTestRouter(newFakeObjectStore(), &fakeRecorder{})

	rr := get(r, "/api/files/bucket-info")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data objectstore.BucketInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Data.Accessible)
}
