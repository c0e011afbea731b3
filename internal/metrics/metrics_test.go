package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareIncrementsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "200"))

	req, _ := http.NewRequest(http.MethodGet, "/items/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to grow by 1 under the route template, got %v -> %v", before, after)
	}
}

func TestObserveObjectStoreLabelsOutcome(t *testing.T) {
	InitMetrics()

	okBefore := testutil.ToFloat64(objectStoreOps.WithLabelValues("stat", "ok"))
	errBefore := testutil.ToFloat64(objectStoreOps.WithLabelValues("stat", "error"))

	ObserveObjectStore("stat", time.Now(), nil)
	ObserveObjectStore("stat", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(objectStoreOps.WithLabelValues("stat", "ok")); got != okBefore+1 {
		t.Fatalf("ok counter = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(objectStoreOps.WithLabelValues("stat", "error")); got != errBefore+1 {
		t.Fatalf("error counter = %v, want %v", got, errBefore+1)
	}
}

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()
	ActivityWriteFailed()

	r := gin.New()
	Register(r, "/metrics")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "infinityfire_activity_write_failures_total") {
		t.Fatalf("expected activity failure counter in exposition")
	}
}
