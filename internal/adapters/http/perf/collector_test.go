package perf

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCollector_Counters verifies domain counters increment.
func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.SessionAdded()
	c.SessionAdded()
	c.SessionRemoved()
	c.OverlapRejected()
	c.PersistFailed()
	c.NotificationDelivered("delivered")

	if got := testutil.ToFloat64(c.sessionsAdded); got != 2 {
		t.Errorf("sessions added = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.sessionsRemoved); got != 1 {
		t.Errorf("sessions removed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.overlaps); got != 1 {
		t.Errorf("overlaps = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.persistFailures); got != 1 {
		t.Errorf("persist failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.notifications.WithLabelValues("delivered")); got != 1 {
		t.Errorf("notifications delivered = %v, want 1", got)
	}
}

// TestCollector_Histograms verifies request and query observations are exported.
func TestCollector_Histograms(t *testing.T) {
	c := NewCollector()
	c.ObserveRequest("GET", "/api/trainers", 200, 12*time.Millisecond)
	c.ObserveQuery("query", time.Millisecond)

	if n := testutil.CollectAndCount(c.requestDuration); n != 1 {
		t.Errorf("request series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(c.queryDuration); n != 1 {
		t.Errorf("query series = %d, want 1", n)
	}
}

// TestCollector_NilSafe verifies a nil collector is a no-op.
func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.ObserveRequest("GET", "/", 200, time.Millisecond)
	c.ObserveQuery("exec", time.Millisecond)
	c.SessionAdded()
	c.SessionRemoved()
	c.OverlapRejected()
	c.PersistFailed()
	c.NotificationDelivered("failed")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("nil collector handler status = %d, want 404", rr.Code)
	}
}

// TestCollector_Handler verifies the exposition endpoint.
func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.SessionAdded()

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "academy_sessions_added_total 1") {
		t.Errorf("body missing sessions counter:\n%s", rr.Body.String())
	}
}
