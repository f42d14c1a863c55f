//go:build unix

package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dominicbreuker/gosock/pkg/neterr"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counts(t *testing.T) {
	t.Parallel()

	c := New()

	c.Accepted()
	c.Accepted()
	c.AcceptFailed(neterr.OutOfDescriptors)
	c.HandlerStarted()
	c.HandlerStarted()
	c.HandlerDone(10 * time.Millisecond)

	if got := testutil.ToFloat64(c.accepted); got != 2 {
		t.Errorf("accepted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.failures.WithLabelValues("out_of_descriptors")); got != 1 {
		t.Errorf("out_of_descriptors failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.failures.WithLabelValues("bad_handle")); got != 0 {
		t.Errorf("bad_handle failures = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.active); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()

	c := New()
	c.Accepted()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"gosock_connections_accepted_total 1",
		`gosock_accept_failures_total{kind="timed_out"} 0`,
		"gosock_handlers_active 0",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output lacks %q", want)
		}
	}
}

func TestCollector_ServeStopsWithContext(t *testing.T) {
	t.Parallel()

	c := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Serve(ctx, "127.0.0.1:0", nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
