package session

import (
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/queryparams/pkg/protocol"
	"github.com/vango-dev/queryparams/pkg/queryparams"
)

var _ queryparams.Context = (*Session)(nil)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(WithRegistry(prometheus.NewRegistry()))
}

func TestNewDefaults(t *testing.T) {
	s := New()
	if s.ID == "" {
		t.Error("ID should be generated")
	}
	if other := New(); other.ID == s.ID {
		t.Errorf("IDs collide: %s", s.ID)
	}
	if s.QueryString() != "" {
		t.Errorf("QueryString = %q, want empty", s.QueryString())
	}
	if s.Headers() != nil {
		t.Errorf("Headers = %v, want nil", s.Headers())
	}
	if s.Logger() == nil {
		t.Error("Logger should not be nil")
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestOptions(t *testing.T) {
	h := http.Header{"User-Agent": {"test"}}
	s := New(WithID("fixed"), WithQueryString("a=1"), WithHeaders(h))

	if s.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", s.ID)
	}
	if s.QueryString() != "a=1" {
		t.Errorf("QueryString = %q, want a=1", s.QueryString())
	}

	h.Set("User-Agent", "mutated")
	got := s.Headers()
	if got.Get("User-Agent") != "test" {
		t.Errorf("Headers aliased the request: %v", got)
	}
	got.Set("User-Agent", "mutated")
	if s.Headers().Get("User-Agent") != "test" {
		t.Error("Headers returned an alias of the session copy")
	}
}

func TestEnqueueDrainOrder(t *testing.T) {
	m := newTestMetrics(t)
	s := New(WithMetrics(m))

	for _, qs := range []string{"a=1", "a=2", "a=2", "b=3"} {
		if err := s.Enqueue(&protocol.PageInfo{QueryString: qs}); err != nil {
			t.Fatalf("Enqueue error = %v", err)
		}
	}
	if s.Pending() != 4 {
		t.Errorf("Pending = %d, want 4", s.Pending())
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 4 {
		t.Errorf("queue_depth = %v, want 4", got)
	}

	msgs := s.Drain()
	var got []string
	for _, msg := range msgs {
		got = append(got, msg.QueryString)
	}
	if want := []string{"a=1", "a=2", "a=2", "b=3"}; !slices.Equal(got, want) {
		t.Errorf("Drain = %v, want %v", got, want)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending after Drain = %d", s.Pending())
	}
	if len(s.Drain()) != 0 {
		t.Error("second Drain should be empty")
	}
	if got := testutil.ToFloat64(m.enqueued); got != 4 {
		t.Errorf("notifications_enqueued_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 0 {
		t.Errorf("queue_depth = %v, want 0", got)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	m := newTestMetrics(t)
	s := New(WithMetrics(m))
	s.Enqueue(&protocol.PageInfo{QueryString: "pending"})

	s.Close()
	s.Close() // idempotent

	if !s.Closed() {
		t.Error("Closed() = false after Close")
	}
	if err := s.Enqueue(&protocol.PageInfo{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Enqueue error = %v, want ErrSessionClosed", err)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 after Close", s.Pending())
	}
	if got := testutil.ToFloat64(m.rejected); got != 1 {
		t.Errorf("notifications_rejected_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 0 {
		t.Errorf("queue_depth = %v, want 0", got)
	}
}

func TestNilMetrics(t *testing.T) {
	s := New()
	if err := s.Enqueue(&protocol.PageInfo{QueryString: "x"}); err != nil {
		t.Fatalf("Enqueue error = %v", err)
	}
	s.Drain()
	s.Close()
}

func TestStorePublishesIntoSession(t *testing.T) {
	s := New(WithQueryString("embed=true&page=1"))
	params := queryparams.New(queryparams.WithSession(s))

	if err := params.Set("page", queryparams.Single("2")); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if err := params.Set("tags", queryparams.Multi("x", "y")); err != nil {
		t.Fatalf("Set error = %v", err)
	}

	if s.QueryString() != "page=2&tags=x&tags=y&embed=true" {
		t.Errorf("QueryString = %q", s.QueryString())
	}
	msgs := s.Drain()
	if len(msgs) != 2 {
		t.Fatalf("Drain = %d messages, want 2", len(msgs))
	}
	if msgs[0].QueryString != "page=2&embed=true" {
		t.Errorf("first message = %q", msgs[0].QueryString)
	}

	s.Close()
	err := params.Clear()
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Clear on closed session error = %v, want ErrSessionClosed", err)
	}
	if params.Len() != 0 {
		t.Errorf("Clear did not apply: Len = %d", params.Len())
	}
}
