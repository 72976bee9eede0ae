package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/queryparams/pkg/protocol"
)

// Session is the script-run context of one browser connection.
// It implements queryparams.Context.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	mu          sync.Mutex
	queryString string
	queue       []*protocol.PageInfo
	closed      bool

	headers http.Header
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		s.ID = id
	}
}

// WithQueryString sets the query string the browser was opened with.
func WithQueryString(qs string) Option {
	return func(s *Session) {
		s.queryString = qs
	}
}

// WithHeaders records the headers of the request that opened the session.
// The headers are copied.
func WithHeaders(h http.Header) Option {
	return func(s *Session) {
		s.headers = h.Clone()
	}
}

// WithLogger sets the base logger. The session adds its ID as an attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics attaches shared metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// New creates a session with a random ID.
func New(opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.ID)
	return s
}

// QueryString returns the last query string recorded for the session.
func (s *Session) QueryString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryString
}

// SetQueryString records a new query string.
func (s *Session) SetQueryString(qs string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryString = qs
}

// Enqueue appends msg to the outbound queue. It returns ErrSessionClosed if
// the session has been closed.
func (s *Session) Enqueue(msg *protocol.PageInfo) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.metrics.recordReject()
		s.logger.Warn("notification rejected, session closed", "query_string", msg.QueryString)
		return ErrSessionClosed
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	s.metrics.recordEnqueue()
	s.logger.Debug("notification enqueued", "query_string", msg.QueryString)
	return nil
}

// Drain returns the queued notifications in enqueue order and empties the
// queue.
func (s *Session) Drain() []*protocol.PageInfo {
	s.mu.Lock()
	msgs := s.queue
	s.queue = nil
	s.mu.Unlock()

	s.metrics.recordDrain(len(msgs))
	return msgs
}

// Pending returns the number of queued notifications.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Headers returns a copy of the headers of the request that opened the
// session, or nil if none were recorded.
func (s *Session) Headers() http.Header {
	return s.headers.Clone()
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the session closed and discards any undrained notifications.
// It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	s.metrics.recordDrain(dropped)
	if dropped > 0 {
		s.logger.Debug("session closed with pending notifications", "dropped", dropped)
	}
}
