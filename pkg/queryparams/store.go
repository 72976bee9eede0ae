package queryparams

import (
	"iter"

	"github.com/vango-dev/queryparams/pkg/protocol"
	"github.com/vango-dev/queryparams/pkg/sanitize"
)

// DefaultName is the public name used in missing-key messages.
const DefaultName = "query_params"

// Context is the session state a Store publishes into.
type Context interface {
	// QueryString returns the last query string recorded for the session.
	QueryString() string

	// SetQueryString records a new query string.
	SetQueryString(qs string)

	// Enqueue appends msg to the session's outbound queue.
	Enqueue(msg *protocol.PageInfo) error
}

// ContextFunc returns the active session context, or nil when the store is
// used outside a live session.
type ContextFunc func() Context

// Sanitizer computes the canonical query string from the raw parameters and
// the previously recorded query string.
type Sanitizer interface {
	Sanitize(raw *Params, previous string) (string, error)
}

// SanitizerFunc adapts a function to the Sanitizer interface.
type SanitizerFunc func(raw *Params, previous string) (string, error)

// Sanitize calls f(raw, previous).
func (f SanitizerFunc) Sanitize(raw *Params, previous string) (string, error) {
	return f(raw, previous)
}

// EmbedSanitizer strips embed-only params and keeps the ones already present
// in the previous query string.
var EmbedSanitizer Sanitizer = SanitizerFunc(func(raw *Params, previous string) (string, error) {
	return sanitize.EnsureNoEmbedParams(raw, previous), nil
})

// Option configures a Store.
type Option func(*Store)

// WithName sets the public name used in error messages.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// WithContext sets the session lookup used by the publish step.
func WithContext(fn ContextFunc) Option {
	return func(s *Store) {
		s.context = fn
	}
}

// WithSession binds the store to a fixed session context.
func WithSession(ctx Context) Option {
	return WithContext(func() Context { return ctx })
}

// WithSanitizer replaces EmbedSanitizer.
func WithSanitizer(san Sanitizer) Option {
	return func(s *Store) {
		s.sanitizer = san
	}
}

// Store is an ordered, session-bound mapping of query parameters.
type Store struct {
	name      string
	params    *Params
	context   ContextFunc
	sanitizer Sanitizer
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		name:      DefaultName,
		params:    newParams(),
		sanitizer: EmbedSanitizer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the public name of the store.
func (s *Store) Name() string {
	return s.name
}

// Get returns the display value for key: the value itself, or the last
// element of a list ("" for an empty list). It fails with *KeyError if key
// is absent.
func (s *Store) Get(key string) (string, error) {
	e, ok := s.params.Lookup(key)
	if !ok {
		return "", &KeyError{Store: s.name, Key: key}
	}
	return e.Last(), nil
}

// GetAll returns every value for key. A missing key yields an empty slice.
func (s *Store) GetAll(key string) []string {
	return s.params.GetAll(key)
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	_, ok := s.params.Lookup(key)
	return ok
}

// Set stores v under key and publishes. Publishing happens even if the value
// did not change. The returned error is non-nil only when publishing failed.
func (s *Store) Set(key string, v Value) error {
	s.params.set(key, v.entry)
	return s.publish("set", key)
}

// SetAny is Set(key, ValueOf(v)).
func (s *Store) SetAny(key string, v any) error {
	return s.Set(key, ValueOf(v))
}

// Delete removes key and publishes. It fails with *KeyError if key is absent,
// in which case nothing is published.
func (s *Store) Delete(key string) error {
	if !s.params.delete(key) {
		return &KeyError{Store: s.name, Key: key}
	}
	return s.publish("delete", key)
}

// Clear removes every key and publishes, even when the store was empty.
func (s *Store) Clear() error {
	s.params.clear()
	return s.publish("clear", "")
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return s.params.Len()
}

// Keys iterates the keys in insertion order. See Params.Keys for the
// snapshot semantics.
func (s *Store) Keys() iter.Seq[string] {
	return s.params.Keys()
}

// AsDict returns the underlying Params by reference. Callers must treat it as
// read-only.
func (s *Store) AsDict() *Params {
	return s.params
}

// Attrs returns the attribute-style accessor for s.
func (s *Store) Attrs() Attrs {
	return Attrs{store: s}
}

// publish records the new canonical query string on the active session and
// enqueues one PageInfo for it. Without a session it does nothing.
func (s *Store) publish(op, key string) error {
	if s.context == nil {
		return nil
	}
	ctx := s.context()
	if ctx == nil {
		return nil
	}

	qs, err := s.sanitizer.Sanitize(s.params, ctx.QueryString())
	if err != nil {
		return &PublishError{Op: op, Key: key, Err: err}
	}
	msg := &protocol.PageInfo{QueryString: qs}
	ctx.SetQueryString(qs)
	if err := ctx.Enqueue(msg); err != nil {
		return &PublishError{Op: op, Key: key, Err: err}
	}
	return nil
}
