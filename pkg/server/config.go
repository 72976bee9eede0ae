package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/queryparams/pkg/protocol"
	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/session"
)

// Config configures the Server.
type Config struct {
	// Address is the TCP address to listen on (default: "localhost:8501").
	Address string

	// Path is the WebSocket endpoint path (default: "/stream").
	Path string

	// StoreName is the public name used in missing-key errors
	// (default: "query_params").
	StoreName string

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int

	// MaxMessageSize caps a single client message in bytes. Larger messages
	// close the connection. Default: one full protocol frame.
	MaxMessageSize int64

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the WebSocket Origin header.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// MetricsNamespace prefixes every metric (default: "queryparams").
	MetricsNamespace string

	// Registry receives the server's metrics and backs /metrics.
	// Default: a fresh registry per server.
	Registry *prometheus.Registry

	// TracerProvider creates the script-run tracer.
	// Default: the global otel provider.
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		Address:          "localhost:8501",
		Path:             "/stream",
		StoreName:        queryparams.DefaultName,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		MaxMessageSize:   protocol.FrameHeaderSize + protocol.MaxPayloadSize,
		WriteTimeout:     10 * time.Second,
		ShutdownTimeout:  30 * time.Second,
		CheckOrigin:      SameOriginCheck,
		MetricsNamespace: session.DefaultNamespace,
	}
}

// withDefaults returns a copy of c with unset fields taken from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Path == "" {
		out.Path = defaults.Path
	}
	if out.StoreName == "" {
		out.StoreName = defaults.StoreName
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.MetricsNamespace == "" {
		out.MetricsNamespace = defaults.MetricsNamespace
	}
	return &out
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, errors.New("server: path must start with /"))
	}
	if c.Path == "/healthz" || c.Path == "/metrics" {
		errs = append(errs, errors.New("server: path collides with a built-in route"))
	}
	if c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server: timeouts must not be negative"))
	}
	if c.MaxMessageSize < 0 {
		errs = append(errs, errors.New("server: max message size must not be negative"))
	}
	return errors.Join(errs...)
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	return originURL.Host == host
}
