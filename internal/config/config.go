package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/queryparams/internal/errors"
	"github.com/vango-dev/queryparams/pkg/server"
)

// DefaultLogLevel is the default slog level. Every other default comes from
// server.DefaultConfig.
const DefaultLogLevel = "info"

// FileNames lists the config files Find looks for, in order.
var FileNames = []string{"queryparams.json", "queryparams.yaml", "queryparams.yml"}

// Duration is a time.Duration written as a string ("10s") in config files.
type Duration time.Duration

// MarshalJSON encodes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the server configuration file.
type Config struct {
	// Addr is the TCP listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Path is the WebSocket endpoint path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// StoreName is the name shown in missing-key errors.
	StoreName string `json:"storeName,omitempty" yaml:"storeName,omitempty"`

	// WriteTimeout bounds each frame write.
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// MetricsNamespace prefixes every metric.
	MetricsNamespace string `json:"metricsNamespace,omitempty" yaml:"metricsNamespace,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// New returns a Config with all defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads configuration from path. The format is chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No config file at " + path).
				WithSuggestion("Create it or run without --config to use defaults")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.New("E103").WithDetail("Unsupported config file " + path)
	}
	if err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + path).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first config file from FileNames present in dir, or "".
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load loads the config file found in dir, or the defaults if there is none.
func Load(dir string) (*Config, error) {
	path := Find(dir)
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// File returns the file the config was loaded from, if any.
func (c *Config) File() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	defaults := server.DefaultConfig()
	if c.Addr == "" {
		c.Addr = defaults.Address
	}
	if c.Path == "" {
		c.Path = defaults.Path
	}
	if c.StoreName == "" {
		c.StoreName = defaults.StoreName
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(defaults.WriteTimeout)
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(defaults.ShutdownTimeout)
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = defaults.MetricsNamespace
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return errors.New("E102").
			WithDetail("path must start with /, got " + c.Path)
	}
	if c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("E102").WithDetail("timeouts must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.New("E102").
			WithDetail("unknown logLevel " + c.LogLevel).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// ServerConfig converts c into a server.Config.
func (c *Config) ServerConfig() *server.Config {
	sc := server.DefaultConfig()
	sc.Address = c.Addr
	sc.Path = c.Path
	sc.StoreName = c.StoreName
	sc.WriteTimeout = time.Duration(c.WriteTimeout)
	sc.ShutdownTimeout = time.Duration(c.ShutdownTimeout)
	sc.MetricsNamespace = c.MetricsNamespace
	return sc
}
