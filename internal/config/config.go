// Package config loads the netcore server configuration.
//
// Configuration lives in a YAML file; every field has a working default
// so a missing file, or an empty one, yields a runnable server.
//
// # Configuration File Structure
//
//	listen:
//	  host: 0.0.0.0
//	  port: 7775
//	admin:
//	  addr: :7776
//	shard: 0
//	clock:
//	  tickRate: 20
//	transport:
//	  maxFrameBytes: 1048576
//	  readBufferBytes: 4096
//	  dialTimeoutSeconds: 10
//	log:
//	  level: info
//	  format: text
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/riftlands/netcore/pkg/clock"
	"github.com/riftlands/netcore/pkg/identity"
	"github.com/riftlands/netcore/pkg/transport"
)

const (
	// DefaultAdminAddr is the default admin HTTP endpoint.
	DefaultAdminAddr = ":7776"

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log output format.
	DefaultLogFormat = "text"
)

// Config is the complete server configuration.
type Config struct {
	// Listen is the game-traffic TCP endpoint.
	Listen ListenConfig `yaml:"listen"`

	// Admin is the operational HTTP endpoint.
	Admin AdminConfig `yaml:"admin"`

	// Shard identifies this process in every identity it mints.
	Shard int `yaml:"shard"`

	// Clock tunes the simulation clock.
	Clock ClockConfig `yaml:"clock"`

	// Transport tunes per-connection framing limits.
	Transport TransportConfig `yaml:"transport"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`
}

// ListenConfig is the game-traffic endpoint.
type ListenConfig struct {
	// Host to bind; empty binds all interfaces.
	Host string `yaml:"host"`

	// Port to bind. Defaults to 7775.
	Port int `yaml:"port"`
}

// AdminConfig is the operational HTTP endpoint.
type AdminConfig struct {
	// Addr to bind, e.g. ":7776".
	Addr string `yaml:"addr"`

	// Disabled turns the admin server off entirely.
	Disabled bool `yaml:"disabled"`
}

// ClockConfig tunes the simulation clock.
type ClockConfig struct {
	// TickRate in ticks per second. Defaults to 20.
	TickRate int `yaml:"tickRate"`
}

// TransportConfig tunes per-connection framing.
type TransportConfig struct {
	// MaxFrameBytes caps a single frame's declared payload length.
	MaxFrameBytes int `yaml:"maxFrameBytes"`

	// ReadBufferBytes sizes the per-connection read buffer.
	ReadBufferBytes int `yaml:"readBufferBytes"`

	// DialTimeoutSeconds bounds outgoing connection attempts.
	DialTimeoutSeconds int `yaml:"dialTimeoutSeconds"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from path. A missing file is not an error:
// the defaults are returned so a bare `netcore serve` just works.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Listen.Port == 0 {
		c.Listen.Port = transport.DefaultPort
	}
	if c.Admin.Addr == "" {
		c.Admin.Addr = DefaultAdminAddr
	}
	if c.Clock.TickRate == 0 {
		c.Clock.TickRate = clock.DefaultTickRate
	}
	if c.Transport.MaxFrameBytes == 0 {
		c.Transport.MaxFrameBytes = transport.DefaultMaxFrameSize
	}
	if c.Transport.ReadBufferBytes == 0 {
		c.Transport.ReadBufferBytes = transport.DefaultConfig().ReadBufferSize
	}
	if c.Transport.DialTimeoutSeconds == 0 {
		c.Transport.DialTimeoutSeconds = int(transport.DefaultConfig().DialTimeout / time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if c.Listen.Port < 1 || c.Listen.Port > 65535 {
		return fmt.Errorf("config: listen port %d out of range", c.Listen.Port)
	}
	if c.Shard < 0 || c.Shard > identity.MaxShard {
		return fmt.Errorf("config: shard %d out of range [0, %d]", c.Shard, identity.MaxShard)
	}
	if c.Clock.TickRate < 1 {
		return fmt.Errorf("config: tick rate %d must be positive", c.Clock.TickRate)
	}
	if c.Transport.MaxFrameBytes < 1 {
		return fmt.Errorf("config: max frame bytes %d must be positive", c.Transport.MaxFrameBytes)
	}
	if _, err := slogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// ListenAddr returns the game-traffic address in host:port form.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Listen.Host, strconv.Itoa(c.Listen.Port))
}

// AdminAddr returns the admin endpoint, or "" when disabled.
func (c *Config) AdminAddr() string {
	if c.Admin.Disabled {
		return ""
	}
	return c.Admin.Addr
}

// TransportConfig builds the transport-layer settings.
func (c *Config) TransportConfig() *transport.Config {
	t := transport.DefaultConfig()
	t.MaxFrameSize = c.Transport.MaxFrameBytes
	t.ReadBufferSize = c.Transport.ReadBufferBytes
	t.DialTimeout = time.Duration(c.Transport.DialTimeoutSeconds) * time.Second
	return t
}

// Logger builds the process logger per the log section.
func (c *Config) Logger() *slog.Logger {
	level, err := slogLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func slogLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", name)
	}
}
