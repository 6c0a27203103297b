package transport

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultPort is the realm's default TCP endpoint.
const DefaultPort = 7775

// Config holds tuning knobs for a Conn or Listener.
type Config struct {
	// MaxFrameSize is the largest declared frame length accepted before
	// the connection is failed as a protocol violation. It also caps
	// outbound payloads. Default: 1 MiB.
	MaxFrameSize int

	// DialTimeout bounds a single connect attempt.
	// Default: 10 seconds.
	DialTimeout time.Duration

	// ReadBufferSize is the size of the receive loop's read chunk.
	// Default: 4096.
	ReadBufferSize int

	// CheckOrigin validates the Origin header on WebSocket upgrades.
	// Defaults to SameOriginCheck; cross-origin browser peers cannot
	// hijack a session unless an allowlist is installed deliberately.
	CheckOrigin func(r *http.Request) bool

	// Logger receives connection lifecycle logs. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// SameOriginCheck accepts upgrade requests whose Origin host matches the
// request host, and requests without an Origin header (non-browser
// clients). It is the default CheckOrigin.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFrameSize:   DefaultMaxFrameSize,
		DialTimeout:    10 * time.Second,
		ReadBufferSize: 4096,
		CheckOrigin:    SameOriginCheck,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// withDefaults fills zero fields in place and returns the config.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = 4096
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = SameOriginCheck
	}
	if c.Logger == nil {
		c.Logger = slog.Default().With("component", "transport")
	}
	return c
}
