package server

import "time"

// Config enumerates the configuration keys from spec.md §6, generalized
// from the teacher's timeouts-only Config into the full set the engine
// needs. Field names mirror the spec's key names in Go case.
type Config struct {
	Port    int
	Address string // "" = all interfaces

	MaxConnections int // 0 => MaxThreads
	MaxThreads     int

	AcceptorThreadCount int

	ConnectionTimeout time.Duration
	KeepAliveTimeout  time.Duration

	MaxKeepAliveRequests int

	MaxHTTPHeaderSize int

	SocketBuffer int // <= 500 disables socket-side output coalescing

	RejectIllegalHeaderName bool

	Backlog    int
	TCPNoDelay bool
	SOLinger   time.Duration // <0 disables

	// SocketOptions, when true, sets SO_REUSEADDR/SO_REUSEPORT on the
	// listening socket via golang.org/x/sys/unix (spec_full.md §6 addition).
	// TCP_NODELAY is governed by TCPNoDelay alone.
	SocketOptions bool

	// Compression, when true, installs the gzip output filter for any
	// response with a body when the client sent Accept-Encoding: gzip
	// (spec_full.md §6 addition). The response's Content-Type is not
	// consulted.
	Compression bool

	// EnableLogging toggles per-request colored access logging (teacher's
	// Config.EnableLogging, carried forward).
	EnableLogging bool
}

// DefaultConfig mirrors spec.md §6's stated defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:    8080,
		Address: "",

		MaxConnections: 0, // resolved to MaxThreads by Endpoint
		MaxThreads:     200,

		AcceptorThreadCount: 1,

		ConnectionTimeout: 60 * time.Second,
		KeepAliveTimeout:  60 * time.Second,

		MaxKeepAliveRequests: 100,

		MaxHTTPHeaderSize: 8192,

		SocketBuffer: 0,

		RejectIllegalHeaderName: false,

		Backlog:    100,
		TCPNoDelay: true,
		SOLinger:   -1,

		SocketOptions: true,
		Compression:   false,
		EnableLogging: true,
	}
}

// ResolvedMaxConnections returns MaxConnections, or MaxThreads when
// MaxConnections is 0, per spec.md §6. Exported so transport adapters outside
// this package (the gnet-backed selector endpoint) can size their own
// concurrency bound the same way Endpoint's latch does.
func (c *Config) ResolvedMaxConnections() int {
	if c.MaxConnections == 0 {
		return c.MaxThreads
	}
	return c.MaxConnections
}
