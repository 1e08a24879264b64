package sse

import "time"

// Config holds configuration for SSE connections.
type Config struct {
	// KeepAliveInterval is how often to send keep-alive pings. Intermediary
	// proxies commonly cut idle connections after 30s.
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default SSE configuration.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}
