package sse

import (
	"log/slog"
	"time"
)

// KeepAliveStrategy sends periodic pings that hold an SSE connection open
// across proxies while the answer pipeline is quiet (classification, fan-out).
type KeepAliveStrategy interface {
	// Start begins sending pings through the writer. The returned channel
	// closes when the strategy stops itself, typically on a write failure.
	Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{}

	// Stop terminates the keep-alive loop. Safe to call more than once.
	Stop()
}

// KeepAliveWriter is the slice of the stream writer the strategy needs.
type KeepAliveWriter interface {
	// WriteKeepAlive writes one SSE comment frame. An error means the
	// connection is gone.
	WriteKeepAlive() error
}

// TickerKeepAlive pings at a fixed interval until stopped or the connection
// drops.
type TickerKeepAlive struct {
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewTickerKeepAlive creates a ticker-based keep-alive strategy.
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the ping loop. The loop exits on the first write failure; a
// failed ping means no further frame can reach the client either.
func (k *TickerKeepAlive) Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	k.ticker = time.NewTicker(k.interval)
	stopChan := make(chan struct{})

	go func() {
		defer close(stopChan)
		defer k.ticker.Stop()

		for {
			select {
			case <-k.ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Warn("keep-alive write failed, stopping",
						"error", err,
					)
					return
				}

			case <-k.done:
				return
			}
		}
	}()

	return stopChan
}

// Stop terminates the keep-alive loop. Safe to call multiple times.
func (k *TickerKeepAlive) Stop() {
	select {
	case <-k.done:
	default:
		close(k.done)
	}
}
