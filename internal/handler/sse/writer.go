package sse

import (
	"fmt"
	"net/http"
	"sync"

	searchModels "tabkeep/internal/domain/models/search"
)

// StreamWriter serializes stream events onto one SSE connection. Event frames
// and keep-alive comments share the connection, so every write holds the
// mutex and flushes before releasing it.
type StreamWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStreamWriter prepares an SSE response: headers are set and flushed so
// the client sees the stream open before the first event.
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	return &StreamWriter{w: w, flusher: flusher}, nil
}

// Send writes one event frame. Implements search.EventSink.
func (s *StreamWriter) Send(ev searchModels.StreamEvent) error {
	frame, err := searchModels.FormatFrame(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return fmt.Errorf("write %s frame: %w", ev.EventType(), err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (: keepalive\n\n) and flushes.
// Implements KeepAliveWriter; returns an error once the connection is gone.
func (s *StreamWriter) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// SSE spec: lines starting with : are comments ignored by the client
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()

	// Zero-byte write detects a closed connection
	if _, err := s.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}

	return nil
}
