package search

import (
	"encoding/json"
	"fmt"
)

// EventType tags one frame of the answer stream.
type EventType string

const (
	EventThinking EventType = "thinking"
	EventSources  EventType = "sources"
	EventContent  EventType = "content"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// StreamEvent is the wire contract of the answer streaming pipeline. Each
// event serializes to one SSE frame: data: {"type": ..., ...payload}\n\n.
type StreamEvent interface {
	EventType() EventType
}

// ThinkingEvent is a progress note shown while the pipeline works.
type ThinkingEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// SourceRef is one citation entry sent ahead of the answer text.
type SourceRef struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"snippet"`
	Platform    string `json:"platform,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// VideoRef is one video attachment on the sources frame.
type VideoRef struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// ImageRef is one image attachment on the sources frame.
type ImageRef struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Source    string `json:"source,omitempty"`
}

// SourcesEvent carries every citation for the answer. At most one per stream,
// always before the first content frame.
type SourcesEvent struct {
	Type    EventType   `json:"type"`
	Sources []SourceRef `json:"sources"`
	Videos  []VideoRef  `json:"videos,omitempty"`
	Images  []ImageRef  `json:"images,omitempty"`
	News    []SourceRef `json:"news,omitempty"`
}

// ContentEvent carries one incremental answer chunk.
type ContentEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// DoneEvent closes a successful stream.
type DoneEvent struct {
	Type         EventType `json:"type"`
	SearchUsed   bool      `json:"searchUsed"`
	SourcesCount int       `json:"sourcesCount"`
}

// ErrorEvent closes a failed stream.
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func (e ThinkingEvent) EventType() EventType { return EventThinking }
func (e SourcesEvent) EventType() EventType  { return EventSources }
func (e ContentEvent) EventType() EventType  { return EventContent }
func (e DoneEvent) EventType() EventType     { return EventDone }
func (e ErrorEvent) EventType() EventType    { return EventError }

// Constructors keep the Type discriminator and the struct in sync.

func NewThinkingEvent(content string) ThinkingEvent {
	return ThinkingEvent{Type: EventThinking, Content: content}
}

func NewSourcesEvent(sources []SourceRef, videos []VideoRef, images []ImageRef, news []SourceRef) SourcesEvent {
	return SourcesEvent{Type: EventSources, Sources: sources, Videos: videos, Images: images, News: news}
}

func NewContentEvent(chunk string) ContentEvent {
	return ContentEvent{Type: EventContent, Content: chunk}
}

func NewDoneEvent(searchUsed bool, sourcesCount int) DoneEvent {
	return DoneEvent{Type: EventDone, SearchUsed: searchUsed, SourcesCount: sourcesCount}
}

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}

// FormatFrame renders an event as a single SSE data frame.
func FormatFrame(ev StreamEvent) (string, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", ev.EventType(), err)
	}
	return fmt.Sprintf("data: %s\n\n", payload), nil
}

// streamState is the position of a stream inside its phase machine.
type streamState int

const (
	streamOpen      streamState = iota // before sources; thinking allowed
	streamSourced                      // sources sent; content may begin
	streamStreaming                    // content flowing; no more sources
	streamClosed                       // terminal event sent
)

// StreamGuard enforces the event-ordering invariant as an explicit state
// machine instead of leaving it implicit in emission order: at most one
// sources frame, sources strictly before content, exactly one terminal frame.
// Not safe for concurrent use; a stream has a single writer.
type StreamGuard struct {
	state streamState
}

// Admit checks that emitting t is legal in the current state and advances the
// machine. It returns an error for any illegal transition.
func (g *StreamGuard) Admit(t EventType) error {
	if g.state == streamClosed {
		return fmt.Errorf("stream already closed, cannot emit %s", t)
	}
	switch t {
	case EventThinking:
		if g.state == streamStreaming {
			return fmt.Errorf("cannot emit thinking after content has started")
		}
		return nil
	case EventSources:
		if g.state != streamOpen {
			return fmt.Errorf("sources may be emitted at most once, before content")
		}
		g.state = streamSourced
		return nil
	case EventContent:
		g.state = streamStreaming
		return nil
	case EventDone, EventError:
		g.state = streamClosed
		return nil
	default:
		return fmt.Errorf("unknown event type %q", t)
	}
}

// Closed reports whether a terminal event has been admitted.
func (g *StreamGuard) Closed() bool { return g.state == streamClosed }
