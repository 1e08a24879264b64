package search

import (
	"strings"
	"testing"
)

func TestStreamGuardOrdering(t *testing.T) {
	tests := []struct {
		name    string
		events  []EventType
		wantErr bool
	}{
		{
			name:   "full search stream",
			events: []EventType{EventThinking, EventThinking, EventSources, EventThinking, EventContent, EventContent, EventDone},
		},
		{
			name:   "chat stream without sources",
			events: []EventType{EventThinking, EventContent, EventDone},
		},
		{
			name:   "error before anything",
			events: []EventType{EventError},
		},
		{
			name:    "second sources frame",
			events:  []EventType{EventSources, EventSources},
			wantErr: true,
		},
		{
			name:    "sources after content",
			events:  []EventType{EventContent, EventSources},
			wantErr: true,
		},
		{
			name:    "thinking after content",
			events:  []EventType{EventContent, EventThinking},
			wantErr: true,
		},
		{
			name:    "content after done",
			events:  []EventType{EventDone, EventContent},
			wantErr: true,
		},
		{
			name:    "two terminal events",
			events:  []EventType{EventContent, EventDone, EventError},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g StreamGuard
			var err error
			for _, ev := range tt.events {
				if err = g.Admit(ev); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Admit sequence %v: err = %v, wantErr = %v", tt.events, err, tt.wantErr)
			}
		})
	}
}

func TestStreamGuardClosed(t *testing.T) {
	var g StreamGuard
	if g.Closed() {
		t.Fatal("new guard should not be closed")
	}
	if err := g.Admit(EventDone); err != nil {
		t.Fatalf("Admit(done) = %v", err)
	}
	if !g.Closed() {
		t.Fatal("guard should be closed after done")
	}
}

func TestFormatFrame(t *testing.T) {
	frame, err := FormatFrame(NewDoneEvent(true, 3))
	if err != nil {
		t.Fatalf("FormatFrame() error = %v", err)
	}
	if !strings.HasPrefix(frame, "data: ") || !strings.HasSuffix(frame, "\n\n") {
		t.Errorf("frame missing SSE delimiters: %q", frame)
	}
	for _, want := range []string{`"type":"done"`, `"searchUsed":true`, `"sourcesCount":3`} {
		if !strings.Contains(frame, want) {
			t.Errorf("frame missing %s: %q", want, frame)
		}
	}
}

func TestFormatFrameError(t *testing.T) {
	frame, err := FormatFrame(NewErrorEvent("upstream exploded"))
	if err != nil {
		t.Fatalf("FormatFrame() error = %v", err)
	}
	if !strings.Contains(frame, `"message":"upstream exploded"`) {
		t.Errorf("frame missing message: %q", frame)
	}
}
