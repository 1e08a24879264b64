package search

import (
	"context"
	"errors"
	"testing"

	searchModels "tabkeep/internal/domain/models/search"
)

func TestRecorderBeginCreatesSearchingSession(t *testing.T) {
	repo := newMemorySessionRepo()
	rec := NewRecorder(repo, nil, nil, testLogger())

	handle, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if handle.ID() == "" {
		t.Fatal("handle has no session ID")
	}

	session, err := rec.Get(context.Background(), handle.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if session.Status != searchModels.SessionSearching {
		t.Errorf("status = %s, want searching", session.Status)
	}
	if session.Query != "pasta" {
		t.Errorf("query = %q", session.Query)
	}
}

func TestRecorderBeginPropagatesCreateFailure(t *testing.T) {
	repo := newMemorySessionRepo()
	repo.createErr = errors.New("connection refused")
	rec := NewRecorder(repo, nil, nil, testLogger())

	if _, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave}); err == nil {
		t.Fatal("Begin() should fail when the insert fails")
	}
}

func TestRecorderBeginStoresUser(t *testing.T) {
	repo := newMemorySessionRepo()
	rec := NewRecorder(repo, nil, nil, testLogger())

	handle, err := rec.Begin(context.Background(), "user-42", "pasta", []searchModels.Platform{searchModels.PlatformBrave})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	session, err := rec.Get(context.Background(), handle.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if session.UserID != "user-42" {
		t.Errorf("user_id = %q, want user-42", session.UserID)
	}
}

func TestRecorderBeginUsesOneTransaction(t *testing.T) {
	repo := newMemorySessionRepo()
	tx := &fakeTxManager{}
	rec := NewRecorder(repo, nil, tx, testLogger())

	handle, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if tx.calls != 1 {
		t.Errorf("ExecTx called %d times, want 1", tx.calls)
	}

	session, err := rec.Get(context.Background(), handle.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if session.Status != searchModels.SessionSearching {
		t.Errorf("status = %s, want searching", session.Status)
	}
}

func TestRecorderBeginTransactionFailureAborts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(repo *memorySessionRepo, tx *fakeTxManager)
	}{
		{
			name: "begin fails",
			setup: func(repo *memorySessionRepo, tx *fakeTxManager) {
				tx.err = errors.New("pool exhausted")
			},
		},
		{
			name: "searching transition fails inside the transaction",
			setup: func(repo *memorySessionRepo, tx *fakeTxManager) {
				repo.setStatusErr = errors.New("connection lost")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemorySessionRepo()
			tx := &fakeTxManager{}
			tt.setup(repo, tx)
			rec := NewRecorder(repo, nil, tx, testLogger())

			if _, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave}); err == nil {
				t.Fatal("Begin() should fail when the transaction cannot commit")
			}
		})
	}
}

func TestRecorderBeginWithoutTxSearchingIsBestEffort(t *testing.T) {
	repo := newMemorySessionRepo()
	repo.setStatusErr = errors.New("connection lost")
	rec := NewRecorder(repo, nil, nil, testLogger())

	handle, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave})
	if err != nil {
		t.Fatalf("Begin() error = %v, want success without a transaction manager", err)
	}
	if handle.ID() == "" {
		t.Fatal("handle has no session ID")
	}
}

func TestSessionHandleTerminalTransitionsAreOneShot(t *testing.T) {
	tests := []struct {
		name   string
		first  func(h *SessionHandle)
		second func(h *SessionHandle)
		want   searchModels.SessionStatus
	}{
		{
			name:   "complete then fail keeps completed",
			first:  func(h *SessionHandle) { h.Complete(context.Background(), CompleteParams{TotalResults: 3}) },
			second: func(h *SessionHandle) { h.Fail(context.Background()) },
			want:   searchModels.SessionCompleted,
		},
		{
			name:   "fail then complete keeps failed",
			first:  func(h *SessionHandle) { h.Fail(context.Background()) },
			second: func(h *SessionHandle) { h.Complete(context.Background(), CompleteParams{TotalResults: 3}) },
			want:   searchModels.SessionFailed,
		},
		{
			name:   "double complete writes once",
			first:  func(h *SessionHandle) { h.Complete(context.Background(), CompleteParams{TotalResults: 3}) },
			second: func(h *SessionHandle) { h.Complete(context.Background(), CompleteParams{TotalResults: 99}) },
			want:   searchModels.SessionCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemorySessionRepo()
			rec := NewRecorder(repo, nil, nil, testLogger())
			handle, err := rec.Begin(context.Background(), "", "pasta", []searchModels.Platform{searchModels.PlatformBrave})
			if err != nil {
				t.Fatalf("Begin() error = %v", err)
			}

			tt.first(handle)
			tt.second(handle)

			session, err := rec.Get(context.Background(), handle.ID())
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if session.Status != tt.want {
				t.Errorf("status = %s, want %s", session.Status, tt.want)
			}
			if session.TotalResults == 99 {
				t.Error("second Complete overwrote the first")
			}
			if session.CompletedAt == nil {
				t.Error("terminal session missing CompletedAt")
			}
		})
	}
}
