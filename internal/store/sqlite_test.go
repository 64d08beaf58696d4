package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/konvohq/konvo/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	older := api.Session{ID: "sess-1", Title: "Visa extension", CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)}
	newer := api.Session{ID: "sess-2", Title: "Bank account", CreatedAt: now, UpdatedAt: now}

	for _, sess := range []api.Session{older, newer} {
		if err := s.UpsertSession(ctx, sess); err != nil {
			t.Fatalf("UpsertSession() error = %v", err)
		}
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "sess-2" {
		t.Errorf("most recently updated session must come first, got %s", sessions[0].ID)
	}

	// Upsert with the same id must update, not duplicate.
	older.Title = "Visa extension (renewed)"
	older.UpdatedAt = now.Add(time.Minute)
	if err := s.UpsertSession(ctx, older); err != nil {
		t.Fatalf("UpsertSession() update error = %v", err)
	}
	sessions, _ = s.ListSessions(ctx)
	if len(sessions) != 2 || sessions[0].Title != "Visa extension (renewed)" {
		t.Errorf("upsert did not update in place: %+v", sessions)
	}
}

func TestStore_MessageRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	msg := api.Message{
		ID:               "msg-1",
		SessionID:        "sess-1",
		UserText:         "hello",
		ProcessingStatus: api.StatusLLM,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.UpsertMessage(ctx, msg); err != nil {
		t.Fatalf("UpsertMessage() error = %v", err)
	}

	// Later projection fills in the response.
	msg.AIResponseText = "hi there"
	msg.AIAudioURL = "/audio/msg-1.wav"
	msg.ProcessingStatus = api.StatusCompleted
	msg.UpdatedAt = now.Add(3 * time.Second)
	if err := s.UpsertMessage(ctx, msg); err != nil {
		t.Fatalf("UpsertMessage() update error = %v", err)
	}

	got, err := s.MessagesForSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("MessagesForSession() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if got[0].AIResponseText != "hi there" || got[0].ProcessingStatus != api.StatusCompleted {
		t.Errorf("message = %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, now)
	}
}

func TestStore_DeleteSessionCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	if err := s.UpsertSession(ctx, api.Session{ID: "sess-1", Title: "t", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertMessage(ctx, api.Message{ID: "msg-1", SessionID: "sess-1", ProcessingStatus: api.StatusCompleted, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	sessions, _ := s.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("sessions remain after delete: %+v", sessions)
	}
	msgs, _ := s.MessagesForSession(ctx, "sess-1")
	if len(msgs) != 0 {
		t.Errorf("messages remain after delete: %+v", msgs)
	}
}
