package messages

import (
	"testing"
	"time"

	"parley/pkg/models"
	"parley/pkg/snapshot"
	"parley/pkg/store"
)

func openStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func TestSnapshotRoundTrip(t *testing.T) {
	openStore(t)
	p := snapshot.NewPersister(0, 0)

	s := New(p)
	s.AddMessage(Draft{Content: "persist me", SenderID: "a", ReceiverID: "b"})
	s.AddMessage(Draft{Content: "guild", SenderID: "a", ReceiverID: "general", ServerID: "srv"})
	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	p2 := snapshot.NewPersister(0, 0)
	s2 := New(p2)
	if err := s2.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if len(s2.Messages()) != 2 {
		t.Fatalf("expected 2 messages after hydrate, got %d", len(s2.Messages()))
	}
	if len(s2.DMChannels()) != 1 {
		t.Fatalf("expected 1 DM channel after hydrate, got %d", len(s2.DMChannels()))
	}
	if s2.Unread().Servers["srv"].Channels["general"].IsZero() {
		t.Fatal("unread cursor lost in round trip")
	}
}

func TestHydrateMissingSnapshot(t *testing.T) {
	openStore(t)
	s := New(nil)
	if err := s.Hydrate(); err != nil {
		t.Fatalf("missing snapshot must not error: %v", err)
	}
	if len(s.Messages()) != 0 {
		t.Fatal("store should start empty")
	}
}

func TestHydrateLegacyBlob(t *testing.T) {
	openStore(t)

	// a pre-envelope blob: no version wrapper, millisecond timestamps,
	// no unread state or DM channels
	legacy := []byte(`{"messages":[{"id":"1","content":"old","sender_id":"a","receiver_id":"b","ts":1714564800000}]}`)
	if err := store.SaveSnapshot("messages", legacy); err != nil {
		t.Fatalf("seed legacy blob: %v", err)
	}

	s := New(nil)
	if err := s.Hydrate(); err != nil {
		t.Fatalf("hydrate legacy: %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 migrated message, got %d", len(msgs))
	}
	want := models.At(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if msgs[0].TS != want {
		t.Fatalf("millisecond timestamp not normalized: %d != %d", msgs[0].TS, want)
	}

	// defaulted collections must be usable immediately
	s.AddMessage(Draft{Content: "new", SenderID: "a", ReceiverID: "general", ServerID: "srv"})
	if s.Unread().Servers["srv"].Channels["general"].IsZero() {
		t.Fatal("unread map not defaulted by migration")
	}
}

func TestHydrateCorruptSnapshot(t *testing.T) {
	openStore(t)
	if err := store.SaveSnapshot("messages", []byte(`{"version":1,"state":"not-an-object"}`)); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}
	s := New(nil)
	if err := s.Hydrate(); err == nil {
		t.Fatal("corrupt snapshot must surface an error")
	}
}
