package guilds

import (
	"testing"

	"parley/pkg/snapshot"
	"parley/pkg/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	p := snapshot.NewPersister(0, 0)
	s := New(p)
	srv := s.CreateServer("Server", "icon", "owner")
	inv, err := s.CreateInvite(srv.ID, "owner", 3, 0)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	s.MarkChannelAsUnread(srv.ID, "general", "owner")
	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	s2 := New(snapshot.NewPersister(0, 0))
	if err := s2.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	got, ok := s2.GetServer(srv.ID)
	if !ok {
		t.Fatal("server lost in round trip")
	}
	if len(got.Invites) != 1 || got.Invites[0].Code != inv.Code {
		t.Fatalf("invites lost: %v", got.Invites)
	}
	if !s2.HasUnreadChannel(srv.ID, "general", "owner") {
		t.Fatal("unread flag lost in round trip")
	}
}

func TestHydrateDefaultsMissingMaps(t *testing.T) {
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	// a minimal legacy server record with no unread state or invites
	legacy := []byte(`{"servers":[{"id":"s1","name":"Old","owner_id":"o","members":["o"],"categories":[]}]}`)
	if err := store.SaveSnapshot("servers", legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := New(nil)
	if err := s.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	// defaulted fields must be usable immediately
	if _, err := s.CreateInvite("s1", "o", 0, 0); err != nil {
		t.Fatalf("invite on migrated server: %v", err)
	}
	s.MarkChannelAsUnread("s1", "general", "o")
	if s.HasUnreadChannel("s1", "general", "o") {
		t.Fatal("user without read state must be ignored, not crash")
	}
}
