package models

import "testing"

func TestDMChannelIDSymmetric(t *testing.T) {
	a := DMChannelID("alice", "bob")
	b := DMChannelID("bob", "alice")
	if a != b {
		t.Fatalf("id must not depend on argument order: %q != %q", a, b)
	}
	if a != "dm-alice-bob" {
		t.Fatalf("unexpected id: %q", a)
	}
}

func TestMessageIsDM(t *testing.T) {
	dm := Message{SenderID: "a", ReceiverID: "b"}
	if !dm.IsDM() {
		t.Fatal("message without server id must be a DM")
	}
	if dm.DMID() != DMChannelID("a", "b") {
		t.Fatalf("DMID mismatch: %q", dm.DMID())
	}
	guild := Message{SenderID: "a", ReceiverID: "general", ServerID: "srv1"}
	if guild.IsDM() {
		t.Fatal("message with server id must not be a DM")
	}
}

func TestFriendRequestInvolves(t *testing.T) {
	r := FriendRequest{SenderID: "a", ReceiverID: "b"}
	if !r.Involves("a", "b") || !r.Involves("b", "a") {
		t.Fatal("Involves must match either direction")
	}
	if r.Involves("a", "c") {
		t.Fatal("Involves matched an unrelated pair")
	}
}
