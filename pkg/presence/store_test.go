package presence

import (
	"testing"

	"parley/pkg/snapshot"
	"parley/pkg/store"
)

func TestJoinLeaveChannel(t *testing.T) {
	s := New(nil)
	s.JoinChannel("voice-1", "alice")

	if s.UserChannel("alice") != "voice-1" {
		t.Fatal("channel not recorded")
	}
	if _, ok := s.UserState("alice"); !ok {
		t.Fatal("voice state not created on join")
	}

	// joining another channel implicitly leaves the first
	s.JoinChannel("voice-2", "alice")
	if s.UserChannel("alice") != "voice-2" {
		t.Fatal("switching channels failed")
	}

	s.LeaveChannel("alice")
	if s.UserChannel("alice") != "" {
		t.Fatal("leave did not clear the channel")
	}
}

func TestMuteDeafenCoupling(t *testing.T) {
	s := New(nil)
	s.JoinChannel("voice-1", "alice")

	s.ToggleMute("alice")
	st, _ := s.UserState("alice")
	if !st.Muted {
		t.Fatal("mute not set")
	}

	s.ToggleDeafen("alice")
	st, _ = s.UserState("alice")
	if !st.Deafened || !st.Muted {
		t.Fatal("deafen must also mute")
	}

	s.ToggleDeafen("alice")
	st, _ = s.UserState("alice")
	if st.Deafened || st.Muted {
		t.Fatal("undeafen must also unmute")
	}

	// toggles for unknown users are ignored
	s.ToggleMute("stranger")
	if _, ok := s.UserState("stranger"); ok {
		t.Fatal("toggle created state for unknown user")
	}
}

func TestSpeakingFromAudioLevel(t *testing.T) {
	s := New(nil)
	s.JoinChannel("voice-1", "alice")

	s.SetAudioLevel("alice", 0.5)
	st, _ := s.UserState("alice")
	if !st.Speaking || st.AudioLevel != 0.5 {
		t.Fatalf("loud level must mark speaking: %+v", st)
	}

	s.SetAudioLevel("alice", 0.05)
	st, _ = s.UserState("alice")
	if st.Speaking {
		t.Fatal("quiet level must clear speaking")
	}

	// muted users never count as speaking
	s.ToggleMute("alice")
	s.SetAudioLevel("alice", 0.9)
	st, _ = s.UserState("alice")
	if st.Speaking || st.AudioLevel == 0.9 {
		t.Fatal("audio levels must be ignored while muted")
	}
}

func TestChannelParticipants(t *testing.T) {
	s := New(nil)
	s.JoinChannel("voice-1", "alice")
	s.JoinChannel("voice-1", "bob")
	s.ToggleMute("bob")

	got := s.ChannelParticipants("voice-1")
	if len(got) != 1 || got[0] != "alice" {
		t.Fatalf("expected only unmuted alice: %v", got)
	}
	if got := s.ChannelParticipants("other"); got != nil {
		t.Fatalf("inactive channel must have no participants: %v", got)
	}
}

func TestInputPreferences(t *testing.T) {
	s := New(nil)
	if s.InputVolume() != 100 {
		t.Fatalf("default volume must be 100, got %d", s.InputVolume())
	}
	s.SetInputDevice("mic-2")
	s.SetInputVolume(40)
	if s.InputDevice() != "mic-2" || s.InputVolume() != 40 {
		t.Fatal("preferences not stored")
	}
}

func TestCleanup(t *testing.T) {
	s := New(nil)
	s.SetInputDevice("mic-2")
	s.JoinChannel("voice-1", "alice")

	s.Cleanup()
	if s.UserChannel("alice") != "" {
		t.Fatal("cleanup must clear the active channel")
	}
	if _, ok := s.UserState("alice"); ok {
		t.Fatal("cleanup must drop voice states")
	}
	if s.InputDevice() != "mic-2" {
		t.Fatal("cleanup must keep device preferences")
	}
}

func TestHydrateKeepsOnlyPreferences(t *testing.T) {
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	p := snapshot.NewPersister(0, 0)
	s := New(p)
	s.SetInputDevice("mic-2")
	s.SetInputVolume(55)
	s.JoinChannel("voice-1", "alice")
	s.SetAudioLevel("alice", 0.8)
	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	s2 := New(snapshot.NewPersister(0, 0))
	if err := s2.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if s2.InputDevice() != "mic-2" || s2.InputVolume() != 55 {
		t.Fatal("preferences must survive a restart")
	}
	if s2.UserChannel("alice") != "" {
		t.Fatal("active channel must not survive a restart")
	}
	st, ok := s2.UserState("alice")
	if ok && (st.Speaking || st.AudioLevel != 0) {
		t.Fatal("ephemeral speaking state must be reset on hydrate")
	}
}
