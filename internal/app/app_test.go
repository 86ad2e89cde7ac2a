package app

import (
	"testing"

	"parley/pkg/config"
	"parley/pkg/messages"
	"parley/pkg/models"
)

func newTestApp(t *testing.T, dbPath string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.Snapshot.RPS = 100
	cfg.Snapshot.Burst = 10
	a, err := New(config.Effective{Config: cfg, DBPath: dbPath}, "test", "", "")
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return a
}

func TestAppStateSurvivesRestart(t *testing.T) {
	dbPath := t.TempDir()

	a := newTestApp(t, dbPath)
	a.Messages.AddMessage(messages.Draft{Content: "hello", SenderID: "alice", ReceiverID: "bob"})
	a.Guilds.CreateServer("Server", "", "alice")
	a.Users.AddUser(models.User{ID: "alice", Username: "alice"})
	a.Voice.SetInputVolume(60)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b := newTestApp(t, dbPath)
	defer b.Close()
	if len(b.Messages.Messages()) != 1 {
		t.Fatalf("messages lost across restart: %d", len(b.Messages.Messages()))
	}
	if len(b.Guilds.Servers()) != 1 {
		t.Fatalf("servers lost across restart: %d", len(b.Guilds.Servers()))
	}
	if _, ok := b.Users.GetUser("alice"); !ok {
		t.Fatal("users lost across restart")
	}
	if b.Voice.InputVolume() != 60 {
		t.Fatalf("voice prefs lost across restart: %d", b.Voice.InputVolume())
	}
}
