package snapshot

import (
	"encoding/json"
	"errors"
	"testing"

	"parley/pkg/store"
)

type fakeSource struct {
	name   string
	state  string
	err    error
	writes int
}

func (f *fakeSource) SnapshotName() string { return f.name }
func (f *fakeSource) SnapshotState() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.writes++
	return []byte(f.state), nil
}

func openStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func TestRegisterMarksDirty(t *testing.T) {
	p := NewPersister(0, 0)
	p.Register(&fakeSource{name: "a", state: `{}`})
	if !p.Dirty("a") {
		t.Fatal("fresh registration must be dirty so the first flush writes")
	}
}

func TestFlushWritesEnvelope(t *testing.T) {
	openStore(t)
	p := NewPersister(0, 0)
	src := &fakeSource{name: "a", state: `{"k":"v"}`}
	p.Register(src)

	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if p.Dirty("a") {
		t.Fatal("flush must clear the dirty flag")
	}
	if src.writes != 1 {
		t.Fatalf("expected 1 write, got %d", src.writes)
	}

	env, ok, err := Load("a")
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if env.Version != Version {
		t.Fatalf("envelope version %d, want %d", env.Version, Version)
	}
	var state map[string]string
	if err := json.Unmarshal(env.State, &state); err != nil || state["k"] != "v" {
		t.Fatalf("state mangled: %s", env.State)
	}

	// nothing dirty: second flush writes nothing
	if err := p.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if src.writes != 1 {
		t.Fatalf("clean source rewritten: %d writes", src.writes)
	}
}

func TestFlushKeepsFailedSourceDirty(t *testing.T) {
	openStore(t)
	p := NewPersister(0, 0)
	src := &fakeSource{name: "bad", err: errors.New("marshal broke")}
	p.Register(src)

	if err := p.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	if !p.Dirty("bad") {
		t.Fatal("failed source must stay dirty for the next flush")
	}
}

func TestNotifyInlineWrite(t *testing.T) {
	openStore(t)
	// generous budget: the notify should write immediately
	p := NewPersister(1000, 10)
	src := &fakeSource{name: "a", state: `{}`}
	p.Register(src)

	p.Notify("a")
	if p.Dirty("a") {
		t.Fatal("notify within budget must write inline")
	}
	if _, ok, _ := Load("a"); !ok {
		t.Fatal("inline write missing from store")
	}
}

func TestNotifyCoalescesOverBudget(t *testing.T) {
	openStore(t)
	// burst of 1: the second notify must stay dirty
	p := NewPersister(0.001, 1)
	src := &fakeSource{name: "a", state: `{}`}
	p.Register(src)

	p.Notify("a")
	p.Notify("a")
	if !p.Dirty("a") {
		t.Fatal("notify over budget must leave the source dirty")
	}
}

func TestNotifyUnknownSource(t *testing.T) {
	p := NewPersister(10, 1)
	p.Notify("never-registered")
	if p.Dirty("never-registered") {
		t.Fatal("unknown source must not become dirty")
	}
}

func TestNilPersisterIsInert(t *testing.T) {
	var p *Persister
	p.Register(&fakeSource{name: "a"})
	p.Notify("a")
	if err := p.Flush(); err != nil {
		t.Fatalf("nil persister flush: %v", err)
	}
	if p.Dirty("a") {
		t.Fatal("nil persister cannot be dirty")
	}
}

func TestLoadBareBlobAsVersionZero(t *testing.T) {
	openStore(t)
	if err := store.SaveSnapshot("legacy", []byte(`{"messages":[]}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env, ok, err := Load("legacy")
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if env.Version != 0 {
		t.Fatalf("bare blob must read as version 0, got %d", env.Version)
	}
	if string(env.State) != `{"messages":[]}` {
		t.Fatalf("bare blob state mangled: %s", env.State)
	}
}

func TestLoadMissing(t *testing.T) {
	openStore(t)
	if _, ok, err := Load("absent"); ok || err != nil {
		t.Fatalf("missing snapshot: ok=%v err=%v", ok, err)
	}
}
