// Package snapshot persists whole-store state as versioned JSON envelopes
// in the local key-value store. Persistence is best-effort: mutations mark
// a store dirty and a rate-limited writer decides whether to flush inline
// or leave the work for the next scheduled sync.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"parley/pkg/logger"
	"parley/pkg/store"
)

// Version is the current envelope schema version. Version 0 envelopes (and
// bare state blobs without an envelope) are still loadable; stores default
// the fields their migration requires.
const Version = 1

// Envelope wraps a store's serialized state with its schema version.
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Source is a store that can serialize its current state.
type Source interface {
	SnapshotName() string
	SnapshotState() ([]byte, error)
}

// Persister coalesces snapshot writes across registered sources. A nil
// *Persister is valid and drops all notifications, so stores can run fully
// in-memory (tests, ephemeral tooling) with no persistence wired.
type Persister struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	sources map[string]Source
	dirty   map[string]bool
}

// NewPersister returns a Persister whose inline writes are bounded by the
// given rate; rps <= 0 disables inline writes entirely and leaves all
// flushing to Flush callers.
func NewPersister(rps float64, burst int) *Persister {
	var lim *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Persister{
		limiter: lim,
		sources: map[string]Source{},
		dirty:   map[string]bool{},
	}
}

// Register adds a source. Registering also marks it dirty so the first
// flush writes an initial snapshot.
func (p *Persister) Register(src Source) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[src.SnapshotName()] = src
	p.dirty[src.SnapshotName()] = true
}

// Notify records that a source mutated. If the write budget allows, the
// snapshot is written immediately; otherwise it stays dirty until the next
// Flush.
func (p *Persister) Notify(name string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	src, ok := p.sources[name]
	if !ok {
		p.mu.Unlock()
		return
	}
	p.dirty[name] = true
	if p.limiter == nil || !p.limiter.Allow() || !store.Ready() {
		p.mu.Unlock()
		return
	}
	p.dirty[name] = false
	p.mu.Unlock()

	if err := writeSnapshot(src); err != nil {
		logger.Error("snapshot_inline_write_failed", zap.String("name", name), zap.Error(err))
		p.mu.Lock()
		p.dirty[name] = true
		p.mu.Unlock()
	}
}

// Flush writes every dirty snapshot. It returns the first error encountered
// but attempts all sources regardless.
func (p *Persister) Flush() error {
	if p == nil {
		return nil
	}
	if !store.Ready() {
		return fmt.Errorf("snapshot flush: store not open")
	}
	p.mu.Lock()
	var pending []Source
	for name, d := range p.dirty {
		if d {
			if src, ok := p.sources[name]; ok {
				pending = append(pending, src)
				p.dirty[name] = false
			}
		}
	}
	p.mu.Unlock()

	var firstErr error
	for _, src := range pending {
		if err := writeSnapshot(src); err != nil {
			logger.Error("snapshot_flush_failed", zap.String("name", src.SnapshotName()), zap.Error(err))
			p.mu.Lock()
			p.dirty[src.SnapshotName()] = true
			p.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Dirty reports whether the named source has unflushed state.
func (p *Persister) Dirty(name string) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty[name]
}

func writeSnapshot(src Source) error {
	state, err := src.SnapshotState()
	if err != nil {
		return fmt.Errorf("marshal %s state: %w", src.SnapshotName(), err)
	}
	env, err := json.Marshal(Envelope{Version: Version, State: state})
	if err != nil {
		return err
	}
	return store.SaveSnapshot(src.SnapshotName(), env)
}

// Load reads the named envelope from the store. Pre-envelope blobs (no
// "version" wrapper) are returned as a version 0 envelope holding the raw
// bytes, so older snapshots stay loadable.
func Load(name string) (Envelope, bool, error) {
	raw, ok, err := store.LoadSnapshot(name)
	if err != nil || !ok {
		return Envelope{}, false, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.State == nil {
		return Envelope{Version: 0, State: raw}, true, nil
	}
	return env, true, nil
}
