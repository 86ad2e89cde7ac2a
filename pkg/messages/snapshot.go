package messages

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/snapshot"
)

// persisted is the messaging store's snapshot layout.
type persisted struct {
	Messages   []models.Message   `json:"messages"`
	DMChannels []models.DMChannel `json:"dm_channels"`
	Unread     models.UnreadState `json:"unread_state"`
}

// SnapshotState serializes the current state for the persister.
func (s *Store) SnapshotState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(persisted{
		Messages:   s.messages,
		DMChannels: s.dmChannels,
		Unread:     s.unread,
	})
}

// Hydrate loads the persisted snapshot, migrating older versions. Missing
// snapshot is not an error; the store simply starts empty. Migration is
// fail-soft: unknown fields are ignored and missing ones defaulted, and
// timestamp fields are re-hydrated from whatever form they were stored in.
func (s *Store) Hydrate() error {
	env, ok, err := snapshot.Load(snapshotName)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var st persisted
	if err := json.Unmarshal(env.State, &st); err != nil {
		return fmt.Errorf("decode messages snapshot: %w", err)
	}
	if env.Version < snapshot.Version {
		logger.Info("messages_snapshot_migrated", zap.Int("from_version", env.Version))
	}
	migrate(&st)

	s.mu.Lock()
	s.messages = st.Messages
	s.dmChannels = st.DMChannels
	s.unread = st.Unread
	s.mu.Unlock()

	logger.Info("messages_hydrated",
		zap.Int("version", env.Version),
		zap.Int("messages", len(st.Messages)),
		zap.Int("dm_channels", len(st.DMChannels)))
	return nil
}

// migrate brings an older snapshot up to the current layout. Version 0
// snapshots may lack unread state and DM channels entirely.
func migrate(st *persisted) {
	if st.Messages == nil {
		st.Messages = []models.Message{}
	}
	if st.DMChannels == nil {
		st.DMChannels = []models.DMChannel{}
	}
	if st.Unread.Servers == nil {
		st.Unread.Servers = map[string]models.ServerUnread{}
	}
	for id, su := range st.Unread.Servers {
		if su.Channels == nil {
			su.Channels = map[string]models.Nano{}
			st.Unread.Servers[id] = su
		}
	}
}
