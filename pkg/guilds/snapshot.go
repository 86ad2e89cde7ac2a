package guilds

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/snapshot"
)

type persisted struct {
	Servers []models.Server `json:"servers"`
}

// SnapshotState serializes the current state for the persister.
func (s *Store) SnapshotState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(persisted{Servers: s.servers})
}

// Hydrate loads the persisted snapshot. Fail-soft: missing maps and slices
// are defaulted so older snapshots remain loadable.
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
		return fmt.Errorf("decode servers snapshot: %w", err)
	}
	for i := range st.Servers {
		srv := &st.Servers[i]
		if srv.Members == nil {
			srv.Members = []string{}
		}
		if srv.Invites == nil {
			srv.Invites = []models.ServerInvite{}
		}
		if srv.Unread == nil {
			srv.Unread = map[string]map[string]models.ChannelRead{}
		}
	}

	s.mu.Lock()
	s.servers = st.Servers
	s.mu.Unlock()

	logger.Info("servers_hydrated",
		zap.Int("version", env.Version),
		zap.Int("servers", len(st.Servers)))
	return nil
}
