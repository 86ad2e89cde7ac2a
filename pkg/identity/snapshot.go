package identity

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/snapshot"
)

type persisted struct {
	Users          []models.User          `json:"users"`
	FriendRequests []models.FriendRequest `json:"friend_requests"`
}

// SnapshotState serializes the current state for the persister.
func (s *Store) SnapshotState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(persisted{Users: s.users, FriendRequests: s.requests})
}

// Hydrate loads the persisted snapshot. Version 0 snapshots carried date
// fields in serialized string form and no effect/decoration fields; both
// are normalized here (timestamps by the lenient Nano decoder, the profile
// fields by defaulting to null).
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
		return fmt.Errorf("decode users snapshot: %w", err)
	}
	if st.Users == nil {
		st.Users = []models.User{}
	}
	if st.FriendRequests == nil {
		st.FriendRequests = []models.FriendRequest{}
	}

	s.mu.Lock()
	s.users = st.Users
	s.requests = st.FriendRequests
	s.mu.Unlock()

	logger.Info("users_hydrated",
		zap.Int("version", env.Version),
		zap.Int("users", len(st.Users)),
		zap.Int("friend_requests", len(st.FriendRequests)))
	return nil
}
