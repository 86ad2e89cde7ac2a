package presence

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/snapshot"
)

type persisted struct {
	InputDevice string                           `json:"input_device,omitempty"`
	InputVolume int                              `json:"input_volume"`
	UserStates  map[string]models.VoiceUserState `json:"user_states,omitempty"`
}

// SnapshotState serializes the persisted subset of presence state. The
// active channel is ephemeral and never written.
func (s *Store) SnapshotState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(persisted{
		InputDevice: s.inputDevice,
		InputVolume: s.inputVolume,
		UserStates:  s.userStates,
	})
}

// Hydrate restores device preferences and user flags. Ephemeral fields
// (active channel, speaking, level) are zeroed regardless of what an older
// snapshot carried.
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
		return fmt.Errorf("decode voice snapshot: %w", err)
	}
	if st.InputVolume == 0 {
		st.InputVolume = 100
	}
	if st.UserStates == nil {
		st.UserStates = map[string]models.VoiceUserState{}
	}
	for id, u := range st.UserStates {
		u.Speaking = false
		u.AudioLevel = 0
		st.UserStates[id] = u
	}

	s.mu.Lock()
	s.inputDevice = st.InputDevice
	s.inputVolume = st.InputVolume
	s.currentChannelID = ""
	s.userStates = st.UserStates
	s.mu.Unlock()

	logger.Info("voice_hydrated", zap.Int("version", env.Version))
	return nil
}
