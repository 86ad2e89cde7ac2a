// Package presence tracks ephemeral voice state: which channel the local
// client is in and each user's mute/deafen/speaking flags. Media capture
// and audio analysis live outside this store; callers feed audio levels in
// through SetAudioLevel/SetSpeaking. Only the input device selection and
// volume survive a snapshot round-trip.
package presence

import (
	"sync"

	"parley/pkg/models"
	"parley/pkg/snapshot"
	"parley/pkg/store"
)

const snapshotName = "voice"

// speakingThreshold is the normalized level above which a user counts as
// speaking.
const speakingThreshold = 0.1

type Store struct {
	mu               sync.RWMutex
	inputDevice      string
	inputVolume      int
	currentChannelID string
	userStates       map[string]models.VoiceUserState
	persister        *snapshot.Persister
}

// New returns a store with default input volume. persister may be nil.
func New(p *snapshot.Persister) *Store {
	s := &Store{
		inputVolume: 100,
		userStates:  map[string]models.VoiceUserState{},
		persister:   p,
	}
	p.Register(s)
	return s
}

func (s *Store) SnapshotName() string { return snapshotName }

func (s *Store) notify() { s.persister.Notify(snapshotName) }

// JoinChannel makes channelID the active channel and resets the user's
// voice state. Joining while in another channel implicitly leaves it.
func (s *Store) JoinChannel(channelID, userID string) {
	s.mu.Lock()
	s.currentChannelID = channelID
	s.userStates[userID] = models.VoiceUserState{}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "join").Inc()
	s.notify()
}

// LeaveChannel clears the active channel and resets the user's state.
func (s *Store) LeaveChannel(userID string) {
	s.mu.Lock()
	s.currentChannelID = ""
	s.userStates[userID] = models.VoiceUserState{}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "leave").Inc()
	s.notify()
}

// ToggleMute flips the user's mute flag and stops them counting as
// speaking. No-op for users with no voice state.
func (s *Store) ToggleMute(userID string) {
	s.mu.Lock()
	if st, ok := s.userStates[userID]; ok {
		st.Muted = !st.Muted
		st.Speaking = false
		s.userStates[userID] = st
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "mute").Inc()
	s.notify()
}

// ToggleDeafen flips the deafen flag. Deafening also mutes; undeafening
// unmutes.
func (s *Store) ToggleDeafen(userID string) {
	s.mu.Lock()
	if st, ok := s.userStates[userID]; ok {
		st.Deafened = !st.Deafened
		st.Muted = st.Deafened
		st.Speaking = false
		s.userStates[userID] = st
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "deafen").Inc()
	s.notify()
}

// SetSpeaking sets the speaking flag. Ignored while the user is muted or
// deafened.
func (s *Store) SetSpeaking(userID string, speaking bool) {
	s.mu.Lock()
	if st, ok := s.userStates[userID]; ok && !st.Muted && !st.Deafened {
		st.Speaking = speaking
		s.userStates[userID] = st
	}
	s.mu.Unlock()
}

// SetAudioLevel records a normalized [0,1] input level for the user and
// derives the speaking flag from it. Ignored while muted or deafened.
func (s *Store) SetAudioLevel(userID string, level float64) {
	s.mu.Lock()
	if st, ok := s.userStates[userID]; ok && !st.Muted && !st.Deafened {
		st.AudioLevel = level
		st.Speaking = level > speakingThreshold
		s.userStates[userID] = st
	}
	s.mu.Unlock()
}

// UserState returns the user's voice state if they have one.
func (s *Store) UserState(userID string) (models.VoiceUserState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.userStates[userID]
	return st, ok
}

// ChannelParticipants returns users currently audible in the channel:
// anyone speaking or simply unmuted.
func (s *Store) ChannelParticipants(channelID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if channelID != s.currentChannelID {
		return nil
	}
	var out []string
	for id, st := range s.userStates {
		if st.Speaking || !st.Muted {
			out = append(out, id)
		}
	}
	return out
}

// UserChannel returns the active channel id, empty when not in a channel.
func (s *Store) UserChannel(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChannelID
}

// SetInputDevice records the preferred capture device.
func (s *Store) SetInputDevice(deviceID string) {
	s.mu.Lock()
	s.inputDevice = deviceID
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "device").Inc()
	s.notify()
}

// SetInputVolume records the input gain as a percentage.
func (s *Store) SetInputVolume(volume int) {
	s.mu.Lock()
	s.inputVolume = volume
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "volume").Inc()
	s.notify()
}

// InputDevice and InputVolume return the persisted capture preferences.
func (s *Store) InputDevice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputDevice
}

func (s *Store) InputVolume() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputVolume
}

// Cleanup drops all ephemeral state, keeping device preferences.
func (s *Store) Cleanup() {
	s.mu.Lock()
	s.currentChannelID = ""
	s.userStates = map[string]models.VoiceUserState{}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "cleanup").Inc()
	s.notify()
}
