// Package identity owns user records and the friend/block relationship
// graph. Friendships and blocks are both carried on FriendRequest records,
// keyed by their status.
package identity

import (
	"sync"

	"parley/pkg/models"
	"parley/pkg/snapshot"
	"parley/pkg/store"
	"parley/pkg/utils"
)

const snapshotName = "users"

type Store struct {
	mu        sync.RWMutex
	users     []models.User
	requests  []models.FriendRequest
	persister *snapshot.Persister
}

// New returns an empty store. persister may be nil for a purely in-memory
// store.
func New(p *snapshot.Persister) *Store {
	s := &Store{persister: p}
	p.Register(s)
	return s
}

func (s *Store) SnapshotName() string { return snapshotName }

func (s *Store) notify() { s.persister.Notify(snapshotName) }

// AddUser appends a user record as given; the caller owns id assignment so
// imported accounts keep their identity.
func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "add").Inc()
	s.notify()
}

// UserUpdate is a partial user update; nil fields are left untouched.
type UserUpdate struct {
	DisplayName *string
	Avatar      *string
	Bio         *string
	Banner      *string
	AccentColor *string
	Effect      **string
	Decoration  **string
	Status      *models.PresenceStatus
}

// UpdateUser merges the update into the matching user. Silent no-op on
// unknown id.
func (s *Store) UpdateUser(userID string, upd UserUpdate) {
	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID != userID {
			continue
		}
		u := &s.users[i]
		if upd.DisplayName != nil {
			u.DisplayName = *upd.DisplayName
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.Banner != nil {
			u.Banner = *upd.Banner
		}
		if upd.AccentColor != nil {
			u.AccentColor = *upd.AccentColor
		}
		if upd.Effect != nil {
			u.Effect = *upd.Effect
		}
		if upd.Decoration != nil {
			u.Decoration = *upd.Decoration
		}
		if upd.Status != nil {
			u.Status = *upd.Status
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "update").Inc()
	s.notify()
}

// DeleteUser removes the user and every friend request naming them in
// either direction. The user's messages live in the messaging store and
// are cleaned up there (DeleteUserMessages).
func (s *Store) DeleteUser(userID string) {
	s.mu.Lock()
	keptUsers := s.users[:0]
	for _, u := range s.users {
		if u.ID != userID {
			keptUsers = append(keptUsers, u)
		}
	}
	s.users = keptUsers
	keptReqs := s.requests[:0]
	for _, r := range s.requests {
		if r.SenderID != userID && r.ReceiverID != userID {
			keptReqs = append(keptReqs, r)
		}
	}
	s.requests = keptReqs
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "delete").Inc()
	s.notify()
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(userID string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == userID {
			return u, true
		}
	}
	return models.User{}, false
}

// AllUsers returns a copy of every user record.
func (s *Store) AllUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

// SendFriendRequest records a pending request unless any request already
// connects the pair in either direction.
func (s *Store) SendFriendRequest(senderID, receiverID string) {
	s.mu.Lock()
	exists := false
	for _, r := range s.requests {
		if r.Involves(senderID, receiverID) {
			exists = true
			break
		}
	}
	if !exists {
		s.requests = append(s.requests, models.FriendRequest{
			ID:         utils.GenID(),
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     models.FriendPending,
			TS:         models.Now(),
		})
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "friend_request").Inc()
	s.notify()
}

// AcceptFriendRequest flips the request to accepted. Silent no-op on
// unknown id.
func (s *Store) AcceptFriendRequest(requestID string) {
	s.mu.Lock()
	for i := range s.requests {
		if s.requests[i].ID == requestID {
			s.requests[i].Status = models.FriendAccepted
			break
		}
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "friend_accept").Inc()
	s.notify()
}

// RejectFriendRequest drops the request entirely.
func (s *Store) RejectFriendRequest(requestID string) {
	s.mu.Lock()
	kept := s.requests[:0]
	for _, r := range s.requests {
		if r.ID != requestID {
			kept = append(kept, r)
		}
	}
	s.requests = kept
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "friend_reject").Inc()
	s.notify()
}

// BlockUser removes any requests between the pair and records a blocked
// edge from userID to blockedID.
func (s *Store) BlockUser(userID, blockedID string) {
	s.mu.Lock()
	kept := s.requests[:0]
	for _, r := range s.requests {
		if !r.Involves(userID, blockedID) {
			kept = append(kept, r)
		}
	}
	s.requests = append(kept, models.FriendRequest{
		ID:         utils.GenID(),
		SenderID:   userID,
		ReceiverID: blockedID,
		Status:     models.FriendBlocked,
		TS:         models.Now(),
	})
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "block").Inc()
	s.notify()
}

// UnblockUser removes the blocked edge from userID to blockedID. Blocks in
// the other direction are untouched.
func (s *Store) UnblockUser(userID, blockedID string) {
	s.mu.Lock()
	kept := s.requests[:0]
	for _, r := range s.requests {
		if r.SenderID == userID && r.ReceiverID == blockedID && r.Status == models.FriendBlocked {
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "unblock").Inc()
	s.notify()
}

// FriendRequestsFor returns the user's pending requests, sent or received.
func (s *Store) FriendRequestsFor(userID string) []models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.Status == models.FriendPending && (r.SenderID == userID || r.ReceiverID == userID) {
			out = append(out, r)
		}
	}
	return out
}

// Friends returns the ids of everyone connected to the user by an accepted
// request.
func (s *Store) Friends(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, r := range s.requests {
		if r.Status != models.FriendAccepted {
			continue
		}
		switch userID {
		case r.SenderID:
			out = append(out, r.ReceiverID)
		case r.ReceiverID:
			out = append(out, r.SenderID)
		}
	}
	return out
}

// BlockedUsers returns the ids the user has blocked.
func (s *Store) BlockedUsers(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, r := range s.requests {
		if r.SenderID == userID && r.Status == models.FriendBlocked {
			out = append(out, r.ReceiverID)
		}
	}
	return out
}

// AreFriends reports whether an accepted request connects the pair.
func (s *Store) AreFriends(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.Status == models.FriendAccepted && r.Involves(a, b) {
			return true
		}
	}
	return false
}

// HasPendingRequest reports whether a pending request connects the pair in
// either direction.
func (s *Store) HasPendingRequest(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.Status == models.FriendPending && r.Involves(a, b) {
			return true
		}
	}
	return false
}
