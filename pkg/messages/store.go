// Package messages owns all chat messages, the derived DM channels and the
// messaging store's per-server unread cursors. Mutations are single-writer
// behind a mutex; readers get copies, never internal slices.
package messages

import (
	"strings"
	"sync"

	"parley/pkg/models"
	"parley/pkg/snapshot"
	"parley/pkg/store"
	"parley/pkg/utils"
)

const snapshotName = "messages"

// Draft is the caller-supplied part of a new message. The store assigns id
// and timestamp. Content/image presence is the caller's concern (see
// pkg/validation); the store accepts any draft.
type Draft struct {
	Content      string
	SenderID     string
	ReceiverID   string
	ServerID     string
	Image        string
	ReplyTo      *models.ReplyRef
	ServerInvite *models.InviteEmbed
}

// Update is a partial message update. Nil fields are left untouched.
type Update struct {
	Content *string
	Image   *string
	Edited  *bool
}

type Store struct {
	mu         sync.RWMutex
	messages   []models.Message
	dmChannels []models.DMChannel
	unread     models.UnreadState
	persister  *snapshot.Persister
}

// New returns an empty store. persister may be nil for a purely in-memory
// store.
func New(p *snapshot.Persister) *Store {
	s := &Store{
		unread:    models.UnreadState{Servers: map[string]models.ServerUnread{}},
		persister: p,
	}
	p.Register(s)
	return s
}

func (s *Store) SnapshotName() string { return snapshotName }

func (s *Store) notify() { s.persister.Notify(snapshotName) }

// AddMessage assigns an id and timestamp to the draft and appends it.
// Server messages bump the channel's activity timestamp in the unread
// cursor; direct messages create or refresh the derived DM channel.
func (s *Store) AddMessage(d Draft) {
	now := models.Now()
	msg := models.Message{
		ID:           utils.GenID(),
		TS:           now,
		Content:      d.Content,
		SenderID:     d.SenderID,
		ReceiverID:   d.ReceiverID,
		ServerID:     d.ServerID,
		Image:        d.Image,
		ReplyTo:      d.ReplyTo,
		ServerInvite: d.ServerInvite,
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	if msg.ServerID != "" {
		su, ok := s.unread.Servers[msg.ServerID]
		if !ok {
			su = models.ServerUnread{Channels: map[string]models.Nano{}}
		}
		if su.Channels == nil {
			su.Channels = map[string]models.Nano{}
		}
		su.Channels[msg.ReceiverID] = now
		s.unread.Servers[msg.ServerID] = su
	} else {
		id := msg.DMID()
		last := msg
		found := false
		for i := range s.dmChannels {
			if s.dmChannels[i].ID == id {
				s.dmChannels[i].LastMessage = &last
				found = true
				break
			}
		}
		if !found {
			s.dmChannels = append(s.dmChannels, models.DMChannel{
				ID:           id,
				Participants: []string{d.SenderID, d.ReceiverID},
				LastMessage:  &last,
			})
		}
	}
	s.mu.Unlock()

	store.Mutations.WithLabelValues(snapshotName, "add").Inc()
	s.notify()
}

// UpdateMessage merges the update into the matching message. Silent no-op
// when the id is unknown. Authorization is the caller's concern.
func (s *Store) UpdateMessage(id string, upd Update) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		if upd.Content != nil {
			s.messages[i].Content = *upd.Content
		}
		if upd.Image != nil {
			s.messages[i].Image = *upd.Image
		}
		if upd.Edited != nil {
			s.messages[i].Edited = *upd.Edited
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "update").Inc()
	s.notify()
}

// DeleteMessage removes the message with the given id. The DM channel's
// LastMessage cache is deliberately left alone, so it can go stale here.
func (s *Store) DeleteMessage(id string) {
	s.mu.Lock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "delete").Inc()
	s.notify()
}

// PinMessage and UnpinMessage set or clear the pinned flag. Both are
// idempotent and no-ops on unknown ids.
func (s *Store) PinMessage(id string)   { s.setPinned(id, true) }
func (s *Store) UnpinMessage(id string) { s.setPinned(id, false) }

func (s *Store) setPinned(id string, pinned bool) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Pinned = pinned
			break
		}
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "pin").Inc()
	s.notify()
}

// GetOrCreateDMChannel returns the derived channel id for the pair,
// creating an empty channel record if none exists yet. Callable before any
// message exists in the conversation.
func (s *Store) GetOrCreateDMChannel(userA, userB string) string {
	id := models.DMChannelID(userA, userB)
	s.mu.Lock()
	for i := range s.dmChannels {
		if s.dmChannels[i].ID == id {
			s.mu.Unlock()
			return id
		}
	}
	s.dmChannels = append(s.dmChannels, models.DMChannel{
		ID:           id,
		Participants: []string{userA, userB},
	})
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "dm_channel").Inc()
	s.notify()
	return id
}

// SearchMessages returns channel messages whose content contains query
// case-insensitively, in insertion order. DM membership is decided by
// re-deriving each message's DM channel id, not by looking up participants.
// An empty query matches everything.
func (s *Store) SearchMessages(query, channelID, serverID string, isDM bool) []models.Message {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Message
	for _, m := range s.messages {
		if isDM {
			if m.DMID() == channelID && strings.Contains(strings.ToLower(m.Content), q) {
				out = append(out, m)
			}
			continue
		}
		if m.ReceiverID == channelID && m.ServerID == serverID &&
			strings.Contains(strings.ToLower(m.Content), q) {
			out = append(out, m)
		}
	}
	return out
}

// GetPinnedMessages returns the channel's pinned messages, same membership
// rules as SearchMessages, no text filter.
func (s *Store) GetPinnedMessages(channelID, serverID string, isDM bool) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Message
	for _, m := range s.messages {
		if !m.Pinned {
			continue
		}
		if isDM {
			if m.DMID() == channelID {
				out = append(out, m)
			}
			continue
		}
		if m.ReceiverID == channelID && m.ServerID == serverID {
			out = append(out, m)
		}
	}
	return out
}

// DeleteUserMessages removes every message the user sent. Messages sent to
// the user by others remain, as do DM channel records naming the user.
func (s *Store) DeleteUserMessages(userID string) {
	s.mu.Lock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.SenderID != userID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "delete_user").Inc()
	s.notify()
}

// MarkServerRead replaces the server's unread cursor wholesale: lastRead
// moves to now and all per-channel timestamps are forgotten. There is one
// cursor per server; userID is accepted for interface symmetry but the
// cursor is not per-user.
func (s *Store) MarkServerRead(serverID, userID string) {
	s.mu.Lock()
	s.unread.Servers[serverID] = models.ServerUnread{
		LastRead: models.Now(),
		Channels: map[string]models.Nano{},
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "mark_read").Inc()
	s.notify()
}

// MarkChannelRead upserts the channel's read timestamp, preserving the
// server's lastRead and other channels' entries.
func (s *Store) MarkChannelRead(serverID, channelID, userID string) {
	s.mu.Lock()
	su, ok := s.unread.Servers[serverID]
	if !ok {
		su = models.ServerUnread{Channels: map[string]models.Nano{}}
	}
	if su.Channels == nil {
		su.Channels = map[string]models.Nano{}
	}
	su.Channels[channelID] = models.Now()
	s.unread.Servers[serverID] = su
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "mark_read").Inc()
	s.notify()
}

// HasUnreadMessages reports whether the most recent message anywhere in the
// server postdates the server's lastRead. False when the server has no
// cursor at all. Single-cursor caveat as in MarkServerRead.
func (s *Store) HasUnreadMessages(serverID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	su, ok := s.unread.Servers[serverID]
	if !ok {
		return false
	}
	var latest models.Nano
	for _, m := range s.messages {
		if m.ServerID == serverID && m.TS.After(latest) {
			latest = m.TS
		}
	}
	return !latest.IsZero() && latest.After(su.LastRead)
}

// HasUnreadChannel reports whether the channel's most recent message
// postdates its stored read timestamp (epoch zero when never read).
func (s *Store) HasUnreadChannel(serverID, channelID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	su, ok := s.unread.Servers[serverID]
	if !ok {
		return false
	}
	lastRead := su.Channels[channelID]
	var latest models.Nano
	for _, m := range s.messages {
		if m.ServerID == serverID && m.ReceiverID == channelID && m.TS.After(latest) {
			latest = m.TS
		}
	}
	return !latest.IsZero() && latest.After(lastRead)
}

// GetLastMessageInChannel returns the most recent message in the channel.
func (s *Store) GetLastMessageInChannel(serverID, channelID string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last models.Message
	var found bool
	for _, m := range s.messages {
		if m.ServerID == serverID && m.ReceiverID == channelID && (!found || m.TS.After(last.TS)) {
			last = m
			found = true
		}
	}
	return last, found
}

// Messages returns a copy of all messages in insertion order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.messages...)
}

// DMChannels returns a copy of all DM channel records.
func (s *Store) DMChannels() []models.DMChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DMChannel, len(s.dmChannels))
	for i, ch := range s.dmChannels {
		out[i] = cloneDMChannel(ch)
	}
	return out
}

// DMChannelByID returns the channel record with the given derived id.
func (s *Store) DMChannelByID(id string) (models.DMChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.dmChannels {
		if ch.ID == id {
			return cloneDMChannel(ch), true
		}
	}
	return models.DMChannel{}, false
}

// Unread returns a deep copy of the unread cursor map.
func (s *Store) Unread() models.UnreadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := models.UnreadState{Servers: make(map[string]models.ServerUnread, len(s.unread.Servers))}
	for id, su := range s.unread.Servers {
		channels := make(map[string]models.Nano, len(su.Channels))
		for c, ts := range su.Channels {
			channels[c] = ts
		}
		out.Servers[id] = models.ServerUnread{LastRead: su.LastRead, Channels: channels}
	}
	return out
}

func cloneDMChannel(ch models.DMChannel) models.DMChannel {
	out := ch
	out.Participants = append([]string(nil), ch.Participants...)
	if ch.LastMessage != nil {
		last := *ch.LastMessage
		out.LastMessage = &last
	}
	return out
}
