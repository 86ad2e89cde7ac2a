// Package guilds owns server/category/channel topology, membership,
// invites and the guild store's per-user-per-channel unread flags. This
// unread model is independent of the messaging store's cursors; the two are
// maintained separately and never reconciled.
package guilds

import (
	"fmt"
	"sync"
	"time"

	"parley/pkg/models"
	"parley/pkg/snapshot"
	"parley/pkg/store"
	"parley/pkg/utils"
)

const snapshotName = "servers"

type Store struct {
	mu        sync.RWMutex
	servers   []models.Server
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

// CreateServer creates a server with a default General category holding
// welcome and general text channels, and seeds the owner's read state.
func (s *Store) CreateServer(name, icon, ownerID string) models.Server {
	now := models.Now()
	srv := models.Server{
		ID:      utils.GenID(),
		Name:    name,
		Icon:    icon,
		OwnerID: ownerID,
		Members: []string{ownerID},
		Admins:  []string{ownerID},
		Categories: []models.Category{{
			ID:   "general",
			Name: "General",
			Channels: []models.Channel{
				{ID: "welcome", Name: "welcome", Type: models.ChannelText, CategoryID: "general"},
				{ID: "general", Name: "general", Type: models.ChannelText, CategoryID: "general"},
			},
			Collapsed: map[string]bool{},
		}},
		Invites: []models.ServerInvite{},
		Unread: map[string]map[string]models.ChannelRead{
			ownerID: {
				"welcome": {LastRead: now},
				"general": {LastRead: now},
			},
		},
	}

	s.mu.Lock()
	s.servers = append(s.servers, srv)
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "create").Inc()
	s.notify()
	return srv
}

// UpdateServer merges name/icon updates into the matching server. Silent
// no-op on unknown id.
func (s *Store) UpdateServer(serverID string, upd ServerUpdate) {
	s.mu.Lock()
	for i := range s.servers {
		if s.servers[i].ID != serverID {
			continue
		}
		if upd.Name != nil {
			s.servers[i].Name = *upd.Name
		}
		if upd.Icon != nil {
			s.servers[i].Icon = *upd.Icon
		}
		if upd.Admins != nil {
			s.servers[i].Admins = append([]string(nil), upd.Admins...)
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "update").Inc()
	s.notify()
}

// ServerUpdate is a partial server update; nil fields are left untouched.
type ServerUpdate struct {
	Name   *string
	Icon   *string
	Admins []string
}

// DeleteServer removes the server. Messages referencing it are owned by the
// messaging store and are not touched here.
func (s *Store) DeleteServer(serverID string) {
	s.mu.Lock()
	kept := s.servers[:0]
	for _, srv := range s.servers {
		if srv.ID != serverID {
			kept = append(kept, srv)
		}
	}
	s.servers = kept
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "delete").Inc()
	s.notify()
}

// JoinServer adds the user to the server holding the invite code, seeds
// their read state for every channel and bumps the invite's use count.
// Returns false when the code is unknown or the user is already a member.
func (s *Store) JoinServer(inviteCode, userID string) bool {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		store.Mutations.WithLabelValues(snapshotName, "join").Inc()
		s.notify()
	}()
	for i := range s.servers {
		srv := &s.servers[i]
		idx := -1
		for j := range srv.Invites {
			if srv.Invites[j].Code == inviteCode {
				idx = j
				break
			}
		}
		if idx < 0 {
			continue
		}
		if srv.HasMember(userID) {
			return false
		}
		srv.Members = append(srv.Members, userID)
		srv.Invites[idx].Uses++
		if srv.Unread == nil {
			srv.Unread = map[string]map[string]models.ChannelRead{}
		}
		reads := map[string]models.ChannelRead{}
		now := models.Now()
		for _, ch := range srv.AllChannels() {
			reads[ch.ID] = models.ChannelRead{LastRead: now}
		}
		srv.Unread[userID] = reads
		return true
	}
	return false
}

// CreateInvite mints an invite code on the server. maxUses zero means
// unlimited; expiresIn zero means no expiry.
func (s *Store) CreateInvite(serverID, creatorID string, maxUses int, expiresIn time.Duration) (models.ServerInvite, error) {
	inv := models.ServerInvite{
		Code:      utils.GenCode(),
		ServerID:  serverID,
		CreatorID: creatorID,
		MaxUses:   maxUses,
	}
	if expiresIn > 0 {
		inv.ExpiresAt = models.At(time.Now().Add(expiresIn))
	}

	s.mu.Lock()
	found := false
	for i := range s.servers {
		if s.servers[i].ID == serverID {
			s.servers[i].Invites = append(s.servers[i].Invites, inv)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return models.ServerInvite{}, fmt.Errorf("server not found: %s", serverID)
	}
	store.Mutations.WithLabelValues(snapshotName, "invite").Inc()
	s.notify()
	return inv, nil
}

// GetInvite resolves an invite code to its invite and owning server.
func (s *Store) GetInvite(code string) (models.ServerInvite, models.Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, srv := range s.servers {
		for _, inv := range srv.Invites {
			if inv.Code == code {
				return inv, cloneServer(srv), true
			}
		}
	}
	return models.ServerInvite{}, models.Server{}, false
}

// GetServer returns a copy of the server with the given id.
func (s *Store) GetServer(serverID string) (models.Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, srv := range s.servers {
		if srv.ID == serverID {
			return cloneServer(srv), true
		}
	}
	return models.Server{}, false
}

// GetUserServers returns every server the user is a member of.
func (s *Store) GetUserServers(userID string) []models.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Server
	for _, srv := range s.servers {
		if srv.HasMember(userID) {
			out = append(out, cloneServer(srv))
		}
	}
	return out
}

// AddCategory appends an empty category to the server.
func (s *Store) AddCategory(serverID, name string) {
	s.mu.Lock()
	for i := range s.servers {
		if s.servers[i].ID == serverID {
			s.servers[i].Categories = append(s.servers[i].Categories, models.Category{
				ID:        utils.GenID(),
				Name:      name,
				Channels:  []models.Channel{},
				Collapsed: map[string]bool{},
			})
			break
		}
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "category").Inc()
	s.notify()
}

// AddChannel appends a channel to the category and seeds read state for
// every current member.
func (s *Store) AddChannel(serverID, categoryID, name string, typ models.ChannelType) {
	s.mu.Lock()
	for i := range s.servers {
		srv := &s.servers[i]
		if srv.ID != serverID {
			continue
		}
		ch := models.Channel{ID: utils.GenID(), Name: name, Type: typ, CategoryID: categoryID}
		for j := range srv.Categories {
			if srv.Categories[j].ID == categoryID {
				srv.Categories[j].Channels = append(srv.Categories[j].Channels, ch)
				break
			}
		}
		if srv.Unread == nil {
			srv.Unread = map[string]map[string]models.ChannelRead{}
		}
		now := models.Now()
		for _, member := range srv.Members {
			if srv.Unread[member] == nil {
				srv.Unread[member] = map[string]models.ChannelRead{}
			}
			srv.Unread[member][ch.ID] = models.ChannelRead{LastRead: now}
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "channel").Inc()
	s.notify()
}

// ToggleCategoryCollapse flips the category's collapsed flag for one user.
func (s *Store) ToggleCategoryCollapse(serverID, categoryID, userID string) {
	s.mu.Lock()
	for i := range s.servers {
		if s.servers[i].ID != serverID {
			continue
		}
		for j := range s.servers[i].Categories {
			cat := &s.servers[i].Categories[j]
			if cat.ID == categoryID {
				if cat.Collapsed == nil {
					cat.Collapsed = map[string]bool{}
				}
				cat.Collapsed[userID] = !cat.Collapsed[userID]
				break
			}
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "collapse").Inc()
	s.notify()
}

// HasUnreadMessages reports whether any channel carries an unread flag for
// the user. This is the guild store's flag-based, per-user model.
func (s *Store) HasUnreadMessages(serverID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, srv := range s.servers {
		if srv.ID != serverID {
			continue
		}
		for _, read := range srv.Unread[userID] {
			if read.HasUnread {
				return true
			}
		}
		return false
	}
	return false
}

// HasUnreadChannel reports the user's unread flag for one channel.
func (s *Store) HasUnreadChannel(serverID, channelID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, srv := range s.servers {
		if srv.ID == serverID {
			return srv.Unread[userID][channelID].HasUnread
		}
	}
	return false
}

// MarkChannelAsRead clears the user's unread flag and advances lastRead.
// No-op when the user has no read state on the server.
func (s *Store) MarkChannelAsRead(serverID, channelID, userID string) {
	s.setChannelFlag(serverID, channelID, userID, false)
}

// MarkChannelAsUnread raises the user's unread flag for the channel.
func (s *Store) MarkChannelAsUnread(serverID, channelID, userID string) {
	s.setChannelFlag(serverID, channelID, userID, true)
}

func (s *Store) setChannelFlag(serverID, channelID, userID string, unread bool) {
	s.mu.Lock()
	for i := range s.servers {
		srv := &s.servers[i]
		if srv.ID != serverID {
			continue
		}
		if srv.Unread[userID] == nil {
			break
		}
		srv.Unread[userID][channelID] = models.ChannelRead{
			LastRead:  models.Now(),
			HasUnread: unread,
		}
		break
	}
	s.mu.Unlock()
	store.Mutations.WithLabelValues(snapshotName, "mark").Inc()
	s.notify()
}

// Servers returns a copy of all servers.
func (s *Store) Servers() []models.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Server, len(s.servers))
	for i, srv := range s.servers {
		out[i] = cloneServer(srv)
	}
	return out
}

func cloneServer(srv models.Server) models.Server {
	out := srv
	out.Members = append([]string(nil), srv.Members...)
	out.Admins = append([]string(nil), srv.Admins...)
	out.Invites = append([]models.ServerInvite(nil), srv.Invites...)
	out.Categories = make([]models.Category, len(srv.Categories))
	for i, cat := range srv.Categories {
		c := cat
		c.Channels = append([]models.Channel(nil), cat.Channels...)
		c.Collapsed = make(map[string]bool, len(cat.Collapsed))
		for k, v := range cat.Collapsed {
			c.Collapsed[k] = v
		}
		out.Categories[i] = c
	}
	out.Unread = make(map[string]map[string]models.ChannelRead, len(srv.Unread))
	for user, reads := range srv.Unread {
		m := make(map[string]models.ChannelRead, len(reads))
		for ch, r := range reads {
			m[ch] = r
		}
		out.Unread[user] = m
	}
	return out
}
