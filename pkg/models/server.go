package models

// ChannelType distinguishes text and voice channels.
type ChannelType string

const (
	ChannelText  ChannelType = "text"
	ChannelVoice ChannelType = "voice"
)

type Channel struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       ChannelType `json:"type"`
	CategoryID string      `json:"category_id"`
}

// Category groups channels inside a server. Collapsed records which users
// folded the category in their own sidebar.
type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Channels  []Channel       `json:"channels"`
	Collapsed map[string]bool `json:"collapsed,omitempty"`
}

// ServerInvite is a join code for a server. ExpiresAt zero means no expiry;
// MaxUses zero means unlimited.
type ServerInvite struct {
	Code      string `json:"code"`
	ServerID  string `json:"server_id"`
	CreatorID string `json:"creator_id"`
	ExpiresAt Nano   `json:"expires_at,omitempty"`
	MaxUses   int    `json:"max_uses,omitempty"`
	Uses      int    `json:"uses"`
}

// ChannelRead is one user's read state for one channel in the guild store's
// unread model. Unlike the messaging store's cursor this model is keyed per
// user; the two models are maintained independently and never reconciled.
type ChannelRead struct {
	LastRead  Nano `json:"last_read"`
	HasUnread bool `json:"has_unread"`
}

type Server struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	OwnerID    string         `json:"owner_id"`
	Members    []string       `json:"members"`
	Admins     []string       `json:"admins,omitempty"`
	Categories []Category     `json:"categories"`
	Invites    []ServerInvite `json:"invites"`
	// Unread is userID -> channelID -> read state.
	Unread map[string]map[string]ChannelRead `json:"unread_state,omitempty"`
}

// HasMember reports whether the user is a member of the server.
func (s Server) HasMember(userID string) bool {
	for _, m := range s.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Channels returns every channel across the server's categories.
func (s Server) AllChannels() []Channel {
	var out []Channel
	for _, c := range s.Categories {
		out = append(out, c.Channels...)
	}
	return out
}
