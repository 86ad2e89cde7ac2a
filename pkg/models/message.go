package models

import (
	"sort"
	"strings"
)

// Message is a single chat message. A message belongs to exactly one of two
// worlds: when ServerID is set it is a guild-channel message and ReceiverID
// names a channel; when ServerID is empty it is a direct message and
// ReceiverID names a user. Nothing else distinguishes the two.
type Message struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	ServerID   string `json:"server_id,omitempty"`
	TS         Nano   `json:"ts"`
	Image      string `json:"image,omitempty"`
	Pinned     bool   `json:"pinned,omitempty"`
	Edited     bool   `json:"edited,omitempty"`
	// ReplyTo is a snapshot taken at reply time, not a live reference;
	// editing or deleting the original does not update it.
	ReplyTo      *ReplyRef    `json:"reply_to,omitempty"`
	ServerInvite *InviteEmbed `json:"server_invite,omitempty"`
}

// IsDM reports whether the message is a direct message.
func (m Message) IsDM() bool { return m.ServerID == "" }

// DMID returns the derived DM channel id for this message's sender/receiver
// pair. Only meaningful for direct messages.
func (m Message) DMID() string { return DMChannelID(m.SenderID, m.ReceiverID) }

// ReplyRef is the quoted snapshot carried by a reply.
type ReplyRef struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// InviteEmbed is a server invite rendered inside a message.
type InviteEmbed struct {
	Code       string `json:"code"`
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	ServerIcon string `json:"server_icon"`
	InviterID  string `json:"inviter_id"`
}

// DMChannel is a two-party conversation. Its identity is derived from the
// participant pair, so it exists independently of any stored record.
type DMChannel struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	// LastMessage is a denormalized cache refreshed on every send. It is
	// not recomputed when the cached message is later deleted.
	LastMessage *Message `json:"last_message,omitempty"`
}

// DMChannelID derives the channel id for a participant pair. The pair is
// sorted lexicographically first, so both call orders yield the same id.
func DMChannelID(a, b string) string {
	p := []string{a, b}
	sort.Strings(p)
	return "dm-" + strings.Join(p, "-")
}

// ServerUnread is one guild's unread cursor in the messaging store: a single
// server-wide lastRead plus per-channel activity timestamps. There is one
// cursor per server, not one per user.
type ServerUnread struct {
	LastRead Nano            `json:"last_read"`
	Channels map[string]Nano `json:"channels"`
}

// UnreadState maps server id to that server's unread cursor.
type UnreadState struct {
	Servers map[string]ServerUnread `json:"servers"`
}
