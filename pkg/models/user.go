package models

// PresenceStatus is the user-selected availability shown next to avatars.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusIdle    PresenceStatus = "idle"
	StatusDND     PresenceStatus = "dnd"
	StatusOffline PresenceStatus = "offline"
)

type User struct {
	ID            string         `json:"id"`
	DisplayName   string         `json:"display_name"`
	Username      string         `json:"username"`
	Discriminator string         `json:"discriminator"`
	Email         string         `json:"email"`
	Avatar        string         `json:"avatar,omitempty"`
	Bio           string         `json:"bio,omitempty"`
	Banner        string         `json:"banner,omitempty"`
	AccentColor   string         `json:"accent_color,omitempty"`
	Effect        *string        `json:"effect"`
	Decoration    *string        `json:"decoration"`
	MemberSince   Nano           `json:"member_since"`
	Status        PresenceStatus `json:"status,omitempty"`
}

// FriendStatus is the lifecycle state of a FriendRequest record. The friend
// graph and the block list are both carried on these records: an accepted
// request is a friendship, a blocked one is a block edge.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendBlocked  FriendStatus = "blocked"
)

type FriendRequest struct {
	ID         string       `json:"id"`
	SenderID   string       `json:"sender_id"`
	ReceiverID string       `json:"receiver_id"`
	Status     FriendStatus `json:"status"`
	TS         Nano         `json:"ts"`
}

// Involves reports whether the request connects the two given users in
// either direction.
func (r FriendRequest) Involves(a, b string) bool {
	return (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a)
}
