package models

// VoiceUserState is one user's ephemeral state in a voice channel.
type VoiceUserState struct {
	Muted      bool    `json:"muted"`
	Deafened   bool    `json:"deafened"`
	Speaking   bool    `json:"speaking"`
	AudioLevel float64 `json:"audio_level"`
}
