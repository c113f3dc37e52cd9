package model

// ChatMessage is one chat line in a lobby or match room
type ChatMessage struct {
	ID       string `json:"id,omitempty"`
	User     string `json:"user"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Text     string `json:"text"`
}

// Author is the display name for a chat line
func (m ChatMessage) Author() string {
	if m.Username != "" {
		return m.Username
	}
	return m.User
}

// LobbyUpdate is the lobby:update push. Chat and Leaderboard are only present
// on some pushes; nil means "not sent", not "empty".
type LobbyUpdate struct {
	Players      []User             `json:"players"`
	HostID       Ref                `json:"hostId"`
	ReadyPlayers []Ref              `json:"readyPlayers"`
	Chat         []ChatMessage      `json:"chat,omitempty"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard,omitempty"`
}

// LeaderboardEntry is one ranked participant
type LeaderboardEntry struct {
	User   string  `json:"user"`
	Score  float64 `json:"score"`
	Time   float64 `json:"time"`
	Status string  `json:"status,omitempty"`
}

// Solved reports whether the participant passed
func (e LeaderboardEntry) Solved() bool { return e.Status == "pass" }

// ErrorEvent is the lobby:error and match:error payload
type ErrorEvent struct {
	Message string `json:"message"`
}

// UserStatus is the user:status presence push
type UserStatus struct {
	UserID   Ref  `json:"userId"`
	IsOnline bool `json:"isOnline"`
}
