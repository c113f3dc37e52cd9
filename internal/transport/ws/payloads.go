package ws

import "codeclash/internal/model"

// RoomUser addresses a room on behalf of one user:
// lobby:leave, lobby:ready, lobby:unready and lobby:close
type RoomUser struct {
	RoomCode string    `json:"roomCode"`
	UserID   model.Ref `json:"userId"`
}

// RoomJoin is the lobby:join and joinMatch payload
type RoomJoin struct {
	RoomCode string     `json:"roomCode"`
	User     model.User `json:"user"`
}

// RoomOnly is the lobby:start and match:finish payload
type RoomOnly struct {
	RoomCode string `json:"roomCode"`
}

// ChatSend is the outbound lobby:chat payload
type ChatSend struct {
	RoomCode string            `json:"roomCode"`
	Message  model.ChatMessage `json:"message"`
}

// SubmitCode is the submitCode payload
type SubmitCode struct {
	RoomCode   string           `json:"roomCode"`
	Submission model.Submission `json:"submission"`
}
