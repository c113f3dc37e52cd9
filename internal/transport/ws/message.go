package ws

import (
	"encoding/json"
	"fmt"
)

// MessageType is the event name of a realtime frame. The names are shared
// with the backend and must not change.
type MessageType string

// Outbound events
const (
	MsgUserLogin      MessageType = "user:login"
	MsgUserLogout     MessageType = "user:logout"
	MsgLobbyJoin      MessageType = "lobby:join"
	MsgLobbyLeave     MessageType = "lobby:leave"
	MsgLobbyReady     MessageType = "lobby:ready"
	MsgLobbyUnready   MessageType = "lobby:unready"
	MsgLobbyClose     MessageType = "lobby:close"
	MsgJoinMatch      MessageType = "joinMatch"
	MsgSubmitCode     MessageType = "submitCode"
	MsgMatchFinish    MessageType = "match:finish"
	MsgAdminGetOnline MessageType = "admin:getOnlineUsers"
)

// Events used in both directions
const (
	MsgLobbyStart MessageType = "lobby:start"
	MsgLobbyChat  MessageType = "lobby:chat"
)

// Inbound events
const (
	MsgLobbyUpdate       MessageType = "lobby:update"
	MsgLobbyClosed       MessageType = "lobby:closed"
	MsgLobbyCountdown    MessageType = "lobby:countdown"
	MsgLobbyError        MessageType = "lobby:error"
	MsgUserStatus        MessageType = "user:status"
	MsgLeaderboardUpdate MessageType = "leaderboardUpdate"
	MsgMatchError        MessageType = "match:error"
	MsgMatchEnded        MessageType = "match:ended"
	MsgMatchEndedLegacy  MessageType = "matchEnded"
	MsgAdminOnlineUsers  MessageType = "admin:onlineUsers"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps payload in the envelope
func Encode(t MessageType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return json.Marshal(&Message{Type: t, Payload: data})
}

// Decode unmarshals an event payload into T
func Decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	err := json.Unmarshal(payload, &v)
	return v, err
}
