package state

import "codeclash/internal/model"

// DefaultLobbyError is shown when lobby:error carries no message
const DefaultLobbyError = "Room error."

// CloseConfirmSeconds is the grace window before a close request is sent
const CloseConfirmSeconds = 5

// LobbyPhase is the lobby lifecycle as the client sees it
type LobbyPhase int

const (
	LobbyLoading LobbyPhase = iota
	LobbyJoined
	LobbyReady
	LobbyCountdown
	LobbyStarted
	LobbyClosed
	LobbyLeft
)

func (p LobbyPhase) String() string {
	switch p {
	case LobbyLoading:
		return "loading"
	case LobbyJoined:
		return "joined"
	case LobbyReady:
		return "ready"
	case LobbyCountdown:
		return "countdown"
	case LobbyStarted:
		return "started"
	case LobbyClosed:
		return "closed"
	case LobbyLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Lobby mirrors the server's room state plus the local flags of this client
type Lobby struct {
	RoomCode string
	SelfID   model.Ref

	Loaded       bool
	Players      []model.User
	HostID       model.Ref
	ReadyPlayers []model.Ref
	Chat         []model.ChatMessage

	// Countdown is the server start countdown; nil when none is running
	Countdown *int
	// CloseConfirm is the local close-room grace counter; nil when idle
	CloseConfirm *int

	Ready   bool
	Started bool
	Closed  bool
	Left    bool
	Error   string
}

// NewLobby is the state right after mount
func NewLobby(roomCode string, self model.Ref) Lobby {
	return Lobby{RoomCode: roomCode, SelfID: self}
}

// Phase derives the lifecycle phase from the mirrored flags
func (l Lobby) Phase() LobbyPhase {
	switch {
	case l.Left:
		return LobbyLeft
	case l.Closed:
		return LobbyClosed
	case l.Started:
		return LobbyStarted
	case l.Countdown != nil:
		return LobbyCountdown
	case !l.Loaded:
		return LobbyLoading
	case l.Ready:
		return LobbyReady
	default:
		return LobbyJoined
	}
}

// IsHost reports whether this client holds the host seat
func (l Lobby) IsHost() bool {
	return !l.SelfID.Empty() && l.SelfID == l.HostID
}

// IsReady reports whether id is in the ready set
func (l Lobby) IsReady(id model.Ref) bool {
	return model.ContainsRef(l.ReadyPlayers, id)
}

// Host returns the host player, if present in the player list
func (l Lobby) Host() (model.User, bool) {
	for _, p := range l.Players {
		if p.ID == l.HostID {
			return p, true
		}
	}
	return model.User{}, false
}

// Others returns every player except the host, in server order
func (l Lobby) Others() []model.User {
	out := make([]model.User, 0, len(l.Players))
	for _, p := range l.Players {
		if p.ID != l.HostID {
			out = append(out, p)
		}
	}
	return out
}

func (l Lobby) active() bool {
	return !l.Left && !l.Closed && !l.Started
}

// Locked reports whether a server countdown freezes the lobby controls
func (l Lobby) Locked() bool { return l.Countdown != nil }

// CanToggleReady gates the ready button
func (l Lobby) CanToggleReady() bool { return l.active() && !l.Locked() }

// CanLeave gates the leave button
func (l Lobby) CanLeave() bool { return !l.Left && !l.Locked() }

// CanClose gates the host's close button
func (l Lobby) CanClose() bool {
	return l.IsHost() && l.active() && !l.Locked() && l.CloseConfirm == nil
}

// CanStart gates the host's start button: every player must be ready
func (l Lobby) CanStart() bool {
	return l.IsHost() && l.active() && !l.Locked() &&
		len(l.Players) > 0 && len(l.ReadyPlayers) == len(l.Players)
}

// LobbyEvent is anything that moves the lobby state
type LobbyEvent interface{ isLobbyEvent() }

// LobbyUpdated is a lobby:update push
type LobbyUpdated struct{ Update model.LobbyUpdate }

func (LobbyUpdated) isLobbyEvent() {}

// LobbyChatReplaced is a lobby:chat push
type LobbyChatReplaced struct{ Chat []model.ChatMessage }

func (LobbyChatReplaced) isLobbyEvent() {}

// LobbyCountdownTick is a lobby:countdown push
type LobbyCountdownTick struct{ Seconds int }

func (LobbyCountdownTick) isLobbyEvent() {}

// LobbyStartedEvent is a lobby:start push
type LobbyStartedEvent struct{}

func (LobbyStartedEvent) isLobbyEvent() {}

// LobbyClosedEvent is a lobby:closed push
type LobbyClosedEvent struct{}

func (LobbyClosedEvent) isLobbyEvent() {}

// LobbyFailed is a lobby:error push or a local failure
type LobbyFailed struct{ Message string }

func (LobbyFailed) isLobbyEvent() {}

// LobbyErrorDismissed clears the banner
type LobbyErrorDismissed struct{}

func (LobbyErrorDismissed) isLobbyEvent() {}

// LobbyReadySet flips the local ready flag after the intent was emitted
type LobbyReadySet struct{ Ready bool }

func (LobbyReadySet) isLobbyEvent() {}

// LobbyCloseRequested starts the local close grace window
type LobbyCloseRequested struct{ Seconds int }

func (LobbyCloseRequested) isLobbyEvent() {}

// LobbyCloseTick counts the grace window down by one second
type LobbyCloseTick struct{}

func (LobbyCloseTick) isLobbyEvent() {}

// LobbyCloseCanceled abandons the grace window
type LobbyCloseCanceled struct{}

func (LobbyCloseCanceled) isLobbyEvent() {}

// LobbyLeftEvent marks teardown
type LobbyLeftEvent struct{}

func (LobbyLeftEvent) isLobbyEvent() {}

// ReduceLobby applies one event. Server pushes replace mirrored collections
// wholesale; nothing is merged.
func ReduceLobby(l Lobby, ev LobbyEvent) Lobby {
	switch e := ev.(type) {
	case LobbyUpdated:
		l.Loaded = true
		l.Players = orEmpty(e.Update.Players)
		l.HostID = e.Update.HostID
		l.ReadyPlayers = orEmpty(e.Update.ReadyPlayers)
		if e.Update.Chat != nil {
			l.Chat = e.Update.Chat
		}
		l.Ready = model.ContainsRef(l.ReadyPlayers, l.SelfID)

	case LobbyChatReplaced:
		l.Chat = orEmpty(e.Chat)

	case LobbyCountdownTick:
		n := e.Seconds
		l.Countdown = &n
		l.CloseConfirm = nil

	case LobbyStartedEvent:
		l.Started = true
		l.CloseConfirm = nil

	case LobbyClosedEvent:
		l.Closed = true
		l.Countdown = nil
		l.CloseConfirm = nil

	case LobbyFailed:
		l.Loaded = true
		l.Error = e.Message
		if l.Error == "" {
			l.Error = DefaultLobbyError
		}

	case LobbyErrorDismissed:
		l.Error = ""

	case LobbyReadySet:
		l.Ready = e.Ready

	case LobbyCloseRequested:
		n := e.Seconds
		if n <= 0 {
			n = CloseConfirmSeconds
		}
		l.CloseConfirm = &n

	case LobbyCloseTick:
		if l.CloseConfirm != nil && *l.CloseConfirm > 0 {
			n := *l.CloseConfirm - 1
			l.CloseConfirm = &n
		}

	case LobbyCloseCanceled:
		l.CloseConfirm = nil

	case LobbyLeftEvent:
		l.Left = true
		l.CloseConfirm = nil
	}
	return l
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
