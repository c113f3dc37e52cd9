package view

import (
	"fmt"
	"strings"

	"codeclash/internal/model"
	"codeclash/internal/state"
)

// Badge labels
const (
	BadgeHost  = "Host"
	BadgeReady = "Ready"
	BadgeYou   = "you"
)

// PlayerLine is one lobby row: name, badges, and a marker for the viewer
func PlayerLine(u model.User, l state.Lobby) string {
	var b strings.Builder
	b.WriteString(u.Username)
	if u.ID == l.SelfID && !u.ID.Empty() {
		fmt.Fprintf(&b, " (%s)", BadgeYou)
	}
	if !l.HostID.Empty() && u.ID == l.HostID {
		fmt.Fprintf(&b, " [%s]", BadgeHost)
	}
	if l.IsReady(u.ID) {
		fmt.Fprintf(&b, " [%s]", BadgeReady)
	}
	return b.String()
}

// LobbyPlayers lists the host first, then everyone else in join order
func LobbyPlayers(l state.Lobby) string {
	if len(l.Players) == 0 {
		return "Waiting for players..."
	}
	ready := 0
	for _, p := range l.Players {
		if l.IsReady(p.ID) {
			ready++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Players (%d ready of %d)\n", ready, len(l.Players))
	if h, ok := l.Host(); ok {
		b.WriteString("  " + PlayerLine(h, l) + "\n")
	}
	for _, p := range l.Others() {
		b.WriteString("  " + PlayerLine(p, l) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// LobbyStatus is the line above the action keys
func LobbyStatus(l state.Lobby) string {
	phase := l.Phase()
	if l.CloseConfirm != nil && (phase == state.LobbyJoined || phase == state.LobbyReady) {
		return fmt.Sprintf("Closing the room in %d... press c to cancel", *l.CloseConfirm)
	}
	switch phase {
	case state.LobbyLoading:
		return Spinner(0, "Joining room "+l.RoomCode+"...")
	case state.LobbyCountdown:
		return fmt.Sprintf("Match starts in %d...", *l.Countdown)
	case state.LobbyStarted:
		return "Match started!"
	case state.LobbyClosed:
		return "The host closed this room."
	case state.LobbyLeft:
		return "You left the room."
	case state.LobbyReady:
		return "You are ready. Waiting for the others."
	}
	return "Press r when you are ready."
}

// Chat renders the last limit lines, oldest first. limit <= 0 shows all.
func Chat(msgs []model.ChatMessage, limit int) string {
	if len(msgs) == 0 {
		return "No messages yet."
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Author(), m.Text))
	}
	return strings.Join(lines, "\n")
}
