package tui

import (
	"strings"

	"codeclash/internal/state"
	"codeclash/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type lobbyController interface {
	View() state.Lobby
	ToggleReady() error
	Start() error
	Leave()
	SendChat(text string) error
	RequestClose()
	CancelClose()
	DismissError()
	DismissClosed()
}

type lobbyScreen struct {
	c     lobbyController
	input textinput.Model
	chat  viewport.Model
}

func newLobbyScreen(c lobbyController) *lobbyScreen {
	in := textinput.New()
	in.Placeholder = "say something"
	in.CharLimit = 280
	return &lobbyScreen{c: c, input: in, chat: viewport.New(80, 8)}
}

func (s *lobbyScreen) resize(width, height int) {
	s.input.Width = max(width-4, 10)
	s.chat.Width = width
	s.chat.Height = max(height/3, 4)
}

func (s *lobbyScreen) update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}

	if s.input.Focused() {
		switch key.Type {
		case tea.KeyEnter:
			_ = s.c.SendChat(s.input.Value())
			s.input.SetValue("")
			return nil
		case tea.KeyEsc:
			s.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}

	v := s.c.View()
	switch key.String() {
	case "r":
		_ = s.c.ToggleReady()
	case "s":
		_ = s.c.Start()
	case "x":
		s.c.RequestClose()
	case "c":
		s.c.CancelClose()
	case "q":
		if v.Closed {
			s.c.DismissClosed()
		} else {
			s.c.Leave()
		}
	case "enter":
		s.c.DismissClosed()
	case "esc":
		s.c.DismissError()
	case "/", "i":
		return s.input.Focus()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		s.chat, cmd = s.chat.Update(msg)
		return cmd
	}
	return nil
}

func (s *lobbyScreen) keys(v state.Lobby) string {
	if v.Closed {
		return view.Keys("enter", "back to dashboard")
	}
	pairs := []string{}
	if v.CanToggleReady() {
		label := "ready"
		if v.Ready {
			label = "unready"
		}
		pairs = append(pairs, "r", label)
	}
	if v.CanStart() {
		pairs = append(pairs, "s", "start")
	}
	if v.CanClose() {
		if v.CloseConfirm != nil {
			pairs = append(pairs, "c", "cancel close")
		} else {
			pairs = append(pairs, "x", "close room")
		}
	}
	if v.CanLeave() {
		pairs = append(pairs, "q", "leave")
	}
	pairs = append(pairs, "/", "chat")
	return view.Keys(pairs...)
}

func (s *lobbyScreen) view() string {
	v := s.c.View()
	var b strings.Builder
	b.WriteString(view.Title("Lobby " + v.RoomCode))
	b.WriteString("\n")
	if msg := view.Alert(view.AlertError, v.Error); msg != "" {
		b.WriteString(msg + "  (esc to dismiss)\n")
	}
	b.WriteString("\n" + view.LobbyPlayers(v) + "\n\n")
	b.WriteString(view.LobbyStatus(v) + "\n\n")

	s.chat.SetContent(view.Chat(v.Chat, 0))
	s.chat.GotoBottom()
	b.WriteString("Chat\n" + s.chat.View() + "\n")
	b.WriteString(s.input.View() + "\n\n")
	b.WriteString(s.keys(v))
	return b.String()
}
