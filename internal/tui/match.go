package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"codeclash/internal/controller"
	"codeclash/internal/state"
	"codeclash/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type matchController interface {
	View() state.Match
	SelectQuestion(i int)
	SelectLanguage(lang string)
	EditCode(code string)
	DismissError()
	Run(ctx context.Context) error
	Submit() error
	SendChat(text string) error
	Finish() error
}

// editedMsg returns from the external editor
type editedMsg struct {
	path string
	err  error
}

// runDoneMsg ends a judge run
type runDoneMsg struct{ err error }

var extensions = map[string]string{"c": ".c", "cpp": ".cpp", "java": ".java", "python": ".py"}

type matchScreen struct {
	ctx   context.Context
	c     matchController
	input textinput.Model
	body  viewport.Model

	// editor is the command used to edit the buffer
	editor string
}

func newMatchScreen(ctx context.Context, c matchController) *matchScreen {
	in := textinput.New()
	in.Placeholder = "chat"
	in.CharLimit = 280
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	return &matchScreen{ctx: ctx, c: c, input: in, body: viewport.New(80, 16), editor: editor}
}

func (s *matchScreen) resize(width, height int) {
	s.input.Width = max(width-4, 10)
	s.body.Width = width
	s.body.Height = max(height-14, 6)
}

func (s *matchScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case editedMsg:
		s.finishEdit(msg)
		return nil
	case runDoneMsg:
		return nil
	case tea.KeyMsg:
		return s.key(msg)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *matchScreen) key(msg tea.KeyMsg) tea.Cmd {
	if s.input.Focused() {
		switch msg.Type {
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
	switch msg.String() {
	case "n", "right":
		s.c.SelectQuestion(v.Current + 1)
	case "p", "left":
		s.c.SelectQuestion(v.Current - 1)
	case "l":
		s.c.SelectLanguage(nextLanguage(v))
	case "e":
		return s.edit(v)
	case "r":
		if v.Running() {
			return nil
		}
		return func() tea.Msg { return runDoneMsg{err: s.c.Run(s.ctx)} }
	case "s":
		if !v.Submitting {
			_ = s.c.Submit()
		}
	case "f":
		if v.IsHost() {
			_ = s.c.Finish()
		}
	case "esc":
		s.c.DismissError()
	case "/", "i":
		return s.input.Focus()
	case "up", "down", "pgup", "pgdown", "k", "j":
		var cmd tea.Cmd
		s.body, cmd = s.body.Update(msg)
		return cmd
	}
	return nil
}

func nextLanguage(v state.Match) string {
	langs := v.AllowedLanguages()
	i := slices.Index(langs, v.Language)
	return langs[(i+1)%len(langs)]
}

// edit hands the buffer to the external editor
func (s *matchScreen) edit(v state.Match) tea.Cmd {
	f, err := os.CreateTemp("", "clash-*"+extensions[v.Language])
	if err != nil {
		return func() tea.Msg { return editedMsg{err: err} }
	}
	_, err = f.WriteString(v.Code)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return func() tea.Msg { return editedMsg{path: f.Name(), err: err} }
	}
	fields := strings.Fields(s.editor)
	cmd := exec.Command(fields[0], append(fields[1:], f.Name())...)
	path := f.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg { return editedMsg{path: path, err: err} })
}

func (s *matchScreen) finishEdit(msg editedMsg) {
	if msg.path != "" {
		defer os.Remove(msg.path)
	}
	if msg.err != nil {
		return
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		return
	}
	s.c.EditCode(string(data))
}

func (s *matchScreen) keys(v state.Match) string {
	pairs := []string{"n/p", "question", "l", "language", "e", "edit", "r", "run", "s", "submit"}
	if v.IsHost() {
		pairs = append(pairs, "f", "finish")
	}
	return view.Keys(append(pairs, "/", "chat")...)
}

func (s *matchScreen) view() string {
	v := s.c.View()
	if v.Phase() == state.MatchLoading {
		return view.Spinner(0, "Loading match "+v.RoomCode+"...")
	}

	var b strings.Builder
	name := v.RoomName
	if name == "" {
		name = v.RoomCode
	}
	fmt.Fprintf(&b, "%s    %s\n", view.Title(name), view.Clock(v))
	if v.Ended {
		b.WriteString(view.Alert(view.AlertInfo, fmt.Sprintf("Match ended. Your rank: %s", rankLabel(v.Rank()))) + "\n")
	}
	if msg := view.Alert(view.AlertError, v.Error); msg != "" {
		b.WriteString(msg + "  (esc to dismiss)\n")
	}
	b.WriteString(view.QuestionTabs(v) + "\n\n")

	var body strings.Builder
	if q, ok := v.Question(); ok {
		body.WriteString(view.QuestionDetail(q, q.SampleTests()) + "\n\n")
	}
	fmt.Fprintf(&body, "Language: %s\n", view.Languages(v))
	body.WriteString(strings.Repeat("-", 20) + "\n")
	body.WriteString(v.Code)
	if res := view.RunResult(v.Result); res != "" {
		body.WriteString("\n\n" + res)
	}
	if v.Submitting {
		body.WriteString("\n\n" + view.Spinner(0, "Submitting..."))
	}
	s.body.SetContent(body.String())
	b.WriteString(s.body.View() + "\n\n")

	b.WriteString(view.Leaderboard(v.Leaderboard, v.Self.Username) + "\n\n")
	b.WriteString(view.Chat(v.Chat, 3) + "\n")
	b.WriteString(s.input.View() + "\n")
	b.WriteString(s.keys(v))
	return b.String()
}

func rankLabel(rank int) string {
	if rank == 0 {
		return "unranked"
	}
	return fmt.Sprintf("#%d", rank)
}

type finishController interface {
	View() controller.MatchFinishView
	Back()
}

type finishScreen struct {
	c finishController
}

func newFinishScreen(c finishController) *finishScreen { return &finishScreen{c: c} }

func (s *finishScreen) resize(int, int) {}

func (s *finishScreen) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "q", "esc":
			s.c.Back()
		}
	}
	return nil
}

func (s *finishScreen) view() string {
	v := s.c.View()
	if v.Loading {
		return view.Spinner(0, "Loading results...")
	}
	var b strings.Builder
	b.WriteString(view.Title("Results: "+v.RoomName) + "\n")
	if msg := view.Alert(view.AlertError, v.Error); msg != "" {
		b.WriteString(msg + "\n")
	}
	fmt.Fprintf(&b, "\nYour rank: %s\n\n", rankLabel(v.Rank))
	b.WriteString(view.Leaderboard(v.Leaderboard, "") + "\n\n")
	b.WriteString(view.Keys("enter", "back to dashboard"))
	return b.String()
}
