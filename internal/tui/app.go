// Package tui runs the realtime screens (lobby, match room, results) as a
// bubbletea program on top of the routing shell.
package tui

import (
	"context"
	"fmt"

	"codeclash/internal/controller"
	"codeclash/internal/router"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// changedMsg asks for a re-render after a controller update
type changedMsg struct{}

// navMsg reports a completed navigation
type navMsg struct{ loc router.Location }

// Bridge carries controller and router notifications into the program
type Bridge struct {
	ch chan tea.Msg
}

// NewBridge creates an empty bridge
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 32)}
}

// changed never blocks; one pending re-render is as good as many
func (b *Bridge) changed() {
	select {
	case b.ch <- changedMsg{}:
	default:
	}
}

func (b *Bridge) navigated(loc router.Location) { b.ch <- navMsg{loc: loc} }

func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg { return <-b.ch }
}

// screen is one hosted controller
type screen interface {
	update(msg tea.Msg) tea.Cmd
	view() string
	resize(width, height int)
}

// App hosts whichever realtime screen the shell has mounted. Navigating
// anywhere else ends the program.
type App struct {
	ctx    context.Context
	shell  *router.Shell
	bridge *Bridge

	screen screen
	loc    router.Location
	width  int
	height int

	// Exit is the path that ended the program, if any
	Exit string
}

// NewApp creates the program model
func NewApp(ctx context.Context, shell *router.Shell, b *Bridge) *App {
	return &App{ctx: ctx, shell: shell, bridge: b, width: 80, height: 24}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.bridge.wait(), textinput.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.screen != nil {
			a.screen.resize(msg.Width, msg.Height)
		}
		return a, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
	case navMsg:
		return a, tea.Batch(a.open(msg.loc), a.bridge.wait())
	case changedMsg:
		return a, a.bridge.wait()
	}
	if a.screen == nil {
		return a, nil
	}
	return a, a.screen.update(msg)
}

func (a *App) View() string {
	if a.screen == nil {
		return "Connecting..."
	}
	return a.screen.view()
}

// open wraps the shell's current screen, or quits when it is not one the
// program can host
func (a *App) open(loc router.Location) tea.Cmd {
	cur, _ := a.shell.Current()
	a.loc = loc

	var next screen
	switch c := cur.(type) {
	case lobbyController:
		next = newLobbyScreen(c)
	case matchController:
		next = newMatchScreen(a.ctx, c)
	case finishController:
		next = newFinishScreen(c)
	default:
		a.screen = nil
		a.Exit = loc.Path
		return tea.Quit
	}
	if n, ok := cur.(interface{ OnChange(func()) }); ok {
		n.OnChange(a.bridge.changed)
	}
	next.resize(a.width, a.height)
	a.screen = next
	return textinput.Blink
}

// Register installs the realtime screen factories on the shell
func Register(sh *router.Shell, d controller.Deps) error {
	factories := map[string]router.Factory{
		router.Lobby: func(loc router.Location) router.Screen {
			return controller.NewLobby(d, loc.Vars["roomCode"])
		},
		router.Match: func(loc router.Location) router.Screen {
			return controller.NewMatchRoom(d, loc.Vars["roomCode"])
		},
		router.MatchFinish: func(loc router.Location) router.Screen {
			return controller.NewMatchFinish(d, loc.Vars["roomCode"])
		},
	}
	for name, f := range factories {
		if err := sh.Handle(name, f); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// Run starts the program at path and blocks until it ends. The shell is
// closed on return, which unmounts whatever screen is left.
func Run(ctx context.Context, sh *router.Shell, path string, opts ...tea.ProgramOption) (*App, error) {
	b := NewBridge()
	sh.OnChange(b.navigated)
	defer sh.Close()

	app := NewApp(ctx, sh, b)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)

	go sh.Navigate(path)
	if _, err := p.Run(); err != nil {
		return app, fmt.Errorf("run tui: %w", err)
	}
	return app, nil
}
