package main

import (
	"codeclash/internal/config"
	"codeclash/internal/controller"
	"codeclash/internal/form"
	"codeclash/internal/logging"
	"codeclash/internal/router"
	"codeclash/internal/session"
	"codeclash/internal/transport/rest"
	"codeclash/internal/transport/ws"
	"codeclash/internal/tui"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// command is one subcommand. args excludes the subcommand name.
type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"login":            {"log in with email and password", runLogin},
	"admin-login":      {"log in to the admin console", runAdminLogin},
	"register":         {"create an account", runRegister},
	"logout":           {"end the session", runLogout},
	"whoami":           {"show the logged-in user", runWhoami},
	"oauth":            {"print the Google sign-in URL or finish a callback", runOAuth},
	"complete-profile": {"finish a Google sign-up", runCompleteProfile},
	"dashboard":        {"show stats, followers and match history", runDashboard},
	"questions":        {"browse your question bank", runQuestions},
	"question":         {"show one question", runQuestion},
	"create-question":  {"save a question from a JSON file", runCreateQuestion},
	"create-match":     {"create a match room", runCreateMatch},
	"join":             {"join a room by code", runJoin},
	"lobby":            {"open a room lobby", runLobby},
	"match":            {"open a running match", runMatch},
	"profile":          {"show a player profile", runProfile},
	"follow":           {"follow a player", runFollow},
	"unfollow":         {"unfollow a player", runUnfollow},
	"search":           {"search players by name", runSearch},
	"admin-users":      {"list users and who is online", runAdminUsers},
	"admin-questions":  {"browse or prune the global bank", runAdminQuestions},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	e, err := newEnv(ctx, cfg, log, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer e.close()

	if err := cmd.run(ctx, e, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintln(stderr, controller.BannerMessage(err))
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: clash <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
}

// env is what every command runs against
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	out      io.Writer
	sessions *session.Manager
	api      *rest.Client
	rt       *ws.Channel
	nav      *pathNav

	closeStore func()
}

func newEnv(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) (*env, error) {
	store, closeStore, err := session.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sessions := session.NewManager(store, log)
	if err := sessions.Restore(ctx); err != nil {
		log.Warn("session not restored", zap.Error(err))
	}
	return &env{
		cfg:        cfg,
		log:        log,
		out:        out,
		sessions:   sessions,
		api:        rest.NewClient(cfg.APIBaseURL, sessions, cfg.HTTPTimeout, log),
		rt:         ws.NewChannel(cfg.SocketURL, sessions, log),
		nav:        &pathNav{},
		closeStore: closeStore,
	}, nil
}

func (e *env) close() {
	if err := e.rt.Close(); err != nil {
		e.log.Debug("close channel", zap.Error(err))
	}
	e.closeStore()
}

// deps is the controller wiring for one-shot commands
func (e *env) deps() controller.Deps {
	return controller.Deps{
		API:      e.api,
		RT:       e.rt,
		Sessions: e.sessions,
		Nav:      e.nav,
		Log:      e.log,
	}
}

// interactive hosts path in the TUI behind the routing shell
func (e *env) interactive(ctx context.Context, path string) error {
	sh := router.New(ctx, e.sessions, e.log)
	d := e.deps()
	d.Nav = sh
	if err := tui.Register(sh, d); err != nil {
		return err
	}
	app, err := tui.Run(ctx, sh, path)
	if err != nil {
		return err
	}
	if app.Exit != "" {
		fmt.Fprintf(e.out, "next: %s\n", app.Exit)
	}
	return nil
}

// pathNav records where a one-shot command would go next
type pathNav struct {
	mu   sync.Mutex
	last string
}

func (n *pathNav) Navigate(path string) {
	n.mu.Lock()
	n.last = path
	n.mu.Unlock()
}

func (n *pathNav) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// flags creates the flag set for a subcommand; parse errors are returned,
// not fatal
func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("clash "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// requireSession fails early the way the screen guard would redirect
func (e *env) requireSession() error {
	if !e.sessions.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = &form.ValidationError{Message: "Please log in first."}
