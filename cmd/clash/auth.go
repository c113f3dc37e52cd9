package main

import (
	"bufio"
	"codeclash/internal/controller"
	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/view"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// parse runs fs and turns bad flags into a banner
func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return &form.ValidationError{Message: err.Error()}
}

// secret falls back to a line on stdin when the flag was left empty
func secret(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readAvatar(path string) (*model.Avatar, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	return &model.Avatar{Filename: filepath.Base(path), Data: data}, nil
}

func (e *env) success(v controller.AuthView) {
	if v.Success != "" {
		fmt.Fprintln(e.out, view.Alert(view.AlertSuccess, v.Success))
	}
}

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := parse(fs, args); err != nil {
		return err
	}
	pw, err := secret(*password, "Password: ")
	if err != nil {
		return err
	}
	a := controller.NewAuth(e.deps())
	if err := a.Login(ctx, *email, pw); err != nil {
		return err
	}
	e.success(a.View())
	return e.whoami()
}

func runAdminLogin(ctx context.Context, e *env, args []string) error {
	fs := flags("admin-login")
	username := fs.String("username", "", "admin username")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := parse(fs, args); err != nil {
		return err
	}
	pw, err := secret(*password, "Password: ")
	if err != nil {
		return err
	}
	a := controller.NewAuth(e.deps())
	if err := a.AdminLogin(ctx, *username, pw); err != nil {
		return err
	}
	e.success(a.View())
	return e.whoami()
}

func runRegister(ctx context.Context, e *env, args []string) error {
	fs := flags("register")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	avatarPath := fs.String("avatar", "", "profile picture file")
	if err := parse(fs, args); err != nil {
		return err
	}
	pw, err := secret(*password, "Password: ")
	if err != nil {
		return err
	}
	avatar, err := readAvatar(*avatarPath)
	if err != nil {
		return err
	}
	a := controller.NewAuth(e.deps())
	if err := a.Register(ctx, *username, *email, pw, avatar); err != nil {
		return err
	}
	e.success(a.View())
	return e.whoami()
}

func runLogout(ctx context.Context, e *env, args []string) error {
	if err := parse(flags("logout"), args); err != nil {
		return err
	}
	if !e.sessions.Authenticated() {
		fmt.Fprintln(e.out, "Not logged in.")
		return nil
	}
	if err := controller.NewAuth(e.deps()).Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Logged out.")
	return nil
}

func runWhoami(_ context.Context, e *env, args []string) error {
	if err := parse(flags("whoami"), args); err != nil {
		return err
	}
	return e.whoami()
}

func (e *env) whoami() error {
	u, ok := e.sessions.User()
	if !ok {
		return errNotLoggedIn
	}
	line := view.UserLine(u, false)
	if u.IsAdmin() {
		line += " (admin)"
	}
	fmt.Fprintln(e.out, "Logged in as "+line)
	if u.ProfileIncomplete {
		fmt.Fprintln(e.out, view.Alert(view.AlertInfo, "Finish your profile with: clash complete-profile -username NAME"))
	}
	return nil
}

func runOAuth(ctx context.Context, e *env, args []string) error {
	fs := flags("oauth")
	signup := fs.Bool("signup", false, "print the sign-up URL instead of sign-in")
	callback := fs.String("callback", "", "the URL the browser was redirected to after Google sign-in")
	if err := parse(fs, args); err != nil {
		return err
	}
	a := controller.NewAuth(e.deps())
	if *callback == "" {
		fmt.Fprintln(e.out, "Open this URL in a browser, then run: clash oauth -callback '<redirected URL>'")
		fmt.Fprintln(e.out, a.GoogleURL(*signup))
		return nil
	}

	u, err := url.Parse(*callback)
	if err != nil {
		return &form.ValidationError{Message: "That callback URL could not be read."}
	}
	if err := a.OAuthCallback(ctx, u.Query()); err != nil {
		switch a.View().OAuthAction {
		case "login":
			fmt.Fprintln(e.out, "Try: clash login")
		case "register":
			fmt.Fprintln(e.out, "Try: clash register")
		}
		return err
	}
	if e.nav.Last() == "" {
		return &form.ValidationError{Message: "The callback URL carried no sign-in result."}
	}
	return e.whoami()
}

func runCompleteProfile(ctx context.Context, e *env, args []string) error {
	fs := flags("complete-profile")
	username := fs.String("username", "", "display name")
	avatarPath := fs.String("avatar", "", "profile picture file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	avatar, err := readAvatar(*avatarPath)
	if err != nil {
		return err
	}
	if err := controller.NewAuth(e.deps()).CompleteProfile(ctx, *username, avatar); err != nil {
		return err
	}
	return e.whoami()
}
