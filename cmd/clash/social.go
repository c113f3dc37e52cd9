package main

import (
	"codeclash/internal/controller"
	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/view"
	"context"
	"fmt"
	"strings"
	"time"
)

// shown prefers the banner the screen settled on over a generic one
func shown(banner string, err error) error {
	if err == nil {
		return nil
	}
	if banner != "" {
		return &form.ValidationError{Message: banner}
	}
	return err
}

func runDashboard(ctx context.Context, e *env, args []string) error {
	if err := parse(flags("dashboard"), args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	c := controller.NewDashboard(e.deps())
	err := c.Mount(ctx)
	v := c.View()
	if v.User == nil {
		return shown(v.Error, err)
	}

	fmt.Fprintln(e.out, view.Title("Welcome, "+v.User.Username))
	if msg := view.Alert(view.AlertError, v.Error); msg != "" {
		fmt.Fprintln(e.out, msg)
	}
	s := v.Stats
	fmt.Fprintln(e.out, view.Stats(s.MatchesPlayed, s.Wins, s.FastestTime, s.Accuracy))
	fmt.Fprintf(e.out, "\nFollowers %d | Following %d\n", len(v.Followers), len(v.Following))
	if fresh := v.NewFollowers(); len(fresh) > 0 {
		fmt.Fprintln(e.out, "\nNew followers (follow back with: clash follow ID)")
		fmt.Fprintln(e.out, view.Users(fresh, nil))
	}
	fmt.Fprintln(e.out, "\nRecent matches")
	fmt.Fprintln(e.out, view.Matches(v.Matches))
	return nil
}

// profileID defaults to the logged-in user
func (e *env) profileID(name string, args []string) (string, error) {
	fs := flags(name)
	id := fs.String("id", "", "user id (default: you)")
	if err := parse(fs, args); err != nil {
		return "", err
	}
	if err := e.requireSession(); err != nil {
		return "", err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	if *id == "" {
		u, _ := e.sessions.User()
		*id = u.ID.String()
	}
	return *id, nil
}

func (e *env) mountProfile(ctx context.Context, name string, args []string) (*controller.Profile, error) {
	id, err := e.profileID(name, args)
	if err != nil {
		return nil, err
	}
	c := controller.NewProfile(e.deps(), id)
	if err := c.Mount(ctx); err != nil {
		return nil, shown(c.View().Error, err)
	}
	return c, nil
}

func (e *env) printProfile(v controller.ProfileView) {
	fmt.Fprintln(e.out, view.Profile(*v.User, len(v.Followers), len(v.Following), v.WinRate()))
	switch {
	case v.IsOwn:
	case v.IsFollowing:
		fmt.Fprintln(e.out, "You follow this player.")
	default:
		fmt.Fprintln(e.out, "You do not follow this player.")
	}
	fmt.Fprintln(e.out, "\nMatches")
	fmt.Fprintln(e.out, view.Matches(v.Played))
}

func runProfile(ctx context.Context, e *env, args []string) error {
	c, err := e.mountProfile(ctx, "profile", args)
	if err != nil {
		return err
	}
	e.printProfile(c.View())
	return nil
}

func runFollow(ctx context.Context, e *env, args []string) error {
	c, err := e.mountProfile(ctx, "follow", args)
	if err != nil {
		return err
	}
	if c.View().IsOwn {
		return &form.ValidationError{Message: "You cannot follow yourself."}
	}
	if err := c.Follow(ctx); err != nil {
		return shown(c.View().Error, err)
	}
	e.printProfile(c.View())
	return nil
}

func runUnfollow(ctx context.Context, e *env, args []string) error {
	c, err := e.mountProfile(ctx, "unfollow", args)
	if err != nil {
		return err
	}
	if err := c.Unfollow(ctx); err != nil {
		return shown(c.View().Error, err)
	}
	e.printProfile(c.View())
	return nil
}

func runSearch(ctx context.Context, e *env, args []string) error {
	fs := flags("search")
	follow := fs.String("follow", "", "follow the result with this id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	q := strings.Join(fs.Args(), " ")

	c := controller.NewSearchPlayers(e.deps())
	if err := c.Mount(ctx); err != nil {
		return err
	}
	defer c.Unmount()
	if err := c.Search(ctx, q); err != nil {
		return shown(c.View().Error, err)
	}
	if *follow != "" {
		if err := c.Follow(ctx, model.Ref(*follow)); err != nil {
			return shown(c.View().Error, err)
		}
	}
	fmt.Fprintln(e.out, view.Users(c.View().Results, nil))
	return nil
}

func runAdminUsers(ctx context.Context, e *env, args []string) error {
	fs := flags("admin-users")
	wait := fs.Duration("wait", time.Second, "how long to collect presence updates")
	selected := fs.String("user", "", "also show this user's matches")
	logout := fs.Bool("logout", false, "end the admin session afterwards")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !e.sessions.IsAdmin() {
		return &form.ValidationError{Message: "Please log in as an admin first."}
	}

	c := controller.NewAdminDashboard(e.deps())
	if err := c.Mount(ctx); err != nil {
		return shown(c.View().Error, err)
	}
	defer c.Unmount()

	select {
	case <-time.After(*wait):
	case <-ctx.Done():
		return ctx.Err()
	}
	v := c.View()
	fmt.Fprintf(e.out, "%d users, %d online\n", len(v.Users), v.OnlineCount())
	fmt.Fprintln(e.out, view.Users(v.Users, v.Online))

	if *selected != "" {
		var target *model.User
		for _, u := range v.Users {
			if u.ID.String() == *selected {
				target = &u
				break
			}
		}
		if target == nil {
			return &form.ValidationError{Message: "No user with that id."}
		}
		if err := c.Select(ctx, *target); err != nil {
			return shown(c.View().MatchesError, err)
		}
		m := c.View().SelectedMatches
		fmt.Fprintln(e.out, "\n"+view.Title(target.Username))
		fmt.Fprintln(e.out, "Hosted")
		fmt.Fprintln(e.out, view.Matches(m.Hosted))
		fmt.Fprintln(e.out, "Played")
		fmt.Fprintln(e.out, view.Matches(m.Played))
	}
	if *logout {
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "Logged out.")
	}
	return nil
}
