package controller

import (
	"codeclash/internal/model"
	"codeclash/internal/transport/ws"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// AdminView is the admin user overview with live presence
type AdminView struct {
	Loading bool
	Error   string
	Users   []model.User
	Online  map[model.Ref]bool

	Selected        *model.User
	SelectedMatches *model.UserMatches
	MatchesError    string
}

// OnlineCount is the size of the online set
func (v AdminView) OnlineCount() int { return len(v.Online) }

// AdminDashboard lists every user and tracks who is online
type AdminDashboard struct {
	base[AdminView]
	d     Deps
	scope *ws.Scope
	now   func() time.Time
}

// NewAdminDashboard creates the admin overview controller
func NewAdminDashboard(d Deps) *AdminDashboard {
	c := &AdminDashboard{d: d.named("admin"), now: time.Now}
	c.view.Online = map[model.Ref]bool{}
	return c
}

func (c *AdminDashboard) Mount(ctx context.Context) error {
	c.update(func(v *AdminView) { v.Loading = true })

	if err := c.d.RT.Connect(ctx); err != nil {
		c.d.Log.Warn("realtime connect failed", zap.Error(err))
	} else {
		c.scope = ws.NewScope(c.d.RT)
		c.scope.On(ws.MsgUserStatus, c.onStatus)
		c.scope.On(ws.MsgAdminOnlineUsers, c.onOnlineUsers)
		if err := c.d.RT.Emit(ws.MsgAdminGetOnline, nil); err != nil {
			c.d.Log.Warn("online users request not sent", zap.Error(err))
		}
	}

	users, err := c.d.API.Users.All(ctx)
	c.update(func(v *AdminView) {
		v.Loading = false
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.Users = orEmpty(users)
		online := make(map[model.Ref]bool, len(v.Online))
		for id := range v.Online {
			online[id] = true
		}
		for _, u := range users {
			if u.IsOnline {
				online[u.ID] = true
			}
		}
		v.Online = online
	})
	return err
}

func (c *AdminDashboard) Unmount() {
	if c.scope != nil {
		c.scope.Close()
	}
}

func (c *AdminDashboard) onStatus(raw json.RawMessage) {
	st, err := ws.Decode[model.UserStatus](raw)
	if err != nil || st.UserID.Empty() {
		c.d.Log.Warn("bad user:status", zap.Error(err))
		return
	}
	seen := c.now()
	c.update(func(v *AdminView) {
		v.Online = setFlag(v.Online, st.UserID, st.IsOnline)
		users := make([]model.User, len(v.Users))
		for i, u := range v.Users {
			if u.ID == st.UserID {
				u.IsOnline = st.IsOnline
				u.LastSeen = &seen
			}
			users[i] = u
		}
		v.Users = users
	})
}

func (c *AdminDashboard) onOnlineUsers(raw json.RawMessage) {
	list, err := ws.Decode[[]model.User](raw)
	if err != nil {
		c.d.Log.Warn("bad admin:onlineUsers", zap.Error(err))
		return
	}
	online := make(map[model.Ref]bool, len(list))
	for _, u := range list {
		if !u.ID.Empty() {
			online[u.ID] = true
		}
	}
	c.update(func(v *AdminView) { v.Online = online })
}

// Select shows one user and loads their hosted and played matches
func (c *AdminDashboard) Select(ctx context.Context, u model.User) error {
	c.update(func(v *AdminView) {
		sel := u
		v.Selected = &sel
		v.SelectedMatches = nil
		v.MatchesError = ""
	})
	m, err := c.d.API.Users.MatchesOf(ctx, u.ID)
	c.update(func(v *AdminView) {
		if v.Selected == nil || v.Selected.ID != u.ID {
			return
		}
		if err != nil {
			v.MatchesError = msgMatchesFailed
			return
		}
		v.SelectedMatches = m
	})
	return err
}

// Logout ends the admin session. The presence logout goes out for the
// selected user, matching the backend's admin tooling.
func (c *AdminDashboard) Logout(ctx context.Context) error {
	if sel := c.View().Selected; sel != nil {
		goOffline(c.d, sel.ID)
	}
	err := c.d.Sessions.Logout(ctx)
	c.d.Nav.Navigate("/admin-login")
	return err
}
