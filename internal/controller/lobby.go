package controller

import (
	"codeclash/internal/model"
	"codeclash/internal/state"
	"codeclash/internal/transport/ws"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Lobby mirrors a room before the match starts. It joins on mount and
// leaves exactly once, however the screen is left.
type Lobby struct {
	base[state.Lobby]
	d        Deps
	roomCode string
	user     model.User
	scope    *ws.Scope

	joined    bool
	leaveOnce sync.Once

	timerMu   sync.Mutex
	timerDone chan struct{}
	timerStop func()
}

// NewLobby creates the lobby controller for roomCode
func NewLobby(d Deps, roomCode string) *Lobby {
	c := &Lobby{d: d.named("lobby"), roomCode: roomCode}
	c.view = state.NewLobby(roomCode, "")
	return c
}

func (c *Lobby) apply(ev state.LobbyEvent) state.Lobby {
	var next state.Lobby
	c.update(func(v *state.Lobby) {
		*v = state.ReduceLobby(*v, ev)
		next = *v
	})
	return next
}

// Mount subscribes to the room events, then announces the join
func (c *Lobby) Mount(ctx context.Context) error {
	u, _ := c.d.Sessions.User()
	if u.ID.Empty() {
		c.apply(state.LobbyFailed{Message: msgUserIDMissing})
		c.d.Nav.Navigate("/login")
		return invalid(msgUserIDMissing)
	}
	c.user = u
	c.update(func(v *state.Lobby) { v.SelfID = u.ID })

	if err := c.d.RT.Connect(ctx); err != nil {
		c.d.Log.Warn("realtime connect failed", zap.Error(err))
		c.apply(state.LobbyFailed{Message: BannerMessage(err)})
		return err
	}

	c.scope = ws.NewScope(c.d.RT)
	c.scope.On(ws.MsgLobbyUpdate, c.onUpdate)
	c.scope.On(ws.MsgLobbyChat, c.onChat)
	c.scope.On(ws.MsgLobbyClosed, func(json.RawMessage) { c.apply(state.LobbyClosedEvent{}) })
	c.scope.On(ws.MsgLobbyCountdown, c.onCountdown)
	c.scope.On(ws.MsgLobbyStart, c.onStart)
	c.scope.On(ws.MsgLobbyError, c.onError)

	if err := c.d.RT.Emit(ws.MsgLobbyJoin, ws.RoomJoin{RoomCode: c.roomCode, User: u}); err != nil {
		c.apply(state.LobbyFailed{Message: BannerMessage(err)})
		return err
	}
	c.mu.Lock()
	c.joined = true
	c.mu.Unlock()
	c.d.Log.Info("joined lobby", zap.String("room", c.roomCode), zap.String("user", u.ID.String()))
	return nil
}

// Unmount releases subscriptions and timers and sends the leave intent
func (c *Lobby) Unmount() {
	if c.scope != nil {
		c.scope.Close()
	}
	c.stopCloseTimer()
	c.leave()
}

func (c *Lobby) leave() {
	c.mu.Lock()
	joined := c.joined
	c.mu.Unlock()
	if !joined {
		return
	}
	c.leaveOnce.Do(func() {
		if err := c.d.RT.Emit(ws.MsgLobbyLeave, ws.RoomUser{RoomCode: c.roomCode, UserID: c.user.ID}); err != nil {
			c.d.Log.Warn("leave not sent", zap.Error(err))
		}
		c.apply(state.LobbyLeftEvent{})
	})
}

func (c *Lobby) onUpdate(raw json.RawMessage) {
	up, err := ws.Decode[model.LobbyUpdate](raw)
	if err != nil {
		c.d.Log.Warn("bad lobby:update", zap.Error(err))
		return
	}
	c.apply(state.LobbyUpdated{Update: up})
}

func (c *Lobby) onChat(raw json.RawMessage) {
	chat, err := ws.Decode[[]model.ChatMessage](raw)
	if err != nil {
		c.d.Log.Warn("bad lobby:chat", zap.Error(err))
		return
	}
	c.apply(state.LobbyChatReplaced{Chat: chat})
}

func (c *Lobby) onCountdown(raw json.RawMessage) {
	n, err := ws.Decode[float64](raw)
	if err != nil {
		c.d.Log.Warn("bad lobby:countdown", zap.Error(err))
		return
	}
	c.stopCloseTimer()
	c.apply(state.LobbyCountdownTick{Seconds: int(n)})
}

func (c *Lobby) onStart(json.RawMessage) {
	c.stopCloseTimer()
	c.apply(state.LobbyStartedEvent{})
	c.d.Nav.Navigate("/match/" + c.roomCode)
}

func (c *Lobby) onError(raw json.RawMessage) {
	ev, _ := ws.Decode[*model.ErrorEvent](raw)
	msg := ""
	if ev != nil {
		msg = ev.Message
	}
	c.apply(state.LobbyFailed{Message: msg})
}

func (c *Lobby) roomUser() ws.RoomUser {
	return ws.RoomUser{RoomCode: c.roomCode, UserID: c.user.ID}
}

func (c *Lobby) fail(err error) error {
	c.apply(state.LobbyFailed{Message: BannerMessage(err)})
	return err
}

// ToggleReady sends the complement of the current ready flag
func (c *Lobby) ToggleReady() error {
	v := c.View()
	if !v.CanToggleReady() {
		return nil
	}
	t := ws.MsgLobbyReady
	if v.Ready {
		t = ws.MsgLobbyUnready
	}
	if err := c.d.RT.Emit(t, c.roomUser()); err != nil {
		return c.fail(err)
	}
	c.apply(state.LobbyReadySet{Ready: !v.Ready})
	return nil
}

// Start asks the server to start the match once everyone is ready
func (c *Lobby) Start() error {
	if !c.View().CanStart() {
		return nil
	}
	if err := c.d.RT.Emit(ws.MsgLobbyStart, ws.RoomOnly{RoomCode: c.roomCode}); err != nil {
		return c.fail(err)
	}
	return nil
}

// Leave sends the leave intent and returns to the dashboard
func (c *Lobby) Leave() {
	if !c.View().CanLeave() {
		return
	}
	c.leave()
	c.d.Nav.Navigate("/dashboard")
}

// SendChat posts a chat line with the author's name and avatar
func (c *Lobby) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	msg := model.ChatMessage{
		User:     c.user.ID.String(),
		Username: c.user.Username,
		Avatar:   c.user.Avatar,
		Text:     text,
	}
	if err := c.d.RT.Emit(ws.MsgLobbyChat, ws.ChatSend{RoomCode: c.roomCode, Message: msg}); err != nil {
		return c.fail(err)
	}
	return nil
}

// RequestClose starts the local close countdown. The close request goes out
// when it reaches zero unless canceled first.
func (c *Lobby) RequestClose() {
	if !c.View().CanClose() {
		return
	}
	c.apply(state.LobbyCloseRequested{Seconds: state.CloseConfirmSeconds})

	tick, stop := c.d.Clock.Tick(time.Second)
	done := make(chan struct{})
	c.timerMu.Lock()
	c.timerDone, c.timerStop = done, stop
	c.timerMu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-tick:
				next := c.apply(state.LobbyCloseTick{})
				if next.CloseConfirm != nil && *next.CloseConfirm == 0 {
					c.ConfirmClose()
					return
				}
			}
		}
	}()
}

// ConfirmClose sends the close request now
func (c *Lobby) ConfirmClose() {
	if !c.IsHost() {
		return
	}
	c.stopCloseTimer()
	if err := c.d.RT.Emit(ws.MsgLobbyClose, c.roomUser()); err != nil {
		c.fail(err)
	}
	c.apply(state.LobbyCloseCanceled{})
}

// CancelClose abandons the close countdown
func (c *Lobby) CancelClose() {
	c.stopCloseTimer()
	c.apply(state.LobbyCloseCanceled{})
}

func (c *Lobby) stopCloseTimer() {
	c.timerMu.Lock()
	done, stop := c.timerDone, c.timerStop
	c.timerDone, c.timerStop = nil, nil
	c.timerMu.Unlock()
	if done != nil {
		close(done)
		stop()
	}
}

// IsHost reports whether this user holds the host seat
func (c *Lobby) IsHost() bool { return c.View().IsHost() }

// DismissError clears the banner
func (c *Lobby) DismissError() { c.apply(state.LobbyErrorDismissed{}) }

// DismissClosed leaves a closed room for the dashboard
func (c *Lobby) DismissClosed() {
	if c.View().Closed {
		c.d.Nav.Navigate("/dashboard")
	}
}
