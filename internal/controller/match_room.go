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

// submitFlagDuration is how long the submitting flag stays up
const submitFlagDuration = 2 * time.Second

// MatchRoom is the running match: questions, editor, judge runs,
// leaderboard and chat. The countdown is local and display only.
type MatchRoom struct {
	base[state.Match]
	d        Deps
	roomCode string
	scope    *ws.Scope

	timerMu    sync.Mutex
	tickDone   chan struct{}
	tickStop   func()
	submitStop func() bool
}

// NewMatchRoom creates the match controller for roomCode
func NewMatchRoom(d Deps, roomCode string) *MatchRoom {
	c := &MatchRoom{d: d.named("match"), roomCode: roomCode}
	c.view = state.NewMatch(roomCode, model.User{})
	return c
}

func (c *MatchRoom) apply(ev state.MatchEvent) state.Match {
	var next state.Match
	c.update(func(v *state.Match) {
		*v = state.ReduceMatch(*v, ev)
		next = *v
	})
	return next
}

// Mount joins the match channel, starts the clock and loads the room
func (c *MatchRoom) Mount(ctx context.Context) error {
	u, _ := c.d.Sessions.User()
	c.update(func(v *state.Match) { v.Self = u })

	if err := c.d.RT.Connect(ctx); err != nil {
		c.d.Log.Warn("realtime connect failed", zap.Error(err))
	}
	c.scope = ws.NewScope(c.d.RT)
	c.scope.On(ws.MsgLobbyUpdate, c.onLobbyUpdate)
	c.scope.On(ws.MsgLobbyChat, c.onChat)
	c.scope.On(ws.MsgLeaderboardUpdate, c.onLeaderboard)
	c.scope.On(ws.MsgMatchError, c.onError)
	c.scope.On(ws.MsgMatchEndedLegacy, func(json.RawMessage) { c.apply(state.MatchEndedEvent{}) })
	c.scope.On(ws.MsgMatchEnded, func(json.RawMessage) {
		c.apply(state.MatchEndedEvent{})
		c.d.Nav.Navigate(c.finishPath())
	})

	if err := c.d.RT.Emit(ws.MsgJoinMatch, ws.RoomJoin{RoomCode: c.roomCode, User: u}); err != nil {
		c.d.Log.Warn("joinMatch not sent", zap.Error(err))
	}

	c.startClock()

	st, err := c.d.API.Matches.FullState(ctx, c.roomCode)
	if err != nil {
		c.d.Log.Warn("match state fetch failed", zap.String("room", c.roomCode), zap.Error(err))
		c.apply(state.MatchLoadFailed{})
		return nil
	}
	c.apply(state.MatchLoaded{State: *st})
	return nil
}

// Unmount drops subscriptions and stops every timer
func (c *MatchRoom) Unmount() {
	if c.scope != nil {
		c.scope.Close()
	}
	c.timerMu.Lock()
	done, stop, submitStop := c.tickDone, c.tickStop, c.submitStop
	c.tickDone, c.tickStop, c.submitStop = nil, nil, nil
	c.timerMu.Unlock()
	if done != nil {
		close(done)
		stop()
	}
	if submitStop != nil {
		submitStop()
	}
}

func (c *MatchRoom) startClock() {
	tick, stop := c.d.Clock.Tick(time.Second)
	done := make(chan struct{})
	c.timerMu.Lock()
	c.tickDone, c.tickStop = done, stop
	c.timerMu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-tick:
				c.apply(state.MatchTick{})
			}
		}
	}()
}

func (c *MatchRoom) finishPath() string { return "/match/" + c.roomCode + "/finish" }

func (c *MatchRoom) onLobbyUpdate(raw json.RawMessage) {
	up, err := ws.Decode[model.LobbyUpdate](raw)
	if err != nil {
		c.d.Log.Warn("bad lobby:update", zap.Error(err))
		return
	}
	c.apply(state.MatchLobbyUpdate{Update: up})
}

func (c *MatchRoom) onChat(raw json.RawMessage) {
	chat, err := ws.Decode[[]model.ChatMessage](raw)
	if err != nil {
		c.d.Log.Warn("bad lobby:chat", zap.Error(err))
		return
	}
	c.apply(state.MatchChatReplaced{Chat: chat})
}

func (c *MatchRoom) onLeaderboard(raw json.RawMessage) {
	board, err := ws.Decode[[]model.LeaderboardEntry](raw)
	if err != nil {
		c.d.Log.Warn("bad leaderboardUpdate", zap.Error(err))
		return
	}
	c.apply(state.MatchLeaderboardReplaced{Entries: board})
}

func (c *MatchRoom) onError(raw json.RawMessage) {
	ev, _ := ws.Decode[*model.ErrorEvent](raw)
	msg := ""
	if ev != nil {
		msg = ev.Message
	}
	c.apply(state.MatchFailed{Message: msg})
}

// SelectQuestion switches to question i and loads its starter code
func (c *MatchRoom) SelectQuestion(i int) { c.apply(state.MatchQuestionSelected{Index: i}) }

// SelectLanguage switches the editor language
func (c *MatchRoom) SelectLanguage(lang string) { c.apply(state.MatchLanguageSelected{Language: lang}) }

// EditCode replaces the editor buffer
func (c *MatchRoom) EditCode(code string) { c.apply(state.MatchCodeEdited{Code: code}) }

// DismissError clears the banner
func (c *MatchRoom) DismissError() { c.apply(state.MatchErrorDismissed{}) }

// Run sends the editor buffer to the judge and records the per-case result
func (c *MatchRoom) Run(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	v := c.apply(state.MatchRunStarted{})
	res, err := c.d.API.Matches.Run(ctx, c.roomCode, model.RunRequest{
		Code:     v.Code,
		Language: v.Language,
		User:     v.Self.Username,
	})
	if err != nil {
		c.d.Log.Warn("run failed", zap.String("room", c.roomCode), zap.Error(err))
		c.apply(state.MatchRunFailed{})
		return err
	}
	c.apply(state.MatchRunFinished{Cases: res.Result, Judged: res.Judged()})
	return nil
}

// Submit sends the buffer for scoring. There is no acknowledgement; the
// submitting flag drops after a fixed delay.
func (c *MatchRoom) Submit() error {
	v := c.apply(state.MatchSubmitStarted{})
	err := c.d.RT.Emit(ws.MsgSubmitCode, ws.SubmitCode{
		RoomCode: c.roomCode,
		Submission: model.Submission{
			User:     v.Self.Username,
			Code:     v.Code,
			Language: v.Language,
			Time:     v.TimeLeft,
		},
	})
	if err != nil {
		c.apply(state.MatchSubmitSettled{})
		c.apply(state.MatchFailed{Message: BannerMessage(err)})
		return err
	}

	stop := c.d.Clock.AfterFunc(submitFlagDuration, func() { c.apply(state.MatchSubmitSettled{}) })
	c.timerMu.Lock()
	prev := c.submitStop
	c.submitStop = stop
	c.timerMu.Unlock()
	if prev != nil {
		prev()
	}
	return nil
}

// SendChat posts a chat line under the player's username
func (c *MatchRoom) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v := c.View()
	msg := model.ChatMessage{User: v.Self.Username, Text: text}
	if err := c.d.RT.Emit(ws.MsgLobbyChat, ws.ChatSend{RoomCode: c.roomCode, Message: msg}); err != nil {
		c.apply(state.MatchFailed{Message: BannerMessage(err)})
		return err
	}
	return nil
}

// Finish asks the server to end the match. The host moves on to the
// results right away.
func (c *MatchRoom) Finish() error {
	if err := c.d.RT.Emit(ws.MsgMatchFinish, ws.RoomOnly{RoomCode: c.roomCode}); err != nil {
		c.apply(state.MatchFailed{Message: BannerMessage(err)})
		return err
	}
	if c.View().IsHost() {
		c.d.Nav.Navigate(c.finishPath())
	}
	return nil
}

// MatchFinishView is the results screen
type MatchFinishView struct {
	Loading     bool
	Error       string
	RoomName    string
	Leaderboard []model.LeaderboardEntry
	Rank        int
}

// MatchFinish shows the final standings of a room
type MatchFinish struct {
	base[MatchFinishView]
	d        Deps
	roomCode string
}

// NewMatchFinish creates the results controller for roomCode
func NewMatchFinish(d Deps, roomCode string) *MatchFinish {
	return &MatchFinish{d: d.named("match-finish"), roomCode: roomCode}
}

func (c *MatchFinish) Mount(ctx context.Context) error {
	c.update(func(v *MatchFinishView) { v.Loading = true })
	st, err := c.d.API.Matches.FullState(ctx, c.roomCode)
	u, _ := c.d.Sessions.User()
	c.update(func(v *MatchFinishView) {
		v.Loading = false
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.RoomName = st.RoomName
		v.Leaderboard = orEmpty(st.Leaderboard)
		v.Rank = state.RankOf(v.Leaderboard, u.Username)
	})
	return err
}

func (c *MatchFinish) Unmount() {}

// Back returns to the dashboard
func (c *MatchFinish) Back() { c.d.Nav.Navigate("/dashboard") }
