package controller

import (
	"context"
	"testing"
	"time"

	"codeclash/internal/model"
	"codeclash/internal/transport/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountLobby(t *testing.T, e *testEnv, u model.User) *Lobby {
	t.Helper()
	e.login(t, u)
	c := NewLobby(e.deps, "ABC123")
	require.NoError(t, c.Mount(context.Background()))
	return c
}

func pushLobby(e *testEnv, host string, players []model.User, ready ...string) {
	refs := make([]string, 0, len(ready))
	refs = append(refs, ready...)
	e.rt.Fire(ws.MsgLobbyUpdate, map[string]any{
		"players":      players,
		"hostId":       map[string]string{"_id": host},
		"readyPlayers": refs,
	})
}

func TestLobbyJoinAndLeaveArePaired(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)

	var join ws.RoomJoin
	require.True(t, e.rt.Last(ws.MsgLobbyJoin, &join))
	assert.Equal(t, "ABC123", join.RoomCode)
	assert.Equal(t, alice.ID, join.User.ID)

	c.Leave()
	c.Unmount()

	assert.Equal(t, []ws.MessageType{ws.MsgLobbyJoin, ws.MsgLobbyLeave}, e.rt.Types())
	var leave ws.RoomUser
	require.True(t, e.rt.Last(ws.MsgLobbyLeave, &leave))
	assert.Equal(t, ws.RoomUser{RoomCode: "ABC123", UserID: alice.ID}, leave)
	assert.Equal(t, "/dashboard", e.nav.Last())
	assert.Zero(t, e.rt.Subscribed())
}

func TestLobbyUnmountLeavesOnce(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	c.Unmount()
	c.Unmount()
	assert.Equal(t, 1, e.rt.Count(ws.MsgLobbyLeave))
	assert.True(t, c.View().Left)
}

func TestLobbyWithoutUserRedirects(t *testing.T) {
	e := newEnv(t)
	c := NewLobby(e.deps, "ABC123")
	require.Error(t, c.Mount(context.Background()))
	c.Unmount()

	assert.Equal(t, "/login", e.nav.Last())
	assert.Empty(t, e.rt.Emitted())
	assert.Equal(t, msgUserIDMissing, c.View().Error)
}

func TestLobbyConnectFailureSkipsLeave(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	e.rt.ConnectErr = assert.AnError
	c := NewLobby(e.deps, "ABC123")
	require.Error(t, c.Mount(context.Background()))
	c.Unmount()
	assert.Empty(t, e.rt.Emitted())
}

func TestLobbyUpdateRendersHostAndReady(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, bob)

	pushLobby(e, "a1", []model.User{alice, bob}, "b2")
	v := c.View()
	require.Len(t, v.Players, 2)
	assert.Equal(t, model.Ref("a1"), v.HostID)
	assert.False(t, c.IsHost())
	assert.True(t, v.Ready)
	assert.True(t, v.IsReady("b2"))
	assert.False(t, v.IsReady("a1"))

	c.Unmount()
}

func TestLobbyToggleReadyEmitsComplement(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	require.NoError(t, c.ToggleReady())
	require.NoError(t, c.ToggleReady())
	require.NoError(t, c.ToggleReady())

	assert.Equal(t, []ws.MessageType{ws.MsgLobbyJoin, ws.MsgLobbyReady, ws.MsgLobbyUnready, ws.MsgLobbyReady}, e.rt.Types())
	assert.True(t, c.View().Ready)

	// a push from the server overrides the local flag
	pushLobby(e, "a1", []model.User{alice})
	require.NoError(t, c.ToggleReady())
	assert.Equal(t, ws.MsgLobbyReady, e.rt.Types()[len(e.rt.Types())-1])
}

func TestLobbyStartNeedsEveryoneReady(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	pushLobby(e, "a1", []model.User{alice, bob}, "a1")
	require.NoError(t, c.Start())
	assert.Zero(t, e.rt.Count(ws.MsgLobbyStart))

	pushLobby(e, "a1", []model.User{alice, bob}, "a1", "b2")
	require.NoError(t, c.Start())
	var body ws.RoomOnly
	require.True(t, e.rt.Last(ws.MsgLobbyStart, &body))
	assert.Equal(t, "ABC123", body.RoomCode)
}

func TestLobbyStartIsHostOnly(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, bob)
	defer c.Unmount()

	pushLobby(e, "a1", []model.User{alice, bob}, "a1", "b2")
	require.NoError(t, c.Start())
	assert.Zero(t, e.rt.Count(ws.MsgLobbyStart))
}

func TestLobbyCountdownLocksActions(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	pushLobby(e, "a1", []model.User{alice})
	e.rt.Fire(ws.MsgLobbyCountdown, 3)

	v := c.View()
	require.NotNil(t, v.Countdown)
	assert.Equal(t, 3, *v.Countdown)
	assert.True(t, v.Locked())

	before := len(e.rt.Emitted())
	require.NoError(t, c.ToggleReady())
	c.Leave()
	assert.Len(t, e.rt.Emitted(), before)
	assert.Empty(t, e.nav.Paths())
}

func TestLobbyStartNavigatesToMatch(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)

	e.rt.Fire(ws.MsgLobbyStart, map[string]string{"roomCode": "ABC123"})
	assert.Equal(t, "/match/ABC123", e.nav.Last())
	assert.True(t, c.View().Started)

	c.Unmount()
	assert.Equal(t, 1, e.rt.Count(ws.MsgLobbyLeave))
}

func TestLobbyErrorBanner(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	e.rt.Fire(ws.MsgLobbyError, map[string]string{"message": "Room is full"})
	assert.Equal(t, "Room is full", c.View().Error)

	c.DismissError()
	assert.Empty(t, c.View().Error)

	e.rt.Fire(ws.MsgLobbyError, map[string]string{})
	assert.Equal(t, "Room error.", c.View().Error)
}

func TestLobbyClosedReturnsToDashboard(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	c.DismissClosed()
	assert.Empty(t, e.nav.Paths())

	e.rt.Fire(ws.MsgLobbyClosed, nil)
	assert.True(t, c.View().Closed)
	c.DismissClosed()
	assert.Equal(t, "/dashboard", e.nav.Last())
}

func TestLobbyCloseCountdownSendsClose(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()
	pushLobby(e, "a1", []model.User{alice, bob})

	c.RequestClose()
	require.NotNil(t, c.View().CloseConfirm)
	assert.Equal(t, 5, *c.View().CloseConfirm)

	for i := 0; i < 5; i++ {
		e.clock.tick(t)
	}
	require.Eventually(t, func() bool { return e.rt.Count(ws.MsgLobbyClose) == 1 }, time.Second, 5*time.Millisecond)

	var body ws.RoomUser
	require.True(t, e.rt.Last(ws.MsgLobbyClose, &body))
	assert.Equal(t, ws.RoomUser{RoomCode: "ABC123", UserID: alice.ID}, body)
	require.Eventually(t, func() bool { return c.View().CloseConfirm == nil }, time.Second, 5*time.Millisecond)
	assert.Zero(t, e.clock.liveTickers())
}

func TestLobbyCloseCanBeCanceled(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()
	pushLobby(e, "a1", []model.User{alice})

	c.RequestClose()
	e.clock.tick(t)
	require.Eventually(t, func() bool {
		v := c.View()
		return v.CloseConfirm != nil && *v.CloseConfirm == 4
	}, time.Second, 5*time.Millisecond)

	c.CancelClose()
	assert.Nil(t, c.View().CloseConfirm)
	assert.Zero(t, e.clock.liveTickers())
	assert.Zero(t, e.rt.Count(ws.MsgLobbyClose))
}

func TestLobbyConfirmCloseSendsNow(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()
	pushLobby(e, "a1", []model.User{alice})

	c.RequestClose()
	c.ConfirmClose()
	assert.Equal(t, 1, e.rt.Count(ws.MsgLobbyClose))
	assert.Nil(t, c.View().CloseConfirm)
}

func TestLobbyChatCarriesAuthor(t *testing.T) {
	e := newEnv(t)
	c := mountLobby(t, e, alice)
	defer c.Unmount()

	require.NoError(t, c.SendChat("   "))
	require.NoError(t, c.SendChat(" gl hf "))

	var body ws.ChatSend
	require.True(t, e.rt.Last(ws.MsgLobbyChat, &body))
	assert.Equal(t, "ABC123", body.RoomCode)
	assert.Equal(t, model.ChatMessage{User: "a1", Username: "alice", Avatar: "a.png", Text: "gl hf"}, body.Message)
	assert.Equal(t, 1, e.rt.Count(ws.MsgLobbyChat))

	e.rt.Fire(ws.MsgLobbyChat, []model.ChatMessage{{User: "b2", Text: "hi"}})
	require.Len(t, c.View().Chat, 1)
	assert.Equal(t, "hi", c.View().Chat[0].Text)
}
