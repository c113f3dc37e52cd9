package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// testServer accepts sockets, records inbound frames and lets tests push
// frames to every open connection
type testServer struct {
	t       *testing.T
	srv     *httptest.Server
	conns   atomic.Int32
	tokens  chan string
	inbound chan Message

	mu   sync.Mutex
	open []*websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		t:       t,
		tokens:  make(chan string, 8),
		inbound: make(chan Message, 64),
	}
	ts.srv = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
}

func (ts *testServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ts.mu.Lock()
	ts.open = append(ts.open, conn)
	ts.mu.Unlock()
	ts.conns.Add(1)
	ts.tokens <- r.URL.Query().Get("token")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if json.Unmarshal(data, &msg) == nil {
			ts.inbound <- msg
		}
	}
}

func (ts *testServer) waitOpen(n int) {
	require.Eventually(ts.t, func() bool {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		return len(ts.open) >= n
	}, 2*time.Second, 5*time.Millisecond)
}

func (ts *testServer) push(t MessageType, payload any) {
	data, err := Encode(t, payload)
	require.NoError(ts.t, err)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, c := range ts.open {
		require.NoError(ts.t, c.WriteMessage(websocket.TextMessage, data))
	}
}

func (ts *testServer) dropAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, c := range ts.open {
		c.Close()
	}
	ts.open = nil
}

func recvMsg(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Message{}
	}
}

func recvPayload(t *testing.T, ch <-chan json.RawMessage) json.RawMessage {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func TestConnectIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	ch := NewChannel(ts.url(), tokenFunc(func() string { return "tok-1" }), nil)
	defer ch.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ch.Connect(ctx))
		}()
	}
	wg.Wait()
	require.NoError(t, ch.Connect(ctx))
	assert.True(t, ch.Connected())
	assert.Equal(t, "tok-1", <-ts.tokens)

	ts.waitOpen(1)
	got := make(chan json.RawMessage, 4)
	ch.On(MsgLobbyCountdown, func(p json.RawMessage) { got <- p })

	ts.push(MsgLobbyCountdown, 3)
	assert.JSONEq(t, "3", string(recvPayload(t, got)))

	select {
	case extra := <-got:
		t.Fatalf("event delivered twice: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(1), ts.conns.Load())
}

func TestEmitEnvelope(t *testing.T) {
	ts := newTestServer(t)
	ch := NewChannel(ts.url(), nil, nil)
	defer ch.Close()

	assert.ErrorIs(t, ch.Emit(MsgLobbyJoin, RoomOnly{RoomCode: "R1"}), ErrNotConnected)

	require.NoError(t, ch.Connect(context.Background()))
	require.NoError(t, ch.Emit(MsgLobbyReady, RoomUser{RoomCode: "R1", UserID: "u1"}))
	require.NoError(t, ch.Emit(MsgLobbyStart, RoomOnly{RoomCode: "R1"}))

	first := recvMsg(t, ts.inbound)
	assert.Equal(t, MsgLobbyReady, first.Type)
	assert.JSONEq(t, `{"roomCode":"R1","userId":"u1"}`, string(first.Payload))

	second := recvMsg(t, ts.inbound)
	assert.Equal(t, MsgLobbyStart, second.Type)
}

func TestInboundOrderAndOff(t *testing.T) {
	ts := newTestServer(t)
	ch := NewChannel(ts.url(), nil, nil)
	defer ch.Close()
	require.NoError(t, ch.Connect(context.Background()))

	ts.waitOpen(1)
	got := make(chan json.RawMessage, 16)
	sub := ch.On(MsgLobbyChat, func(p json.RawMessage) { got <- p })
	assert.Equal(t, 1, ch.Handlers(MsgLobbyChat))

	for i := 1; i <= 5; i++ {
		ts.push(MsgLobbyChat, i)
	}
	for i := 1; i <= 5; i++ {
		n, err := Decode[int](recvPayload(t, got))
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	ch.Off(sub)
	ch.Off(sub)
	assert.Equal(t, 0, ch.Handlers(MsgLobbyChat))

	ts.push(MsgLobbyChat, 6)
	select {
	case p := <-got:
		t.Fatalf("handler still subscribed: %s", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScopeReleasesAll(t *testing.T) {
	ch := NewChannel("ws://unused", nil, nil)
	scope := NewScope(ch)
	scope.On(MsgLobbyUpdate, func(json.RawMessage) {})
	scope.On(MsgLobbyUpdate, func(json.RawMessage) {})
	scope.On(MsgLobbyError, func(json.RawMessage) {})
	assert.Equal(t, 3, scope.Len())
	assert.Equal(t, 2, ch.Handlers(MsgLobbyUpdate))

	scope.Close()
	scope.Close()
	assert.Equal(t, 0, ch.Handlers(MsgLobbyUpdate))
	assert.Equal(t, 0, ch.Handlers(MsgLobbyError))

	scope.On(MsgLobbyUpdate, func(json.RawMessage) {})
	assert.Equal(t, 0, ch.Handlers(MsgLobbyUpdate))
}

func TestReconnectAfterDrop(t *testing.T) {
	ts := newTestServer(t)
	ch := NewChannel(ts.url(), nil, nil)
	defer ch.Close()
	require.NoError(t, ch.Connect(context.Background()))
	ts.waitOpen(1)

	ts.dropAll()
	require.Eventually(t, func() bool { return !ch.Connected() }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ch.Connect(context.Background()))
	assert.Equal(t, int32(2), ts.conns.Load())
}

func TestMalformedFrameIsSkipped(t *testing.T) {
	ts := newTestServer(t)
	ch := NewChannel(ts.url(), nil, nil)
	defer ch.Close()
	require.NoError(t, ch.Connect(context.Background()))

	ts.waitOpen(1)
	got := make(chan json.RawMessage, 1)
	ch.On(MsgLobbyClosed, func(p json.RawMessage) { got <- p })

	ts.mu.Lock()
	require.NoError(t, ts.open[0].WriteMessage(websocket.TextMessage, []byte("not json")))
	ts.mu.Unlock()
	ts.push(MsgLobbyClosed, nil)

	assert.Equal(t, "null", string(recvPayload(t, got)))
	assert.True(t, ch.Connected())
}
