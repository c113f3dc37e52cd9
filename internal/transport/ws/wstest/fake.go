// Package wstest provides an in-memory realtime channel for screen tests.
package wstest

import (
	"codeclash/internal/transport/ws"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
)

// Emitted is one recorded outbound event
type Emitted struct {
	Type    ws.MessageType
	Payload json.RawMessage
}

type handler struct {
	seq int
	fn  ws.Handler
}

// Fake records emits and lets tests push inbound events synchronously
type Fake struct {
	mu       sync.Mutex
	connects int
	emitted  []Emitted
	handlers map[ws.MessageType]map[string]handler
	seq      int

	// ConnectErr is returned by Connect when set
	ConnectErr error
	// EmitErr is returned by Emit when set
	EmitErr error
}

var _ ws.Realtime = (*Fake)(nil)

// New returns an empty fake
func New() *Fake {
	return &Fake{handlers: make(map[ws.MessageType]map[string]handler)}
}

func (f *Fake) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connects++
	return nil
}

func (f *Fake) Emit(t ws.MessageType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EmitErr != nil {
		return f.EmitErr
	}
	f.emitted = append(f.emitted, Emitted{Type: t, Payload: data})
	return nil
}

func (f *Fake) On(t ws.MessageType, h ws.Handler) ws.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	sub := ws.Subscription{Type: t, ID: strconv.Itoa(f.seq)}
	if f.handlers[t] == nil {
		f.handlers[t] = make(map[string]handler)
	}
	f.handlers[t][sub.ID] = handler{seq: f.seq, fn: h}
	return sub
}

func (f *Fake) Off(sub ws.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers[sub.Type], sub.ID)
	if len(f.handlers[sub.Type]) == 0 {
		delete(f.handlers, sub.Type)
	}
}

// Fire delivers payload to every handler of t, in registration order
func (f *Fake) Fire(t ws.MessageType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	f.FireRaw(t, data)
}

// FireRaw delivers an already encoded payload
func (f *Fake) FireRaw(t ws.MessageType, data json.RawMessage) {
	f.mu.Lock()
	hs := make([]handler, 0, len(f.handlers[t]))
	for _, h := range f.handlers[t] {
		hs = append(hs, h)
	}
	f.mu.Unlock()

	sort.Slice(hs, func(i, j int) bool { return hs[i].seq < hs[j].seq })
	for _, h := range hs {
		h.fn(data)
	}
}

// Emitted returns a copy of the outbound log
func (f *Fake) Emitted() []Emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Emitted(nil), f.emitted...)
}

// Types returns the outbound event names in order
func (f *Fake) Types() []ws.MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.MessageType, len(f.emitted))
	for i, e := range f.emitted {
		out[i] = e.Type
	}
	return out
}

// Count returns how many times t was emitted
func (f *Fake) Count(t ws.MessageType) int {
	n := 0
	for _, typ := range f.Types() {
		if typ == t {
			n++
		}
	}
	return n
}

// Last decodes the payload of the latest emit of t into v
func (f *Fake) Last(t ws.MessageType, v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.emitted) - 1; i >= 0; i-- {
		if f.emitted[i].Type == t {
			return json.Unmarshal(f.emitted[i].Payload, v) == nil
		}
	}
	return false
}

// Handlers counts live handlers for t
func (f *Fake) Handlers(t ws.MessageType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[t])
}

// Subscribed counts every live handler
func (f *Fake) Subscribed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, hs := range f.handlers {
		n += len(hs)
	}
	return n
}

// Connects counts successful Connect calls
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Reset forgets recorded emits
func (f *Fake) Reset() {
	f.mu.Lock()
	f.emitted = nil
	f.mu.Unlock()
}
