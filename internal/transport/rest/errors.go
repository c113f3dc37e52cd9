package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is shown when a failure carries no server message
const FallbackMessage = "Something went wrong. Please try again."

// Kind classifies an API failure
type Kind int

const (
	// KindNetwork means the request never got a response
	KindNetwork Kind = iota + 1
	// KindServer means the backend answered with a non-2xx status
	KindServer
	// KindDecode means a 2xx body could not be parsed
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrNotLoggedIn is returned before any request is made when an endpoint
// needs a bearer token and none is available
var ErrNotLoggedIn = errors.New("not logged in")

// Error is a failed API call. Message is always safe to show to the user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Kind, e.Status, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a 404 from the backend
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// Unauthorized reports a 401 or 403 from the backend
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// newServerError reads the backend's {"message": "..."} body, accepting
// {"error": "..."} as well
func newServerError(status int, body []byte) *Error {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = stringField(payload.Message)
		if msg == "" {
			msg = stringField(payload.Error)
		}
	}
	if msg == "" {
		msg = FallbackMessage
	}
	return &Error{Kind: KindServer, Status: status, Message: msg}
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Message returns the user-facing text for err: the server message for API
// failures and the fallback for everything else
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackMessage
}
