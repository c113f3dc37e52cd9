package controller

import (
	"codeclash/internal/form"
	"codeclash/internal/transport/rest"
	"errors"
)

// ErrBusy is returned when an action is triggered while the previous one is
// still in flight
var ErrBusy = errors.New("operation already in progress")

// BannerMessage is the single line shown for a failed action: the
// validation or server message when there is one, the generic fallback
// otherwise
func BannerMessage(err error) string {
	return bannerOr(err, rest.FallbackMessage)
}

// bannerOr is BannerMessage with a screen-specific fallback
func bannerOr(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg, ok := form.Message(err); ok {
		return msg
	}
	var apiErr *rest.Error
	if errors.As(err, &apiErr) && apiErr.Kind == rest.KindServer && apiErr.Message != rest.FallbackMessage {
		return apiErr.Message
	}
	return fallback
}

func invalid(msg string) error { return &form.ValidationError{Message: msg} }
