package form

import (
	"codeclash/internal/model"
	"strings"
)

// ValidateRoomCode rejects an empty join code
func ValidateRoomCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", invalid("Room code is required.")
	}
	return code, nil
}

// ValidateAvatar rejects a registration without a profile picture
func ValidateAvatar(a *model.Avatar) error {
	if a == nil || len(a.Data) == 0 {
		return invalid("Profile picture is required.")
	}
	return nil
}
