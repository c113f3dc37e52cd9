// Package view renders screen state as plain text. Every function is pure:
// the same input always gives the same output.
package view

import (
	"fmt"
	"strings"
)

// AlertKind picks the banner marker
type AlertKind int

const (
	AlertError AlertKind = iota
	AlertSuccess
	AlertInfo
)

// Alert is a one-line banner, empty when msg is empty
func Alert(kind AlertKind, msg string) string {
	if msg == "" {
		return ""
	}
	switch kind {
	case AlertSuccess:
		return "[ok] " + msg
	case AlertInfo:
		return "[i] " + msg
	default:
		return "[!] " + msg
	}
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner is one frame of the loading indicator
func Spinner(frame int, label string) string {
	if frame < 0 {
		frame = -frame
	}
	s := spinnerFrames[frame%len(spinnerFrames)]
	if label == "" {
		return s
	}
	return s + " " + label
}

// Title underlines a screen heading
func Title(s string) string {
	return s + "\n" + strings.Repeat("=", len([]rune(s)))
}

// Keys renders the key help line, e.g. "[r] ready  [q] leave"
func Keys(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("[%s] %s", pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
