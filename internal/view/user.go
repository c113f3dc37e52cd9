package view

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"codeclash/internal/model"
)

// Stats is the dashboard headline
func Stats(played, wins int, fastest *int, accuracy int) string {
	fast := "-"
	if fastest != nil {
		fast = fmt.Sprintf("%ds", *fastest)
	}
	return fmt.Sprintf("Matches %d | Wins %d | Fastest %s | Accuracy %d%%", played, wins, fast, accuracy)
}

// UserLine is a compact user entry with presence and follow state
func UserLine(u model.User, online bool) string {
	var b strings.Builder
	b.WriteString(u.Username)
	if online || u.IsOnline {
		b.WriteString(" *online")
	}
	if u.IsFollowing {
		b.WriteString(" (following)")
	}
	return b.String()
}

// Users lists players with their ids, for commands that take an id
func Users(users []model.User, online map[model.Ref]bool) string {
	if len(users) == 0 {
		return "No users."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%d played\t%d won\n", u.ID, UserLine(u, online[u.ID]), u.MatchesPlayed, u.WinCount)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Matches lists match summaries, newest first as the backend sends them
func Matches(ms []model.MatchSummary) string {
	if len(ms) == 0 {
		return "No matches yet."
	}
	lines := make([]string, len(ms))
	for i, m := range ms {
		acc := "-"
		if m.Analytics != nil {
			acc = fmt.Sprintf("%g%%", m.Analytics.Accuracy)
		}
		lines[i] = fmt.Sprintf("%s  %s  %s  accuracy %s", orDash(m.RoomCode), orDash(m.RoomName), orDash(m.Status), acc)
	}
	return strings.Join(lines, "\n")
}

// Profile is the public profile block
func Profile(u model.User, followers, following, winRate int) string {
	var b strings.Builder
	b.WriteString(Title(u.Username))
	if u.Bio != "" {
		fmt.Fprintf(&b, "\n%s", u.Bio)
	}
	fmt.Fprintf(&b, "\nFollowers %d | Following %d", followers, following)
	fmt.Fprintf(&b, "\nMatches %d | Wins %d | Win rate %d%%", u.MatchesPlayed, u.WinCount, winRate)
	if len(u.Achievements) > 0 {
		fmt.Fprintf(&b, "\nAchievements: %s", strings.Join(u.Achievements, ", "))
	}
	return b.String()
}
