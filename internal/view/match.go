package view

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/state"
)

// Leaderboard is a ranked table. The viewer's row is marked with an arrow.
func Leaderboard(entries []model.LeaderboardEntry, self string) string {
	if len(entries) == 0 {
		return "No submissions yet."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  #\tPlayer\tScore\tTime")
	for i, e := range entries {
		mark := " "
		if self != "" && e.User == self {
			mark = ">"
		}
		fmt.Fprintf(w, "%s %d\t%s\t%g\t%s\n", mark, i+1, e.User, e.Score, Duration(int(e.Time)))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Duration formats seconds as MM:SS
func Duration(seconds int) string { return state.Clock(seconds) }

// Clock is the match countdown with its urgency
func Clock(m state.Match) string {
	s := "Time left " + state.Clock(m.TimeLeft)
	switch m.TimeStatus() {
	case "critical":
		return s + " !!"
	case "warning":
		return s + " !"
	}
	return s
}

// RunResult summarizes the latest judge run
func RunResult(r *state.RunResult) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	switch r.Status {
	case state.RunAccepted:
		b.WriteString(Alert(AlertSuccess, r.Message))
	case state.RunRunning:
		b.WriteString(Spinner(0, r.Message))
	default:
		b.WriteString(Alert(AlertError, r.Message))
	}
	for i, c := range r.Cases {
		verdict := "pass"
		if !c.Passed {
			verdict = "fail"
		}
		fmt.Fprintf(&b, "\n  case %d: %s", i+1, verdict)
		if !c.Passed && c.Expected != "" {
			fmt.Fprintf(&b, " (expected %q, got %q)", c.Expected, c.Output)
		}
		if c.Error != "" {
			fmt.Fprintf(&b, " %s", c.Error)
		}
	}
	return b.String()
}

// QuestionTabs lists the match questions with the current one bracketed
func QuestionTabs(m state.Match) string {
	if len(m.Questions) == 0 {
		return "No questions."
	}
	tabs := make([]string, len(m.Questions))
	for i, q := range m.Questions {
		label := fmt.Sprintf("%d. %s", i+1, q.Title)
		if i == m.Current {
			label = "[" + label + "]"
		}
		tabs[i] = label
	}
	return strings.Join(tabs, "  ")
}

// Languages lists the allowed editor languages with the active one bracketed
func Languages(m state.Match) string {
	langs := m.AllowedLanguages()
	out := make([]string, len(langs))
	for i, l := range langs {
		if l == m.Language {
			l = "[" + l + "]"
		}
		out[i] = l
	}
	return strings.Join(out, " ")
}

// MatchSettings summarizes the create-match form
func MatchSettings(f form.MatchForm) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Room\t%s\n", orDash(f.RoomName))
	fmt.Fprintf(w, "Questions\t%d\n", f.NumQuestions)
	fmt.Fprintf(w, "Max players\t%d\n", f.MaxPlayers)
	fmt.Fprintf(w, "Time limit\t%d min\n", f.TimeLimit)
	fmt.Fprintf(w, "Languages\t%s\n", orDash(strings.Join(f.Languages, ", ")))
	if f.Source == form.SourceRandom {
		r := f.Random
		fmt.Fprintf(w, "Source\trandom (easy %d, medium %d, hard %d)\n", r.Easy, r.Medium, r.Hard)
	} else {
		fmt.Fprintf(w, "Source\tcustom (%d of %d picked)\n", len(f.Selected), f.NumQuestions)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// SelectedQuestions lists the custom picks. New questions are marked as not
// yet saved.
func SelectedQuestions(f form.MatchForm) string {
	if len(f.Selected) == 0 {
		return "No questions selected."
	}
	lines := make([]string, len(f.Selected))
	for i, q := range f.Selected {
		line := fmt.Sprintf("%d. %s (%s)", i+1, orDash(q.Title), q.Difficulty)
		if !q.Persisted() {
			line += " *new"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
