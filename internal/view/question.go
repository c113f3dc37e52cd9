package view

import (
	"fmt"
	"strings"

	"codeclash/internal/model"
)

// QuestionCard is the one-line listing entry
func QuestionCard(q model.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", orDash(q.Title), q.Difficulty)
	if q.Category != "" {
		fmt.Fprintf(&b, " %s", q.Category)
	}
	if len(q.Tags) > 0 {
		fmt.Fprintf(&b, " #%s", strings.Join(q.Tags, " #"))
	}
	if q.Status == model.StatusDraft {
		b.WriteString(" (draft)")
	}
	return b.String()
}

// QuestionList renders a listing, one card per line, numbered
func QuestionList(qs []model.Question) string {
	if len(qs) == 0 {
		return "No questions found."
	}
	lines := make([]string, len(qs))
	for i, q := range qs {
		lines[i] = fmt.Sprintf("%2d. %s  (%s)", i+1, QuestionCard(q), q.ID)
	}
	return strings.Join(lines, "\n")
}

// QuestionDetail is the full statement with its sample cases
func QuestionDetail(q model.Question, samples []model.TestCase) string {
	var b strings.Builder
	b.WriteString(Title(q.Title))
	fmt.Fprintf(&b, "\n%s | %s\n\n%s\n", q.Difficulty, orDash(q.Category), q.Description)
	section := func(name, body string) {
		if strings.TrimSpace(body) != "" {
			fmt.Fprintf(&b, "\n%s:\n%s\n", name, body)
		}
	}
	section("Input", q.InputFormat)
	section("Output", q.OutputFormat)
	section("Constraints", q.Constraints)
	for i, ex := range q.Examples {
		fmt.Fprintf(&b, "\nExample %d:\n  in:  %s\n  out: %s\n", i+1, ex.Input, ex.Output)
		if ex.Explanation != "" {
			fmt.Fprintf(&b, "  why: %s\n", ex.Explanation)
		}
	}
	for i, tc := range samples {
		fmt.Fprintf(&b, "\nSample %d:\n  in:  %s\n  out: %s\n", i+1, tc.Input, tc.Output)
	}
	section("Notes", q.Notes)
	return strings.TrimRight(b.String(), "\n")
}
