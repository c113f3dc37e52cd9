package form

import (
	"codeclash/internal/model"
	"fmt"
	"slices"
	"strings"
)

// Source is where a match draws its questions from
type Source string

const (
	// SourceCustom is hand-picked bank questions plus newly written ones
	SourceCustom Source = "custom"
	// SourceRandom draws per-difficulty counts from the global bank
	SourceRandom Source = "random"
)

// MatchForm is the create-match form
type MatchForm struct {
	RoomName     string
	NumQuestions int
	MaxPlayers   int
	TimeLimit    int
	Languages    []string
	Source       Source

	// Selected keeps selection order. Entries without an ID are new
	// questions that still have to be saved.
	Selected []model.Question
	Random   model.RandomCounts
}

// NewMatchForm returns the form with its initial values
func NewMatchForm() *MatchForm {
	return &MatchForm{
		NumQuestions: 1,
		MaxPlayers:   2,
		TimeLimit:    30,
		Languages:    []string{},
		Source:       SourceCustom,
		Selected:     []model.Question{},
	}
}

// ToggleLanguage adds or removes an editor language
func (f *MatchForm) ToggleLanguage(lang string) {
	if i := slices.Index(f.Languages, lang); i >= 0 {
		f.Languages = slices.Delete(f.Languages, i, i+1)
		return
	}
	f.Languages = append(f.Languages, lang)
}

// Full reports whether the selection has reached the question count
func (f *MatchForm) Full() bool {
	return len(f.Selected) >= f.NumQuestions
}

// AddFromBank appends a bank question unless it is already selected or the
// selection is full. It reports whether the question was added and whether
// the picker should close because the count has been reached.
func (f *MatchForm) AddFromBank(q model.Question) (added, closePicker bool) {
	if f.Full() {
		return false, false
	}
	if q.Persisted() && slices.ContainsFunc(f.Selected, func(s model.Question) bool { return s.ID == q.ID }) {
		return false, false
	}
	f.Selected = append(f.Selected, q)
	return true, len(f.Selected) == f.NumQuestions
}

// AddNew appends a question written in the match flow. The picker closes
// either way.
func (f *MatchForm) AddNew(q model.Question) bool {
	if f.Full() {
		return false
	}
	f.Selected = append(f.Selected, q)
	return true
}

// Remove drops the selected question at idx
func (f *MatchForm) Remove(idx int) {
	if idx < 0 || idx >= len(f.Selected) {
		return
	}
	f.Selected = slices.Delete(f.Selected, idx, idx+1)
}

// SetRandom sets one difficulty's count, clamped to [0, NumQuestions]
func (f *MatchForm) SetRandom(d model.Difficulty, n int) {
	n = ClampRandom(n, f.NumQuestions)
	switch d {
	case model.DifficultyEasy:
		f.Random.Easy = n
	case model.DifficultyMedium:
		f.Random.Medium = n
	case model.DifficultyHard:
		f.Random.Hard = n
	}
}

// ClampRandom bounds a per-difficulty count by the question total
func ClampRandom(n, total int) int {
	return max(0, min(n, total))
}

// Validate runs the checks in display order and returns the first failure
func (f *MatchForm) Validate() error {
	switch {
	case strings.TrimSpace(f.RoomName) == "":
		return invalid("Room name is required.")
	case f.NumQuestions < 1:
		return invalid("Number of questions required.")
	case f.MaxPlayers < 2:
		return invalid("At least 2 players required.")
	case f.TimeLimit < 1:
		return invalid("Time limit required.")
	case len(f.Languages) == 0:
		return invalid("Select at least one language.")
	}
	switch f.Source {
	case SourceRandom:
		if f.Random.Total() != f.NumQuestions {
			return invalid(fmt.Sprintf("Total random questions must equal %d.", f.NumQuestions))
		}
	default:
		if len(f.Selected) != f.NumQuestions {
			return invalid(fmt.Sprintf("You must add exactly %d question(s).", f.NumQuestions))
		}
	}
	return nil
}

// Unsaved returns the indexes of selected questions that have no ID yet
func (f *MatchForm) Unsaved() []int {
	var idx []int
	for i, q := range f.Selected {
		if !q.Persisted() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Request builds the create-match body. For a custom source every selected
// question must already carry an ID.
func (f *MatchForm) Request() (model.CreateMatchRequest, error) {
	req := model.CreateMatchRequest{
		RoomName:   strings.TrimSpace(f.RoomName),
		TimeLimit:  f.TimeLimit,
		MaxPlayers: f.MaxPlayers,
		Languages:  slices.Clone(f.Languages),
	}
	if f.Source == SourceRandom {
		counts := f.Random
		req.RandomQuestions = &counts
		return req, nil
	}
	req.Questions = make([]model.Ref, 0, len(f.Selected))
	for _, q := range f.Selected {
		if !q.Persisted() {
			return model.CreateMatchRequest{}, fmt.Errorf("question %q has not been saved", q.Title)
		}
		req.Questions = append(req.Questions, q.ID)
	}
	return req, nil
}
