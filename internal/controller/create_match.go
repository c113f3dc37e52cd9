package controller

import (
	"codeclash/internal/form"
	"codeclash/internal/model"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// lobbyRedirectDelay is how long the new room code stays on screen before
// the lobby opens
const lobbyRedirectDelay = 1200 * time.Millisecond

// CreateMatchView is the match creation screen
type CreateMatchView struct {
	Loading  bool
	Error    string
	Success  string
	RoomCode string

	// Form is a copy of the settings and selection
	Form form.MatchForm

	PickerOpen bool
	BankFilter model.QuestionFilter
	Bank       []model.Question
	BankError  string
}

// CanSubmit mirrors the create button: a custom selection must be complete
func (v CreateMatchView) CanSubmit() bool {
	if v.Loading {
		return false
	}
	return v.Form.Source != form.SourceCustom || len(v.Form.Selected) == v.Form.NumQuestions
}

// CreateMatch builds the room settings, collects questions and creates the
// match
type CreateMatch struct {
	base[CreateMatchView]
	d    Deps
	form *form.MatchForm

	redirectStop func() bool
}

// NewCreateMatch creates the controller with default settings
func NewCreateMatch(d Deps) *CreateMatch {
	c := &CreateMatch{d: d.named("create-match"), form: form.NewMatchForm()}
	c.view.Form = snapshotForm(c.form)
	return c
}

func snapshotForm(f *form.MatchForm) form.MatchForm {
	out := *f
	out.Languages = slices.Clone(f.Languages)
	out.Selected = slices.Clone(f.Selected)
	return out
}

func (c *CreateMatch) Mount(ctx context.Context) error { return nil }

// Unmount cancels a pending lobby redirect
func (c *CreateMatch) Unmount() {
	c.mu.Lock()
	stop := c.redirectStop
	c.redirectStop = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Edit changes the form under the controller lock
func (c *CreateMatch) Edit(fn func(f *form.MatchForm)) {
	c.update(func(v *CreateMatchView) {
		fn(c.form)
		v.Form = snapshotForm(c.form)
	})
}

// OpenPicker shows the question bank picker and loads it
func (c *CreateMatch) OpenPicker(ctx context.Context) error {
	c.update(func(v *CreateMatchView) { v.PickerOpen = true })
	return c.loadBank(ctx)
}

// ClosePicker hides the picker
func (c *CreateMatch) ClosePicker() {
	c.update(func(v *CreateMatchView) { v.PickerOpen = false })
}

// FilterBank refetches the picker listing with f
func (c *CreateMatch) FilterBank(ctx context.Context, f model.QuestionFilter) error {
	c.update(func(v *CreateMatchView) { v.BankFilter = f })
	return c.loadBank(ctx)
}

func (c *CreateMatch) loadBank(ctx context.Context) error {
	list, err := c.d.API.Questions.List(ctx, c.View().BankFilter)
	if err != nil {
		// a failed bank fetch keeps the previous listing
		c.d.Log.Debug("question bank fetch failed", zap.Error(err))
		c.update(func(v *CreateMatchView) { v.BankError = BannerMessage(err) })
		return err
	}
	c.update(func(v *CreateMatchView) {
		v.BankError = ""
		v.Bank = orEmpty(list)
	})
	return nil
}

// AddFromBank selects a bank question. The picker closes by itself once the
// selection reaches the configured count.
func (c *CreateMatch) AddFromBank(q model.Question) bool {
	var added bool
	c.update(func(v *CreateMatchView) {
		var closePicker bool
		added, closePicker = c.form.AddFromBank(q)
		if closePicker {
			v.PickerOpen = false
		}
		v.Form = snapshotForm(c.form)
	})
	return added
}

// AddNew selects a question written in the match flow. Saved questions are
// also listed at the top of the bank. The picker closes either way.
func (c *CreateMatch) AddNew(q model.Question) bool {
	var added bool
	c.update(func(v *CreateMatchView) {
		added = c.form.AddNew(q)
		if added && q.Persisted() {
			v.Bank = append([]model.Question{q}, v.Bank...)
		}
		v.PickerOpen = false
		v.Form = snapshotForm(c.form)
	})
	return added
}

// Remove drops a selected question
func (c *CreateMatch) Remove(idx int) {
	c.Edit(func(f *form.MatchForm) { f.Remove(idx) })
}

// Create validates, saves any new questions, creates the match and opens
// the lobby shortly after
func (c *CreateMatch) Create(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.update(func(v *CreateMatchView) {
		v.Loading = true
		v.Error = ""
		v.Success = ""
	})

	code, err := c.create(ctx)
	c.update(func(v *CreateMatchView) {
		v.Loading = false
		v.Form = snapshotForm(c.form)
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.RoomCode = code
		v.Success = msgMatchCreated
	})
	if err != nil {
		return err
	}

	stop := c.d.Clock.AfterFunc(lobbyRedirectDelay, c.JoinLobby)
	c.mu.Lock()
	c.redirectStop = stop
	c.mu.Unlock()
	return nil
}

func (c *CreateMatch) create(ctx context.Context) (string, error) {
	c.mu.Lock()
	err := c.form.Validate()
	var unsaved []int
	var pending []model.Question
	if err == nil && c.form.Source == form.SourceCustom {
		unsaved = c.form.Unsaved()
		for _, i := range unsaved {
			pending = append(pending, c.form.Selected[i])
		}
	}
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	for n, q := range pending {
		saved, err := c.d.API.Questions.Create(ctx, q)
		if err != nil {
			return "", fmt.Errorf("save question %q: %w", q.Title, err)
		}
		c.mu.Lock()
		c.form.Selected[unsaved[n]] = *saved
		c.mu.Unlock()
	}

	c.mu.Lock()
	req, err := c.form.Request()
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	code, err := c.d.API.Matches.Create(ctx, req)
	if err != nil {
		return "", err
	}
	c.d.Log.Info("match created", zap.String("room", code), zap.Int("questions", len(req.Questions)))
	return code, nil
}

// JoinLobby opens the lobby of the created room right away
func (c *CreateMatch) JoinLobby() {
	code := c.View().RoomCode
	if code == "" {
		return
	}
	c.Unmount()
	c.d.Nav.Navigate("/lobby/" + code)
}

// JoinMatchView is the join-by-code screen
type JoinMatchView struct {
	Loading bool
	Error   string
}

// JoinMatch joins an existing room by code
type JoinMatch struct {
	base[JoinMatchView]
	d Deps
}

// NewJoinMatch creates the join controller
func NewJoinMatch(d Deps) *JoinMatch {
	return &JoinMatch{d: d.named("join-match")}
}

func (c *JoinMatch) Mount(ctx context.Context) error { return nil }

func (c *JoinMatch) Unmount() {}

// Join registers the user with the room and opens its lobby
func (c *JoinMatch) Join(ctx context.Context, roomCode string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.update(func(v *JoinMatchView) {
		v.Loading = true
		v.Error = ""
	})

	code, err := form.ValidateRoomCode(roomCode)
	if err == nil {
		err = c.d.API.Matches.Join(ctx, code)
	}
	c.update(func(v *JoinMatchView) {
		v.Loading = false
		if err != nil {
			v.Error = BannerMessage(err)
		}
	})
	if err != nil {
		return err
	}
	c.d.Nav.Navigate("/lobby/" + code)
	return nil
}
