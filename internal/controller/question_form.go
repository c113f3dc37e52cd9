package controller

import (
	"codeclash/internal/form"
	"codeclash/internal/model"
	"context"
)

// QuestionEditorView is the save state of the question form
type QuestionEditorView struct {
	Saving bool
	Error  string
	Saved  *model.Question
}

// QuestionEditor is the create-question screen. It is also embedded in the
// match creation flow, where the saved question goes to onCreated instead of
// leaving the screen.
type QuestionEditor struct {
	base[QuestionEditorView]
	d         Deps
	onCreated func(model.Question)

	// Form is edited by the caller between actions
	Form *form.QuestionForm
}

// NewQuestionEditor creates the editor. onCreated may be nil.
func NewQuestionEditor(d Deps, onCreated func(model.Question)) *QuestionEditor {
	c := &QuestionEditor{d: d.named("question-form"), onCreated: onCreated}
	c.Form = form.NewQuestionForm(c.isAdmin())
	return c
}

func (c *QuestionEditor) isAdmin() bool {
	return c.d.Sessions != nil && c.d.Sessions.IsAdmin()
}

func (c *QuestionEditor) Mount(ctx context.Context) error { return nil }

func (c *QuestionEditor) Unmount() {}

// Save validates and posts the question. publish picks the published
// status over draft.
func (c *QuestionEditor) Save(ctx context.Context, publish bool) error {
	q, err := c.Form.Question(publish)
	if err != nil {
		c.update(func(v *QuestionEditorView) { v.Error = BannerMessage(err) })
		return err
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.update(func(v *QuestionEditorView) {
		v.Saving = true
		v.Error = ""
	})

	created, err := c.d.API.Questions.Create(ctx, q)
	c.update(func(v *QuestionEditorView) {
		v.Saving = false
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.Saved = created
	})
	if err != nil {
		return err
	}

	if c.onCreated != nil {
		c.Form = form.NewQuestionForm(c.isAdmin())
		c.onCreated(*created)
		return nil
	}
	c.d.Nav.Navigate("/questions")
	return nil
}
