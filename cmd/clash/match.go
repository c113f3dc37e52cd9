package main

import (
	"codeclash/internal/controller"
	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/view"
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// randomCounts reads "easy,medium,hard"
func randomCounts(s string) (model.RandomCounts, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return model.RandomCounts{}, &form.ValidationError{Message: "Random counts are easy,medium,hard, e.g. 1,1,1."}
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.RandomCounts{}, &form.ValidationError{Message: "Random counts must be numbers."}
		}
		n[i] = v
	}
	return model.RandomCounts{Easy: n[0], Medium: n[1], Hard: n[2]}, nil
}

func runCreateMatch(ctx context.Context, e *env, args []string) error {
	fs := flags("create-match")
	name := fs.String("name", "", "room name")
	count := fs.Int("questions", 1, "number of questions")
	players := fs.Int("players", 2, "max players")
	limit := fs.Int("time", 30, "time limit in minutes")
	langs := fs.String("langs", "", "comma-separated editor languages (c, cpp, java, python)")
	random := fs.String("random", "", "draw from the global bank: easy,medium,hard counts")
	pick := fs.String("pick", "", "comma-separated bank question ids")
	newFile := fs.String("new", "", "JSON file with new questions to write for this match")
	open := fs.Bool("open", true, "open the lobby once the room exists")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}

	c := controller.NewCreateMatch(e.deps())
	defer c.Unmount()

	var counts model.RandomCounts
	if *random != "" {
		var err error
		if counts, err = randomCounts(*random); err != nil {
			return err
		}
	}
	c.Edit(func(f *form.MatchForm) {
		f.RoomName = *name
		f.NumQuestions = *count
		f.MaxPlayers = *players
		f.TimeLimit = *limit
		for _, l := range splitList(*langs) {
			f.ToggleLanguage(l)
		}
		if *random != "" {
			f.Source = form.SourceRandom
			f.SetRandom(model.DifficultyEasy, counts.Easy)
			f.SetRandom(model.DifficultyMedium, counts.Medium)
			f.SetRandom(model.DifficultyHard, counts.Hard)
		}
	})

	if ids := splitList(*pick); len(ids) > 0 {
		if err := e.pickQuestions(ctx, c, ids); err != nil {
			return err
		}
	}
	if *newFile != "" {
		qs, err := readQuestions(*newFile)
		if err != nil {
			return err
		}
		for _, q := range qs {
			draft, err := form.FromQuestion(q, e.sessions.IsAdmin()).Question(true)
			if err != nil {
				return fmt.Errorf("question %q: %w", q.Title, err)
			}
			c.AddNew(draft)
		}
	}

	v := c.View()
	fmt.Fprintln(e.out, view.MatchSettings(v.Form))
	if v.Form.Source == form.SourceCustom {
		fmt.Fprintln(e.out, view.SelectedQuestions(v.Form))
	}
	if err := c.Create(ctx); err != nil {
		return err
	}
	v = c.View()
	fmt.Fprintln(e.out, view.Alert(view.AlertSuccess, v.Success))
	fmt.Fprintf(e.out, "Room code: %s\n", v.RoomCode)

	c.Unmount()
	if !*open {
		return nil
	}
	return e.interactive(ctx, "/lobby/"+v.RoomCode)
}

// pickQuestions selects bank questions by id, in the given order
func (e *env) pickQuestions(ctx context.Context, c *controller.CreateMatch, ids []string) error {
	if err := c.OpenPicker(ctx); err != nil {
		e.log.Debug("bank listing unavailable, fetching picks one by one", zap.Error(err))
	}
	bank := map[model.Ref]model.Question{}
	for _, q := range c.View().Bank {
		bank[q.ID] = q
	}
	for _, id := range ids {
		q, ok := bank[model.Ref(id)]
		if !ok {
			got, err := e.api.Questions.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("question %s: %w", id, err)
			}
			q = *got
		}
		if !c.AddFromBank(q) {
			return &form.ValidationError{Message: fmt.Sprintf("Question %s was not added: it is already picked or the selection is full.", id)}
		}
	}
	c.ClosePicker()
	return nil
}

func roomArg(name string, args []string) (string, error) {
	fs := flags(name)
	code := fs.String("code", "", "room code")
	if err := parse(fs, args); err != nil {
		return "", err
	}
	if *code == "" && fs.NArg() > 0 {
		*code = fs.Arg(0)
	}
	return form.ValidateRoomCode(*code)
}

func runJoin(ctx context.Context, e *env, args []string) error {
	code, err := roomArg("join", args)
	if err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	if err := controller.NewJoinMatch(e.deps()).Join(ctx, code); err != nil {
		return err
	}
	return e.interactive(ctx, e.nav.Last())
}

func runLobby(ctx context.Context, e *env, args []string) error {
	code, err := roomArg("lobby", args)
	if err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	return e.interactive(ctx, "/lobby/"+code)
}

func runMatch(ctx context.Context, e *env, args []string) error {
	code, err := roomArg("match", args)
	if err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	return e.interactive(ctx, "/match/"+code)
}
