package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/bootstrap"
	"PsyDesk/internal/cli/diary"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/repo"
	"PsyDesk/internal/config"

	"github.com/charmbracelet/huh"
)

type diaryCmd struct{}

func (diaryCmd) Name() string        { return "diary" }
func (diaryCmd) Description() string { return "Список записей дневника с фильтрами" }
func (diaryCmd) Usage() string {
	return "diary [-patient id] [-mood m] [-from date] [-to date] [-search text] [-page n]"
}

func (diaryCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	f, err := parseDiaryFilters(args)
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	cache, done, err := app.OpenEntryCache()
	if err != nil {
		app.Logger.Warnw("entry cache unavailable", "error", err)
		cache = nil
	} else {
		defer done()
	}

	b := diary.NewBrowser(diary.BrowserDeps{
		Diary:    app.Services.Diary,
		Notifier: app.Notifier,
		Cache:    cache,
		Logger:   app.Logger,
		PerPage:  app.Prefs.PageSize,
	})
	if err := b.LoadEntries(ctx, f); err != nil {
		return err
	}
	printEntries(Out, app, b)
	return nil
}

func parseDiaryFilters(args []string) (model.DiaryFilters, error) {
	fs := flag.NewFlagSet("diary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	patient := fs.Int64("patient", 0, "patient id")
	mood := fs.String("mood", "", "mood")
	from := fs.String("from", "", "date from")
	to := fs.String("to", "", "date to")
	search := fs.String("search", "", "search text")
	page := fs.Int("page", 1, "page")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return model.DiaryFilters{}, ErrUsage
	}

	f := model.DiaryFilters{PatientID: model.ID(*patient), Search: strings.TrimSpace(*search), Page: *page}
	if *mood != "" {
		m, ok := model.ParseMood(*mood)
		if !ok {
			return f, fmt.Errorf("unknown mood %q (great, good, neutral, sad, very-sad)", *mood)
		}
		f.Mood = m
	}
	var err error
	if *from != "" {
		if f.DateFrom, err = model.ParseDate(*from); err != nil {
			return f, err
		}
	}
	if *to != "" {
		if f.DateTo, err = model.ParseDate(*to); err != nil {
			return f, err
		}
	}
	return f, nil
}

func printEntries(w io.Writer, app *bootstrap.App, b *diary.Browser) {
	st := b.Snapshot()
	if len(st.Entries) == 0 {
		fmt.Fprintln(w, b.EmptyMessage())
		return
	}
	clinical := app.Session.IsPsychologist()
	for _, e := range st.Entries {
		fmt.Fprintln(w, app.Renderer.EntryRow(e, clinical))
	}
	fmt.Fprintf(w, "Página %d de %d · %d entradas\n", st.Page, st.LastPage, st.Total)
}

type diaryAddCmd struct{}

func (diaryAddCmd) Name() string        { return "diary-add" }
func (diaryAddCmd) Description() string { return "Новая запись дневника (без текста: интерактивная форма)" }
func (diaryAddCmd) Usage() string       { return "diary-add [-mood m] [-private] [text...]" }

// entryForm показывает интерактивную форму записи; в тестах подменяется.
var entryForm = func(today string, d *entryDraft) error {
	opts := []huh.Option[string]{huh.NewOption("Sin especificar", "")}
	for _, m := range model.Moods {
		opts = append(opts, huh.NewOption(string(m), string(m)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("¿Cómo te sientes hoy?").
				Description(today).
				Value(&d.content),
			huh.NewSelect[string]().
				Title("Estado de ánimo").
				Options(opts...).
				Value(&d.mood),
			huh.NewConfirm().
				Title("¿Entrada privada?").
				Value(&d.private),
		),
	).Run()
}

type entryDraft struct {
	content string
	mood    string
	private bool
}

func (diaryAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("diary-add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mood := fs.String("mood", "", "mood")
	private := fs.Bool("private", false, "private entry")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	c := diary.NewComposer(app.Services.Diary, nil, app.Notifier)

	d := entryDraft{content: strings.Join(fs.Args(), " "), mood: *mood, private: *private}
	if strings.TrimSpace(d.content) == "" {
		if err := entryForm(c.TodayLabel(), &d); err != nil {
			return err
		}
	}
	c.SetContent(d.content)
	if err := c.SetMood(d.mood); err != nil {
		return err
	}
	if d.private {
		c.SetPrivate(true)
	}

	e, err := c.Submit(ctx)
	if err != nil {
		if errors.Is(err, diary.ErrEmptyContent) {
			return ErrUsage
		}
		return err
	}
	fmt.Fprintf(Out, "Created:\n  id:    %s\n  title: %s\n  mood:  %s\n", e.ID, e.Title, app.Renderer.Mood(e.Mood).Label)
	return nil
}

type diaryShowCmd struct{}

func (diaryShowCmd) Name() string        { return "diary-show" }
func (diaryShowCmd) Description() string { return "Показать запись (офлайн: из локального кэша)" }
func (diaryShowCmd) Usage() string       { return "diary-show <id>" }

func (diaryShowCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	cache, done, cerr := app.OpenEntryCache()
	if cerr == nil {
		defer done()
	}

	e, err := app.Services.Diary.Get(ctx, id)
	var apiErr *api.Error
	switch {
	case err == nil:
		if cache != nil {
			if err := cache.SaveEntries([]model.DiaryEntry{*e}); err != nil {
				app.Logger.Warnw("entry cache write failed", "id", id, "error", err)
			}
		}
	case errors.As(err, &apiErr) || cache == nil:
		// сервер ответил ошибкой: кэш не используем
		return err
	default:
		cached, cacheErr := cache.GetEntry(id)
		if cacheErr != nil {
			if errors.Is(cacheErr, repo.ErrNotCached) {
				return err
			}
			return errors.Join(err, cacheErr)
		}
		fmt.Fprintln(Out, "(sin conexión: mostrando copia local)")
		e = cached
	}
	app.Renderer.WriteNotebook(Out, *e, app.Session.IsPsychologist())
	return nil
}

type diaryDeleteCmd struct{}

func (diaryDeleteCmd) Name() string        { return "diary-delete" }
func (diaryDeleteCmd) Description() string { return "Удалить запись дневника" }
func (diaryDeleteCmd) Usage() string       { return "diary-delete <id>" }

func (diaryDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	if err := app.Services.Diary.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted: %s\n", id)
	return nil
}

type analysisCmd struct{}

func (analysisCmd) Name() string        { return "analysis" }
func (analysisCmd) Description() string { return "Анализ дневника пациента за 7/15/30 дней" }
func (analysisCmd) Usage() string       { return "analysis <patient-id> [7|15|30]" }

func (analysisCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	days := app.Prefs.AnalysisDays
	if len(args) == 2 {
		if _, err := fmt.Sscan(args[1], &days); err != nil {
			return ErrUsage
		}
	}
	card := diary.NewAnalysisCard(app.Services.Diary, app.Notifier, pid, app.Prefs.AnalysisDays)
	res, err := card.Request(ctx, days)
	if err != nil {
		if errors.Is(err, diary.ErrInvalidPeriod) {
			return ErrUsage
		}
		return err
	}
	app.Renderer.WriteAnalysis(Out, days, res)
	return nil
}

func init() {
	RegisterCmd(diaryCmd{})
	RegisterCmd(diaryAddCmd{})
	RegisterCmd(diaryShowCmd{})
	RegisterCmd(diaryDeleteCmd{})
	RegisterCmd(analysisCmd{})
}
