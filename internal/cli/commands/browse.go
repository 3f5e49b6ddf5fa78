package commands

import (
	"context"
	"fmt"

	"PsyDesk/internal/cli/diary"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/tui"
	"PsyDesk/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

type browseCmd struct{}

func (browseCmd) Name() string        { return "browse" }
func (browseCmd) Description() string { return "Интерактивный просмотр дневника (TUI)" }
func (browseCmd) Usage() string       { return "browse" }

func (browseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
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

	// в TUI уведомления показываются в строке статуса
	toasts := &notify.Recorder{}
	b := diary.NewBrowser(diary.BrowserDeps{
		Diary:    app.Services.Diary,
		Patients: app.Services.Patients,
		Notifier: toasts,
		Cache:    cache,
		Logger:   app.Logger,
		PerPage:  app.Prefs.PageSize,
	})
	m := tui.New(ctx, tui.Config{
		Browser:      b,
		Diary:        app.Services.Diary,
		Renderer:     app.Renderer,
		Toasts:       toasts,
		Clinical:     app.Session.IsPsychologist(),
		AnalysisDays: app.Prefs.AnalysisDays,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func init() { RegisterCmd(browseCmd{}) }
