package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"PsyDesk/internal/cli/diary"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/present"
	"PsyDesk/internal/cli/service"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeDetail
	modeAnalysis
)

type entriesLoadedMsg struct{ err error }
type statsLoadedMsg struct{}
type analysisDoneMsg struct{ err error }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}).
			Background(lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"})
	helpStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"})
	disabledStyle = lipgloss.NewStyle().Faint(true)
)

type Config struct {
	Browser      *diary.Browser
	Diary        service.DiaryService
	Renderer     *present.Renderer
	Toasts       *notify.Recorder
	Clinical     bool
	AnalysisDays int
}

// Model: интерактивный браузер дневника.
type Model struct {
	ctx      context.Context
	cfg      Config
	keys     KeyMap
	mode     viewMode
	cursor   int
	search   textinput.Model
	spinner  spinner.Model
	card     *diary.AnalysisCard
	cardFor  model.ID
	status   string
	width    int
	quitting bool
}

// New создаёт модель. ctx отменяет все фоновые загрузки.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Toasts == nil {
		cfg.Toasts = &notify.Recorder{}
	}
	ti := textinput.New()
	ti.Placeholder = "texto a buscar"
	ti.CharLimit = 100
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{ctx: ctx, cfg: cfg, keys: DefaultKeyMap(), search: ti, spinner: sp}
}

// Init загружает первую страницу и статистику.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(func(ctx context.Context) error {
		return m.cfg.Browser.LoadEntries(ctx, model.DiaryFilters{})
	}), m.spinner.Tick}
	if m.cfg.Clinical {
		cmds = append(cmds, m.loadStats())
	}
	return tea.Batch(cmds...)
}

func (m Model) load(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return entriesLoadedMsg{err: fn(ctx)}
	}
}

func (m Model) loadStats() tea.Cmd {
	ctx, b := m.ctx, m.cfg.Browser
	return func() tea.Msg {
		b.LoadPatientStats(ctx)
		return statsLoadedMsg{}
	}
}

func (m Model) requestAnalysis(days int) tea.Cmd {
	ctx, card := m.ctx, m.card
	return func() tea.Msg {
		_, err := card.Request(ctx, days)
		return analysisDoneMsg{err: err}
	}
}

// Update обрабатывает сообщения.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case entriesLoadedMsg:
		if errors.Is(msg.err, diary.ErrStaleResponse) {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(m.cfg.Browser.Snapshot().Entries))
		m.takeToast()
		return m, nil

	case statsLoadedMsg:
		return m, nil

	case analysisDoneMsg:
		m.takeToast()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// takeToast переносит последнее уведомление в строку статуса.
func (m *Model) takeToast() {
	toasts := m.cfg.Toasts.Drain()
	if len(toasts) > 0 {
		m.status = notify.Render(toasts[len(toasts)-1])
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeAnalysis:
		return m.handleAnalysisKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.cfg.Browser
	st := b.Snapshot()
	// загрузка могла завершиться раньше, чем пришло её сообщение
	m.cursor = clampCursor(m.cursor, len(st.Entries))
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(st.Entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Next):
		if b.CanNext() {
			m.cursor = 0
			return m, m.load(b.Next)
		}
	case key.Matches(msg, m.keys.Prev):
		if b.CanPrev() {
			m.cursor = 0
			return m, m.load(b.Prev)
		}
	case key.Matches(msg, m.keys.Mood):
		f := st.Filters
		f.Mood = nextMood(f.Mood)
		m.cursor = 0
		return m, m.load(func(ctx context.Context) error { return b.ApplyFilters(ctx, f) })
	case key.Matches(msg, m.keys.Clear):
		m.cursor = 0
		return m, m.load(b.ClearFilters)
	case key.Matches(msg, m.keys.Reload):
		return m, m.load(b.Reload)
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(st.Filters.Search)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Open):
		if len(st.Entries) > 0 {
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.Analysis):
		return m.openAnalysis(st)
	}
	return m, nil
}

func (m Model) openAnalysis(st diary.State) (tea.Model, tea.Cmd) {
	if !m.cfg.Clinical || m.cursor >= len(st.Entries) || m.cfg.Diary == nil {
		return m, nil
	}
	pid := st.Entries[m.cursor].PatientID
	if pid == 0 {
		return m, nil
	}
	if m.card == nil || m.cardFor != pid {
		m.card = diary.NewAnalysisCard(m.cfg.Diary, m.cfg.Toasts, pid, m.cfg.AnalysisDays)
		m.cardFor = pid
	}
	m.mode = modeAnalysis
	_, days := m.card.Current()
	return m, m.requestAnalysis(days)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		f := m.cfg.Browser.Snapshot().Filters
		f.Search = strings.TrimSpace(m.search.Value())
		m.cursor = 0
		b := m.cfg.Browser
		return m, m.load(func(ctx context.Context) error { return b.ApplyFilters(ctx, f) })
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
	case key.Matches(msg, m.keys.Analysis):
		return m.openAnalysis(m.cfg.Browser.Snapshot())
	}
	return m, nil
}

func (m Model) handleAnalysisKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
	case key.Matches(msg, m.keys.Period):
		if !m.card.PeriodsEnabled() {
			return m, nil
		}
		days := map[string]int{"1": 7, "2": 15, "3": 30}[msg.String()]
		return m, m.requestAnalysis(days)
	}
	return m, nil
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// nextMood циклически перебирает фильтр настроения: все → great → … → very-sad → все.
func nextMood(cur model.Mood) model.Mood {
	if cur == "" {
		return model.Moods[0]
	}
	for i, mo := range model.Moods {
		if mo == cur && i+1 < len(model.Moods) {
			return model.Moods[i+1]
		}
	}
	return ""
}

// View рисует текущий экран.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	switch m.mode {
	case modeDetail:
		m.viewDetail(&sb)
	case modeAnalysis:
		m.viewAnalysis(&sb)
	default:
		m.viewList(&sb)
	}
	if m.status != "" {
		sb.WriteString("\n" + m.status + "\n")
	}
	return sb.String()
}

func (m Model) viewList(sb *strings.Builder) {
	st := m.cfg.Browser.Snapshot()
	title := "Diario emocional"
	if m.cfg.Clinical && st.ActivePatients > 0 {
		title += fmt.Sprintf(" · %d pacientes activos", st.ActivePatients)
	}
	sb.WriteString(headerStyle.Render(title) + "\n")
	sb.WriteString(filterLine(st.Filters) + "\n\n")

	if st.Loading {
		sb.WriteString(m.spinner.View() + " Cargando…\n")
	}
	if len(st.Entries) == 0 && !st.Loading {
		sb.WriteString(m.cfg.Browser.EmptyMessage() + "\n")
	}
	for i, e := range st.Entries {
		row := m.cfg.Renderer.EntryRow(e, m.cfg.Clinical)
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("> "+row) + "\n")
		} else {
			sb.WriteString("  " + row + "\n")
		}
	}

	prev, next := "← anterior", "siguiente →"
	if !m.cfg.Browser.CanPrev() {
		prev = disabledStyle.Render(prev)
	}
	if !m.cfg.Browser.CanNext() {
		next = disabledStyle.Render(next)
	}
	fmt.Fprintf(sb, "\n%s  Página %d de %d (%d entradas)  %s\n", prev, st.Page, st.LastPage, st.Total, next)

	if m.mode == modeSearch {
		sb.WriteString("\nBuscar: " + m.search.View() + "\n")
	}
	sb.WriteString(helpStyle.Render("n/p páginas · m ánimo · / buscar · c limpiar · enter abrir · a análisis · q salir") + "\n")
}

func (m Model) viewDetail(sb *strings.Builder) {
	st := m.cfg.Browser.Snapshot()
	if m.cursor >= len(st.Entries) {
		sb.WriteString("Entrada no disponible\n")
		return
	}
	m.cfg.Renderer.WriteNotebook(sb, st.Entries[m.cursor], m.cfg.Clinical)
	sb.WriteString("\n" + helpStyle.Render("esc volver · a análisis · q salir") + "\n")
}

func (m Model) viewAnalysis(sb *strings.Builder) {
	if m.card == nil {
		return
	}
	res, days := m.card.Current()
	if !m.card.PeriodsEnabled() {
		sb.WriteString(m.spinner.View() + " Generando análisis…\n")
	}
	m.cfg.Renderer.WriteAnalysis(sb, days, res)
	periods := "1) 7 días  2) 15 días  3) 30 días"
	if !m.card.PeriodsEnabled() {
		periods = disabledStyle.Render(periods)
	}
	sb.WriteString("\n" + periods + "\n" + helpStyle.Render("esc volver · q salir") + "\n")
}

func filterLine(f model.DiaryFilters) string {
	if !f.Active() {
		return helpStyle.Render("Sin filtros")
	}
	var parts []string
	if f.Mood != "" {
		parts = append(parts, "ánimo: "+present.MoodFor(f.Mood).Label)
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("búsqueda: %q", f.Search))
	}
	if f.PatientID != 0 {
		parts = append(parts, "paciente: "+f.PatientID.String())
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		parts = append(parts, "fechas")
	}
	return helpStyle.Render("Filtros: " + strings.Join(parts, " · "))
}
