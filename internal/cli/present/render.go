package present

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/model/view"
	"PsyDesk/internal/cli/prefs"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"})
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"})
)

// Renderer выводит записи дневника с учётом пользовательских настроек.
type Renderer struct {
	p prefs.Prefs
}

// NewRenderer создаёт рендерер.
func NewRenderer(p prefs.Prefs) *Renderer {
	return &Renderer{p: p}
}

// Mood возвращает стиль с учётом переопределённых цветов.
func (r *Renderer) Mood(m model.Mood) MoodStyle {
	s := MoodFor(m)
	if c, ok := r.p.MoodColors[string(m)]; ok {
		s.Color = lipgloss.Color(c)
	}
	return s
}

// MoodBadge рисует иконку и подпись настроения в цвете.
func (r *Renderer) MoodBadge(m model.Mood) string {
	s := r.Mood(m)
	return lipgloss.NewStyle().Foreground(s.Color).Render(s.Icon + " " + s.Label)
}

// Notebook строит DTO режима чтения. clinical добавляет метаданные для психолога.
func (r *Renderer) Notebook(e model.DiaryEntry, clinical bool) view.NotebookEntry {
	s := r.Mood(e.Mood)
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = "Sin título"
	}
	out := view.NotebookEntry{
		ID:        e.ID.String(),
		Date:      ShortDate(e.Date, r.p.DateLayout),
		MoodIcon:  s.Icon,
		MoodLabel: s.Label,
		Title:     title,
		Content:   e.Content,
		Tags:      append([]string(nil), e.Tags...),
		Private:   bool(e.IsPrivate),
	}
	if clinical {
		if e.Patient != nil {
			out.PatientName = e.Patient.Name
		}
		out.CreatedAt = DateTime(e.CreatedAt, r.p.DateLayout)
		out.UpdatedAt = DateTime(e.UpdatedAt, r.p.DateLayout)
	}
	return out
}

// WriteNotebook печатает запись в режиме «только чтение».
func (r *Renderer) WriteNotebook(w io.Writer, e model.DiaryEntry, clinical bool) {
	v := r.Notebook(e, clinical)
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(v.Title), r.MoodBadge(e.Mood))
	fmt.Fprintf(w, "%s\n", metaStyle.Render(v.Date))
	if clinical {
		if v.PatientName != "" {
			fmt.Fprintf(w, "Paciente: %s\n", v.PatientName)
		}
		if v.Private {
			fmt.Fprintln(w, "Privada")
		}
	}
	fmt.Fprintf(w, "\n%s\n", v.Content)
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "\n%s\n", tagStyle.Render(Hashtags(v.Tags)))
	}
	if clinical {
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("#%s · creada %s · actualizada %s", v.ID, v.CreatedAt, v.UpdatedAt)))
	}
}

// EntryRow рендерит одну строку списка записей.
func (r *Renderer) EntryRow(e model.DiaryEntry, clinical bool) string {
	s := r.Mood(e.Mood)
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = Excerpt(e.Content, 40)
	}
	row := fmt.Sprintf("%-6s %-10s %s %-12s %s", e.ID.String(), ShortDate(e.Date, r.p.DateLayout), s.Icon, s.Label, title)
	if clinical && e.Patient != nil && e.Patient.Name != "" {
		row += "  [" + e.Patient.Name + "]"
	}
	if len(e.Tags) > 0 {
		row += "  " + Hashtags(e.Tags)
	}
	return row
}

// Hashtags склеивает теги в «#a #b».
func Hashtags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, "#"+t)
	}
	return strings.Join(parts, " ")
}

// Excerpt обрезает текст до n рун по границе слова.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

// PeriodHeader возвращает заголовок карточки анализа для запрошенного периода days.
func (r *Renderer) PeriodHeader(days int, a *model.WeeklyAnalysis) string {
	h := fmt.Sprintf("Últimos %d días", days)
	if a != nil && !a.DateFrom.IsZero() && !a.DateTo.IsZero() {
		h += fmt.Sprintf(" (%s – %s)", a.DateFrom.Format(r.p.DateLayout), a.DateTo.Format(r.p.DateLayout))
	}
	return h
}

// WriteAnalysis печатает результат анализа.
func (r *Renderer) WriteAnalysis(w io.Writer, days int, a *model.WeeklyAnalysis) {
	fmt.Fprintln(w, titleStyle.Render(r.PeriodHeader(days, a)))
	if a == nil {
		return
	}
	fmt.Fprintf(w, "Entradas: %d\n", a.EntriesCount)
	if a.AIGenerated {
		fmt.Fprintln(w, metaStyle.Render("Resumen generado con IA"))
	}
	fmt.Fprintf(w, "\n%s\n", a.Summary)

	if len(a.MoodDistribution) > 0 {
		fmt.Fprintln(w, "\nDistribución de ánimo:")
		counts, unknown := MoodCounts(a.MoodDistribution)
		for _, m := range model.Moods {
			if n := counts[m]; n > 0 {
				fmt.Fprintf(w, "  %s %d\n", r.MoodBadge(m), n)
			}
		}
		if unknown > 0 {
			fmt.Fprintf(w, "  %s %d\n", r.MoodBadge(""), unknown)
		}
	}
	if len(a.CommonThemes) > 0 {
		fmt.Fprintf(w, "\nTemas frecuentes: %s\n", strings.Join(a.CommonThemes, ", "))
	}
}

// MoodCounts сводит ключи распределения к каноническим настроениям.
// Ключи map не проходят через Mood.UnmarshalJSON, поэтому нормализуются здесь.
func MoodCounts(dist map[model.Mood]int) (map[model.Mood]int, int) {
	counts := make(map[model.Mood]int, len(model.Moods))
	unknown := 0
	for k, n := range dist {
		if n <= 0 {
			continue
		}
		if m, ok := model.ParseMood(string(k)); ok {
			counts[m] += n
			continue
		}
		unknown += n
	}
	return counts, unknown
}
