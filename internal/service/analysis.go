package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"PsyDesk/internal/model"
)

const maxThemes = 5

// Periods: допустимые окна анализа, в днях.
var Periods = []int{7, 15, 30}

func ValidPeriod(days int) bool {
	for _, d := range Periods {
		if d == days {
			return true
		}
	}
	return false
}

// Analysis: результат анализа дневника за период.
type Analysis struct {
	PatientID        int64          `json:"patient_id"`
	Days             int            `json:"days"`
	DateFrom         string         `json:"date_from"`
	DateTo           string         `json:"date_to"`
	EntriesCount     int            `json:"entries_count"`
	Summary          string         `json:"summary"`
	MoodDistribution map[string]int `json:"mood_distribution"`
	CommonThemes     []string       `json:"common_themes"`
	AIGenerated      bool           `json:"ai_generated"`

	// для шаблонной сводки
	dominantMood string
	trend        int
}

// Aggregate считает распределение настроений, частые темы (по тегам) и тренд.
func Aggregate(patientID int64, days int, from, to time.Time, entries []model.DiaryEntry) Analysis {
	a := Analysis{
		PatientID:        patientID,
		Days:             days,
		DateFrom:         from.Format(time.DateOnly),
		DateTo:           to.Format(time.DateOnly),
		EntriesCount:     len(entries),
		MoodDistribution: map[string]int{},
		CommonThemes:     []string{},
	}
	themes := map[string]int{}
	for _, e := range entries {
		if model.ValidMood(e.Mood) {
			a.MoodDistribution[e.Mood]++
		}
		for _, t := range decodeTags(e.Tags) {
			themes[t]++
		}
	}

	best := 0
	for _, m := range model.Moods {
		if n := a.MoodDistribution[m]; n > best {
			best, a.dominantMood = n, m
		}
	}

	names := make([]string, 0, len(themes))
	for t := range themes {
		names = append(names, t)
	}
	sort.Slice(names, func(i, j int) bool {
		if themes[names[i]] != themes[names[j]] {
			return themes[names[i]] > themes[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > maxThemes {
		names = names[:maxThemes]
	}
	a.CommonThemes = append(a.CommonThemes, names...)
	a.trend = moodTrend(entries)
	return a
}

// moodTrend сравнивает средний балл первой и второй половины периода:
// 1 означает улучшение, -1 ухудшение, 0 без изменений или мало данных.
func moodTrend(entries []model.DiaryEntry) int {
	var scores []float64
	for _, e := range entries {
		if s, ok := moodScore[e.Mood]; ok {
			scores = append(scores, s)
		}
	}
	if len(scores) < 4 {
		return 0
	}
	half := len(scores) / 2
	diff := avg(scores[half:]) - avg(scores[:half])
	switch {
	case diff >= 0.5:
		return 1
	case diff <= -0.5:
		return -1
	}
	return 0
}

var moodScore = map[string]float64{
	model.MoodGreat: 5, model.MoodGood: 4, model.MoodNeutral: 3, model.MoodSad: 2, model.MoodVerySad: 1,
}

var moodLabel = map[string]string{
	model.MoodGreat: "excelente", model.MoodGood: "bien", model.MoodNeutral: "neutral",
	model.MoodSad: "triste", model.MoodVerySad: "muy triste",
}

func avg(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}

// Summarizer пишет текстовую сводку анализа. aiGenerated: сводка получена от модели.
type Summarizer interface {
	Summarize(ctx context.Context, a Analysis, entries []model.DiaryEntry) (summary string, aiGenerated bool, err error)
}

// TemplateSummarizer: детерминированная сводка без внешних сервисов.
type TemplateSummarizer struct{}

func (TemplateSummarizer) Summarize(_ context.Context, a Analysis, _ []model.DiaryEntry) (string, bool, error) {
	if a.EntriesCount == 0 {
		return fmt.Sprintf("No hay entradas en los últimos %d días.", a.Days), false, nil
	}
	var sb strings.Builder
	noun := "entradas"
	if a.EntriesCount == 1 {
		noun = "entrada"
	}
	fmt.Fprintf(&sb, "Se registraron %d %s en los últimos %d días.", a.EntriesCount, noun, a.Days)
	if a.dominantMood != "" {
		fmt.Fprintf(&sb, " El estado de ánimo predominante fue %s.", moodLabel[a.dominantMood])
	}
	switch a.trend {
	case 1:
		sb.WriteString(" Se observa una tendencia de mejora.")
	case -1:
		sb.WriteString(" Se observa una tendencia de empeoramiento.")
	}
	if len(a.CommonThemes) > 0 {
		fmt.Fprintf(&sb, " Temas frecuentes: %s.", strings.Join(a.CommonThemes, ", "))
	}
	return sb.String(), false, nil
}
