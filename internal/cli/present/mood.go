package present

import (
	"PsyDesk/internal/cli/model"

	"github.com/charmbracelet/lipgloss"
)

// MoodStyle задаёт, как отображается настроение.
type MoodStyle struct {
	Icon  string
	Label string
	Color lipgloss.Color
}

var moodTable = map[model.Mood]MoodStyle{
	model.MoodGreat:   {Icon: "😄", Label: "Excelente", Color: "#22C55E"},
	model.MoodGood:    {Icon: "🙂", Label: "Bien", Color: "#84CC16"},
	model.MoodNeutral: {Icon: "😐", Label: "Neutral", Color: "#EAB308"},
	model.MoodSad:     {Icon: "😢", Label: "Triste", Color: "#F97316"},
	model.MoodVerySad: {Icon: "😭", Label: "Muy triste", Color: "#EF4444"},
}

var unknownMood = MoodStyle{Icon: "❔", Label: "Desconocido", Color: "#9CA3AF"}

// MoodFor возвращает стиль настроения; пустое или неизвестное: «Desconocido».
func MoodFor(m model.Mood) MoodStyle {
	if s, ok := moodTable[m]; ok {
		return s
	}
	return unknownMood
}
