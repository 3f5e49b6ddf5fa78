package model

import (
	"encoding/json"
	"strings"
)

// Mood: настроение записи дневника. Пустое значение означает «не задано».
type Mood string

const (
	MoodGreat   Mood = "great"
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodVerySad Mood = "very-sad"
)

// Moods перечисляет настроения в порядке отображения (от лучшего к худшему).
var Moods = []Mood{MoodGreat, MoodGood, MoodNeutral, MoodSad, MoodVerySad}

// Valid сообщает, является ли m одним из пяти допустимых значений.
func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodGood, MoodNeutral, MoodSad, MoodVerySad:
		return true
	}
	return false
}

// ParseMood нормализует строку настроения. Второе значение false, если строка не распознана.
func ParseMood(s string) (Mood, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	m := Mood(s)
	if m.Valid() {
		return m, true
	}
	return "", false
}

// UnmarshalJSON нормализует настроение на границе разбора: нераспознанные
// значения (и не-строки) превращаются в пустое настроение без ошибки.
func (m *Mood) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*m = ""
		return nil
	}
	*m, _ = ParseMood(s)
	return nil
}
