package model

import "time"

// Настроения записи дневника.
const (
	MoodGreat   = "great"
	MoodGood    = "good"
	MoodNeutral = "neutral"
	MoodSad     = "sad"
	MoodVerySad = "very-sad"
)

// Moods: допустимые настроения в порядке от лучшего к худшему.
var Moods = []string{MoodGreat, MoodGood, MoodNeutral, MoodSad, MoodVerySad}

// ValidMood проверяет настроение.
func ValidMood(m string) bool {
	for _, v := range Moods {
		if v == m {
			return true
		}
	}
	return false
}

// DiaryEntry: запись эмоционального дневника пациента.
// Tags хранится JSON-строкой с массивом и в таком виде уходит клиенту.
type DiaryEntry struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	PatientID int64 `gorm:"not null;index" json:"patient_id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`

	Patient *Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"patient,omitempty"`

	Date      time.Time `gorm:"not null;index" json:"-"`
	Mood      string    `gorm:"not null;default:neutral;index" json:"mood"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Tags      string    `gorm:"type:text;not null;default:'[]'" json:"tags"`
	IsPrivate bool      `gorm:"not null;default:false" json:"is_private"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
