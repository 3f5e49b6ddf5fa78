package model

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DiaryEntry: запись эмоционального дневника пациента.
// Настроение, заголовок и теги могут назначаться сервером.
type DiaryEntry struct {
	ID        ID          `json:"id"`
	PatientID ID          `json:"patient_id"`
	UserID    ID          `json:"user_id"`
	Date      Date        `json:"date"`
	Mood      Mood        `json:"mood"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Tags      Tags        `json:"tags"`
	IsPrivate Flag        `json:"is_private"`
	CreatedAt Date        `json:"created_at"`
	UpdatedAt Date        `json:"updated_at"`
	Patient   *PatientRef `json:"patient,omitempty"`
}

// PatientRef: краткая ссылка на пациента внутри записи (клиническое представление).
type PatientRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Tags: список тегов записи. Бэкенд отдаёт его то массивом, то JSON-строкой
// с массивом внутри; всё приводится к []string здесь, один раз.
type Tags []string

// UnmarshalJSON принимает массив, строку с JSON-массивом или null.
// Некорректный JSON внутри строки даёт пустой список без ошибки.
func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = nil
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		*t = decodeTagArray(b)
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") {
			*t = decodeTagArray([]byte(s))
		}
	}
	return nil
}

// decodeTagArray оставляет только непустые строковые элементы массива.
func decodeTagArray(b []byte) Tags {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	out := make(Tags, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Flag: булево поле, которое приходит как true/false, 0/1 или "0"/"1".
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// NewDiaryEntry: тело запроса на создание записи. Заголовок и дату назначает сервер.
type NewDiaryEntry struct {
	Content   string `json:"content"`
	Mood      Mood   `json:"mood,omitempty"`
	IsPrivate *bool  `json:"is_private,omitempty"`
}

// DiaryFilters: набор фильтров списка записей. Все поля необязательны.
type DiaryFilters struct {
	PatientID ID
	Mood      Mood
	DateFrom  time.Time
	DateTo    time.Time
	Search    string
	Page      int
}

// Active сообщает, задан ли хотя бы один фильтр (номер страницы не считается).
func (f DiaryFilters) Active() bool {
	return f.PatientID != 0 || f.Mood != "" || !f.DateFrom.IsZero() || !f.DateTo.IsZero() ||
		strings.TrimSpace(f.Search) != ""
}

// Query сериализует фильтры в параметры запроса; пустые поля опускаются.
func (f DiaryFilters) Query() url.Values {
	q := url.Values{}
	if f.PatientID != 0 {
		q.Set("patient_id", f.PatientID.String())
	}
	if f.Mood != "" {
		q.Set("mood", string(f.Mood))
	}
	if !f.DateFrom.IsZero() {
		q.Set("date_from", f.DateFrom.Format(time.DateOnly))
	}
	if !f.DateTo.IsZero() {
		q.Set("date_to", f.DateTo.Format(time.DateOnly))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}
