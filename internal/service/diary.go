package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"

	"go.uber.org/zap"
)

const titleMaxRunes = 60

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

type DiaryFilter struct {
	PatientID int64
	Mood      string
	From, To  time.Time
	Search    string
	Page      int
	PerPage   int
}

// NewEntry: данные новой записи от пациента.
type NewEntry struct {
	Content   string
	Mood      string
	IsPrivate bool
}

// DiaryService: записи дневника и недельный анализ.
type DiaryService struct {
	diary      repo.DiaryRepository
	profiles   *Profiles
	summarizer Summarizer
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewDiaryService(d repo.DiaryRepository, profiles *Profiles, s Summarizer, logger *zap.SugaredLogger) *DiaryService {
	if s == nil {
		s = TemplateSummarizer{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DiaryService{diary: d, profiles: profiles, summarizer: s, logger: logger, now: time.Now}
}

// NormalizeMood приводит настроение к каноническому виду; very_sad → very-sad.
// Пустая строка допустима и означает «не задано».
func NormalizeMood(m string) (string, error) {
	m = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m)), "_", "-")
	if m == "" || model.ValidMood(m) {
		return m, nil
	}
	return "", invalid("mood", "Estado de ánimo no válido")
}

// List возвращает страницу записей. Психолог видит неприватные записи своих пациентов,
// пациент: все свои.
func (s *DiaryService) List(ctx context.Context, a Actor, f DiaryFilter) (Page[model.DiaryEntry], error) {
	mood, err := NormalizeMood(f.Mood)
	if err != nil {
		return Page[model.DiaryEntry]{}, err
	}
	scope, err := s.profiles.narrow(ctx, a, f.PatientID)
	if err != nil {
		return Page[model.DiaryEntry]{}, err
	}
	pg := repo.Pagination{Page: f.Page, PerPage: f.PerPage}.Normalize()
	entries, total, err := s.diary.List(ctx, repo.DiaryQuery{
		Scope:          scope,
		Mood:           mood,
		From:           f.From,
		To:             f.To,
		Search:         f.Search,
		IncludePrivate: !a.IsPsychologist(),
		Pagination:     pg,
	})
	if err != nil {
		return Page[model.DiaryEntry]{}, err
	}
	return newPage(entries, pg.Page, pg.PerPage, total), nil
}

// Create сохраняет запись пациента. Заголовок, дата и теги назначаются здесь.
func (s *DiaryService) Create(ctx context.Context, a Actor, in NewEntry) (*model.DiaryEntry, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, invalid("content", "El contenido es obligatorio")
	}
	mood, err := NormalizeMood(in.Mood)
	if err != nil {
		return nil, err
	}
	if mood == "" {
		mood = model.MoodNeutral
	}
	card, err := s.profiles.PatientFor(ctx, a)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(ExtractTags(content))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e := &model.DiaryEntry{
		PatientID: card.ID,
		UserID:    a.UserID,
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Mood:      mood,
		Title:     InferTitle(content),
		Content:   content,
		Tags:      string(tags),
		IsPrivate: in.IsPrivate,
	}
	if err := s.diary.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Patient = card
	return e, nil
}

// Get возвращает запись, если она видна пользователю.
func (s *DiaryService) Get(ctx context.Context, a Actor, id int64) (*model.DiaryEntry, error) {
	e, err := s.diary.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, a, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete удаляет запись, видимую пользователю.
func (s *DiaryService) Delete(ctx context.Context, a Actor, id int64) error {
	if _, err := s.Get(ctx, a, id); err != nil {
		return err
	}
	return s.diary.Delete(ctx, id)
}

func (s *DiaryService) checkAccess(ctx context.Context, a Actor, e *model.DiaryEntry) error {
	if a.IsPsychologist() {
		// приватные записи психологу не показываются
		if e.IsPrivate || e.Patient == nil || e.Patient.PsychologistID != a.UserID {
			return repo.ErrNotFound
		}
		return nil
	}
	card, err := s.profiles.PatientFor(ctx, a)
	if err != nil {
		return err
	}
	if e.PatientID != card.ID {
		return repo.ErrNotFound
	}
	return nil
}

// Analyze агрегирует записи пациента за последние days дней (включая сегодня).
func (s *DiaryService) Analyze(ctx context.Context, a Actor, patientID int64, days int) (*Analysis, error) {
	if !a.IsPsychologist() {
		return nil, ErrForbidden
	}
	if !ValidPeriod(days) {
		return nil, invalid("days", "El periodo debe ser de 7, 15 o 30 días")
	}
	if _, err := s.profiles.Patient(ctx, a, patientID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(days - 1))

	entries, err := s.diary.Between(ctx, patientID, from, to, false)
	if err != nil {
		return nil, err
	}
	res := Aggregate(patientID, days, from, to, entries)
	summary, ai, err := s.summarizer.Summarize(ctx, res, entries)
	if err != nil {
		s.logger.Warnw("analysis summarizer failed, using template", "patient_id", patientID, "error", err)
		summary, ai, _ = TemplateSummarizer{}.Summarize(ctx, res, entries)
	}
	res.Summary = summary
	res.AIGenerated = ai
	return &res, nil
}

// InferTitle берёт первую непустую строку текста и обрезает её по границе слова.
func InferTitle(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if utf8.RuneCountInString(line) <= titleMaxRunes {
		return line
	}
	r := []rune(line)[:titleMaxRunes]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > titleMaxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

// ExtractTags собирает хэштеги (#trabajo) в нижнем регистре без повторов.
func ExtractTags(content string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, m := range hashtagRe.FindAllStringSubmatch(content, -1) {
		t := strings.ToLower(m[1])
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}
