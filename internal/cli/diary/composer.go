package diary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/present"
	"PsyDesk/internal/cli/service"
)

// ErrEmptyContent: попытка сохранить пустую запись.
var ErrEmptyContent = errors.New("diary entry content is empty")

const (
	msgEmptyContent = "Escribe algo antes de guardar la entrada."
	msgSaved        = "Entrada guardada."
	msgSaveFailed   = "No se pudo guardar la entrada."
)

// Draft: содержимое формы новой записи.
type Draft struct {
	Content   string
	Mood      model.Mood
	IsPrivate *bool
}

// Composer: форма новой записи (представление пациента).
// После сохранения список перезагружается целиком, без оптимистичной вставки.
type Composer struct {
	diary    service.DiaryService
	browser  *Browser
	notifier notify.Notifier
	now      func() time.Time

	mu    sync.Mutex
	draft Draft
}

// NewComposer создаёт форму. browser может быть nil (CLI без списка).
func NewComposer(diary service.DiaryService, browser *Browser, n notify.Notifier) *Composer {
	if n == nil {
		n = &notify.Recorder{}
	}
	return &Composer{diary: diary, browser: browser, notifier: n, now: time.Now}
}

// SetContent задаёт текст.
func (c *Composer) SetContent(s string) {
	c.mu.Lock()
	c.draft.Content = s
	c.mu.Unlock()
}

// SetMood задаёт настроение; пустая строка снимает выбор.
func (c *Composer) SetMood(s string) error {
	var m model.Mood
	if strings.TrimSpace(s) != "" {
		var ok bool
		if m, ok = model.ParseMood(s); !ok {
			return fmt.Errorf("unknown mood %q", s)
		}
	}
	c.mu.Lock()
	c.draft.Mood = m
	c.mu.Unlock()
	return nil
}

// SetPrivate задаёт приватность записи.
func (c *Composer) SetPrivate(v bool) {
	c.mu.Lock()
	c.draft.IsPrivate = &v
	c.mu.Unlock()
}

// Draft возвращает текущее содержимое формы.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// TodayLabel форматирует локальную дату «сегодня» для отображения.
func (c *Composer) TodayLabel() string {
	return present.LongDate(c.now())
}

// Submit сохраняет запись. Пустой текст отклоняется без запроса.
// При успехе форма очищается, а список перезагружается.
func (c *Composer) Submit(ctx context.Context) (*model.DiaryEntry, error) {
	d := c.Draft()
	content := strings.TrimSpace(d.Content)
	if content == "" {
		notify.Errorf(c.notifier, "%s", msgEmptyContent)
		return nil, ErrEmptyContent
	}

	entry, err := c.diary.Create(ctx, model.NewDiaryEntry{
		Content:   content,
		Mood:      d.Mood,
		IsPrivate: d.IsPrivate,
	})
	if err != nil {
		notify.Errorf(c.notifier, "%s", api.UserMessage(err, msgSaveFailed))
		return nil, err
	}

	c.mu.Lock()
	c.draft = Draft{}
	c.mu.Unlock()
	notify.Successf(c.notifier, "%s", msgSaved)

	if c.browser != nil {
		// ошибка перезагрузки уже показана Browser'ом
		_ = c.browser.Reload(ctx)
	}
	return entry, nil
}
