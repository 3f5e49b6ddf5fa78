package diary

import (
	"context"
	"errors"
	"sync"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/repo"
	"PsyDesk/internal/cli/service"

	"go.uber.org/zap"
)

// ErrStaleResponse: ответ относится к устаревшей загрузке и отброшен.
var ErrStaleResponse = errors.New("stale diary response discarded")

const (
	msgLoadFailed      = "No se pudieron cargar las entradas del diario."
	msgEmptyNoFilters  = "Aún no hay entradas en el diario."
	msgEmptyWithFilter = "No hay entradas que coincidan con los filtros."
)

// State: снимок состояния списка.
type State struct {
	Entries        []model.DiaryEntry
	Filters        model.DiaryFilters
	Page           int
	LastPage       int
	Total          int
	Loading        bool
	ActivePatients int
}

// BrowserDeps: зависимости Browser. Patients, Cache и Logger необязательны.
type BrowserDeps struct {
	Diary    service.DiaryService
	Patients service.PatientService
	Notifier notify.Notifier
	Cache    repo.EntryCache
	Logger   *zap.SugaredLogger
	PerPage  int
}

// Browser держит список записей дневника для психолога вместе с фильтрами и пагинацией.
//
// Каждая загрузка получает номер поколения; ответ старого поколения
// отбрасывается и состояние не меняет.
type Browser struct {
	diary    service.DiaryService
	patients service.PatientService
	notifier notify.Notifier
	cache    repo.EntryCache
	logger   *zap.SugaredLogger
	perPage  int

	mu             sync.Mutex
	gen            uint64
	loading        bool
	entries        []model.DiaryEntry
	filters        model.DiaryFilters
	page           int
	lastPage       int
	total          int
	activePatients int
}

// NewBrowser создаёт Browser в начальном состоянии (страница 1 из 1).
func NewBrowser(d BrowserDeps) *Browser {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Notifier == nil {
		d.Notifier = &notify.Recorder{}
	}
	return &Browser{
		diary:    d.Diary,
		patients: d.Patients,
		notifier: d.Notifier,
		cache:    d.Cache,
		logger:   d.Logger,
		perPage:  d.PerPage,
		page:     1,
		lastPage: 1,
	}
}

// LoadEntries загружает страница f.Page (0: первая) с фильтрами f одним запросом.
// При успехе записи, страница, число страниц и total заменяются вместе.
// При ошибке прежние записи сохраняются, показывается уведомление.
func (b *Browser) LoadEntries(ctx context.Context, f model.DiaryFilters) error {
	if f.Page < 1 {
		f.Page = 1
	}
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.loading = true
	b.filters = f
	b.filters.Page = 0
	b.mu.Unlock()

	page, err := b.diary.List(ctx, f, b.perPage)
	if err == nil && page.Stale() {
		// набор данных сократился: перезапрашиваем последнюю страницу один раз
		f.Page = page.LastPage
		page, err = b.diary.List(ctx, f, b.perPage)
	}

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return ErrStaleResponse
	}
	b.loading = false
	if err != nil {
		b.mu.Unlock()
		notify.Errorf(b.notifier, "%s", api.UserMessage(err, msgLoadFailed))
		return err
	}
	b.entries = page.Data
	b.page = page.CurrentPage
	b.lastPage = page.LastPage
	b.total = page.Total
	b.mu.Unlock()

	b.cacheEntries(page.Data)
	return nil
}

func (b *Browser) cacheEntries(entries []model.DiaryEntry) {
	if b.cache == nil || len(entries) == 0 {
		return
	}
	if err := b.cache.SaveEntries(entries); err != nil {
		b.logger.Warnw("entry cache write failed", "count", len(entries), "error", err)
	}
}

// Next переходит на следующую страницу. На последней странице: без запроса.
func (b *Browser) Next(ctx context.Context) error {
	b.mu.Lock()
	if b.page >= b.lastPage {
		b.mu.Unlock()
		return nil
	}
	f := b.filters
	f.Page = min(b.lastPage, b.page+1)
	b.mu.Unlock()
	return b.LoadEntries(ctx, f)
}

// Prev переходит на предыдущую страницу. На первой странице: без запроса.
func (b *Browser) Prev(ctx context.Context) error {
	b.mu.Lock()
	if b.page <= 1 {
		b.mu.Unlock()
		return nil
	}
	f := b.filters
	f.Page = max(1, b.page-1)
	b.mu.Unlock()
	return b.LoadEntries(ctx, f)
}

// CanNext сообщает, доступна ли кнопка «siguiente».
func (b *Browser) CanNext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page < b.lastPage
}

func (b *Browser) CanPrev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page > 1
}

// ApplyFilters загружает первую страницу с фильтрами f.
func (b *Browser) ApplyFilters(ctx context.Context, f model.DiaryFilters) error {
	f.Page = 1
	return b.LoadEntries(ctx, f)
}

// ClearFilters сбрасывает все фильтры и загружает список без них.
func (b *Browser) ClearFilters(ctx context.Context) error {
	return b.LoadEntries(ctx, model.DiaryFilters{})
}

// Reload перезагружает текущую страницу с текущими фильтрами.
func (b *Browser) Reload(ctx context.Context) error {
	b.mu.Lock()
	f := b.filters
	f.Page = b.page
	b.mu.Unlock()
	return b.LoadEntries(ctx, f)
}

// EmptyMessage возвращает текст пустого списка. Он зависит от того, заданы ли фильтры.
func (b *Browser) EmptyMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.filters.Active() {
		return msgEmptyWithFilter
	}
	return msgEmptyNoFilters
}

// IsLoading возвращает true, пока не завершилась самая новая загрузка.
func (b *Browser) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// LoadPatientStats подгружает число активных пациентов в фоне.
// Ошибка только логируется, прежнее значение сохраняется.
func (b *Browser) LoadPatientStats(ctx context.Context) {
	if b.patients == nil {
		return
	}
	n, err := b.patients.CountActive(ctx)
	if err != nil {
		b.logger.Warnw("patient stats unavailable", "error", err)
		return
	}
	b.mu.Lock()
	b.activePatients = n
	b.mu.Unlock()
}

// Snapshot возвращает копию текущего состояния.
func (b *Browser) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Entries:        append([]model.DiaryEntry(nil), b.entries...),
		Filters:        b.filters,
		Page:           b.page,
		LastPage:       b.lastPage,
		Total:          b.total,
		Loading:        b.loading,
		ActivePatients: b.activePatients,
	}
}
