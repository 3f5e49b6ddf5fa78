package diary

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/service"
)

var (
	// ErrInvalidPeriod: период не из {7, 15, 30}.
	ErrInvalidPeriod = errors.New("analysis period must be 7, 15 or 30 days")
	// ErrAnalysisBusy: анализ уже запрошен, кнопки периодов заблокированы.
	ErrAnalysisBusy = errors.New("analysis already in progress")
)

const msgAnalysisFailed = "No se pudo generar el análisis."

// AnalysisCard: карточка недельного анализа одного пациента.
type AnalysisCard struct {
	diary     service.DiaryService
	notifier  notify.Notifier
	patientID model.ID

	mu      sync.Mutex
	loading bool
	days    int
	result  *model.WeeklyAnalysis
}

// NewAnalysisCard создаёт карточку с периодом по умолчанию defaultDays.
func NewAnalysisCard(diary service.DiaryService, n notify.Notifier, patientID model.ID, defaultDays int) *AnalysisCard {
	if n == nil {
		n = &notify.Recorder{}
	}
	if !model.ValidAnalysisPeriod(defaultDays) {
		defaultDays = model.AnalysisPeriods[0]
	}
	return &AnalysisCard{diary: diary, notifier: n, patientID: patientID, days: defaultDays}
}

// Request запрашивает анализ за days дней. Пока запрос выполняется,
// повторные вызовы отклоняются с ErrAnalysisBusy. При ошибке
// карточка остаётся с прежним результатом.
func (c *AnalysisCard) Request(ctx context.Context, days int) (*model.WeeklyAnalysis, error) {
	if !model.ValidAnalysisPeriod(days) {
		notify.Errorf(c.notifier, "Periodo no válido: %d días.", days)
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, days)
	}
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrAnalysisBusy
	}
	c.loading = true
	c.mu.Unlock()

	res, err := c.diary.Analyze(ctx, model.AnalysisRequest{PatientID: c.patientID, Days: days})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		notify.Errorf(c.notifier, "%s", api.UserMessage(err, msgAnalysisFailed))
		return nil, err
	}
	c.result = res
	c.days = days
	return res, nil
}

// PeriodsEnabled сообщает, можно ли нажимать кнопки периодов.
func (c *AnalysisCard) PeriodsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.loading
}

// Current возвращает последний успешный результат и его период.
func (c *AnalysisCard) Current() (*model.WeeklyAnalysis, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.days
}
