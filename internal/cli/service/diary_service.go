package service

import (
	"context"
	"fmt"
	"strconv"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

// DiaryService: эндпоинты эмоционального дневника.
type DiaryService interface {
	// List возвращает страницу записей с учётом фильтров.
	List(ctx context.Context, f model.DiaryFilters, perPage int) (*model.Page[model.DiaryEntry], error)
	Get(ctx context.Context, id model.ID) (*model.DiaryEntry, error)
	Create(ctx context.Context, e model.NewDiaryEntry) (*model.DiaryEntry, error)
	Delete(ctx context.Context, id model.ID) error
	// Analyze запрашивает агрегированный анализ за период.
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.WeeklyAnalysis, error)
}

type diaryHTTP struct {
	c *api.Client
}

// NewDiaryService конструктор сервиса дневника
func NewDiaryService(c *api.Client) DiaryService {
	return &diaryHTTP{c: c}
}

func (s *diaryHTTP) List(ctx context.Context, f model.DiaryFilters, perPage int) (*model.Page[model.DiaryEntry], error) {
	q := f.Query()
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var page model.Page[model.DiaryEntry]
	if err := s.c.GetJSON(ctx, "/api/diary", q, &page); err != nil {
		return nil, err
	}
	page.Normalize()
	return &page, nil
}

func (s *diaryHTTP) Get(ctx context.Context, id model.ID) (*model.DiaryEntry, error) {
	var e model.DiaryEntry
	if err := s.c.GetJSON(ctx, fmt.Sprintf("/api/diary/%d", id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *diaryHTTP) Create(ctx context.Context, e model.NewDiaryEntry) (*model.DiaryEntry, error) {
	var out model.DiaryEntry
	if err := s.c.PostJSON(ctx, "/api/diary", e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *diaryHTTP) Delete(ctx context.Context, id model.ID) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/diary/%d", id))
}

func (s *diaryHTTP) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.WeeklyAnalysis, error) {
	var out model.WeeklyAnalysis
	if err := s.c.PostJSON(ctx, "/api/diary/analysis", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
