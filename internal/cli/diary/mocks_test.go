package diary

import (
	"context"
	"errors"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/service"

	"github.com/stretchr/testify/mock"
)

type mockDiary struct{ mock.Mock }

var _ service.DiaryService = (*mockDiary)(nil)

func (m *mockDiary) List(ctx context.Context, f model.DiaryFilters, perPage int) (*model.Page[model.DiaryEntry], error) {
	args := m.Called(ctx, f, perPage)
	var p *model.Page[model.DiaryEntry]
	if v := args.Get(0); v != nil {
		p = v.(*model.Page[model.DiaryEntry])
	}
	return p, args.Error(1)
}

func (m *mockDiary) Get(ctx context.Context, id model.ID) (*model.DiaryEntry, error) {
	args := m.Called(ctx, id)
	var e *model.DiaryEntry
	if v := args.Get(0); v != nil {
		e = v.(*model.DiaryEntry)
	}
	return e, args.Error(1)
}

func (m *mockDiary) Create(ctx context.Context, e model.NewDiaryEntry) (*model.DiaryEntry, error) {
	args := m.Called(ctx, e)
	var out *model.DiaryEntry
	if v := args.Get(0); v != nil {
		out = v.(*model.DiaryEntry)
	}
	return out, args.Error(1)
}

func (m *mockDiary) Delete(ctx context.Context, id model.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDiary) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.WeeklyAnalysis, error) {
	args := m.Called(ctx, req)
	var out *model.WeeklyAnalysis
	if v := args.Get(0); v != nil {
		out = v.(*model.WeeklyAnalysis)
	}
	return out, args.Error(1)
}

type mockPatients struct{ mock.Mock }

var _ service.PatientService = (*mockPatients)(nil)

func (m *mockPatients) List(ctx context.Context, status string, page, perPage int) (*model.Page[model.Patient], error) {
	args := m.Called(ctx, status, page, perPage)
	var p *model.Page[model.Patient]
	if v := args.Get(0); v != nil {
		p = v.(*model.Page[model.Patient])
	}
	return p, args.Error(1)
}

func (m *mockPatients) Get(ctx context.Context, id model.ID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	var p *model.Patient
	if v := args.Get(0); v != nil {
		p = v.(*model.Patient)
	}
	return p, args.Error(1)
}

func (m *mockPatients) Create(ctx context.Context, p model.NewPatient) (*model.Patient, error) {
	args := m.Called(ctx, p)
	var out *model.Patient
	if v := args.Get(0); v != nil {
		out = v.(*model.Patient)
	}
	return out, args.Error(1)
}

func (m *mockPatients) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type failingCache struct{}

func (failingCache) SaveEntries([]model.DiaryEntry) error { return errors.New("disk full") }
func (failingCache) GetEntry(model.ID) (*model.DiaryEntry, error) {
	return nil, errors.New("disk full")
}
func (failingCache) RecentEntries(int) ([]model.DiaryEntry, error) { return nil, errors.New("disk full") }

func page(current, last, total int, ids ...int64) *model.Page[model.DiaryEntry] {
	p := &model.Page[model.DiaryEntry]{CurrentPage: current, LastPage: last, PerPage: 10, Total: total}
	for _, id := range ids {
		p.Data = append(p.Data, model.DiaryEntry{ID: model.ID(id), Content: "e"})
	}
	return p
}
