package diary

import (
	"context"
	"errors"
	"testing"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnalysisCard_ValidPeriodsEchoDays(t *testing.T) {
	d := &mockDiary{}
	c := NewAnalysisCard(d, nil, 4, 7)
	ctx := context.Background()

	for _, days := range model.AnalysisPeriods {
		d.On("Analyze", ctx, model.AnalysisRequest{PatientID: 4, Days: days}).
			Return(&model.WeeklyAnalysis{PatientID: 4, Days: days, Summary: "ok"}, nil).Once()
		res, err := c.Request(ctx, days)
		require.NoError(t, err)
		assert.Equal(t, days, res.Days)
		_, cur := c.Current()
		assert.Equal(t, days, cur)
	}
	d.AssertExpectations(t)
}

func TestAnalysisCard_InvalidPeriodNoRequest(t *testing.T) {
	d := &mockDiary{}
	rec := &notify.Recorder{}
	c := NewAnalysisCard(d, rec, 4, 99)

	_, days := c.Current()
	assert.Equal(t, 7, days, "invalid default falls back to the first period")

	for _, days := range []int{0, 8, 14, 31, -7} {
		_, err := c.Request(context.Background(), days)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
	d.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	assert.Len(t, rec.All(), 5)
}

func TestAnalysisCard_BusyDisablesAllPeriods(t *testing.T) {
	d := &mockDiary{}
	c := NewAnalysisCard(d, nil, 4, 7)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	d.On("Analyze", ctx, model.AnalysisRequest{PatientID: 4, Days: 7}).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&model.WeeklyAnalysis{Days: 7}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := c.Request(ctx, 7)
		done <- err
	}()
	<-started

	assert.False(t, c.PeriodsEnabled())
	for _, days := range model.AnalysisPeriods {
		_, err := c.Request(ctx, days)
		assert.ErrorIs(t, err, ErrAnalysisBusy)
	}

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.PeriodsEnabled())
	d.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestAnalysisCard_FailureRevertsToPreviousDisplay(t *testing.T) {
	d := &mockDiary{}
	rec := &notify.Recorder{}
	c := NewAnalysisCard(d, rec, 4, 7)
	ctx := context.Background()

	prev := &model.WeeklyAnalysis{Days: 7, Summary: "semana tranquila"}
	d.On("Analyze", ctx, model.AnalysisRequest{PatientID: 4, Days: 7}).Return(prev, nil).Once()
	d.On("Analyze", ctx, model.AnalysisRequest{PatientID: 4, Days: 30}).Return(nil, errors.New("timeout")).Once()

	_, err := c.Request(ctx, 7)
	require.NoError(t, err)
	_, err = c.Request(ctx, 30)
	require.Error(t, err)

	res, days := c.Current()
	assert.Same(t, prev, res)
	assert.Equal(t, 7, days)
	assert.True(t, c.PeriodsEnabled())
	last, _ := rec.Last()
	assert.Equal(t, msgAnalysisFailed, last.Message)
}
