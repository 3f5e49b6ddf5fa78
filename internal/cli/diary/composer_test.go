package diary

import (
	"context"
	"testing"
	"time"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestComposer_EmptyContentNoRequest(t *testing.T) {
	d := &mockDiary{}
	rec := &notify.Recorder{}
	c := NewComposer(d, nil, rec)

	for _, content := range []string{"", "   ", "\n\t"} {
		c.SetContent(content)
		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrEmptyContent)
	}
	d.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Kind)
	assert.Equal(t, msgEmptyContent, last.Message)
}

func TestComposer_SuccessResetsFormAndReloadsList(t *testing.T) {
	d := &mockDiary{}
	rec := &notify.Recorder{}
	b := NewBrowser(BrowserDeps{Diary: d, Notifier: rec, PerPage: 10})
	c := NewComposer(d, b, rec)
	ctx := context.Background()

	c.SetContent("  Hoy dormí mejor  ")
	require.NoError(t, c.SetMood("very_sad"))
	c.SetPrivate(true)

	priv := true
	d.On("Create", ctx, model.NewDiaryEntry{Content: "Hoy dormí mejor", Mood: model.MoodVerySad, IsPrivate: &priv}).
		Return(&model.DiaryEntry{ID: 50, Content: "Hoy dormí mejor"}, nil).Once()
	d.On("List", ctx, model.DiaryFilters{Page: 1}, 10).Return(page(1, 1, 1, 50), nil).Once()

	e, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ID(50), e.ID)
	assert.Equal(t, Draft{}, c.Draft(), "form reset after success")

	st := b.Snapshot()
	require.Len(t, st.Entries, 1, "list reloaded from server")
	assert.Equal(t, model.ID(50), st.Entries[0].ID)

	toasts := rec.All()
	require.NotEmpty(t, toasts)
	assert.Equal(t, notify.Success, toasts[0].Kind)
	d.AssertExpectations(t)
}

func TestComposer_FailurePreservesForm(t *testing.T) {
	d := &mockDiary{}
	rec := &notify.Recorder{}
	c := NewComposer(d, nil, rec)

	c.SetContent("texto")
	d.On("Create", mock.Anything, mock.Anything).Return(nil, &api.Error{Status: 422, Message: "El contenido es demasiado largo"}).Once()

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "texto", c.Draft().Content)
	last, _ := rec.Last()
	assert.Equal(t, "El contenido es demasiado largo", last.Message)
}

func TestComposer_SetMoodValidation(t *testing.T) {
	c := NewComposer(&mockDiary{}, nil, nil)
	assert.Error(t, c.SetMood("furioso"))
	require.NoError(t, c.SetMood("good"))
	assert.Equal(t, model.MoodGood, c.Draft().Mood)
	require.NoError(t, c.SetMood(""))
	assert.Equal(t, model.Mood(""), c.Draft().Mood)
}

func TestComposer_TodayLabel(t *testing.T) {
	c := NewComposer(&mockDiary{}, nil, nil)
	c.now = func() time.Time { return time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, "lunes, 3 de marzo de 2025", c.TodayLabel())
}
