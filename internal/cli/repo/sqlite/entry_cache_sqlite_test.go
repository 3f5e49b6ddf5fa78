package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, login string) *EntryCacheSQLite {
	t.Helper()
	base := filepath.Join(t.TempDir(), "db")
	r, dbPath, err := OpenForUser(base, login)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Migrate())
	_, err = os.Stat(dbPath)
	require.NoError(t, err, "db file not created")
	return r
}

func entry(id int64, day int, mood model.Mood, content string) model.DiaryEntry {
	return model.DiaryEntry{
		ID:        model.ID(id),
		PatientID: 3,
		Date:      model.Date{Time: time.Date(2025, 3, day, 9, 0, 0, 0, time.UTC)},
		Mood:      mood,
		Content:   content,
		Tags:      model.Tags{"sueño"},
	}
}

func TestOpenForUser_Validation(t *testing.T) {
	_, _, err := OpenForUser(t.TempDir(), "")
	assert.Error(t, err)
	_, _, err = OpenForUser("", "ann@example.com")
	assert.Error(t, err)
}

func TestUserDir_SanitizesLogin(t *testing.T) {
	got := UserDir("/base", "ann+test@mail/../x")
	assert.Equal(t, filepath.Join("/base", "ann_test_mail_.._x"), got)
}

func TestEntryCache_SaveGetRecent(t *testing.T) {
	r := openTemp(t, "ann@example.com")

	list, err := r.RecentEntries(10)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.SaveEntries([]model.DiaryEntry{
		entry(1, 1, model.MoodGood, "primero"),
		entry(2, 5, model.MoodSad, "segundo"),
		{Content: "sin id se ignora"},
	}))

	got, err := r.GetEntry(2)
	require.NoError(t, err)
	assert.Equal(t, "segundo", got.Content)
	assert.Equal(t, model.MoodSad, got.Mood)
	assert.Equal(t, []string{"sueño"}, []string(got.Tags))

	_, err = r.GetEntry(99)
	assert.ErrorIs(t, err, repo.ErrNotCached)

	list, err = r.RecentEntries(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ID(2), list[0].ID, "newest entry first")
	assert.Equal(t, model.ID(1), list[1].ID)
}

func TestEntryCache_UpsertReplacesPayload(t *testing.T) {
	r := openTemp(t, "bob")

	require.NoError(t, r.SaveEntries([]model.DiaryEntry{entry(5, 2, model.MoodNeutral, "v1")}))
	require.NoError(t, r.SaveEntries([]model.DiaryEntry{entry(5, 2, model.MoodGreat, "v2")}))

	got, err := r.GetEntry(5)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, model.MoodGreat, got.Mood)

	list, err := r.RecentEntries(0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEntryCache_PayloadEncryptedAtRest(t *testing.T) {
	base := filepath.Join(t.TempDir(), "db")
	r, _, err := OpenForUser(base, "ann@example.com")
	require.NoError(t, err)
	require.NoError(t, r.Migrate())
	require.NoError(t, r.SaveEntries([]model.DiaryEntry{entry(7, 3, model.MoodSad, "nota clínica confidencial")}))

	var raw string
	require.NoError(t, r.db.Get(&raw, `SELECT payload FROM diary_entries WHERE id = 7`))
	assert.NotContains(t, raw, "confidencial")
	require.NoError(t, r.Close())

	_, err = os.Stat(filepath.Join(UserDir(base, "ann@example.com"), "key.bin"))
	require.NoError(t, err, "key file must live next to the db")

	// повторное открытие читает записи тем же ключом
	r2, _, err := OpenForUser(base, "ann@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r2.Close() })
	got, err := r2.GetEntry(7)
	require.NoError(t, err)
	assert.Equal(t, "nota clínica confidencial", got.Content)
}
