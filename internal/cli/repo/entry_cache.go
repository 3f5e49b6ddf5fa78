package repo

import (
	"errors"

	"PsyDesk/internal/cli/model"
)

// ErrNotCached: записи нет в локальном кэше.
var ErrNotCached = errors.New("entry not cached")

// EntryCache: локальный кэш последних загруженных записей дневника.
type EntryCache interface {
	// SaveEntries добавляет или обновляет записи по id.
	SaveEntries(entries []model.DiaryEntry) error

	// GetEntry возвращает запись по id или ErrNotCached.
	GetEntry(id model.ID) (*model.DiaryEntry, error)

	// RecentEntries возвращает до limit записей, самые свежие первыми.
	RecentEntries(limit int) ([]model.DiaryEntry, error)
}
