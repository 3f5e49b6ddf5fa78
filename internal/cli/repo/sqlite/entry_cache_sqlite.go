package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"PsyDesk/internal/cli/crypto"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/repo"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// EntryCacheSQLite: локальный кэш записей дневника (SQLite на пользователя).
// Тело записи хранится зашифрованным ключом пользователя (key.bin рядом с БД).
type EntryCacheSQLite struct {
	db  *sqlx.DB
	key []byte
}

var _ repo.EntryCache = (*EntryCacheSQLite)(nil)

type entryRow struct {
	ID        int64  `db:"id"`
	PatientID int64  `db:"patient_id"`
	Mood      string `db:"mood"`
	EntryDate string `db:"entry_date"`
	CachedAt  int64  `db:"cached_at"`
	Payload   string `db:"payload"`
}

var unsafeRe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// UserDir возвращает каталог кэша пользователя внутри base. Email приводится
// к безопасному имени каталога.
func UserDir(base, login string) string {
	return filepath.Join(base, unsafeRe.ReplaceAllString(login, "_"))
}

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного логина
// и возвращает кэш. Вторым значением возвращается путь к БД.
func OpenForUser(base, login string) (*EntryCacheSQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if base == "" {
		return nil, "", errors.New("empty client db path")
	}
	dir := UserDir(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	key, err := crypto.LoadOrCreateKey(dir)
	if err != nil {
		return nil, "", fmt.Errorf("load cache key: %w", err)
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &EntryCacheSQLite{db: db, key: key}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *EntryCacheSQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *EntryCacheSQLite) Migrate() error {
	return applyMigrations(r.db)
}

func (r *EntryCacheSQLite) SaveEntries(entries []model.DiaryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, e := range entries {
		if e.ID == 0 {
			continue
		}
		plain, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d: %w", e.ID, err)
		}
		payload, err := crypto.Seal(plain, r.key)
		if err != nil {
			return fmt.Errorf("encrypt entry %d: %w", e.ID, err)
		}
		row := entryRow{
			ID:        int64(e.ID),
			PatientID: int64(e.PatientID),
			Mood:      string(e.Mood),
			CachedAt:  now,
			Payload:   payload,
		}
		if !e.Date.IsZero() {
			row.EntryDate = e.Date.UTC().Format(time.RFC3339)
		}
		_, err = tx.NamedExec(`INSERT INTO diary_entries(id, patient_id, mood, entry_date, cached_at, payload)
			VALUES(:id, :patient_id, :mood, :entry_date, :cached_at, :payload)
			ON CONFLICT(id) DO UPDATE SET
				patient_id = excluded.patient_id,
				mood       = excluded.mood,
				entry_date = excluded.entry_date,
				cached_at  = excluded.cached_at,
				payload    = excluded.payload`, row)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *EntryCacheSQLite) GetEntry(id model.ID) (*model.DiaryEntry, error) {
	var row entryRow
	err := r.db.Get(&row, `SELECT id, patient_id, mood, entry_date, cached_at, payload FROM diary_entries WHERE id = ?`, int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotCached
		}
		return nil, err
	}
	return r.decodeRow(row)
}

func (r *EntryCacheSQLite) RecentEntries(limit int) ([]model.DiaryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []entryRow
	err := r.db.Select(&rows, `SELECT id, patient_id, mood, entry_date, cached_at, payload
		FROM diary_entries ORDER BY entry_date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.DiaryEntry, 0, len(rows))
	for _, row := range rows {
		e, err := r.decodeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *EntryCacheSQLite) decodeRow(row entryRow) (*model.DiaryEntry, error) {
	plain, err := crypto.Open(row.Payload, r.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt cached entry %d: %w", row.ID, err)
	}
	var e model.DiaryEntry
	if err := json.Unmarshal(plain, &e); err != nil {
		return nil, fmt.Errorf("decode cached entry %d: %w", row.ID, err)
	}
	return &e, nil
}
