package repo

import (
	"errors"
	"fmt"
	"strings"

	"PsyDesk/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrNotFound: запись не найдена (или недоступна вызывающему).
var ErrNotFound = errors.New("not found")

// InitDB открывает БД по DSN. Для postgres://… или host=… это PostgreSQL,
// иначе путь к файлу SQLite (драйвер modernc.org/sqlite). Выполняет миграции.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN(dsn)}
}

// sqliteDSN включает внешние ключи: без них не работают каскадные удаления.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Migrate создаёт/обновляет схему для всех серверных моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Patient{},
		&model.DiaryEntry{},
		&model.Session{},
		&model.Payment{},
		&model.Contract{},
		&model.QuizAssignment{},
		&model.Document{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// notFound приводит gorm.ErrRecordNotFound к ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Scope ограничивает выборку данными одного психолога или одного пациента.
// Пустой Scope не ограничивает ничего.
type Scope struct {
	PsychologistID int64
	PatientID      int64
}

func (s Scope) apply(db *gorm.DB) *gorm.DB {
	if s.PatientID != 0 {
		db = db.Where("patient_id = ?", s.PatientID)
	}
	if s.PsychologistID != 0 {
		db = db.Where("patient_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&model.Patient{}).Select("id").Where("psychologist_id = ?", s.PsychologistID))
	}
	return db
}

// Pagination: номер страницы (с 1) и размер.
type Pagination struct {
	Page    int
	PerPage int
}

// Normalize подставляет значения по умолчанию и ограничивает размер страницы.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 10
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
	return p
}

func (p Pagination) offset() int { return (p.Page - 1) * p.PerPage }
