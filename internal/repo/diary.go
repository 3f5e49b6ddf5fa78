package repo

import (
	"context"
	"strings"
	"time"

	"PsyDesk/internal/model"

	"gorm.io/gorm"
)

// DiaryQuery: фильтры списка записей. Нулевые поля не фильтруют.
type DiaryQuery struct {
	Scope
	Mood           string
	From, To       time.Time
	Search         string
	IncludePrivate bool
	Pagination
}

// DiaryRepository: доступ к записям дневника.
type DiaryRepository interface {
	Create(ctx context.Context, e *model.DiaryEntry) error
	GetByID(ctx context.Context, id int64) (*model.DiaryEntry, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q DiaryQuery) ([]model.DiaryEntry, int64, error)
	// Between возвращает записи пациента за [from, to] по возрастанию даты.
	Between(ctx context.Context, patientID int64, from, to time.Time, includePrivate bool) ([]model.DiaryEntry, error)
}

type diaryRepo struct {
	db *gorm.DB
}

// NewDiaryRepository создаёт репозиторий записей дневника.
func NewDiaryRepository(db *gorm.DB) DiaryRepository {
	return &diaryRepo{db: db}
}

func (r *diaryRepo) Create(ctx context.Context, e *model.DiaryEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *diaryRepo) GetByID(ctx context.Context, id int64) (*model.DiaryEntry, error) {
	var e model.DiaryEntry
	if err := r.db.WithContext(ctx).Preload("Patient").First(&e, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *diaryRepo) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&model.DiaryEntry{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// likeEscaper экранирует спецсимволы LIKE, чтобы поиск шёл по буквальному тексту.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *diaryRepo) List(ctx context.Context, q DiaryQuery) ([]model.DiaryEntry, int64, error) {
	pg := q.Pagination.Normalize()
	db := q.Scope.apply(r.db.WithContext(ctx).Model(&model.DiaryEntry{}))
	if !q.IncludePrivate {
		db = db.Where("is_private = ?", false)
	}
	if q.Mood != "" {
		db = db.Where("mood = ?", q.Mood)
	}
	if !q.From.IsZero() {
		db = db.Where("date >= ?", q.From)
	}
	if !q.To.IsZero() {
		// включительно: до конца дня
		db = db.Where("date < ?", q.To.AddDate(0, 0, 1))
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\')`, like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.DiaryEntry
	err := db.Preload("Patient").
		Order("date DESC, id DESC").
		Offset(pg.offset()).Limit(pg.PerPage).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *diaryRepo) Between(ctx context.Context, patientID int64, from, to time.Time, includePrivate bool) ([]model.DiaryEntry, error) {
	db := r.db.WithContext(ctx).
		Where("patient_id = ? AND date >= ? AND date < ?", patientID, from, to.AddDate(0, 0, 1))
	if !includePrivate {
		db = db.Where("is_private = ?", false)
	}
	var out []model.DiaryEntry
	if err := db.Order("date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
