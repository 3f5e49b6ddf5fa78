package repo

import (
	"context"

	"PsyDesk/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository: метаданные (и, для хранения в БД, содержимое) документов.
type DocumentRepository interface {
	// CreateIfAbsent создаёт документ, если записи с таким ID ещё нет.
	// Возвращает created=true, если запись создана этим вызовом.
	CreateIfAbsent(ctx context.Context, doc *model.Document) (created bool, err error)
	GetByID(ctx context.Context, id string) (*model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepository создаёт репозиторий документов.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) CreateIfAbsent(ctx context.Context, doc *model.Document) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(doc)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var d model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}
