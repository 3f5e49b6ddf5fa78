// Package storage хранит бинарные документы (квитанции, договоры):
// в БД рядом с метаданными или в S3-совместимом хранилище.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PsyDesk/internal/config"
	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"

	"github.com/google/uuid"
)

// ErrNotFound: документа нет.
var ErrNotFound = errors.New("document not found")

// Store сохраняет и отдаёт документы.
type Store interface {
	Put(ctx context.Context, fileName, contentType string, data []byte) (*model.Document, error)
	Get(ctx context.Context, id string) (*model.Document, []byte, error)
}

// New выбирает хранилище: S3, если задан бакет, иначе БД.
func New(ctx context.Context, cfg *config.Config, docs repo.DocumentRepository) (Store, error) {
	if cfg.S3Bucket == "" {
		return NewDBStore(docs), nil
	}
	return NewS3Store(ctx, cfg, docs)
}

// DBStore держит содержимое в таблице documents.
type DBStore struct {
	docs repo.DocumentRepository
}

func NewDBStore(docs repo.DocumentRepository) *DBStore {
	return &DBStore{docs: docs}
}

func (s *DBStore) Put(ctx context.Context, fileName, contentType string, data []byte) (*model.Document, error) {
	doc := newDocument(fileName, contentType, data)
	doc.Data = data
	if _, err := s.docs.CreateIfAbsent(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, nil
}

func (s *DBStore) Get(ctx context.Context, id string) (*model.Document, []byte, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, lookupErr(err)
	}
	return doc, doc.Data, nil
}

func newDocument(fileName, contentType string, data []byte) *model.Document {
	return &model.Document{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
}

// storageKey раскладывает объекты по датам: documents/2025/3/14/<uuid>.
func storageKey(id string) string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%d/%d/%s", d.Year(), d.Month(), d.Day(), id)
}

func lookupErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
