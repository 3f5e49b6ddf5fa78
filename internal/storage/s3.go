package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"PsyDesk/internal/config"
	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store кладёт содержимое в бакет S3/MinIO, метаданные: в БД.
type S3Store struct {
	client *s3.Client
	bucket string
	docs   repo.DocumentRepository
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Store создаёт клиента S3. При заданном S3_ENDPOINT используется path-style адресация (MinIO).
func NewS3Store(ctx context.Context, cfg *config.Config, docs repo.DocumentRepository) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &S3Store{client: client, bucket: cfg.S3Bucket, docs: docs}, nil
}

func (s *S3Store) Put(ctx context.Context, fileName, contentType string, data []byte) (*model.Document, error) {
	doc := newDocument(fileName, contentType, data)
	doc.StorageKey = storageKey(doc.ID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(doc.StorageKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", doc.StorageKey, err)
	}
	if _, err := s.docs.CreateIfAbsent(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, nil
}

func (s *S3Store) Get(ctx context.Context, id string) (*model.Document, []byte, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, lookupErr(err)
	}
	// документ мог быть сохранён в БД до включения S3
	if doc.StorageKey == "" {
		return doc, doc.Data, nil
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(doc.StorageKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("downloading %s: %w", doc.StorageKey, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", doc.StorageKey, err)
	}
	return doc, data, nil
}
