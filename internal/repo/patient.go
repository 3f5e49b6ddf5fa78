package repo

import (
	"context"

	"PsyDesk/internal/model"

	"gorm.io/gorm"
)

// PatientRepository хранит карточки пациентов.
type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	GetByID(ctx context.Context, id int64) (*model.Patient, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
	// FindUnlinkedByEmail ищет карточку, заведённую психологом, ещё без аккаунта.
	FindUnlinkedByEmail(ctx context.Context, email string) (*model.Patient, error)
	LinkUser(ctx context.Context, patientID, userID int64) error
	List(ctx context.Context, psychologistID int64, status string, pg Pagination) ([]model.Patient, int64, error)
	CountByStatus(ctx context.Context, psychologistID int64, status string) (int64, error)
}

type patientRepo struct {
	db *gorm.DB
}

// NewPatientRepository создаёт репозиторий пациентов.
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepo{db: db}
}

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *patientRepo) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *patientRepo) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *patientRepo) FindUnlinkedByEmail(ctx context.Context, email string) (*model.Patient, error) {
	var p model.Patient
	err := r.db.WithContext(ctx).
		Where("email = ? AND user_id IS NULL", email).
		Order("id").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *patientRepo) LinkUser(ctx context.Context, patientID, userID int64) error {
	tx := r.db.WithContext(ctx).Model(&model.Patient{}).Where("id = ?", patientID).Update("user_id", userID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepo) List(ctx context.Context, psychologistID int64, status string, pg Pagination) ([]model.Patient, int64, error) {
	pg = pg.Normalize()
	q := r.db.WithContext(ctx).Model(&model.Patient{}).Where("psychologist_id = ?", psychologistID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.Patient
	if err := q.Order("name ASC, id ASC").Offset(pg.offset()).Limit(pg.PerPage).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *patientRepo) CountByStatus(ctx context.Context, psychologistID int64, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Patient{}).
		Where("psychologist_id = ? AND status = ?", psychologistID, status).
		Count(&n).Error
	return n, err
}
