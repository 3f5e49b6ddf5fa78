package repo

import (
	"context"
	"time"

	"PsyDesk/internal/model"

	"gorm.io/gorm"
)

// SessionQuery: фильтры списка консультаций.
type SessionQuery struct {
	Scope
	Status   string
	From, To time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, q SessionQuery) ([]model.Session, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	SetReceipt(ctx context.Context, id int64, documentID string) error
	List(ctx context.Context, s Scope) ([]model.Payment, error)
}

type ContractRepository interface {
	Create(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, id int64) (*model.Contract, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	List(ctx context.Context, s Scope) ([]model.Contract, error)
}

// QuizRepository хранит назначения опросников.
type QuizRepository interface {
	Create(ctx context.Context, a *model.QuizAssignment) error
	List(ctx context.Context, s Scope) ([]model.QuizAssignment, error)
}

type sessionRepo struct{ db *gorm.DB }

// NewSessionRepository создаёт репозиторий консультаций.
func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	var s model.Session
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tx := r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context, q SessionQuery) ([]model.Session, error) {
	db := q.Scope.apply(r.db.WithContext(ctx).Model(&model.Session{}))
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if !q.From.IsZero() {
		db = db.Where("starts_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		db = db.Where("starts_at < ?", q.To.AddDate(0, 0, 1))
	}
	var out []model.Session
	if err := db.Order("starts_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type paymentRepo struct{ db *gorm.DB }

// NewPaymentRepository создаёт репозиторий оплат.
func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *paymentRepo) SetReceipt(ctx context.Context, id int64, documentID string) error {
	tx := r.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", id).Update("receipt_id", documentID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *paymentRepo) List(ctx context.Context, s Scope) ([]model.Payment, error) {
	var out []model.Payment
	err := s.apply(r.db.WithContext(ctx).Model(&model.Payment{})).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

type contractRepo struct{ db *gorm.DB }

// NewContractRepository создаёт репозиторий договоров.
func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) Create(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contractRepo) GetByID(ctx context.Context, id int64) (*model.Contract, error) {
	var c model.Contract
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *contractRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contractRepo) List(ctx context.Context, s Scope) ([]model.Contract, error) {
	var out []model.Contract
	err := s.apply(r.db.WithContext(ctx).Model(&model.Contract{})).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

type quizRepo struct{ db *gorm.DB }

// NewQuizRepository создаёт репозиторий назначений опросников.
func NewQuizRepository(db *gorm.DB) QuizRepository { return &quizRepo{db: db} }

func (r *quizRepo) Create(ctx context.Context, a *model.QuizAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *quizRepo) List(ctx context.Context, s Scope) ([]model.QuizAssignment, error) {
	var out []model.QuizAssignment
	err := s.apply(r.db.WithContext(ctx).Model(&model.QuizAssignment{})).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
