package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

// PaymentService работает с оплатами и скачивает квитанции.
type PaymentService interface {
	List(ctx context.Context, patientID model.ID) ([]model.Payment, error)
	Create(ctx context.Context, p model.NewPayment) (*model.Payment, error)
	// Receipt скачивает PDF квитанции.
	Receipt(ctx context.Context, id model.ID) (*model.Document, error)
}

type paymentHTTP struct {
	c *api.Client
}

// NewPaymentService конструктор сервиса оплат
func NewPaymentService(c *api.Client) PaymentService {
	return &paymentHTTP{c: c}
}

func (s *paymentHTTP) List(ctx context.Context, patientID model.ID) ([]model.Payment, error) {
	q := url.Values{}
	if patientID != 0 {
		q.Set("patient_id", patientID.String())
	}
	var out model.Page[model.Payment]
	if err := s.c.GetJSON(ctx, "/api/payments", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *paymentHTTP) Create(ctx context.Context, p model.NewPayment) (*model.Payment, error) {
	if p.PatientID == 0 {
		return nil, errors.New("patient is required")
	}
	if p.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	var out model.Payment
	if err := s.c.PostJSON(ctx, "/api/payments", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *paymentHTTP) Receipt(ctx context.Context, id model.ID) (*model.Document, error) {
	return s.c.Download(ctx, fmt.Sprintf("/api/payments/%d/receipt", id), fmt.Sprintf("recibo-%d.pdf", id))
}
