package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

type ContractService interface {
	List(ctx context.Context, patientID model.ID) ([]model.Contract, error)
	Create(ctx context.Context, c model.NewContract) (*model.Contract, error)
	Resend(ctx context.Context, id model.ID) (*model.Contract, error)
	Sign(ctx context.Context, id model.ID) (*model.Contract, error)
	Download(ctx context.Context, id model.ID) (*model.Document, error)
}

type contractHTTP struct {
	c *api.Client
}

// NewContractService конструктор сервиса договоров
func NewContractService(c *api.Client) ContractService {
	return &contractHTTP{c: c}
}

func (s *contractHTTP) List(ctx context.Context, patientID model.ID) ([]model.Contract, error) {
	q := url.Values{}
	if patientID != 0 {
		q.Set("patient_id", patientID.String())
	}
	var out model.Page[model.Contract]
	if err := s.c.GetJSON(ctx, "/api/contracts", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *contractHTTP) Create(ctx context.Context, nc model.NewContract) (*model.Contract, error) {
	nc.Title = strings.TrimSpace(nc.Title)
	if nc.PatientID == 0 || nc.Title == "" {
		return nil, errors.New("patient and title are required")
	}
	var out model.Contract
	if err := s.c.PostJSON(ctx, "/api/contracts", nc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *contractHTTP) Resend(ctx context.Context, id model.ID) (*model.Contract, error) {
	var out model.Contract
	if err := s.c.PostJSON(ctx, fmt.Sprintf("/api/contracts/%d/resend", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sign подписывает отправленный договор от имени пациента.
func (s *contractHTTP) Sign(ctx context.Context, id model.ID) (*model.Contract, error) {
	var out model.Contract
	if err := s.c.PostJSON(ctx, fmt.Sprintf("/api/contracts/%d/sign", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *contractHTTP) Download(ctx context.Context, id model.ID) (*model.Document, error) {
	return s.c.Download(ctx, fmt.Sprintf("/api/contracts/%d/download", id), fmt.Sprintf("contrato-%d.pdf", id))
}
