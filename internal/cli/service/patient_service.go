package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

type PatientService interface {
	List(ctx context.Context, status string, page, perPage int) (*model.Page[model.Patient], error)
	Get(ctx context.Context, id model.ID) (*model.Patient, error)
	Create(ctx context.Context, p model.NewPatient) (*model.Patient, error)
	// CountActive возвращает число активных пациентов (total первой страницы).
	CountActive(ctx context.Context) (int, error)
}

type patientHTTP struct {
	c *api.Client
}

// NewPatientService конструктор сервиса пациентов
func NewPatientService(c *api.Client) PatientService {
	return &patientHTTP{c: c}
}

func (s *patientHTTP) List(ctx context.Context, status string, page, perPage int) (*model.Page[model.Patient], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var out model.Page[model.Patient]
	if err := s.c.GetJSON(ctx, "/api/patients", q, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (s *patientHTTP) Get(ctx context.Context, id model.ID) (*model.Patient, error) {
	var p model.Patient
	if err := s.c.GetJSON(ctx, fmt.Sprintf("/api/patients/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *patientHTTP) Create(ctx context.Context, p model.NewPatient) (*model.Patient, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, errors.New("patient name is required")
	}
	var out model.Patient
	if err := s.c.PostJSON(ctx, "/api/patients", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *patientHTTP) CountActive(ctx context.Context) (int, error) {
	page, err := s.List(ctx, "active", 1, 1)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}
