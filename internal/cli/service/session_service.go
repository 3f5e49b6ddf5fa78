package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

type SessionService interface {
	List(ctx context.Context, f model.SessionFilters) ([]model.Session, error)
	Create(ctx context.Context, s model.NewSession) (*model.Session, error)
	Complete(ctx context.Context, id model.ID) (*model.Session, error)
}

type sessionHTTP struct {
	c *api.Client
}

// NewSessionService конструктор сервиса консультаций
func NewSessionService(c *api.Client) SessionService {
	return &sessionHTTP{c: c}
}

func (s *sessionHTTP) List(ctx context.Context, f model.SessionFilters) ([]model.Session, error) {
	q := url.Values{}
	if f.PatientID != 0 {
		q.Set("patient_id", f.PatientID.String())
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	var out model.Page[model.Session]
	if err := s.c.GetJSON(ctx, "/api/sessions", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *sessionHTTP) Create(ctx context.Context, ns model.NewSession) (*model.Session, error) {
	if ns.PatientID == 0 || ns.StartsAt == "" {
		return nil, errors.New("patient and start time are required")
	}
	if _, err := model.ParseDate(ns.StartsAt); err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", ns.StartsAt, err)
	}
	var out model.Session
	if err := s.c.PostJSON(ctx, "/api/sessions", ns, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *sessionHTTP) Complete(ctx context.Context, id model.ID) (*model.Session, error) {
	var out model.Session
	if err := s.c.PostJSON(ctx, fmt.Sprintf("/api/sessions/%d/complete", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
