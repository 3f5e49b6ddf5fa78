package service

import (
	"context"
	"errors"
	"net/url"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

type QuizService interface {
	Assignments(ctx context.Context, patientID model.ID) ([]model.QuizAssignment, error)
	Assign(ctx context.Context, a model.NewQuizAssignment) (*model.QuizAssignment, error)
}

type quizHTTP struct {
	c *api.Client
}

// NewQuizService конструктор сервиса опросников
func NewQuizService(c *api.Client) QuizService {
	return &quizHTTP{c: c}
}

func (s *quizHTTP) Assignments(ctx context.Context, patientID model.ID) ([]model.QuizAssignment, error) {
	q := url.Values{}
	if patientID != 0 {
		q.Set("patient_id", patientID.String())
	}
	var out model.Page[model.QuizAssignment]
	if err := s.c.GetJSON(ctx, "/api/quizzes/assignments", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *quizHTTP) Assign(ctx context.Context, a model.NewQuizAssignment) (*model.QuizAssignment, error) {
	if a.PatientID == 0 || a.QuizID == 0 {
		return nil, errors.New("patient and quiz are required")
	}
	var out model.QuizAssignment
	if err := s.c.PostJSON(ctx, "/api/quizzes/assignments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
