package service

import (
	"context"
	"errors"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"
)

// Profiles сопоставляет пользователя с карточкой пациента и проверяет доступ к пациентам.
type Profiles struct {
	patients repo.PatientRepository
	users    repo.UserRepository
}

func NewProfiles(patients repo.PatientRepository, users repo.UserRepository) *Profiles {
	return &Profiles{patients: patients, users: users}
}

// PatientFor возвращает карточку пациента для пользователя-пациента.
// Если карточки нет, создаётся собственная карточка без психолога.
func (p *Profiles) PatientFor(ctx context.Context, a Actor) (*model.Patient, error) {
	if a.Role != model.RolePatient {
		return nil, ErrForbidden
	}
	card, err := p.patients.GetByUserID(ctx, a.UserID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	u, err := p.users.GetUserByID(ctx, a.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoPatientProfile
		}
		return nil, err
	}
	uid := u.ID
	card = &model.Patient{Name: u.Name, Email: u.Email, Status: model.PatientActive, UserID: &uid}
	if err := p.patients.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Scope: область данных, видимая пользователю.
func (p *Profiles) Scope(ctx context.Context, a Actor) (repo.Scope, error) {
	if a.IsPsychologist() {
		return repo.Scope{PsychologistID: a.UserID}, nil
	}
	card, err := p.PatientFor(ctx, a)
	if err != nil {
		return repo.Scope{}, err
	}
	return repo.Scope{PatientID: card.ID}, nil
}

// Patient возвращает пациента, если он доступен пользователю.
// Чужие пациенты для психолога неотличимы от несуществующих.
func (p *Profiles) Patient(ctx context.Context, a Actor, patientID int64) (*model.Patient, error) {
	if a.IsPsychologist() {
		pt, err := p.patients.GetByID(ctx, patientID)
		if err != nil {
			return nil, err
		}
		if pt.PsychologistID != a.UserID {
			return nil, repo.ErrNotFound
		}
		return pt, nil
	}
	card, err := p.PatientFor(ctx, a)
	if err != nil {
		return nil, err
	}
	if card.ID != patientID {
		return nil, ErrForbidden
	}
	return card, nil
}

// narrow сужает область до одного пациента, если он указан.
func (p *Profiles) narrow(ctx context.Context, a Actor, patientID int64) (repo.Scope, error) {
	if patientID == 0 {
		return p.Scope(ctx, a)
	}
	if _, err := p.Patient(ctx, a, patientID); err != nil {
		return repo.Scope{}, err
	}
	return repo.Scope{PatientID: patientID}, nil
}
