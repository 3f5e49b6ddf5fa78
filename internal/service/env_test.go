package service

import (
	"context"
	"testing"
	"time"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"
	"PsyDesk/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

// testEnv собирает сервисы поверх отдельной in-memory SQLite. Психолог Laura и её пациентка Ana.
type testEnv struct {
	db       *gorm.DB
	users    repo.UserRepository
	patients repo.PatientRepository
	diary    *DiaryService
	practice *PracticeService

	psy   Actor
	pat   Actor
	other Actor
	card  *model.Patient
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repo.NewUserRepository(db)
	patients := repo.NewPatientRepository(db)
	mkUser := func(name, email, role string) *model.User {
		u, err := users.CreateUser(ctx, &model.User{Name: name, Email: email, Password: "x", Role: role})
		require.NoError(t, err)
		return u
	}
	laura := mkUser("Laura", "laura@example.com", model.RolePsychologist)
	other := mkUser("Pablo", "pablo@example.com", model.RolePsychologist)
	ana := mkUser("Ana", "ana@example.com", model.RolePatient)

	uid := ana.ID
	card := &model.Patient{PsychologistID: laura.ID, UserID: &uid, Name: "Ana", Email: ana.Email, Status: model.PatientActive}
	require.NoError(t, patients.Create(ctx, card))

	profiles := NewProfiles(patients, users)
	diary := NewDiaryService(repo.NewDiaryRepository(db), profiles, nil, nil)
	diary.now = func() time.Time { return fixedNow }
	practice := NewPracticeService(PracticeRepos{
		Patients:  patients,
		Users:     users,
		Sessions:  repo.NewSessionRepository(db),
		Payments:  repo.NewPaymentRepository(db),
		Contracts: repo.NewContractRepository(db),
		Quizzes:   repo.NewQuizRepository(db),
	}, profiles, storage.NewDBStore(repo.NewDocumentRepository(db)), nil)
	practice.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:       db,
		users:    users,
		patients: patients,
		diary:    diary,
		practice: practice,
		psy:      Actor{UserID: laura.ID, Role: model.RolePsychologist},
		pat:      Actor{UserID: ana.ID, Role: model.RolePatient},
		other:    Actor{UserID: other.ID, Role: model.RolePsychologist},
		card:     card,
	}
}

// write создаёт запись пациентки с датой fixedNow - daysAgo.
func (e *testEnv) write(t *testing.T, daysAgo int, content, mood string, private bool) *model.DiaryEntry {
	t.Helper()
	e.diary.now = func() time.Time { return fixedNow.AddDate(0, 0, -daysAgo) }
	defer func() { e.diary.now = func() time.Time { return fixedNow } }()
	entry, err := e.diary.Create(context.Background(), e.pat, NewEntry{Content: content, Mood: mood, IsPrivate: private})
	require.NoError(t, err)
	return entry
}
