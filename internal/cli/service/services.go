package service

import "PsyDesk/internal/cli/api"

// Set: все сервисы клиента поверх одного api.Client.
type Set struct {
	Auth      AuthService
	Diary     DiaryService
	Patients  PatientService
	Sessions  SessionService
	Payments  PaymentService
	Contracts ContractService
	Quizzes   QuizService
}

// NewSet собирает HTTP-реализации всех сервисов.
func NewSet(c *api.Client) *Set {
	return &Set{
		Auth:      NewAuthService(c),
		Diary:     NewDiaryService(c),
		Patients:  NewPatientService(c),
		Sessions:  NewSessionService(c),
		Payments:  NewPaymentService(c),
		Contracts: NewContractService(c),
		Quizzes:   NewQuizService(c),
	}
}
