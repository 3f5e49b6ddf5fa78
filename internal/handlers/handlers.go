package handlers

import (
	"PsyDesk/internal/config"
	"PsyDesk/internal/middleware"
	"PsyDesk/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

type Services struct {
	Users    *service.UserService
	Diary    *service.DiaryService
	Practice *service.PracticeService
}

// NewHandler разводящий для хендлеров
func NewHandler(
	services Services,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	base := baseHandler{Logger: logger, maxBody: int64(config.DocumentMaxMB) << 20}
	userHandler := NewUserHandler(services.Users, base, config)
	diaryHandler := NewDiaryHandler(services.Diary, base)
	practiceHandler := NewPracticeHandler(services.Practice, base)

	// Auth routes
	r.Post("/api/auth/register", userHandler.Register)
	r.Post("/api/auth/login", userHandler.Login)
	r.Post("/api/auth/logout", userHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/auth/me", userHandler.Me)

		r.Route("/api/patients", func(r chi.Router) {
			r.Get("/", practiceHandler.ListPatients)
			r.Post("/", practiceHandler.CreatePatient)
			r.Get("/{id}", practiceHandler.GetPatient)
		})

		r.Route("/api/diary", func(r chi.Router) {
			r.Get("/", diaryHandler.List)
			r.Post("/", diaryHandler.Create)
			r.Post("/analysis", diaryHandler.Analyze)
			r.Get("/{id}", diaryHandler.Get)
			r.Delete("/{id}", diaryHandler.Delete)
		})

		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", practiceHandler.ListSessions)
			r.Post("/", practiceHandler.CreateSession)
			r.Post("/{id}/complete", practiceHandler.CompleteSession)
		})

		r.Route("/api/payments", func(r chi.Router) {
			r.Get("/", practiceHandler.ListPayments)
			r.Post("/", practiceHandler.CreatePayment)
			r.Get("/{id}/receipt", practiceHandler.Receipt)
		})

		r.Route("/api/contracts", func(r chi.Router) {
			r.Get("/", practiceHandler.ListContracts)
			r.Post("/", practiceHandler.CreateContract)
			r.Post("/{id}/resend", practiceHandler.ResendContract)
			r.Post("/{id}/sign", practiceHandler.SignContract)
			r.Get("/{id}/download", practiceHandler.DownloadContract)
		})

		r.Route("/api/quizzes/assignments", func(r chi.Router) {
			r.Get("/", practiceHandler.ListAssignments)
			r.Post("/", practiceHandler.AssignQuiz)
		})
	})

	return &Handler{Router: r}
}
