package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"PsyDesk/internal/config"
	"PsyDesk/internal/handlers"
	"PsyDesk/internal/middleware"
	"PsyDesk/internal/repo"
	"PsyDesk/internal/service"
	"PsyDesk/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	patientRepo := repo.NewPatientRepository(gormDB)

	docs, err := storage.New(ctx, cfg, repo.NewDocumentRepository(gormDB))
	if err != nil {
		sugar.Fatalw("failed to initialize document storage", "error", err)
	}

	var summarizer service.Summarizer = service.TemplateSummarizer{}
	if cfg.LLMAPIKey != "" {
		summarizer = service.NewLLMSummarizer(cfg.LLMAPIKey, cfg.LLMModel)
	}

	profiles := service.NewProfiles(patientRepo, userRepo)
	services := handlers.Services{
		Users: service.NewUserService(userRepo, patientRepo),
		Diary: service.NewDiaryService(repo.NewDiaryRepository(gormDB), profiles, summarizer, sugar),
		Practice: service.NewPracticeService(service.PracticeRepos{
			Patients:  patientRepo,
			Users:     userRepo,
			Sessions:  repo.NewSessionRepository(gormDB),
			Payments:  repo.NewPaymentRepository(gormDB),
			Contracts: repo.NewContractRepository(gormDB),
			Quizzes:   repo.NewQuizRepository(gormDB),
		}, profiles, docs, sugar),
	}

	h := handlers.NewHandler(services, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"S3Bucket", cfg.S3Bucket,
		"LLM", cfg.LLMAPIKey != "",
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
