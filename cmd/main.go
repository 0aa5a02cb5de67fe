package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/quizarena/quiz-tournament/config"
	"github.com/quizarena/quiz-tournament/db"
	"github.com/quizarena/quiz-tournament/handlers"
	"github.com/quizarena/quiz-tournament/live"
	"github.com/quizarena/quiz-tournament/repositories"
	api "github.com/quizarena/quiz-tournament/routes"
	"github.com/quizarena/quiz-tournament/services"
	"github.com/quizarena/quiz-tournament/storage"
	"github.com/quizarena/quiz-tournament/trivia"
)

// snapshotInterval controls how often the tournament status snapshot is
// written to the log.
const snapshotInterval = 5 * time.Minute

// completionFeed bridges quiz completions into the websocket hub.
type completionFeed struct {
	hub *live.Hub
}

func (f completionFeed) NotifyCompletion(tournamentID int, event services.CompletionEvent) {
	f.hub.NotifyCompletion(tournamentID, event)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Logo storage is optional: without R2 settings the endpoint returns
	// 501 and tournaments simply have no logos.
	var uploader storage.FileUploader
	if cfg.R2.Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, logo uploads disabled")
	}

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	questionRepo := repositories.NewPostgresQuestionRepository(dbConn)
	answerRepo := repositories.NewPostgresAnswerRepository(dbConn)
	progressRepo := repositories.NewPostgresProgressRepository(dbConn)
	completedRepo := repositories.NewPostgresCompletedRepository(dbConn)
	logger.Info("repositories initialized")

	triviaClient := trivia.NewClient(cfg.TriviaAPIURL)

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		questionRepo,
		answerRepo,
		progressRepo,
		completedRepo,
		triviaClient,
		uploader,
		logger,
	)
	quizService := services.NewQuizService(
		dbConn,
		tournamentRepo,
		questionRepo,
		answerRepo,
		progressRepo,
		completedRepo,
		completionFeed{hub: wsHub},
		logger,
	)
	scoreService := services.NewScoreService(userRepo, tournamentRepo, completedRepo)
	logger.Info("services initialized")

	// Periodic status snapshot: status is derived from dates, so this only
	// observes and logs, it never writes.
	go func() {
		ticker := time.NewTicker(snapshotInterval)
		defer ticker.Stop()

		if err := tournamentService.LogStatusSnapshot(context.Background()); err != nil {
			logger.Error("status snapshot: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.LogStatusSnapshot(context.Background()); err != nil {
				logger.Error("status snapshot: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	quizHandler := handlers.NewQuizHandler(quizService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		tournamentHandler,
		quizHandler,
		scoreHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
