package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/quizarena/quiz-tournament/handlers"
	"github.com/quizarena/quiz-tournament/middleware"
	"github.com/quizarena/quiz-tournament/models"
)

// SetupRoutes assembles the full route table. Player-only and admin-only
// groups are separated by the Authorize middleware; everything except
// registration and login requires a token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	quizHandler *handlers.QuizHandler,
	scoreHandler *handlers.ScoreHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/users/me", userHandler.GetProfile)
		r.Get("/ws/tournaments/{tournamentID}/feed", webSocketHandler.CompletionFeed)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Get("/{tournamentID}", tournamentHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))

				r.Post("/", tournamentHandler.Create)
				r.Delete("/{tournamentID}", tournamentHandler.Delete)
				r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)
				r.Get("/{tournamentID}/questions", tournamentHandler.ListQuestions)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RolePlayer))

			r.Get("/play/{tournamentID}/questions/{questionNo}", quizHandler.GetQuestion)
			r.Post("/play/{tournamentID}/questions/{questionNo}", quizHandler.SubmitAnswer)
			r.Get("/scores", scoreHandler.PlayerHistory)
			r.Delete("/users/me", userHandler.DeleteAccount)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/scores", scoreHandler.AllScores)
			r.Get("/players", scoreHandler.ListPlayers)
			r.Get("/players/{playerID}/scores", scoreHandler.PlayerScores)
			r.Delete("/players/{playerID}", userHandler.DeletePlayer)
			r.Get("/stats", scoreHandler.Stats)
		})
	})
}
