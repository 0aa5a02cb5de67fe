package handlers

import (
	"net/http"

	"github.com/quizarena/quiz-tournament/middleware"
	"github.com/quizarena/quiz-tournament/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// PlayerHistory handles GET /scores, the caller's own completed
// tournaments.
func (h *ScoreHandler) PlayerHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	completed, err := h.scoreService.PlayerHistory(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"completed": completed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AllScores handles GET /admin/scores.
func (h *ScoreHandler) AllScores(w http.ResponseWriter, r *http.Request) {
	completed, err := h.scoreService.AllScores(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"completed": completed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerScores handles GET /admin/players/{playerID}/scores.
func (h *ScoreHandler) PlayerScores(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, completed, err := h.scoreService.PlayerScores(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user, "completed": completed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayers handles GET /admin/players.
func (h *ScoreHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.scoreService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Stats handles GET /admin/stats.
func (h *ScoreHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scoreService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
