package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/quizarena/quiz-tournament/middleware"
	"github.com/quizarena/quiz-tournament/services"
)

type QuizHandler struct {
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// questionNoFromURL parses the question number without range-checking it.
// Malformed values read as missing resources, the same as out-of-range
// numbers rejected by the service.
func questionNoFromURL(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "questionNo"))
}

// GetQuestion handles GET /play/{tournamentID}/questions/{questionNo}.
func (h *QuizHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	questionNo, err := questionNoFromURL(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	question, err := h.quizService.GetQuestion(r.Context(), userID, tournamentID, questionNo)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"question": question}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitAnswer handles POST /play/{tournamentID}/questions/{questionNo}.
// A missing answer yields a 400 with no state change; the client re-prompts
// the same question.
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	questionNo, err := questionNoFromURL(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	var input struct {
		Answer string `json:"answer"`
	}
	if err := readJSON(w, r, &input); err != nil {
		// Treat an empty body the same as an empty answer.
		if err.Error() != "body must not be empty" {
			badRequestResponse(w, r, err)
			return
		}
	}

	feedback, err := h.quizService.SubmitAnswer(r.Context(), userID, tournamentID, questionNo, input.Answer)
	if err != nil {
		if errors.Is(err, services.ErrAnswerRequired) {
			badRequestResponse(w, r, err)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": feedback}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
