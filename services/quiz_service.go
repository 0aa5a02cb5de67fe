package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
)

// QuestionView is one question ready for rendering. Choices are shuffled on
// every call; the order is never persisted, so re-rendering the same
// question re-shuffles.
type QuestionView struct {
	TournamentID   int      `json:"tournament_id"`
	TournamentName string   `json:"tournament_name"`
	QuestionNo     int      `json:"question_no"`
	Question       string   `json:"question"`
	Choices        []string `json:"choices"`
}

// AnswerFeedback reports the outcome of one submission.
type AnswerFeedback struct {
	Correct        bool   `json:"correct"`
	CorrectAnswer  string `json:"correct_answer"`
	Score          int    `json:"score"`
	NextQuestionNo int    `json:"next_question_no,omitempty"`
	Completed      bool   `json:"completed"`
}

// CompletionNotifier receives an event when a player finishes a tournament.
type CompletionNotifier interface {
	NotifyCompletion(tournamentID int, event CompletionEvent)
}

type CompletionEvent struct {
	UserID       int       `json:"user_id"`
	TournamentID int       `json:"tournament_id"`
	Score        int       `json:"score"`
	CompletedOn  time.Time `json:"completed_on"`
}

type QuizService interface {
	GetQuestion(ctx context.Context, userID, tournamentID, questionNo int) (*QuestionView, error)
	SubmitAnswer(ctx context.Context, userID, tournamentID, questionNo int, answer string) (*AnswerFeedback, error)
}

type quizService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	questionRepo   repositories.QuestionRepository
	answerRepo     repositories.AnswerRepository
	progressRepo   repositories.ProgressRepository
	completedRepo  repositories.CompletedRepository
	notifier       CompletionNotifier // nil disables the live feed
	logger         *slog.Logger
}

func NewQuizService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	questionRepo repositories.QuestionRepository,
	answerRepo repositories.AnswerRepository,
	progressRepo repositories.ProgressRepository,
	completedRepo repositories.CompletedRepository,
	notifier CompletionNotifier,
	logger *slog.Logger,
) QuizService {
	return &quizService{
		db:             db,
		tournamentRepo: tournamentRepo,
		questionRepo:   questionRepo,
		answerRepo:     answerRepo,
		progressRepo:   progressRepo,
		completedRepo:  completedRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// GetQuestion returns question n for rendering, provided the tournament is
// active and n is exactly the question the player is expected on. Every
// violation is ErrNotFound so callers cannot probe progress they don't own.
func (s *quizService) GetQuestion(ctx context.Context, userID, tournamentID, questionNo int) (*QuestionView, error) {
	tournament, _, err := s.checkAccess(ctx, userID, tournamentID, questionNo)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByNumber(ctx, tournamentID, questionNo)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	answer, err := s.answerRepo.GetByNumber(ctx, tournamentID, questionNo)
	if err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	choices := answer.Choices()
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return &QuestionView{
		TournamentID:   tournament.ID,
		TournamentName: tournament.Name,
		QuestionNo:     questionNo,
		Question:       question.Text,
		Choices:        choices,
	}, nil
}

// SubmitAnswer advances the player's progress by one question. Answering
// question 1 creates the progress row; answering question 10 converts it to
// a permanent Completed record in the same transaction.
func (s *quizService) SubmitAnswer(ctx context.Context, userID, tournamentID, questionNo int, chosenAnswer string) (*AnswerFeedback, error) {
	if strings.TrimSpace(chosenAnswer) == "" {
		return nil, ErrAnswerRequired
	}

	_, progress, err := s.checkAccess(ctx, userID, tournamentID, questionNo)
	if err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.GetByNumber(ctx, tournamentID, questionNo)
	if err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if progress == nil {
		// First answer of this tournament.
		progress = &models.PlayerProgress{
			UserID:       userID,
			TournamentID: tournamentID,
			QuestionNo:   1,
			Score:        0,
		}
		if err := s.progressRepo.Create(ctx, progress); err != nil {
			if errors.Is(err, repositories.ErrProgressConflict) {
				// Lost a race with another submission for question 1.
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	correct := chosenAnswer == answer.CorrectAnswer
	if correct {
		progress.Score++
	}
	progress.QuestionNo = questionNo + 1

	feedback := &AnswerFeedback{
		Correct:       correct,
		CorrectAnswer: answer.CorrectAnswer,
		Score:         progress.Score,
	}

	if questionNo < models.QuestionsPerTournament {
		if err := s.progressRepo.Update(ctx, nil, progress); err != nil {
			return nil, err
		}
		feedback.NextQuestionNo = progress.QuestionNo
		return feedback, nil
	}

	// Question 10: convert progress into a permanent completion.
	completed := &models.Completed{
		UserID:       userID,
		TournamentID: tournamentID,
		CompletedOn:  time.Now(),
		Score:        progress.Score,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.completedRepo.Create(ctx, tx, completed); err != nil {
		if errors.Is(err, repositories.ErrCompletedConflict) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.progressRepo.Delete(ctx, tx, progress.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	s.logger.Info("tournament completed",
		slog.Int("user_id", userID),
		slog.Int("tournament_id", tournamentID),
		slog.Int("score", completed.Score),
	)

	if s.notifier != nil {
		s.notifier.NotifyCompletion(tournamentID, CompletionEvent{
			UserID:       userID,
			TournamentID: tournamentID,
			Score:        completed.Score,
			CompletedOn:  completed.CompletedOn,
		})
	}

	feedback.Completed = true
	return feedback, nil
}

// checkAccess enforces the progression guards shared by question fetch and
// answer submission: the tournament exists and is active, the player has not
// completed it, and questionNo is exactly the expected next question.
// Returns the player's progress row, or nil when they have not started.
func (s *quizService) checkAccess(ctx context.Context, userID, tournamentID, questionNo int) (*models.Tournament, *models.PlayerProgress, error) {
	if questionNo < 1 || questionNo > models.QuestionsPerTournament {
		return nil, nil, ErrNotFound
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !tournament.IsActive(time.Now()) {
		return nil, nil, ErrNotFound
	}

	if _, err := s.completedRepo.GetByUserAndTournament(ctx, userID, tournamentID); err == nil {
		return nil, nil, ErrNotFound
	} else if !errors.Is(err, repositories.ErrCompletedNotFound) {
		return nil, nil, err
	}

	progress, err := s.progressRepo.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if !errors.Is(err, repositories.ErrProgressNotFound) {
			return nil, nil, err
		}
		progress = nil
	}

	expected := 1
	if progress != nil {
		expected = progress.QuestionNo
	}
	if questionNo != expected {
		return nil, nil, ErrNotFound
	}

	return tournament, progress, nil
}
