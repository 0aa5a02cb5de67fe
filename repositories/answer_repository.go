package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizarena/quiz-tournament/models"
)

var ErrAnswerNotFound = errors.New("answer not found")

// QuestionWithAnswer joins a question with its answer row for the admin
// review listing.
type QuestionWithAnswer struct {
	Question models.Question `json:"question"`
	Answer   models.Answer   `json:"answer"`
}

type AnswerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, answer *models.Answer) error
	GetByNumber(ctx context.Context, tournamentID, questionNo int) (*models.Answer, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]QuestionWithAnswer, error)
}

type postgresAnswerRepository struct {
	db *sql.DB
}

func NewPostgresAnswerRepository(db *sql.DB) AnswerRepository {
	return &postgresAnswerRepository{db: db}
}

func (r *postgresAnswerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAnswerRepository) Create(ctx context.Context, exec SQLExecutor, a *models.Answer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO answers (tournament_id, question_id, question_no, correct_answer, incorrect_answers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		a.TournamentID, a.QuestionID, a.QuestionNo, a.CorrectAnswer, a.IncorrectAnswers,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to insert answer for question %d: %w", a.QuestionNo, err)
	}
	return nil
}

func (r *postgresAnswerRepository) GetByNumber(ctx context.Context, tournamentID, questionNo int) (*models.Answer, error) {
	query := `
		SELECT id, tournament_id, question_id, question_no, correct_answer, incorrect_answers
		FROM answers
		WHERE tournament_id = $1 AND question_no = $2`

	a := &models.Answer{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, questionNo).Scan(
		&a.ID, &a.TournamentID, &a.QuestionID, &a.QuestionNo, &a.CorrectAnswer, &a.IncorrectAnswers,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresAnswerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]QuestionWithAnswer, error) {
	query := `
		SELECT
			q.id, q.tournament_id, q.question_no, q.question_text,
			a.id, a.tournament_id, a.question_id, a.question_no, a.correct_answer, a.incorrect_answers
		FROM questions q
		JOIN answers a ON a.question_id = q.id
		WHERE q.tournament_id = $1
		ORDER BY q.question_no ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]QuestionWithAnswer, 0)
	for rows.Next() {
		var entry QuestionWithAnswer
		if scanErr := rows.Scan(
			&entry.Question.ID, &entry.Question.TournamentID, &entry.Question.QuestionNo, &entry.Question.Text,
			&entry.Answer.ID, &entry.Answer.TournamentID, &entry.Answer.QuestionID, &entry.Answer.QuestionNo,
			&entry.Answer.CorrectAnswer, &entry.Answer.IncorrectAnswers,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
