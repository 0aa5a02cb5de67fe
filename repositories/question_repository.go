package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizarena/quiz-tournament/models"
)

var ErrQuestionNotFound = errors.New("question not found")

type QuestionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, question *models.Question) error
	GetByNumber(ctx context.Context, tournamentID, questionNo int) (*models.Question, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Question, error)
}

type postgresQuestionRepository struct {
	db *sql.DB
}

func NewPostgresQuestionRepository(db *sql.DB) QuestionRepository {
	return &postgresQuestionRepository{db: db}
}

func (r *postgresQuestionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresQuestionRepository) Create(ctx context.Context, exec SQLExecutor, q *models.Question) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO questions (tournament_id, question_no, question_text)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, q.TournamentID, q.QuestionNo, q.Text).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("failed to insert question %d: %w", q.QuestionNo, err)
	}
	return nil
}

func (r *postgresQuestionRepository) GetByNumber(ctx context.Context, tournamentID, questionNo int) (*models.Question, error) {
	query := `
		SELECT id, tournament_id, question_no, question_text
		FROM questions
		WHERE tournament_id = $1 AND question_no = $2`

	q := &models.Question{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, questionNo).Scan(
		&q.ID, &q.TournamentID, &q.QuestionNo, &q.Text,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *postgresQuestionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Question, error) {
	query := `
		SELECT id, tournament_id, question_no, question_text
		FROM questions
		WHERE tournament_id = $1
		ORDER BY question_no ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		if scanErr := rows.Scan(&q.ID, &q.TournamentID, &q.QuestionNo, &q.Text); scanErr != nil {
			return nil, scanErr
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}
