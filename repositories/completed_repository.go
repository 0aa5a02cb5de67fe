package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/quizarena/quiz-tournament/models"
)

var (
	ErrCompletedNotFound = errors.New("completed record not found")
	ErrCompletedConflict = errors.New("tournament already completed by this player")
)

type CompletedRepository interface {
	Create(ctx context.Context, exec SQLExecutor, completed *models.Completed) error
	GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Completed, error)
	ListByUser(ctx context.Context, userID int) ([]models.Completed, error)
	ListAll(ctx context.Context) ([]models.Completed, error)
	TournamentIDsByUser(ctx context.Context, userID int) ([]int, error)
	Count(ctx context.Context) (int, error)
}

type postgresCompletedRepository struct {
	db *sql.DB
}

func NewPostgresCompletedRepository(db *sql.DB) CompletedRepository {
	return &postgresCompletedRepository{db: db}
}

func (r *postgresCompletedRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCompletedRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Completed) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO completed (user_id, tournament_id, completed_on, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, c.UserID, c.TournamentID, c.CompletedOn, c.Score).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "completed_user_id_tournament_id_key" {
				return ErrCompletedConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresCompletedRepository) GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Completed, error) {
	query := `
		SELECT id, user_id, tournament_id, completed_on, score
		FROM completed
		WHERE user_id = $1 AND tournament_id = $2`

	c := &models.Completed{}
	err := r.db.QueryRowContext(ctx, query, userID, tournamentID).Scan(
		&c.ID, &c.UserID, &c.TournamentID, &c.CompletedOn, &c.Score,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompletedNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompletedRepository) ListByUser(ctx context.Context, userID int) ([]models.Completed, error) {
	query := `
		SELECT
			c.id, c.user_id, c.tournament_id, c.completed_on, c.score,
			u.username, t.name
		FROM completed c
		JOIN users u ON u.id = c.user_id
		JOIN tournaments t ON t.id = c.tournament_id
		WHERE c.user_id = $1
		ORDER BY c.completed_on DESC, c.id DESC`

	return r.listCompleted(ctx, query, userID)
}

func (r *postgresCompletedRepository) ListAll(ctx context.Context) ([]models.Completed, error) {
	// Admin view groups completions by player, alphabetically.
	query := `
		SELECT
			c.id, c.user_id, c.tournament_id, c.completed_on, c.score,
			u.username, t.name
		FROM completed c
		JOIN users u ON u.id = c.user_id
		JOIN tournaments t ON t.id = c.tournament_id
		ORDER BY u.username ASC, c.completed_on DESC`

	return r.listCompleted(ctx, query)
}

func (r *postgresCompletedRepository) TournamentIDsByUser(ctx context.Context, userID int) ([]int, error) {
	return scanTournamentIDs(ctx, r.db, `SELECT tournament_id FROM completed WHERE user_id = $1`, userID)
}

func (r *postgresCompletedRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed`).Scan(&count)
	return count, err
}

func (r *postgresCompletedRepository) listCompleted(ctx context.Context, query string, args ...interface{}) ([]models.Completed, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make([]models.Completed, 0)
	for rows.Next() {
		var c models.Completed
		if scanErr := rows.Scan(
			&c.ID, &c.UserID, &c.TournamentID, &c.CompletedOn, &c.Score,
			&c.Username, &c.TournamentName,
		); scanErr != nil {
			return nil, scanErr
		}
		completed = append(completed, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return completed, nil
}
