package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/quizarena/quiz-tournament/models"
)

var (
	ErrProgressNotFound = errors.New("player progress not found")
	ErrProgressConflict = errors.New("player progress already exists for this tournament")
)

// SavedTournament pairs an in-progress row with its tournament, for the
// player's "continue where you left off" listing.
type SavedTournament struct {
	Progress   models.PlayerProgress `json:"progress"`
	Tournament models.Tournament     `json:"tournament"`
}

type ProgressRepository interface {
	Create(ctx context.Context, progress *models.PlayerProgress) error
	GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.PlayerProgress, error)
	Update(ctx context.Context, exec SQLExecutor, progress *models.PlayerProgress) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByUser(ctx context.Context, userID int) ([]SavedTournament, error)
	TournamentIDsByUser(ctx context.Context, userID int) ([]int, error)
}

type postgresProgressRepository struct {
	db *sql.DB
}

func NewPostgresProgressRepository(db *sql.DB) ProgressRepository {
	return &postgresProgressRepository{db: db}
}

func (r *postgresProgressRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresProgressRepository) Create(ctx context.Context, p *models.PlayerProgress) error {
	query := `
		INSERT INTO player_progress (user_id, tournament_id, question_no, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.TournamentID, p.QuestionNo, p.Score).Scan(&p.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "player_progress_user_id_tournament_id_key" {
				return ErrProgressConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresProgressRepository) GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.PlayerProgress, error) {
	query := `
		SELECT id, user_id, tournament_id, question_no, score
		FROM player_progress
		WHERE user_id = $1 AND tournament_id = $2`

	p := &models.PlayerProgress{}
	err := r.db.QueryRowContext(ctx, query, userID, tournamentID).Scan(
		&p.ID, &p.UserID, &p.TournamentID, &p.QuestionNo, &p.Score,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresProgressRepository) Update(ctx context.Context, exec SQLExecutor, p *models.PlayerProgress) error {
	executor := r.getExecutor(exec)
	query := `UPDATE player_progress SET question_no = $1, score = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, p.QuestionNo, p.Score, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProgressNotFound)
}

func (r *postgresProgressRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM player_progress WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProgressNotFound)
}

func (r *postgresProgressRepository) ListByUser(ctx context.Context, userID int) ([]SavedTournament, error) {
	query := `
		SELECT
			p.id, p.user_id, p.tournament_id, p.question_no, p.score,
			t.id, t.name, t.start_date, t.end_date, t.category, t.difficulty, t.logo_key, t.created_at
		FROM player_progress p
		JOIN tournaments t ON t.id = p.tournament_id
		WHERE p.user_id = $1
		ORDER BY t.end_date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saved := make([]SavedTournament, 0)
	for rows.Next() {
		var s SavedTournament
		if scanErr := rows.Scan(
			&s.Progress.ID, &s.Progress.UserID, &s.Progress.TournamentID, &s.Progress.QuestionNo, &s.Progress.Score,
			&s.Tournament.ID, &s.Tournament.Name, &s.Tournament.StartDate, &s.Tournament.EndDate,
			&s.Tournament.Category, &s.Tournament.Difficulty, &s.Tournament.LogoKey, &s.Tournament.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		saved = append(saved, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *postgresProgressRepository) TournamentIDsByUser(ctx context.Context, userID int) ([]int, error) {
	return scanTournamentIDs(ctx, r.db, `SELECT tournament_id FROM player_progress WHERE user_id = $1`, userID)
}

func scanTournamentIDs(ctx context.Context, db *sql.DB, query string, userID int) ([]int, error) {
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
