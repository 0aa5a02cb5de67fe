package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quizarena/quiz-tournament/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// ListTournamentsFilter narrows List by the tournament's date range. All
// bounds are day-granular dates.
type ListTournamentsFilter struct {
	ActiveOn    *time.Time // start_date <= d AND end_date >= d
	StartsAfter *time.Time // start_date > d (upcoming)
	EndsBefore  *time.Time // end_date < d (past)
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Delete(ctx context.Context, id int) error
	UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error
	Count(ctx context.Context, filter ListTournamentsFilter) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, start_date, end_date, category, difficulty, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		t.Name, t.StartDate, t.EndDate, t.Category, t.Difficulty, t.LogoKey,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, start_date, end_date, category, difficulty, logo_key, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.Category, &t.Difficulty, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, name, start_date, end_date, category, difficulty, logo_key, created_at
		FROM tournaments
		WHERE 1=1`

	query, args := applyDateFilter(query, filter)
	query += " ORDER BY start_date ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.Category, &t.Difficulty, &t.LogoKey, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	// Questions, answers, progress and completions cascade.
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Count(ctx context.Context, filter ListTournamentsFilter) (int, error) {
	query := `SELECT COUNT(*) FROM tournaments WHERE 1=1`
	query, args := applyDateFilter(query, filter)

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func applyDateFilter(query string, filter ListTournamentsFilter) (string, []interface{}) {
	args := []interface{}{}
	argID := 1

	if filter.ActiveOn != nil {
		query += fmt.Sprintf(" AND start_date <= $%d AND end_date >= $%d", argID, argID)
		args = append(args, *filter.ActiveOn)
		argID++
	}
	if filter.StartsAfter != nil {
		query += fmt.Sprintf(" AND start_date > $%d", argID)
		args = append(args, *filter.StartsAfter)
		argID++
	}
	if filter.EndsBefore != nil {
		query += fmt.Sprintf(" AND end_date < $%d", argID)
		args = append(args, *filter.EndsBefore)
	}
	return query, args
}
