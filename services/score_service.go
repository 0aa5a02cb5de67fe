package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
	"golang.org/x/sync/errgroup"
)

type ScoreService interface {
	PlayerHistory(ctx context.Context, userID int) ([]models.Completed, error)
	AllScores(ctx context.Context) ([]models.Completed, error)
	PlayerScores(ctx context.Context, playerID int) (*models.User, []models.Completed, error)
	ListPlayers(ctx context.Context) ([]models.User, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type scoreService struct {
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	completedRepo  repositories.CompletedRepository
}

func NewScoreService(
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	completedRepo repositories.CompletedRepository,
) ScoreService {
	return &scoreService{
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		completedRepo:  completedRepo,
	}
}

// PlayerHistory lists the caller's own completed tournaments.
func (s *scoreService) PlayerHistory(ctx context.Context, userID int) ([]models.Completed, error) {
	return s.completedRepo.ListByUser(ctx, userID)
}

// AllScores lists every completion, grouped by username alphabetically.
func (s *scoreService) AllScores(ctx context.Context) ([]models.Completed, error) {
	return s.completedRepo.ListAll(ctx)
}

// PlayerScores returns one player's account and their completions, for the
// admin's player profile page.
func (s *scoreService) PlayerScores(ctx context.Context, playerID int) (*models.User, []models.Completed, error) {
	user, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load player: %w", err)
	}
	user.PasswordHash = ""

	completed, err := s.completedRepo.ListByUser(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return user, completed, nil
}

// ListPlayers lists all player accounts for the admin overview.
func (s *scoreService) ListPlayers(ctx context.Context) ([]models.User, error) {
	players, err := s.userRepo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].PasswordHash = ""
	}
	return players, nil
}

// Stats gathers the dashboard counters with independent queries in parallel.
func (s *scoreService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	today := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.PlayersTotal, err = s.userRepo.CountPlayers(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TournamentsTotal, err = s.tournamentRepo.Count(gCtx, repositories.ListTournamentsFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveTournaments, err = s.tournamentRepo.Count(gCtx, repositories.ListTournamentsFilter{ActiveOn: &today})
		return err
	})
	g.Go(func() error {
		var err error
		stats.CompletionsTotal, err = s.completedRepo.Count(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to gather dashboard stats: %w", err)
	}
	return stats, nil
}
