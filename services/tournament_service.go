package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
	"github.com/quizarena/quiz-tournament/storage"
	"github.com/quizarena/quiz-tournament/trivia"
)

const dateLayout = "2006-01-02"

type CreateTournamentInput struct {
	Name       string `json:"name"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// AdminTournamentList buckets every tournament by temporal status for the
// admin overview.
type AdminTournamentList struct {
	All      []models.Tournament `json:"all"`
	Active   []models.Tournament `json:"active"`
	Upcoming []models.Tournament `json:"upcoming"`
	Past     []models.Tournament `json:"past"`
}

// PlayerTournamentList is the player's home view: joinable active
// tournaments (not yet started or finished by this player), upcoming ones,
// and saved in-progress ones.
type PlayerTournamentList struct {
	Active   []models.Tournament            `json:"active"`
	Upcoming []models.Tournament            `json:"upcoming"`
	Saved    []repositories.SavedTournament `json:"saved"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListForAdmin(ctx context.Context) (*AdminTournamentList, error)
	ListForPlayer(ctx context.Context, userID int) (*PlayerTournamentList, error)
	ListQuestions(ctx context.Context, tournamentID int) ([]repositories.QuestionWithAnswer, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, tournamentID int, filename, contentType string, file io.Reader) (*models.Tournament, error)
	LogStatusSnapshot(ctx context.Context) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	questionRepo   repositories.QuestionRepository
	answerRepo     repositories.AnswerRepository
	progressRepo   repositories.ProgressRepository
	completedRepo  repositories.CompletedRepository
	provider       trivia.QuestionProvider
	uploader       storage.FileUploader // nil when uploads are not configured
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	questionRepo repositories.QuestionRepository,
	answerRepo repositories.AnswerRepository,
	progressRepo repositories.ProgressRepository,
	completedRepo repositories.CompletedRepository,
	provider trivia.QuestionProvider,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		questionRepo:   questionRepo,
		answerRepo:     answerRepo,
		progressRepo:   progressRepo,
		completedRepo:  completedRepo,
		provider:       provider,
		uploader:       uploader,
		logger:         logger,
	}
}

// Create validates the input, fetches a question set from the trivia source
// and persists the tournament plus its ten question/answer pairs in one
// transaction. Nothing is written if any step fails.
func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}

	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrTournamentInvalidDates, input.StartDate)
	}
	endDate, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrTournamentInvalidDates, input.EndDate)
	}

	tournament := &models.Tournament{
		Name:       strings.TrimSpace(input.Name),
		StartDate:  startDate,
		EndDate:    endDate,
		Category:   input.Category,
		Difficulty: input.Difficulty,
	}

	if !tournament.DatesValid() {
		return nil, ErrTournamentInvalidDates
	}
	if tournament.StartInPast(time.Now()) {
		return nil, ErrTournamentStartInPast
	}
	if !models.ValidCategory(tournament.Category) {
		return nil, ErrInvalidCategory
	}
	if !models.ValidDifficulty(tournament.Difficulty) {
		return nil, ErrInvalidDifficulty
	}

	results, err := s.provider.FetchQuestions(ctx, tournament.Category, tournament.Difficulty)
	if err != nil {
		if errors.Is(err, trivia.ErrNoQuestions) {
			return nil, ErrNoQuestionsFound
		}
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(results) != models.QuestionsPerTournament {
		return nil, ErrNoQuestionsFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	for i, result := range results {
		questionNo := i + 1

		question := &models.Question{
			TournamentID: tournament.ID,
			QuestionNo:   questionNo,
			Text:         html.UnescapeString(result.Question),
		}
		if err := s.questionRepo.Create(ctx, tx, question); err != nil {
			return nil, err
		}

		incorrect := make([]string, 0, len(result.IncorrectAnswers))
		for _, text := range result.IncorrectAnswers {
			incorrect = append(incorrect, html.UnescapeString(text))
		}

		answer := &models.Answer{
			TournamentID:     tournament.ID,
			QuestionID:       question.ID,
			QuestionNo:       questionNo,
			CorrectAnswer:    html.UnescapeString(result.CorrectAnswer),
			IncorrectAnswers: models.JoinIncorrect(incorrect),
		}
		if err := s.answerRepo.Create(ctx, tx, answer); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament creation: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.String("category", tournament.Category),
		slog.String("difficulty", tournament.Difficulty),
	)

	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListForAdmin(ctx context.Context) (*AdminTournamentList, error) {
	all, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	list := &AdminTournamentList{
		All:      all,
		Active:   make([]models.Tournament, 0),
		Upcoming: make([]models.Tournament, 0),
		Past:     make([]models.Tournament, 0),
	}

	today := time.Now()
	for i := range list.All {
		s.populateLogoURL(&list.All[i])
		switch list.All[i].Status(today) {
		case models.StatusActive:
			list.Active = append(list.Active, list.All[i])
		case models.StatusUpcoming:
			list.Upcoming = append(list.Upcoming, list.All[i])
		case models.StatusPast:
			list.Past = append(list.Past, list.All[i])
		}
	}
	return list, nil
}

func (s *tournamentService) ListForPlayer(ctx context.Context, userID int) (*PlayerTournamentList, error) {
	today := time.Now()

	active, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{ActiveOn: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}
	upcoming, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{StartsAfter: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}

	// An active tournament disappears from the joinable list once the
	// player has started or completed it.
	startedIDs, err := s.progressRepo.TournamentIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list started tournaments: %w", err)
	}
	completedIDs, err := s.completedRepo.TournamentIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tournaments: %w", err)
	}

	exclude := make(map[int]struct{}, len(startedIDs)+len(completedIDs))
	for _, id := range startedIDs {
		exclude[id] = struct{}{}
	}
	for _, id := range completedIDs {
		exclude[id] = struct{}{}
	}

	joinable := make([]models.Tournament, 0, len(active))
	for i := range active {
		if _, started := exclude[active[i].ID]; started {
			continue
		}
		s.populateLogoURL(&active[i])
		joinable = append(joinable, active[i])
	}
	for i := range upcoming {
		s.populateLogoURL(&upcoming[i])
	}

	saved, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved tournaments: %w", err)
	}
	for i := range saved {
		s.populateLogoURL(&saved[i].Tournament)
	}

	return &PlayerTournamentList{
		Active:   joinable,
		Upcoming: upcoming,
		Saved:    saved,
	}, nil
}

// ListQuestions returns every question with its answers, for the admin
// review page.
func (s *tournamentService) ListQuestions(ctx context.Context, tournamentID int) ([]repositories.QuestionWithAnswer, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.answerRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.uploader != nil && tournament.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament logo",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}

	s.logger.Info("tournament deleted", slog.Int("id", id), slog.String("name", tournament.Name))
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID int, filename, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo%s", tournamentID, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, err
	}

	tournament.LogoKey = &result.Key
	s.populateLogoURL(tournament)
	return tournament, nil
}

// LogStatusSnapshot logs how many tournaments sit in each temporal bucket.
// Status is derived from dates, so this is observation only, no writes.
func (s *tournamentService) LogStatusSnapshot(ctx context.Context) error {
	today := time.Now()

	active, err := s.tournamentRepo.Count(ctx, repositories.ListTournamentsFilter{ActiveOn: &today})
	if err != nil {
		return fmt.Errorf("failed to count active tournaments: %w", err)
	}
	upcoming, err := s.tournamentRepo.Count(ctx, repositories.ListTournamentsFilter{StartsAfter: &today})
	if err != nil {
		return fmt.Errorf("failed to count upcoming tournaments: %w", err)
	}
	past, err := s.tournamentRepo.Count(ctx, repositories.ListTournamentsFilter{EndsBefore: &today})
	if err != nil {
		return fmt.Errorf("failed to count past tournaments: %w", err)
	}

	s.logger.Info("tournament status snapshot",
		slog.Int("active", active),
		slog.Int("upcoming", upcoming),
		slog.Int("past", past),
	)
	return nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}
