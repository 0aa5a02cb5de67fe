package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
	"github.com/quizarena/quiz-tournament/storage"
	"github.com/quizarena/quiz-tournament/trivia"
)

// newFakeDB returns a *sql.DB whose transactions succeed without touching a
// real database. Repository calls in tests go through the in-memory fakes,
// which ignore the executor; the services only need Begin/Commit/Rollback
// to work.
func newFakeDB() *sql.DB {
	return sql.OpenDB(fakeConnector{})
}

type fakeConnector struct{}

func (fakeConnector) Connect(context.Context) (driver.Conn, error) { return fakeConn{}, nil }
func (fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepository struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepository) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repositories.ErrUsernameConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepository) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepository) ListPlayers(_ context.Context) ([]models.User, error) {
	players := make([]models.User, 0)
	for _, user := range r.users {
		if user.Role == models.RolePlayer {
			players = append(players, *user)
		}
	}
	return players, nil
}

func (r *fakeUserRepository) CountPlayers(_ context.Context) (int, error) {
	players, _ := r.ListPlayers(context.Background())
	return len(players), nil
}

type fakeTournamentRepository struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepository() *fakeTournamentRepository {
	return &fakeTournamentRepository{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepository) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.nextID++
	stored := *t
	r.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepository) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepository) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	matched := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if matchesFilter(t, filter) {
			matched = append(matched, *t)
		}
	}
	return matched, nil
}

func (r *fakeTournamentRepository) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepository) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepository) Count(ctx context.Context, filter repositories.ListTournamentsFilter) (int, error) {
	matched, _ := r.List(ctx, filter)
	return len(matched), nil
}

func matchesFilter(t *models.Tournament, filter repositories.ListTournamentsFilter) bool {
	if filter.ActiveOn != nil && t.Status(*filter.ActiveOn) != models.StatusActive {
		return false
	}
	if filter.StartsAfter != nil && t.Status(*filter.StartsAfter) != models.StatusUpcoming {
		return false
	}
	if filter.EndsBefore != nil && t.Status(*filter.EndsBefore) != models.StatusPast {
		return false
	}
	return true
}

type fakeQuestionRepository struct {
	questions []models.Question
	nextID    int
}

func newFakeQuestionRepository() *fakeQuestionRepository {
	return &fakeQuestionRepository{nextID: 1}
}

func (r *fakeQuestionRepository) Create(_ context.Context, _ repositories.SQLExecutor, q *models.Question) error {
	q.ID = r.nextID
	r.nextID++
	r.questions = append(r.questions, *q)
	return nil
}

func (r *fakeQuestionRepository) GetByNumber(_ context.Context, tournamentID, questionNo int) (*models.Question, error) {
	for i := range r.questions {
		if r.questions[i].TournamentID == tournamentID && r.questions[i].QuestionNo == questionNo {
			clone := r.questions[i]
			return &clone, nil
		}
	}
	return nil, repositories.ErrQuestionNotFound
}

func (r *fakeQuestionRepository) ListByTournament(_ context.Context, tournamentID int) ([]models.Question, error) {
	matched := make([]models.Question, 0)
	for _, q := range r.questions {
		if q.TournamentID == tournamentID {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

type fakeAnswerRepository struct {
	answers []models.Answer
	nextID  int
}

func newFakeAnswerRepository() *fakeAnswerRepository {
	return &fakeAnswerRepository{nextID: 1}
}

func (r *fakeAnswerRepository) Create(_ context.Context, _ repositories.SQLExecutor, a *models.Answer) error {
	a.ID = r.nextID
	r.nextID++
	r.answers = append(r.answers, *a)
	return nil
}

func (r *fakeAnswerRepository) GetByNumber(_ context.Context, tournamentID, questionNo int) (*models.Answer, error) {
	for i := range r.answers {
		if r.answers[i].TournamentID == tournamentID && r.answers[i].QuestionNo == questionNo {
			clone := r.answers[i]
			return &clone, nil
		}
	}
	return nil, repositories.ErrAnswerNotFound
}

func (r *fakeAnswerRepository) ListByTournament(_ context.Context, tournamentID int) ([]repositories.QuestionWithAnswer, error) {
	matched := make([]repositories.QuestionWithAnswer, 0)
	for _, a := range r.answers {
		if a.TournamentID == tournamentID {
			matched = append(matched, repositories.QuestionWithAnswer{Answer: a})
		}
	}
	return matched, nil
}

type fakeProgressRepository struct {
	rows   map[int]*models.PlayerProgress
	nextID int

	// tournaments, when set, joins the tournament into ListByUser results
	// like the SQL repository does.
	tournaments *fakeTournamentRepository
}

func newFakeProgressRepository() *fakeProgressRepository {
	return &fakeProgressRepository{rows: make(map[int]*models.PlayerProgress), nextID: 1}
}

func (r *fakeProgressRepository) Create(_ context.Context, p *models.PlayerProgress) error {
	for _, existing := range r.rows {
		if existing.UserID == p.UserID && existing.TournamentID == p.TournamentID {
			return repositories.ErrProgressConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	stored := *p
	r.rows[p.ID] = &stored
	return nil
}

func (r *fakeProgressRepository) GetByUserAndTournament(_ context.Context, userID, tournamentID int) (*models.PlayerProgress, error) {
	for _, p := range r.rows {
		if p.UserID == userID && p.TournamentID == tournamentID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrProgressNotFound
}

func (r *fakeProgressRepository) Update(_ context.Context, _ repositories.SQLExecutor, p *models.PlayerProgress) error {
	if _, ok := r.rows[p.ID]; !ok {
		return repositories.ErrProgressNotFound
	}
	stored := *p
	r.rows[p.ID] = &stored
	return nil
}

func (r *fakeProgressRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.rows[id]; !ok {
		return repositories.ErrProgressNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeProgressRepository) ListByUser(_ context.Context, userID int) ([]repositories.SavedTournament, error) {
	saved := make([]repositories.SavedTournament, 0)
	for _, p := range r.rows {
		if p.UserID != userID {
			continue
		}
		entry := repositories.SavedTournament{Progress: *p}
		if r.tournaments != nil {
			if t, ok := r.tournaments.tournaments[p.TournamentID]; ok {
				entry.Tournament = *t
			}
		}
		saved = append(saved, entry)
	}
	return saved, nil
}

func (r *fakeProgressRepository) TournamentIDsByUser(_ context.Context, userID int) ([]int, error) {
	ids := make([]int, 0)
	for _, p := range r.rows {
		if p.UserID == userID {
			ids = append(ids, p.TournamentID)
		}
	}
	return ids, nil
}

type fakeCompletedRepository struct {
	rows   map[int]*models.Completed
	nextID int
}

func newFakeCompletedRepository() *fakeCompletedRepository {
	return &fakeCompletedRepository{rows: make(map[int]*models.Completed), nextID: 1}
}

func (r *fakeCompletedRepository) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Completed) error {
	for _, existing := range r.rows {
		if existing.UserID == c.UserID && existing.TournamentID == c.TournamentID {
			return repositories.ErrCompletedConflict
		}
	}
	c.ID = r.nextID
	r.nextID++
	stored := *c
	r.rows[c.ID] = &stored
	return nil
}

func (r *fakeCompletedRepository) GetByUserAndTournament(_ context.Context, userID, tournamentID int) (*models.Completed, error) {
	for _, c := range r.rows {
		if c.UserID == userID && c.TournamentID == tournamentID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repositories.ErrCompletedNotFound
}

func (r *fakeCompletedRepository) ListByUser(_ context.Context, userID int) ([]models.Completed, error) {
	matched := make([]models.Completed, 0)
	for _, c := range r.rows {
		if c.UserID == userID {
			matched = append(matched, *c)
		}
	}
	return matched, nil
}

func (r *fakeCompletedRepository) ListAll(_ context.Context) ([]models.Completed, error) {
	all := make([]models.Completed, 0, len(r.rows))
	for _, c := range r.rows {
		all = append(all, *c)
	}
	return all, nil
}

func (r *fakeCompletedRepository) TournamentIDsByUser(_ context.Context, userID int) ([]int, error) {
	ids := make([]int, 0)
	for _, c := range r.rows {
		if c.UserID == userID {
			ids = append(ids, c.TournamentID)
		}
	}
	return ids, nil
}

func (r *fakeCompletedRepository) Count(_ context.Context) (int, error) {
	return len(r.rows), nil
}

type fakeQuestionProvider struct {
	results []trivia.Result
	err     error

	lastCategory   string
	lastDifficulty string
}

func (p *fakeQuestionProvider) FetchQuestions(_ context.Context, category, difficulty string) ([]trivia.Result, error) {
	p.lastCategory = category
	p.lastDifficulty = difficulty
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

type fakeNotifier struct {
	events []CompletionEvent
}

func (n *fakeNotifier) NotifyCompletion(_ int, event CompletionEvent) {
	n.events = append(n.events, event)
}

var _ storage.FileUploader = (*fakeUploader)(nil)

type fakeUploader struct {
	uploaded map[string]string // key -> content type
	deleted  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, _ io.Reader) (*storage.UploadResult, error) {
	u.uploaded[key] = contentType
	return &storage.UploadResult{Key: key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	delete(u.uploaded, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
