package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
	"github.com/quizarena/quiz-tournament/storage"
	"github.com/quizarena/quiz-tournament/trivia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tournamentFixture struct {
	service        TournamentService
	tournamentRepo *fakeTournamentRepository
	questionRepo   *fakeQuestionRepository
	answerRepo     *fakeAnswerRepository
	progressRepo   *fakeProgressRepository
	completedRepo  *fakeCompletedRepository
	provider       *fakeQuestionProvider
	uploader       *fakeUploader
}

func newTournamentFixture(_ *testing.T, uploader *fakeUploader) *tournamentFixture {
	f := &tournamentFixture{
		tournamentRepo: newFakeTournamentRepository(),
		questionRepo:   newFakeQuestionRepository(),
		answerRepo:     newFakeAnswerRepository(),
		progressRepo:   newFakeProgressRepository(),
		completedRepo:  newFakeCompletedRepository(),
		provider:       &fakeQuestionProvider{results: makeTriviaResults(10)},
		uploader:       uploader,
	}
	f.progressRepo.tournaments = f.tournamentRepo

	// A typed nil would defeat the uploader == nil check in the service.
	var svcUploader storage.FileUploader
	if uploader != nil {
		svcUploader = uploader
	}

	f.service = NewTournamentService(
		newFakeDB(),
		f.tournamentRepo,
		f.questionRepo,
		f.answerRepo,
		f.progressRepo,
		f.completedRepo,
		f.provider,
		svcUploader,
		discardLogger(),
	)
	return f
}

func makeTriviaResults(n int) []trivia.Result {
	results := make([]trivia.Result, n)
	for i := range results {
		results[i] = trivia.Result{
			Category:         "General Knowledge",
			Difficulty:       "easy",
			Question:         fmt.Sprintf("Question %d?", i+1),
			CorrectAnswer:    fmt.Sprintf("Correct %d", i+1),
			IncorrectAnswers: []string{"Wrong A", "Wrong B", "Wrong C"},
		}
	}
	return results
}

func validCreateInput() CreateTournamentInput {
	today := time.Now()
	return CreateTournamentInput{
		Name:       "Spring Trivia",
		StartDate:  today.Format("2006-01-02"),
		EndDate:    today.AddDate(0, 0, 14).Format("2006-01-02"),
		Category:   "9",
		Difficulty: "easy",
	}
}

func TestCreateTournament(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.NotZero(t, tournament.ID)
	assert.Equal(t, "Spring Trivia", tournament.Name)
	assert.Equal(t, "9", f.provider.lastCategory)
	assert.Equal(t, "easy", f.provider.lastDifficulty)

	questions, err := f.questionRepo.ListByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, questions, models.QuestionsPerTournament)

	// Question numbers are assigned 1..10 in fetch order.
	for i, q := range questions {
		assert.Equal(t, i+1, q.QuestionNo)
	}

	answer, err := f.answerRepo.GetByNumber(ctx, tournament.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Correct 3", answer.CorrectAnswer)
	assert.Equal(t, []string{"Wrong A", "Wrong B", "Wrong C"}, answer.SplitIncorrect())
}

func TestCreateTournamentDecodesHTMLEntities(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	f.provider.results[0].Question = "What&#039;s the &quot;answer&quot;?"
	f.provider.results[0].CorrectAnswer = "Rock &amp; Roll"
	f.provider.results[0].IncorrectAnswers = []string{"Wrong &gt; A", "Wrong B", "Wrong C"}

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)

	question, err := f.questionRepo.GetByNumber(ctx, tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, `What's the "answer"?`, question.Text)

	answer, err := f.answerRepo.GetByNumber(ctx, tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rock & Roll", answer.CorrectAnswer)
	assert.Equal(t, []string{"Wrong > A", "Wrong B", "Wrong C"}, answer.SplitIncorrect())
}

func TestCreateTournamentValidation(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()
	today := time.Now()

	tests := []struct {
		name    string
		mutate  func(*CreateTournamentInput)
		wantErr error
	}{
		{"empty name", func(in *CreateTournamentInput) { in.Name = "  " }, ErrTournamentNameRequired},
		{"unparseable start date", func(in *CreateTournamentInput) { in.StartDate = "03/15/2026" }, ErrTournamentInvalidDates},
		{"unparseable end date", func(in *CreateTournamentInput) { in.EndDate = "soon" }, ErrTournamentInvalidDates},
		{"end before start", func(in *CreateTournamentInput) {
			in.StartDate = today.AddDate(0, 0, 5).Format("2006-01-02")
			in.EndDate = today.AddDate(0, 0, 2).Format("2006-01-02")
		}, ErrTournamentInvalidDates},
		{"start in the past", func(in *CreateTournamentInput) {
			in.StartDate = today.AddDate(0, 0, -1).Format("2006-01-02")
		}, ErrTournamentStartInPast},
		{"unknown category", func(in *CreateTournamentInput) { in.Category = "99" }, ErrInvalidCategory},
		{"unknown difficulty", func(in *CreateTournamentInput) { in.Difficulty = "impossible" }, ErrInvalidDifficulty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)

			_, err := f.service.Create(ctx, input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Nothing was persisted by any failed attempt.
	all, err := f.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTournamentWildcards(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	input := validCreateInput()
	input.Category = "0"
	input.Difficulty = "0"

	_, err := f.service.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "0", f.provider.lastCategory)
	assert.Equal(t, "0", f.provider.lastDifficulty)
}

func TestCreateTournamentNoQuestions(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	f.provider.err = trivia.ErrNoQuestions
	_, err := f.service.Create(ctx, validCreateInput())
	assert.ErrorIs(t, err, ErrNoQuestionsFound)

	f.provider.err = nil
	f.provider.results = makeTriviaResults(7)
	_, err = f.service.Create(ctx, validCreateInput())
	assert.ErrorIs(t, err, ErrNoQuestionsFound)
}

func TestListForAdminBucketsByStatus(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()
	today := time.Now()

	seed := func(name string, startOffset, endOffset int) {
		require.NoError(t, f.tournamentRepo.Create(ctx, nil, &models.Tournament{
			Name:      name,
			StartDate: today.AddDate(0, 0, startOffset),
			EndDate:   today.AddDate(0, 0, endOffset),
		}))
	}
	seed("running", -1, 1)
	seed("soon", 3, 7)
	seed("done", -10, -5)

	list, err := f.service.ListForAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, list.All, 3)
	require.Len(t, list.Active, 1)
	require.Len(t, list.Upcoming, 1)
	require.Len(t, list.Past, 1)
	assert.Equal(t, "running", list.Active[0].Name)
	assert.Equal(t, "soon", list.Upcoming[0].Name)
	assert.Equal(t, "done", list.Past[0].Name)
}

func TestListForPlayerExcludesStartedAndCompleted(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()
	today := time.Now()

	var ids []int
	for _, name := range []string{"open", "started", "finished"} {
		tournament := &models.Tournament{
			Name:      name,
			StartDate: today.AddDate(0, 0, -1),
			EndDate:   today.AddDate(0, 0, 1),
		}
		require.NoError(t, f.tournamentRepo.Create(ctx, nil, tournament))
		ids = append(ids, tournament.ID)
	}

	const userID = 7
	require.NoError(t, f.progressRepo.Create(ctx, &models.PlayerProgress{
		UserID: userID, TournamentID: ids[1], QuestionNo: 4, Score: 2,
	}))
	require.NoError(t, f.completedRepo.Create(ctx, nil, &models.Completed{
		UserID: userID, TournamentID: ids[2], CompletedOn: today, Score: 8,
	}))

	list, err := f.service.ListForPlayer(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Active, 1)
	assert.Equal(t, "open", list.Active[0].Name)
	require.Len(t, list.Saved, 1)
	assert.Equal(t, ids[1], list.Saved[0].Progress.TournamentID)

	// Another player still sees all three.
	other, err := f.service.ListForPlayer(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, other.Active, 3)
	assert.Empty(t, other.Saved)
}

func TestDeleteTournament(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, tournament.ID))

	_, err = f.service.GetByID(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.service.Delete(ctx, tournament.ID), ErrNotFound)
}

func TestUploadLogo(t *testing.T) {
	uploader := newFakeUploader()
	f := newTournamentFixture(t, uploader)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)

	updated, err := f.service.UploadLogo(ctx, tournament.ID, "banner.png", "image/png", strings.NewReader("img-bytes"))
	require.NoError(t, err)
	require.NotNil(t, updated.LogoKey)

	wantKey := fmt.Sprintf("tournaments/%d/logo.png", tournament.ID)
	assert.Equal(t, wantKey, *updated.LogoKey)
	assert.Equal(t, "image/png", uploader.uploaded[wantKey])
	require.NotNil(t, updated.LogoURL)
	assert.Equal(t, "https://cdn.example.com/"+wantKey, *updated.LogoURL)
}

func TestUploadLogoDisabled(t *testing.T) {
	f := newTournamentFixture(t, nil)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)

	_, err = f.service.UploadLogo(ctx, tournament.ID, "banner.png", "image/png", strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestListForPlayerSavedEntriesCarryLogoURL(t *testing.T) {
	uploader := newFakeUploader()
	f := newTournamentFixture(t, uploader)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)
	_, err = f.service.UploadLogo(ctx, tournament.ID, "banner.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)

	const userID = 7
	require.NoError(t, f.progressRepo.Create(ctx, &models.PlayerProgress{
		UserID: userID, TournamentID: tournament.ID, QuestionNo: 3, Score: 2,
	}))

	list, err := f.service.ListForPlayer(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Saved, 1)
	require.NotNil(t, list.Saved[0].Tournament.LogoURL)

	wantURL := fmt.Sprintf("https://cdn.example.com/tournaments/%d/logo.png", tournament.ID)
	assert.Equal(t, wantURL, *list.Saved[0].Tournament.LogoURL)
}

func TestDeleteTournamentRemovesLogo(t *testing.T) {
	uploader := newFakeUploader()
	f := newTournamentFixture(t, uploader)
	ctx := context.Background()

	tournament, err := f.service.Create(ctx, validCreateInput())
	require.NoError(t, err)
	_, err = f.service.UploadLogo(ctx, tournament.ID, "banner.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, tournament.ID))
	require.Len(t, uploader.deleted, 1)
	assert.Equal(t, fmt.Sprintf("tournaments/%d/logo.png", tournament.ID), uploader.deleted[0])
}

func TestListQuestionsUnknownTournament(t *testing.T) {
	f := newTournamentFixture(t, nil)

	_, err := f.service.ListQuestions(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
