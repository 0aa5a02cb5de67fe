package models

import "time"

// PlayerProgress is the transient cursor of one player through one
// tournament: the next question to answer and the running score. Created
// when question 1 is answered, deleted when question 10 is.
type PlayerProgress struct {
	ID           int `json:"id" db:"id"`
	UserID       int `json:"user_id" db:"user_id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	QuestionNo   int `json:"question_no" db:"question_no"`
	Score        int `json:"score" db:"score"`
}

// Completed permanently records a finished tournament for a player,
// replacing the PlayerProgress row.
type Completed struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CompletedOn  time.Time `json:"completed_on" db:"completed_on"`
	Score        int       `json:"score" db:"score"`

	// Optional joined fields for listings.
	Username       string `json:"username,omitempty" db:"-"`
	TournamentName string `json:"tournament_name,omitempty" db:"-"`
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	PlayersTotal      int `json:"players_total"`
	TournamentsTotal  int `json:"tournaments_total"`
	ActiveTournaments int `json:"active_tournaments"`
	CompletionsTotal  int `json:"completions_total"`
}
