package models

// Question is one of the ten questions of a tournament. Created in a batch
// at tournament creation and never edited.
type Question struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	QuestionNo   int    `json:"question_no" db:"question_no"`
	Text         string `json:"text" db:"question_text"`
}
