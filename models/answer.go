package models

import "strings"

// incorrectDelimiter joins the three incorrect answers into a single text
// column. Answer texts are assumed not to contain it; no escaping is applied,
// so an answer containing '|' would not survive the round trip.
const incorrectDelimiter = "|"

// Answer holds the correct answer and the three incorrect ones for a single
// question. Exactly one Answer exists per Question.
type Answer struct {
	ID               int    `json:"id" db:"id"`
	TournamentID     int    `json:"tournament_id" db:"tournament_id"`
	QuestionID       int    `json:"question_id" db:"question_id"`
	QuestionNo       int    `json:"question_no" db:"question_no"`
	CorrectAnswer    string `json:"correct_answer" db:"correct_answer"`
	IncorrectAnswers string `json:"-" db:"incorrect_answers"`
}

// JoinIncorrect serializes an ordered incorrect-answer list for storage.
func JoinIncorrect(answers []string) string {
	return strings.Join(answers, incorrectDelimiter)
}

// SplitIncorrect returns the stored incorrect answers as an ordered list.
func (a *Answer) SplitIncorrect() []string {
	return strings.Split(a.IncorrectAnswers, incorrectDelimiter)
}

// Choices returns the four options to present for the question: the three
// incorrect answers plus the correct one. Callers shuffle; order here always
// ends with the correct answer.
func (a *Answer) Choices() []string {
	return append(a.SplitIncorrect(), a.CorrectAnswer)
}
