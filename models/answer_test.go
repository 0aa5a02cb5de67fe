package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncorrectAnswersRoundTrip(t *testing.T) {
	incorrect := []string{"Oh yeah!", "Whoa!", "Nyeh!"}

	answer := &Answer{IncorrectAnswers: JoinIncorrect(incorrect)}

	assert.Equal(t, "Oh yeah!|Whoa!|Nyeh!", answer.IncorrectAnswers)
	assert.Equal(t, incorrect, answer.SplitIncorrect())
}

func TestAnswerChoices(t *testing.T) {
	answer := &Answer{
		CorrectAnswer:    "Paris",
		IncorrectAnswers: JoinIncorrect([]string{"London", "Berlin", "Madrid"}),
	}

	choices := answer.Choices()
	assert.Len(t, choices, 4)
	assert.Equal(t, []string{"London", "Berlin", "Madrid", "Paris"}, choices)
}
