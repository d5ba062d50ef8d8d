package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"brainself/internal/models"
)

func question(correct string, points *int) models.TestQuestion {
	return models.TestQuestion{ID: uuid.New(), CorrectAnswer: correct, Points: points}
}

func TestScore(t *testing.T) {
	two := 2
	qs := []models.TestQuestion{
		question("a", nil),
		question("b", &two),
		question("c", nil),
		question("d", nil),
	}
	answers := models.AnswerMap{
		qs[0].ID.String(): "a",
		qs[1].ID.String(): "b",
		qs[2].ID.String(): "c",
	}

	r := Score(qs, answers)
	assert.Equal(t, 3, r.Correct)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 75, r.Percent)
	assert.Equal(t, 4, r.EarnedPoints)
	assert.Equal(t, 5, r.TotalPoints)
}

func TestScore_CaseSensitive(t *testing.T) {
	q := question("a", nil)
	r := Score([]models.TestQuestion{q}, models.AnswerMap{q.ID.String(): "A"})
	assert.Equal(t, 0, r.Correct)
	assert.Equal(t, 0, r.Percent)
}

func TestScore_EmptyTest(t *testing.T) {
	r := Score(nil, models.AnswerMap{"x": "a"})
	assert.Equal(t, Result{}, r)
}

func TestScore_Rounding(t *testing.T) {
	qs := []models.TestQuestion{question("a", nil), question("b", nil), question("c", nil)}
	r := Score(qs, models.AnswerMap{qs[0].ID.String(): "a", qs[1].ID.String(): "b"})
	// 2/3 = 66.67
	assert.Equal(t, 67, r.Percent)
}

func TestScore_AnswersForUnknownQuestionsIgnored(t *testing.T) {
	q := question("a", nil)
	r := Score([]models.TestQuestion{q}, models.AnswerMap{uuid.NewString(): "a"})
	assert.Equal(t, 0, r.Correct)
	assert.Equal(t, 1, r.Total)
}
