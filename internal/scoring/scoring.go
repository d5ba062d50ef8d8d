// Package scoring оценивает ответы на тест.
package scoring

import (
	"math"

	"brainself/internal/models"
)

// Result итог проверки попытки
type Result struct {
	Correct      int `json:"correct"`
	Total        int `json:"total"`
	Percent      int `json:"score"`
	EarnedPoints int `json:"earned_points"`
	TotalPoints  int `json:"total_points"`
}

// Score сравнивает ответы с правильными ключами. Совпадение точное, регистр учитывается.
// Пропущенный ответ считается неверным. Пустой тест дает 0.
func Score(questions []models.TestQuestion, answers models.AnswerMap) Result {
	var r Result
	r.Total = len(questions)
	for _, q := range questions {
		points := questionPoints(q)
		r.TotalPoints += points
		given, ok := answers[q.ID.String()]
		if ok && given == q.CorrectAnswer {
			r.Correct++
			r.EarnedPoints += points
		}
	}
	if r.Total > 0 {
		r.Percent = int(math.Floor(float64(r.Correct)/float64(r.Total)*100 + 0.5))
	}
	return r
}

func questionPoints(q models.TestQuestion) int {
	if q.Points == nil || *q.Points <= 0 {
		return 1
	}
	return *q.Points
}
