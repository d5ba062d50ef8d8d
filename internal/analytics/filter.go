package analytics

import "strings"

// Performance полоса успеваемости для фильтра таблицы
type Performance string

const (
	PerformanceAll       Performance = ""
	PerformanceExcellent Performance = "excellent"
	PerformanceGood      Performance = "good"
	PerformanceAverage   Performance = "average"
	PerformanceAtRisk    Performance = "at-risk"
	PerformanceNoData    Performance = "no-data"
)

// Filter параметры фильтрации учеников
type Filter struct {
	Search      string
	GradeLevel  string
	Performance Performance
}

// PerformanceOf относит ученика к полосе фильтра
func PerformanceOf(s StudentOverview) Performance {
	if s.AvgMarks == nil {
		return PerformanceNoData
	}
	switch avg := *s.AvgMarks; {
	case avg >= excellentFrom:
		return PerformanceExcellent
	case avg >= 70:
		return PerformanceGood
	case avg >= atRiskBelow:
		return PerformanceAverage
	}
	return PerformanceAtRisk
}

// Apply оставляет учеников, подходящих под фильтр, не меняя порядок
func (f Filter) Apply(students []StudentOverview) []StudentOverview {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]StudentOverview, 0, len(students))
	for _, s := range students {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Nickname), search) &&
			!strings.Contains(strings.ToLower(s.RegistrationNumber), search) {
			continue
		}
		if f.GradeLevel != "" && s.GradeLevel != f.GradeLevel {
			continue
		}
		if f.Performance != PerformanceAll && PerformanceOf(s) != f.Performance {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MarksSummary итог по таблице оценок
type MarksSummary struct {
	Count     int  `json:"count"`
	Average   *int `json:"average"`
	HighCount int  `json:"high_count"`
}

// SummarizeMarks считает среднее и число оценок от 80
func SummarizeMarks(values []int) MarksSummary {
	out := MarksSummary{Count: len(values), Average: Average(values)}
	for _, v := range values {
		if v >= highMarkFrom {
			out.HighCount++
		}
	}
	return out
}

// SessionStats возвращает сумму и округленное среднее длительности сессий
func SessionStats(sessions []Session) (total int, avg *int) {
	durations := make([]int, 0, len(sessions))
	for _, s := range sessions {
		total += s.DurationMinutes
		durations = append(durations, s.DurationMinutes)
	}
	return total, Average(durations)
}
