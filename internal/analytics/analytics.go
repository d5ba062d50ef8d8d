// Package analytics считает сводную статистику успеваемости по уже загруженным строкам.
// Все функции чистые: одинаковый вход дает побитово одинаковый результат.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Trend направление изменения оценок
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Band буквенная группа среднего балла
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
	BandF Band = "F"
)

const (
	trendWindow    = 3
	trendThreshold = 5.0

	atRiskBelow   = 50
	excellentFrom = 85
	highMarkFrom  = 80
)

// Mark одна оценка ученика
type Mark struct {
	Subject   string
	Marks     int
	CreatedAt time.Time
}

// Session одна учебная сессия
type Session struct {
	DurationMinutes int
	StartedAt       time.Time
}

// StudentInput строки одного ученика. Marks упорядочены от новых к старым.
type StudentInput struct {
	ID                 uuid.UUID
	Nickname           string
	RegistrationNumber string
	GradeLevel         string
	Marks              []Mark
	Sessions           []Session
	CourseProgress     []int
}

// StudentOverview сводка по ученику. AvgMarks == nil означает отсутствие оценок.
type StudentOverview struct {
	ID                 uuid.UUID      `json:"id"`
	Nickname           string         `json:"nickname"`
	RegistrationNumber string         `json:"registration_number,omitempty"`
	GradeLevel         string         `json:"grade_level,omitempty"`
	AvgMarks           *int           `json:"avg_marks"`
	SubjectPerformance map[string]int `json:"subject_performance"`
	Trend              Trend          `json:"improvement_trend"`
	Band               Band           `json:"band,omitempty"`
	TotalTests         int            `json:"total_tests"`
	TotalStudyMinutes  int            `json:"total_study_time"`
	CompletedCourses   int            `json:"completed_courses"`
	LastActivity       *time.Time     `json:"last_activity,omitempty"`
	Active             bool           `json:"active"`
	AtRisk             bool           `json:"at_risk"`
	Excellent          bool           `json:"excellent"`
}

// HasData сообщает, есть ли у ученика оценки
func (s StudentOverview) HasData() bool { return s.AvgMarks != nil }

// Round округляет половину вверх
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Average возвращает округленное среднее или nil для пустого набора
func Average(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	avg := Round(mean(values))
	return &avg
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// TrendOf сравнивает окно последних оценок с окном самых старых.
// Окна размера min(3, n) могут пересекаться при n < 6.
func TrendOf(recentFirst []int) Trend {
	n := len(recentFirst)
	if n < 2 {
		return TrendStable
	}
	w := trendWindow
	if n < w {
		w = n
	}
	recentAvg := mean(recentFirst[:w])
	olderAvg := mean(recentFirst[n-w:])
	switch {
	case recentAvg > olderAvg+trendThreshold:
		return TrendUp
	case recentAvg < olderAvg-trendThreshold:
		return TrendDown
	}
	return TrendStable
}

// BandOf относит средний балл к группе; без данных группы нет
func BandOf(avg *int) Band {
	if avg == nil {
		return ""
	}
	switch {
	case *avg >= 80:
		return BandA
	case *avg >= 60:
		return BandB
	case *avg >= 40:
		return BandC
	}
	return BandF
}

// Overview считает сводку по одному ученику
func Overview(in StudentInput) StudentOverview {
	values := make([]int, 0, len(in.Marks))
	bySubject := make(map[string][]int)
	for _, m := range in.Marks {
		values = append(values, m.Marks)
		bySubject[m.Subject] = append(bySubject[m.Subject], m.Marks)
	}

	perf := make(map[string]int, len(bySubject))
	for subject, ms := range bySubject {
		perf[subject] = *Average(ms)
	}

	out := StudentOverview{
		ID:                 in.ID,
		Nickname:           in.Nickname,
		RegistrationNumber: in.RegistrationNumber,
		GradeLevel:         in.GradeLevel,
		AvgMarks:           Average(values),
		SubjectPerformance: perf,
		Trend:              TrendOf(values),
		TotalTests:         len(in.Marks),
		Active:             len(in.Sessions) > 0,
	}
	out.Band = BandOf(out.AvgMarks)
	if out.AvgMarks != nil {
		out.AtRisk = *out.AvgMarks < atRiskBelow
		out.Excellent = *out.AvgMarks >= excellentFrom
	}

	for _, s := range in.Sessions {
		out.TotalStudyMinutes += s.DurationMinutes
		if out.LastActivity == nil || s.StartedAt.After(*out.LastActivity) {
			at := s.StartedAt
			out.LastActivity = &at
		}
	}
	for _, p := range in.CourseProgress {
		if p >= 100 {
			out.CompletedCourses++
		}
	}
	return out
}

// ClassSummary сводка по всему классу
type ClassSummary struct {
	TotalStudents           int     `json:"total_students"`
	AverageClassPerformance *int    `json:"average_class_performance"`
	TotalStudyHours         int     `json:"total_study_hours"`
	ActiveStudents          int     `json:"active_students"`
	EngagementRate          float64 `json:"engagement_rate"`
	AtRiskStudents          int     `json:"at_risk_students"`
	ExcellentStudents       int     `json:"excellent_students"`
}

// StudentRef ссылка на ученика в разборе по предметам
type StudentRef struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Marks    int       `json:"marks"`
}

// SubjectAnalysis разбор по предмету
type SubjectAnalysis struct {
	Subject      string     `json:"subject"`
	AvgMarks     int        `json:"avg_marks"`
	StudentCount int        `json:"student_count"`
	Best         StudentRef `json:"best_student"`
	Worst        StudentRef `json:"worst_student"`
}

// GradeDistribution распределение групп внутри класса (grade level)
type GradeDistribution struct {
	GradeLevel string `json:"grade_level"`
	Label      string `json:"label"`
	A          int    `json:"a"`
	B          int    `json:"b"`
	C          int    `json:"c"`
	F          int    `json:"f"`
	NoData     int    `json:"no_data"`
	Total      int    `json:"total"`
}

// Report полный результат для страницы аналитики
type Report struct {
	Students []StudentOverview   `json:"students"`
	Class    ClassSummary        `json:"class"`
	Subjects []SubjectAnalysis   `json:"subjects"`
	Grades   []GradeDistribution `json:"grades"`
}

// Summarize строит отчет по классу. Ученики в отчете упорядочены по среднему баллу
// по убыванию, ученики без оценок в конце; при равенстве сохраняется входной порядок.
func Summarize(inputs []StudentInput, gradeLabel func(string) string) Report {
	students := make([]StudentOverview, 0, len(inputs))
	for _, in := range inputs {
		students = append(students, Overview(in))
	}

	report := Report{
		Class:    summarizeClass(students),
		Subjects: analyzeSubjects(students),
		Grades:   distributeGrades(students, gradeLabel),
	}

	sorted := make([]StudentOverview, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		return avgKey(sorted[i]) > avgKey(sorted[j])
	})
	report.Students = sorted
	return report
}

func avgKey(s StudentOverview) int {
	if s.AvgMarks == nil {
		return -1
	}
	return *s.AvgMarks
}

func summarizeClass(students []StudentOverview) ClassSummary {
	out := ClassSummary{TotalStudents: len(students)}
	var avgs []int
	totalMinutes := 0
	for _, s := range students {
		totalMinutes += s.TotalStudyMinutes
		if s.Active {
			out.ActiveStudents++
		}
		if s.AvgMarks == nil {
			continue
		}
		avgs = append(avgs, *s.AvgMarks)
		if s.AtRisk {
			out.AtRiskStudents++
		}
		if s.Excellent {
			out.ExcellentStudents++
		}
	}
	out.AverageClassPerformance = Average(avgs)
	out.TotalStudyHours = Round(float64(totalMinutes) / 60)
	if out.TotalStudents > 0 {
		out.EngagementRate = float64(out.ActiveStudents) / float64(out.TotalStudents)
	}
	return out
}

func analyzeSubjects(students []StudentOverview) []SubjectAnalysis {
	type acc struct {
		values      []int
		best, worst StudentRef
	}
	bySubject := make(map[string]*acc)
	for _, s := range students {
		for _, subject := range sortedKeys(s.SubjectPerformance) {
			v := s.SubjectPerformance[subject]
			ref := StudentRef{ID: s.ID, Nickname: s.Nickname, Marks: v}
			a, ok := bySubject[subject]
			if !ok {
				bySubject[subject] = &acc{values: []int{v}, best: ref, worst: ref}
				continue
			}
			a.values = append(a.values, v)
			if v > a.best.Marks {
				a.best = ref
			}
			if v < a.worst.Marks {
				a.worst = ref
			}
		}
	}

	out := make([]SubjectAnalysis, 0, len(bySubject))
	for subject, a := range bySubject {
		out = append(out, SubjectAnalysis{
			Subject:      subject,
			AvgMarks:     *Average(a.values),
			StudentCount: len(a.values),
			Best:         a.best,
			Worst:        a.worst,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMarks != out[j].AvgMarks {
			return out[i].AvgMarks > out[j].AvgMarks
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

func distributeGrades(students []StudentOverview, label func(string) string) []GradeDistribution {
	index := make(map[string]int)
	var out []GradeDistribution
	for _, s := range students {
		i, ok := index[s.GradeLevel]
		if !ok {
			i = len(out)
			index[s.GradeLevel] = i
			l := s.GradeLevel
			if label != nil {
				l = label(s.GradeLevel)
			}
			out = append(out, GradeDistribution{GradeLevel: s.GradeLevel, Label: l})
		}
		d := &out[i]
		d.Total++
		switch s.Band {
		case BandA:
			d.A++
		case BandB:
			d.B++
		case BandC:
			d.C++
		case BandF:
			d.F++
		default:
			d.NoData++
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
