package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// marks строит оценки от новых к старым
func marks(subject string, values ...int) []Mark {
	out := make([]Mark, 0, len(values))
	for i, v := range values {
		out = append(out, Mark{Subject: subject, Marks: v, CreatedAt: base.Add(-time.Duration(i) * time.Hour)})
	}
	return out
}

func student(nick, grade string, ms []Mark, sessions ...int) StudentInput {
	in := StudentInput{ID: uuid.New(), Nickname: nick, GradeLevel: grade, Marks: ms}
	for i, d := range sessions {
		in.Sessions = append(in.Sessions, Session{DurationMinutes: d, StartedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	return in
}

func TestTrendOf(t *testing.T) {
	// от новых к старым: последние три по 90, старые три по 50
	assert.Equal(t, TrendUp, TrendOf([]int{90, 90, 90, 50, 50, 50}))
	assert.Equal(t, TrendDown, TrendOf([]int{50, 50, 50, 90, 90, 90}))
	assert.Equal(t, TrendStable, TrendOf([]int{70, 70, 70, 70, 70, 70}))
	assert.Equal(t, TrendStable, TrendOf([]int{70}))
	assert.Equal(t, TrendStable, TrendOf(nil))

	// окна пересекаются при n < 6: [80,70,60] против [70,60,50]
	assert.Equal(t, TrendUp, TrendOf([]int{80, 70, 60, 50}))
	// два элемента: окна совпадают целиком
	assert.Equal(t, TrendStable, TrendOf([]int{100, 0}))
	// порог строго больше 5
	assert.Equal(t, TrendStable, TrendOf([]int{75, 75, 75, 70, 70, 70}))
}

func TestAverageAndRound(t *testing.T) {
	assert.Nil(t, Average(nil))
	assert.Equal(t, 83, *Average([]int{82, 83, 83}))
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, 2, Round(2.49))
	assert.Equal(t, 0, *Average([]int{0}))
}

func TestBandOf(t *testing.T) {
	v := func(i int) *int { return &i }
	assert.Equal(t, Band(""), BandOf(nil))
	assert.Equal(t, BandA, BandOf(v(100)))
	assert.Equal(t, BandA, BandOf(v(80)))
	assert.Equal(t, BandB, BandOf(v(79)))
	assert.Equal(t, BandB, BandOf(v(60)))
	assert.Equal(t, BandC, BandOf(v(40)))
	assert.Equal(t, BandF, BandOf(v(39)))
	assert.Equal(t, BandF, BandOf(v(0)))
}

func TestOverview_NoDataVersusTrueZero(t *testing.T) {
	noData := Overview(student("empty", "grade_10", nil))
	assert.Nil(t, noData.AvgMarks)
	assert.False(t, noData.AtRisk)
	assert.False(t, noData.Excellent)
	assert.Equal(t, Band(""), noData.Band)

	zero := Overview(student("zero", "grade_10", marks("Maths", 0)))
	require.NotNil(t, zero.AvgMarks)
	assert.Equal(t, 0, *zero.AvgMarks)
	assert.True(t, zero.AtRisk)
	assert.Equal(t, BandF, zero.Band)
}

func TestOverview_SubjectPerformanceIsCaseSensitive(t *testing.T) {
	ms := append(marks("Maths", 90, 70), marks("maths", 40)...)
	o := Overview(student("kasun", "grade_10", ms, 30, 45))

	assert.Equal(t, map[string]int{"Maths": 80, "maths": 40}, o.SubjectPerformance)
	assert.Equal(t, 67, *o.AvgMarks)
	assert.Equal(t, 3, o.TotalTests)
	assert.Equal(t, 75, o.TotalStudyMinutes)
	assert.True(t, o.Active)
	require.NotNil(t, o.LastActivity)
	assert.Equal(t, base.Add(time.Minute), *o.LastActivity)
}

func TestSummarize_ClassAndBands(t *testing.T) {
	inputs := []StudentInput{
		student("a", "grade_10", marks("Maths", 90, 88), 60),    // 89 A excellent
		student("b", "grade_10", marks("Maths", 45), 30),        // 45 C at-risk
		student("c", "grade_11", marks("Science", 0)),           // 0 F at-risk
		student("d", "grade_11", nil),                           // нет данных
		student("e", "grade_10", marks("Science", 65, 55), 120), // 60 B
	}
	r := Summarize(inputs, func(g string) string { return "G:" + g })

	c := r.Class
	assert.Equal(t, 5, c.TotalStudents)
	require.NotNil(t, c.AverageClassPerformance)
	// (89 + 45 + 0 + 60) / 4 = 48.5
	assert.Equal(t, 49, *c.AverageClassPerformance)
	assert.Equal(t, 2, c.AtRiskStudents)
	assert.Equal(t, 1, c.ExcellentStudents)
	assert.Equal(t, 3, c.ActiveStudents)
	assert.InDelta(t, 0.6, c.EngagementRate, 1e-9)
	// 210 минут = 3.5 часа
	assert.Equal(t, 4, c.TotalStudyHours)

	require.Len(t, r.Grades, 2)
	g10 := r.Grades[0]
	assert.Equal(t, "grade_10", g10.GradeLevel)
	assert.Equal(t, "G:grade_10", g10.Label)
	assert.Equal(t, 1, g10.A)
	assert.Equal(t, 1, g10.B)
	assert.Equal(t, 1, g10.C)
	assert.Equal(t, 3, g10.Total)
	g11 := r.Grades[1]
	assert.Equal(t, 1, g11.F, "true zero is counted as F")
	assert.Equal(t, 1, g11.NoData, "no marks is not counted in any band")
	assert.Equal(t, 0, g11.A+g11.B+g11.C)

	// порядок: по убыванию среднего, без данных в конце
	var order []string
	for _, s := range r.Students {
		order = append(order, s.Nickname)
	}
	assert.Equal(t, []string{"a", "e", "b", "c", "d"}, order)
}

func TestSummarize_EmptyClass(t *testing.T) {
	r := Summarize(nil, nil)
	assert.Nil(t, r.Class.AverageClassPerformance)
	assert.Zero(t, r.Class.EngagementRate)
	assert.Empty(t, r.Students)
}

func TestSummarize_SubjectAnalysis(t *testing.T) {
	inputs := []StudentInput{
		student("a", "grade_10", marks("Maths", 90)),
		student("b", "grade_10", marks("Maths", 50)),
		student("c", "grade_10", append(marks("Maths", 90), marks("Art", 95)...)),
	}
	r := Summarize(inputs, nil)
	require.Len(t, r.Subjects, 2)

	art := r.Subjects[0]
	assert.Equal(t, "Art", art.Subject)
	assert.Equal(t, 95, art.AvgMarks)

	maths := r.Subjects[1]
	assert.Equal(t, 77, maths.AvgMarks)
	assert.Equal(t, 3, maths.StudentCount)
	assert.Equal(t, "a", maths.Best.Nickname, "first encountered wins ties")
	assert.Equal(t, "b", maths.Worst.Nickname)
}

func TestSummarize_Deterministic(t *testing.T) {
	inputs := []StudentInput{
		student("a", "grade_10", append(marks("Maths", 90, 60), marks("Science", 70)...), 10),
		student("b", "grade_9", append(marks("Science", 30), marks("History", 80)...)),
		student("c", "grade_10", marks("History", 80), 20, 25),
	}
	first, err := json.Marshal(Summarize(inputs, nil))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Summarize(inputs, nil))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestFilter_Apply(t *testing.T) {
	inputs := []StudentInput{
		student("Nimal", "grade_10", marks("Maths", 90)),
		student("Kasun", "grade_10", marks("Maths", 75)),
		student("Sahan", "grade_11", marks("Maths", 55)),
		student("Dilan", "grade_11", marks("Maths", 20)),
		student("Amaya", "grade_11", nil),
	}
	inputs[1].RegistrationNumber = "REG-007"
	students := Summarize(inputs, nil).Students

	names := func(ss []StudentOverview) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Nickname)
		}
		return out
	}

	assert.Equal(t, []string{"Nimal"}, names(Filter{Performance: PerformanceExcellent}.Apply(students)))
	assert.Equal(t, []string{"Kasun"}, names(Filter{Performance: PerformanceGood}.Apply(students)))
	assert.Equal(t, []string{"Sahan"}, names(Filter{Performance: PerformanceAverage}.Apply(students)))
	assert.Equal(t, []string{"Dilan"}, names(Filter{Performance: PerformanceAtRisk}.Apply(students)))
	assert.Equal(t, []string{"Amaya"}, names(Filter{Performance: PerformanceNoData}.Apply(students)))
	assert.Equal(t, []string{"Kasun"}, names(Filter{Search: "reg-007"}.Apply(students)))
	assert.Equal(t, []string{"Sahan", "Dilan", "Amaya"}, names(Filter{GradeLevel: "grade_11"}.Apply(students)))
}

func TestSummarizeMarksAndSessions(t *testing.T) {
	s := SummarizeMarks([]int{80, 79, 95})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 85, *s.Average)
	assert.Equal(t, 2, s.HighCount)

	assert.Nil(t, SummarizeMarks(nil).Average)

	total, avg := SessionStats([]Session{{DurationMinutes: 10}, {DurationMinutes: 25}})
	assert.Equal(t, 35, total)
	assert.Equal(t, 18, *avg)
}
