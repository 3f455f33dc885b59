package curriculum

import "math"

// Progress is the header of the prerequisite map: counts per status over
// the catalog plus credit totals.
type Progress struct {
	TotalCourses      int     `json:"total_courses"`
	Approved          int     `json:"approved"`
	InProgress        int     `json:"in_progress"`
	Available         int     `json:"available"`
	Blocked           int     `json:"blocked"`
	ApprovedCredits   int     `json:"approved_credits"`
	InProgressCredits int     `json:"in_progress_credits"`
	TotalCredits      int     `json:"total_credits"`
	CompletionPercent float64 `json:"completion_percent"`
}

// SemesterView is one semester row of the prerequisite map.
type SemesterView struct {
	Semester   int            `json:"semester"`
	Courses    []CourseStatus `json:"courses"`
	Approved   int            `json:"approved"`
	InProgress int            `json:"in_progress"`
	Available  int            `json:"available"`
	Blocked    int            `json:"blocked"`
}

func (p *Progress) count(kind StatusKind) {
	switch kind {
	case StatusApproved:
		p.Approved++
	case StatusInProgress:
		p.InProgress++
	case StatusAvailable:
		p.Available++
	case StatusBlocked:
		p.Blocked++
	}
}

// Summarize counts statuses across the catalog. CompletionPercent is the
// share of catalog courses approved, rounded to one decimal.
func Summarize(state State, index *Index) Progress {
	credits := AccumulatedCredits(state, index)
	p := Progress{
		TotalCourses:    index.Len(),
		ApprovedCredits: credits,
		TotalCredits:    index.TotalCredits(),
	}
	for _, c := range index.courses {
		p.count(evaluate(c, state, credits).Kind)
	}
	for code := range state.InProgress {
		if c, err := index.ByCode(code); err == nil {
			p.InProgressCredits += c.Credits
		}
	}
	p.CompletionPercent = percent(p.Approved, p.TotalCourses)
	return p
}

// Overview evaluates every semester in ascending order.
func Overview(state State, index *Index) []SemesterView {
	credits := AccumulatedCredits(state, index)
	views := make([]SemesterView, 0, len(index.semesters))
	for _, n := range index.semesters {
		view := SemesterView{Semester: n}
		for _, pos := range index.bySemester[n] {
			c := index.courses[pos]
			st := evaluate(c, state, credits)
			view.Courses = append(view.Courses, CourseStatus{Course: c, Status: st})
			switch st.Kind {
			case StatusApproved:
				view.Approved++
			case StatusInProgress:
				view.InProgress++
			case StatusAvailable:
				view.Available++
			case StatusBlocked:
				view.Blocked++
			}
		}
		views = append(views, view)
	}
	return views
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
