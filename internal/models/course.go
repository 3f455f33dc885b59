package models

import (
	"github.com/lib/pq"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
)

// Course is a pensum row. IIT and HP are the independent and practice
// hour counts printed on the official curriculum.
type Course struct {
	Code            string         `db:"code" json:"code"`
	Name            string         `db:"name" json:"name"`
	Credits         int            `db:"credits" json:"credits"`
	Semester        int            `db:"semester" json:"semester"`
	IIT             int            `db:"iit" json:"iit"`
	HP              int            `db:"hp" json:"hp"`
	Prerequisites   pq.StringArray `db:"prerequisites" json:"prerequisites"`
	RequiredCredits int            `db:"required_credits" json:"required_credits"`
}

// CourseFilter narrows catalog listings.
type CourseFilter struct {
	Semester int
	Search   string
}

func (c Course) ToCurriculum() curriculum.Course {
	prereqs := make([]string, len(c.Prerequisites))
	copy(prereqs, c.Prerequisites)
	return curriculum.Course{
		Code:              c.Code,
		Name:              c.Name,
		Credits:           c.Credits,
		Semester:          c.Semester,
		PrerequisiteCodes: prereqs,
		RequiredCredits:   c.RequiredCredits,
	}
}

// CoursesToCurriculum converts a catalog slice for curriculum.Build.
func CoursesToCurriculum(courses []Course) []curriculum.Course {
	out := make([]curriculum.Course, len(courses))
	for i, c := range courses {
		out[i] = c.ToCurriculum()
	}
	return out
}

// CourseDetail is a catalog entry enriched with the caller's status.
type CourseDetail struct {
	Course
	Status *curriculum.Status `json:"eligibility,omitempty"`
}
