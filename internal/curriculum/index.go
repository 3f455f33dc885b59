package curriculum

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Index groups a catalog by semester and by code.
//
// When the input holds duplicate codes the last occurrence wins and earlier
// ones are dropped from every view, including their semester group.
// Only repeatable codes resolve slot codes such as "X#3".
type Index struct {
	courses    []Course
	byCode     map[string]int
	bySemester map[int][]int
	semesters  []int
	folded     []string
	repeatable CodeSet
}

// Build indexes courses in O(n). An empty input yields an empty index.
// Repeatable codes may be taken several times, each extra time under a
// slot code (see SlotCode).
func Build(courses []Course, repeatable ...string) *Index {
	last := make(map[string]int, len(courses))
	for i, c := range courses {
		last[c.Code] = i
	}

	idx := &Index{
		courses:    make([]Course, 0, len(last)),
		byCode:     make(map[string]int, len(last)),
		bySemester: make(map[int][]int),
		folded:     make([]string, 0, len(last)),
		repeatable: NewCodeSet(repeatable...),
	}
	for i, c := range courses {
		if last[c.Code] != i {
			continue
		}
		pos := len(idx.courses)
		c.PrerequisiteCodes = append([]string(nil), c.PrerequisiteCodes...)
		idx.courses = append(idx.courses, c)
		idx.byCode[c.Code] = pos
		if _, seen := idx.bySemester[c.Semester]; !seen {
			idx.semesters = append(idx.semesters, c.Semester)
		}
		idx.bySemester[c.Semester] = append(idx.bySemester[c.Semester], pos)
		idx.folded = append(idx.folded, fold(c.Code+" "+c.Name))
	}
	sort.Ints(idx.semesters)
	return idx
}

func (i *Index) Len() int { return len(i.courses) }

// ByCode returns the course for code. A slot code such as "X#3" resolves to
// course X with Code set to the slot code, provided X is repeatable.
func (i *Index) ByCode(code string) (Course, error) {
	if pos, ok := i.byCode[code]; ok {
		return i.courses[pos], nil
	}
	if base, _, ok := splitSlot(code); ok && i.repeatable.Has(base) {
		if pos, found := i.byCode[base]; found {
			c := i.courses[pos]
			c.Code = code
			return c, nil
		}
	}
	return Course{}, &NotFoundError{Code: code}
}

// Has reports whether code resolves, slot codes included.
func (i *Index) Has(code string) bool {
	_, err := i.ByCode(code)
	return err == nil
}

// BySemester returns the courses of semester n in catalog order.
func (i *Index) BySemester(n int) []Course {
	positions := i.bySemester[n]
	out := make([]Course, len(positions))
	for k, pos := range positions {
		out[k] = i.courses[pos]
	}
	return out
}

// Semesters lists the semesters that hold at least one course, ascending.
func (i *Index) Semesters() []int {
	return append([]int(nil), i.semesters...)
}

// Courses returns the deduplicated catalog in input order.
func (i *Index) Courses() []Course {
	return append([]Course(nil), i.courses...)
}

// TotalCredits sums the credits of every indexed course.
func (i *Index) TotalCredits() int {
	total := 0
	for _, c := range i.courses {
		total += c.Credits
	}
	return total
}

// Search matches term against code and name ignoring case and accents, so
// "calculo" finds "Cálculo". An empty term matches nothing.
func (i *Index) Search(term string) []Course {
	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	var out []Course
	for pos, hay := range i.folded {
		if strings.Contains(hay, needle) {
			out = append(out, i.courses[pos])
		}
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
