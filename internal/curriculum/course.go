// Package curriculum evaluates course eligibility over a pensum.
//
// It holds the catalog index, the eligibility rules and the two-phase
// selection session used during registration. Everything here is pure and
// in-memory: callers load courses and records, build an Index, and ask for
// statuses. An Index is immutable once built and safe for concurrent reads;
// a Session is owned by one caller at a time.
package curriculum

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SlotSeparator joins a repeatable course code with its slot number, as in
// "167396-1#2" for the second free-elective slot.
const SlotSeparator = "#"

// Course is one catalog entry.
type Course struct {
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Credits           int      `json:"credits"`
	Semester          int      `json:"semester"`
	PrerequisiteCodes []string `json:"prerequisite_codes"`
	RequiredCredits   int      `json:"required_credits"`
}

// Validate checks the structural rules every catalog course must satisfy.
func (c Course) Validate() error {
	switch {
	case strings.TrimSpace(c.Code) == "":
		return fmt.Errorf("%w: empty code", ErrInvalidCourse)
	case strings.Contains(c.Code, SlotSeparator):
		return fmt.Errorf("%w: code %q contains %q", ErrInvalidCourse, c.Code, SlotSeparator)
	case c.Credits <= 0:
		return fmt.Errorf("%w: %s has non-positive credits", ErrInvalidCourse, c.Code)
	case c.Semester <= 0:
		return fmt.Errorf("%w: %s has non-positive semester", ErrInvalidCourse, c.Code)
	case c.RequiredCredits < 0:
		return fmt.Errorf("%w: %s has negative required credits", ErrInvalidCourse, c.Code)
	}
	for _, p := range c.PrerequisiteCodes {
		if p == c.Code {
			return fmt.Errorf("%w: %s lists itself as prerequisite", ErrInvalidCourse, c.Code)
		}
	}
	return nil
}

// ValidateCatalog validates every course and reports the first failure.
func ValidateCatalog(courses []Course) error {
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SlotCode returns the code for slot n of a repeatable course. Slot 1 is
// the base code itself.
func SlotCode(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + SlotSeparator + strconv.Itoa(n)
}

// BaseCode strips a slot suffix. Codes without a valid suffix are returned
// unchanged.
func BaseCode(code string) string {
	base, _, ok := splitSlot(code)
	if !ok {
		return code
	}
	return base
}

func splitSlot(code string) (string, int, bool) {
	i := strings.LastIndex(code, SlotSeparator)
	if i <= 0 {
		return code, 1, false
	}
	n, err := strconv.Atoi(code[i+len(SlotSeparator):])
	if err != nil || n < 2 {
		return code, 1, false
	}
	return code[:i], n, true
}

// CodeSet is a set of course codes. The zero value is an empty read-only set.
type CodeSet map[string]struct{}

func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

func (s CodeSet) Add(code string)    { s[code] = struct{}{} }
func (s CodeSet) Remove(code string) { delete(s, code) }

func (s CodeSet) Clone() CodeSet {
	out := make(CodeSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s CodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// State is a student's approved and in-progress course codes.
type State struct {
	Approved   CodeSet
	InProgress CodeSet
}

func NewState(approved, inProgress []string) State {
	return State{Approved: NewCodeSet(approved...), InProgress: NewCodeSet(inProgress...)}
}
