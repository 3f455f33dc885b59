package curriculum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() []Course {
	return []Course{
		{Code: "A", Name: "Cálculo Diferencial", Credits: 3, Semester: 1},
		{Code: "B", Name: "Física Mecánica", Credits: 4, Semester: 2, RequiredCredits: 3, PrerequisiteCodes: []string{"A"}},
		{Code: "C", Name: "Programación", Credits: 3, Semester: 1},
		{Code: "FE", Name: "Electiva Libre", Credits: 3, Semester: 3},
	}
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.BySemester(1))
	assert.Empty(t, idx.Semesters())
	_, err := idx.ByCode("A")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestIndexLookups(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []int{1, 2, 3}, idx.Semesters())

	first := idx.BySemester(1)
	require.Len(t, first, 2)
	assert.Equal(t, "A", first[0].Code)
	assert.Equal(t, "C", first[1].Code)

	b, err := idx.ByCode("B")
	require.NoError(t, err)
	assert.Equal(t, 4, b.Credits)
	assert.Equal(t, 13, idx.TotalCredits())
}

func TestByCodeNotFoundCarriesCode(t *testing.T) {
	idx := Build(sampleCatalog(), marker)
	_, err := idx.ByCode("ZZ")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ZZ", nf.Code)
}

func TestBuildDuplicateLastWins(t *testing.T) {
	idx := Build([]Course{
		{Code: "A", Name: "old", Credits: 2, Semester: 1},
		{Code: "B", Name: "b", Credits: 3, Semester: 1},
		{Code: "A", Name: "new", Credits: 5, Semester: 2},
	})

	assert.Equal(t, 2, idx.Len())
	a, err := idx.ByCode("A")
	require.NoError(t, err)
	assert.Equal(t, "new", a.Name)

	sem1 := idx.BySemester(1)
	require.Len(t, sem1, 1)
	assert.Equal(t, "B", sem1[0].Code)
	assert.Len(t, idx.BySemester(2), 1)
}

func TestBuildCopiesPrerequisites(t *testing.T) {
	courses := sampleCatalog()
	idx := Build(courses)
	courses[1].PrerequisiteCodes[0] = "mutated"

	b, err := idx.ByCode("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, b.PrerequisiteCodes)
}

func TestByCodeResolvesSlots(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	slot, err := idx.ByCode("FE#3")
	require.NoError(t, err)
	assert.Equal(t, "FE#3", slot.Code)
	assert.Equal(t, 3, slot.Credits)

	_, err = idx.ByCode("FE#x")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	_, err = idx.ByCode("FE#1")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.True(t, idx.Has("FE#2"))
}

func TestByCodeIgnoresSlotsOfOrdinaryCourses(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	_, err := idx.ByCode("A#2")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.False(t, idx.Has("A#2"))

	plain := Build(sampleCatalog())
	_, err = plain.ByCode("FE#2")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSlotHelpers(t *testing.T) {
	assert.Equal(t, "X", SlotCode("X", 1))
	assert.Equal(t, "X#4", SlotCode("X", 4))
	assert.Equal(t, "X", BaseCode("X#4"))
	assert.Equal(t, "X#0", BaseCode("X#0"))
	assert.Equal(t, "167396-1", BaseCode("167396-1"))
}

func TestSearchIgnoresAccentsAndCase(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	got := idx.Search("CALCULO")
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Code)

	assert.Len(t, idx.Search("mecanica"), 1)
	assert.Len(t, idx.Search("electiva"), 1)
	assert.Empty(t, idx.Search("   "))
}

func TestCourseValidate(t *testing.T) {
	valid := Course{Code: "A", Credits: 3, Semester: 1}
	require.NoError(t, valid.Validate())

	cases := map[string]Course{
		"empty code":      {Credits: 3, Semester: 1},
		"slot code":       {Code: "A#2", Credits: 3, Semester: 1},
		"zero credits":    {Code: "A", Semester: 1},
		"zero semester":   {Code: "A", Credits: 3},
		"negative credit": {Code: "A", Credits: 3, Semester: 1, RequiredCredits: -1},
		"self loop":       {Code: "A", Credits: 3, Semester: 1, PrerequisiteCodes: []string{"A"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, c.Validate(), ErrInvalidCourse)
		})
	}

	assert.ErrorIs(t, ValidateCatalog([]Course{valid, cases["self loop"]}), ErrInvalidCourse)
}
