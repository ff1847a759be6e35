package classroom

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeInYears(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{name: "same year", birth: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), want: 0},
		{name: "birthday not reached yet still counts", birth: time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "birthday passed", birth: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "born after now", birth: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeInYears(tt.birth, now))
		})
	}
}

func TestAssign(t *testing.T) {
	full := Classroom{ID: "a", Name: "A", MinAge: 1, MaxAge: 2, MaxCapacity: 25, Enrollment: 25}
	open := Classroom{ID: "b", Name: "B", MinAge: 1, MaxAge: 3, MaxCapacity: 25, Enrollment: 10}
	toddlers := Classroom{ID: "c", Name: "Os Osos", MinAge: 2, MaxAge: 3, MaxCapacity: 25}
	toddlers2 := Classroom{ID: "d", Name: "As Xirafas", MinAge: 2, MaxAge: 3, MaxCapacity: 25}
	babies := Classroom{ID: "e", Name: "As Tartarugas", MinAge: 0, MaxAge: 1, MaxCapacity: 25}

	tests := []struct {
		name       string
		age        int
		classrooms []Classroom
		wantID     string
		wantOK     bool
	}{
		{name: "no classrooms", age: 2, wantOK: false},
		{name: "full classroom skipped", age: 2, classrooms: []Classroom{full, open}, wantID: "b", wantOK: true},
		{name: "range boundaries are inclusive", age: 3, classrooms: []Classroom{babies, open}, wantID: "b", wantOK: true},
		{name: "too old", age: 4, classrooms: []Classroom{babies, open, toddlers}, wantOK: false},
		{name: "too young", age: 0, classrooms: []Classroom{open, toddlers}, wantOK: false},
		{name: "lower min age first", age: 2, classrooms: []Classroom{toddlers, open}, wantID: "b", wantOK: true},
		{name: "same range: alphabetical", age: 2, classrooms: []Classroom{toddlers, toddlers2}, wantID: "d", wantOK: true},
		{name: "all full", age: 2, classrooms: []Classroom{full, {ID: "f", Name: "F", MinAge: 2, MaxAge: 2, MaxCapacity: 1, Enrollment: 1}}, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Assign(tt.age, tt.classrooms)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestAssign_doesNotReorderInput(t *testing.T) {
	in := []Classroom{
		{ID: "2", Name: "Z", MinAge: 2, MaxAge: 3, MaxCapacity: 5},
		{ID: "1", Name: "A", MinAge: 0, MaxAge: 1, MaxCapacity: 5},
	}
	_, _ = Assign(2, in)
	assert.Equal(t, "2", in[0].ID)
	assert.Equal(t, "1", in[1].ID)
}

// Whatever the candidates, the result is eligible, and nothing is returned only when no candidate is.
func TestAssign_resultIsAlwaysEligible(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	eligible := func(c Classroom, age int) bool {
		return c.MinAge <= age && age <= c.MaxAge && c.Enrollment < c.MaxCapacity
	}

	for i := 0; i < 500; i++ {
		n := rnd.Intn(6)
		classrooms := make([]Classroom, 0, n)
		for j := 0; j < n; j++ {
			minAge := rnd.Intn(4)
			capacity := 1 + rnd.Intn(3)
			classrooms = append(classrooms, Classroom{
				ID:          string(rune('a' + j)),
				Name:        string(rune('A' + rnd.Intn(26))),
				MinAge:      minAge,
				MaxAge:      minAge + rnd.Intn(3),
				MaxCapacity: capacity,
				Enrollment:  rnd.Intn(capacity + 1),
			})
		}
		age := rnd.Intn(6)

		got, ok := Assign(age, classrooms)
		if ok {
			if !eligible(got, age) {
				t.Fatalf("Assign(%d) returned ineligible classroom %+v", age, got)
			}
			continue
		}
		for _, c := range classrooms {
			if eligible(c, age) {
				t.Fatalf("Assign(%d) returned nothing but %+v is eligible", age, c)
			}
		}
	}
}

func TestAssign_twoYearOldScenario(t *testing.T) {
	now := time.Now()
	birth := time.Date(now.Year()-2, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	a := Classroom{ID: "A", Name: "A", MinAge: 1, MaxAge: 2, MaxCapacity: 25, Enrollment: 25}
	b := Classroom{ID: "B", Name: "B", MinAge: 1, MaxAge: 3, MaxCapacity: 25, Enrollment: 10}

	got, ok := Assign(AgeInYears(birth, now), []Classroom{a, b})
	assert.True(t, ok)
	assert.Equal(t, "B", got.ID)
}
