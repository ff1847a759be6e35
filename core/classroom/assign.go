package classroom

import (
	"sort"
	"time"
)

// AgeInYears is the difference between the calendar years of now and birth. Month and day are ignored.
func AgeInYears(birth, now time.Time) int {
	return now.Year() - birth.Year()
}

// Assign picks the classroom a child of the given age should join: candidates are ordered by
// minimum age then name, and the first whose age range contains age and which still has a free
// seat wins. It returns false when no classroom qualifies.
func Assign(age int, classrooms []Classroom) (Classroom, bool) {
	sorted := make([]Classroom, len(classrooms))
	copy(sorted, classrooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MinAge != sorted[j].MinAge {
			return sorted[i].MinAge < sorted[j].MinAge
		}
		return sorted[i].Name < sorted[j].Name
	})

	for _, c := range sorted {
		if c.MinAge <= age && age <= c.MaxAge && !c.IsFull() {
			return c, true
		}
	}
	return Classroom{}, false
}
