package record

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// DailyRecord is the care log of one student for one day.
type DailyRecord struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	Date             time.Time `json:"date"`
	Breakfast        bool      `json:"breakfast"`
	Snack            bool      `json:"snack"`
	FirstCourse      bool      `json:"first_course"`
	SecondCourse     bool      `json:"second_course"`
	Dessert          bool      `json:"dessert"`
	WipesRemaining   int       `json:"wipes_remaining"`   // %
	DiapersRemaining int       `json:"diapers_remaining"` // %
	Napped           bool      `json:"napped"`
	NapStart         null.Time `json:"nap_start"`
	NapEnd           null.Time `json:"nap_end"`
	Comments         string    `json:"comments"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

type NewRecord struct {
	StudentID        string    `json:"student_id" validate:"required"`
	Date             time.Time `json:"date" validate:"required"`
	Breakfast        bool      `json:"breakfast"`
	Snack            bool      `json:"snack"`
	FirstCourse      bool      `json:"first_course"`
	SecondCourse     bool      `json:"second_course"`
	Dessert          bool      `json:"dessert"`
	WipesRemaining   int       `json:"wipes_remaining" validate:"min=0,max=100"`
	DiapersRemaining int       `json:"diapers_remaining" validate:"min=0,max=100"`
	Napped           bool      `json:"napped"`
	NapStart         null.Time `json:"nap_start"`
	NapEnd           null.Time `json:"nap_end"`
	Comments         string    `json:"comments"`
}

// UpdateRecord replaces every care field of a record; nil fields keep their current value.
type UpdateRecord struct {
	Date             *time.Time `json:"date"`
	Breakfast        *bool      `json:"breakfast"`
	Snack            *bool      `json:"snack"`
	FirstCourse      *bool      `json:"first_course"`
	SecondCourse     *bool      `json:"second_course"`
	Dessert          *bool      `json:"dessert"`
	WipesRemaining   *int       `json:"wipes_remaining" validate:"omitempty,min=0,max=100"`
	DiapersRemaining *int       `json:"diapers_remaining" validate:"omitempty,min=0,max=100"`
	Napped           *bool      `json:"napped"`
	NapStart         null.Time  `json:"nap_start"`
	NapEnd           null.Time  `json:"nap_end"`
	Comments         *string    `json:"comments"`
}

type QueryFilter struct {
	StudentID   string
	ClassroomID string
	TutorID     string // records of the tutor's students
	TeacherID   string // records of the students of the teacher's classrooms
	DateFrom    time.Time
	DateTo      time.Time
}
