package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
)

type Student struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	BirthDate   null.Time   `json:"birth_date"`
	Image       string      `json:"image"`
	CenterID    string      `json:"center_id"`
	ClassroomID null.String `json:"classroom_id"`
	TutorID     string      `json:"tutor_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
// A student created without a classroom gets one assigned from its center when its birth date allows it.
type NewStudent struct {
	Name        string      `json:"name" validate:"required,max=255"`
	BirthDate   null.Time   `json:"birth_date"`
	Image       string      `json:"image" validate:"omitempty,imagename"`
	CenterID    string      `json:"center_id" validate:"required"`
	ClassroomID null.String `json:"classroom_id"`
	TutorID     string      `json:"tutor_id" validate:"required"`
}

// calendarDay keeps the year, month and day of t as written by the client, at midnight UTC.
// Ages are computed from the calendar year, so the offset must not move the date.
func calendarDay(t null.Time) null.Time {
	if !t.Valid {
		return t
	}
	y, m, d := t.Time.Date()
	return null.TimeFrom(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.BirthDate = calendarDay(ns.BirthDate)
	ns.Image = core.CleanString(ns.Image)
	ns.CenterID = core.CleanString(ns.CenterID)
	ns.TutorID = core.CleanString(ns.TutorID)
	if ns.ClassroomID.Valid && core.CleanString(ns.ClassroomID.String) == "" {
		ns.ClassroomID = null.String{}
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkReferences(ctx, ns.CenterID, ns.ClassroomID, ns.TutorID)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value; an empty classroom_id unassigns the student.
type UpdateStudent struct {
	Name        string    `json:"name" validate:"required,max=255"`
	BirthDate   null.Time `json:"birth_date"`
	Image       string    `json:"image" validate:"omitempty,imagename"`
	CenterID    string    `json:"center_id" validate:"required"`
	ClassroomID *string   `json:"classroom_id"`
	TutorID     string    `json:"tutor_id" validate:"required"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc *Service) error {
	us.Name = cleanOr(us.Name, orig.Name)
	us.Image = cleanOr(us.Image, orig.Image)
	us.CenterID = cleanOr(us.CenterID, orig.CenterID)
	us.TutorID = cleanOr(us.TutorID, orig.TutorID)
	if us.BirthDate.Valid {
		us.BirthDate = calendarDay(us.BirthDate)
	} else {
		us.BirthDate = orig.BirthDate
	}
	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.checkReferences(ctx, us.CenterID, us.classroom(orig), us.TutorID)
}

// classroom resolves the classroom the student ends up in after the update.
func (us UpdateStudent) classroom(orig Student) null.String {
	switch {
	case us.ClassroomID == nil:
		return orig.ClassroomID
	case core.CleanString(*us.ClassroomID) == "":
		return null.String{}
	default:
		return null.StringFrom(core.CleanString(*us.ClassroomID))
	}
}

func cleanOr(s, orig string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return orig
}

type QueryFilter struct {
	CenterID    string
	ClassroomID string
	TutorID     string
	TeacherID   string // students of the classrooms the teacher works in
	Search      string // case-insensitive match on Name
	Unassigned  bool   // only students without classroom
	IDs         []string
}
