package classroom

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agenda/core"
)

type Classroom struct {
	ID          string    `json:"id"`
	CenterID    string    `json:"center_id"`
	Name        string    `json:"name"`
	Course      string    `json:"course"`
	MinAge      int       `json:"min_age"`
	MaxAge      int       `json:"max_age"`
	MaxCapacity int       `json:"max_capacity"`
	Image       string    `json:"image"`
	TeacherIDs  []string  `json:"teacher_ids"`
	Enrollment  int       `json:"enrollment"` // number of assigned students; derived, never stored
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (c Classroom) HasTeacher(id string) bool {
	return core.ContainsString(c.TeacherIDs, id)
}

func (c Classroom) IsFull() bool {
	return c.Enrollment >= c.MaxCapacity
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	CenterID    string   `json:"center_id" validate:"required"`
	Name        string   `json:"name" validate:"required,max=255"`
	Course      string   `json:"course" validate:"max=64"`
	MinAge      int      `json:"min_age" validate:"min=0"`
	MaxAge      int      `json:"max_age" validate:"gtefield=MinAge"`
	MaxCapacity int      `json:"max_capacity" validate:"min=1"`
	Image       string   `json:"image" validate:"omitempty,imagename"`
	TeacherIDs  []string `json:"teacher_ids" validate:"dive,required"`
}

func (nc *NewClassroom) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.CenterID = core.CleanString(nc.CenterID)
	nc.Name = core.CleanString(nc.Name)
	nc.Course = core.CleanString(nc.Course)
	nc.Image = core.CleanString(nc.Image)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkReferences(ctx, nc.CenterID, nc.TeacherIDs)
}

// UpdateClassroom defines what information may be provided to modify an existing Classroom.
// Blank or nil fields keep their current value.
type UpdateClassroom struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Course      string   `json:"course" validate:"max=64"`
	MinAge      *int     `json:"min_age" validate:"required,min=0"`
	MaxAge      *int     `json:"max_age" validate:"required"`
	MaxCapacity *int     `json:"max_capacity" validate:"required,min=1"`
	Image       string   `json:"image" validate:"omitempty,imagename"`
	TeacherIDs  []string `json:"teacher_ids" validate:"dive,required"`
}

func (uc *UpdateClassroom) Validate(ctx context.Context, orig Classroom, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if course := core.CleanString(uc.Course); course != "" {
		uc.Course = course
	} else {
		uc.Course = orig.Course
	}
	if img := core.CleanString(uc.Image); img != "" {
		uc.Image = img
	} else {
		uc.Image = orig.Image
	}
	if uc.MinAge == nil {
		uc.MinAge = &orig.MinAge
	}
	if uc.MaxAge == nil {
		uc.MaxAge = &orig.MaxAge
	}
	if uc.MaxCapacity == nil {
		uc.MaxCapacity = &orig.MaxCapacity
	}
	if uc.TeacherIDs == nil {
		uc.TeacherIDs = orig.TeacherIDs
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	if *uc.MaxAge < *uc.MinAge {
		return core.NewFieldValidationError("max_age", ErrAgeRange)
	}
	return svc.checkReferences(ctx, orig.CenterID, uc.TeacherIDs)
}

type QueryFilter struct {
	CenterID  string
	TeacherID string
	Search    string // case-insensitive match on Name or Course
	IDs       []string
	// ForUpdate locks the matching classrooms until the surrounding transaction ends.
	ForUpdate bool
}
