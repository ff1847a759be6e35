package menu

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agenda/core"
)

// Menu is the meal plan of one calendar day.
type Menu struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"` // midnight UTC
	Breakfast    string    `json:"breakfast"`
	Snack        string    `json:"snack"`
	FirstCourse  string    `json:"first_course"`
	SecondCourse string    `json:"second_course"`
	Dessert      string    `json:"dessert"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type NewMenu struct {
	Date         time.Time `json:"date" validate:"required"`
	Breakfast    string    `json:"breakfast"`
	Snack        string    `json:"snack"`
	FirstCourse  string    `json:"first_course"`
	SecondCourse string    `json:"second_course"`
	Dessert      string    `json:"dessert"`
}

func (nm *NewMenu) Validate(validate *validator.Validate) error {
	nm.Date = core.Day(nm.Date)
	nm.Breakfast = core.CleanString(nm.Breakfast)
	nm.Snack = core.CleanString(nm.Snack)
	nm.FirstCourse = core.CleanString(nm.FirstCourse)
	nm.SecondCourse = core.CleanString(nm.SecondCourse)
	nm.Dessert = core.CleanString(nm.Dessert)
	return validate.Struct(nm)
}

// UpdateMenu defines what information may be provided to modify an existing Menu.
// Blank fields keep their current value.
type UpdateMenu struct {
	Date         time.Time `json:"date"`
	Breakfast    string    `json:"breakfast"`
	Snack        string    `json:"snack"`
	FirstCourse  string    `json:"first_course"`
	SecondCourse string    `json:"second_course"`
	Dessert      string    `json:"dessert"`
}

func (um *UpdateMenu) Validate(orig Menu, validate *validator.Validate) error {
	if um.Date.IsZero() {
		um.Date = orig.Date
	}
	um.Date = core.Day(um.Date)
	for _, f := range []struct {
		dst  *string
		orig string
	}{
		{&um.Breakfast, orig.Breakfast},
		{&um.Snack, orig.Snack},
		{&um.FirstCourse, orig.FirstCourse},
		{&um.SecondCourse, orig.SecondCourse},
		{&um.Dessert, orig.Dessert},
	} {
		if *f.dst = core.CleanString(*f.dst); *f.dst == "" {
			*f.dst = f.orig
		}
	}
	return validate.Struct(um)
}

type QueryFilter struct {
	DateFrom time.Time
	DateTo   time.Time
}
