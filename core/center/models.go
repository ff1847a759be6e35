package center

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agenda/core"
)

type Center struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewCenter struct {
	Name        string `json:"name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32,phone"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (nc *NewCenter) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Phone = core.CleanString(nc.Phone)
	nc.Location = core.CleanString(nc.Location)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCenter defines what information may be provided to modify an existing Center.
// Blank fields keep their current value.
type UpdateCenter struct {
	Name        string `json:"name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32,phone"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (uc *UpdateCenter) Validate(orig Center, validate *validator.Validate) error {
	uc.Name = cleanOr(uc.Name, orig.Name)
	uc.Phone = cleanOr(uc.Phone, orig.Phone)
	uc.Location = cleanOr(uc.Location, orig.Location)
	uc.Description = cleanOr(uc.Description, orig.Description)
	return validate.Struct(uc)
}

func cleanOr(s, orig string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return orig
}

type QueryFilter struct {
	Search string // case-insensitive match on Name or Location
	IDs    []string
}
