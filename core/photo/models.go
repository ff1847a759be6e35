package photo

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agenda/core"
)

// Photo is a picture shared with families. Image refers to an asset served by name.
type Photo struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"` // UTC
	Image     string    `json:"image"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewPhoto references an image that is already available in the asset store.
type NewPhoto struct {
	Image string    `json:"image" validate:"required,imagename"`
	Date  time.Time `json:"date"` // defaults to now
}

func (np *NewPhoto) Validate(validate *validator.Validate) error {
	np.Image = core.CleanString(np.Image)
	return validate.Struct(np)
}

type QueryFilter struct {
	TeacherID string
	DateFrom  time.Time
	DateTo    time.Time
}
