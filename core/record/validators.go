package record

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
)

var (
	napEndTag  = "napend"
	napEndText = "nap end must not be before nap start"
)

// InitValidators registers the daily record validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(napStructValidation, NewRecord{}, UpdateRecord{})
	core.RegisterCustomTranslation(validate, translator, napEndTag, napEndText)
}

// napStructValidation checks that a nap does not end before it starts.
func napStructValidation(sl validator.StructLevel) {
	var start, end null.Time
	switch rec := sl.Current().Interface().(type) {
	case NewRecord:
		start, end = rec.NapStart, rec.NapEnd
	case UpdateRecord:
		start, end = rec.NapStart, rec.NapEnd
	}
	if start.Valid && end.Valid && end.Time.Before(start.Time) {
		sl.ReportError(end.Time, "nap_end", "NapEnd", napEndTag, "")
	}
}

func (nr *NewRecord) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.Comments = core.CleanString(nr.Comments)
	if !nr.Napped {
		nr.NapStart, nr.NapEnd = null.Time{}, null.Time{}
	}

	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.checkStudent(ctx, nr.StudentID)
}

func (ur *UpdateRecord) Validate(orig DailyRecord, validate *validator.Validate) error {
	if !ur.NapStart.Valid {
		ur.NapStart = orig.NapStart
	}
	if !ur.NapEnd.Valid {
		ur.NapEnd = orig.NapEnd
	}
	if ur.Comments != nil {
		c := core.CleanString(*ur.Comments)
		ur.Comments = &c
	}
	return validate.Struct(ur)
}
