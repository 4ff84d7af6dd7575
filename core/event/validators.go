package event

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

const (
	endsAfterTag  = "endsafter"
	endsAfterText = "the event cannot end before it starts"
)

// InitValidators registers the event validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		ed := sl.Current().Interface().(EventData)
		if ed.EndsAt != nil && !ed.StartsAt.IsZero() && ed.EndsAt.Before(ed.StartsAt) {
			sl.ReportError(ed.EndsAt, "ends_at", "EndsAt", endsAfterTag, "")
		}
	}, EventData{})
	core.RegisterCustomTranslation(validate, translator, endsAfterTag, endsAfterText)
}
