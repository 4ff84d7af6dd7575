package student

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

var (
	rollNoTag   = "rollno"
	rollNoText  = "invalid roll number"
	rollNoRegex = regexp.MustCompile(`^[A-Z0-9]{6,20}$`)
)

// InitValidators registers the student validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(rollNoTag, rollNoValidation)
	core.RegisterCustomTranslation(validate, translator, rollNoTag, rollNoText)

	validate.RegisterStructValidation(newStudentValidation, NewStudent{})
}

func rollNoValidation(fl validator.FieldLevel) bool {
	return rollNoRegex.MatchString(fl.Field().String())
}

func newStudentValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewStudent)
	account.ValidatePassword(sl, ns.Password, "password", "Password", ns.Name, ns.RollNumber, ns.Email)
}
