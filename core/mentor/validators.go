package mentor

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

// InitValidators registers the mentor validations.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		nm := sl.Current().Interface().(NewMentor)
		account.ValidatePassword(sl, nm.Password, "password", "Password", nm.Name, nm.Email)
	}, NewMentor{})
}
