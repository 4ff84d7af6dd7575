package club

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

// InitValidators registers the club validations.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		nc := sl.Current().Interface().(NewClub)
		account.ValidatePassword(sl, nc.Password, "password", "Password", nc.Name, nc.Username, nc.Email)
	}, NewClub{})
}
