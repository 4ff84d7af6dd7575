package account

import (
	"testing"
	"testing/fstest"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestResetPassword_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	LoadCommonPasswords(fstest.MapFS{
		"pwds.txt": {Data: []byte("P@$$w0rd\npassword\n")},
	}, "pwds.txt", nopLogger{})

	tests := []struct {
		name string
		pwd  string
		want string
	}{
		{name: "min len", pwd: "lol", want: "password must contain at least 8 characters"},
		{name: "no whitespace", pwd: "l o loll", want: "password must not contain whitespace"},
		{name: "not all numeric", pwd: "12345678", want: "password cannot be entirely numeric"},
		{name: "complexity", pwd: "lol12345", want: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "too common", pwd: "p@$$W0rd", want: "password is too common"},
		{name: "valid", pwd: "LolC@t123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ResetPassword{Token: "t", UID: "u", Password: tt.pwd, PasswordConfirm: tt.pwd}.Validate(validate)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			msgs := make(map[string]string)
			for _, fe := range vErrs {
				msgs[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.want, msgs["password"])
		})
	}
}

func TestValidatePassword_attributesSimilarity(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	type signUp struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		data := sl.Current().Interface().(signUp)
		ValidatePassword(sl, data.Password, "password", "Password", data.Name)
	}, signUp{})

	err := validate.Struct(signUp{Name: "Ravi Teja", Password: "Ravi@Teja1"})
	require.Error(t, err)
	vErrs := err.(validator.ValidationErrors)
	assert.Equal(t, "password cannot be similar to account attributes", vErrs[0].Translate(translator))

	assert.NoError(t, validate.Struct(signUp{Name: "Ravi Teja", Password: "Kx9#mQ2!zp"}))
}

func TestCredentials_CheckPassword(t *testing.T) {
	var creds Credentials
	assert.Equal(t, ErrInvalidCredentials, creds.CheckPassword(""))

	require.NoError(t, creds.SetPassword("LolC@t123"))
	assert.NoError(t, creds.CheckPassword("LolC@t123"))
	assert.Equal(t, ErrInvalidCredentials, creds.CheckPassword("lol"))

	creds.SetUnusablePassword()
	assert.False(t, creds.HasUsablePassword())
	assert.Equal(t, ErrInvalidCredentials, creds.CheckPassword("LolC@t123"))
}
