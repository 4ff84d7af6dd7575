package account

import (
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

const passwordResetTemplate = "password_reset"

var errInvalidValue = "invalid value"

// PasswordResetMessage builds the password reset email of an account.
func (g *TokenGenerator) PasswordResetMessage(role Role, id, name, email string, creds Credentials) (*core.EmailMessage, error) {
	token, err := g.MakeToken(id, creds)
	if err != nil {
		return nil, errors.Wrap(err, "making password reset token")
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      "Password Reset",
		TemplateName: passwordResetTemplate,
		TemplateData: PasswordResetData{
			Name:  name,
			Role:  role,
			UID:   EncodeUID(id),
			Token: token,
		},
	}, nil
}

// CheckReset verifies the uid & token of a password reset confirmation.
// getCreds returns the current credentials of the account with the given ID, or a not found error.
// It returns the ID of the account whose password may be reset.
func (g *TokenGenerator) CheckReset(data ResetPassword, getCreds func(id string) (Credentials, error)) (string, error) {
	id, err := DecodeUID(data.UID)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "uid", Error: errInvalidValue})
	}
	creds, err := getCreds(id)
	if err != nil {
		if core.IsNotFound(err) {
			return "", core.NewValidationError(err, core.FieldError{Field: "uid", Error: errInvalidValue})
		}
		return "", errors.Wrap(err, "getting account credentials")
	}
	if err = g.VerifyToken(id, creds, data.Token); err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "token", Error: errInvalidValue})
	}
	return id, nil
}

// ErrWrongPassword is returned when a password change is attempted with a wrong current password.
var ErrWrongPassword = core.NewValidationError(
	errors.New("wrong password"),
	core.FieldError{Field: "password", Error: "wrong password"},
)
