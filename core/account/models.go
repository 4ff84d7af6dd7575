package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Role string

// Roles
const (
	RoleStudent Role = "student"
	RoleClub    Role = "club"
	RoleMentor  Role = "mentor"
)

var Roles = []Role{RoleStudent, RoleClub, RoleMentor}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleClub, RoleMentor:
		return true
	}
	return false
}

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// Credentials holds what is needed to authenticate an account.
// It is embedded in every account type (students, clubs & mentors).
type Credentials struct {
	PasswordHash []byte    `json:"-"`
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (c *Credentials) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	c.PasswordHash = hash
	return nil
}

// SetUnusablePassword makes the account impossible to log into until its password is reset.
func (c *Credentials) SetUnusablePassword() {
	c.PasswordHash = nil
}

func (c *Credentials) HasUsablePassword() bool {
	return len(c.PasswordHash) > 0
}

func (c *Credentials) CheckPassword(pwd string) error {
	if !c.HasUsablePassword() {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// ResetPassword is the payload of a password reset confirmation.
type ResetPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// ChangePassword is the payload of a password change by a logged in account.
type ChangePassword struct {
	Password           string `json:"password,omitempty" validate:"required"`
	NewPassword        string `json:"new_password,omitempty" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm,omitempty" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error { return validate.Struct(cp) }

// PasswordResetData is the data rendered in the password reset email.
type PasswordResetData struct {
	Name  string
	Role  Role
	UID   string
	Token string
}
