package student

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

type Student struct {
	ID         string `json:"id"`
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Branch     string `json:"branch"`
	Year       int    `json:"year"`
	IsActive   bool   `json:"is_active"`
	account.Credentials
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s Student) Person() core.Person {
	return core.Person{ID: s.ID, Username: s.RollNumber, Email: s.Email}
}

// NewStudent contains information needed to sign up a new Student.
type NewStudent struct {
	RollNumber      string `json:"roll_number" validate:"required,rollno"`
	Name            string `json:"name" validate:"required,notblank,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Branch          string `json:"branch" validate:"omitempty,max=50"`
	Year            int    `json:"year" validate:"required,min=1,max=4"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Clean() {
	ns.RollNumber = CleanRollNumber(ns.RollNumber)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Branch = strings.ToUpper(core.CleanString(ns.Branch))
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.RollNumber, ns.Email)
}

// ImportStudent is a row of a bulk import. Imported students have no usable password.
type ImportStudent struct {
	RollNumber string `json:"roll_number" validate:"required,rollno"`
	Name       string `json:"name" validate:"required,notblank,max=150"`
	Email      string `json:"email" validate:"required,email"`
	Branch     string `json:"branch" validate:"omitempty,max=50"`
	Year       int    `json:"year" validate:"required,min=1,max=4"`
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name   string `json:"name" validate:"omitempty,notblank,max=150"`
	Email  string `json:"email" validate:"omitempty,email"`
	Branch string `json:"branch" validate:"omitempty,max=50"`
	Year   int    `json:"year" validate:"omitempty,min=1,max=4"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if branch := strings.ToUpper(core.CleanString(us.Branch)); branch != "" {
		us.Branch = branch
	} else {
		us.Branch = orig.Branch
	}
	if us.Year == 0 {
		us.Year = orig.Year
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, orig.RollNumber, us.Email, orig.ID)
}

type GetFilter struct {
	ID         string
	RollNumber string
	Email      string
}

type QueryFilter struct {
	Search   string
	Branch   string
	Year     int
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Branch = strings.ToUpper(core.CleanString(qf.Branch))
}

// CleanRollNumber normalizes roll numbers: no whitespace, upper case.
func CleanRollNumber(rollNumber string) string {
	return strings.ToUpper(strings.Join(strings.Fields(rollNumber), ""))
}
