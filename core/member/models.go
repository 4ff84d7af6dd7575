package member

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

const PositionMember = "member"

// Member is a student belonging to a club.
// StudentID is empty for members added by hand without a student account.
type Member struct {
	ID         string    `json:"id"`
	ClubID     string    `json:"club_id"`
	StudentID  string    `json:"student_id"`
	Name       string    `json:"name"`
	RollNumber string    `json:"roll_number"`
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	JoinedAt   time.Time `json:"joined_at"` // UTC
}

// NewMember contains information needed to add a member to a club by hand.
type NewMember struct {
	Name       string `json:"name" validate:"required,notblank,max=150"`
	RollNumber string `json:"roll_number" validate:"required,rollno"`
	Email      string `json:"email" validate:"omitempty,email"`
	Position   string `json:"position" validate:"omitempty,max=50"`
}

func (nm *NewMember) Validate(ctx context.Context, clubID string, validate *validator.Validate, svc *Service) error {
	nm.Name = core.CleanString(nm.Name)
	nm.RollNumber = student.CleanRollNumber(nm.RollNumber)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Position = core.CleanString(nm.Position, true /* lower */)
	if nm.Position == "" {
		nm.Position = PositionMember
	}
	if err := validate.Struct(nm); err != nil {
		return err
	}
	return svc.checkNotMember(ctx, clubID, nm.RollNumber)
}

// UpdateMember defines what information may be provided to modify an existing Member.
type UpdateMember struct {
	Name     string `json:"name" validate:"omitempty,notblank,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Position string `json:"position" validate:"omitempty,max=50"`
}

func (um *UpdateMember) Validate(orig Member, validate *validator.Validate) error {
	if name := core.CleanString(um.Name); name != "" {
		um.Name = name
	} else {
		um.Name = orig.Name
	}
	if email := core.CleanString(um.Email, true /* lower */); email != "" {
		um.Email = email
	} else {
		um.Email = orig.Email
	}
	if pos := core.CleanString(um.Position, true /* lower */); pos != "" {
		um.Position = pos
	} else {
		um.Position = orig.Position
	}
	return validate.Struct(um)
}

type QueryFilter struct {
	Search   string
	Position string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Position = core.CleanString(qf.Position, true /* lower */)
}

// ExportHeader is the header row of members exports.
var ExportHeader = []string{"Roll Number", "Name", "Email", "Position", "Joined At"}

// ExportRows renders members as export rows matching ExportHeader.
func ExportRows(members []Member) [][]string {
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.RollNumber, m.Name, m.Email, m.Position, m.JoinedAt.Format(time.DateOnly)})
	}
	return rows
}
