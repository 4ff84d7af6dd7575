package registration

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Registration is a student's request to join a club.
// StudentName, RollNumber, Email, Branch and Year are copied from the student at submission time.
type Registration struct {
	ID              string     `json:"id"`
	ClubID          string     `json:"club_id"`
	ClubName        string     `json:"club_name,omitempty"`
	StudentID       string     `json:"student_id"`
	StudentName     string     `json:"student_name"`
	RollNumber      string     `json:"roll_number"`
	Email           string     `json:"email"`
	Branch          string     `json:"branch"`
	Year            int        `json:"year"`
	Reason          string     `json:"reason"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason"`
	ReviewedAt      *time.Time `json:"reviewed_at"` // UTC
	CreatedAt       time.Time  `json:"created_at"`  // UTC
}

func (r Registration) IsPending() bool {
	return r.Status == StatusPending
}

// NewRegistration contains the information provided by a student registering for a club.
type NewRegistration struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.Reason = core.CleanString(nr.Reason)
	return validate.Struct(nr)
}

// Rejection is the payload of a registration rejection.
type Rejection struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

func (rj *Rejection) Validate(validate *validator.Validate) error {
	rj.Reason = core.CleanString(rj.Reason)
	return validate.Struct(rj)
}

type QueryFilter struct {
	ClubID    string
	StudentID string
	Status    Status
	Search    string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
}

// ExportHeader is the header row of registrations exports.
var ExportHeader = []string{"Roll Number", "Name", "Email", "Branch", "Year", "Reason", "Status", "Submitted At"}

// ExportRows renders registrations as export rows matching ExportHeader.
func ExportRows(regs []Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, []string{
			r.RollNumber,
			r.StudentName,
			r.Email,
			r.Branch,
			strconv.Itoa(r.Year),
			r.Reason,
			string(r.Status),
			r.CreatedAt.Format(time.DateOnly),
		})
	}
	return rows
}

// ReviewedData is the template data of the "registration_reviewed" email.
type ReviewedData struct {
	StudentName string
	ClubName    string
	Approved    bool
	Reason      string
}
