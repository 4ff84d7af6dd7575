package certificate

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a club's request for a participation certificate, reviewed by a mentor.
type Request struct {
	ID              string     `json:"id"`
	ClubID          string     `json:"club_id"`
	ClubName        string     `json:"club_name"`
	StudentName     string     `json:"student_name"`
	RollNumber      string     `json:"roll_number"`
	EventName       string     `json:"event_name"`
	Description     string     `json:"description"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason"`
	ReviewedBy      string     `json:"reviewed_by"` // mentor id
	ReviewedAt      *time.Time `json:"reviewed_at"` // UTC
	CreatedAt       time.Time  `json:"created_at"`  // UTC
}

func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// NewRequest contains information needed to request a certificate.
type NewRequest struct {
	StudentName string `json:"student_name" validate:"required,notblank,max=150"`
	RollNumber  string `json:"roll_number" validate:"required,rollno"`
	EventName   string `json:"event_name" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.StudentName = core.CleanString(nr.StudentName)
	nr.RollNumber = student.CleanRollNumber(nr.RollNumber)
	nr.EventName = core.CleanString(nr.EventName)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

// Rejection is the payload of a certificate request rejection. The reason is required.
type Rejection struct {
	Reason string `json:"reason" validate:"required,notblank,max=1000"`
}

func (rj *Rejection) Validate(validate *validator.Validate) error {
	rj.Reason = core.CleanString(rj.Reason)
	return validate.Struct(rj)
}

type QueryFilter struct {
	ClubID string
	Status Status
}

func (qf *QueryFilter) Clean() {
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
}

// ReviewedData is the template data of the "certificate_reviewed" email.
type ReviewedData struct {
	ClubName    string
	StudentName string
	RollNumber  string
	EventName   string
	Approved    bool
	Reason      string
}
