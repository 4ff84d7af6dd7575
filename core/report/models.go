package report

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

type Kind string

const (
	KindMinutesOfMeeting Kind = "minutes_of_meeting"
	KindEvent            Kind = "event"
	KindMonthly          Kind = "monthly"
	KindYearly           Kind = "yearly"
)

var Kinds = []Kind{KindMinutesOfMeeting, KindEvent, KindMonthly, KindYearly}

func (k Kind) IsValid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// newPayload returns a pointer to the payload type of the kind.
func (k Kind) newPayload() interface{} {
	switch k {
	case KindMinutesOfMeeting:
		return new(MinutesOfMeeting)
	case KindEvent:
		return new(EventSummary)
	case KindMonthly:
		return new(Monthly)
	case KindYearly:
		return new(Yearly)
	}
	return nil
}

type Report struct {
	ID        string          `json:"id"`
	ClubID    string          `json:"club_id"`
	Kind      Kind            `json:"kind"`
	Title     string          `json:"title"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

type (
	MinutesOfMeeting struct {
		MeetingDate string   `json:"meeting_date" validate:"required,datetime=2006-01-02"`
		Venue       string   `json:"venue" validate:"max=200"`
		Attendees   []string `json:"attendees" validate:"dive,notblank"`
		Agenda      string   `json:"agenda" validate:"required,notblank"`
		Discussion  string   `json:"discussion"`
		ActionItems []string `json:"action_items" validate:"dive,notblank"`
	}

	EventSummary struct {
		EventID      string `json:"event_id" validate:"omitempty,uuid"`
		EventName    string `json:"event_name" validate:"required,notblank,max=200"`
		EventDate    string `json:"event_date" validate:"required,datetime=2006-01-02"`
		Participants int    `json:"participants" validate:"min=0"`
		Summary      string `json:"summary" validate:"required,notblank"`
		Outcomes     string `json:"outcomes"`
	}

	Monthly struct {
		Month      int      `json:"month" validate:"required,min=1,max=12"`
		Year       int      `json:"year" validate:"required,min=2000,max=2100"`
		Activities []string `json:"activities" validate:"dive,notblank"`
		Highlights string   `json:"highlights"`
		Challenges string   `json:"challenges"`
	}

	Yearly struct {
		Year            int      `json:"year" validate:"required,min=2000,max=2100"`
		Summary         string   `json:"summary" validate:"required,notblank"`
		Achievements    []string `json:"achievements" validate:"dive,notblank"`
		EventsConducted int      `json:"events_conducted" validate:"min=0"`
		MembersCount    int      `json:"members_count" validate:"min=0"`
	}
)

// NewReport contains information needed to create a Report.
type NewReport struct {
	Kind    Kind            `json:"kind" validate:"required"`
	Title   string          `json:"title" validate:"required,notblank,max=200"`
	Payload json.RawMessage `json:"payload"`
}

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.Kind = Kind(core.CleanString(string(nr.Kind), true /* lower */))
	nr.Title = core.CleanString(nr.Title)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	if !nr.Kind.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "invalid report kind"})
	}
	payload, err := cleanPayload(nr.Kind, nr.Payload, validate)
	if err != nil {
		return err
	}
	nr.Payload = payload
	return nil
}

// UpdateReport defines what information may be provided to modify an existing Report.
// The kind of a report cannot change.
type UpdateReport struct {
	Title   string          `json:"title" validate:"required,notblank,max=200"`
	Payload json.RawMessage `json:"payload"`
}

func (ur *UpdateReport) Validate(orig Report, validate *validator.Validate) error {
	ur.Title = core.CleanString(ur.Title)
	if err := validate.Struct(ur); err != nil {
		return err
	}
	payload, err := cleanPayload(orig.Kind, ur.Payload, validate)
	if err != nil {
		return err
	}
	ur.Payload = payload
	return nil
}

// cleanPayload decodes raw into the payload type of kind, rejecting unknown fields,
// validates it and returns its normalized encoding.
func cleanPayload(kind Kind, raw json.RawMessage, validate *validator.Validate) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "payload", Error: "this field is required"})
	}

	payload := kind.newPayload()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "payload", Error: "invalid " + string(kind) + " report: " + err.Error()})
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "payload", Error: "invalid " + string(kind) + " report: unexpected data after the payload"})
	}
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

type QueryFilter struct {
	ClubID string
	Kind   Kind
}

func (qf *QueryFilter) Clean() {
	qf.Kind = Kind(core.CleanString(string(qf.Kind), true /* lower */))
}
