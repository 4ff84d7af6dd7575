package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

// Event is organised by a club, or by the institution when ClubID is empty.
type Event struct {
	ID              string       `json:"id"`
	ClubID          string       `json:"club_id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Venue           string       `json:"venue"`
	StartsAt        time.Time    `json:"starts_at"` // UTC
	EndsAt          *time.Time   `json:"ends_at"`   // UTC
	RegistrationURL string       `json:"registration_url"`
	Images          []EventImage `json:"images,omitempty"`
	CreatedAt       time.Time    `json:"created_at"` // UTC
	UpdatedAt       time.Time    `json:"updated_at"` // UTC
}

// IsInstitutionWide reports whether the event is managed by mentors.
func (e Event) IsInstitutionWide() bool {
	return e.ClubID == ""
}

// OwnedBy reports whether the event is managed by the given club.
// An empty clubID stands for the mentors.
func (e Event) OwnedBy(clubID string) bool {
	return e.ClubID == clubID
}

type EventImage struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// EventData contains the editable information of an Event.
type EventData struct {
	Title           string     `json:"title" validate:"required,notblank,max=200"`
	Description     string     `json:"description"`
	Venue           string     `json:"venue" validate:"max=200"`
	StartsAt        time.Time  `json:"starts_at" validate:"required"`
	EndsAt          *time.Time `json:"ends_at"`
	RegistrationURL string     `json:"registration_url" validate:"omitempty,url,max=500"`
}

func (ed *EventData) Clean() {
	ed.Title = core.CleanString(ed.Title)
	ed.Description = core.CleanString(ed.Description)
	ed.Venue = core.CleanString(ed.Venue)
	ed.RegistrationURL = core.CleanString(ed.RegistrationURL)
	ed.StartsAt = ed.StartsAt.UTC().Truncate(time.Microsecond)
	if ed.EndsAt != nil {
		endsAt := ed.EndsAt.UTC().Truncate(time.Microsecond)
		ed.EndsAt = &endsAt
	}
}

func (ed *EventData) Validate(validate *validator.Validate) error {
	ed.Clean()
	return validate.Struct(ed)
}

type QueryFilter struct {
	ClubID string
	// Institution restricts the results to institution-wide events.
	Institution bool
	// Upcoming restricts the results to the events that have not ended at time Now.
	Upcoming bool
	Now      time.Time
}

// UploadImage describes an uploaded event image.
type UploadImage struct {
	Caption     string
	ContentType string
}
