package announcement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

type Announcement struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewAnnouncement contains information needed to publish an Announcement.
// Members are emailed unless Notify is explicitly false.
type NewAnnouncement struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank"`
	Notify  *bool  `json:"notify"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

func (na NewAnnouncement) ShouldNotify() bool {
	return na.Notify == nil || *na.Notify
}

// EmailData is the template data of the "announcement" email.
type EmailData struct {
	RecipientName string
	ClubName      string
	Title         string
	Content       string
}
