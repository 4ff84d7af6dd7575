package club

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

// SocialLinks are the club's public profiles. Empty links are not set.
type SocialLinks struct {
	Instagram string `json:"instagram" validate:"omitempty,url,max=300"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url,max=300"`
	Twitter   string `json:"twitter" validate:"omitempty,url,max=300"`
	Website   string `json:"website" validate:"omitempty,url,max=300"`
}

func (sl *SocialLinks) Clean() {
	sl.Instagram = core.CleanString(sl.Instagram)
	sl.LinkedIn = core.CleanString(sl.LinkedIn)
	sl.Twitter = core.CleanString(sl.Twitter)
	sl.Website = core.CleanString(sl.Website)
}

// Club is a student organization. Its admins log in with the club's username.
type Club struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Username         string      `json:"username"`
	Email            string      `json:"email"`
	ShortDescription string      `json:"short_description"`
	Description      string      `json:"description"`
	LogoURL          string      `json:"logo_url"`
	SocialLinks      SocialLinks `json:"social_links"`
	IsActive         bool        `json:"is_active"`
	RegistrationOpen bool        `json:"registration_open"`
	account.Credentials
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c Club) Person() core.Person {
	return core.Person{ID: c.ID, Username: c.Username, Email: c.Email}
}

// AcceptsRegistrations reports whether students can currently register to the club.
func (c Club) AcceptsRegistrations() bool {
	return c.IsActive && c.RegistrationOpen
}

// NewClub contains information needed to create a new Club.
type NewClub struct {
	Name             string `json:"name" validate:"required,notblank,max=150"`
	Username         string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Email            string `json:"email" validate:"required,email"`
	ShortDescription string `json:"short_description" validate:"omitempty,max=300"`
	Password         string `json:"password" validate:"required"`
}

func (nc *NewClub) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Username = core.CleanString(nc.Username, true /* lower */)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.ShortDescription = core.CleanString(nc.ShortDescription)
}

func (nc *NewClub) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Clean()
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nc.Name, nc.Username)
}

// UpdateClub defines the profile information a club admin may modify.
// Empty fields keep their current value, except social links which are replaced.
type UpdateClub struct {
	Name             string      `json:"name" validate:"omitempty,notblank,max=150"`
	Email            string      `json:"email" validate:"omitempty,email"`
	ShortDescription string      `json:"short_description" validate:"omitempty,max=300"`
	Description      string      `json:"description" validate:"omitempty,max=10000"`
	SocialLinks      SocialLinks `json:"social_links"`
}

func (uc *UpdateClub) Validate(ctx context.Context, orig Club, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if email := core.CleanString(uc.Email, true /* lower */); email != "" {
		uc.Email = email
	} else {
		uc.Email = orig.Email
	}
	if sd := core.CleanString(uc.ShortDescription); sd != "" {
		uc.ShortDescription = sd
	} else {
		uc.ShortDescription = orig.ShortDescription
	}
	if d := core.CleanString(uc.Description); d != "" {
		uc.Description = d
	} else {
		uc.Description = orig.Description
	}
	uc.SocialLinks.Clean()

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, uc.Name, orig.Username, orig.ID)
}

type GetFilter struct {
	ID       string
	Username string
	Email    string
}

type QueryFilter struct {
	Search           string
	IsActive         *bool
	RegistrationOpen *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
