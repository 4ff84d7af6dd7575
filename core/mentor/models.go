package mentor

import (
	"time"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

// Mentor is a faculty member overseeing clubs.
type Mentor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active"`
	account.Credentials
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (m Mentor) Person() core.Person {
	return core.Person{ID: m.ID, Username: m.Email, Email: m.Email}
}

// NewMentor contains information needed to create a new Mentor.
type NewMentor struct {
	Name       string `json:"name" validate:"required,notblank,max=150"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Password   string `json:"password" validate:"required"`
}

func (nm *NewMentor) Clean() {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Department = core.CleanString(nm.Department)
}

type GetFilter struct {
	ID    string
	Email string
}
