package session

import (
	"time"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

var ErrNotFound = core.NewNotFoundError("session")

// Session is the server side state behind a session token.
// A token is only valid while its Session exists and has not expired.
type Session struct {
	ID        string       `json:"id"`
	Role      account.Role `json:"role"`
	SubjectID string       `json:"subject_id"`
	CreatedAt time.Time    `json:"created_at"` // UTC
	ExpiresAt time.Time    `json:"expires_at"` // UTC
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
