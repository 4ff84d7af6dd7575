package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

type Repository interface {
	CreateSession(ctx context.Context, sess Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	// DeleteSubjectSessions deletes all sessions of an account, except the excluded ones.
	DeleteSubjectSessions(ctx context.Context, role account.Role, subjectID string, excludedIDs ...string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	repo     Repository
	lifetime time.Duration
}

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, lifetime: conf.Server.JWTExpirationDelta}
}

func (svc *Service) Lifetime() time.Duration {
	return svc.lifetime
}

// Open starts a new session for the given account.
func (svc *Service) Open(ctx context.Context, role account.Role, subjectID string) (Session, error) {
	now := core.Now()
	sess := Session{
		ID:        uuid.New().String(),
		Role:      role,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.lifetime),
	}
	sess, err := svc.repo.CreateSession(ctx, sess)
	return sess, errors.Wrap(err, "creating session")
}

// Get returns the live session with the given ID.
// Expired sessions are reported as not found.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, ErrNotFound
	}
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.IsExpired(core.Now()) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Extend pushes the expiry of a live session by the session lifetime.
func (svc *Service) Extend(ctx context.Context, id string) (Session, error) {
	sess, err := svc.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.ExpiresAt = core.Now().Add(svc.lifetime)
	if err = svc.repo.UpdateSessionExpiry(ctx, sess.ID, sess.ExpiresAt); err != nil {
		return Session{}, errors.Wrap(err, "updating session expiry")
	}
	return sess, nil
}

// Close ends a session (logout).
func (svc *Service) Close(ctx context.Context, id string) error {
	return svc.repo.DeleteSession(ctx, id)
}

// CloseAll ends all sessions of an account, except the `keep` ones.
func (svc *Service) CloseAll(ctx context.Context, role account.Role, subjectID string, keep ...string) error {
	return svc.repo.DeleteSubjectSessions(ctx, role, subjectID, keep...)
}

// Purge deletes expired sessions and returns how many were deleted.
func (svc *Service) Purge(ctx context.Context) (int64, error) {
	return svc.repo.DeleteExpiredSessions(ctx, core.Now())
}
