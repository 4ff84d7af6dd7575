package dummydb

import (
	"context"
	"slices"
	"time"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

type sessionRepository struct {
	db *table[session.Session]
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.sessions}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.rows[id]; ok {
		return *sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) UpdateSessionExpiry(_ context.Context, id string, expiresAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess, ok := repo.db.rows[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.ExpiresAt = expiresAt
	return nil
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.rows, id)
	return nil
}

func (repo *sessionRepository) DeleteSubjectSessions(_ context.Context, role account.Role, subjectID string, excludedIDs ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, sess := range repo.db.rows {
		if sess.Role == role && sess.SubjectID == subjectID && !slices.Contains(excludedIDs, id) {
			delete(repo.db.rows, id)
		}
	}
	return nil
}

func (repo *sessionRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int64
	for id, sess := range repo.db.rows {
		if sess.IsExpired(now) {
			delete(repo.db.rows, id)
			cnt++
		}
	}
	return cnt, nil
}
