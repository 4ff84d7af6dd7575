package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

const sessionTable = "sessions"

type sessionRow struct {
	ID        string    `db:"id"`
	Role      string    `db:"role"`
	SubjectID string    `db:"subject_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (r sessionRow) unboil() session.Session {
	return session.Session{
		ID:        r.ID,
		Role:      account.Role(r.Role),
		SubjectID: r.SubjectID,
		CreatedAt: r.CreatedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}

type sessionRepository struct {
	repository
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{repository{db: db}}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	b := psql.Insert(sessionTable).
		Columns("id", "role", "subject_id", "created_at", "expires_at").
		Values(sess.ID, string(sess.Role), sess.SubjectID, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC())
	if _, err := repo.execute(ctx, b, nil, "inserting session"); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	if !isUUID(id) {
		return session.Session{}, session.ErrNotFound
	}
	b := psql.Select("id", "role", "subject_id", "created_at", "expires_at").
		From(sessionTable).
		Where(sq.Eq{"id": id})

	var row sessionRow
	if err := repo.get(ctx, &row, b, session.ErrNotFound, "finding session"); err != nil {
		return session.Session{}, err
	}
	return row.unboil(), nil
}

func (repo *sessionRepository) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	b := psql.Update(sessionTable).Set("expires_at", expiresAt.UTC()).Where(sq.Eq{"id": id})
	return repo.mustAffect(ctx, b, session.ErrNotFound, nil, "updating session expiry")
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := repo.execute(ctx, psql.Delete(sessionTable).Where(sq.Eq{"id": id}), nil, "deleting session")
	return err
}

func (repo *sessionRepository) DeleteSubjectSessions(ctx context.Context, role account.Role, subjectID string, excludedIDs ...string) error {
	if !isUUID(subjectID) {
		return nil
	}
	b := psql.Delete(sessionTable).Where(sq.Eq{"role": string(role), "subject_id": subjectID})
	if len(excludedIDs) > 0 {
		b = b.Where("id::text <> ALL(?)", pq.Array(excludedIDs))
	}
	_, err := repo.execute(ctx, b, nil, "deleting subject sessions")
	return err
}

func (repo *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	b := psql.Delete(sessionTable).Where(sq.LtOrEq{"expires_at": now.UTC()})
	return repo.execute(ctx, b, nil, "deleting expired sessions")
}
