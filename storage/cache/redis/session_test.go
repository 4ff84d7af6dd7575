package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

func newTestRepo(t *testing.T) (*sessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client).(*sessionRepository), mr
}

func newSession(role account.Role, subjectID string, lifetime time.Duration) session.Session {
	now := core.Now()
	return session.Session{
		ID:        uuid.New().String(),
		Role:      role,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

func TestSessionRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	sess := newSession(account.RoleStudent, uuid.New().String(), time.Hour)
	_, err := repo.CreateSession(ctx, sess)
	require.NoError(t, err)

	got, err := repo.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Role, got.Role)
	assert.Equal(t, sess.SubjectID, got.SubjectID)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	ttl := mr.TTL(sessionKey(sess.ID))
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "unexpected ttl %v", ttl)

	mr.FastForward(time.Hour + time.Second)
	_, err = repo.GetSession(ctx, sess.ID)
	assert.Equal(t, session.ErrNotFound, err)
}

func TestSessionRepository_CreateExpired(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	sess := newSession(account.RoleClub, uuid.New().String(), -time.Minute)
	_, err := repo.CreateSession(ctx, sess)
	require.NoError(t, err)

	_, err = repo.GetSession(ctx, sess.ID)
	assert.Equal(t, session.ErrNotFound, err)
}

func TestSessionRepository_UpdateExpiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	sess := newSession(account.RoleMentor, uuid.New().String(), time.Minute)
	_, err := repo.CreateSession(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateSessionExpiry(ctx, sess.ID, core.Now().Add(time.Hour)))
	mr.FastForward(2 * time.Minute)
	_, err = repo.GetSession(ctx, sess.ID)
	assert.NoError(t, err)

	assert.Equal(t, session.ErrNotFound, repo.UpdateSessionExpiry(ctx, uuid.New().String(), core.Now()))
}

func TestSessionRepository_UpdateExpiry_closedMeanwhile(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	sess := newSession(account.RoleStudent, uuid.New().String(), time.Minute)
	_, err := repo.CreateSession(ctx, sess)
	require.NoError(t, err)

	// the session is closed after it was read for the update
	repo.nowFn = func() time.Time {
		mr.Del(sessionKey(sess.ID))
		return core.Now()
	}
	err = repo.UpdateSessionExpiry(ctx, sess.ID, core.Now().Add(time.Hour))
	assert.Equal(t, session.ErrNotFound, err)
	assert.False(t, mr.Exists(sessionKey(sess.ID)), "closed sessions are not recreated")
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	subjectID := uuid.New().String()
	sess1 := newSession(account.RoleStudent, subjectID, time.Hour)
	sess2 := newSession(account.RoleStudent, subjectID, time.Hour)
	sess3 := newSession(account.RoleStudent, subjectID, time.Hour)
	other := newSession(account.RoleClub, subjectID, time.Hour)
	for _, sess := range []session.Session{sess1, sess2, sess3, other} {
		_, err := repo.CreateSession(ctx, sess)
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteSession(ctx, sess1.ID))
	_, err := repo.GetSession(ctx, sess1.ID)
	assert.Equal(t, session.ErrNotFound, err)
	assert.NoError(t, repo.DeleteSession(ctx, sess1.ID), "deleting twice is a no-op")

	members, err := mr.Members(subjectKey(account.RoleStudent, subjectID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{sess2.ID, sess3.ID}, members)

	require.NoError(t, repo.DeleteSubjectSessions(ctx, account.RoleStudent, subjectID, sess3.ID))
	_, err = repo.GetSession(ctx, sess2.ID)
	assert.Equal(t, session.ErrNotFound, err)
	_, err = repo.GetSession(ctx, sess3.ID)
	assert.NoError(t, err, "excluded session is kept")
	_, err = repo.GetSession(ctx, other.ID)
	assert.NoError(t, err, "sessions of other roles are kept")
}

func TestSessionRepository_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	subjectID := uuid.New().String()
	short := newSession(account.RoleStudent, subjectID, time.Minute)
	long := newSession(account.RoleStudent, subjectID, time.Hour)
	for _, sess := range []session.Session{short, long} {
		_, err := repo.CreateSession(ctx, sess)
		require.NoError(t, err)
	}

	mr.FastForward(2 * time.Minute)
	cnt, err := repo.DeleteExpiredSessions(ctx, core.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	members, err := mr.Members(subjectKey(account.RoleStudent, subjectID))
	require.NoError(t, err)
	assert.Equal(t, []string{long.ID}, members)
}
