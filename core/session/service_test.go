package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
	dummydb "github.com/Mithesh23/kmit-club-sub001/storage/database/dummy"
)

func newService(lifetime time.Duration) *session.Service {
	conf := core.NewTestConfig()
	conf.Server.JWTExpirationDelta = lifetime
	return session.NewService(dummydb.NewSessionRepository(dummydb.Open()), conf)
}

func TestService_lifecycle(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	sess, err := svc.Open(ctx, account.RoleStudent, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, account.RoleStudent, sess.Role)
	assert.WithinDuration(t, sess.CreatedAt.Add(time.Hour), sess.ExpiresAt, time.Second)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.SubjectID, got.SubjectID)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, session.ErrNotFound, err)

	extended, err := svc.Extend(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, extended.ExpiresAt.Before(sess.ExpiresAt))

	require.NoError(t, svc.Close(ctx, sess.ID))
	_, err = svc.Get(ctx, sess.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.Extend(ctx, sess.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_CloseAll(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	open := func(role account.Role, subject string) session.Session {
		sess, err := svc.Open(ctx, role, subject)
		require.NoError(t, err)
		return sess
	}
	keep := open(account.RoleClub, "c1")
	other := open(account.RoleClub, "c1")
	sameIDOtherRole := open(account.RoleStudent, "c1")
	otherClub := open(account.RoleClub, "c2")

	require.NoError(t, svc.CloseAll(ctx, account.RoleClub, "c1", keep.ID))

	live := func(id string) bool {
		_, err := svc.Get(ctx, id)
		return err == nil
	}
	assert.True(t, live(keep.ID))
	assert.False(t, live(other.ID))
	assert.True(t, live(sameIDOtherRole.ID), "sessions are scoped by role")
	assert.True(t, live(otherClub.ID))
}

func TestService_expiry(t *testing.T) {
	svc := newService(-time.Second)
	ctx := context.Background()

	sess, err := svc.Open(ctx, account.RoleMentor, "m1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, sess.ID)
	assert.True(t, core.IsNotFound(err), "expired sessions are not found")

	n, err := svc.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
