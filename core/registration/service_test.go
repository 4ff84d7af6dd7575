package registration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
	dummydb "github.com/Mithesh23/kmit-club-sub001/storage/database/dummy"
)

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func setup() (*registration.Service, *member.Service, *mailRecorder) {
	db := dummydb.Open()
	members := member.NewService(dummydb.NewMemberRepository(db))
	mails := new(mailRecorder)
	svc := registration.NewService(dummydb.NewRegistrationRepository(db), members, dummydb.NewTransactor(), mails)
	return svc, members, mails
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T (%v)", err, err)
	require.NotEmpty(t, verr.Fields)
	return verr.Fields[0].Field
}

func TestService_Register(t *testing.T) {
	svc, members, _ := setup()
	ctx := context.Background()

	open := club.Club{ID: "c1", Name: "Chess", IsActive: true, RegistrationOpen: true}
	st := student.Student{ID: "s1", Name: "Asha Rao", RollNumber: "22BD1A0501", Email: "asha@students.kmit.in", Branch: "CSE", Year: 2}

	t.Run("closed club", func(t *testing.T) {
		_, err := svc.Register(ctx, club.Club{ID: "c2", IsActive: true}, st, registration.NewRegistration{})
		assert.Equal(t, "club", fieldOf(t, err))
		assert.ErrorIs(t, err.(*core.ValidationError).Err, registration.ErrClosed)
	})

	t.Run("deactivated club", func(t *testing.T) {
		_, err := svc.Register(ctx, club.Club{ID: "c3", RegistrationOpen: true}, st, registration.NewRegistration{})
		assert.Equal(t, "club", fieldOf(t, err))
	})

	t.Run("snapshot of the student", func(t *testing.T) {
		r, err := svc.Register(ctx, open, st, registration.NewRegistration{Reason: "I play chess"})
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, registration.StatusPending, r.Status)
		assert.Equal(t, "Chess", r.ClubName)
		assert.Equal(t, st.RollNumber, r.RollNumber)
		assert.Equal(t, st.Email, r.Email)
		assert.Equal(t, st.Year, r.Year)
		assert.Equal(t, "I play chess", r.Reason)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, open, st, registration.NewRegistration{})
		assert.Equal(t, registration.ErrDuplicate, err)
	})

	t.Run("already a member", func(t *testing.T) {
		other := student.Student{ID: "s2", Name: "Vikram", RollNumber: "22BD1A0502"}
		_, err := members.AddStudent(ctx, open.ID, other)
		require.NoError(t, err)

		_, err = svc.Register(ctx, open, other, registration.NewRegistration{})
		assert.Equal(t, "club", fieldOf(t, err))
		assert.ErrorIs(t, err.(*core.ValidationError).Err, registration.ErrAlreadyMember)
	})
}

func TestService_review(t *testing.T) {
	svc, members, mails := setup()
	ctx := context.Background()

	c := club.Club{ID: "c1", Name: "Chess", IsActive: true, RegistrationOpen: true}
	asha := student.Student{ID: "s1", Name: "Asha Rao", RollNumber: "22BD1A0501", Email: "asha@students.kmit.in"}
	ravi := student.Student{ID: "s2", Name: "Ravi", RollNumber: "22BD1A0503"}

	ra, err := svc.Register(ctx, c, asha, registration.NewRegistration{})
	require.NoError(t, err)
	rr, err := svc.Register(ctx, c, ravi, registration.NewRegistration{})
	require.NoError(t, err)

	t.Run("approve", func(t *testing.T) {
		r, err := svc.Approve(ctx, c, ra)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusApproved, r.Status)
		require.NotNil(t, r.ReviewedAt)

		isMember, err := members.IsMember(ctx, c.ID, asha.RollNumber)
		require.NoError(t, err)
		assert.True(t, isMember)

		require.Len(t, mails.sent, 1)
		assert.Equal(t, asha.Email, mails.sent[0].To[0].Address)
		assert.Equal(t, "registration_reviewed", mails.sent[0].TemplateName)
		assert.True(t, mails.sent[0].TemplateData.(registration.ReviewedData).Approved)

		_, err = svc.Approve(ctx, c, r)
		assert.Equal(t, "status", fieldOf(t, err))
	})

	t.Run("reject", func(t *testing.T) {
		r, err := svc.Reject(ctx, c, rr, registration.Rejection{Reason: "Club is full"})
		require.NoError(t, err)
		assert.Equal(t, registration.StatusRejected, r.Status)
		assert.Equal(t, "Club is full", r.RejectionReason)
		assert.Len(t, mails.sent, 1, "students without email are not notified")

		isMember, err := members.IsMember(ctx, c.ID, ravi.RollNumber)
		require.NoError(t, err)
		assert.False(t, isMember)
	})

	t.Run("rejected registrations can be re-submitted", func(t *testing.T) {
		r, err := svc.Register(ctx, c, ravi, registration.NewRegistration{Reason: "Please"})
		require.NoError(t, err)
		assert.Equal(t, rr.ID, r.ID)
		assert.Equal(t, registration.StatusPending, r.Status)
		assert.Empty(t, r.RejectionReason)
		assert.Nil(t, r.ReviewedAt)
	})

	t.Run("list", func(t *testing.T) {
		pending, err := svc.ListForClub(ctx, c.ID, &registration.QueryFilter{Status: registration.StatusPending}, nil)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, ravi.ID, pending[0].StudentID)

		_, err = svc.Get(ctx, "other-club", ra.ID)
		assert.True(t, core.IsNotFound(err))

		mine, err := svc.ListForStudent(ctx, asha.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, registration.StatusApproved, mine[0].Status)
	})
}

func TestService_review_staleCopies(t *testing.T) {
	svc, members, mails := setup()
	ctx := context.Background()

	c := club.Club{ID: "c1", Name: "Chess", IsActive: true, RegistrationOpen: true}
	st := student.Student{ID: "s1", Name: "Asha Rao", RollNumber: "22BD1A0501", Email: "asha@students.kmit.in"}
	r, err := svc.Register(ctx, c, st, registration.NewRegistration{})
	require.NoError(t, err)

	approving, err := svc.Get(ctx, c.ID, r.ID)
	require.NoError(t, err)
	rejecting, err := svc.Get(ctx, c.ID, r.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, c, approving)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, c, rejecting, registration.Rejection{Reason: "Club is full"})
	assert.Equal(t, "status", fieldOf(t, err))
	_, err = svc.Approve(ctx, c, rejecting)
	assert.Equal(t, "status", fieldOf(t, err))

	got, err := svc.Get(ctx, c.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusApproved, got.Status)
	assert.Empty(t, got.RejectionReason)

	isMember, err := members.IsMember(ctx, c.ID, st.RollNumber)
	require.NoError(t, err)
	assert.True(t, isMember)
	assert.Len(t, mails.sent, 1, "only the first review is notified")
}
