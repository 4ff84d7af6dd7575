package certificate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/apps/di"
	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
	filesvc "github.com/Mithesh23/kmit-club-sub001/services/files"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func TestService_review(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Media.Root = t.TempDir()
	mails := new(mailRecorder)
	c := di.NewMemory(conf, testutil.NopLogger{}, mails, filesvc.NewLocalStorage(conf))
	ctx := context.Background()

	cb := testutil.CreateClub(t, c.Clubs)
	m := testutil.CreateMentor(t, c.Mentors, c.Validate)
	mails.sent = nil

	req, err := c.Certificates.Create(ctx, cb, certificate.NewRequest{StudentName: "Asha Rao", RollNumber: "22BD1A0501", EventName: "Hackathon"})
	require.NoError(t, err)

	approving, err := c.Certificates.Get(ctx, req.ID)
	require.NoError(t, err)
	rejecting, err := c.Certificates.Get(ctx, req.ID)
	require.NoError(t, err)

	approved, err := c.Certificates.Approve(ctx, m, approving)
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, approved.Status)
	assert.Equal(t, m.ID, approved.ReviewedBy)
	require.Len(t, mails.sent, 1)
	assert.Equal(t, cb.Email, mails.sent[0].To[0].Address)

	_, err = c.Certificates.Reject(ctx, m, rejecting, certificate.Rejection{Reason: "Not eligible"})
	assert.Equal(t, certificate.ErrReviewed, err)

	got, err := c.Certificates.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, got.Status)
	assert.Empty(t, got.RejectionReason)
	assert.Len(t, mails.sent, 1, "only the first review is notified")

	_, err = c.Certificates.Get(ctx, "unknown")
	assert.True(t, core.IsNotFound(err))
}
