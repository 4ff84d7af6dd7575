package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
	appfs "github.com/Mithesh23/kmit-club-sub001/fs"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	core.ParseEmailTemplates(appfs.FS, nopLogger{}, true)
	ClearSentMessages()
	svc := NewConsoleServiceMock(core.NewTestConfig(), nopLogger{})

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Asha", Address: "asha@kmit.in"}},
			Subject:      "Your registration",
			TemplateName: "registration_reviewed",
			TemplateData: map[string]interface{}{
				"StudentName": "Asha",
				"ClubName":    "Robotics",
				"Approved":    false,
				"Reason":      "club is full",
			},
		},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "ravi@kmit.in"}}, Subject: "plain", BodyStr: "hello"},
	)

	sent := LastSentMessages(10)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].TextContent, "Hi Asha")
	assert.Contains(t, sent[0].TextContent, "Robotics has been declined")
	assert.Contains(t, sent[0].TextContent, "Reason: club is full")
	assert.Contains(t, sent[0].HTMLContent, "Robotics")
	assert.Equal(t, "hello", sent[1].TextContent)
}

func TestConsoleService_send(t *testing.T) {
	out := new(bytes.Buffer)
	svc := consoleService{base: newBase(core.NewTestConfig(), nopLogger{}), out: out}

	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Club", Address: "club@kmit.in"}},
		Subject:     "Members",
		TextContent: "see attached",
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n"), "members.csv", "text/csv"))
	require.NoError(t, svc.send(msg))

	printed := out.String()
	assert.Contains(t, printed, "Subject: [KMIT Clubs] Members")
	assert.Contains(t, printed, "To: \"Club\" <club@kmit.in>")
	assert.Contains(t, printed, "multipart/mixed")
	assert.Contains(t, printed, "filename=members.csv")
	assert.Contains(t, printed, "see attached")
}
