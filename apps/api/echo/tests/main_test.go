package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Mithesh23/kmit-club-sub001/apps/api/echo"
	"github.com/Mithesh23/kmit-club-sub001/apps/di"
	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	emailsvc "github.com/Mithesh23/kmit-club-sub001/services/email"
	filesvc "github.com/Mithesh23/kmit-club-sub001/services/files"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type env struct {
	app  Server
	conf *core.Config
	di   *di.Container
}

func setup(t *testing.T, confOverrides ...func(*core.Config)) *env {
	t.Helper()
	conf := core.NewTestConfig()
	conf.Media.Root = t.TempDir()
	for _, o := range confOverrides {
		o(conf)
	}

	logger := testutil.NopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	emailsvc.ClearSentMessages()
	container := di.NewMemory(conf, logger, mailSvc, filesvc.NewLocalStorage(conf))

	app := NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		Validate:       container.Validate,
		Translator:     container.Translator,
		DisableReqLogs: true,
		Deps: &Deps{
			Sessions:      container.Sessions,
			Students:      container.Students,
			Clubs:         container.Clubs,
			Mentors:       container.Mentors,
			Members:       container.Members,
			Registrations: container.Registrations,
			Announcements: container.Announcements,
			Events:        container.Events,
			Reports:       container.Reports,
			Certificates:  container.Certificates,
		},
	})
	return &env{app: app, conf: conf, di: container}
}

// token opens a session for the account and returns its JWT.
func (e *env) token(t *testing.T, role account.Role, id string) string {
	t.Helper()
	sess, err := e.di.Sessions.Open(context.Background(), role, id)
	require.NoError(t, err)
	token, err := GenerateToken(e.conf, sess)
	require.NoError(t, err)
	return token
}

// do runs a request against the app.
func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (tt httpTest) run(t *testing.T, e *env) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req := newAuthRequest(method, tt.path, tt.token, tt.body)
	rec := e.do(req)
	if tt.wantCode == 0 {
		tt.wantCode = http.StatusOK
	}
	checkCodeAndData(t, tt, rec)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData checks the response code and, if wantData is set, the response body.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code; body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func fieldErrs(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var errs map[string]string
	unmarshal(t, rec, &errs)
	return errs
}

// lastMessages returns the last n emails sent by the console mock.
func lastMessages(n int) []core.EmailMessage {
	return emailsvc.LastSentMessages(n)
}

// sentCount returns the number of emails sent since setup.
func sentCount() int {
	return len(emailsvc.LastSentMessages(1 << 20))
}
