package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Mithesh23/kmit-club-sub001/apps/api/echo"
	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

func Test_sessionAuth(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	c := testutil.CreateClub(t, e.di.Clubs)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)

	stToken := e.token(t, account.RoleStudent, st.ID)
	clubToken := e.token(t, account.RoleClub, c.ID)
	mentorToken := e.token(t, account.RoleMentor, m.ID)

	tests := []httpTest{
		{name: "missing token", path: "/v1/students/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "garbage token", path: "/v1/students/me", token: "lol", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken)},
		{name: "student ok", path: "/v1/students/me", token: stToken, wantData: marshalObj(t, st)},
		{name: "club on student endpoint", path: "/v1/students/me", token: clubToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "mentor on student endpoint", path: "/v1/students/me", token: mentorToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "student on club endpoint", path: "/v1/club/me", token: stToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "club ok", path: "/v1/club/me", token: clubToken, wantData: marshalObj(t, c)},
		{name: "student on mentor endpoint", path: "/v1/mentor/me", token: stToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "mentor ok", path: "/v1/mentor/me", token: mentorToken, wantData: marshalObj(t, m)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, e)
		})
	}
}

func Test_sessionTokenHeader(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)

	req := newAuthRequest(http.MethodGet, "/v1/students/me", "")
	req.Header.Set("X-Session-Token", e.token(t, account.RoleStudent, st.ID))
	rec := e.do(req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, st)}, rec)
}

func Test_tokenWithoutSession(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)

	// validly signed, but the session does not exist
	now := core.Now()
	sess := session.Session{ID: "unknown", Role: account.RoleStudent, SubjectID: st.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	token, err := GenerateToken(e.conf, sess)
	require.NoError(t, err)

	httpTest{
		path: "/v1/students/me", token: token,
		wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken),
	}.run(t, e)
}

func Test_logout(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	token := e.token(t, account.RoleStudent, st.ID)

	httpTest{method: http.MethodPost, path: "/v1/students/logout", token: token, wantCode: http.StatusNoContent}.run(t, e)
	httpTest{
		path: "/v1/students/me", token: token,
		wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken),
	}.run(t, e)
}

func Test_deactivatedAccount(t *testing.T) {
	e := setup(t)
	c := testutil.CreateClub(t, e.di.Clubs)
	token := e.token(t, account.RoleClub, c.ID)

	// sessions are closed on deactivation
	_, err := e.di.Clubs.SetActive(context.Background(), c, false)
	require.NoError(t, err)
	httpTest{path: "/v1/club/me", token: token, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken)}.run(t, e)

	httpTest{
		name: "login", method: http.MethodPost, path: "/v1/clubs/login",
		body:     marshalObj(t, ClubLoginRequest{Username: c.Username, Password: testutil.Password}),
		wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: account.ErrAccountDeactivated.Error()}),
	}.run(t, e)
}

func Test_refreshToken(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)

	rec := httpTest{method: http.MethodPost, path: "/v1/students/token-refresh", token: e.token(t, account.RoleStudent, st.ID)}.run(t, e)
	var resp TokenResponse
	unmarshal(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	httpTest{path: "/v1/students/me", token: resp.Token, wantData: marshalObj(t, st)}.run(t, e)

	// refresh window elapsed
	sess, err := e.di.Sessions.Open(context.Background(), account.RoleStudent, st.ID)
	require.NoError(t, err)
	old := time.Now().Add(-e.conf.Server.JWTRefreshExpirationDelta - time.Hour).Unix()
	token, err := GenerateToken(e.conf, sess, old)
	require.NoError(t, err)
	httpTest{
		method: http.MethodPost, path: "/v1/students/token-refresh", token: token,
		wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
	}.run(t, e)
}

func Test_loginThrottling(t *testing.T) {
	e := setup(t, func(conf *core.Config) {
		conf.Server.LoginRateLimit = 0.001
		conf.Server.LoginRateBurst = 2
	})
	body := marshalObj(t, StudentLoginRequest{RollNumber: "22BD1A0501", Password: "nope"})

	for i := 0; i < 2; i++ {
		httpTest{method: http.MethodPost, path: "/v1/students/login", body: body, wantCode: http.StatusBadRequest}.run(t, e)
	}
	httpTest{
		method: http.MethodPost, path: "/v1/students/login", body: body,
		wantCode: http.StatusTooManyRequests, wantData: marshalObj(t, httpErr{Error: "too many requests, try again later"}),
	}.run(t, e)

	// authenticated endpoints are not throttled
	st := testutil.CreateStudent(t, e.di.Students)
	token := e.token(t, account.RoleStudent, st.ID)
	for i := 0; i < 3; i++ {
		rec := e.do(newAuthRequest(http.MethodGet, "/v1/students/me", token))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func Test_loginThrottling_forwardedFor(t *testing.T) {
	throttled := func(proxies ...string) func(*core.Config) {
		return func(conf *core.Config) {
			conf.Server.LoginRateLimit = 0.001
			conf.Server.LoginRateBurst = 2
			conf.Server.TrustedProxies = proxies
		}
	}
	body := marshalObj(t, StudentLoginRequest{RollNumber: "22BD1A0501", Password: "nope"})
	login := func(e *env, forwardedFor string) int {
		req := newAuthRequest(http.MethodPost, "/v1/students/login", "", body)
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		return e.do(req).Code
	}

	t.Run("ignored from untrusted peers", func(t *testing.T) {
		e := setup(t, throttled())
		codes := make([]int, 0, 10)
		for i := 0; i < 10; i++ {
			codes = append(codes, login(e, fmt.Sprintf("10.0.0.%d", i)))
		}
		assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest}, codes[:2])
		for _, code := range codes[2:] {
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
	})

	t.Run("honored from trusted proxies", func(t *testing.T) {
		// httptest requests come from 192.0.2.1
		e := setup(t, throttled("192.0.2.0/24"))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusBadRequest, login(e, fmt.Sprintf("10.0.0.%d", i)))
		}
		assert.Equal(t, http.StatusBadRequest, login(e, "10.0.0.9"))
		assert.Equal(t, http.StatusBadRequest, login(e, "10.0.0.9"))
		assert.Equal(t, http.StatusTooManyRequests, login(e, "10.0.0.9"))
	})
}
