package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Mithesh23/kmit-club-sub001/apps/api/echo"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

func Test_studentApi_signUp(t *testing.T) {
	e := setup(t)
	existing := testutil.CreateStudent(t, e.di.Students)

	newStudent := func(roll, email, pwd string) []byte {
		return marshalObj(t, student.NewStudent{
			RollNumber:      roll,
			Name:            "Asha Reddy",
			Email:           email,
			Branch:          "cse",
			Year:            2,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
	}
	path := "/v1/students/signup"

	tests := []struct {
		httpTest
		wantFields []string
	}{
		{httpTest: httpTest{name: "empty", body: []byte(`{}`), wantCode: http.StatusBadRequest}, wantFields: []string{"roll_number", "name", "email", "year", "password", "password_confirm"}},
		{httpTest: httpTest{name: "bad roll number", body: newStudent("22-bd", "asha@kmit.in", testutil.Password), wantCode: http.StatusBadRequest}, wantFields: []string{"roll_number"}},
		{httpTest: httpTest{name: "weak password", body: newStudent("22BD1A0511", "asha@kmit.in", "password"), wantCode: http.StatusBadRequest}, wantFields: []string{"password"}},
		{httpTest: httpTest{name: "roll number taken", body: newStudent(existing.RollNumber, "asha@kmit.in", testutil.Password), wantCode: http.StatusBadRequest}, wantFields: []string{"roll_number"}},
		{httpTest: httpTest{name: "email taken", body: newStudent("22BD1A0511", existing.Email, testutil.Password), wantCode: http.StatusBadRequest}, wantFields: []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, path
			rec := tt.run(t, e)
			errs := fieldErrs(t, rec)
			for _, f := range tt.wantFields {
				assert.Contains(t, errs, f)
			}
		})
	}

	t.Run("ok", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPost, path: path, wantCode: http.StatusCreated,
			body: newStudent(" 22bd1a 0511 ", "Asha@KMIT.in", testutil.Password),
		}.run(t, e)

		var resp struct {
			Token   string          `json:"token"`
			Account student.Student `json:"account"`
		}
		unmarshal(t, rec, &resp)
		want := student.Student{RollNumber: "22BD1A0511", Name: "Asha Reddy", Email: "asha@kmit.in", Branch: "CSE", Year: 2, IsActive: true}
		ignore := cmpopts.IgnoreFields(student.Student{}, "ID", "Credentials", "CreatedAt", "UpdatedAt")
		if diff := cmp.Diff(want, resp.Account, ignore); diff != "" {
			t.Errorf("signUp() mismatch (-want +got):\n%s", diff)
		}
		httpTest{path: "/v1/students/me", token: resp.Token}.run(t, e)
	})
}

func Test_studentApi_login(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	path := "/v1/students/login"
	invalidCreds := marshalObj(t, httpErr{Error: account.ErrInvalidCredentials.Error()})

	tests := []httpTest{
		{name: "empty", body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{
			"roll_number": "this field is required",
			"password":    "this field is required",
		})},
		{name: "unknown", body: marshalObj(t, StudentLoginRequest{RollNumber: "99XX9X9999", Password: testutil.Password}), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "wrong password", body: marshalObj(t, StudentLoginRequest{RollNumber: st.RollNumber, Password: "Wr0ng!pass"}), wantCode: http.StatusBadRequest, wantData: invalidCreds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, path
			tt.run(t, e)
		})
	}

	t.Run("ok", func(t *testing.T) {
		rec := httpTest{method: http.MethodPost, path: path, body: marshalObj(t, StudentLoginRequest{RollNumber: st.RollNumber, Password: testutil.Password})}.run(t, e)
		var resp struct {
			Token   string          `json:"token"`
			Account student.Student `json:"account"`
		}
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, st.ID, resp.Account.ID)
		assert.False(t, resp.Account.LastLogin.IsZero())
	})
}

func Test_studentApi_update(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	other := testutil.CreateStudent(t, e.di.Students)
	token := e.token(t, account.RoleStudent, st.ID)

	rec := httpTest{method: http.MethodPut, path: "/v1/students/me", token: token, body: marshalObj(t, student.UpdateStudent{Email: other.Email}), wantCode: http.StatusBadRequest}.run(t, e)
	assert.Contains(t, fieldErrs(t, rec), "email")

	rec = httpTest{method: http.MethodPut, path: "/v1/students/me", token: token, body: marshalObj(t, student.UpdateStudent{Year: 4})}.run(t, e)
	var got student.Student
	unmarshal(t, rec, &got)
	assert.Equal(t, 4, got.Year)
	assert.Equal(t, st.Name, got.Name)
	assert.Equal(t, st.RollNumber, got.RollNumber)
}

func Test_studentApi_changePassword(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	token := e.token(t, account.RoleStudent, st.ID)
	otherToken := e.token(t, account.RoleStudent, st.ID)
	path := "/v1/students/me/password"
	newPwd := "N3w-Secr3t!x"

	rec := httpTest{method: http.MethodPost, path: path, token: token, wantCode: http.StatusBadRequest, body: marshalObj(t, account.ChangePassword{
		Password: "wrong", NewPassword: newPwd, NewPasswordConfirm: newPwd,
	})}.run(t, e)
	assert.Equal(t, map[string]string{"password": "wrong password"}, fieldErrs(t, rec))

	httpTest{method: http.MethodPost, path: path, token: token, body: marshalObj(t, account.ChangePassword{
		Password: testutil.Password, NewPassword: newPwd, NewPasswordConfirm: newPwd,
	}), wantData: marshalObj(t, SuccessResponse{Success: "Password has been changed."})}.run(t, e)

	// the current session survives, the others are closed
	httpTest{path: "/v1/students/me", token: token}.run(t, e)
	httpTest{path: "/v1/students/me", token: otherToken, wantCode: http.StatusUnauthorized}.run(t, e)

	_, err := e.di.Students.Authenticate(context.Background(), st.RollNumber, newPwd)
	assert.NoError(t, err)
}

func Test_studentApi_register(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	c := testutil.CreateClub(t, e.di.Clubs)
	closed := testutil.CreateClub(t, e.di.Clubs)
	closed, err := e.di.Clubs.SetRegistrationOpen(context.Background(), closed, false)
	require.NoError(t, err)
	token := e.token(t, account.RoleStudent, st.ID)

	path := func(c club.Club) string { return "/v1/clubs/" + c.ID + "/register" }
	body := marshalObj(t, registration.NewRegistration{Reason: "  I love it  "})

	tests := []httpTest{
		{name: "auth required", path: path(c), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "unknown club", path: "/v1/clubs/unknown/register", token: token, wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "club not found"})},
		{
			name: "registrations closed", path: path(closed), token: token, body: body, wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"club": registration.ErrClosed.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.run(t, e)
		})
	}

	rec := httpTest{method: http.MethodPost, path: path(c), token: token, body: body, wantCode: http.StatusCreated}.run(t, e)
	var reg registration.Registration
	unmarshal(t, rec, &reg)
	assert.Equal(t, registration.StatusPending, reg.Status)
	assert.Equal(t, "I love it", reg.Reason)
	assert.Equal(t, st.RollNumber, reg.RollNumber)
	assert.Equal(t, c.ID, reg.ClubID)

	httpTest{
		name: "duplicate", method: http.MethodPost, path: path(c), token: token, body: body, wantCode: http.StatusBadRequest,
		wantData: marshalObj(t, map[string]string{"club": registration.ErrAlreadyRegistered.Error()}),
	}.run(t, e)

	rec = httpTest{path: "/v1/students/me/registrations", token: token}.run(t, e)
	var regs []registration.Registration
	unmarshal(t, rec, &regs)
	require.Len(t, regs, 1)
	assert.Equal(t, reg.ID, regs[0].ID)
}

func Test_studentApi_passwordReset(t *testing.T) {
	e := setup(t)
	st := testutil.CreateStudent(t, e.di.Students)
	sent := marshalObj(t, SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	// unknown emails get the same answer
	httpTest{method: http.MethodPost, path: "/v1/students/password-reset", body: marshalObj(t, PasswordResetRequest{Email: "nobody@kmit.in"}), wantData: sent}.run(t, e)
	httpTest{method: http.MethodPost, path: "/v1/students/password-reset", body: marshalObj(t, PasswordResetRequest{Email: st.Email}), wantData: sent}.run(t, e)

	msgs := lastMessages(1)
	require.Len(t, msgs, 1)
	data, ok := msgs[0].TemplateData.(account.PasswordResetData)
	require.True(t, ok)
	assert.Equal(t, st.Email, msgs[0].To[0].Address)

	newPwd := "R3set-Pass!w"
	httpTest{method: http.MethodPost, path: "/v1/students/password-reset-confirm", body: marshalObj(t, account.ResetPassword{
		UID: data.UID, Token: "bad-token", Password: newPwd, PasswordConfirm: newPwd,
	}), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"token": "invalid value"})}.run(t, e)

	httpTest{method: http.MethodPost, path: "/v1/students/password-reset-confirm", body: marshalObj(t, account.ResetPassword{
		UID: data.UID, Token: data.Token, Password: newPwd, PasswordConfirm: newPwd,
	})}.run(t, e)

	_, err := e.di.Students.Authenticate(context.Background(), st.RollNumber, newPwd)
	assert.NoError(t, err)
}
