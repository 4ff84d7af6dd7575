package tests

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/services/sheets"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

func Test_exportApi(t *testing.T) {
	e := setup(t)
	c := testutil.CreateClub(t, e.di.Clubs)
	other := testutil.CreateClub(t, e.di.Clubs)
	token := e.token(t, account.RoleClub, c.ID)

	m1 := testutil.AddMember(t, e.di.Members, c.ID, true)
	m2 := testutil.AddMember(t, e.di.Members, c.ID, false)
	testutil.AddMember(t, e.di.Members, other.ID, true)

	st := testutil.CreateStudent(t, e.di.Students)
	reg, err := e.di.Registrations.Register(context.Background(), c, st, registration.NewRegistration{Reason: "Music, and friends"})
	require.NoError(t, err)

	tests := []struct {
		name            string
		path            string
		wantType        string
		wantFilename    string
		wantRollNumbers []string
	}{
		{
			name: "members csv (default)", path: "/v1/club/exports/members?ordering=roll_number",
			wantType: "text/csv; charset=utf-8", wantFilename: c.Username + "-members.csv",
			wantRollNumbers: sortedRolls(m1.RollNumber, m2.RollNumber),
		},
		{
			name: "members xlsx", path: "/v1/club/exports/members?format=xlsx&ordering=roll_number",
			wantType:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantFilename: c.Username + "-members.xlsx", wantRollNumbers: sortedRolls(m1.RollNumber, m2.RollNumber),
		},
		{
			name: "registrations xlsx", path: "/v1/club/exports/registrations?format=XLSX",
			wantType:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantFilename: c.Username + "-registrations.xlsx", wantRollNumbers: []string{reg.RollNumber},
		},
		{
			name: "registrations csv filtered out", path: "/v1/club/exports/registrations?status=approved",
			wantType: "text/csv; charset=utf-8", wantFilename: c.Username + "-registrations.csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(newAuthRequest(http.MethodGet, tt.path, token))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.wantFilename+`"`, rec.Header().Get("Content-Disposition"))

			format, err := sheets.FormatOf(tt.wantFilename)
			require.NoError(t, err)
			rows, err := sheets.Read(bytes.NewReader(rec.Body.Bytes()), format)
			require.NoError(t, err)

			var rolls []string
			for _, row := range rows {
				rolls = append(rolls, row["roll number"])
			}
			assert.Equal(t, tt.wantRollNumbers, rolls)
		})
	}

	t.Run("registration columns", func(t *testing.T) {
		rec := e.do(newAuthRequest(http.MethodGet, "/v1/club/exports/registrations", token))
		rows, err := sheets.Read(bytes.NewReader(rec.Body.Bytes()), sheets.CSV)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, st.Name, rows[0]["name"])
		assert.Equal(t, "Music, and friends", rows[0]["reason"])
		assert.Equal(t, "pending", rows[0]["status"])
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := httpTest{path: "/v1/club/exports/members?format=pdf", token: token, wantCode: http.StatusBadRequest}.run(t, e)
		assert.Contains(t, fieldErrs(t, rec), "format")
	})

	t.Run("club only", func(t *testing.T) {
		httpTest{path: "/v1/club/exports/members", wantCode: http.StatusUnauthorized}.run(t, e)
		stToken := e.token(t, account.RoleStudent, st.ID)
		httpTest{path: "/v1/club/exports/members", token: stToken, wantCode: http.StatusForbidden}.run(t, e)
	})
}

func sortedRolls(rolls ...string) []string {
	if rolls[0] > rolls[1] {
		rolls[0], rolls[1] = rolls[1], rolls[0]
	}
	return rolls
}
