package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Mithesh23/kmit-club-sub001/apps/api/echo"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/event"
	"github.com/Mithesh23/kmit-club-sub001/core/report"
	testutil "github.com/Mithesh23/kmit-club-sub001/tests"
)

func Test_mentorApi_login(t *testing.T) {
	e := setup(t)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)

	httpTest{
		method: http.MethodPost, path: "/v1/mentors/login", wantCode: http.StatusBadRequest,
		body:     marshalObj(t, MentorLoginRequest{Email: "not-an-email", Password: testutil.Password}),
		wantData: marshalObj(t, map[string]string{"email": "email must be a valid email address"}),
	}.run(t, e)

	rec := httpTest{method: http.MethodPost, path: "/v1/mentors/login", body: marshalObj(t, MentorLoginRequest{Email: m.Email, Password: testutil.Password})}.run(t, e)
	var resp TokenResponse
	unmarshal(t, rec, &resp)
	httpTest{path: "/v1/mentor/me", token: resp.Token}.run(t, e)
}

func Test_mentorApi_clubs(t *testing.T) {
	e := setup(t)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)
	token := e.token(t, account.RoleMentor, m.ID)
	existing := testutil.CreateClub(t, e.di.Clubs)

	rec := httpTest{method: http.MethodPost, path: "/v1/mentor/clubs", token: token, wantCode: http.StatusBadRequest, body: marshalObj(t, club.NewClub{
		Name: "Robotics Club", Username: existing.Username, Email: "robotics@kmit.in", Password: testutil.Password,
	})}.run(t, e)
	assert.Equal(t, map[string]string{"username": club.ErrUsernameExists.Error()}, fieldErrs(t, rec))

	rec = httpTest{method: http.MethodPost, path: "/v1/mentor/clubs", token: token, wantCode: http.StatusBadRequest, body: marshalObj(t, club.NewClub{
		Name: "Robotics Club", Username: "robo-tics", Email: "robotics@kmit.in", Password: testutil.Password,
	})}.run(t, e)
	assert.Equal(t, map[string]string{"username": "only alphanumeric characters and underscores are allowed"}, fieldErrs(t, rec))

	rec = httpTest{method: http.MethodPost, path: "/v1/mentor/clubs", token: token, wantCode: http.StatusCreated, body: marshalObj(t, club.NewClub{
		Name: "Robotics Club", Username: "Robotics", Email: "robotics@kmit.in", Password: testutil.Password,
	})}.run(t, e)
	var robotics club.Club
	unmarshal(t, rec, &robotics)
	assert.Equal(t, "robotics", robotics.Username)
	assert.True(t, robotics.IsActive)
	assert.False(t, robotics.RegistrationOpen)

	// deactivation hides the club from the public & closes its sessions
	clubToken := e.token(t, account.RoleClub, robotics.ID)
	rec = httpTest{method: http.MethodPut, path: "/v1/mentor/clubs/" + robotics.ID + "/activation", token: token, body: []byte(`{"active": false}`)}.run(t, e)
	unmarshal(t, rec, &robotics)
	assert.False(t, robotics.IsActive)

	httpTest{path: "/v1/clubs/" + robotics.ID, wantCode: http.StatusNotFound}.run(t, e)
	httpTest{path: "/v1/club/me", token: clubToken, wantCode: http.StatusUnauthorized}.run(t, e)
	httpTest{path: "/v1/mentor/clubs?is_active=false", token: token, wantData: marshalList(t, robotics)}.run(t, e)
	httpTest{path: "/v1/mentor/clubs/" + robotics.ID, token: token, wantData: marshalObj(t, ClubDetail{Club: robotics})}.run(t, e)
}

func Test_eventApi(t *testing.T) {
	e := setup(t)
	c := testutil.CreateClub(t, e.di.Clubs)
	other := testutil.CreateClub(t, e.di.Clubs)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)
	clubToken := e.token(t, account.RoleClub, c.ID)
	otherToken := e.token(t, account.RoleClub, other.ID)
	mentorToken := e.token(t, account.RoleMentor, m.ID)

	startsAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	data := event.EventData{Title: "Hackathon", Venue: "Seminar Hall", StartsAt: startsAt}

	rec := httpTest{method: http.MethodPost, path: "/v1/club/events", token: clubToken, body: []byte(`{"title": "x"}`), wantCode: http.StatusBadRequest}.run(t, e)
	assert.Equal(t, map[string]string{"starts_at": "this field is required"}, fieldErrs(t, rec))

	rec = httpTest{method: http.MethodPost, path: "/v1/club/events", token: clubToken, body: marshalObj(t, data), wantCode: http.StatusCreated}.run(t, e)
	var clubEvent event.Event
	unmarshal(t, rec, &clubEvent)
	assert.Equal(t, c.ID, clubEvent.ClubID)
	assert.True(t, clubEvent.StartsAt.Equal(startsAt))

	data.Title = "Convocation"
	rec = httpTest{method: http.MethodPost, path: "/v1/mentor/events", token: mentorToken, body: marshalObj(t, data), wantCode: http.StatusCreated}.run(t, e)
	var instEvent event.Event
	unmarshal(t, rec, &instEvent)
	assert.True(t, instEvent.IsInstitutionWide())

	forbidden := marshalObj(t, httpErr{Error: event.ErrForbidden.Error()})
	tests := []httpTest{
		{name: "other club update", method: http.MethodPut, path: "/v1/club/events/" + clubEvent.ID, token: otherToken, body: marshalObj(t, data), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "other club delete", method: http.MethodDelete, path: "/v1/club/events/" + clubEvent.ID, token: otherToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "club on institution event", method: http.MethodDelete, path: "/v1/club/events/" + instEvent.ID, token: clubToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "mentor on club event", method: http.MethodDelete, path: "/v1/mentor/events/" + clubEvent.ID, token: mentorToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "unknown", path: "/v1/club/events/unknown", token: clubToken, wantCode: http.StatusNotFound},
		{name: "public by club", path: "/v1/events?club_id=" + c.ID, wantData: marshalList(t, clubEvent)},
		{name: "public institution", path: "/v1/events?institution=true", wantData: marshalList(t, instEvent)},
		{name: "public detail", path: "/v1/events/" + instEvent.ID, wantData: marshalObj(t, instEvent)},
		{name: "club own list", path: "/v1/club/events", token: clubToken, wantData: marshalList(t, clubEvent)},
		{name: "mentor own list", path: "/v1/mentor/events", token: mentorToken, wantData: marshalList(t, instEvent)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, e)
		})
	}

	// images
	rec = e.do(multipartRequest(t, "/v1/club/events/"+clubEvent.ID+"/images", clubToken, "image", "pic.png", pngImage(t), map[string]string{"caption": "Team photo"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var img event.EventImage
	unmarshal(t, rec, &img)
	assert.Equal(t, "Team photo", img.Caption)
	assert.Equal(t, clubEvent.ID, img.EventID)

	rec = httpTest{path: "/v1/events/" + clubEvent.ID}.run(t, e)
	var got event.Event
	unmarshal(t, rec, &got)
	require.Len(t, got.Images, 1)

	httpTest{method: http.MethodDelete, path: "/v1/club/events/" + clubEvent.ID + "/images/" + img.ID, token: clubToken, wantCode: http.StatusNoContent}.run(t, e)
	httpTest{method: http.MethodDelete, path: "/v1/club/events/" + clubEvent.ID, token: clubToken, wantCode: http.StatusNoContent}.run(t, e)
	httpTest{path: "/v1/events/" + clubEvent.ID, wantCode: http.StatusNotFound}.run(t, e)
}

func Test_reportApi(t *testing.T) {
	e := setup(t)
	c := testutil.CreateClub(t, e.di.Clubs)
	other := testutil.CreateClub(t, e.di.Clubs)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)
	clubToken := e.token(t, account.RoleClub, c.ID)
	otherToken := e.token(t, account.RoleClub, other.ID)
	mentorToken := e.token(t, account.RoleMentor, m.ID)

	newReport := func(kind report.Kind, payload string) []byte {
		return marshalObj(t, report.NewReport{Kind: kind, Title: "Report", Payload: json.RawMessage(payload)})
	}

	tests := []struct {
		name       string
		body       []byte
		wantFields []string
	}{
		{name: "unknown kind", body: newReport("weekly", `{}`), wantFields: []string{"kind"}},
		{name: "missing payload", body: newReport(report.KindMonthly, `null`), wantFields: []string{"payload"}},
		{name: "unknown payload field", body: newReport(report.KindMonthly, `{"month": 1, "year": 2024, "mood": "great"}`), wantFields: []string{"payload"}},
		{name: "invalid monthly", body: newReport(report.KindMonthly, `{"month": 13, "year": 2024}`), wantFields: []string{"month"}},
		{name: "invalid minutes", body: newReport(report.KindMinutesOfMeeting, `{"meeting_date": "12/01/2024", "agenda": "x"}`), wantFields: []string{"meeting_date"}},
		{name: "invalid event summary", body: newReport(report.KindEvent, `{"event_name": "Hack", "event_date": "2024-01-12", "participants": -1}`), wantFields: []string{"participants", "summary"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httpTest{method: http.MethodPost, path: "/v1/club/reports", token: clubToken, body: tt.body, wantCode: http.StatusBadRequest}.run(t, e)
			errs := fieldErrs(t, rec)
			for _, f := range tt.wantFields {
				assert.Contains(t, errs, f)
			}
		})
	}

	rec := httpTest{
		method: http.MethodPost, path: "/v1/club/reports", token: clubToken, wantCode: http.StatusCreated,
		body: newReport(report.KindMinutesOfMeeting, `{"meeting_date": "2024-01-12", "agenda": "Plan the fest", "attendees": ["Asha", "Ravi"]}`),
	}.run(t, e)
	var mom report.Report
	unmarshal(t, rec, &mom)
	assert.Equal(t, report.KindMinutesOfMeeting, mom.Kind)
	var payload report.MinutesOfMeeting
	require.NoError(t, json.Unmarshal(mom.Payload, &payload))
	assert.Equal(t, []string{"Asha", "Ravi"}, payload.Attendees)

	rec = httpTest{
		method: http.MethodPost, path: "/v1/club/reports", token: otherToken, wantCode: http.StatusCreated,
		body: newReport(report.KindYearly, `{"year": 2024, "summary": "A good year", "members_count": 40}`),
	}.run(t, e)
	var yearly report.Report
	unmarshal(t, rec, &yearly)

	// the kind cannot change on update
	rec = httpTest{
		method: http.MethodPut, path: "/v1/club/reports/" + mom.ID, token: clubToken, wantCode: http.StatusBadRequest,
		body: marshalObj(t, report.UpdateReport{Title: "Report", Payload: json.RawMessage(`{"year": 2024, "summary": "x"}`)}),
	}.run(t, e)
	assert.Contains(t, fieldErrs(t, rec), "payload")

	rec = httpTest{
		method: http.MethodPut, path: "/v1/club/reports/" + mom.ID, token: clubToken,
		body: marshalObj(t, report.UpdateReport{Title: "January meeting", Payload: json.RawMessage(`{"meeting_date": "2024-01-12", "agenda": "Plan the fest"}`)}),
	}.run(t, e)
	unmarshal(t, rec, &mom)
	assert.Equal(t, "January meeting", mom.Title)

	httpTest{path: "/v1/club/reports/" + yearly.ID, token: clubToken, wantCode: http.StatusNotFound}.run(t, e)
	httpTest{path: "/v1/club/reports", token: clubToken, wantData: marshalList(t, mom)}.run(t, e)
	httpTest{path: "/v1/club/reports", token: mentorToken, wantCode: http.StatusForbidden}.run(t, e)

	// mentors see every club's reports
	rec = httpTest{path: "/v1/mentor/reports", token: mentorToken}.run(t, e)
	var all []report.Report
	unmarshal(t, rec, &all)
	assert.Len(t, all, 2)
	httpTest{path: "/v1/mentor/reports?kind=yearly", token: mentorToken, wantData: marshalList(t, yearly)}.run(t, e)
	httpTest{path: "/v1/mentor/reports?club_id=" + c.ID, token: mentorToken, wantData: marshalList(t, mom)}.run(t, e)
	httpTest{path: "/v1/mentor/reports/" + yearly.ID, token: mentorToken, wantData: marshalObj(t, yearly)}.run(t, e)

	httpTest{method: http.MethodDelete, path: "/v1/club/reports/" + mom.ID, token: clubToken, wantCode: http.StatusNoContent}.run(t, e)
	httpTest{path: "/v1/mentor/reports/" + mom.ID, token: mentorToken, wantCode: http.StatusNotFound}.run(t, e)
}

func Test_certificateApi(t *testing.T) {
	e := setup(t)
	c := testutil.CreateClub(t, e.di.Clubs)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)
	clubToken := e.token(t, account.RoleClub, c.ID)
	mentorToken := e.token(t, account.RoleMentor, m.ID)

	rec := httpTest{method: http.MethodPost, path: "/v1/club/certificates", token: clubToken, body: []byte(`{}`), wantCode: http.StatusBadRequest}.run(t, e)
	assert.Equal(t, map[string]string{
		"student_name": "this field is required",
		"roll_number":  "this field is required",
		"event_name":   "this field is required",
	}, fieldErrs(t, rec))

	create := func(name string) certificate.Request {
		rec := httpTest{method: http.MethodPost, path: "/v1/club/certificates", token: clubToken, wantCode: http.StatusCreated, body: marshalObj(t, certificate.NewRequest{
			StudentName: name, RollNumber: testutil.RollNumber(), EventName: "Hackathon 2024",
		})}.run(t, e)
		var r certificate.Request
		unmarshal(t, rec, &r)
		return r
	}
	r1, r2 := create("Asha Reddy"), create("Ravi Kumar")
	assert.Equal(t, certificate.StatusPending, r1.Status)
	assert.Equal(t, c.Name, r1.ClubName)

	httpTest{method: http.MethodPost, path: "/v1/mentor/certificates/" + r1.ID + "/approve", token: clubToken, wantCode: http.StatusForbidden}.run(t, e)

	emailsBefore := sentCount()
	rec = httpTest{method: http.MethodPost, path: "/v1/mentor/certificates/" + r1.ID + "/approve", token: mentorToken}.run(t, e)
	var got certificate.Request
	unmarshal(t, rec, &got)
	assert.Equal(t, certificate.StatusApproved, got.Status)
	assert.Equal(t, m.ID, got.ReviewedBy)
	assert.Equal(t, emailsBefore+1, sentCount())
	assert.Equal(t, c.Email, lastMessages(1)[0].To[0].Address)

	httpTest{
		method: http.MethodPost, path: "/v1/mentor/certificates/" + r1.ID + "/reject", token: mentorToken, wantCode: http.StatusBadRequest,
		body: marshalObj(t, certificate.Rejection{Reason: "late"}), wantData: marshalObj(t, map[string]string{"status": certificate.ErrAlreadyReviewed.Error()}),
	}.run(t, e)

	httpTest{
		method: http.MethodPost, path: "/v1/mentor/certificates/" + r2.ID + "/reject", token: mentorToken, wantCode: http.StatusBadRequest,
		body: []byte(`{"reason": "  "}`), wantData: marshalObj(t, map[string]string{"reason": "this field is required"}),
	}.run(t, e)

	rec = httpTest{method: http.MethodPost, path: "/v1/mentor/certificates/" + r2.ID + "/reject", token: mentorToken, body: marshalObj(t, certificate.Rejection{Reason: "Not a participant"})}.run(t, e)
	unmarshal(t, rec, &got)
	assert.Equal(t, certificate.StatusRejected, got.Status)
	assert.Equal(t, "Not a participant", got.RejectionReason)

	rec = httpTest{path: "/v1/mentor/certificates?status=rejected", token: mentorToken}.run(t, e)
	var list []certificate.Request
	unmarshal(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, r2.ID, list[0].ID)

	rec = httpTest{path: "/v1/club/certificates", token: clubToken}.run(t, e)
	unmarshal(t, rec, &list)
	assert.Len(t, list, 2)
}

func Test_mentorApi_clubActivation(t *testing.T) {
	e := setup(t)
	m := testutil.CreateMentor(t, e.di.Mentors, e.di.Validate)
	c := testutil.CreateClub(t, e.di.Clubs)
	token := e.token(t, account.RoleMentor, m.ID)

	httpTest{method: http.MethodPut, path: "/v1/mentor/clubs/unknown/activation", token: token, body: []byte(`{"active": true}`), wantCode: http.StatusNotFound}.run(t, e)
	httpTest{
		method: http.MethodPut, path: "/v1/mentor/clubs/" + c.ID + "/activation", token: token, body: []byte(`{}`),
		wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"active": "this field is required"}),
	}.run(t, e)

	// reactivation
	c, err := e.di.Clubs.SetActive(context.Background(), c, false)
	require.NoError(t, err)
	rec := httpTest{method: http.MethodPut, path: "/v1/mentor/clubs/" + c.ID + "/activation", token: token, body: []byte(`{"active": true}`)}.run(t, e)
	unmarshal(t, rec, &c)
	assert.True(t, c.IsActive)
	httpTest{path: "/v1/clubs/" + c.ID}.run(t, e)
}
