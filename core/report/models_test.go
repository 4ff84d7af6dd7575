package report

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

// errFields flattens validation errors to {field: tag or message}.
func errFields(t *testing.T, err error) map[string]string {
	t.Helper()
	fields := make(map[string]string)
	switch verr := err.(type) {
	case validator.ValidationErrors:
		for _, fe := range verr {
			fields[fe.Field()] = fe.Tag()
		}
	case *core.ValidationError:
		for _, fe := range verr.Fields {
			fields[fe.Field] = fe.Error
		}
	default:
		t.Fatalf("unexpected error %T: %v", err, err)
	}
	return fields
}

func TestNewReport_Validate(t *testing.T) {
	validate, _ := core.NewValidator()

	tests := []struct {
		name       string
		report     NewReport
		wantFields []string
	}{
		{name: "required", report: NewReport{}, wantFields: []string{"kind", "title"}},
		{name: "unknown kind", report: NewReport{Kind: "weekly", Title: "W1", Payload: json.RawMessage(`{}`)}, wantFields: []string{"kind"}},
		{name: "missing payload", report: NewReport{Kind: KindMonthly, Title: "March"}, wantFields: []string{"payload"}},
		{name: "null payload", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`null`)}, wantFields: []string{"payload"}},
		{name: "unknown payload field", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`{"month":3,"year":2024,"mood":"good"}`)}, wantFields: []string{"payload"}},
		{name: "trailing payload", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`{"month":3,"year":2024}{"x":1}`)}, wantFields: []string{"payload"}},
		{name: "trailing garbage", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`{"month":3,"year":2024} x`)}, wantFields: []string{"payload"}},
		{name: "wrong payload type", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`{"month":"march","year":2024}`)}, wantFields: []string{"payload"}},
		{name: "invalid month", report: NewReport{Kind: KindMonthly, Title: "March", Payload: json.RawMessage(`{"month":13,"year":2024}`)}, wantFields: []string{"month"}},
		{name: "invalid meeting date", report: NewReport{Kind: KindMinutesOfMeeting, Title: "MoM", Payload: json.RawMessage(`{"meeting_date":"12/03/2024","agenda":"Budget"}`)}, wantFields: []string{"meeting_date"}},
		{name: "blank attendee", report: NewReport{Kind: KindMinutesOfMeeting, Title: "MoM", Payload: json.RawMessage(`{"meeting_date":"2024-03-12","agenda":"Budget","attendees":["Asha"," "]}`)}, wantFields: []string{"attendees[1]"}},
		{name: "event summary", report: NewReport{Kind: KindEvent, Title: "Hackathon", Payload: json.RawMessage(`{"event_name":"Hackathon","event_date":"2024-03-12","participants":-1,"summary":"ok"}`)}, wantFields: []string{"participants"}},
		{name: "valid yearly", report: NewReport{Kind: " Yearly ", Title: " 2024 ", Payload: json.RawMessage(`{"year":2024,"summary":"A good year","achievements":["Won"]}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nr := tt.report
			err := nr.Validate(validate)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			fields := errFields(t, err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestNewReport_Validate_normalizes(t *testing.T) {
	validate, _ := core.NewValidator()

	nr := NewReport{
		Kind:    " Minutes_Of_Meeting ",
		Title:   "  Weekly   sync ",
		Payload: json.RawMessage(`{ "agenda": "Budget",   "meeting_date": "2024-03-12" }`),
	}
	require.NoError(t, nr.Validate(validate))
	assert.Equal(t, KindMinutesOfMeeting, nr.Kind)
	assert.Equal(t, "Weekly   sync", nr.Title)

	var mom MinutesOfMeeting
	require.NoError(t, json.Unmarshal(nr.Payload, &mom))
	assert.Equal(t, "2024-03-12", mom.MeetingDate)
	assert.Equal(t, "Budget", mom.Agenda)
	assert.Contains(t, string(nr.Payload), `"venue":""`, "the payload is re-encoded with every field of its kind")
}

func TestUpdateReport_Validate_keepsKind(t *testing.T) {
	validate, _ := core.NewValidator()
	orig := Report{ID: "r1", Kind: KindYearly}

	ur := UpdateReport{Title: "2024", Payload: json.RawMessage(`{"month":3,"year":2024}`)}
	err := ur.Validate(orig, validate)
	require.Error(t, err)
	assert.Contains(t, errFields(t, err), "payload", "a monthly payload does not fit a yearly report")

	ur = UpdateReport{Title: "2024", Payload: json.RawMessage(`{"year":2024,"summary":"Done"}`)}
	require.NoError(t, ur.Validate(orig, validate))
}
