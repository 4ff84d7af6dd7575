// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"

	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

// Password satisfies the password policy and is used by every fixture account.
const Password = "Kl7#mV9q!zR"

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// RollNumber returns a random, valid roll number.
func RollNumber() string {
	return strings.ToUpper(fmt.Sprintf("%02dBD1A%04d", gofakeit.Number(18, 25), gofakeit.Number(1, 9999)))
}

// CreateStudent signs up an active student with Password.
func CreateStudent(t *testing.T, svc *student.Service, overrides ...func(*student.NewStudent)) student.Student {
	t.Helper()
	ns := student.NewStudent{
		RollNumber:      RollNumber(),
		Name:            gofakeit.Name(),
		Email:           strings.ToLower(gofakeit.Username()) + "@students.kmit.in",
		Branch:          gofakeit.RandomString([]string{"CSE", "IT", "ECE", "CSM"}),
		Year:            gofakeit.Number(1, 4),
		Password:        Password,
		PasswordConfirm: Password,
	}
	for _, o := range overrides {
		o(&ns)
	}
	ns.Clean()
	st, err := svc.SignUp(context.Background(), ns)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// CreateClub creates an active club accepting registrations, with Password.
func CreateClub(t *testing.T, svc *club.Service, overrides ...func(*club.NewClub)) club.Club {
	t.Helper()
	word := strings.ToLower(gofakeit.LetterN(8))
	nc := club.NewClub{
		Name:             "Club " + strings.ToUpper(word[:1]) + word[1:],
		Username:         word,
		Email:            word + "@clubs.kmit.in",
		ShortDescription: gofakeit.Sentence(8),
		Password:         Password,
	}
	for _, o := range overrides {
		o(&nc)
	}
	nc.Clean()
	ctx := context.Background()
	c, err := svc.Create(ctx, nc)
	if err != nil {
		t.Fatalf("CreateClub() failed: %v", err)
	}
	if c, err = svc.SetRegistrationOpen(ctx, c, true); err != nil {
		t.Fatalf("CreateClub() failed: %v", err)
	}
	return c
}

// CreateMentor creates an active mentor with Password.
func CreateMentor(t *testing.T, svc *mentor.Service, validate *validator.Validate) mentor.Mentor {
	t.Helper()
	m, _, err := svc.Save(context.Background(), mentor.NewMentor{
		Name:       gofakeit.Name(),
		Email:      strings.ToLower(gofakeit.Username()) + "@kmit.in",
		Department: "CSE",
		Password:   Password,
	}, validate)
	if err != nil {
		t.Fatalf("CreateMentor() failed: %v", err)
	}
	return m
}

// AddMember adds a member to a club by hand.
func AddMember(t *testing.T, svc *member.Service, clubID string, withEmail bool) member.Member {
	t.Helper()
	nm := member.NewMember{
		Name:       gofakeit.Name(),
		RollNumber: RollNumber(),
		Position:   member.PositionMember,
	}
	if withEmail {
		nm.Email = strings.ToLower(gofakeit.Username()) + "@students.kmit.in"
	}
	m, err := svc.Add(context.Background(), clubID, nm)
	if err != nil {
		t.Fatalf("AddMember() failed: %v", err)
	}
	return m
}
