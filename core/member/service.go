package member

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("member")
	ErrAlreadyMember = errors.New("this student is already a member of the club")

	// ErrDuplicate is returned when adding a roll number already in the club.
	ErrDuplicate = core.NewValidationError(ErrAlreadyMember, core.FieldError{Field: "roll_number", Error: ErrAlreadyMember.Error()})
)

type Repository interface {
	CreateMember(ctx context.Context, m Member) (Member, error)
	GetMember(ctx context.Context, clubID, id string) (Member, error)
	GetMemberByRollNumber(ctx context.Context, clubID, rollNumber string) (Member, error)
	// QueryMembers lists the members of a club.
	// QueryFilter.Search does a case-insensitive match on one of Name, RollNumber or Email.
	QueryMembers(ctx context.Context, clubID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Member, error)
	CountMembers(ctx context.Context, clubID string) (int, error)
	UpdateMember(ctx context.Context, m Member) (Member, error)
	DeleteMember(ctx context.Context, clubID, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkNotMember(ctx context.Context, clubID, rollNumber string) error {
	isMember, err := svc.IsMember(ctx, clubID, rollNumber)
	if err != nil {
		return err
	}
	if isMember {
		return ErrDuplicate
	}
	return nil
}

// IsMember reports whether the student with the given roll number belongs to the club.
func (svc *Service) IsMember(ctx context.Context, clubID, rollNumber string) (bool, error) {
	_, err := svc.repo.GetMemberByRollNumber(ctx, clubID, student.CleanRollNumber(rollNumber))
	if err == nil {
		return true, nil
	}
	if core.IsNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "finding member by roll number")
}

// Add adds a member by hand. nm must be validated.
func (svc *Service) Add(ctx context.Context, clubID string, nm NewMember) (Member, error) {
	m := Member{
		ClubID:     clubID,
		Name:       nm.Name,
		RollNumber: nm.RollNumber,
		Email:      nm.Email,
		Position:   nm.Position,
		JoinedAt:   core.Now(),
	}
	m, err := svc.repo.CreateMember(ctx, m)
	return m, errors.Wrap(err, "creating member")
}

// AddStudent adds a student to a club with the default position.
func (svc *Service) AddStudent(ctx context.Context, clubID string, st student.Student) (Member, error) {
	m := Member{
		ClubID:     clubID,
		StudentID:  st.ID,
		Name:       st.Name,
		RollNumber: st.RollNumber,
		Email:      st.Email,
		Position:   PositionMember,
		JoinedAt:   core.Now(),
	}
	m, err := svc.repo.CreateMember(ctx, m)
	return m, errors.Wrap(err, "creating member")
}

func (svc *Service) Get(ctx context.Context, clubID, id string) (Member, error) {
	return svc.repo.GetMember(ctx, clubID, id)
}

func (svc *Service) Query(ctx context.Context, clubID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, clubID, filter, ordering)
}

func (svc *Service) Count(ctx context.Context, clubID string) (int, error) {
	return svc.repo.CountMembers(ctx, clubID)
}

// Update modifies a member. um must be validated.
func (svc *Service) Update(ctx context.Context, m Member, um UpdateMember) (Member, error) {
	m.Name = um.Name
	m.Email = um.Email
	m.Position = um.Position
	m, err := svc.repo.UpdateMember(ctx, m)
	return m, errors.Wrap(err, "updating member")
}

func (svc *Service) Remove(ctx context.Context, clubID, id string) error {
	return svc.repo.DeleteMember(ctx, clubID, id)
}
