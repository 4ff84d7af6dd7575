package registration

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("registration")
	ErrClosed            = errors.New("this club is not accepting registrations")
	ErrAlreadyRegistered = errors.New("you have already registered for this club")
	ErrAlreadyMember     = errors.New("you are already a member of this club")
	ErrAlreadyReviewed   = errors.New("this registration has already been reviewed")

	// ErrDuplicate is returned when storing a second registration of a student for a club.
	ErrDuplicate = core.NewValidationError(ErrAlreadyRegistered, core.FieldError{Field: "club", Error: ErrAlreadyRegistered.Error()})
	// ErrReviewed is returned when reviewing a registration that is no longer pending.
	ErrReviewed = core.NewValidationError(ErrAlreadyReviewed, core.FieldError{Field: "status", Error: ErrAlreadyReviewed.Error()})
)

type Repository interface {
	CreateRegistration(ctx context.Context, r Registration) (Registration, error)
	GetRegistration(ctx context.Context, id string) (Registration, error)
	// FindRegistration returns the registration of a student for a club.
	FindRegistration(ctx context.Context, clubID, studentID string) (Registration, error)
	// QueryRegistrations applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of StudentName, RollNumber or Email.
	QueryRegistrations(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error)
	UpdateRegistration(ctx context.Context, r Registration) (Registration, error)
	// ReviewRegistration stores the review of r only if the stored registration is still pending,
	// and returns ErrReviewed otherwise.
	ReviewRegistration(ctx context.Context, r Registration) (Registration, error)
}

type Service struct {
	repo    Repository
	members *member.Service
	tx      core.Transactor
	mailSvc core.EmailService
}

func NewService(repo Repository, members *member.Service, tx core.Transactor, mailSvc core.EmailService) *Service {
	return &Service{
		repo:    repo,
		members: members,
		tx:      tx,
		mailSvc: mailSvc,
	}
}

func validationErr(err error, field string) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// Register submits the registration of a student for a club. nr must be validated.
// A rejected registration is re-submitted; a pending or approved one is an error.
func (svc *Service) Register(ctx context.Context, c club.Club, st student.Student, nr NewRegistration) (Registration, error) {
	if !c.AcceptsRegistrations() {
		return Registration{}, validationErr(ErrClosed, "club")
	}
	isMember, err := svc.members.IsMember(ctx, c.ID, st.RollNumber)
	if err != nil {
		return Registration{}, err
	}
	if isMember {
		return Registration{}, validationErr(ErrAlreadyMember, "club")
	}

	r, err := svc.repo.FindRegistration(ctx, c.ID, st.ID)
	switch {
	case err == nil:
		if r.Status != StatusRejected {
			return Registration{}, ErrDuplicate
		}
	case core.IsNotFound(err):
		r = Registration{ClubID: c.ID, StudentID: st.ID}
	default:
		return Registration{}, errors.Wrap(err, "finding registration")
	}

	r.ClubName = c.Name
	r.StudentName = st.Name
	r.RollNumber = st.RollNumber
	r.Email = st.Email
	r.Branch = st.Branch
	r.Year = st.Year
	r.Reason = nr.Reason
	r.Status = StatusPending
	r.RejectionReason = ""
	r.ReviewedAt = nil
	r.CreatedAt = core.Now()

	if r.ID == "" {
		r, err = svc.repo.CreateRegistration(ctx, r)
		return r, errors.Wrap(err, "creating registration")
	}
	r, err = svc.repo.UpdateRegistration(ctx, r)
	return r, errors.Wrap(err, "re-submitting registration")
}

// Get returns a registration of the given club.
func (svc *Service) Get(ctx context.Context, clubID, id string) (Registration, error) {
	r, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	if r.ClubID != clubID {
		return Registration{}, ErrNotFound
	}
	return r, nil
}

func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Registration, error) {
	ordering := []core.DBOrdering{{Field: "created_at"}}
	return svc.repo.QueryRegistrations(ctx, &QueryFilter{StudentID: studentID}, ordering)
}

func (svc *Service) ListForClub(ctx context.Context, clubID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.ClubID = clubID
	filter.StudentID = ""
	return svc.repo.QueryRegistrations(ctx, filter, ordering)
}

// Approve accepts a pending registration and adds the student to the club members
// within the same transaction. The student is notified by email.
func (svc *Service) Approve(ctx context.Context, c club.Club, r Registration) (Registration, error) {
	if !r.IsPending() {
		return Registration{}, ErrReviewed
	}

	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := core.Now()
		r.Status = StatusApproved
		r.ReviewedAt = &now
		var err error
		if r, err = svc.repo.ReviewRegistration(ctx, r); err != nil {
			if err == ErrReviewed {
				return err
			}
			return errors.Wrap(err, "reviewing registration")
		}

		isMember, err := svc.members.IsMember(ctx, c.ID, r.RollNumber)
		if err != nil || isMember {
			return err
		}
		_, err = svc.members.AddStudent(ctx, c.ID, student.Student{
			ID:         r.StudentID,
			Name:       r.StudentName,
			RollNumber: r.RollNumber,
			Email:      r.Email,
		})
		return err
	})
	if err != nil {
		return Registration{}, err
	}

	svc.notify(c, r)
	return r, nil
}

// Reject declines a pending registration with an optional reason. rj must be validated.
func (svc *Service) Reject(ctx context.Context, c club.Club, r Registration, rj Rejection) (Registration, error) {
	if !r.IsPending() {
		return Registration{}, ErrReviewed
	}

	now := core.Now()
	r.Status = StatusRejected
	r.RejectionReason = rj.Reason
	r.ReviewedAt = &now
	r, err := svc.repo.ReviewRegistration(ctx, r)
	if err != nil {
		if err == ErrReviewed {
			return Registration{}, err
		}
		return Registration{}, errors.Wrap(err, "reviewing registration")
	}

	svc.notify(c, r)
	return r, nil
}

func (svc *Service) notify(c club.Club, r Registration) {
	if r.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: r.StudentName, Address: r.Email}},
		Subject:      "Your registration to " + c.Name,
		TemplateName: "registration_reviewed",
		TemplateData: ReviewedData{
			StudentName: r.StudentName,
			ClubName:    c.Name,
			Approved:    r.Status == StatusApproved,
			Reason:      r.RejectionReason,
		},
	})
}
