package certificate

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("certificate request")
	ErrAlreadyReviewed = errors.New("this certificate request has already been reviewed")

	// ErrReviewed is returned when reviewing a request that is no longer pending.
	ErrReviewed = core.NewValidationError(ErrAlreadyReviewed, core.FieldError{Field: "status", Error: ErrAlreadyReviewed.Error()})
)

type Repository interface {
	CreateRequest(ctx context.Context, r Request) (Request, error)
	GetRequest(ctx context.Context, id string) (Request, error)
	// QueryRequests applies AND operation on available QueryFilter fields.
	QueryRequests(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
	// ReviewRequest stores the review of r only if the stored request is still pending,
	// and returns ErrReviewed otherwise.
	ReviewRequest(ctx context.Context, r Request) (Request, error)
}

type Service struct {
	repo    Repository
	clubs   *club.Service
	mailSvc core.EmailService
}

func NewService(repo Repository, clubs *club.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, clubs: clubs, mailSvc: mailSvc}
}

// Create files a certificate request for a club. nr must be validated.
func (svc *Service) Create(ctx context.Context, c club.Club, nr NewRequest) (Request, error) {
	r := Request{
		ClubID:      c.ID,
		ClubName:    c.Name,
		StudentName: nr.StudentName,
		RollNumber:  nr.RollNumber,
		EventName:   nr.EventName,
		Description: nr.Description,
		Status:      StatusPending,
		CreatedAt:   core.Now(),
	}
	r, err := svc.repo.CreateRequest(ctx, r)
	return r, errors.Wrap(err, "creating certificate request")
}

func (svc *Service) Get(ctx context.Context, id string) (Request, error) {
	return svc.repo.GetRequest(ctx, id)
}

func (svc *Service) ListForClub(ctx context.Context, clubID string, ordering []core.DBOrdering) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, &QueryFilter{ClubID: clubID}, ordering)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter, ordering)
}

// Approve accepts a pending request and notifies the club.
func (svc *Service) Approve(ctx context.Context, m mentor.Mentor, r Request) (Request, error) {
	return svc.review(ctx, m, r, StatusApproved, "")
}

// Reject declines a pending request and notifies the club. rj must be validated.
func (svc *Service) Reject(ctx context.Context, m mentor.Mentor, r Request, rj Rejection) (Request, error) {
	return svc.review(ctx, m, r, StatusRejected, rj.Reason)
}

func (svc *Service) review(ctx context.Context, m mentor.Mentor, r Request, status Status, reason string) (Request, error) {
	if !r.IsPending() {
		return Request{}, ErrReviewed
	}

	now := core.Now()
	r.Status = status
	r.RejectionReason = reason
	r.ReviewedBy = m.ID
	r.ReviewedAt = &now
	r, err := svc.repo.ReviewRequest(ctx, r)
	if err != nil {
		if err == ErrReviewed {
			return Request{}, err
		}
		return Request{}, errors.Wrap(err, "reviewing certificate request")
	}

	c, err := svc.clubs.GetByID(ctx, r.ClubID)
	if err != nil {
		return r, errors.Wrap(err, "finding club")
	}
	if c.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: c.Name, Address: c.Email}},
			Subject:      "Certificate request for " + r.StudentName,
			TemplateName: "certificate_reviewed",
			TemplateData: ReviewedData{
				ClubName:    c.Name,
				StudentName: r.StudentName,
				RollNumber:  r.RollNumber,
				EventName:   r.EventName,
				Approved:    status == StatusApproved,
				Reason:      reason,
			},
		})
	}
	return r, nil
}
