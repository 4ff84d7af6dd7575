package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

var ErrNotFound = core.NewNotFoundError("report")

type Repository interface {
	CreateReport(ctx context.Context, r Report) (Report, error)
	GetReport(ctx context.Context, id string) (Report, error)
	// QueryReports applies AND operation on available QueryFilter fields.
	QueryReports(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error)
	UpdateReport(ctx context.Context, r Report) (Report, error)
	DeleteReport(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create files a report for a club. nr must be validated.
func (svc *Service) Create(ctx context.Context, clubID string, nr NewReport) (Report, error) {
	now := core.Now()
	r := Report{
		ClubID:    clubID,
		Kind:      nr.Kind,
		Title:     nr.Title,
		Payload:   nr.Payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r, err := svc.repo.CreateReport(ctx, r)
	return r, errors.Wrap(err, "creating report")
}

func (svc *Service) Get(ctx context.Context, id string) (Report, error) {
	return svc.repo.GetReport(ctx, id)
}

// GetOwned returns a report filed by the given club.
func (svc *Service) GetOwned(ctx context.Context, clubID, id string) (Report, error) {
	r, err := svc.repo.GetReport(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if r.ClubID != clubID {
		return Report{}, ErrNotFound
	}
	return r, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error) {
	return svc.repo.QueryReports(ctx, filter, ordering)
}

// Update modifies a report. ur must be validated.
func (svc *Service) Update(ctx context.Context, r Report, ur UpdateReport) (Report, error) {
	r.Title = ur.Title
	r.Payload = ur.Payload
	r.UpdatedAt = core.Now()
	r, err := svc.repo.UpdateReport(ctx, r)
	return r, errors.Wrap(err, "updating report")
}

func (svc *Service) Delete(ctx context.Context, r Report) error {
	return svc.repo.DeleteReport(ctx, r.ID)
}
