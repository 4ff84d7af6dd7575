package dummydb

import (
	"cmp"
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
)

var certificateOrdering = comparators[certificate.Request]{
	"student_name": func(a, b certificate.Request) int { return compareFold(a.StudentName, b.StudentName) },
	"status":       func(a, b certificate.Request) int { return cmp.Compare(a.Status, b.Status) },
	"created_at":   func(a, b certificate.Request) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type certificateRepository struct {
	db *table[certificate.Request]
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *DB) certificate.Repository {
	return &certificateRepository{db: db.certificates}
}

func (repo *certificateRepository) CreateRequest(_ context.Context, r certificate.Request) (certificate.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = uuid.New().String()
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *certificateRepository) GetRequest(_ context.Context, id string) (certificate.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.rows[id]; ok {
		return *r, nil
	}
	return certificate.Request{}, certificate.ErrNotFound
}

func (repo *certificateRepository) QueryRequests(_ context.Context, filter *certificate.QueryFilter, ordering []core.DBOrdering) ([]certificate.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reqs := make([]certificate.Request, 0)
	for _, r := range repo.db.all() {
		if filter != nil {
			if filter.ClubID != "" && r.ClubID != filter.ClubID {
				continue
			}
			if filter.Status != "" && r.Status != filter.Status {
				continue
			}
		}
		reqs = append(reqs, r)
	}
	sortRows(reqs, ordering, certificateOrdering, core.DBOrdering{Field: "created_at"})
	return reqs, nil
}

func (repo *certificateRepository) ReviewRequest(_ context.Context, r certificate.Request) (certificate.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.rows[r.ID]
	if !ok {
		return certificate.Request{}, certificate.ErrNotFound
	}
	if !stored.IsPending() {
		return certificate.Request{}, certificate.ErrReviewed
	}
	reviewed := *stored
	reviewed.Status = r.Status
	reviewed.RejectionReason = r.RejectionReason
	reviewed.ReviewedBy = r.ReviewedBy
	reviewed.ReviewedAt = r.ReviewedAt
	repo.db.rows[r.ID] = &reviewed
	return reviewed, nil
}
