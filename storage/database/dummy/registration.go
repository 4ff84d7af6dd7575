package dummydb

import (
	"cmp"
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
)

var registrationOrdering = comparators[registration.Registration]{
	"student_name": func(a, b registration.Registration) int { return compareFold(a.StudentName, b.StudentName) },
	"roll_number":  func(a, b registration.Registration) int { return cmp.Compare(a.RollNumber, b.RollNumber) },
	"status":       func(a, b registration.Registration) int { return cmp.Compare(a.Status, b.Status) },
	"created_at":   func(a, b registration.Registration) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type registrationRepository struct {
	db *table[registration.Registration]
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registrations}
}

func (repo *registrationRepository) CreateRegistration(_ context.Context, r registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.rows {
		if other.ClubID == r.ClubID && other.StudentID == r.StudentID {
			return registration.Registration{}, registration.ErrDuplicate
		}
	}
	r.ID = uuid.New().String()
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *registrationRepository) GetRegistration(_ context.Context, id string) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.rows[id]; ok {
		return *r, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) FindRegistration(_ context.Context, clubID, studentID string) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.rows {
		if r.ClubID == clubID && r.StudentID == studentID {
			return *r, nil
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) QueryRegistrations(_ context.Context, filter *registration.QueryFilter, ordering []core.DBOrdering) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]registration.Registration, 0)
	for _, r := range repo.db.all() {
		if filter != nil {
			if filter.ClubID != "" && r.ClubID != filter.ClubID {
				continue
			}
			if filter.StudentID != "" && r.StudentID != filter.StudentID {
				continue
			}
			if filter.Status != "" && r.Status != filter.Status {
				continue
			}
			if filter.Search != "" && !contains(filter.Search, r.StudentName, r.RollNumber, r.Email) {
				continue
			}
		}
		regs = append(regs, r)
	}
	sortRows(regs, ordering, registrationOrdering, core.DBOrdering{Field: "created_at"})
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistration(_ context.Context, r registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[r.ID]; !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *registrationRepository) ReviewRegistration(_ context.Context, r registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.rows[r.ID]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	if !stored.IsPending() {
		return registration.Registration{}, registration.ErrReviewed
	}
	reviewed := *stored
	reviewed.Status = r.Status
	reviewed.RejectionReason = r.RejectionReason
	reviewed.ReviewedAt = r.ReviewedAt
	repo.db.rows[r.ID] = &reviewed
	return reviewed, nil
}
