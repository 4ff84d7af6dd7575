package dummydb

import (
	"cmp"
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/report"
)

var reportOrdering = comparators[report.Report]{
	"title":      func(a, b report.Report) int { return compareFold(a.Title, b.Title) },
	"kind":       func(a, b report.Report) int { return cmp.Compare(a.Kind, b.Kind) },
	"created_at": func(a, b report.Report) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at": func(a, b report.Report) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

type reportRepository struct {
	db *table[report.Report]
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db.reports}
}

func (repo *reportRepository) CreateReport(_ context.Context, r report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = uuid.New().String()
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *reportRepository) GetReport(_ context.Context, id string) (report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.rows[id]; ok {
		return *r, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) QueryReports(_ context.Context, filter *report.QueryFilter, ordering []core.DBOrdering) ([]report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reports := make([]report.Report, 0)
	for _, r := range repo.db.all() {
		if filter != nil {
			if filter.ClubID != "" && r.ClubID != filter.ClubID {
				continue
			}
			if filter.Kind != "" && r.Kind != filter.Kind {
				continue
			}
		}
		reports = append(reports, r)
	}
	sortRows(reports, ordering, reportOrdering, core.DBOrdering{Field: "created_at"})
	return reports, nil
}

func (repo *reportRepository) UpdateReport(_ context.Context, r report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[r.ID]; !ok {
		return report.Report{}, report.ErrNotFound
	}
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *reportRepository) DeleteReport(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return report.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
