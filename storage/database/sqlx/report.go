package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/report"
)

const reportTable = "club_reports"

var (
	reportColumns  = []string{"id", "club_id", "kind", "title", "payload", "created_at", "updated_at"}
	reportOrdering = map[string]string{
		"title":      "title",
		"kind":       "kind",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
)

type reportRow struct {
	ID        string         `db:"id"`
	ClubID    string         `db:"club_id"`
	Kind      string         `db:"kind"`
	Title     string         `db:"title"`
	Payload   types.JSONText `db:"payload"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r reportRow) unboil() report.Report {
	return report.Report{
		ID:        r.ID,
		ClubID:    r.ClubID,
		Kind:      report.Kind(r.Kind),
		Title:     r.Title,
		Payload:   json.RawMessage(r.Payload),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type reportRepository struct {
	repository
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) report.Repository {
	return &reportRepository{repository{db: db}}
}

func (repo *reportRepository) CreateReport(ctx context.Context, r report.Report) (report.Report, error) {
	r.ID = uuid.New().String()
	b := psql.Insert(reportTable).
		Columns(reportColumns...).
		Values(r.ID, r.ClubID, string(r.Kind), r.Title, types.JSONText(r.Payload), r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	if _, err := repo.execute(ctx, b, nil, "inserting report"); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (repo *reportRepository) GetReport(ctx context.Context, id string) (report.Report, error) {
	if !isUUID(id) {
		return report.Report{}, report.ErrNotFound
	}
	var row reportRow
	b := psql.Select(reportColumns...).From(reportTable).Where(sq.Eq{"id": id})
	if err := repo.get(ctx, &row, b, report.ErrNotFound, "finding report"); err != nil {
		return report.Report{}, err
	}
	return row.unboil(), nil
}

func (repo *reportRepository) QueryReports(ctx context.Context, filter *report.QueryFilter, ordering []core.DBOrdering) ([]report.Report, error) {
	b := psql.Select(reportColumns...).From(reportTable)
	if filter != nil {
		if filter.ClubID != "" {
			if !isUUID(filter.ClubID) {
				return []report.Report{}, nil
			}
			b = b.Where(sq.Eq{"club_id": filter.ClubID})
		}
		if filter.Kind != "" {
			b = b.Where(sq.Eq{"kind": string(filter.Kind)})
		}
	}
	b = orderBy(b, ordering, reportOrdering, core.DBOrdering{Field: "created_at"})

	var rows []reportRow
	if err := repo.selectAll(ctx, &rows, b, "querying reports"); err != nil {
		return nil, err
	}
	reports := make([]report.Report, 0, len(rows))
	for _, r := range rows {
		reports = append(reports, r.unboil())
	}
	return reports, nil
}

func (repo *reportRepository) UpdateReport(ctx context.Context, r report.Report) (report.Report, error) {
	b := psql.Update(reportTable).
		SetMap(map[string]interface{}{
			"title":      r.Title,
			"payload":    types.JSONText(r.Payload),
			"updated_at": r.UpdatedAt.UTC(),
		}).
		Where(sq.Eq{"id": r.ID})
	if err := repo.mustAffect(ctx, b, report.ErrNotFound, nil, "updating report"); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (repo *reportRepository) DeleteReport(ctx context.Context, id string) error {
	b := psql.Delete(reportTable).Where(sq.Eq{"id": id})
	return repo.mustAffect(ctx, b, report.ErrNotFound, nil, "deleting report")
}
