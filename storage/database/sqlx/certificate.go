package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
)

const certificateTable = "certificate_requests"

var (
	certificateColumns = []string{
		"id", "club_id", "student_name", "roll_number", "event_name", "description",
		"status", "rejection_reason", "reviewed_by", "reviewed_at", "created_at",
	}
	certificateOrdering = map[string]string{
		"student_name": "cr.student_name",
		"status":       "cr.status",
		"created_at":   "cr.created_at",
	}
)

type certificateRow struct {
	ID              string      `db:"id"`
	ClubID          string      `db:"club_id"`
	ClubName        string      `db:"club_name"`
	StudentName     string      `db:"student_name"`
	RollNumber      string      `db:"roll_number"`
	EventName       string      `db:"event_name"`
	Description     string      `db:"description"`
	Status          string      `db:"status"`
	RejectionReason null.String `db:"rejection_reason"`
	ReviewedBy      null.String `db:"reviewed_by"`
	ReviewedAt      null.Time   `db:"reviewed_at"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r certificateRow) unboil() certificate.Request {
	req := certificate.Request{
		ID:              r.ID,
		ClubID:          r.ClubID,
		ClubName:        r.ClubName,
		StudentName:     r.StudentName,
		RollNumber:      r.RollNumber,
		EventName:       r.EventName,
		Description:     r.Description,
		Status:          certificate.Status(r.Status),
		RejectionReason: r.RejectionReason.String,
		ReviewedBy:      r.ReviewedBy.String,
		CreatedAt:       r.CreatedAt.UTC(),
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time.UTC()
		req.ReviewedAt = &t
	}
	return req
}

// selectCertificates selects certificate requests with the name of their club.
func selectCertificates() sq.SelectBuilder {
	cols := make([]string, 0, len(certificateColumns)+1)
	for _, col := range certificateColumns {
		cols = append(cols, "cr."+col)
	}
	cols = append(cols, "c.name AS club_name")
	return psql.Select(cols...).
		From(certificateTable + " cr").
		Join(clubTable + " c ON c.id = cr.club_id")
}

type certificateRepository struct {
	repository
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *sqlx.DB) certificate.Repository {
	return &certificateRepository{repository{db: db}}
}

func (repo *certificateRepository) CreateRequest(ctx context.Context, r certificate.Request) (certificate.Request, error) {
	r.ID = uuid.New().String()
	b := psql.Insert(certificateTable).
		Columns(certificateColumns...).
		Values(
			r.ID, r.ClubID, r.StudentName, r.RollNumber, r.EventName, r.Description,
			string(r.Status), nullString(r.RejectionReason), nullString(r.ReviewedBy), nullTimePtr(r.ReviewedAt), r.CreatedAt.UTC(),
		)
	if _, err := repo.execute(ctx, b, nil, "inserting certificate request"); err != nil {
		return certificate.Request{}, err
	}
	return r, nil
}

func (repo *certificateRepository) GetRequest(ctx context.Context, id string) (certificate.Request, error) {
	if !isUUID(id) {
		return certificate.Request{}, certificate.ErrNotFound
	}
	var row certificateRow
	b := selectCertificates().Where(sq.Eq{"cr.id": id})
	if err := repo.get(ctx, &row, b, certificate.ErrNotFound, "finding certificate request"); err != nil {
		return certificate.Request{}, err
	}
	return row.unboil(), nil
}

func (repo *certificateRepository) QueryRequests(ctx context.Context, filter *certificate.QueryFilter, ordering []core.DBOrdering) ([]certificate.Request, error) {
	b := selectCertificates()
	if filter != nil {
		if filter.ClubID != "" {
			if !isUUID(filter.ClubID) {
				return []certificate.Request{}, nil
			}
			b = b.Where(sq.Eq{"cr.club_id": filter.ClubID})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"cr.status": string(filter.Status)})
		}
	}
	b = orderBy(b, ordering, certificateOrdering, core.DBOrdering{Field: "created_at"})

	var rows []certificateRow
	if err := repo.selectAll(ctx, &rows, b, "querying certificate requests"); err != nil {
		return nil, err
	}
	reqs := make([]certificate.Request, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.unboil())
	}
	return reqs, nil
}

// ReviewRequest only updates a pending request, so concurrent reviews cannot both succeed.
func (repo *certificateRepository) ReviewRequest(ctx context.Context, r certificate.Request) (certificate.Request, error) {
	b := psql.Update(certificateTable).
		SetMap(map[string]interface{}{
			"status":           string(r.Status),
			"rejection_reason": nullString(r.RejectionReason),
			"reviewed_by":      nullString(r.ReviewedBy),
			"reviewed_at":      nullTimePtr(r.ReviewedAt),
		}).
		Where(sq.Eq{"id": r.ID, "status": string(certificate.StatusPending)})
	if err := repo.mustAffect(ctx, b, certificate.ErrReviewed, nil, "reviewing certificate request"); err != nil {
		return certificate.Request{}, err
	}
	return r, nil
}
