package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
)

const registrationTable = "club_registrations"

var (
	registrationColumns = []string{
		"id", "club_id", "student_id", "student_name", "roll_number", "email", "branch", "year",
		"reason", "status", "rejection_reason", "reviewed_at", "created_at",
	}
	registrationOrdering = map[string]string{
		"student_name": "r.student_name",
		"roll_number":  "r.roll_number",
		"status":       "r.status",
		"created_at":   "r.created_at",
	}
)

type registrationRow struct {
	ID              string      `db:"id"`
	ClubID          string      `db:"club_id"`
	ClubName        string      `db:"club_name"`
	StudentID       string      `db:"student_id"`
	StudentName     string      `db:"student_name"`
	RollNumber      string      `db:"roll_number"`
	Email           string      `db:"email"`
	Branch          string      `db:"branch"`
	Year            int         `db:"year"`
	Reason          string      `db:"reason"`
	Status          string      `db:"status"`
	RejectionReason null.String `db:"rejection_reason"`
	ReviewedAt      null.Time   `db:"reviewed_at"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r registrationRow) unboil() registration.Registration {
	reg := registration.Registration{
		ID:              r.ID,
		ClubID:          r.ClubID,
		ClubName:        r.ClubName,
		StudentID:       r.StudentID,
		StudentName:     r.StudentName,
		RollNumber:      r.RollNumber,
		Email:           r.Email,
		Branch:          r.Branch,
		Year:            r.Year,
		Reason:          r.Reason,
		Status:          registration.Status(r.Status),
		RejectionReason: r.RejectionReason.String,
		CreatedAt:       r.CreatedAt.UTC(),
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time.UTC()
		reg.ReviewedAt = &t
	}
	return reg
}

func nullTimePtr(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

type registrationRepository struct {
	repository
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sqlx.DB) registration.Repository {
	return &registrationRepository{repository{db: db}}
}

// selectRegistrations selects registrations with the name of their club.
func selectRegistrations() sq.SelectBuilder {
	cols := make([]string, 0, len(registrationColumns)+1)
	for _, col := range registrationColumns {
		cols = append(cols, "r."+col)
	}
	cols = append(cols, "c.name AS club_name")
	return psql.Select(cols...).
		From(registrationTable + " r").
		Join(clubTable + " c ON c.id = r.club_id")
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	r.ID = uuid.New().String()
	b := psql.Insert(registrationTable).
		Columns(registrationColumns...).
		Values(
			r.ID, r.ClubID, r.StudentID, r.StudentName, r.RollNumber, r.Email, r.Branch, r.Year,
			r.Reason, string(r.Status), nullString(r.RejectionReason), nullTimePtr(r.ReviewedAt), r.CreatedAt.UTC(),
		)
	if _, err := repo.execute(ctx, b, registration.ErrDuplicate, "inserting registration"); err != nil {
		return registration.Registration{}, err
	}
	return r, nil
}

func (repo *registrationRepository) getRegistration(ctx context.Context, where sq.Eq) (registration.Registration, error) {
	var row registrationRow
	if err := repo.get(ctx, &row, selectRegistrations().Where(where), registration.ErrNotFound, "finding registration"); err != nil {
		return registration.Registration{}, err
	}
	return row.unboil(), nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	if !isUUID(id) {
		return registration.Registration{}, registration.ErrNotFound
	}
	return repo.getRegistration(ctx, sq.Eq{"r.id": id})
}

func (repo *registrationRepository) FindRegistration(ctx context.Context, clubID, studentID string) (registration.Registration, error) {
	return repo.getRegistration(ctx, sq.Eq{"r.club_id": clubID, "r.student_id": studentID})
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter *registration.QueryFilter, ordering []core.DBOrdering) ([]registration.Registration, error) {
	b := selectRegistrations()
	if filter != nil {
		if filter.ClubID != "" {
			b = b.Where(sq.Eq{"r.club_id": filter.ClubID})
		}
		if filter.StudentID != "" {
			b = b.Where(sq.Eq{"r.student_id": filter.StudentID})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"r.status": string(filter.Status)})
		}
		if filter.Search != "" {
			b = b.Where(ilike(filter.Search, "r.student_name", "r.roll_number", "r.email"))
		}
	}
	b = orderBy(b, ordering, registrationOrdering, core.DBOrdering{Field: "created_at"})

	var rows []registrationRow
	if err := repo.selectAll(ctx, &rows, b, "querying registrations"); err != nil {
		return nil, err
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, r.unboil())
	}
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	b := psql.Update(registrationTable).
		SetMap(map[string]interface{}{
			"student_name":     r.StudentName,
			"roll_number":      r.RollNumber,
			"email":            r.Email,
			"branch":           r.Branch,
			"year":             r.Year,
			"reason":           r.Reason,
			"status":           string(r.Status),
			"rejection_reason": nullString(r.RejectionReason),
			"reviewed_at":      nullTimePtr(r.ReviewedAt),
			"created_at":       r.CreatedAt.UTC(),
		}).
		Where(sq.Eq{"id": r.ID})
	if err := repo.mustAffect(ctx, b, registration.ErrNotFound, nil, "updating registration"); err != nil {
		return registration.Registration{}, err
	}
	return r, nil
}

// ReviewRegistration only updates a pending registration, so concurrent reviews cannot both succeed.
func (repo *registrationRepository) ReviewRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	b := psql.Update(registrationTable).
		SetMap(map[string]interface{}{
			"status":           string(r.Status),
			"rejection_reason": nullString(r.RejectionReason),
			"reviewed_at":      nullTimePtr(r.ReviewedAt),
		}).
		Where(sq.Eq{"id": r.ID, "status": string(registration.StatusPending)})
	if err := repo.mustAffect(ctx, b, registration.ErrReviewed, nil, "reviewing registration"); err != nil {
		return registration.Registration{}, err
	}
	return r, nil
}
