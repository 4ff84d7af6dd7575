package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
)

const mentorTable = "mentors"

var mentorColumns = []string{"id", "name", "email", "department", "is_active", "password_hash", "last_login", "created_at", "updated_at"}

type mentorRow struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	Department   string     `db:"department"`
	IsActive     bool       `db:"is_active"`
	PasswordHash null.Bytes `db:"password_hash"`
	LastLogin    null.Time  `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func boilMentor(m mentor.Mentor) mentorRow {
	return mentorRow{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Department:   m.Department,
		IsActive:     m.IsActive,
		PasswordHash: null.NewBytes(m.PasswordHash, m.PasswordHash != nil),
		LastLogin:    null.NewTime(m.LastLogin.UTC(), !m.LastLogin.IsZero()),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func (r mentorRow) unboil() mentor.Mentor {
	m := mentor.Mentor{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Department:  r.Department,
		IsActive:    r.IsActive,
		Credentials: account.Credentials{PasswordHash: r.PasswordHash.Bytes},
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		m.LastLogin = r.LastLogin.Time.UTC()
	}
	return m
}

type mentorRepository struct {
	repository
}

var _ mentor.Repository = (*mentorRepository)(nil) // interface compliance check

func NewMentorRepository(db *sqlx.DB) mentor.Repository {
	return &mentorRepository{repository{db: db}}
}

func (repo *mentorRepository) CreateMentor(ctx context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	m.ID = uuid.New().String()
	r := boilMentor(m)
	b := psql.Insert(mentorTable).
		Columns(mentorColumns...).
		Values(r.ID, r.Name, r.Email, r.Department, r.IsActive, r.PasswordHash, r.LastLogin, r.CreatedAt, r.UpdatedAt)
	if _, err := repo.execute(ctx, b, existsErr(mentor.ErrEmailExists, "email"), "inserting mentor"); err != nil {
		return mentor.Mentor{}, err
	}
	return m, nil
}

func (repo *mentorRepository) GetMentor(ctx context.Context, filter mentor.GetFilter) (mentor.Mentor, error) {
	b := psql.Select(mentorColumns...).From(mentorTable)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return mentor.Mentor{}, mentor.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		b = b.Where(sq.Eq{"email": filter.Email})
	default:
		return mentor.Mentor{}, mentor.ErrNotFound
	}

	var row mentorRow
	if err := repo.get(ctx, &row, b, mentor.ErrNotFound, "finding mentor"); err != nil {
		return mentor.Mentor{}, err
	}
	return row.unboil(), nil
}

func (repo *mentorRepository) QueryMentors(ctx context.Context) ([]mentor.Mentor, error) {
	b := psql.Select(mentorColumns...).From(mentorTable).OrderBy("name ASC")

	var rows []mentorRow
	if err := repo.selectAll(ctx, &rows, b, "querying mentors"); err != nil {
		return nil, err
	}
	mentors := make([]mentor.Mentor, 0, len(rows))
	for _, r := range rows {
		mentors = append(mentors, r.unboil())
	}
	return mentors, nil
}

func (repo *mentorRepository) UpdateMentor(ctx context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	r := boilMentor(m)
	b := psql.Update(mentorTable).
		SetMap(map[string]interface{}{
			"name":          r.Name,
			"email":         r.Email,
			"department":    r.Department,
			"is_active":     r.IsActive,
			"password_hash": r.PasswordHash,
			"last_login":    r.LastLogin,
			"updated_at":    r.UpdatedAt,
		}).
		Where(sq.Eq{"id": m.ID})
	if err := repo.mustAffect(ctx, b, mentor.ErrNotFound, existsErr(mentor.ErrEmailExists, "email"), "updating mentor"); err != nil {
		return mentor.Mentor{}, err
	}
	return m, nil
}
