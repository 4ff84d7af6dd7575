package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

const studentTable = "students"

var (
	studentColumns  = []string{"id", "roll_number", "name", "email", "branch", "year", "is_active", "password_hash", "last_login", "created_at", "updated_at"}
	studentOrdering = map[string]string{
		"roll_number": "roll_number",
		"name":        "name",
		"year":        "year",
		"created_at":  "created_at",
	}
)

type studentRow struct {
	ID           string     `db:"id"`
	RollNumber   string     `db:"roll_number"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	Branch       string     `db:"branch"`
	Year         int        `db:"year"`
	IsActive     bool       `db:"is_active"`
	PasswordHash null.Bytes `db:"password_hash"`
	LastLogin    null.Time  `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r studentRow) values() []interface{} {
	return []interface{}{r.ID, r.RollNumber, r.Name, r.Email, r.Branch, r.Year, r.IsActive, r.PasswordHash, r.LastLogin, r.CreatedAt, r.UpdatedAt}
}

func boilStudent(st student.Student) studentRow {
	return studentRow{
		ID:           st.ID,
		RollNumber:   st.RollNumber,
		Name:         st.Name,
		Email:        st.Email,
		Branch:       st.Branch,
		Year:         st.Year,
		IsActive:     st.IsActive,
		PasswordHash: null.NewBytes(st.PasswordHash, st.PasswordHash != nil),
		LastLogin:    null.NewTime(st.LastLogin.UTC(), !st.LastLogin.IsZero()),
		CreatedAt:    st.CreatedAt.UTC(),
		UpdatedAt:    st.UpdatedAt.UTC(),
	}
}

func (r studentRow) unboil() student.Student {
	st := student.Student{
		ID:         r.ID,
		RollNumber: r.RollNumber,
		Name:       r.Name,
		Email:      r.Email,
		Branch:     r.Branch,
		Year:       r.Year,
		IsActive:   r.IsActive,
		Credentials: account.Credentials{
			PasswordHash: r.PasswordHash.Bytes,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		st.LastLogin = r.LastLogin.Time.UTC()
	}
	return st
}

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{repository{db: db}}
}

func (repo *studentRepository) CheckUniqueness(ctx context.Context, rollNumber, email string, excludedIDs ...string) error {
	b := psql.Select("roll_number").
		From(studentTable).
		Where(sq.Or{sq.Eq{"roll_number": rollNumber}, sq.Eq{"email": email}}).
		Limit(1)
	if len(excludedIDs) > 0 {
		b = b.Where(sq.NotEq{"id": excludedIDs})
	}

	var roll string
	err := repo.get(ctx, &roll, b, nil, "checking student uniqueness")
	switch {
	case err != nil:
		return err
	case roll == "":
		return nil
	case roll == rollNumber:
		return student.ErrRollNumberExists
	default:
		return student.ErrEmailExists
	}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row := boilStudent(st)
	b := psql.Insert(studentTable).Columns(studentColumns...).Values(row.values()...)
	if _, err := repo.execute(ctx, b, existsErr(student.ErrRollNumberExists, "roll_number"), "inserting student"); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	b := psql.Select(studentColumns...).From(studentTable)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return student.Student{}, student.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	case filter.RollNumber != "":
		b = b.Where(sq.Eq{"roll_number": filter.RollNumber})
	case filter.Email != "":
		b = b.Where(sq.Eq{"email": filter.Email})
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	if err := repo.get(ctx, &row, b, student.ErrNotFound, "finding student"); err != nil {
		return student.Student{}, err
	}
	return row.unboil(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	b := psql.Select(studentColumns...).From(studentTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(ilike(filter.Search, "name", "roll_number", "email"))
		}
		if filter.Branch != "" {
			b = b.Where(sq.Eq{"branch": filter.Branch})
		}
		if filter.Year != 0 {
			b = b.Where(sq.Eq{"year": filter.Year})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	b = orderBy(b, ordering, studentOrdering, core.DBOrdering{Field: "roll_number", Ascending: true})

	var rows []studentRow
	if err := repo.selectAll(ctx, &rows, b, "querying students"); err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unboil())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := boilStudent(st)
	b := psql.Update(studentTable).
		SetMap(map[string]interface{}{
			"name":          row.Name,
			"email":         row.Email,
			"branch":        row.Branch,
			"year":          row.Year,
			"is_active":     row.IsActive,
			"password_hash": row.PasswordHash,
			"last_login":    row.LastLogin,
			"updated_at":    row.UpdatedAt,
		}).
		Where(sq.Eq{"id": st.ID})
	if err := repo.mustAffect(ctx, b, student.ErrNotFound, existsErr(student.ErrEmailExists, "email"), "updating student"); err != nil {
		return student.Student{}, err
	}
	return st, nil
}
