package dummydb

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

var studentOrdering = comparators[student.Student]{
	"roll_number": func(a, b student.Student) int { return cmp.Compare(a.RollNumber, b.RollNumber) },
	"name":        func(a, b student.Student) int { return compareFold(a.Name, b.Name) },
	"year":        func(a, b student.Student) int { return cmp.Compare(a.Year, b.Year) },
	"created_at":  func(a, b student.Student) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type studentRepository struct {
	db *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.students}
}

func (repo *studentRepository) CheckUniqueness(_ context.Context, rollNumber, email string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.rows {
		if slices.Contains(excludedIDs, st.ID) {
			continue
		}
		if st.RollNumber == rollNumber {
			return student.ErrRollNumberExists
		}
		if st.Email == email {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	st.ID = uuid.New().String()
	repo.db.rows[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if st, ok := repo.db.rows[filter.ID]; ok {
			return *st, nil
		}
		return student.Student{}, student.ErrNotFound
	}
	for _, st := range repo.db.rows {
		if (filter.RollNumber != "" && st.RollNumber == filter.RollNumber) ||
			(filter.Email != "" && st.Email == filter.Email) {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, st := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !contains(filter.Search, st.Name, st.RollNumber, st.Email) {
				continue
			}
			if filter.Branch != "" && st.Branch != filter.Branch {
				continue
			}
			if filter.Year != 0 && st.Year != filter.Year {
				continue
			}
			if filter.IsActive != nil && st.IsActive != *filter.IsActive {
				continue
			}
		}
		students = append(students, st)
	}
	sortRows(students, ordering, studentOrdering, core.DBOrdering{Field: "roll_number", Ascending: true})
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.rows[st.ID] = &st
	return st, nil
}
