package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
)

type mentorRepository struct {
	db *table[mentor.Mentor]
}

var _ mentor.Repository = (*mentorRepository)(nil) // interface compliance check

func NewMentorRepository(db *DB) mentor.Repository {
	return &mentorRepository{db: db.mentors}
}

func (repo *mentorRepository) CreateMentor(_ context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = uuid.New().String()
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *mentorRepository) GetMentor(_ context.Context, filter mentor.GetFilter) (mentor.Mentor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if m, ok := repo.db.rows[filter.ID]; ok {
			return *m, nil
		}
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	for _, m := range repo.db.rows {
		if filter.Email != "" && m.Email == filter.Email {
			return *m, nil
		}
	}
	return mentor.Mentor{}, mentor.ErrNotFound
}

func (repo *mentorRepository) QueryMentors(_ context.Context) ([]mentor.Mentor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mentors := repo.db.all()
	sortRows(mentors, nil, comparators[mentor.Mentor]{
		"name": func(a, b mentor.Mentor) int { return compareFold(a.Name, b.Name) },
	}, core.DBOrdering{Field: "name", Ascending: true})
	return mentors, nil
}

func (repo *mentorRepository) UpdateMentor(_ context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[m.ID]; !ok {
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}
