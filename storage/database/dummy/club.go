package dummydb

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
)

var clubOrdering = comparators[club.Club]{
	"name":       func(a, b club.Club) int { return compareFold(a.Name, b.Name) },
	"username":   func(a, b club.Club) int { return compareFold(a.Username, b.Username) },
	"created_at": func(a, b club.Club) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type clubRepository struct {
	db *table[club.Club]
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *DB) club.Repository {
	return &clubRepository{db: db.clubs}
}

func (repo *clubRepository) CheckUniqueness(_ context.Context, name, username string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.rows {
		if slices.Contains(excludedIDs, c.ID) {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return club.ErrNameExists
		}
		if c.Username == username {
			return club.ErrUsernameExists
		}
	}
	return nil
}

func (repo *clubRepository) CreateClub(_ context.Context, c club.Club) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *clubRepository) GetClub(_ context.Context, filter club.GetFilter) (club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if c, ok := repo.db.rows[filter.ID]; ok {
			return *c, nil
		}
		return club.Club{}, club.ErrNotFound
	}
	for _, c := range repo.db.rows {
		if (filter.Username != "" && c.Username == filter.Username) ||
			(filter.Email != "" && c.Email == filter.Email) {
			return *c, nil
		}
	}
	return club.Club{}, club.ErrNotFound
}

func (repo *clubRepository) QueryClubs(_ context.Context, filter *club.QueryFilter, ordering []core.DBOrdering) ([]club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	clubs := make([]club.Club, 0)
	for _, c := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !contains(filter.Search, c.Name, c.Username, c.ShortDescription) {
				continue
			}
			if filter.IsActive != nil && c.IsActive != *filter.IsActive {
				continue
			}
			if filter.RegistrationOpen != nil && c.RegistrationOpen != *filter.RegistrationOpen {
				continue
			}
		}
		clubs = append(clubs, c)
	}
	sortRows(clubs, ordering, clubOrdering, core.DBOrdering{Field: "name", Ascending: true})
	return clubs, nil
}

func (repo *clubRepository) UpdateClub(_ context.Context, c club.Club) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[c.ID]; !ok {
		return club.Club{}, club.ErrNotFound
	}
	repo.db.rows[c.ID] = &c
	return c, nil
}
