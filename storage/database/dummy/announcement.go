package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
)

type announcementRepository struct {
	db *table[announcement.Announcement]
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcements}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.rows[id]; ok {
		return *a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, clubID string) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]announcement.Announcement, 0)
	for _, a := range repo.db.all() {
		if a.ClubID == clubID {
			anns = append(anns, a)
		}
	}
	sortRows(anns, nil, comparators[announcement.Announcement]{
		"created_at": func(a, b announcement.Announcement) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}, core.DBOrdering{Field: "created_at"})
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
