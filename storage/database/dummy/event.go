package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/event"
)

type eventRepository struct {
	events *table[event.Event]
	images *table[event.EventImage]
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{events: db.events, images: db.eventImages}
}

func (repo *eventRepository) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.events.Lock()
	defer repo.events.Unlock()

	e.ID = uuid.New().String()
	e.Images = nil
	repo.events.rows[e.ID] = &e
	return e, nil
}

// eventImages returns the images of an event, oldest first.
func (repo *eventRepository) eventImages(eventID string) []event.EventImage {
	repo.images.RLock()
	defer repo.images.RUnlock()

	images := make([]event.EventImage, 0)
	for _, img := range repo.images.all() {
		if img.EventID == eventID {
			images = append(images, img)
		}
	}
	sortRows(images, nil, comparators[event.EventImage]{
		"created_at": func(a, b event.EventImage) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}, core.DBOrdering{Field: "created_at", Ascending: true})
	return images
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	repo.events.RLock()
	e, ok := repo.events.rows[id]
	repo.events.RUnlock()
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	ev := *e
	ev.Images = repo.eventImages(id)
	return ev, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter) ([]event.Event, error) {
	repo.events.RLock()
	defer repo.events.RUnlock()

	events := make([]event.Event, 0)
	for _, e := range repo.events.all() {
		if filter != nil {
			if filter.ClubID != "" && e.ClubID != filter.ClubID {
				continue
			}
			if filter.Institution && !e.IsInstitutionWide() {
				continue
			}
			if filter.Upcoming {
				end := e.StartsAt
				if e.EndsAt != nil {
					end = *e.EndsAt
				}
				if end.Before(filter.Now) {
					continue
				}
			}
		}
		events = append(events, e)
	}
	sortRows(events, nil, comparators[event.Event]{
		"starts_at": func(a, b event.Event) int { return a.StartsAt.Compare(b.StartsAt) },
	}, core.DBOrdering{Field: "starts_at", Ascending: true})
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.events.Lock()
	defer repo.events.Unlock()

	if _, ok := repo.events.rows[e.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	e.Images = nil
	repo.events.rows[e.ID] = &e
	return e, nil
}

func (repo *eventRepository) DeleteEvent(_ context.Context, id string) error {
	repo.events.Lock()
	if _, ok := repo.events.rows[id]; !ok {
		repo.events.Unlock()
		return event.ErrNotFound
	}
	delete(repo.events.rows, id)
	repo.events.Unlock()

	repo.images.Lock()
	defer repo.images.Unlock()
	for imgID, img := range repo.images.rows {
		if img.EventID == id {
			delete(repo.images.rows, imgID)
		}
	}
	return nil
}

func (repo *eventRepository) CreateEventImage(_ context.Context, img event.EventImage) (event.EventImage, error) {
	repo.images.Lock()
	defer repo.images.Unlock()

	img.ID = uuid.New().String()
	repo.images.rows[img.ID] = &img
	return img, nil
}

func (repo *eventRepository) GetEventImage(_ context.Context, id string) (event.EventImage, error) {
	repo.images.RLock()
	defer repo.images.RUnlock()

	if img, ok := repo.images.rows[id]; ok {
		return *img, nil
	}
	return event.EventImage{}, event.ErrImageNotFound
}

func (repo *eventRepository) DeleteEventImage(_ context.Context, id string) error {
	repo.images.Lock()
	defer repo.images.Unlock()

	if _, ok := repo.images.rows[id]; !ok {
		return event.ErrImageNotFound
	}
	delete(repo.images.rows, id)
	return nil
}
