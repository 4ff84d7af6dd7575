package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core/event"
)

const (
	eventTable      = "events"
	eventImageTable = "event_images"
)

var (
	eventColumns      = []string{"id", "club_id", "title", "description", "venue", "starts_at", "ends_at", "registration_url", "created_at", "updated_at"}
	eventImageColumns = []string{"id", "event_id", "url", "caption", "created_at"}
)

type eventRow struct {
	ID              string      `db:"id"`
	ClubID          null.String `db:"club_id"`
	Title           string      `db:"title"`
	Description     string      `db:"description"`
	Venue           string      `db:"venue"`
	StartsAt        time.Time   `db:"starts_at"`
	EndsAt          null.Time   `db:"ends_at"`
	RegistrationURL null.String `db:"registration_url"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (r eventRow) unboil() event.Event {
	e := event.Event{
		ID:              r.ID,
		ClubID:          r.ClubID.String,
		Title:           r.Title,
		Description:     r.Description,
		Venue:           r.Venue,
		StartsAt:        r.StartsAt.UTC(),
		RegistrationURL: r.RegistrationURL.String,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if r.EndsAt.Valid {
		t := r.EndsAt.Time.UTC()
		e.EndsAt = &t
	}
	return e
}

type eventImageRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	URL       string    `db:"url"`
	Caption   string    `db:"caption"`
	CreatedAt time.Time `db:"created_at"`
}

func (r eventImageRow) unboil() event.EventImage {
	return event.EventImage{
		ID:        r.ID,
		EventID:   r.EventID,
		URL:       r.URL,
		Caption:   r.Caption,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type eventRepository struct {
	repository
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{repository{db: db}}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e.ID = uuid.New().String()
	e.Images = nil
	b := psql.Insert(eventTable).
		Columns(eventColumns...).
		Values(
			e.ID, nullString(e.ClubID), e.Title, e.Description, e.Venue, e.StartsAt.UTC(),
			nullTimePtr(e.EndsAt), nullString(e.RegistrationURL), e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
		)
	if _, err := repo.execute(ctx, b, nil, "inserting event"); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if !isUUID(id) {
		return event.Event{}, event.ErrNotFound
	}
	var row eventRow
	b := psql.Select(eventColumns...).From(eventTable).Where(sq.Eq{"id": id})
	if err := repo.get(ctx, &row, b, event.ErrNotFound, "finding event"); err != nil {
		return event.Event{}, err
	}

	var imgRows []eventImageRow
	ib := psql.Select(eventImageColumns...).
		From(eventImageTable).
		Where(sq.Eq{"event_id": id}).
		OrderBy("created_at ASC")
	if err := repo.selectAll(ctx, &imgRows, ib, "querying event images"); err != nil {
		return event.Event{}, err
	}

	e := row.unboil()
	e.Images = make([]event.EventImage, 0, len(imgRows))
	for _, r := range imgRows {
		e.Images = append(e.Images, r.unboil())
	}
	return e, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter) ([]event.Event, error) {
	b := psql.Select(eventColumns...).From(eventTable)
	if filter != nil {
		if filter.ClubID != "" {
			if !isUUID(filter.ClubID) {
				return []event.Event{}, nil
			}
			b = b.Where(sq.Eq{"club_id": filter.ClubID})
		}
		if filter.Institution {
			b = b.Where(sq.Eq{"club_id": nil})
		}
		if filter.Upcoming {
			b = b.Where("COALESCE(ends_at, starts_at) >= ?", filter.Now.UTC())
		}
	}
	b = b.OrderBy("starts_at ASC")

	var rows []eventRow
	if err := repo.selectAll(ctx, &rows, b, "querying events"); err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.unboil())
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e.Images = nil
	b := psql.Update(eventTable).
		SetMap(map[string]interface{}{
			"title":            e.Title,
			"description":      e.Description,
			"venue":            e.Venue,
			"starts_at":        e.StartsAt.UTC(),
			"ends_at":          nullTimePtr(e.EndsAt),
			"registration_url": nullString(e.RegistrationURL),
			"updated_at":       e.UpdatedAt.UTC(),
		}).
		Where(sq.Eq{"id": e.ID})
	if err := repo.mustAffect(ctx, b, event.ErrNotFound, nil, "updating event"); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// DeleteEvent deletes an event. Its images are deleted by cascade.
func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	b := psql.Delete(eventTable).Where(sq.Eq{"id": id})
	return repo.mustAffect(ctx, b, event.ErrNotFound, nil, "deleting event")
}

func (repo *eventRepository) CreateEventImage(ctx context.Context, img event.EventImage) (event.EventImage, error) {
	img.ID = uuid.New().String()
	b := psql.Insert(eventImageTable).
		Columns(eventImageColumns...).
		Values(img.ID, img.EventID, img.URL, img.Caption, img.CreatedAt.UTC())
	if _, err := repo.execute(ctx, b, nil, "inserting event image"); err != nil {
		return event.EventImage{}, err
	}
	return img, nil
}

func (repo *eventRepository) GetEventImage(ctx context.Context, id string) (event.EventImage, error) {
	if !isUUID(id) {
		return event.EventImage{}, event.ErrImageNotFound
	}
	var row eventImageRow
	b := psql.Select(eventImageColumns...).From(eventImageTable).Where(sq.Eq{"id": id})
	if err := repo.get(ctx, &row, b, event.ErrImageNotFound, "finding event image"); err != nil {
		return event.EventImage{}, err
	}
	return row.unboil(), nil
}

func (repo *eventRepository) DeleteEventImage(ctx context.Context, id string) error {
	b := psql.Delete(eventImageTable).Where(sq.Eq{"id": id})
	return repo.mustAffect(ctx, b, event.ErrImageNotFound, nil, "deleting event image")
}
