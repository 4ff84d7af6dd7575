package event

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("event")
	ErrImageNotFound = core.NewNotFoundError("event image")
	ErrForbidden     = core.NewPermissionError("you cannot manage this event")
)

type Repository interface {
	CreateEvent(ctx context.Context, e Event) (Event, error)
	// GetEvent returns an event with its images.
	GetEvent(ctx context.Context, id string) (Event, error)
	// QueryEvents returns events without their images, ordered by start time.
	QueryEvents(ctx context.Context, filter *QueryFilter) ([]Event, error)
	UpdateEvent(ctx context.Context, e Event) (Event, error)
	// DeleteEvent deletes an event and its images.
	DeleteEvent(ctx context.Context, id string) error

	CreateEventImage(ctx context.Context, img EventImage) (EventImage, error)
	GetEventImage(ctx context.Context, id string) (EventImage, error)
	DeleteEventImage(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	files  core.FileStorage
	logger core.Logger
}

func NewService(repo Repository, files core.FileStorage, logger core.Logger) *Service {
	return &Service{repo: repo, files: files, logger: logger}
}

func (svc *Service) Get(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

// GetOwned returns an event managed by the given club, or by the mentors if clubID is empty.
func (svc *Service) GetOwned(ctx context.Context, clubID, id string) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if !e.OwnedBy(clubID) {
		return Event{}, ErrForbidden
	}
	return e, nil
}

func (svc *Service) List(ctx context.Context, filter *QueryFilter) ([]Event, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if filter.Upcoming && filter.Now.IsZero() {
		filter.Now = core.Now()
	}
	return svc.repo.QueryEvents(ctx, filter)
}

// Create creates an event of the given club, or an institution-wide one if clubID is empty.
// ed must be validated.
func (svc *Service) Create(ctx context.Context, clubID string, ed EventData) (Event, error) {
	now := core.Now()
	e := Event{
		ClubID:    clubID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.apply(ed)
	e, err := svc.repo.CreateEvent(ctx, e)
	return e, errors.Wrap(err, "creating event")
}

// Update replaces the editable information of an event. ed must be validated.
func (svc *Service) Update(ctx context.Context, e Event, ed EventData) (Event, error) {
	e.apply(ed)
	e.UpdatedAt = core.Now()
	images := e.Images
	e, err := svc.repo.UpdateEvent(ctx, e)
	if err != nil {
		return Event{}, errors.Wrap(err, "updating event")
	}
	e.Images = images
	return e, nil
}

func (e *Event) apply(ed EventData) {
	e.Title = ed.Title
	e.Description = ed.Description
	e.Venue = ed.Venue
	e.StartsAt = ed.StartsAt
	e.EndsAt = ed.EndsAt
	e.RegistrationURL = ed.RegistrationURL
}

// Delete deletes an event, its images and their files.
func (svc *Service) Delete(ctx context.Context, e Event) error {
	if err := svc.repo.DeleteEvent(ctx, e.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	for _, img := range e.Images {
		if err := svc.files.Delete(ctx, img.URL); err != nil {
			svc.logger.Warn("event.Delete: deleting image file", img.URL, err)
		}
	}
	return nil
}

// AddImage stores an uploaded image of an event.
func (svc *Service) AddImage(ctx context.Context, e Event, up UploadImage, r io.Reader) (EventImage, error) {
	ext, ok := core.ImageExtension(up.ContentType)
	if !ok {
		return EventImage{}, core.ErrInvalidImage
	}
	url, err := svc.files.Save(ctx, "events/"+e.ID, uuid.New().String()+ext, r)
	if err != nil {
		return EventImage{}, errors.Wrap(err, "saving image")
	}

	img := EventImage{
		EventID:   e.ID,
		URL:       url,
		Caption:   core.CleanString(up.Caption),
		CreatedAt: core.Now(),
	}
	if img, err = svc.repo.CreateEventImage(ctx, img); err != nil {
		_ = svc.files.Delete(ctx, url)
		return EventImage{}, errors.Wrap(err, "creating event image")
	}
	return img, nil
}

// DeleteImage deletes an image of the given event and its file.
func (svc *Service) DeleteImage(ctx context.Context, e Event, imageID string) error {
	img, err := svc.repo.GetEventImage(ctx, imageID)
	if err != nil {
		return err
	}
	if img.EventID != e.ID {
		return ErrImageNotFound
	}
	if err = svc.repo.DeleteEventImage(ctx, img.ID); err != nil {
		return errors.Wrap(err, "deleting event image")
	}
	return errors.Wrap(svc.files.Delete(ctx, img.URL), "deleting image file")
}
