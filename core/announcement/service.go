package announcement

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
)

var ErrNotFound = core.NewNotFoundError("announcement")

type Repository interface {
	CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	GetAnnouncement(ctx context.Context, id string) (Announcement, error)
	// QueryAnnouncements lists the announcements of a club, newest first.
	QueryAnnouncements(ctx context.Context, clubID string) ([]Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

type Service struct {
	repo    Repository
	members *member.Service
	mailSvc core.EmailService
}

func NewService(repo Repository, members *member.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, members: members, mailSvc: mailSvc}
}

// Create publishes an announcement and, unless disabled, emails it to the club members.
// na must be validated. The returned int is the number of emailed members.
func (svc *Service) Create(ctx context.Context, c club.Club, na NewAnnouncement) (Announcement, int, error) {
	a := Announcement{
		ClubID:    c.ID,
		Title:     na.Title,
		Content:   na.Content,
		CreatedAt: core.Now(),
	}
	a, err := svc.repo.CreateAnnouncement(ctx, a)
	if err != nil {
		return Announcement{}, 0, errors.Wrap(err, "creating announcement")
	}
	if !na.ShouldNotify() {
		return a, 0, nil
	}
	n, err := svc.Notify(ctx, c, a)
	return a, n, err
}

// Get returns an announcement of the given club.
func (svc *Service) Get(ctx context.Context, clubID, id string) (Announcement, error) {
	a, err := svc.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if a.ClubID != clubID {
		return Announcement{}, ErrNotFound
	}
	return a, nil
}

func (svc *Service) List(ctx context.Context, clubID string) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, clubID)
}

func (svc *Service) Delete(ctx context.Context, clubID, id string) error {
	if _, err := svc.Get(ctx, clubID, id); err != nil {
		return err
	}
	return svc.repo.DeleteAnnouncement(ctx, id)
}

// Notify emails an announcement to every member of the club having an email address.
// Each member gets a separate message. It returns the number of recipients.
func (svc *Service) Notify(ctx context.Context, c club.Club, a Announcement) (int, error) {
	members, err := svc.members.Query(ctx, c.ID, nil, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying members")
	}

	messages := make([]*core.EmailMessage, 0, len(members))
	for _, m := range members {
		if m.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: m.Name, Address: m.Email}},
			Subject:      "[" + c.Name + "] " + a.Title,
			TemplateName: "announcement",
			TemplateData: EmailData{
				RecipientName: m.Name,
				ClubName:      c.Name,
				Title:         a.Title,
				Content:       a.Content,
			},
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
	return len(messages), nil
}
