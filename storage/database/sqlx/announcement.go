package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
)

const announcementTable = "announcements"

var announcementColumns = []string{"id", "club_id", "title", "content", "created_at"}

type announcementRow struct {
	ID        string    `db:"id"`
	ClubID    string    `db:"club_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (r announcementRow) unboil() announcement.Announcement {
	return announcement.Announcement{
		ID:        r.ID,
		ClubID:    r.ClubID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type announcementRepository struct {
	repository
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{repository{db: db}}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = uuid.New().String()
	b := psql.Insert(announcementTable).
		Columns(announcementColumns...).
		Values(a.ID, a.ClubID, a.Title, a.Content, a.CreatedAt.UTC())
	if _, err := repo.execute(ctx, b, nil, "inserting announcement"); err != nil {
		return announcement.Announcement{}, err
	}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (announcement.Announcement, error) {
	if !isUUID(id) {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	var row announcementRow
	b := psql.Select(announcementColumns...).From(announcementTable).Where(sq.Eq{"id": id})
	if err := repo.get(ctx, &row, b, announcement.ErrNotFound, "finding announcement"); err != nil {
		return announcement.Announcement{}, err
	}
	return row.unboil(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, clubID string) ([]announcement.Announcement, error) {
	if !isUUID(clubID) {
		return []announcement.Announcement{}, nil
	}
	b := psql.Select(announcementColumns...).
		From(announcementTable).
		Where(sq.Eq{"club_id": clubID}).
		OrderBy("created_at DESC")

	var rows []announcementRow
	if err := repo.selectAll(ctx, &rows, b, "querying announcements"); err != nil {
		return nil, err
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, r := range rows {
		anns = append(anns, r.unboil())
	}
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	b := psql.Delete(announcementTable).Where(sq.Eq{"id": id})
	return repo.mustAffect(ctx, b, announcement.ErrNotFound, nil, "deleting announcement")
}
