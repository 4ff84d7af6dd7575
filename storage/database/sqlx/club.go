package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
)

const clubTable = "clubs"

var (
	clubColumns = []string{
		"id", "name", "username", "email", "short_description", "description", "logo_url",
		"instagram", "linkedin", "twitter", "website", "is_active", "registration_open",
		"password_hash", "last_login", "created_at", "updated_at",
	}
	clubOrdering = map[string]string{
		"name":       "name",
		"username":   "username",
		"created_at": "created_at",
	}
)

type clubRow struct {
	ID               string      `db:"id"`
	Name             string      `db:"name"`
	Username         string      `db:"username"`
	Email            string      `db:"email"`
	ShortDescription string      `db:"short_description"`
	Description      string      `db:"description"`
	LogoURL          null.String `db:"logo_url"`
	Instagram        null.String `db:"instagram"`
	LinkedIn         null.String `db:"linkedin"`
	Twitter          null.String `db:"twitter"`
	Website          null.String `db:"website"`
	IsActive         bool        `db:"is_active"`
	RegistrationOpen bool        `db:"registration_open"`
	PasswordHash     null.Bytes  `db:"password_hash"`
	LastLogin        null.Time   `db:"last_login"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func boilClub(c club.Club) clubRow {
	return clubRow{
		ID:               c.ID,
		Name:             c.Name,
		Username:         c.Username,
		Email:            c.Email,
		ShortDescription: c.ShortDescription,
		Description:      c.Description,
		LogoURL:          nullString(c.LogoURL),
		Instagram:        nullString(c.SocialLinks.Instagram),
		LinkedIn:         nullString(c.SocialLinks.LinkedIn),
		Twitter:          nullString(c.SocialLinks.Twitter),
		Website:          nullString(c.SocialLinks.Website),
		IsActive:         c.IsActive,
		RegistrationOpen: c.RegistrationOpen,
		PasswordHash:     null.NewBytes(c.PasswordHash, c.PasswordHash != nil),
		LastLogin:        null.NewTime(c.LastLogin.UTC(), !c.LastLogin.IsZero()),
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func (r clubRow) values() []interface{} {
	return []interface{}{
		r.ID, r.Name, r.Username, r.Email, r.ShortDescription, r.Description, r.LogoURL,
		r.Instagram, r.LinkedIn, r.Twitter, r.Website, r.IsActive, r.RegistrationOpen,
		r.PasswordHash, r.LastLogin, r.CreatedAt, r.UpdatedAt,
	}
}

func (r clubRow) unboil() club.Club {
	c := club.Club{
		ID:               r.ID,
		Name:             r.Name,
		Username:         r.Username,
		Email:            r.Email,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		LogoURL:          r.LogoURL.String,
		SocialLinks: club.SocialLinks{
			Instagram: r.Instagram.String,
			LinkedIn:  r.LinkedIn.String,
			Twitter:   r.Twitter.String,
			Website:   r.Website.String,
		},
		IsActive:         r.IsActive,
		RegistrationOpen: r.RegistrationOpen,
		Credentials:      account.Credentials{PasswordHash: r.PasswordHash.Bytes},
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		c.LastLogin = r.LastLogin.Time.UTC()
	}
	return c
}

type clubRepository struct {
	repository
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *sqlx.DB) club.Repository {
	return &clubRepository{repository{db: db}}
}

func (repo *clubRepository) CheckUniqueness(ctx context.Context, name, username string, excludedIDs ...string) error {
	b := psql.Select("name", "username").
		From(clubTable).
		Where(sq.Or{sq.Expr("LOWER(name) = LOWER(?)", name), sq.Eq{"username": username}}).
		Limit(1)
	if len(excludedIDs) > 0 {
		b = b.Where(sq.NotEq{"id": excludedIDs})
	}

	var found struct {
		Name     string `db:"name"`
		Username string `db:"username"`
	}
	if err := repo.get(ctx, &found, b, nil, "checking club uniqueness"); err != nil {
		return err
	}
	switch {
	case strings.EqualFold(found.Name, name):
		return club.ErrNameExists
	case found.Username != "" && found.Username == username:
		return club.ErrUsernameExists
	}
	return nil
}

func (repo *clubRepository) CreateClub(ctx context.Context, c club.Club) (club.Club, error) {
	c.ID = uuid.New().String()
	b := psql.Insert(clubTable).Columns(clubColumns...).Values(boilClub(c).values()...)
	if _, err := repo.execute(ctx, b, existsErr(club.ErrUsernameExists, "username"), "inserting club"); err != nil {
		return club.Club{}, err
	}
	return c, nil
}

func (repo *clubRepository) GetClub(ctx context.Context, filter club.GetFilter) (club.Club, error) {
	b := psql.Select(clubColumns...).From(clubTable)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return club.Club{}, club.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		b = b.Where(sq.Eq{"username": filter.Username})
	case filter.Email != "":
		b = b.Where(sq.Eq{"email": filter.Email}).OrderBy("created_at ASC").Limit(1)
	default:
		return club.Club{}, club.ErrNotFound
	}

	var row clubRow
	if err := repo.get(ctx, &row, b, club.ErrNotFound, "finding club"); err != nil {
		return club.Club{}, err
	}
	return row.unboil(), nil
}

func (repo *clubRepository) QueryClubs(ctx context.Context, filter *club.QueryFilter, ordering []core.DBOrdering) ([]club.Club, error) {
	b := psql.Select(clubColumns...).From(clubTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(ilike(filter.Search, "name", "username", "short_description"))
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if filter.RegistrationOpen != nil {
			b = b.Where(sq.Eq{"registration_open": *filter.RegistrationOpen})
		}
	}
	b = orderBy(b, ordering, clubOrdering, core.DBOrdering{Field: "name", Ascending: true})

	var rows []clubRow
	if err := repo.selectAll(ctx, &rows, b, "querying clubs"); err != nil {
		return nil, err
	}
	clubs := make([]club.Club, 0, len(rows))
	for _, r := range rows {
		clubs = append(clubs, r.unboil())
	}
	return clubs, nil
}

func (repo *clubRepository) UpdateClub(ctx context.Context, c club.Club) (club.Club, error) {
	r := boilClub(c)
	b := psql.Update(clubTable).
		SetMap(map[string]interface{}{
			"name":              r.Name,
			"email":             r.Email,
			"short_description": r.ShortDescription,
			"description":       r.Description,
			"logo_url":          r.LogoURL,
			"instagram":         r.Instagram,
			"linkedin":          r.LinkedIn,
			"twitter":           r.Twitter,
			"website":           r.Website,
			"is_active":         r.IsActive,
			"registration_open": r.RegistrationOpen,
			"password_hash":     r.PasswordHash,
			"last_login":        r.LastLogin,
			"updated_at":        r.UpdatedAt,
		}).
		Where(sq.Eq{"id": c.ID})
	if err := repo.mustAffect(ctx, b, club.ErrNotFound, existsErr(club.ErrNameExists, "name"), "updating club"); err != nil {
		return club.Club{}, err
	}
	return c, nil
}
