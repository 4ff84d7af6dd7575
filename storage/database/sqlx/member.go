package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
)

const memberTable = "club_members"

var (
	memberColumns  = []string{"id", "club_id", "student_id", "name", "roll_number", "email", "position", "joined_at"}
	memberOrdering = map[string]string{
		"name":        "name",
		"roll_number": "roll_number",
		"position":    "position",
		"joined_at":   "joined_at",
	}
)

type memberRow struct {
	ID         string      `db:"id"`
	ClubID     string      `db:"club_id"`
	StudentID  null.String `db:"student_id"`
	Name       string      `db:"name"`
	RollNumber string      `db:"roll_number"`
	Email      string      `db:"email"`
	Position   string      `db:"position"`
	JoinedAt   time.Time   `db:"joined_at"`
}

func (r memberRow) unboil() member.Member {
	return member.Member{
		ID:         r.ID,
		ClubID:     r.ClubID,
		StudentID:  r.StudentID.String,
		Name:       r.Name,
		RollNumber: r.RollNumber,
		Email:      r.Email,
		Position:   r.Position,
		JoinedAt:   r.JoinedAt.UTC(),
	}
}

type memberRepository struct {
	repository
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *sqlx.DB) member.Repository {
	return &memberRepository{repository{db: db}}
}

func (repo *memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	m.ID = uuid.New().String()
	b := psql.Insert(memberTable).
		Columns(memberColumns...).
		Values(m.ID, m.ClubID, nullString(m.StudentID), m.Name, m.RollNumber, m.Email, m.Position, m.JoinedAt.UTC())
	if _, err := repo.execute(ctx, b, member.ErrDuplicate, "inserting member"); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (repo *memberRepository) getMember(ctx context.Context, where sq.Eq) (member.Member, error) {
	var row memberRow
	b := psql.Select(memberColumns...).From(memberTable).Where(where)
	if err := repo.get(ctx, &row, b, member.ErrNotFound, "finding member"); err != nil {
		return member.Member{}, err
	}
	return row.unboil(), nil
}

func (repo *memberRepository) GetMember(ctx context.Context, clubID, id string) (member.Member, error) {
	if !isUUID(id) || !isUUID(clubID) {
		return member.Member{}, member.ErrNotFound
	}
	return repo.getMember(ctx, sq.Eq{"id": id, "club_id": clubID})
}

func (repo *memberRepository) GetMemberByRollNumber(ctx context.Context, clubID, rollNumber string) (member.Member, error) {
	if !isUUID(clubID) {
		return member.Member{}, member.ErrNotFound
	}
	return repo.getMember(ctx, sq.Eq{"club_id": clubID, "roll_number": rollNumber})
}

func (repo *memberRepository) QueryMembers(ctx context.Context, clubID string, filter *member.QueryFilter, ordering []core.DBOrdering) ([]member.Member, error) {
	b := psql.Select(memberColumns...).From(memberTable).Where(sq.Eq{"club_id": clubID})
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(ilike(filter.Search, "name", "roll_number", "email"))
		}
		if filter.Position != "" {
			b = b.Where(sq.Eq{"position": filter.Position})
		}
	}
	b = orderBy(b, ordering, memberOrdering, core.DBOrdering{Field: "joined_at", Ascending: true})

	var rows []memberRow
	if err := repo.selectAll(ctx, &rows, b, "querying members"); err != nil {
		return nil, err
	}
	members := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.unboil())
	}
	return members, nil
}

func (repo *memberRepository) CountMembers(ctx context.Context, clubID string) (int, error) {
	var cnt int
	b := psql.Select("COUNT(*)").From(memberTable).Where(sq.Eq{"club_id": clubID})
	err := repo.get(ctx, &cnt, b, nil, "counting members")
	return cnt, err
}

func (repo *memberRepository) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	b := psql.Update(memberTable).
		SetMap(map[string]interface{}{
			"name":     m.Name,
			"email":    m.Email,
			"position": m.Position,
		}).
		Where(sq.Eq{"id": m.ID, "club_id": m.ClubID})
	if err := repo.mustAffect(ctx, b, member.ErrNotFound, nil, "updating member"); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (repo *memberRepository) DeleteMember(ctx context.Context, clubID, id string) error {
	if !isUUID(id) {
		return member.ErrNotFound
	}
	b := psql.Delete(memberTable).Where(sq.Eq{"id": id, "club_id": clubID})
	return repo.mustAffect(ctx, b, member.ErrNotFound, nil, "deleting member")
}
