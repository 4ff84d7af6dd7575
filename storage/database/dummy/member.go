package dummydb

import (
	"cmp"
	"context"

	"github.com/google/uuid"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
)

var memberOrdering = comparators[member.Member]{
	"name":        func(a, b member.Member) int { return compareFold(a.Name, b.Name) },
	"roll_number": func(a, b member.Member) int { return cmp.Compare(a.RollNumber, b.RollNumber) },
	"position":    func(a, b member.Member) int { return cmp.Compare(a.Position, b.Position) },
	"joined_at":   func(a, b member.Member) int { return a.JoinedAt.Compare(b.JoinedAt) },
}

type memberRepository struct {
	db *table[member.Member]
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.members}
}

func (repo *memberRepository) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.rows {
		if other.ClubID == m.ClubID && other.RollNumber == m.RollNumber {
			return member.Member{}, member.ErrDuplicate
		}
	}
	m.ID = uuid.New().String()
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *memberRepository) GetMember(_ context.Context, clubID, id string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.rows[id]; ok && m.ClubID == clubID {
		return *m, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByRollNumber(_ context.Context, clubID, rollNumber string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, m := range repo.db.rows {
		if m.ClubID == clubID && m.RollNumber == rollNumber {
			return *m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) QueryMembers(_ context.Context, clubID string, filter *member.QueryFilter, ordering []core.DBOrdering) ([]member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]member.Member, 0)
	for _, m := range repo.db.all() {
		if m.ClubID != clubID {
			continue
		}
		if filter != nil {
			if filter.Search != "" && !contains(filter.Search, m.Name, m.RollNumber, m.Email) {
				continue
			}
			if filter.Position != "" && m.Position != filter.Position {
				continue
			}
		}
		members = append(members, m)
	}
	sortRows(members, ordering, memberOrdering, core.DBOrdering{Field: "joined_at", Ascending: true})
	return members, nil
}

func (repo *memberRepository) CountMembers(_ context.Context, clubID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	for _, m := range repo.db.rows {
		if m.ClubID == clubID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *memberRepository) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.rows[m.ID]; !ok || orig.ClubID != m.ClubID {
		return member.Member{}, member.ErrNotFound
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *memberRepository) DeleteMember(_ context.Context, clubID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if m, ok := repo.db.rows[id]; !ok || m.ClubID != clubID {
		return member.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
