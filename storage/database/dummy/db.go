package dummydb

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/event"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/core/report"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

type (
	// DB is an in-memory database. It is safe for concurrent use.
	DB struct {
		students      *table[student.Student]
		mentors       *table[mentor.Mentor]
		clubs         *table[club.Club]
		sessions      *table[session.Session]
		members       *table[member.Member]
		registrations *table[registration.Registration]
		announcements *table[announcement.Announcement]
		events        *table[event.Event]
		eventImages   *table[event.EventImage]
		reports       *table[report.Report]
		certificates  *table[certificate.Request]
	}

	table[T any] struct {
		sync.RWMutex
		rows map[string]*T
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

// all returns a copy of the rows. The caller must hold the lock.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, *r)
	}
	return rows
}

func Open() *DB {
	return &DB{
		students:      newTable[student.Student](),
		mentors:       newTable[mentor.Mentor](),
		clubs:         newTable[club.Club](),
		sessions:      newTable[session.Session](),
		members:       newTable[member.Member](),
		registrations: newTable[registration.Registration](),
		announcements: newTable[announcement.Announcement](),
		events:        newTable[event.Event](),
		eventImages:   newTable[event.EventImage](),
		reports:       newTable[report.Report](),
		certificates:  newTable[certificate.Request](),
	}
}

type transactor struct{}

var _ core.Transactor = transactor{} // interface compliance check

// NewTransactor returns a Transactor running fn directly: the in-memory database has no rollback.
func NewTransactor() core.Transactor {
	return transactor{}
}

func (transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// comparators maps the orderable fields of T to their comparison function.
type comparators[T any] map[string]func(a, b T) int

// sortRows sorts rows by ordering, ignoring unknown fields, then by the def ordering.
func sortRows[T any](rows []T, ordering []core.DBOrdering, cmps comparators[T], def ...core.DBOrdering) {
	ordering = append(slices.Clone(ordering), def...)
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, ord := range ordering {
			cmpFn, ok := cmps[ord.Field]
			if !ok {
				continue
			}
			if c := cmpFn(a, b); c != 0 {
				if ord.Ascending {
					return c
				}
				return -c
			}
		}
		return 0
	})
}

func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// contains reports whether any of vals contains the search keyword (case-insensitive).
func contains(search string, vals ...string) bool {
	search = strings.ToLower(search)
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}
