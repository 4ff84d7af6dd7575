package core

import (
	"context"
	"io"
)

// Transactor runs fn within a single database transaction.
// Repositories called with the ctx passed to fn take part in the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FileStorage stores uploaded files (club logos, event images).
type FileStorage interface {
	// Save writes r under dir and returns the public URL of the stored file.
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
