package sqlxrepos

import (
	"context"
	"database/sql"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

// uniqueViolation is the postgres error code of unique constraints violations.
const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type txKey struct{}

type transactor struct {
	db *sqlx.DB
}

var _ core.Transactor = (*transactor)(nil) // interface compliance check

func NewTransactor(db *sqlx.DB) core.Transactor {
	return &transactor{db: db}
}

// WithinTx runs fn within a transaction, committed if fn succeeds and rolled back otherwise.
// Nested calls join the outer transaction.
func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// repository is embedded by all repositories.
type repository struct {
	db *sqlx.DB
}

// exec returns the transaction carried by ctx, or the database.
func (repo repository) exec(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return repo.db
}

func (repo repository) get(ctx context.Context, dest interface{}, b sq.Sqlizer, notFound error, msg string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.exec(ctx), dest, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return notFound
		}
		return errors.Wrap(err, msg)
	}
	return nil
}

func (repo repository) selectAll(ctx context.Context, dest interface{}, b sq.Sqlizer, msg string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return errors.Wrap(sqlx.SelectContext(ctx, repo.exec(ctx), dest, query, args...), msg)
}

// execute runs b and returns the number of affected rows.
// A unique constraint violation is reported as `exists`.
func (repo repository) execute(ctx context.Context, b sq.Sqlizer, exists error, msg string) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.exec(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation && exists != nil {
			return 0, exists
		}
		return 0, errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, msg)
}

// mustAffect runs b and returns notFound if no row was affected.
func (repo repository) mustAffect(ctx context.Context, b sq.Sqlizer, notFound, exists error, msg string) error {
	n, err := repo.execute(ctx, b, exists, msg)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// orderBy applies the orderings on whitelisted fields, mapped to their column by columns.
// Unknown fields are ignored. def is appended as a tie-breaker.
func orderBy(b sq.SelectBuilder, ordering []core.DBOrdering, columns map[string]string, def ...core.DBOrdering) sq.SelectBuilder {
	var clauses []string
	for _, ord := range slices.Concat(ordering, def) {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) > 0 {
		b = b.OrderBy(clauses...)
	}
	return b
}

// ilike matches the search keyword against any of the columns.
func ilike(search string, columns ...string) sq.Or {
	val := "%" + search + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: val})
	}
	return or
}

// existsErr reports err as a validation error on field.
func existsErr(err error, field string) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// isUUID reports whether id can be compared with uuid columns.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
