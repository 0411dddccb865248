// Package postgres implements the storage ports on PostgreSQL through
// pgxpool. Driver errors are translated into the apperr taxonomy here so no
// pgx type leaks past the adapter.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/port"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	openInvoiceIndex = "invoice_campaigns_open_uniq"
)

// Store implements port.Store using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a store backed by pool. The caller owns the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ port.Store = (*Store)(nil)

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return translate("ping", s.pool.Ping(ctx))
}

// inTx runs fn inside a transaction, committing when fn succeeds.
func (s *Store) inTx(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	return fn(tx)
}

// translate maps driver errors to apperr kinds. Errors already in the
// taxonomy and ErrStale pass through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) || errors.Is(err, port.ErrStale) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			var e *apperr.Error
			if pgErr.ConstraintName == openInvoiceIndex {
				e = apperr.Conflict("a campaign on this invoice is already billed on an open invoice")
			} else {
				e = apperr.Conflict("%s: record already exists", op)
			}
			e.Cause = err
			return e
		case codeForeignKeyViolation:
			e := apperr.Conflict("%s: referenced record is missing or still in use", op)
			e.Cause = err
			return e
		case codeCheckViolation:
			e := apperr.Validation(pgErr.ConstraintName, "%s: value violates %s", op, pgErr.ConstraintName)
			e.Cause = err
			return e
		}
	}
	return apperr.Storage(op, err)
}

// notFound maps pgx.ErrNoRows to a NotFound error for entity.
func notFound(op, entity, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	return translate(op, err)
}

// filter accumulates AND-ed predicates with positional arguments. Each
// clause references its argument as $%[1]d.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(clause, len(f.args)))
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

func strs[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
