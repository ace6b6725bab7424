package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spilled-server/internal/interfaces"
)

// BaseRepository implements the generic single-table operations shared by
// every entity repository: lookup by id, insert, partial update, delete and
// filtered find/count. T is the row model; its fields carry db tags matching
// the column names.
type BaseRepository[T any] struct {
	pool     interfaces.PgxPoolIface
	table    string
	idColumn string
	columns  []string
}

// NewBaseRepository wires a base repository to one table. columns lists
// every selectable column including the id column.
func NewBaseRepository[T any](pool interfaces.PgxPoolIface, table, idColumn string, columns []string) *BaseRepository[T] {
	return &BaseRepository[T]{pool: pool, table: table, idColumn: idColumn, columns: columns}
}

func (r *BaseRepository[T]) columnList() string {
	return strings.Join(r.columns, ", ")
}

// FindByID returns the row with the given id, or nil without an error when
// no such row exists. Absence is a domain value here, not a failure.
func (r *BaseRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	op := r.table + ".findById"
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", r.columnList(), r.table, r.idColumn)

	rows, err := r.pool.Query(ctx, queryString, id)
	if err != nil {
		return nil, translateError(op, err)
	}
	record, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(op, err)
	}
	return record, nil
}

// Create inserts a row from parallel column/value slices and returns the row
// as stored, including database-assigned defaults.
func (r *BaseRepository[T]) Create(ctx context.Context, columns []string, values []any) (*T, error) {
	op := r.table + ".create"
	placeholders := make([]string, 0, len(values))
	builder := &QueryBuilder{}
	for _, value := range values {
		placeholders = append(placeholders, builder.Bind(value))
	}
	queryString := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), r.columnList())

	rows, err := r.pool.Query(ctx, queryString, builder.Args()...)
	if err != nil {
		return nil, translateError(op, err)
	}
	record, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, translateError(op, err)
	}
	return record, nil
}

// Update applies a partial patch to the row with the given id and returns
// the updated row, or nil when no row matched. The patch keys are column
// names; they are applied in sorted order so the statement is deterministic.
func (r *BaseRepository[T]) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*T, error) {
	op := r.table + ".update"
	if len(patch) == 0 {
		return r.FindByID(ctx, id)
	}

	columns := make([]string, 0, len(patch))
	for column := range patch {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	builder := &QueryBuilder{}
	assignments := make([]string, 0, len(columns))
	for _, column := range columns {
		assignments = append(assignments, column+" = "+builder.Bind(patch[column]))
	}
	queryString := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		r.table, strings.Join(assignments, ", "), r.idColumn, builder.Bind(id), r.columnList())

	rows, err := r.pool.Query(ctx, queryString, builder.Args()...)
	if err != nil {
		return nil, translateError(op, err)
	}
	record, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(op, err)
	}
	return record, nil
}

// Delete removes the row with the given id and reports whether a row was
// actually removed.
func (r *BaseRepository[T]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	op := r.table + ".delete"
	queryString := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table, r.idColumn)

	tag, err := r.pool.Exec(ctx, queryString, id)
	if err != nil {
		return false, translateError(op, err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindMany returns the rows matching an optional predicate, ordered and
// paginated. predicate and args come from a QueryBuilder; an empty predicate
// selects the whole table.
func (r *BaseRepository[T]) FindMany(ctx context.Context, predicate string, args []any, orderBy string, params PageParams) ([]T, error) {
	op := r.table + ".findMany"
	queryString := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		r.columnList(), r.table, WhereClause(predicate), orderBy, params.Limit, params.Offset())

	rows, err := r.pool.Query(ctx, queryString, args...)
	if err != nil {
		return nil, translateError(op, err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, translateError(op, err)
	}
	return records, nil
}

// Count returns the number of rows matching an optional predicate.
func (r *BaseRepository[T]) Count(ctx context.Context, predicate string, args []any) (int, error) {
	op := r.table + ".count"
	queryString := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.table, WhereClause(predicate))

	var count int
	if err := r.pool.QueryRow(ctx, queryString, args...).Scan(&count); err != nil {
		return 0, translateError(op, err)
	}
	return count, nil
}

// runInTransaction executes fn inside a transaction: commit on success,
// rollback on any error, with the transaction released on every path.
func runInTransaction(ctx context.Context, pool interfaces.PgxPoolIface, op string, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return translateError(op, err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logWarn(op, "transaction rollback failed", rollbackErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translateError(op, err)
	}
	return nil
}
