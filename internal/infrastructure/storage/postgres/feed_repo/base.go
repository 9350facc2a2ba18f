// Package feed_repo provides PostgreSQL repositories for the dashboard feeds.
package feed_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dice/internal/domain"
	"dice/internal/infrastructure/storage/postgres"
)

// upsertChunk caps rows per INSERT statement.
const upsertChunk = 500

var idColumn = []string{"id"}

// tableRepo implements loading and upserting of one record table. Columns
// come from T's "db" tags.
type tableRepo[T any] struct {
	txm     *postgres.TxManager
	table   string
	cols    []string
	orderBy string
}

func newTableRepo[T any](txm *postgres.TxManager, table, orderBy string) *tableRepo[T] {
	return &tableRepo[T]{
		txm:     txm,
		table:   table,
		cols:    postgres.Columns[T](),
		orderBy: orderBy,
	}
}

// builder returns a squirrel builder with PostgreSQL placeholders.
func (r *tableRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *tableRepo[T]) selectQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.builder().
		Select(r.cols...).
		From(r.table)

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if r.orderBy != "" {
		q = q.OrderBy(r.orderBy)
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

// List loads rows matching filter in storage order.
func (r *tableRepo[T]) List(ctx context.Context, filter domain.ListFilter) ([]T, error) {
	sql, args, err := r.selectQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []T{}
	err = r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		return pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return items, nil
}

// uniqueByID drops repeated IDs so one statement never touches a row twice.
// The last occurrence wins and keeps the position of the first.
func (r *tableRepo[T]) uniqueByID(rows []T) []T {
	pos := make(map[any]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		id := postgres.RowValues(row, idColumn)[0]
		if i, ok := pos[id]; ok {
			out[i] = row
			continue
		}
		pos[id] = len(out)
		out = append(out, row)
	}
	return out
}

// upsertQuery inserts rows and overwrites every non-key column on conflict.
func (r *tableRepo[T]) upsertQuery(rows []T) squirrel.InsertBuilder {
	q := r.builder().
		Insert(r.table).
		Columns(r.cols...)
	for _, row := range rows {
		q = q.Values(postgres.RowValues(row, r.cols)...)
	}

	set := make([]string, 0, len(r.cols))
	for _, col := range r.cols {
		if col == "id" {
			continue
		}
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return q.Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(set, ", "))
}

// Upsert writes rows in chunks inside one transaction. Rows sharing an ID
// collapse to the last one.
func (r *tableRepo[T]) Upsert(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	rows = r.uniqueByID(rows)
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)
		for start := 0; start < len(rows); start += upsertChunk {
			end := min(start+upsertChunk, len(rows))
			sql, args, err := r.upsertQuery(rows[start:end]).ToSql()
			if err != nil {
				return fmt.Errorf("build upsert: %w", err)
			}
			if _, err := querier.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("upsert %s: %w", r.table, err)
			}
		}
		return nil
	})
}
