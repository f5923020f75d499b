// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
	"github.com/taibuivan/mediacatalog/internal/platform/dberr"
)

/*
NewPostgresRepositories returns repositories backed by the migrated catalog schema.

  - JSON Aggregation: Each read hydrates relations through json_agg sub-selects,
    so a row and its relations come from one statement and one snapshot.
  - ACID Transactions: Every write runs in one transaction. Referenced rows are
    locked FOR SHARE before use and the target row FOR UPDATE before replace.
  - Schema Constraints: ON DELETE SET NULL detaches works from deleted owners.
    ON DELETE CASCADE removes junction rows of deleted works and genres.
*/
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Authors:   newPostgresOwnerRepository(pool, authorTables, buildAuthor, authorRow),
		Directors: newPostgresOwnerRepository(pool, directorTables, buildDirector, directorRow),
		Genres:    &postgresGenreRepository{pool: pool},
		Books:     newPostgresWorkRepository(pool, bookTables, buildBook, bookRow),
		Movies:    newPostgresWorkRepository(pool, movieTables, buildMovie, movieRow),
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// psql builds statements with PostgreSQL positional placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// # Shared Helpers

// likePattern turns a search term into an ILIKE pattern matching it anywhere.
// Backslash is PostgreSQL's default LIKE escape character.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// storableID reports whether id fits the INTEGER identity columns. Any other
// id cannot name a row, and binding it would fail parameter encoding.
func storableID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}

// toSQL renders a statement, reporting builder failures as internal errors.
func toSQL(builder squirrel.Sqlizer) (string, []any, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return "", nil, apperr.Internal(fmt.Errorf("postgres: build statement: %w", err))
	}
	return sql, args, nil
}

/*
requireRows locks the referenced rows and reports the first missing id.

Description: Runs SELECT ... FOR SHARE so that a concurrent delete of a
referenced row waits for this transaction to finish.

Returns:
  - error: apperr.ForeignKey naming field for the first id that does not exist
*/
func requireRows(ctx context.Context, q querier, table, idColumn string, ids []int, field string, kind Kind) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !storableID(id) {
			return missingReference(field, kind, id)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ANY($1) FOR SHARE", idColumn, table, idColumn)
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return dberr.Wrap(err, "lock_"+string(kind))
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return dberr.Wrap(err, "lock_"+string(kind))
	}

	present := make(map[int]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return missingReference(field, kind, id)
		}
	}
	return nil
}

// lockRow takes a row lock on the target of a replace, or reports NOT_FOUND.
func lockRow(ctx context.Context, q querier, table, idColumn string, id int, kind Kind) error {
	if !storableID(id) {
		return notFound(kind)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 FOR UPDATE", idColumn, table, idColumn)

	var locked int
	err := q.QueryRow(ctx, query, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(kind)
	}
	return dberr.Wrap(err, "lock_"+string(kind))
}

// deleteRow removes one row by id, reporting NOT_FOUND when nothing matched.
func deleteRow(ctx context.Context, q querier, table, idColumn string, id int, kind Kind) error {
	if !storableID(id) {
		return notFound(kind)
	}
	sql, args, err := toSQL(psql.Delete(table).Where(squirrel.Eq{idColumn: id}))
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return dberr.Wrap(err, "delete_"+string(kind))
	}
	if tag.RowsAffected() == 0 {
		return notFound(kind)
	}
	return nil
}

/*
updateJunction replaces every junction row keyed by id.

Description: Clears the previous entries, then queues one INSERT per value in
a pgx.Batch sent within the caller's transaction.

Parameters:
  - table: junction table
  - idColumn: column holding id
  - valueColumn: column holding each value
*/
func updateJunction(ctx context.Context, tx pgx.Tx, table, idColumn, valueColumn string, id int, values []int) error {
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, idColumn)
	if _, err := tx.Exec(ctx, deleteQuery, id); err != nil {
		return dberr.Wrap(err, "clear_"+table)
	}

	if len(values) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)", table, idColumn, valueColumn)
	batch := &pgx.Batch{}
	for _, value := range values {
		batch.Queue(insertQuery, id, value)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert_"+table)
	}
	return nil
}

// insertReturningID runs an INSERT ... RETURNING id.
func insertReturningID(ctx context.Context, q querier, insert squirrel.InsertBuilder, idColumn string, kind Kind) (int, error) {
	sql, args, err := toSQL(insert.Suffix("RETURNING " + idColumn))
	if err != nil {
		return 0, err
	}

	var id int
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, dberr.Wrap(err, "create_"+string(kind))
	}
	return id, nil
}
