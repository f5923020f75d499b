// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mediacatalog/internal/platform/database/schema"
	"github.com/taibuivan/mediacatalog/internal/platform/dberr"
	"github.com/taibuivan/mediacatalog/internal/platform/postgres"
)

// workTables maps a work kind (book, movie) onto its table, its owner table
// and its genre junction.
type workTables struct {
	kind          Kind
	table         string
	id            string
	title         string
	owner         string
	ownerKind     Kind
	ownerField    string
	ownerTable    string
	ownerID       string
	ownerName     string
	junction      string
	junctionWork  string
	junctionGenre string
}

var bookTables = workTables{
	kind:          KindBook,
	table:         schema.CatalogBook.Table,
	id:            schema.CatalogBook.ID,
	title:         schema.CatalogBook.Title,
	owner:         schema.CatalogBook.AuthorID,
	ownerKind:     KindAuthor,
	ownerField:    FieldAuthorID,
	ownerTable:    schema.CatalogAuthor.Table,
	ownerID:       schema.CatalogAuthor.ID,
	ownerName:     schema.CatalogAuthor.Name,
	junction:      schema.CatalogBookGenre.Table,
	junctionWork:  schema.CatalogBookGenre.BookID,
	junctionGenre: schema.CatalogBookGenre.GenreID,
}

var movieTables = workTables{
	kind:          KindMovie,
	table:         schema.CatalogMovie.Table,
	id:            schema.CatalogMovie.ID,
	title:         schema.CatalogMovie.Title,
	owner:         schema.CatalogMovie.DirectorID,
	ownerKind:     KindDirector,
	ownerField:    FieldDirectorID,
	ownerTable:    schema.CatalogDirector.Table,
	ownerID:       schema.CatalogDirector.ID,
	ownerName:     schema.CatalogDirector.Name,
	junction:      schema.CatalogMovieGenre.Table,
	junctionWork:  schema.CatalogMovieGenre.MovieID,
	junctionGenre: schema.CatalogMovieGenre.GenreID,
}

// postgresWorkRepository stores books and movies.
type postgresWorkRepository[T Entity] struct {
	pool   *pgxpool.Pool
	tables workTables
	build  func(work workRow, owner *namedRow, genres []namedRow) T
	row    func(entity T) (workRow, []int)
}

func newPostgresWorkRepository[T Entity](
	pool *pgxpool.Pool,
	tables workTables,
	build func(work workRow, owner *namedRow, genres []namedRow) T,
	row func(entity T) (workRow, []int),
) *postgresWorkRepository[T] {
	return &postgresWorkRepository[T]{pool: pool, tables: tables, build: build, row: row}
}

/*
selectQuery hydrates each work with its owner and genres in one statement.

Description: The owner comes from a LEFT JOIN so detached works (owner NULL)
are still returned. Genres are aggregated into a JSON array ordered by id.
*/
func (repository *postgresWorkRepository[T]) selectQuery() squirrel.SelectBuilder {
	t := repository.tables
	genres := fmt.Sprintf(`COALESCE((
		SELECT json_agg(json_build_object('id', g.%[1]s, 'name', g.%[2]s) ORDER BY g.%[1]s)
		FROM %[3]s g
		JOIN %[4]s j ON j.%[5]s = g.%[1]s
		WHERE j.%[6]s = w.%[7]s
	), '[]') AS genres`,
		schema.CatalogGenre.ID, schema.CatalogGenre.Name, schema.CatalogGenre.Table,
		t.junction, t.junctionGenre, t.junctionWork, t.id)

	return psql.
		Select(
			"w."+t.id,
			"w."+t.title,
			fmt.Sprintf("COALESCE(w.%s, 0)", t.owner),
			"o."+t.ownerID,
			"o."+t.ownerName,
			genres,
		).
		From(t.table + " w").
		LeftJoin(fmt.Sprintf("%s o ON o.%s = w.%s", t.ownerTable, t.ownerID, t.owner)).
		OrderBy("w." + t.id)
}

func (repository *postgresWorkRepository[T]) fetch(ctx context.Context, q querier, query squirrel.SelectBuilder) ([]T, error) {
	t := repository.tables

	sql, args, err := toSQL(query)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_"+string(t.kind))
	}
	defer rows.Close()

	entities := make([]T, 0)
	for rows.Next() {
		var (
			work      workRow
			ownerID   *int
			ownerName *string
			genres    []namedRow
		)
		if err := rows.Scan(&work.ID, &work.Title, &work.OwnerID, &ownerID, &ownerName, &genres); err != nil {
			return nil, dberr.Wrap(err, "scan_"+string(t.kind))
		}

		var owner *namedRow
		if work.OwnerID != 0 {
			if ownerID == nil || ownerName == nil {
				return nil, corrupted("%s %d references missing %s %d",
					t.kind.Resource(), work.ID, t.ownerKind.Resource(), work.OwnerID)
			}
			owner = &namedRow{ID: *ownerID, Name: *ownerName}
		}

		entities = append(entities, repository.build(work, owner, genres))
	}

	return entities, dberr.Wrap(rows.Err(), "list_"+string(t.kind))
}

func (repository *postgresWorkRepository[T]) fetchOne(ctx context.Context, q querier, id int) (T, error) {
	if !storableID(id) {
		var zero T
		return zero, notFound(repository.tables.kind)
	}
	entities, err := repository.fetch(ctx, q, repository.selectQuery().Where(squirrel.Eq{"w." + repository.tables.id: id}))
	if err != nil {
		var zero T
		return zero, err
	}
	if len(entities) == 0 {
		var zero T
		return zero, notFound(repository.tables.kind)
	}
	return entities[0], nil
}

func (repository *postgresWorkRepository[T]) List(ctx context.Context) ([]T, error) {
	return repository.fetch(ctx, repository.pool, repository.selectQuery())
}

// Search matches the title or the owner's name with ILIKE.
func (repository *postgresWorkRepository[T]) Search(ctx context.Context, term string) ([]T, error) {
	t := repository.tables
	pattern := likePattern(term)

	query := repository.selectQuery().Where(squirrel.Or{
		squirrel.ILike{"w." + t.title: pattern},
		squirrel.ILike{"o." + t.ownerName: pattern},
	})
	return repository.fetch(ctx, repository.pool, query)
}

func (repository *postgresWorkRepository[T]) Get(ctx context.Context, id int) (T, error) {
	return repository.fetchOne(ctx, repository.pool, id)
}

// checkReferences locks the owner and every genre the work points at.
func (repository *postgresWorkRepository[T]) checkReferences(ctx context.Context, tx pgx.Tx, work workRow, genreIDs []int) error {
	t := repository.tables
	if err := requireRows(ctx, tx, t.ownerTable, t.ownerID, []int{work.OwnerID}, t.ownerField, t.ownerKind); err != nil {
		return err
	}
	return requireRows(ctx, tx, schema.CatalogGenre.Table, schema.CatalogGenre.ID, genreIDs, FieldGenres, KindGenre)
}

/*
Create inserts the work and its genre junction rows in one transaction.

Returns:
  - T: The hydrated work as seen inside the transaction
  - error: VALIDATION_ERROR, FOREIGN_KEY_VIOLATION or a database failure
*/
func (repository *postgresWorkRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var created T
	if err := entity.Validate(); err != nil {
		return created, err
	}

	t := repository.tables
	work, genreIDs := repository.row(entity)

	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if err := repository.checkReferences(ctx, tx, work, genreIDs); err != nil {
			return err
		}

		insert := psql.Insert(t.table).Columns(t.title, t.owner).Values(work.Title, work.OwnerID)
		id, err := insertReturningID(ctx, tx, insert, t.id, t.kind)
		if err != nil {
			return err
		}

		if err := updateJunction(ctx, tx, t.junction, t.junctionWork, t.junctionGenre, id, genreIDs); err != nil {
			return err
		}

		created, err = repository.fetchOne(ctx, tx, id)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	entity.SetIdentity(created.Identity())
	return created, nil
}

/*
Replace overwrites the work row and its genre junction rows.

Description: The target row is locked first so NOT_FOUND takes precedence
over reference errors, then references are locked, then the row and its
junction are rewritten.
*/
func (repository *postgresWorkRepository[T]) Replace(ctx context.Context, id int, entity T) (T, error) {
	var replaced T
	if err := checkReplace(id, entity); err != nil {
		return replaced, err
	}

	t := repository.tables
	work, genreIDs := repository.row(entity)

	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if err := lockRow(ctx, tx, t.table, t.id, id, t.kind); err != nil {
			return err
		}
		if err := repository.checkReferences(ctx, tx, work, genreIDs); err != nil {
			return err
		}

		update := psql.Update(t.table).
			Set(t.title, work.Title).
			Set(t.owner, work.OwnerID).
			Where(squirrel.Eq{t.id: id})
		sql, args, err := toSQL(update)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return dberr.Wrap(err, "replace_"+string(t.kind))
		}

		if err := updateJunction(ctx, tx, t.junction, t.junctionWork, t.junctionGenre, id, genreIDs); err != nil {
			return err
		}

		replaced, err = repository.fetchOne(ctx, tx, id)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return replaced, nil
}

// Delete removes the work. Its junction rows cascade.
func (repository *postgresWorkRepository[T]) Delete(ctx context.Context, id int) error {
	return deleteRow(ctx, repository.pool, repository.tables.table, repository.tables.id, id, repository.tables.kind)
}
