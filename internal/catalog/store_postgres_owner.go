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

// ownerTables maps an owner kind (author, director) onto its table and the
// table of the works it owns.
type ownerTables struct {
	kind      Kind
	table     string
	id        string
	name      string
	workTable string
	workID    string
	workTitle string
	workOwner string
}

var authorTables = ownerTables{
	kind:      KindAuthor,
	table:     schema.CatalogAuthor.Table,
	id:        schema.CatalogAuthor.ID,
	name:      schema.CatalogAuthor.Name,
	workTable: schema.CatalogBook.Table,
	workID:    schema.CatalogBook.ID,
	workTitle: schema.CatalogBook.Title,
	workOwner: schema.CatalogBook.AuthorID,
}

var directorTables = ownerTables{
	kind:      KindDirector,
	table:     schema.CatalogDirector.Table,
	id:        schema.CatalogDirector.ID,
	name:      schema.CatalogDirector.Name,
	workTable: schema.CatalogMovie.Table,
	workID:    schema.CatalogMovie.ID,
	workTitle: schema.CatalogMovie.Title,
	workOwner: schema.CatalogMovie.DirectorID,
}

// postgresOwnerRepository stores authors and directors.
type postgresOwnerRepository[T Entity] struct {
	pool   *pgxpool.Pool
	tables ownerTables
	build  func(owner namedRow, works []workRow) T
	row    func(entity T) namedRow
}

func newPostgresOwnerRepository[T Entity](
	pool *pgxpool.Pool,
	tables ownerTables,
	build func(owner namedRow, works []workRow) T,
	row func(entity T) namedRow,
) *postgresOwnerRepository[T] {
	return &postgresOwnerRepository[T]{pool: pool, tables: tables, build: build, row: row}
}

// selectQuery hydrates each owner with its works in one statement.
func (repository *postgresOwnerRepository[T]) selectQuery() squirrel.SelectBuilder {
	t := repository.tables
	works := fmt.Sprintf(`COALESCE((
		SELECT json_agg(json_build_object('id', w.%[1]s, 'title', w.%[2]s, 'ownerId', w.%[3]s) ORDER BY w.%[1]s)
		FROM %[4]s w
		WHERE w.%[3]s = o.%[5]s
	), '[]') AS works`, t.workID, t.workTitle, t.workOwner, t.workTable, t.id)

	return psql.
		Select("o."+t.id, "o."+t.name, works).
		From(t.table + " o").
		OrderBy("o." + t.id)
}

func (repository *postgresOwnerRepository[T]) fetch(ctx context.Context, q querier, query squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := toSQL(query)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_"+string(repository.tables.kind))
	}
	defer rows.Close()

	entities := make([]T, 0)
	for rows.Next() {
		var owner namedRow
		var works []workRow
		if err := rows.Scan(&owner.ID, &owner.Name, &works); err != nil {
			return nil, dberr.Wrap(err, "scan_"+string(repository.tables.kind))
		}
		entities = append(entities, repository.build(owner, works))
	}

	return entities, dberr.Wrap(rows.Err(), "list_"+string(repository.tables.kind))
}

func (repository *postgresOwnerRepository[T]) fetchOne(ctx context.Context, q querier, id int) (T, error) {
	if !storableID(id) {
		var zero T
		return zero, notFound(repository.tables.kind)
	}
	entities, err := repository.fetch(ctx, q, repository.selectQuery().Where(squirrel.Eq{"o." + repository.tables.id: id}))
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

func (repository *postgresOwnerRepository[T]) List(ctx context.Context) ([]T, error) {
	return repository.fetch(ctx, repository.pool, repository.selectQuery())
}

// Search matches the owner name with ILIKE.
func (repository *postgresOwnerRepository[T]) Search(ctx context.Context, term string) ([]T, error) {
	query := repository.selectQuery().Where(squirrel.ILike{"o." + repository.tables.name: likePattern(term)})
	return repository.fetch(ctx, repository.pool, query)
}

func (repository *postgresOwnerRepository[T]) Get(ctx context.Context, id int) (T, error) {
	return repository.fetchOne(ctx, repository.pool, id)
}

func (repository *postgresOwnerRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var created T
	if err := entity.Validate(); err != nil {
		return created, err
	}

	t := repository.tables
	owner := repository.row(entity)

	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		id, err := insertReturningID(ctx, tx, psql.Insert(t.table).Columns(t.name).Values(owner.Name), t.id, t.kind)
		if err != nil {
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

func (repository *postgresOwnerRepository[T]) Replace(ctx context.Context, id int, entity T) (T, error) {
	var replaced T
	if err := checkReplace(id, entity); err != nil {
		return replaced, err
	}

	t := repository.tables
	if !storableID(id) {
		return replaced, notFound(t.kind)
	}
	owner := repository.row(entity)

	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		sql, args, err := toSQL(psql.Update(t.table).Set(t.name, owner.Name).Where(squirrel.Eq{t.id: id}))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return dberr.Wrap(err, "replace_"+string(t.kind))
		}
		if tag.RowsAffected() == 0 {
			return notFound(t.kind)
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

// Delete removes the owner. The schema detaches its works (ON DELETE SET NULL).
func (repository *postgresOwnerRepository[T]) Delete(ctx context.Context, id int) error {
	return deleteRow(ctx, repository.pool, repository.tables.table, repository.tables.id, id, repository.tables.kind)
}
