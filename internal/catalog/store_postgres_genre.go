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

// postgresGenreRepository stores genres and writes through to both junctions.
type postgresGenreRepository struct {
	pool *pgxpool.Pool
}

// worksAggregate renders the JSON array of works linked to genre g through a junction.
func worksAggregate(workTable, workID, workTitle, workOwner, junction, junctionWork, junctionGenre, alias string) string {
	return fmt.Sprintf(`COALESCE((
		SELECT json_agg(json_build_object('id', w.%[2]s, 'title', w.%[3]s, 'ownerId', COALESCE(w.%[4]s, 0)) ORDER BY w.%[2]s)
		FROM %[1]s w
		JOIN %[5]s j ON j.%[6]s = w.%[2]s
		WHERE j.%[7]s = g.%[8]s
	), '[]') AS %[9]s`,
		workTable, workID, workTitle, workOwner, junction, junctionWork, junctionGenre, schema.CatalogGenre.ID, alias)
}

func (repository *postgresGenreRepository) selectQuery() squirrel.SelectBuilder {
	books := worksAggregate(
		schema.CatalogBook.Table, schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.AuthorID,
		schema.CatalogBookGenre.Table, schema.CatalogBookGenre.BookID, schema.CatalogBookGenre.GenreID, "books",
	)
	movies := worksAggregate(
		schema.CatalogMovie.Table, schema.CatalogMovie.ID, schema.CatalogMovie.Title, schema.CatalogMovie.DirectorID,
		schema.CatalogMovieGenre.Table, schema.CatalogMovieGenre.MovieID, schema.CatalogMovieGenre.GenreID, "movies",
	)

	return psql.
		Select("g."+schema.CatalogGenre.ID, "g."+schema.CatalogGenre.Name, books, movies).
		From(schema.CatalogGenre.Table + " g").
		OrderBy("g." + schema.CatalogGenre.ID)
}

func (repository *postgresGenreRepository) fetch(ctx context.Context, q querier, query squirrel.SelectBuilder) ([]*Genre, error) {
	sql, args, err := toSQL(query)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_genres")
	}
	defer rows.Close()

	genres := make([]*Genre, 0)
	for rows.Next() {
		var (
			genre  namedRow
			books  []workRow
			movies []workRow
		)
		if err := rows.Scan(&genre.ID, &genre.Name, &books, &movies); err != nil {
			return nil, dberr.Wrap(err, "scan_genre")
		}
		genres = append(genres, buildGenre(genre, books, movies))
	}

	return genres, dberr.Wrap(rows.Err(), "list_genres")
}

func (repository *postgresGenreRepository) fetchOne(ctx context.Context, q querier, id int) (*Genre, error) {
	if !storableID(id) {
		return nil, notFound(KindGenre)
	}
	genres, err := repository.fetch(ctx, q, repository.selectQuery().Where(squirrel.Eq{"g." + schema.CatalogGenre.ID: id}))
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return nil, notFound(KindGenre)
	}
	return genres[0], nil
}

func (repository *postgresGenreRepository) List(ctx context.Context) ([]*Genre, error) {
	return repository.fetch(ctx, repository.pool, repository.selectQuery())
}

// Search matches the genre name with ILIKE.
func (repository *postgresGenreRepository) Search(ctx context.Context, term string) ([]*Genre, error) {
	query := repository.selectQuery().Where(squirrel.ILike{"g." + schema.CatalogGenre.Name: likePattern(term)})
	return repository.fetch(ctx, repository.pool, query)
}

func (repository *postgresGenreRepository) Get(ctx context.Context, id int) (*Genre, error) {
	return repository.fetchOne(ctx, repository.pool, id)
}

// checkLinks locks every book and movie the genre points at.
func (repository *postgresGenreRepository) checkLinks(ctx context.Context, tx pgx.Tx, bookIDs, movieIDs []int) error {
	if err := requireRows(ctx, tx, schema.CatalogBook.Table, schema.CatalogBook.ID, bookIDs, FieldBooks, KindBook); err != nil {
		return err
	}
	return requireRows(ctx, tx, schema.CatalogMovie.Table, schema.CatalogMovie.ID, movieIDs, FieldMovies, KindMovie)
}

// writeLinks rewrites both junctions for the genre.
func (repository *postgresGenreRepository) writeLinks(ctx context.Context, tx pgx.Tx, id int, bookIDs, movieIDs []int) error {
	if err := updateJunction(ctx, tx, schema.CatalogBookGenre.Table, schema.CatalogBookGenre.GenreID, schema.CatalogBookGenre.BookID, id, bookIDs); err != nil {
		return err
	}
	return updateJunction(ctx, tx, schema.CatalogMovieGenre.Table, schema.CatalogMovieGenre.GenreID, schema.CatalogMovieGenre.MovieID, id, movieIDs)
}

func (repository *postgresGenreRepository) Create(ctx context.Context, genre *Genre) (*Genre, error) {
	if err := genre.Validate(); err != nil {
		return nil, err
	}

	row, bookIDs, movieIDs := genreRow(genre)

	var created *Genre
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if err := repository.checkLinks(ctx, tx, bookIDs, movieIDs); err != nil {
			return err
		}

		insert := psql.Insert(schema.CatalogGenre.Table).Columns(schema.CatalogGenre.Name).Values(row.Name)
		id, err := insertReturningID(ctx, tx, insert, schema.CatalogGenre.ID, KindGenre)
		if err != nil {
			return err
		}

		if err := repository.writeLinks(ctx, tx, id, bookIDs, movieIDs); err != nil {
			return err
		}

		created, err = repository.fetchOne(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	genre.SetIdentity(created.ID)
	return created, nil
}

func (repository *postgresGenreRepository) Replace(ctx context.Context, id int, genre *Genre) (*Genre, error) {
	if err := checkReplace(id, genre); err != nil {
		return nil, err
	}

	row, bookIDs, movieIDs := genreRow(genre)

	var replaced *Genre
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if err := lockRow(ctx, tx, schema.CatalogGenre.Table, schema.CatalogGenre.ID, id, KindGenre); err != nil {
			return err
		}
		if err := repository.checkLinks(ctx, tx, bookIDs, movieIDs); err != nil {
			return err
		}

		update := psql.Update(schema.CatalogGenre.Table).
			Set(schema.CatalogGenre.Name, row.Name).
			Where(squirrel.Eq{schema.CatalogGenre.ID: id})
		sql, args, err := toSQL(update)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return dberr.Wrap(err, "replace_genre")
		}

		if err := repository.writeLinks(ctx, tx, id, bookIDs, movieIDs); err != nil {
			return err
		}

		replaced, err = repository.fetchOne(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return replaced, nil
}

// Delete removes the genre. Junction rows pointing at it cascade.
func (repository *postgresGenreRepository) Delete(ctx context.Context, id int) error {
	return deleteRow(ctx, repository.pool, schema.CatalogGenre.Table, schema.CatalogGenre.ID, id, KindGenre)
}
