// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"github.com/samber/lo"
)

// # Storage Rows

// namedRow is the stored form of an author, director or genre.
type namedRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// workRow is the stored form of a book or movie. OwnerID is the author or
// director id, 0 when detached.
type workRow struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	OwnerID int    `json:"ownerId"`
}

// # Hydration

func bookRefs(rows []workRow) []BookRef {
	return lo.Map(rows, func(row workRow, _ int) BookRef {
		return BookRef{ID: row.ID, Title: row.Title, AuthorID: row.OwnerID}
	})
}

func movieRefs(rows []workRow) []MovieRef {
	return lo.Map(rows, func(row workRow, _ int) MovieRef {
		return MovieRef{ID: row.ID, Title: row.Title, DirectorID: row.OwnerID}
	})
}

func genreRefs(rows []namedRow) []GenreRef {
	return lo.Map(rows, func(row namedRow, _ int) GenreRef {
		return GenreRef{ID: row.ID, Name: row.Name}
	})
}

func buildAuthor(row namedRow, books []workRow) *Author {
	return &Author{ID: row.ID, Name: row.Name, Books: bookRefs(books)}
}

func buildDirector(row namedRow, movies []workRow) *Director {
	return &Director{ID: row.ID, Name: row.Name, Movies: movieRefs(movies)}
}

func buildGenre(row namedRow, books, movies []workRow) *Genre {
	return &Genre{ID: row.ID, Name: row.Name, Books: bookRefs(books), Movies: movieRefs(movies)}
}

func buildBook(row workRow, author *namedRow, genres []namedRow) *Book {
	book := &Book{ID: row.ID, Title: row.Title, AuthorID: row.OwnerID, Genres: genreRefs(genres)}
	if author != nil {
		book.Author = &AuthorRef{ID: author.ID, Name: author.Name}
	}
	return book
}

func buildMovie(row workRow, director *namedRow, genres []namedRow) *Movie {
	movie := &Movie{ID: row.ID, Title: row.Title, DirectorID: row.OwnerID, Genres: genreRefs(genres)}
	if director != nil {
		movie.Director = &DirectorRef{ID: director.ID, Name: director.Name}
	}
	return movie
}

// # Projection

// Relation lists are reduced to distinct ids in first-occurrence order.

func authorRow(author *Author) namedRow {
	return namedRow{ID: author.ID, Name: author.Name}
}

func directorRow(director *Director) namedRow {
	return namedRow{ID: director.ID, Name: director.Name}
}

func genreRow(genre *Genre) (namedRow, []int, []int) {
	bookIDs := lo.Uniq(lo.Map(genre.Books, func(ref BookRef, _ int) int { return ref.ID }))
	movieIDs := lo.Uniq(lo.Map(genre.Movies, func(ref MovieRef, _ int) int { return ref.ID }))
	return namedRow{ID: genre.ID, Name: genre.Name}, bookIDs, movieIDs
}

func bookRow(book *Book) (workRow, []int) {
	return workRow{ID: book.ID, Title: book.Title, OwnerID: book.AuthorID}, genreIDs(book.Genres)
}

func movieRow(movie *Movie) (workRow, []int) {
	return workRow{ID: movie.ID, Title: movie.Title, OwnerID: movie.DirectorID}, genreIDs(movie.Genres)
}

func genreIDs(refs []GenreRef) []int {
	return lo.Uniq(lo.Map(refs, func(ref GenreRef, _ int) int { return ref.ID }))
}
