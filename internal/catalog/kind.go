// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog implements the media catalog: books with their authors, movies
with their directors, and the genre taxonomy shared by both.

Architecture:

  - Model: Entity definitions, field validation and search predicates.
  - Store: One [Repository] per entity kind over a shared backend (memory,
    PostgreSQL or Redis). The store is the only place relational invariants
    are enforced.
  - Query: Keyword search on top of a repository.
  - Service: A generic [Service] per kind, bundled by [Catalog].
  - HTTP: A generic [Handler] per kind mounted under /api/{kind}.

Every read returns entities with their direct relations hydrated one level deep.
*/
package catalog

// Kind identifies one of the five entity collections.
//
// The value doubles as the URL segment and the storage namespace.
type Kind string

const (
	KindAuthor   Kind = "authors"
	KindDirector Kind = "directors"
	KindGenre    Kind = "genres"
	KindBook     Kind = "books"
	KindMovie    Kind = "movies"
)

// Kinds lists every entity kind in dependency order (owners first).
func Kinds() []Kind {
	return []Kind{KindAuthor, KindDirector, KindGenre, KindBook, KindMovie}
}

// Resource returns the singular, human-readable name used in error messages.
func (k Kind) Resource() string {
	switch k {
	case KindAuthor:
		return "Author"
	case KindDirector:
		return "Director"
	case KindGenre:
		return "Genre"
	case KindBook:
		return "Book"
	case KindMovie:
		return "Movie"
	}
	return string(k)
}

// KindOf returns the [Kind] handled by entity type T.
func KindOf[T Entity]() Kind {
	var entity T
	switch any(entity).(type) {
	case *Author:
		return KindAuthor
	case *Director:
		return KindDirector
	case *Genre:
		return KindGenre
	case *Book:
		return KindBook
	case *Movie:
		return KindMovie
	}
	return ""
}

// newEntity allocates an empty T, ready to be decoded into.
func newEntity[T Entity]() T {
	var entity T
	switch any(entity).(type) {
	case *Author:
		return any(new(Author)).(T)
	case *Director:
		return any(new(Director)).(T)
	case *Genre:
		return any(new(Genre)).(T)
	case *Book:
		return any(new(Book)).(T)
	case *Movie:
		return any(new(Movie)).(T)
	}
	return entity
}
