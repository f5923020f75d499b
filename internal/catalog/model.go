// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/taibuivan/mediacatalog/internal/platform/validate"
	"github.com/taibuivan/mediacatalog/pkg/textmatch"
)

// # Field Identifiers

// JSON field names used in validation and foreign-key error details.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldTitle      = "title"
	FieldAuthorID   = "authorId"
	FieldDirectorID = "directorId"
	FieldGenres     = "genres"
	FieldBooks      = "books"
	FieldMovies     = "movies"
)

// # Field Constraints

const (
	minTitleLen     = 3
	maxTitleLen     = 200
	minGenreNameLen = 3
	maxGenreNameLen = 50
)

// Entity is the constraint satisfied by every catalog entity type.
//
// Implementations are pointer types so repositories can assign identifiers
// in place.
type Entity interface {
	*Author | *Director | *Genre | *Book | *Movie

	// Identity returns the store-assigned identifier (0 before creation).
	Identity() int
	// SetIdentity overwrites the identifier.
	SetIdentity(id int)
	// Validate checks field-level rules. It never consults the store.
	Validate() error
	// Matches reports whether the entity satisfies a keyword search.
	Matches(term string) bool
}

// # Relation References

// AuthorRef is the one-level-deep view of an [Author] embedded in a [Book].
type AuthorRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DirectorRef is the one-level-deep view of a [Director] embedded in a [Movie].
type DirectorRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreRef is the one-level-deep view of a [Genre].
//
// On write only ID is read.
type GenreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BookRef is the one-level-deep view of a [Book].
type BookRef struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	AuthorID int    `json:"authorId"`
}

// MovieRef is the one-level-deep view of a [Movie].
type MovieRef struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	DirectorID int    `json:"directorId"`
}

// # Entities

// Author writes books. Books is derived from the book side and ignored on write.
type Author struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Books []BookRef `json:"books"`
}

// Director directs movies. Movies is derived from the movie side and ignored on write.
type Director struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Movies []MovieRef `json:"movies"`
}

// Genre classifies books and movies.
//
// Books and Movies are the genre side of the symmetric join and are written
// through on create and replace.
type Genre struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Books  []BookRef  `json:"books"`
	Movies []MovieRef `json:"movies"`
}

// Book belongs to one author and at least one genre.
//
// AuthorID is 0 and Author is nil once the author has been deleted.
type Book struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	AuthorID int        `json:"authorId"`
	Author   *AuthorRef `json:"author"`
	Genres   []GenreRef `json:"genres"`
}

// Movie belongs to one director and at least one genre.
//
// DirectorID is 0 and Director is nil once the director has been deleted.
type Movie struct {
	ID         int          `json:"id"`
	Title      string       `json:"title"`
	DirectorID int          `json:"directorId"`
	Director   *DirectorRef `json:"director"`
	Genres     []GenreRef   `json:"genres"`
}

// # Identity

func (author *Author) Identity() int          { return author.ID }
func (author *Author) SetIdentity(id int)     { author.ID = id }
func (director *Director) Identity() int      { return director.ID }
func (director *Director) SetIdentity(id int) { director.ID = id }
func (genre *Genre) Identity() int            { return genre.ID }
func (genre *Genre) SetIdentity(id int)       { genre.ID = id }
func (book *Book) Identity() int              { return book.ID }
func (book *Book) SetIdentity(id int)         { book.ID = id }
func (movie *Movie) Identity() int            { return movie.ID }
func (movie *Movie) SetIdentity(id int)       { movie.ID = id }

// # Validation

// Validate checks that the author has a name.
func (author *Author) Validate() error {
	return (&validate.Validator{}).Required(FieldName, author.Name).Err()
}

// Validate checks that the director has a name.
func (director *Director) Validate() error {
	return (&validate.Validator{}).Required(FieldName, director.Name).Err()
}

// Validate checks the genre name bounds and the shape of its relation lists.
func (genre *Genre) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required(FieldName, genre.Name).
		Length(FieldName, genre.Name, minGenreNameLen, maxGenreNameLen)

	for i, ref := range genre.Books {
		validator.Positive(fmt.Sprintf("%s[%d].id", FieldBooks, i), ref.ID)
	}
	for i, ref := range genre.Movies {
		validator.Positive(fmt.Sprintf("%s[%d].id", FieldMovies, i), ref.ID)
	}

	return validator.Err()
}

// Validate checks the title, the author reference and the genre list.
func (book *Book) Validate() error {
	validator := &validate.Validator{}
	validateWork(validator, "Book", book.Title, book.Genres)
	validator.Positive(FieldAuthorID, book.AuthorID)
	validator.Custom(FieldGenres, len(book.Genres) == 0, "At least one genre must be associated with the book")
	return validator.Err()
}

// Validate checks the title, the director reference and the genre list.
func (movie *Movie) Validate() error {
	validator := &validate.Validator{}
	validateWork(validator, "Movie", movie.Title, movie.Genres)
	validator.Positive(FieldDirectorID, movie.DirectorID)
	validator.Custom(FieldGenres, len(movie.Genres) == 0, "At least one genre must be associated with the movie")
	return validator.Err()
}

// validateWork applies the rules shared by books and movies.
func validateWork(validator *validate.Validator, label, title string, genres []GenreRef) {
	length := utf8.RuneCountInString(title)
	validator.
		Required(FieldTitle, title).
		Custom(FieldTitle, length < minTitleLen || length > maxTitleLen,
			fmt.Sprintf("%s title should be between %d and %d characters", label, minTitleLen, maxTitleLen))

	for i, ref := range genres {
		validator.Positive(fmt.Sprintf("%s[%d].id", FieldGenres, i), ref.ID)
	}
}

// # Search Predicates

// Matches reports whether the author's name contains term.
func (author *Author) Matches(term string) bool {
	return textmatch.Contains(author.Name, term)
}

// Matches reports whether the director's name contains term.
func (director *Director) Matches(term string) bool {
	return textmatch.Contains(director.Name, term)
}

// Matches reports whether the genre's name contains term.
func (genre *Genre) Matches(term string) bool {
	return textmatch.Contains(genre.Name, term)
}

// Matches reports whether the title or the author's name contains term.
func (book *Book) Matches(term string) bool {
	if textmatch.Contains(book.Title, term) {
		return true
	}
	return book.Author != nil && textmatch.Contains(book.Author.Name, term)
}

// Matches reports whether the title or the director's name contains term.
func (movie *Movie) Matches(term string) bool {
	if textmatch.Contains(movie.Title, term) {
		return true
	}
	return movie.Director != nil && textmatch.Contains(movie.Director.Name, term)
}
