// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediacatalog/internal/catalog"
	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Equal(t, apperr.CodeValidation, ae.Code)

	fields := make([]string, 0, len(ae.Details))
	for _, detail := range ae.Details {
		fields = append(fields, detail.Field)
	}
	return fields
}

func TestBookValidate(t *testing.T) {
	tests := []struct {
		name   string
		book   catalog.Book
		fields []string
	}{
		{
			name: "valid",
			book: catalog.Book{Title: "Dune", AuthorID: 1, Genres: refs(1)},
		},
		{
			name:   "short_title",
			book:   catalog.Book{Title: "It", AuthorID: 1, Genres: refs(1)},
			fields: []string{catalog.FieldTitle},
		},
		{
			name:   "long_title",
			book:   catalog.Book{Title: strings.Repeat("a", 201), AuthorID: 1, Genres: refs(1)},
			fields: []string{catalog.FieldTitle},
		},
		{
			name:   "missing_author",
			book:   catalog.Book{Title: "Dune", Genres: refs(1)},
			fields: []string{catalog.FieldAuthorID},
		},
		{
			name:   "no_genres",
			book:   catalog.Book{Title: "Dune", AuthorID: 1},
			fields: []string{catalog.FieldGenres},
		},
		{
			name:   "bad_genre_id",
			book:   catalog.Book{Title: "Dune", AuthorID: 1, Genres: refs(0)},
			fields: []string{"genres[0].id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.book.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Subset(t, fieldsOf(t, err), tt.fields)
		})
	}
}

func TestBookValidate_TitleCountsRunes(t *testing.T) {
	book := catalog.Book{Title: "日本語", AuthorID: 1, Genres: refs(1)}
	assert.NoError(t, book.Validate())
}

func TestMovieValidate_Message(t *testing.T) {
	err := (&catalog.Movie{Title: "Up", DirectorID: 1, Genres: refs(1)}).Validate()
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.NotEmpty(t, ae.Details)
	assert.Equal(t, "Movie title should be between 3 and 200 characters", ae.Details[0].Message)

	err = (&catalog.Movie{Title: "Arrival", DirectorID: 1}).Validate()
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "At least one genre must be associated with the movie", ae.Details[0].Message)
}

func TestGenreValidate(t *testing.T) {
	assert.NoError(t, (&catalog.Genre{Name: "Drama"}).Validate())
	assert.Equal(t, []string{catalog.FieldName}, fieldsOf(t, (&catalog.Genre{Name: "Go"}).Validate()))
	assert.Contains(t, fieldsOf(t, (&catalog.Genre{Name: strings.Repeat("x", 51)}).Validate()), catalog.FieldName)
	assert.Equal(t, []string{"books[0].id"}, fieldsOf(t, (&catalog.Genre{Name: "Drama", Books: []catalog.BookRef{{ID: -1}}}).Validate()))
}

func TestOwnerValidate(t *testing.T) {
	assert.NoError(t, (&catalog.Author{Name: "A. Author"}).Validate())
	assert.Equal(t, []string{catalog.FieldName}, fieldsOf(t, (&catalog.Author{Name: "   "}).Validate()))
	assert.Equal(t, []string{catalog.FieldName}, fieldsOf(t, (&catalog.Director{}).Validate()))
}

func TestMatches(t *testing.T) {
	book := &catalog.Book{Title: "Dune", Author: &catalog.AuthorRef{ID: 1, Name: "Frank Herbert"}}
	assert.True(t, book.Matches("dun"))
	assert.True(t, book.Matches("HERBERT"))
	assert.False(t, book.Matches("tolkien"))

	detached := &catalog.Movie{Title: "Arrival"}
	assert.True(t, detached.Matches("riv"))
	assert.False(t, detached.Matches("villeneuve"))

	directed := &catalog.Movie{Title: "Arrival", Director: &catalog.DirectorRef{ID: 1, Name: "Denis Villeneuve"}}
	assert.True(t, directed.Matches("VILLENEUVE"))
	assert.False(t, directed.Matches("nolan"))

	assert.True(t, (&catalog.Genre{Name: "Thriller"}).Matches("thr"))
	assert.True(t, (&catalog.Director{Name: "Agnès Varda"}).Matches("AGNÈS"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, catalog.KindAuthor, catalog.KindOf[*catalog.Author]())
	assert.Equal(t, catalog.KindDirector, catalog.KindOf[*catalog.Director]())
	assert.Equal(t, catalog.KindGenre, catalog.KindOf[*catalog.Genre]())
	assert.Equal(t, catalog.KindBook, catalog.KindOf[*catalog.Book]())
	assert.Equal(t, catalog.KindMovie, catalog.KindOf[*catalog.Movie]())
	assert.Equal(t, "Book", catalog.KindBook.Resource())
	assert.Len(t, catalog.Kinds(), 5)
}
