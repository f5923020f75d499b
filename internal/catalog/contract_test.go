// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediacatalog/internal/catalog"
	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
)

// repositoriesFactory returns an empty catalog. Every call must be isolated
// from the previous one.
type repositoriesFactory func(t *testing.T) catalog.Repositories

// # Fixtures

func seedAuthor(t *testing.T, repos catalog.Repositories, name string) *catalog.Author {
	t.Helper()
	author, err := repos.Authors.Create(context.Background(), &catalog.Author{Name: name})
	require.NoError(t, err)
	return author
}

func seedDirector(t *testing.T, repos catalog.Repositories, name string) *catalog.Director {
	t.Helper()
	director, err := repos.Directors.Create(context.Background(), &catalog.Director{Name: name})
	require.NoError(t, err)
	return director
}

func seedGenre(t *testing.T, repos catalog.Repositories, name string) *catalog.Genre {
	t.Helper()
	genre, err := repos.Genres.Create(context.Background(), &catalog.Genre{Name: name})
	require.NoError(t, err)
	return genre
}

func seedBook(t *testing.T, repos catalog.Repositories, title string, authorID int, genreIDs ...int) *catalog.Book {
	t.Helper()
	book, err := repos.Books.Create(context.Background(), &catalog.Book{
		Title:    title,
		AuthorID: authorID,
		Genres:   refs(genreIDs...),
	})
	require.NoError(t, err)
	return book
}

func seedMovie(t *testing.T, repos catalog.Repositories, title string, directorID int, genreIDs ...int) *catalog.Movie {
	t.Helper()
	movie, err := repos.Movies.Create(context.Background(), &catalog.Movie{
		Title:      title,
		DirectorID: directorID,
		Genres:     refs(genreIDs...),
	})
	require.NoError(t, err)
	return movie
}

func refs(ids ...int) []catalog.GenreRef {
	return lo.Map(ids, func(id int, _ int) catalog.GenreRef { return catalog.GenreRef{ID: id} })
}

func genreNames(genres []catalog.GenreRef) []string {
	return lo.Map(genres, func(ref catalog.GenreRef, _ int) string { return ref.Name })
}

func bookIDs(books []catalog.BookRef) []int {
	return lo.Map(books, func(ref catalog.BookRef, _ int) int { return ref.ID })
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, code), "expected %s, got %v", code, err)
}

// # Contract

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, factory repositoriesFactory) {
	t.Run("create_then_get_hydrates_relations", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		author := seedAuthor(t, repos, "Frank Herbert")
		scifi := seedGenre(t, repos, "Science Fiction")
		classic := seedGenre(t, repos, "Classic")
		book := seedBook(t, repos, "Dune", author.ID, scifi.ID, classic.ID)

		got, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, author.ID, got.AuthorID)
		require.NotNil(t, got.Author)
		assert.Equal(t, catalog.AuthorRef{ID: author.ID, Name: "Frank Herbert"}, *got.Author)
		assert.ElementsMatch(t, []string{"Science Fiction", "Classic"}, genreNames(got.Genres))
		assert.Equal(t, book, got)

		hydratedAuthor, err := repos.Authors.Get(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, []catalog.BookRef{{ID: book.ID, Title: "Dune", AuthorID: author.ID}}, hydratedAuthor.Books)

		hydratedGenre, err := repos.Genres.Get(ctx, scifi.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{book.ID}, bookIDs(hydratedGenre.Books))
		assert.Empty(t, hydratedGenre.Movies)
	})

	t.Run("movie_side_mirrors_book_side", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		director := seedDirector(t, repos, "Denis Villeneuve")
		genre := seedGenre(t, repos, "Science Fiction")
		movie := seedMovie(t, repos, "Arrival", director.ID, genre.ID)

		got, err := repos.Movies.Get(ctx, movie.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Director)
		assert.Equal(t, "Denis Villeneuve", got.Director.Name)
		assert.Equal(t, []string{"Science Fiction"}, genreNames(got.Genres))

		hydratedDirector, err := repos.Directors.Get(ctx, director.ID)
		require.NoError(t, err)
		require.Len(t, hydratedDirector.Movies, 1)
		assert.Equal(t, catalog.MovieRef{ID: movie.ID, Title: "Arrival", DirectorID: director.ID}, hydratedDirector.Movies[0])

		hydratedGenre, err := repos.Genres.Get(ctx, genre.ID)
		require.NoError(t, err)
		require.Len(t, hydratedGenre.Movies, 1)
		assert.Equal(t, movie.ID, hydratedGenre.Movies[0].ID)
	})

	t.Run("list_is_ordered_by_id", func(t *testing.T) {
		repos := factory(t)

		first := seedAuthor(t, repos, "Zadie Smith")
		second := seedAuthor(t, repos, "Albert Camus")

		authors, err := repos.Authors.List(context.Background())
		require.NoError(t, err)
		require.Len(t, authors, 2)
		assert.Equal(t, first.ID, authors[0].ID)
		assert.Equal(t, second.ID, authors[1].ID)
		assert.Less(t, authors[0].ID, authors[1].ID)
	})

	t.Run("get_missing_is_not_found", func(t *testing.T) {
		repos := factory(t)
		_, err := repos.Genres.Get(context.Background(), 4242)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("out_of_range_id_is_not_found", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")
		book := seedBook(t, repos, "Sample Book", author.ID, genre.ID)

		var wide int64 = math.MaxInt32 + 1
		id := int(wide)

		_, err := repos.Books.Get(ctx, id)
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Genres.Get(ctx, id)
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Books.Replace(ctx, id, &catalog.Book{ID: id, Title: "Sample Book", AuthorID: author.ID, Genres: refs(genre.ID)})
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Authors.Replace(ctx, id, &catalog.Author{ID: id, Name: "Ghost"})
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Genres.Replace(ctx, id, &catalog.Genre{ID: id, Name: "Drama"})
		assertCode(t, err, apperr.CodeNotFound)

		err = repos.Books.Delete(ctx, id)
		assertCode(t, err, apperr.CodeNotFound)

		err = repos.Authors.Delete(ctx, id)
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Books.Create(ctx, &catalog.Book{Title: "Orphan", AuthorID: id, Genres: refs(genre.ID)})
		assertCode(t, err, apperr.CodeForeignKey)

		_, err = repos.Books.Replace(ctx, book.ID, &catalog.Book{ID: book.ID, Title: "Sample Book", AuthorID: author.ID, Genres: refs(id)})
		assertCode(t, err, apperr.CodeForeignKey)

		unchanged, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, book, unchanged)
	})

	t.Run("create_rejects_invalid_payload", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")

		_, err := repos.Books.Create(ctx, &catalog.Book{Title: "X", AuthorID: author.ID, Genres: refs(genre.ID)})
		assertCode(t, err, apperr.CodeValidation)

		_, err = repos.Books.Create(ctx, &catalog.Book{Title: "Valid", AuthorID: author.ID})
		assertCode(t, err, apperr.CodeValidation)

		_, err = repos.Genres.Create(ctx, &catalog.Genre{Name: "Go"})
		assertCode(t, err, apperr.CodeValidation)

		books, err := repos.Books.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("create_rejects_missing_author_and_persists_nothing", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		genre := seedGenre(t, repos, "Drama")

		_, err := repos.Books.Create(ctx, &catalog.Book{Title: "Orphan", AuthorID: 9999, Genres: refs(genre.ID)})
		assertCode(t, err, apperr.CodeForeignKey)
		assert.Equal(t, catalog.FieldAuthorID, apperr.As(err).Details[0].Field)

		books, err := repos.Books.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)

		hydratedGenre, err := repos.Genres.Get(ctx, genre.ID)
		require.NoError(t, err)
		assert.Empty(t, hydratedGenre.Books)
	})

	t.Run("create_rejects_missing_genre", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		director := seedDirector(t, repos, "Agnes Varda")
		genre := seedGenre(t, repos, "Documentary")

		_, err := repos.Movies.Create(ctx, &catalog.Movie{
			Title:      "Faces Places",
			DirectorID: director.ID,
			Genres:     refs(genre.ID, 777),
		})
		assertCode(t, err, apperr.CodeForeignKey)
		assert.Equal(t, catalog.FieldGenres, apperr.As(err).Details[0].Field)

		movies, err := repos.Movies.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("create_collapses_duplicate_genres", func(t *testing.T) {
		repos := factory(t)
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")

		book := seedBook(t, repos, "Twice Told", author.ID, genre.ID, genre.ID)
		assert.Equal(t, []string{"Drama"}, genreNames(book.Genres))
	})

	t.Run("replace_overwrites_whole_object", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		first := seedAuthor(t, repos, "First Author")
		second := seedAuthor(t, repos, "Second Author")
		g1 := seedGenre(t, repos, "Horror")
		g2 := seedGenre(t, repos, "Mystery")
		g3 := seedGenre(t, repos, "Romance")
		book := seedBook(t, repos, "Alpha", first.ID, g1.ID, g2.ID)

		replaced, err := repos.Books.Replace(ctx, book.ID, &catalog.Book{
			ID:       book.ID,
			Title:    "Omega",
			AuthorID: second.ID,
			Genres:   refs(g3.ID),
		})
		require.NoError(t, err)

		got, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, replaced, got)
		assert.Equal(t, "Omega", got.Title)
		assert.Equal(t, "Second Author", got.Author.Name)
		assert.Equal(t, []string{"Romance"}, genreNames(got.Genres))

		formerGenre, err := repos.Genres.Get(ctx, g1.ID)
		require.NoError(t, err)
		assert.Empty(t, formerGenre.Books)

		formerAuthor, err := repos.Authors.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Empty(t, formerAuthor.Books)
	})

	t.Run("replace_owner_renames_hydrated_refs", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		author := seedAuthor(t, repos, "Old Name")
		genre := seedGenre(t, repos, "Drama")
		book := seedBook(t, repos, "Sample Book", author.ID, genre.ID)

		_, err := repos.Authors.Replace(ctx, author.ID, &catalog.Author{ID: author.ID, Name: "New Name"})
		require.NoError(t, err)

		got, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.Author.Name)

		hydratedAuthor, err := repos.Authors.Get(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{book.ID}, bookIDs(hydratedAuthor.Books))

		// The books list is derived from each book's author, so a payload list is ignored.
		replaced, err := repos.Authors.Replace(ctx, author.ID, &catalog.Author{
			ID:    author.ID,
			Name:  "New Name",
			Books: []catalog.BookRef{{ID: 9999, Title: "Ghost"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{book.ID}, bookIDs(replaced.Books))
	})

	t.Run("replace_genre_rewrites_links", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		author := seedAuthor(t, repos, "A. Author")
		director := seedDirector(t, repos, "D. Director")
		drama := seedGenre(t, repos, "Drama")
		comedy := seedGenre(t, repos, "Comedy")
		book := seedBook(t, repos, "Sample Book", author.ID, drama.ID, comedy.ID)
		movie := seedMovie(t, repos, "Sample Movie", director.ID, comedy.ID)

		_, err := repos.Genres.Replace(ctx, drama.ID, &catalog.Genre{
			ID:     drama.ID,
			Name:   "Tragedy",
			Movies: []catalog.MovieRef{{ID: movie.ID}},
		})
		require.NoError(t, err)

		gotBook, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Comedy"}, genreNames(gotBook.Genres))

		gotMovie, err := repos.Movies.Get(ctx, movie.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Tragedy", "Comedy"}, genreNames(gotMovie.Genres))
	})

	t.Run("replace_checks", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")
		book := seedBook(t, repos, "Sample Book", author.ID, genre.ID)

		_, err := repos.Authors.Replace(ctx, author.ID, &catalog.Author{ID: author.ID + 1, Name: "Other"})
		assertCode(t, err, apperr.CodeIDMismatch)

		_, err = repos.Authors.Replace(ctx, 4242, &catalog.Author{ID: 4242, Name: "Ghost"})
		assertCode(t, err, apperr.CodeNotFound)

		_, err = repos.Books.Replace(ctx, book.ID, &catalog.Book{ID: book.ID, Title: "Sample Book", AuthorID: 9999, Genres: refs(genre.ID)})
		assertCode(t, err, apperr.CodeForeignKey)

		_, err = repos.Genres.Replace(ctx, genre.ID, &catalog.Genre{ID: genre.ID, Name: "Drama", Books: []catalog.BookRef{{ID: 9999}}})
		assertCode(t, err, apperr.CodeForeignKey)

		unchanged, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, book, unchanged)

		authors, err := repos.Authors.List(ctx)
		require.NoError(t, err)
		assert.Len(t, authors, 1)
	})

	t.Run("delete_then_get_is_not_found", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		director := seedDirector(t, repos, "D. Director")

		require.NoError(t, repos.Directors.Delete(ctx, director.ID))

		_, err := repos.Directors.Get(ctx, director.ID)
		assertCode(t, err, apperr.CodeNotFound)

		err = repos.Directors.Delete(ctx, director.ID)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("delete_work_clears_reciprocal_refs", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")
		book := seedBook(t, repos, "Sample Book", author.ID, genre.ID)

		require.NoError(t, repos.Books.Delete(ctx, book.ID))

		hydratedAuthor, err := repos.Authors.Get(ctx, author.ID)
		require.NoError(t, err)
		assert.Empty(t, hydratedAuthor.Books)

		hydratedGenre, err := repos.Genres.Get(ctx, genre.ID)
		require.NoError(t, err)
		assert.Empty(t, hydratedGenre.Books)
	})

	t.Run("delete_genre_detaches_works", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		drama := seedGenre(t, repos, "Drama")
		comedy := seedGenre(t, repos, "Comedy")
		book := seedBook(t, repos, "Sample Book", author.ID, drama.ID, comedy.ID)

		require.NoError(t, repos.Genres.Delete(ctx, drama.ID))

		got, err := repos.Books.Get(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Comedy"}, genreNames(got.Genres))

		books, err := repos.Books.List(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("search_empty_term_equals_list", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")
		seedBook(t, repos, "Sample Book", author.ID, genre.ID)
		seedBook(t, repos, "Another Book", author.ID, genre.ID)

		all, err := repos.Books.List(ctx)
		require.NoError(t, err)

		found, err := catalog.NewQuery(repos.Books).Search(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, all, found)
	})

	t.Run("search_is_case_insensitive", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		thriller := seedGenre(t, repos, "Thriller")
		seedGenre(t, repos, "Drama")

		query := catalog.NewQuery(repos.Genres)
		for _, term := range []string{"thr", "THR", "Thriller"} {
			found, err := query.Search(ctx, term)
			require.NoError(t, err)
			require.Len(t, found, 1, term)
			assert.Equal(t, thriller.ID, found[0].ID)
		}
	})

	t.Run("search_matches_owner_name", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		herbert := seedAuthor(t, repos, "Frank Herbert")
		tolkien := seedAuthor(t, repos, "J. R. R. Tolkien")
		genre := seedGenre(t, repos, "Science Fiction")
		dune := seedBook(t, repos, "Dune", herbert.ID, genre.ID)
		seedBook(t, repos, "The Hobbit", tolkien.ID, genre.ID)

		found, err := catalog.NewQuery(repos.Books).Search(ctx, "herbert")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, dune.ID, found[0].ID)

		found, err = catalog.NewQuery(repos.Books).Search(ctx, "hob")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "The Hobbit", found[0].Title)
	})

	t.Run("search_matches_director_name", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		villeneuve := seedDirector(t, repos, "Denis Villeneuve")
		nolan := seedDirector(t, repos, "Christopher Nolan")
		genre := seedGenre(t, repos, "Science Fiction")
		arrival := seedMovie(t, repos, "Arrival", villeneuve.ID, genre.ID)
		seedMovie(t, repos, "Interstellar", nolan.ID, genre.ID)

		found, err := catalog.NewQuery(repos.Movies).Search(ctx, "villeneuve")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, arrival.ID, found[0].ID)
		require.NotNil(t, found[0].Director)
		assert.Equal(t, "Denis Villeneuve", found[0].Director.Name)

		found, err = catalog.NewQuery(repos.Movies).Search(ctx, "STELLAR")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Interstellar", found[0].Title)
	})

	t.Run("search_treats_wildcards_literally", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()
		seedAuthor(t, repos, "100% Human")
		seedAuthor(t, repos, "Plain Name")

		found, err := catalog.NewQuery(repos.Authors).Search(ctx, "%")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "100% Human", found[0].Name)

		found, err = catalog.NewQuery(repos.Authors).Search(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("sample_scenario", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		author := seedAuthor(t, repos, "A. Author")
		genre := seedGenre(t, repos, "Drama")
		book := seedBook(t, repos, "Sample Book", author.ID, genre.ID)
		assert.Equal(t, 1, author.ID)
		assert.Equal(t, 1, genre.ID)
		assert.Equal(t, 1, book.ID)

		got, err := repos.Books.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &catalog.Book{
			ID:       1,
			Title:    "Sample Book",
			AuthorID: 1,
			Author:   &catalog.AuthorRef{ID: 1, Name: "A. Author"},
			Genres:   []catalog.GenreRef{{ID: 1, Name: "Drama"}},
		}, got)

		require.NoError(t, repos.Authors.Delete(ctx, 1))

		got, err = repos.Books.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Sample Book", got.Title)
		assert.Zero(t, got.AuthorID)
		assert.Nil(t, got.Author)
		assert.Equal(t, []string{"Drama"}, genreNames(got.Genres))
	})

	t.Run("concurrent_replace_is_never_torn", func(t *testing.T) {
		repos := factory(t)
		ctx := context.Background()

		author := seedAuthor(t, repos, "A. Author")
		g1 := seedGenre(t, repos, "Horror")
		g2 := seedGenre(t, repos, "Mystery")
		g3 := seedGenre(t, repos, "Romance")
		book := seedBook(t, repos, "Alpha", author.ID, g1.ID, g2.ID)

		versions := map[string][]string{
			"Alpha": {"Horror", "Mystery"},
			"Omega": {"Romance"},
		}
		payloads := []*catalog.Book{
			{ID: book.ID, Title: "Omega", AuthorID: author.ID, Genres: refs(g3.ID)},
			{ID: book.ID, Title: "Alpha", AuthorID: author.ID, Genres: refs(g1.ID, g2.ID)},
		}

		const rounds = 40
		var wg sync.WaitGroup
		errs := make(chan error, rounds*2)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				payload := *payloads[i%2]
				if _, err := repos.Books.Replace(ctx, book.ID, &payload); err != nil {
					errs <- err
				}
			}
		}()

		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range rounds {
					got, err := repos.Books.Get(ctx, book.ID)
					if err != nil {
						errs <- err
						continue
					}
					if !assert.ElementsMatch(t, versions[got.Title], genreNames(got.Genres), got.Title) {
						return
					}
				}
			}()
		}

		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})
}
