// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"maps"
	"slices"

	"github.com/samber/lo"
)

// # Join Sets

// link is one row of a work/genre junction: left is the work, right the genre.
type link struct {
	left  int
	right int
}

type linkSet map[link]struct{}

// rights returns the genre ids linked to a work, ascending.
func (set linkSet) rights(left int) []int {
	ids := make([]int, 0)
	for pair := range set {
		if pair.left == left {
			ids = append(ids, pair.right)
		}
	}
	slices.Sort(ids)
	return ids
}

// lefts returns the work ids linked to a genre, ascending.
func (set linkSet) lefts(right int) []int {
	ids := make([]int, 0)
	for pair := range set {
		if pair.right == right {
			ids = append(ids, pair.left)
		}
	}
	slices.Sort(ids)
	return ids
}

// byLeft indexes genre ids by work id.
func (set linkSet) byLeft() map[int][]int {
	index := make(map[int][]int)
	for pair := range set {
		index[pair.left] = append(index[pair.left], pair.right)
	}
	for _, ids := range index {
		slices.Sort(ids)
	}
	return index
}

// byRight indexes work ids by genre id.
func (set linkSet) byRight() map[int][]int {
	index := make(map[int][]int)
	for pair := range set {
		index[pair.right] = append(index[pair.right], pair.left)
	}
	for _, ids := range index {
		slices.Sort(ids)
	}
	return index
}

// setRights replaces every link of a work.
func (set linkSet) setRights(left int, rights []int) {
	set.dropLeft(left)
	for _, right := range rights {
		set[link{left: left, right: right}] = struct{}{}
	}
}

// setLefts replaces every link of a genre.
func (set linkSet) setLefts(right int, lefts []int) {
	set.dropRight(right)
	for _, left := range lefts {
		set[link{left: left, right: right}] = struct{}{}
	}
}

func (set linkSet) dropLeft(left int) {
	for pair := range set {
		if pair.left == left {
			delete(set, pair)
		}
	}
}

func (set linkSet) dropRight(right int) {
	for pair := range set {
		if pair.right == right {
			delete(set, pair)
		}
	}
}

// # Graph

// graph is the complete relational state of the catalog.
//
// It is not safe for concurrent use; callers serialize access.
type graph struct {
	authors     map[int]namedRow
	directors   map[int]namedRow
	genres      map[int]namedRow
	books       map[int]workRow
	movies      map[int]workRow
	bookGenres  linkSet
	movieGenres linkSet
}

func newGraph() *graph {
	return &graph{
		authors:     make(map[int]namedRow),
		directors:   make(map[int]namedRow),
		genres:      make(map[int]namedRow),
		books:       make(map[int]workRow),
		movies:      make(map[int]workRow),
		bookGenres:  make(linkSet),
		movieGenres: make(linkSet),
	}
}

// clone returns an independent copy. Rows are values, so a shallow map copy suffices.
func (g *graph) clone() *graph {
	return &graph{
		authors:     maps.Clone(g.authors),
		directors:   maps.Clone(g.directors),
		genres:      maps.Clone(g.genres),
		books:       maps.Clone(g.books),
		movies:      maps.Clone(g.movies),
		bookGenres:  maps.Clone(g.bookGenres),
		movieGenres: maps.Clone(g.movieGenres),
	}
}

// sortedRows returns the rows of a table in ascending id order.
func sortedRows[R any](rows map[int]R) []R {
	ids := slices.Sorted(maps.Keys(rows))
	return lo.Map(ids, func(id int, _ int) R { return rows[id] })
}

// # Kind Adapters

// graphAdapter reads and mutates one entity kind within a [graph].
//
// write checks every reference before touching the graph, so a failed write
// leaves it unchanged.
type graphAdapter[T Entity] interface {
	has(g *graph, id int) bool
	load(g *graph, id int) (T, error)
	loadAll(g *graph) ([]T, error)
	write(g *graph, entity T) error
	remove(g *graph, id int)
}

var (
	authorGraph = ownerGraph[*Author]{
		kind:   KindAuthor,
		owners: func(g *graph) map[int]namedRow { return g.authors },
		works:  func(g *graph) map[int]workRow { return g.books },
		build:  buildAuthor,
		row:    authorRow,
	}

	directorGraph = ownerGraph[*Director]{
		kind:   KindDirector,
		owners: func(g *graph) map[int]namedRow { return g.directors },
		works:  func(g *graph) map[int]workRow { return g.movies },
		build:  buildDirector,
		row:    directorRow,
	}

	bookGraph = workGraph[*Book]{
		kind:       KindBook,
		ownerKind:  KindAuthor,
		ownerField: FieldAuthorID,
		works:      func(g *graph) map[int]workRow { return g.books },
		owners:     func(g *graph) map[int]namedRow { return g.authors },
		links:      func(g *graph) linkSet { return g.bookGenres },
		build:      buildBook,
		row:        bookRow,
	}

	movieGraph = workGraph[*Movie]{
		kind:       KindMovie,
		ownerKind:  KindDirector,
		ownerField: FieldDirectorID,
		works:      func(g *graph) map[int]workRow { return g.movies },
		owners:     func(g *graph) map[int]namedRow { return g.directors },
		links:      func(g *graph) linkSet { return g.movieGenres },
		build:      buildMovie,
		row:        movieRow,
	}
)

// ownerGraph adapts authors and directors. Their works are derived from the
// work side, so writes only touch the owner row.
type ownerGraph[T Entity] struct {
	kind   Kind
	owners func(g *graph) map[int]namedRow
	works  func(g *graph) map[int]workRow
	build  func(owner namedRow, works []workRow) T
	row    func(entity T) namedRow
}

func (adapter ownerGraph[T]) has(g *graph, id int) bool {
	_, ok := adapter.owners(g)[id]
	return ok
}

func (adapter ownerGraph[T]) load(g *graph, id int) (T, error) {
	owner, ok := adapter.owners(g)[id]
	if !ok {
		var zero T
		return zero, notFound(adapter.kind)
	}

	owned := lo.Filter(sortedRows(adapter.works(g)), func(work workRow, _ int) bool {
		return work.OwnerID == id
	})
	return adapter.build(owner, owned), nil
}

func (adapter ownerGraph[T]) loadAll(g *graph) ([]T, error) {
	owned := lo.GroupBy(sortedRows(adapter.works(g)), func(work workRow) int { return work.OwnerID })
	return lo.Map(sortedRows(adapter.owners(g)), func(owner namedRow, _ int) T {
		return adapter.build(owner, owned[owner.ID])
	}), nil
}

func (adapter ownerGraph[T]) write(g *graph, entity T) error {
	adapter.owners(g)[entity.Identity()] = adapter.row(entity)
	return nil
}

// remove deletes the owner and detaches its works.
func (adapter ownerGraph[T]) remove(g *graph, id int) {
	delete(adapter.owners(g), id)

	works := adapter.works(g)
	for workID, work := range works {
		if work.OwnerID == id {
			work.OwnerID = 0
			works[workID] = work
		}
	}
}

// workGraph adapts books and movies: an owner reference plus genre links.
type workGraph[T Entity] struct {
	kind       Kind
	ownerKind  Kind
	ownerField string
	works      func(g *graph) map[int]workRow
	owners     func(g *graph) map[int]namedRow
	links      func(g *graph) linkSet
	build      func(work workRow, owner *namedRow, genres []namedRow) T
	row        func(entity T) (workRow, []int)
}

func (adapter workGraph[T]) has(g *graph, id int) bool {
	_, ok := adapter.works(g)[id]
	return ok
}

func (adapter workGraph[T]) load(g *graph, id int) (T, error) {
	work, ok := adapter.works(g)[id]
	if !ok {
		var zero T
		return zero, notFound(adapter.kind)
	}
	return adapter.hydrate(g, work, adapter.links(g).rights(id))
}

func (adapter workGraph[T]) loadAll(g *graph) ([]T, error) {
	genresByWork := adapter.links(g).byLeft()

	entities := make([]T, 0, len(adapter.works(g)))
	for _, work := range sortedRows(adapter.works(g)) {
		entity, err := adapter.hydrate(g, work, genresByWork[work.ID])
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (adapter workGraph[T]) hydrate(g *graph, work workRow, genreIDs []int) (T, error) {
	var zero T

	var owner *namedRow
	if work.OwnerID != 0 {
		row, ok := adapter.owners(g)[work.OwnerID]
		if !ok {
			return zero, corrupted("%s %d references missing %s %d",
				adapter.kind.Resource(), work.ID, adapter.ownerKind.Resource(), work.OwnerID)
		}
		owner = &row
	}

	genres := make([]namedRow, 0, len(genreIDs))
	for _, genreID := range genreIDs {
		genre, ok := g.genres[genreID]
		if !ok {
			return zero, corrupted("%s %d references missing Genre %d", adapter.kind.Resource(), work.ID, genreID)
		}
		genres = append(genres, genre)
	}

	return adapter.build(work, owner, genres), nil
}

func (adapter workGraph[T]) write(g *graph, entity T) error {
	work, genreIDs := adapter.row(entity)

	if _, ok := adapter.owners(g)[work.OwnerID]; !ok {
		return missingReference(adapter.ownerField, adapter.ownerKind, work.OwnerID)
	}
	for _, genreID := range genreIDs {
		if _, ok := g.genres[genreID]; !ok {
			return missingReference(FieldGenres, KindGenre, genreID)
		}
	}

	adapter.works(g)[work.ID] = work
	adapter.links(g).setRights(work.ID, genreIDs)
	return nil
}

func (adapter workGraph[T]) remove(g *graph, id int) {
	delete(adapter.works(g), id)
	adapter.links(g).dropLeft(id)
}

// genreGraph adapts genres, the shared side of both junctions.
type genreGraph struct{}

func (genreGraph) has(g *graph, id int) bool {
	_, ok := g.genres[id]
	return ok
}

func (adapter genreGraph) load(g *graph, id int) (*Genre, error) {
	row, ok := g.genres[id]
	if !ok {
		return nil, notFound(KindGenre)
	}
	return adapter.hydrate(g, row, g.bookGenres.lefts(id), g.movieGenres.lefts(id))
}

func (adapter genreGraph) loadAll(g *graph) ([]*Genre, error) {
	booksByGenre := g.bookGenres.byRight()
	moviesByGenre := g.movieGenres.byRight()

	genres := make([]*Genre, 0, len(g.genres))
	for _, row := range sortedRows(g.genres) {
		genre, err := adapter.hydrate(g, row, booksByGenre[row.ID], moviesByGenre[row.ID])
		if err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

func (genreGraph) hydrate(g *graph, row namedRow, bookIDs, movieIDs []int) (*Genre, error) {
	books, err := resolveWorks(g.books, bookIDs, KindBook, row.ID)
	if err != nil {
		return nil, err
	}
	movies, err := resolveWorks(g.movies, movieIDs, KindMovie, row.ID)
	if err != nil {
		return nil, err
	}
	return buildGenre(row, books, movies), nil
}

// resolveWorks looks up linked works for a genre, reporting dangling links.
func resolveWorks(works map[int]workRow, ids []int, kind Kind, genreID int) ([]workRow, error) {
	rows := make([]workRow, 0, len(ids))
	for _, id := range ids {
		work, ok := works[id]
		if !ok {
			return nil, corrupted("Genre %d references missing %s %d", genreID, kind.Resource(), id)
		}
		rows = append(rows, work)
	}
	return rows, nil
}

func (genreGraph) write(g *graph, genre *Genre) error {
	row, bookIDs, movieIDs := genreRow(genre)

	for _, id := range bookIDs {
		if _, ok := g.books[id]; !ok {
			return missingReference(FieldBooks, KindBook, id)
		}
	}
	for _, id := range movieIDs {
		if _, ok := g.movies[id]; !ok {
			return missingReference(FieldMovies, KindMovie, id)
		}
	}

	g.genres[row.ID] = row
	g.bookGenres.setLefts(row.ID, bookIDs)
	g.movieGenres.setLefts(row.ID, movieIDs)
	return nil
}

// remove deletes the genre and every junction row that points at it.
func (genreGraph) remove(g *graph, id int) {
	delete(g.genres, id)
	g.bookGenres.dropRight(id)
	g.movieGenres.dropRight(id)
}
