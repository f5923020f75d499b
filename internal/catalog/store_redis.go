// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
)

// # Key Layout
//
//	<prefix>:<kind>          hash   id -> JSON row
//	<prefix>:book_genre      set    "<bookId>:<genreId>"
//	<prefix>:movie_genre     set    "<movieId>:<genreId>"
//	<prefix>:seq:<kind>      string id counter

const (
	bookGenreSet  = "book_genre"
	movieGenreSet = "movie_genre"

	// maxWatchRetries bounds optimistic-lock retries when writers collide.
	maxWatchRetries = 32
)

type redisKeys struct {
	prefix string
}

func (keys redisKeys) table(kind Kind) string   { return keys.prefix + ":" + string(kind) }
func (keys redisKeys) links(name string) string { return keys.prefix + ":" + name }
func (keys redisKeys) seq(kind Kind) string     { return keys.prefix + ":seq:" + string(kind) }

// watched lists every key a mutation may read or write.
func (keys redisKeys) watched() []string {
	watched := make([]string, 0, len(Kinds())+2)
	for _, kind := range Kinds() {
		watched = append(watched, keys.table(kind))
	}
	return append(watched, keys.links(bookGenreSet), keys.links(movieGenreSet))
}

// redisStore keeps the catalog graph in Redis hashes and sets.
//
// # Consistency
//
// Reads load a full snapshot inside MULTI/EXEC. Writes WATCH every catalog
// key, apply the mutation to a local copy of the graph and commit the diff
// in one MULTI/EXEC, retrying when another writer got there first.
type redisStore struct {
	client redis.UniversalClient
	keys   redisKeys
}

// NewRedisRepositories returns repositories that persist the catalog in Redis
// under keys starting with prefix.
func NewRedisRepositories(client redis.UniversalClient, prefix string) Repositories {
	store := &redisStore{client: client, keys: redisKeys{prefix: prefix}}

	return Repositories{
		Authors:   newRedisRepository[*Author](store, authorGraph),
		Directors: newRedisRepository[*Director](store, directorGraph),
		Genres:    newRedisRepository[*Genre](store, genreGraph{}),
		Books:     newRedisRepository[*Book](store, bookGraph),
		Movies:    newRedisRepository[*Movie](store, movieGraph),
	}
}

// # Snapshot I/O

// graphCmds holds the queued reads of one snapshot.
type graphCmds struct {
	tables      map[Kind]*redis.MapStringStringCmd
	bookGenres  *redis.StringSliceCmd
	movieGenres *redis.StringSliceCmd
}

func (store *redisStore) queueRead(ctx context.Context, pipe redis.Pipeliner) *graphCmds {
	cmds := &graphCmds{tables: make(map[Kind]*redis.MapStringStringCmd, len(Kinds()))}
	for _, kind := range Kinds() {
		cmds.tables[kind] = pipe.HGetAll(ctx, store.keys.table(kind))
	}
	cmds.bookGenres = pipe.SMembers(ctx, store.keys.links(bookGenreSet))
	cmds.movieGenres = pipe.SMembers(ctx, store.keys.links(movieGenreSet))
	return cmds
}

func (cmds *graphCmds) decode() (*graph, error) {
	g := newGraph()

	decoders := []error{
		decodeRows(cmds.tables[KindAuthor].Val(), g.authors),
		decodeRows(cmds.tables[KindDirector].Val(), g.directors),
		decodeRows(cmds.tables[KindGenre].Val(), g.genres),
		decodeRows(cmds.tables[KindBook].Val(), g.books),
		decodeRows(cmds.tables[KindMovie].Val(), g.movies),
		decodeLinks(cmds.bookGenres.Val(), g.bookGenres),
		decodeLinks(cmds.movieGenres.Val(), g.movieGenres),
	}
	if err := errors.Join(decoders...); err != nil {
		return nil, err
	}

	return g, nil
}

func decodeRows[R any](fields map[string]string, rows map[int]R) error {
	for field, raw := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			return corrupted("invalid row id %q", field)
		}

		var row R
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return corrupted("invalid row %d: %v", id, err)
		}
		rows[id] = row
	}
	return nil
}

func decodeLinks(members []string, set linkSet) error {
	for _, member := range members {
		leftRaw, rightRaw, found := strings.Cut(member, ":")
		left, leftErr := strconv.Atoi(leftRaw)
		right, rightErr := strconv.Atoi(rightRaw)
		if !found || leftErr != nil || rightErr != nil {
			return corrupted("invalid link %q", member)
		}
		set[link{left: left, right: right}] = struct{}{}
	}
	return nil
}

func encodeLink(pair link) string {
	return strconv.Itoa(pair.left) + ":" + strconv.Itoa(pair.right)
}

// snapshot reads the whole graph atomically.
func (store *redisStore) snapshot(ctx context.Context) (*graph, error) {
	var cmds *graphCmds
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		cmds = store.queueRead(ctx, pipe)
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("redis: snapshot failed: %w", err))
	}
	return cmds.decode()
}

// # Optimistic Mutation

// mutate applies fn to the current graph and commits the resulting diff.
//
// fn may run several times; it must be free of side effects outside the graph
// and its own captured results.
func (store *redisStore) mutate(ctx context.Context, fn func(g *graph) error) error {
	watched := store.keys.watched()

	for range maxWatchRetries {
		err := store.client.Watch(ctx, func(tx *redis.Tx) error {
			var cmds *graphCmds
			if _, err := tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				cmds = store.queueRead(ctx, pipe)
				return nil
			}); err != nil {
				return apperr.Internal(fmt.Errorf("redis: read failed: %w", err))
			}

			before, err := cmds.decode()
			if err != nil {
				return err
			}

			after := before.clone()
			if err := fn(after); err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return store.queueDiff(ctx, pipe, before, after)
			})
			return err
		}, watched...)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !apperr.IsAppError(err) {
			return apperr.Internal(fmt.Errorf("redis: write failed: %w", err))
		}
		return err
	}

	return apperr.Internal(fmt.Errorf("redis: write abandoned after %d conflicting attempts", maxWatchRetries))
}

// queueDiff queues the commands that turn before into after.
func (store *redisStore) queueDiff(ctx context.Context, pipe redis.Pipeliner, before, after *graph) error {
	err := errors.Join(
		diffRows(ctx, pipe, store.keys.table(KindAuthor), before.authors, after.authors),
		diffRows(ctx, pipe, store.keys.table(KindDirector), before.directors, after.directors),
		diffRows(ctx, pipe, store.keys.table(KindGenre), before.genres, after.genres),
		diffRows(ctx, pipe, store.keys.table(KindBook), before.books, after.books),
		diffRows(ctx, pipe, store.keys.table(KindMovie), before.movies, after.movies),
	)
	if err != nil {
		return err
	}

	diffLinks(ctx, pipe, store.keys.links(bookGenreSet), before.bookGenres, after.bookGenres)
	diffLinks(ctx, pipe, store.keys.links(movieGenreSet), before.movieGenres, after.movieGenres)
	return nil
}

func diffRows[R comparable](ctx context.Context, pipe redis.Pipeliner, key string, before, after map[int]R) error {
	for id, row := range after {
		if previous, ok := before[id]; ok && previous == row {
			continue
		}
		raw, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("redis: encode row %d: %w", id, err)
		}
		pipe.HSet(ctx, key, strconv.Itoa(id), raw)
	}

	for id := range before {
		if _, ok := after[id]; !ok {
			pipe.HDel(ctx, key, strconv.Itoa(id))
		}
	}
	return nil
}

func diffLinks(ctx context.Context, pipe redis.Pipeliner, key string, before, after linkSet) {
	for pair := range after {
		if _, ok := before[pair]; !ok {
			pipe.SAdd(ctx, key, encodeLink(pair))
		}
	}
	for pair := range before {
		if _, ok := after[pair]; !ok {
			pipe.SRem(ctx, key, encodeLink(pair))
		}
	}
}

// # Repository

type redisRepository[T Entity] struct {
	store   *redisStore
	kind    Kind
	adapter graphAdapter[T]
}

func newRedisRepository[T Entity](store *redisStore, adapter graphAdapter[T]) *redisRepository[T] {
	return &redisRepository[T]{store: store, kind: KindOf[T](), adapter: adapter}
}

func (repository *redisRepository[T]) List(ctx context.Context) ([]T, error) {
	g, err := repository.store.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return repository.adapter.loadAll(g)
}

func (repository *redisRepository[T]) Get(ctx context.Context, id int) (T, error) {
	g, err := repository.store.snapshot(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return repository.adapter.load(g, id)
}

// Create reserves an id with INCR before the optimistic write. A write that is
// later rejected leaves a gap in the sequence.
func (repository *redisRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := entity.Validate(); err != nil {
		return zero, err
	}

	id, err := repository.store.client.Incr(ctx, repository.store.keys.seq(repository.kind)).Result()
	if err != nil {
		return zero, apperr.Internal(fmt.Errorf("redis: id sequence: %w", err))
	}
	entity.SetIdentity(int(id))

	var created T
	err = repository.store.mutate(ctx, func(g *graph) error {
		if err := repository.adapter.write(g, entity); err != nil {
			return err
		}

		var loadErr error
		created, loadErr = repository.adapter.load(g, int(id))
		return loadErr
	})
	if err != nil {
		entity.SetIdentity(0)
		return zero, err
	}

	return created, nil
}

func (repository *redisRepository[T]) Replace(ctx context.Context, id int, entity T) (T, error) {
	var zero T
	if err := checkReplace(id, entity); err != nil {
		return zero, err
	}

	var replaced T
	err := repository.store.mutate(ctx, func(g *graph) error {
		if !repository.adapter.has(g, id) {
			return notFound(repository.kind)
		}
		if err := repository.adapter.write(g, entity); err != nil {
			return err
		}

		var err error
		replaced, err = repository.adapter.load(g, id)
		return err
	})
	if err != nil {
		return zero, err
	}

	return replaced, nil
}

func (repository *redisRepository[T]) Delete(ctx context.Context, id int) error {
	return repository.store.mutate(ctx, func(g *graph) error {
		if !repository.adapter.has(g, id) {
			return notFound(repository.kind)
		}
		repository.adapter.remove(g, id)
		return nil
	})
}
