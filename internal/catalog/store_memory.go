// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"sync"
)

// memoryStore holds the whole catalog in one [graph] behind a single lock.
//
// Writers hold the write lock for the complete mutation, so readers observe
// either the state before or after it.
type memoryStore struct {
	mu    sync.RWMutex
	graph *graph
	seq   map[Kind]int
}

// NewMemoryRepositories returns repositories backed by a fresh, empty
// in-process catalog. Data lives as long as the returned value.
func NewMemoryRepositories() Repositories {
	store := &memoryStore{graph: newGraph(), seq: make(map[Kind]int)}

	return Repositories{
		Authors:   newMemoryRepository[*Author](store, authorGraph),
		Directors: newMemoryRepository[*Director](store, directorGraph),
		Genres:    newMemoryRepository[*Genre](store, genreGraph{}),
		Books:     newMemoryRepository[*Book](store, bookGraph),
		Movies:    newMemoryRepository[*Movie](store, movieGraph),
	}
}

type memoryRepository[T Entity] struct {
	store   *memoryStore
	kind    Kind
	adapter graphAdapter[T]
}

func newMemoryRepository[T Entity](store *memoryStore, adapter graphAdapter[T]) *memoryRepository[T] {
	return &memoryRepository[T]{store: store, kind: KindOf[T](), adapter: adapter}
}

func (repository *memoryRepository[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	return repository.adapter.loadAll(repository.store.graph)
}

func (repository *memoryRepository[T]) Get(ctx context.Context, id int) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	return repository.adapter.load(repository.store.graph, id)
}

// Create assigns the next id only once the write has succeeded, so rejected
// writes never consume an id.
func (repository *memoryRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := entity.Validate(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	id := repository.store.seq[repository.kind] + 1
	entity.SetIdentity(id)

	if err := repository.adapter.write(repository.store.graph, entity); err != nil {
		entity.SetIdentity(0)
		return zero, err
	}
	repository.store.seq[repository.kind] = id

	return repository.adapter.load(repository.store.graph, id)
}

func (repository *memoryRepository[T]) Replace(ctx context.Context, id int, entity T) (T, error) {
	var zero T
	if err := checkReplace(id, entity); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if !repository.adapter.has(repository.store.graph, id) {
		return zero, notFound(repository.kind)
	}
	if err := repository.adapter.write(repository.store.graph, entity); err != nil {
		return zero, err
	}

	return repository.adapter.load(repository.store.graph, id)
}

func (repository *memoryRepository[T]) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if !repository.adapter.has(repository.store.graph, id) {
		return notFound(repository.kind)
	}
	repository.adapter.remove(repository.store.graph, id)

	return nil
}
