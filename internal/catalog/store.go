// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
)

// Repository is the persistence contract for one entity kind.
//
// # Guarantees
//
//   - Every returned entity has its direct relations hydrated.
//   - Lists are ordered by ascending id.
//   - A failed write persists nothing.
//   - Writes are atomic with respect to concurrent reads.
type Repository[T Entity] interface {
	// List returns every row of the kind.
	List(ctx context.Context) ([]T, error)

	// Get returns the row with the given id or NOT_FOUND.
	Get(ctx context.Context, id int) (T, error)

	// Create validates the entity, checks its references, assigns an id and
	// returns the stored row.
	Create(ctx context.Context, entity T) (T, error)

	// Replace overwrites the row with the given id, including its relations.
	// It never inserts.
	Replace(ctx context.Context, id int, entity T) (T, error)

	// Delete removes the row and clears every reference to it.
	Delete(ctx context.Context, id int) error
}

// SearchRepository is implemented by backends that filter server-side.
type SearchRepository[T Entity] interface {
	Search(ctx context.Context, term string) ([]T, error)
}

// Repositories bundles one [Repository] per kind over a shared backend.
type Repositories struct {
	Authors   Repository[*Author]
	Directors Repository[*Director]
	Genres    Repository[*Genre]
	Books     Repository[*Book]
	Movies    Repository[*Movie]
}

// checkReplace runs the checks every backend performs before a replace.
func checkReplace[T Entity](id int, entity T) error {
	if entity.Identity() != id {
		return apperr.IDMismatch(id, entity.Identity())
	}
	return entity.Validate()
}
