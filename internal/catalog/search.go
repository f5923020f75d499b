// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/samber/lo"
)

// Query answers keyword searches over one repository.
//
// # Semantics
//
// An empty term returns the full list. Any other term is a case-insensitive
// substring match: on the name for authors, directors and genres, and on the
// title or the owner's name for books and movies. There is no tokenization,
// prefix or fuzzy matching.
type Query[T Entity] struct {
	repo Repository[T]
}

func NewQuery[T Entity](repo Repository[T]) *Query[T] {
	return &Query[T]{repo: repo}
}

// Search returns the hydrated entities matching term, ascending by id.
//
// Backends implementing [SearchRepository] filter server-side. Otherwise the
// hydrated list is filtered with [Entity.Matches].
func (query *Query[T]) Search(ctx context.Context, term string) ([]T, error) {
	if term == "" {
		return query.repo.List(ctx)
	}

	if searcher, ok := query.repo.(SearchRepository[T]); ok {
		return searcher.Search(ctx, term)
	}

	entities, err := query.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Filter(entities, func(entity T, _ int) bool {
		return entity.Matches(term)
	}), nil
}
