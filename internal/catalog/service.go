// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Service exposes the catalog operations for one entity kind.
type Service[T Entity] struct {
	kind   Kind
	repo   Repository[T]
	query  *Query[T]
	logger *slog.Logger
}

func NewService[T Entity](repo Repository[T], logger *slog.Logger) *Service[T] {
	kind := KindOf[T]()
	return &Service[T]{
		kind:   kind,
		repo:   repo,
		query:  NewQuery(repo),
		logger: logger.With(slog.String("kind", string(kind))),
	}
}

// Kind returns the entity kind served.
func (service *Service[T]) Kind() Kind {
	return service.kind
}

func (service *Service[T]) List(context context.Context) ([]T, error) {
	entities, err := service.repo.List(context)
	return entities, service.observe(err)
}

// Search filters by term. An empty term is equivalent to [Service.List].
func (service *Service[T]) Search(context context.Context, term string) ([]T, error) {
	entities, err := service.query.Search(context, term)
	return entities, service.observe(err)
}

func (service *Service[T]) Get(context context.Context, id int) (T, error) {
	entity, err := service.repo.Get(context, id)
	return entity, service.observe(err)
}

func (service *Service[T]) Create(context context.Context, entity T) (T, error) {
	created, err := service.repo.Create(context, entity)
	if err != nil {
		return created, service.observe(err)
	}

	service.logger.Info(service.event("created"), slog.Int("id", created.Identity()))
	return created, nil
}

// Replace overwrites the entity stored under id with the payload, relations included.
func (service *Service[T]) Replace(context context.Context, id int, entity T) (T, error) {
	replaced, err := service.repo.Replace(context, id, entity)
	if err != nil {
		return replaced, service.observe(err)
	}

	service.logger.Info(service.event("replaced"), slog.Int("id", id))
	return replaced, nil
}

func (service *Service[T]) Delete(context context.Context, id int) error {
	if err := service.repo.Delete(context, id); err != nil {
		return service.observe(err)
	}

	service.logger.Warn(service.event("deleted"), slog.Int("id", id))
	return nil
}

// event names a write log line, e.g. "book_created".
func (service *Service[T]) event(action string) string {
	return strings.ToLower(service.kind.Resource()) + "_" + action
}

// observe logs corrupted relations before they surface as a generic failure.
func (service *Service[T]) observe(err error) error {
	if errors.Is(err, ErrDataCorruption) {
		service.logger.Error("catalog_data_corruption", slog.Any("error", errors.Unwrap(err)))
	}
	return err
}

// # Catalog

// Catalog bundles the five per-kind services over one set of repositories.
type Catalog struct {
	Authors   *Service[*Author]
	Directors *Service[*Director]
	Genres    *Service[*Genre]
	Books     *Service[*Book]
	Movies    *Service[*Movie]
}

func NewCatalog(repos Repositories, logger *slog.Logger) *Catalog {
	return &Catalog{
		Authors:   NewService(repos.Authors, logger),
		Directors: NewService(repos.Directors, logger),
		Genres:    NewService(repos.Genres, logger),
		Books:     NewService(repos.Books, logger),
		Movies:    NewService(repos.Movies, logger),
	}
}
