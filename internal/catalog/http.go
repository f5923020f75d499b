// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mediacatalog/internal/platform/constants"
	requestutil "github.com/taibuivan/mediacatalog/internal/platform/request"
	"github.com/taibuivan/mediacatalog/internal/platform/respond"
)

// Handler serves the REST endpoints of one entity kind.
type Handler[T Entity] struct {
	service *Service[T]
}

func NewHandler[T Entity](service *Service[T]) *Handler[T] {
	return &Handler[T]{service: service}
}

func (handler *Handler[T]) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.replace)
	router.Delete("/{id}", handler.delete)
}

// RegisterRoutes mounts every kind under /{kind}.
func (catalog *Catalog) RegisterRoutes(router chi.Router) {
	router.Route("/"+string(KindAuthor), NewHandler(catalog.Authors).RegisterRoutes)
	router.Route("/"+string(KindDirector), NewHandler(catalog.Directors).RegisterRoutes)
	router.Route("/"+string(KindGenre), NewHandler(catalog.Genres).RegisterRoutes)
	router.Route("/"+string(KindBook), NewHandler(catalog.Books).RegisterRoutes)
	router.Route("/"+string(KindMovie), NewHandler(catalog.Movies).RegisterRoutes)
}

// list serves both the full listing and ?searchTerm= filtering.
func (handler *Handler[T]) list(writer http.ResponseWriter, request *http.Request) {
	term := requestutil.Query(request, constants.QuerySearchTerm)

	entities, err := handler.service.Search(request.Context(), term)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entities)
}

func (handler *Handler[T]) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entity)
}

func (handler *Handler[T]) create(writer http.ResponseWriter, request *http.Request) {
	input := newEntity[T]()
	if err := requestutil.DecodeJSON(request, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	location := fmt.Sprintf("%s/%d", strings.TrimSuffix(request.URL.Path, "/"), created.Identity())
	respond.CreatedAt(writer, location, created)
}

func (handler *Handler[T]) replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := newEntity[T]()
	if err := requestutil.DecodeJSON(request, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.Replace(request.Context(), id, input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler[T]) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
