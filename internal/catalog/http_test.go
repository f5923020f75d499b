// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediacatalog/internal/catalog"
	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
	"github.com/taibuivan/mediacatalog/internal/platform/constants"
)

type envelope struct {
	Data    json.RawMessage     `json:"data"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details"`
}

func newCatalogRouter() http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Route("/api", catalog.NewCatalog(catalog.NewMemoryRepositories(), logger).RegisterRoutes)
	return router
}

func serve(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, reader))

	var decoded envelope
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder, decoded
}

func TestHandler_Lifecycle(t *testing.T) {
	router := newCatalogRouter()

	// 1. Create
	recorder, _ := serve(t, router, http.MethodPost, "/api/authors", `{"name":"A. Author"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "/api/authors/1", recorder.Header().Get(constants.HeaderLocation))

	recorder, _ = serve(t, router, http.MethodPost, "/api/genres", `{"name":"Drama"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder, body := serve(t, router, http.MethodPost, "/api/books", `{"title":"Sample Book","authorId":1,"genres":[{"id":1}]}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "/api/books/1", recorder.Header().Get(constants.HeaderLocation))
	assert.JSONEq(t,
		`{"id":1,"title":"Sample Book","authorId":1,"author":{"id":1,"name":"A. Author"},"genres":[{"id":1,"name":"Drama"}]}`,
		string(body.Data))

	// 2. Read
	recorder, body = serve(t, router, http.MethodGet, "/api/authors/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"id":1,"name":"A. Author","books":[{"id":1,"title":"Sample Book","authorId":1}]}`, string(body.Data))

	recorder, body = serve(t, router, http.MethodGet, "/api/books?searchTerm=a.%20author", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var books []catalog.Book
	require.NoError(t, json.Unmarshal(body.Data, &books))
	require.Len(t, books, 1)

	recorder, body = serve(t, router, http.MethodGet, "/api/books?searchTerm=zzz", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, string(body.Data))

	// 3. Replace
	recorder, _ = serve(t, router, http.MethodPut, "/api/books/1", `{"id":1,"title":"Renamed Book","authorId":1,"genres":[{"id":1}]}`)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder, body = serve(t, router, http.MethodGet, "/api/genres/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"id":1,"name":"Drama","books":[{"id":1,"title":"Renamed Book","authorId":1}],"movies":[]}`, string(body.Data))

	// 4. Delete
	recorder, _ = serve(t, router, http.MethodDelete, "/api/authors/1", "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder, body = serve(t, router, http.MethodDelete, "/api/authors/1", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, apperr.CodeNotFound, body.Code)

	recorder, body = serve(t, router, http.MethodGet, "/api/books/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"id":1,"title":"Renamed Book","authorId":0,"author":null,"genres":[{"id":1,"name":"Drama"}]}`, string(body.Data))
}

func TestHandler_Errors(t *testing.T) {
	router := newCatalogRouter()
	serve(t, router, http.MethodPost, "/api/directors", `{"name":"D. Director"}`)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
		field  string
	}{
		{"non_integer_id", http.MethodGet, "/api/movies/abc", "", http.StatusBadRequest, apperr.CodeValidation, "id"},
		{"missing", http.MethodGet, "/api/movies/7", "", http.StatusNotFound, apperr.CodeNotFound, ""},
		{"malformed_json", http.MethodPost, "/api/movies", `{"title":`, http.StatusBadRequest, apperr.CodeValidation, ""},
		{"validation", http.MethodPost, "/api/movies", `{"title":"Up","directorId":1,"genres":[{"id":1}]}`, http.StatusBadRequest, apperr.CodeValidation, catalog.FieldTitle},
		{"foreign_key", http.MethodPost, "/api/movies", `{"title":"Arrival","directorId":1,"genres":[{"id":5}]}`, http.StatusBadRequest, apperr.CodeForeignKey, catalog.FieldGenres},
		{"id_mismatch", http.MethodPut, "/api/directors/1", `{"id":2,"name":"D. Director"}`, http.StatusBadRequest, apperr.CodeIDMismatch, "id"},
		{"replace_missing", http.MethodPut, "/api/directors/9", `{"id":9,"name":"Ghost"}`, http.StatusNotFound, apperr.CodeNotFound, ""},
		{"trailing_data", http.MethodPost, "/api/genres", `{"name":"Thriller"} trailing`, http.StatusBadRequest, apperr.CodeValidation, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, body := serve(t, router, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.code, body.Code)
			if tt.field != "" {
				require.NotEmpty(t, body.Details)
				assert.Equal(t, tt.field, body.Details[0].Field)
			}
		})
	}

	recorder, body := serve(t, router, http.MethodGet, "/api/genres", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, string(body.Data))
}
