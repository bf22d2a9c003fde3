package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestSetupRoutes ensures each stub endpoint is wired to its handler through the stack.
func TestSetupRoutes(t *testing.T) {
	mockRepo := &MockBookStorage{
		AddFunc: func(ctx context.Context, book Book) (Book, error) {
			book.ID = "1"
			return book, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
		GetOneFunc: func(ctx context.Context, id BookID) (Book, error) {
			return Book{ID: id, Title: "A", Author: "X", ISBN: "0"}, nil
		},
		UpdateFunc: func(ctx context.Context, id BookID, book Book) (Book, error) {
			return book, nil
		},
		DeleteFunc: func(ctx context.Context, id BookID) error {
			return nil
		},
	}
	api := newTestAPIHandler(mockRepo)
	router := api.SetupRoutes(httprouter.New(), api.MiddlewaresStack())

	body := `{"title":"T","author":"A","isbn":"1"}`
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"status", http.MethodGet, "/status", "", http.StatusOK},
		{"list books", http.MethodGet, "/api/books/", "", http.StatusOK},
		{"create book", http.MethodPost, "/api/books/", body, http.StatusCreated},
		{"get book", http.MethodGet, "/api/books/1/", "", http.StatusOK},
		{"update book", http.MethodPut, "/api/books/1/", body, http.StatusOK},
		{"delete book", http.MethodDelete, "/api/books/1/", "", http.StatusNoContent},
		{"unknown route", http.MethodGet, "/api/authors/", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/books/1/", body, http.StatusMethodNotAllowed},
		{"preflight", http.MethodOptions, "/api/books/", "", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("request id header set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "r:abc", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("missing trailing slash redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/api/books/1/", w.Header().Get("Location"))
	})
}

// TestSetupOpsRoutes ensures profiles are only served when enabled.
func TestSetupOpsRoutes(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		config := &Config{Stub: StubConfig{ProfilerEnable: enabled}}
		api := NewAPIHandler(zap.NewNop(), config, NewMockClocker(), NewMockUIDHandler("abc", false), &MockBookStorage{})
		router := api.SetupRoutes(httprouter.New(), api.MiddlewaresStack())

		req := httptest.NewRequest(http.MethodGet, OpsPprofPath+"cmdline", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if enabled {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	}
}
