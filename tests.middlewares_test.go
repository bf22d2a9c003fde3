package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestMiddlewaresStack ensures we get the stub middlewares
// stack with exact number of elements.
func TestMiddlewaresStack(t *testing.T) {
	api := newTestAPIHandler(nil)
	assert.Equal(t, 5, len(*api.MiddlewaresStack()))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", BooksPath, nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestIDMiddleware ensures a valid client id is reused and a new one generated otherwise.
func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		valid  bool
		want   string
	}{
		{"client id reused", "r:client", true, "r:client"},
		{"invalid id replaced", "bogus", false, "r:abc"},
		{"missing id generated", "", false, "r:abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := NewAPIHandler(zap.NewNop(), nil, NewMockClocker(), NewMockUIDHandler("abc", tc.valid), nil)
			req := httptest.NewRequest(http.MethodGet, BooksPath, nil)
			if tc.header != "" {
				req.Header.Set(RequestIDHeader, tc.header)
			}
			w := httptest.NewRecorder()
			var got string
			handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				got = GetValueFromContext(r.Context(), RequestIDContextKey)
			}
			api.RequestIDMiddleware(handler)(w, req, nil)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, w.Header().Get(RequestIDHeader))
		})
	}
}

// TestTimeoutMiddleware ensures the handler context carries the configured deadline.
func TestTimeoutMiddleware(t *testing.T) {
	config := &Config{Stub: StubConfig{RequestTimeout: time.Minute}}
	api := NewAPIHandler(zap.NewNop(), config, NewMockClocker(), NewMockUIDHandler("abc", true), nil)
	req := httptest.NewRequest(http.MethodGet, BooksPath, nil)
	w := httptest.NewRecorder()
	var hasDeadline bool
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		_, hasDeadline = r.Context().Deadline()
	}
	api.TimeoutMiddleware(handler)(w, req, nil)
	assert.True(t, hasDeadline)

	api = newTestAPIHandler(nil)
	api.TimeoutMiddleware(handler)(w, req, nil)
	assert.False(t, hasDeadline)
}

// TestPanicRecoveryMiddleware ensures a panicking handler results into a 500.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	req := httptest.NewRequest(http.MethodGet, BooksPath, nil)
	w := httptest.NewRecorder()
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		panic("boom")
	}
	assert.NotPanics(t, func() { api.PanicRecoveryMiddleware(handler)(w, req, nil) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestCORSMiddleware ensures cors headers are set before the handler runs.
func TestCORSMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, BooksPath, nil)
	w := httptest.NewRecorder()
	var called bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
	}
	CORSMiddleware(handler)(w, req, nil)
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
}
