package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// BooksPath is the collection resource path on the remote api.
const BooksPath = "/api/books/"

// maxRejectionBody bounds the response body kept into a RejectionError.
const maxRejectionBody = 512

// Remote operations names used in errors and logs.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// BooksRemote defines the operations available on the remote books collection.
type BooksRemote interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, draft Draft) (Book, error)
	Update(ctx context.Context, id BookID, draft Draft) (Book, error)
	Delete(ctx context.Context, id BookID) error
}

type httpBooksRemote struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
	ids     UIDHandler
	clock   Clocker
}

// NewHTTPBooksRemote provides an http-based client of the remote books collection.
func NewHTTPBooksRemote(logger *zap.Logger, config *APIConfig, ids UIDHandler, clock Clocker) BooksRemote {
	return &httpBooksRemote{
		logger:  logger,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		ids:     ids,
		clock:   clock,
	}
}

func (hr *httpBooksRemote) collectionURL() string {
	return hr.baseURL + BooksPath
}

func (hr *httpBooksRemote) itemURL(id BookID) string {
	return hr.baseURL + BooksPath + url.PathEscape(id.String()) + "/"
}

// List fetches all books in server order.
func (hr *httpBooksRemote) List(ctx context.Context) ([]Book, error) {
	books := []Book{}
	if err := hr.do(ctx, OpList, http.MethodGet, hr.collectionURL(), nil, &books); err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ID == "" {
			return nil, &RejectionError{Op: OpList, Status: http.StatusOK, Message: "book without id in response"}
		}
	}
	return books, nil
}

// Create sends the draft and returns the book as stored by the server.
func (hr *httpBooksRemote) Create(ctx context.Context, draft Draft) (Book, error) {
	var book Book
	if err := hr.do(ctx, OpCreate, http.MethodPost, hr.collectionURL(), draft, &book); err != nil {
		return Book{}, err
	}
	if book.ID == "" {
		return Book{}, &RejectionError{Op: OpCreate, Status: http.StatusOK, Message: "created book without id in response"}
	}
	return book, nil
}

// Update replaces the editable fields of the book id and returns the server representation.
func (hr *httpBooksRemote) Update(ctx context.Context, id BookID, draft Draft) (Book, error) {
	var book Book
	if err := hr.do(ctx, OpUpdate, http.MethodPut, hr.itemURL(id), draft, &book); err != nil {
		return Book{}, err
	}
	if book.ID == "" {
		return Book{}, &RejectionError{Op: OpUpdate, Status: http.StatusOK, Message: "updated book without id in response"}
	}
	return book, nil
}

// Delete removes the book id from the remote collection.
func (hr *httpBooksRemote) Delete(ctx context.Context, id BookID) error {
	return hr.do(ctx, OpDelete, http.MethodDelete, hr.itemURL(id), nil, nil)
}

// do performs a single request. Any transport error or non-2xx status fails the call.
// When out is nil the response body is discarded.
func (hr *httpBooksRemote) do(ctx context.Context, op, method, target string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request body: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	requestID := hr.ids.Generate(RequestIDPrefix)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := hr.clock.Now()
	resp, err := hr.client.Do(req)
	if err != nil {
		hr.logger.Debug("remote: request failed",
			zap.String("request.id", requestID),
			zap.String("request.method", method),
			zap.String("request.url", target),
			zap.Error(err),
		)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	hr.logger.Debug("remote: request done",
		zap.String("request.id", requestID),
		zap.String("request.method", method),
		zap.String("request.url", target),
		zap.Int("response.status", resp.StatusCode),
		zap.Duration("request.duration", elapsed(hr.clock, start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxRejectionBody))
		return &RejectionError{Op: op, Status: resp.StatusCode, Message: strings.TrimSpace(string(excerpt))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RejectionError{Op: op, Status: resp.StatusCode, Message: "invalid response body: " + err.Error()}
	}
	return nil
}
