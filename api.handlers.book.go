package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Server-side fields added to each stored book.
const (
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"
)

func (api *APIHandler) timestamp() string {
	return api.clock.Now().UTC().Format(time.RFC3339Nano)
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var draft Draft
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeDraftRequestBody(r, &draft)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", draft)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateDraftRequestBody(&draft)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book := Book{Title: draft.Title, Author: draft.Author, ISBN: draft.ISBN}
	now := api.timestamp()
	_ = book.SetExtra(CreatedAtField, now)
	_ = book.SetExtra(UpdatedAtField, now)

	book, err = api.storage.Add(r.Context(), book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to create the book", draft)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to create book", zap.Stringer("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusCreated, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	books, err := api.storage.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get all books", nil)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get all books", zap.Int("books.total", len(books)), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, books); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := BookID(ps.ByName("id"))
	book, err := api.storage.GetOne(r.Context(), id)
	if err != nil {
		api.writeStorageError(w, r, requestID, id, "failed to get the book", err)
		return
	}
	api.logger.Info("success to get book", zap.Stringer("book.id", id), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var draft Draft
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := BookID(ps.ByName("id"))
	err := DecodeDraftRequestBody(r, &draft)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", draft)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateDraftRequestBody(&draft)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.storage.GetOne(r.Context(), id)
	if err != nil {
		api.writeStorageError(w, r, requestID, id, "failed to update the book", err)
		return
	}

	book.Title, book.Author, book.ISBN = draft.Title, draft.Author, draft.ISBN
	_ = book.SetExtra(UpdatedAtField, api.timestamp())
	book, err = api.storage.Update(r.Context(), id, book)
	if err != nil {
		api.writeStorageError(w, r, requestID, id, "failed to update the book", err)
		return
	}
	api.logger.Info("success to update book", zap.Stringer("book.id", id), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := BookID(ps.ByName("id"))
	if err := api.storage.Delete(r.Context(), id); err != nil {
		api.writeStorageError(w, r, requestID, id, "failed to delete the book", err)
		return
	}
	api.logger.Info("success to delete book", zap.Stringer("book.id", id), zap.String("request.id", requestID))
	if err := WriteJSON(r.Context(), w, http.StatusNoContent, nil); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// writeStorageError maps a storage failure to 404 or 500.
func (api *APIHandler) writeStorageError(w http.ResponseWriter, r *http.Request, requestID string, id BookID, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrBookNotFound) {
		status, message = http.StatusNotFound, "book does not exist"
	}
	api.logger.Error(message, zap.Stringer("book.id", id), zap.String("request.id", requestID), zap.Error(err))
	errResp := NewAPIError(requestID, status, message, id)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}
