package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBooksRemote struct {
	ListFunc   func(ctx context.Context) ([]Book, error)
	CreateFunc func(ctx context.Context, draft Draft) (Book, error)
	UpdateFunc func(ctx context.Context, id BookID, draft Draft) (Book, error)
	DeleteFunc func(ctx context.Context, id BookID) error
}

// List mocks the behavior of fetching all books from the remote.
func (m *MockBooksRemote) List(ctx context.Context) ([]Book, error) {
	return m.ListFunc(ctx)
}

// Create mocks the behavior of book creation by the remote.
func (m *MockBooksRemote) Create(ctx context.Context, draft Draft) (Book, error) {
	return m.CreateFunc(ctx, draft)
}

// Update mocks the behavior of updating a book by the remote.
func (m *MockBooksRemote) Update(ctx context.Context, id BookID, draft Draft) (Book, error) {
	return m.UpdateFunc(ctx, id, draft)
}

// Delete mocks the behavior of deleting a book by the remote.
func (m *MockBooksRemote) Delete(ctx context.Context, id BookID) error {
	return m.DeleteFunc(ctx, id)
}

type MockBookStorage struct {
	AddFunc    func(ctx context.Context, book Book) (Book, error)
	GetOneFunc func(ctx context.Context, id BookID) (Book, error)
	DeleteFunc func(ctx context.Context, id BookID) error
	UpdateFunc func(ctx context.Context, id BookID, book Book) (Book, error)
	GetAllFunc func(ctx context.Context) ([]Book, error)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id BookID) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id BookID) error {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, id BookID, book Book) (Book, error) {
	return m.UpdateFunc(ctx, id, book)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// Close has nothing to release.
func (m *MockBookStorage) Close() error {
	return nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `2023-07-02T00:00:00Z` in time.RFC3339 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
