package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ModalState is the edit-session state of the controller.
type ModalState int

const (
	Idle ModalState = iota
	CreateModalOpen
	UpdateModalOpen
)

func (s ModalState) String() string {
	switch s {
	case Idle:
		return "idle"
	case CreateModalOpen:
		return "create"
	case UpdateModalOpen:
		return "update"
	}
	return "unknown"
}

// View is a consistent snapshot of the controller state for rendering.
type View struct {
	Books   []Book
	State   ModalState
	Draft   Draft
	Editing BookID
}

// Controller keeps the local books collection in sync with the remote one.
// Every change to the collection happens only after the remote acknowledged
// it and uses the book returned by the remote. The lock is never held while
// a request is in flight, so concurrent operations complete in any order and
// the last applied response wins.
type Controller struct {
	logger *zap.Logger
	remote BooksRemote

	mu      sync.RWMutex
	books   []Book
	state   ModalState
	draft   Draft
	editing BookID
	// session changes on each modal opening. A submit only closes
	// the modal it was started from.
	session uint64
}

// NewController provides an idle controller with an empty collection.
func NewController(logger *zap.Logger, remote BooksRemote) *Controller {
	return &Controller{
		logger: logger,
		remote: remote,
		books:  []Book{},
	}
}

// Initialize fetches the whole collection and replaces the local one.
// On failure the previous collection is kept.
func (c *Controller) Initialize(ctx context.Context) error {
	books, err := c.remote.List(ctx)
	if err != nil {
		c.logger.Error("controller: failed to fetch books", zap.Error(err))
		return err
	}

	fetched := make([]Book, 0, len(books))
	for _, b := range books {
		fetched = append(fetched, b.Clone())
	}

	c.mu.Lock()
	c.books = fetched
	c.mu.Unlock()

	c.logger.Info("controller: books fetched", zap.Int("books.total", len(fetched)))
	return nil
}

// OpenCreate opens the create modal with an empty draft.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		c.logger.Warn("controller: cannot open create modal", zap.Stringer("state", c.state))
		return ErrModalAlreadyOpen
	}
	c.session++
	c.state = CreateModalOpen
	c.draft = Draft{}
	c.editing = ""
	return nil
}

// OpenUpdate opens the update modal on the book id with a copy of its fields.
func (c *Controller) OpenUpdate(id BookID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		c.logger.Warn("controller: cannot open update modal", zap.Stringer("state", c.state), zap.Stringer("book.id", id))
		return ErrModalAlreadyOpen
	}
	i := c.indexLocked(id)
	if i < 0 {
		c.logger.Warn("controller: cannot edit unknown book", zap.Stringer("book.id", id))
		return ErrBookNotFound
	}
	c.session++
	c.state = UpdateModalOpen
	c.editing = id
	c.draft = c.books[i].Draft()
	return nil
}

// CloseModal closes any open modal and resets the draft. Safe to call anytime.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	c.state = Idle
	c.draft = Draft{}
	c.editing = ""
}

// EditField sets one field of the draft. Values are not validated.
func (c *Controller) EditField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return ErrNoModalOpen
	}
	return c.draft.Set(name, value)
}

// SubmitCreate sends the draft to the remote. On success the returned book
// is appended and the modal closes. On failure nothing changes.
func (c *Controller) SubmitCreate(ctx context.Context) error {
	c.mu.RLock()
	if c.state != CreateModalOpen {
		state := c.state
		c.mu.RUnlock()
		c.logger.Warn("controller: cannot submit creation", zap.Stringer("state", state))
		return ErrInvalidState
	}
	draft, session := c.draft, c.session
	c.mu.RUnlock()

	book, err := c.remote.Create(ctx, draft)
	if err != nil {
		c.logger.Error("controller: failed to create book", zap.Any("draft", draft), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]Book, len(c.books), len(c.books)+1)
	copy(books, c.books)
	c.books = append(books, book.Clone())
	if c.session == session {
		c.closeLocked()
	}
	c.logger.Info("controller: book created", zap.Stringer("book.id", book.ID))
	return nil
}

// SubmitUpdate sends the draft for the edited book. On success the entry is
// replaced at the same position by the returned book and the modal closes.
func (c *Controller) SubmitUpdate(ctx context.Context) error {
	c.mu.RLock()
	if c.state != UpdateModalOpen || c.editing == "" {
		state := c.state
		c.mu.RUnlock()
		c.logger.Warn("controller: cannot submit update", zap.Stringer("state", state))
		return ErrInvalidState
	}
	id, draft, session := c.editing, c.draft, c.session
	c.mu.RUnlock()

	book, err := c.remote.Update(ctx, id, draft)
	if err != nil {
		c.logger.Error("controller: failed to update book", zap.Stringer("book.id", id), zap.Any("draft", draft), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]Book, len(c.books))
	copy(books, c.books)
	for i := range books {
		if books[i].ID == id {
			books[i] = book.Clone()
		}
	}
	c.books = books
	if c.session == session {
		c.closeLocked()
	}
	c.logger.Info("controller: book updated", zap.Stringer("book.id", id))
	return nil
}

// Delete removes the book id from the remote then from the collection.
// There is no confirmation step at this level.
func (c *Controller) Delete(ctx context.Context, id BookID) error {
	c.mu.RLock()
	found := c.indexLocked(id) >= 0
	c.mu.RUnlock()
	if !found {
		c.logger.Warn("controller: cannot delete unknown book", zap.Stringer("book.id", id))
		return ErrBookNotFound
	}

	if err := c.remote.Delete(ctx, id); err != nil {
		c.logger.Error("controller: failed to delete book", zap.Stringer("book.id", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		if b.ID != id {
			books = append(books, b)
		}
	}
	c.books = books
	c.logger.Info("controller: book deleted", zap.Stringer("book.id", id))
	return nil
}

// Books returns a copy of the collection.
func (c *Controller) Books() []Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyBooksLocked()
}

// State returns the current modal state.
func (c *Controller) State() ModalState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// EditSession returns the id of the book being updated, if any.
func (c *Controller) EditSession() (BookID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editing, c.editing != ""
}

// View returns all the rendering state at once.
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View{
		Books:   c.copyBooksLocked(),
		State:   c.state,
		Draft:   c.draft,
		Editing: c.editing,
	}
}

func (c *Controller) copyBooksLocked() []Book {
	books := make([]Book, len(c.books))
	for i, b := range c.books {
		books[i] = b.Clone()
	}
	return books
}

func (c *Controller) indexLocked(id BookID) int {
	for i, b := range c.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
