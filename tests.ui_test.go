package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// lineReader hands out one line per Read so each prompt only consumes its own answer.
type lineReader struct {
	lines []string
	buf   []byte
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if len(r.lines) == 0 {
			return 0, io.EOF
		}
		r.buf = []byte(r.lines[0] + "\n")
		r.lines = r.lines[1:]
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// newScriptedUI returns a ui answering its prompts with the given lines.
func newScriptedUI(ctrl *Controller, confirmDelete bool, lines ...string) (*TerminalUI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	config := &UIConfig{ConfirmDelete: confirmDelete, Accessible: true}
	return NewTerminalUI(zap.NewNop(), config, ctrl, &lineReader{lines: lines}, out), out
}

func TestTerminalUI_RunModal(t *testing.T) {
	t.Run("should pass: retry after a failed create", func(t *testing.T) {
		var drafts []Draft
		remote := &MockBooksRemote{
			CreateFunc: func(ctx context.Context, draft Draft) (Book, error) {
				drafts = append(drafts, draft)
				if len(drafts) == 1 {
					return Book{}, &TransportError{Op: OpCreate, Err: errors.New("connection refused")}
				}
				return Book{ID: "4", Title: draft.Title, Author: draft.Author, ISBN: draft.ISBN}, nil
			},
		}
		ctrl := newLoadedController(t, remote, testBooks())
		ui, out := newScriptedUI(ctrl, false, "Dune", "Herbert", "978", "1")

		require.NoError(t, ctrl.OpenCreate())
		require.NoError(t, ui.runModal(context.Background(), "Add New Book", ctrl.SubmitCreate))

		want := Draft{Title: "Dune", Author: "Herbert", ISBN: "978"}
		assert.Equal(t, []Draft{want, want}, drafts)
		assert.Equal(t, Idle, ctrl.State())
		books := ctrl.Books()
		require.Len(t, books, 4)
		assert.Equal(t, Book{ID: "4", Title: "Dune", Author: "Herbert", ISBN: "978"}, books[3])
		assert.Contains(t, out.String(), "Could not save the book")
	})

	t.Run("should pass: edit again keeps the previous values", func(t *testing.T) {
		var drafts []Draft
		remote := &MockBooksRemote{
			CreateFunc: func(ctx context.Context, draft Draft) (Book, error) {
				drafts = append(drafts, draft)
				if draft.ISBN == "" {
					return Book{}, &RejectionError{Op: OpCreate, Status: 400, Message: "isbn is required"}
				}
				return Book{ID: "4", Title: draft.Title, Author: draft.Author, ISBN: draft.ISBN}, nil
			},
		}
		ctrl := newLoadedController(t, remote, testBooks())
		ui, _ := newScriptedUI(ctrl, false, "Dune", "Herbert", "", "2", "", "", "978")

		require.NoError(t, ctrl.OpenCreate())
		require.NoError(t, ui.runModal(context.Background(), "Add New Book", ctrl.SubmitCreate))

		require.Len(t, drafts, 2)
		assert.Equal(t, Draft{Title: "Dune", Author: "Herbert"}, drafts[0])
		assert.Equal(t, Draft{Title: "Dune", Author: "Herbert", ISBN: "978"}, drafts[1])
		assert.Equal(t, Idle, ctrl.State())
		assert.Len(t, ctrl.Books(), 4)
	})

	t.Run("should fail: close after a failed create", func(t *testing.T) {
		calls := 0
		remote := &MockBooksRemote{
			CreateFunc: func(ctx context.Context, draft Draft) (Book, error) {
				calls++
				return Book{}, &TransportError{Op: OpCreate, Err: errors.New("connection refused")}
			},
		}
		ctrl := newLoadedController(t, remote, testBooks())
		ui, _ := newScriptedUI(ctrl, false, "Dune", "Herbert", "978", "3")

		require.NoError(t, ctrl.OpenCreate())
		require.NoError(t, ui.runModal(context.Background(), "Add New Book", ctrl.SubmitCreate))

		assert.Equal(t, 1, calls)
		assert.Equal(t, Idle, ctrl.State())
		assert.Equal(t, testBooks(), ctrl.Books())
	})

	t.Run("should pass: update replaces the book in place", func(t *testing.T) {
		remote := &MockBooksRemote{
			UpdateFunc: func(ctx context.Context, id BookID, draft Draft) (Book, error) {
				return Book{ID: id, Title: draft.Title, Author: draft.Author, ISBN: draft.ISBN}, nil
			},
		}
		ctrl := newLoadedController(t, remote, testBooks())
		ui, _ := newScriptedUI(ctrl, false, "B2", "", "")

		require.NoError(t, ctrl.OpenUpdate("2"))
		require.NoError(t, ui.runModal(context.Background(), "Edit Book", ctrl.SubmitUpdate))

		books := ctrl.Books()
		require.Len(t, books, 3)
		assert.Equal(t, Book{ID: "2", Title: "B2", Author: "Y", ISBN: "111"}, books[1])
		assert.Equal(t, Idle, ctrl.State())
	})
}

func TestTerminalUI_Delete(t *testing.T) {
	tests := []struct {
		name          string
		confirmDelete bool
		lines         []string
		deleted       bool
	}{
		{"should pass: cancel keeps the book", true, []string{"n"}, false},
		{"should pass: confirmed delete", true, []string{"y"}, true},
		{"should pass: no confirmation asked", false, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			remote := &MockBooksRemote{
				DeleteFunc: func(ctx context.Context, id BookID) error {
					calls++
					return nil
				},
			}
			ctrl := newLoadedController(t, remote, testBooks())
			ui, _ := newScriptedUI(ctrl, tc.confirmDelete, tc.lines...)

			require.NoError(t, ui.delete(context.Background(), "2"))
			if tc.deleted {
				assert.Equal(t, 1, calls)
				assert.Len(t, ctrl.Books(), 2)
				return
			}
			assert.Equal(t, 0, calls)
			assert.Equal(t, testBooks(), ctrl.Books())
		})
	}
}

func TestTerminalUI_Run(t *testing.T) {
	remote := &MockBooksRemote{
		ListFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
		CreateFunc: func(ctx context.Context, draft Draft) (Book, error) {
			return Book{ID: "1", Title: draft.Title, Author: draft.Author, ISBN: draft.ISBN}, nil
		},
	}
	ctrl := NewController(zap.NewNop(), remote)
	// add a book from the menu then pick quit, the fifth entry once a book exists.
	ui, out := newScriptedUI(ctrl, false, "1", "Dune", "Herbert", "978", "5")

	require.NoError(t, ui.Run(context.Background()))
	assert.Equal(t, []Book{{ID: "1", Title: "Dune", Author: "Herbert", ISBN: "978"}}, ctrl.Books())
	assert.Contains(t, out.String(), "(no books)")
	assert.Contains(t, out.String(), "ISBN: 978")
}

func TestMenuOptions(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		options := menuOptions(View{Books: []Book{}})
		var values []string
		for _, o := range options {
			values = append(values, o.Value)
		}
		assert.Equal(t, []string{actionAdd, actionReload, actionQuit}, values)
	})

	t.Run("one edit and delete entry per book", func(t *testing.T) {
		view := View{Books: []Book{{ID: "1", Title: "A"}, {ID: "b-2", Title: "B"}}}
		options := menuOptions(view)
		var keys, values []string
		for _, o := range options {
			keys = append(keys, o.Key)
			values = append(values, o.Value)
		}
		assert.Equal(t, []string{
			"add", "edit:1", "edit:b-2", "delete:1", "delete:b-2", "reload", "quit",
		}, values)
		assert.Equal(t, `Edit "A"`, keys[1])
		assert.Equal(t, `Delete "B"`, keys[4])
	})
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		value  string
		action string
		id     BookID
	}{
		{"add", actionAdd, ""},
		{"edit:1", actionEdit, "1"},
		{"delete:b:2", actionDelete, "b:2"},
		{"quit", actionQuit, ""},
	}
	for _, tc := range tests {
		action, id := parseAction(tc.value)
		assert.Equal(t, tc.action, action, tc.value)
		assert.Equal(t, tc.id, id, tc.value)
	}
}
