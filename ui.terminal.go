package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"
)

// Main menu actions. Book related ones carry the id after a colon.
const (
	actionAdd    = "add"
	actionEdit   = "edit"
	actionDelete = "delete"
	actionReload = "reload"
	actionQuit   = "quit"
)

// Choices offered after a failed submission.
const (
	choiceRetry = "retry"
	choiceEdit  = "edit"
	choiceClose = "close"
)

// TerminalUI renders the books list and drives the controller from
// interactive forms. It holds no books state of its own.
type TerminalUI struct {
	logger *zap.Logger
	config *UIConfig
	ctrl   *Controller
	in     io.Reader
	out    io.Writer
}

// NewTerminalUI provides a terminal front end over the controller. A nil
// input makes the forms read from stdin. With UIConfig.Accessible set the
// forms run as plain line prompts, which also works without a tty.
func NewTerminalUI(logger *zap.Logger, config *UIConfig, ctrl *Controller, in io.Reader, out io.Writer) *TerminalUI {
	return &TerminalUI{logger: logger, config: config, ctrl: ctrl, in: in, out: out}
}

// newForm builds a form bound to the ui streams and mode.
func (ui *TerminalUI) newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithOutput(ui.out)
	if ui.in != nil {
		form = form.WithInput(ui.in)
	}
	return form.WithAccessible(ui.config != nil && ui.config.Accessible)
}

// Run loads the collection once then loops on the main menu until the user quits.
func (ui *TerminalUI) Run(ctx context.Context) error {
	ui.logger.Info("ui: session started")
	defer ui.logger.Info("ui: session ended")
	if err := ui.ctrl.Initialize(ctx); err != nil {
		fmt.Fprintf(ui.out, "Could not load the books: %v\n", err)
	}

	for ctx.Err() == nil {
		view := ui.ctrl.View()
		ui.render(view)

		var action string
		menu := ui.newForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to do?").
				Options(menuOptions(view)...).
				Value(&action),
		))
		if err := menu.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		name, id := parseAction(action)
		switch name {
		case actionAdd:
			if err := ui.ctrl.OpenCreate(); err != nil {
				fmt.Fprintf(ui.out, "Cannot add a book: %v\n", err)
				continue
			}
			if err := ui.runModal(ctx, "Add New Book", ui.ctrl.SubmitCreate); err != nil {
				return err
			}
		case actionEdit:
			if err := ui.ctrl.OpenUpdate(id); err != nil {
				fmt.Fprintf(ui.out, "Cannot edit the book: %v\n", err)
				continue
			}
			if err := ui.runModal(ctx, "Edit Book", ui.ctrl.SubmitUpdate); err != nil {
				return err
			}
		case actionDelete:
			if err := ui.delete(ctx, id); err != nil {
				return err
			}
		case actionReload:
			if err := ui.ctrl.Initialize(ctx); err != nil {
				fmt.Fprintf(ui.out, "Could not reload the books: %v\n", err)
			}
		case actionQuit:
			return nil
		}
	}
	return nil
}

// render prints the collection the way the list view shows it.
func (ui *TerminalUI) render(view View) {
	fmt.Fprintln(ui.out)
	fmt.Fprintln(ui.out, "Library Books")
	if len(view.Books) == 0 {
		fmt.Fprintln(ui.out, "  (no books)")
	}
	for _, b := range view.Books {
		fmt.Fprintf(ui.out, "  - %s\n    %s\n    ISBN: %s\n", b.Title, b.Author, b.ISBN)
	}
	fmt.Fprintln(ui.out)
}

// runModal edits the draft of the open modal then submits it. A failed
// submission keeps the modal open and lets the user retry, edit or close.
func (ui *TerminalUI) runModal(ctx context.Context, title string, submit func(context.Context) error) error {
	edit := true
	for {
		if edit {
			draft := ui.ctrl.Draft()
			form := ui.newForm(huh.NewGroup(
				huh.NewNote().Title(title),
				huh.NewInput().Title("Title").Placeholder("Enter title").Value(&draft.Title),
				huh.NewInput().Title("Author").Placeholder("Enter author").Value(&draft.Author),
				huh.NewInput().Title("ISBN").Placeholder("Enter ISBN").Value(&draft.ISBN),
			))
			if err := form.RunWithContext(ctx); err != nil {
				ui.ctrl.CloseModal()
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
			if err := ui.applyDraft(draft); err != nil {
				ui.ctrl.CloseModal()
				return err
			}
		}

		err := submit(ctx)
		if err == nil {
			return nil
		}
		fmt.Fprintf(ui.out, "Could not save the book: %v\n", err)
		if errors.Is(err, ErrInvalidState) {
			ui.ctrl.CloseModal()
			return nil
		}

		choice := choiceRetry
		prompt := ui.newForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("The book was not saved.").
				Options(
					huh.NewOption("Retry", choiceRetry),
					huh.NewOption("Edit again", choiceEdit),
					huh.NewOption("Close", choiceClose),
				).
				Value(&choice),
		))
		if err = prompt.RunWithContext(ctx); err != nil {
			ui.ctrl.CloseModal()
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		switch choice {
		case choiceClose:
			ui.ctrl.CloseModal()
			return nil
		case choiceEdit:
			edit = true
		default:
			edit = false
		}
	}
}

// applyDraft pushes the form values into the controller draft.
func (ui *TerminalUI) applyDraft(draft Draft) error {
	fields := []struct{ name, value string }{
		{FieldTitle, draft.Title},
		{FieldAuthor, draft.Author},
		{FieldISBN, draft.ISBN},
	}
	for _, f := range fields {
		if err := ui.ctrl.EditField(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// delete asks for a confirmation when configured then removes the book.
func (ui *TerminalUI) delete(ctx context.Context, id BookID) error {
	if ui.config != nil && ui.config.ConfirmDelete {
		confirmed := false
		confirm := ui.newForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this book?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		))
		if err := confirm.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			return nil
		}
	}
	if err := ui.ctrl.Delete(ctx, id); err != nil {
		fmt.Fprintf(ui.out, "Could not delete the book: %v\n", err)
	}
	return nil
}

// menuOptions lists the main menu entries for the given view.
func menuOptions(view View) []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("Add New Book", actionAdd)}
	for _, b := range view.Books {
		options = append(options, huh.NewOption(fmt.Sprintf("Edit %q", b.Title), actionEdit+":"+b.ID.String()))
	}
	for _, b := range view.Books {
		options = append(options, huh.NewOption(fmt.Sprintf("Delete %q", b.Title), actionDelete+":"+b.ID.String()))
	}
	return append(options,
		huh.NewOption("Reload", actionReload),
		huh.NewOption("Quit", actionQuit),
	)
}

// parseAction splits a menu value into its action and book id.
func parseAction(value string) (string, BookID) {
	name, id, _ := strings.Cut(value, ":")
	return name, BookID(id)
}
