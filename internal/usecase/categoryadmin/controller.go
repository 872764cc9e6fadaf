package categoryadmin

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcategory "example.com/storefront/internal/domain/category"
	domnotify "example.com/storefront/internal/domain/notify"
)

// Mode is the admin form state: the dialog is closed, creating a new
// category, or editing an existing one.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

var (
	ErrFormClosed      = errors.New("no category form is open")
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
)

// Form carries the dialog fields as the user typed them. DisplayOrder
// stays a string until submission so a failed submit preserves the raw
// input for retry.
type Form struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	DisplayOrder string `json:"display_order"`
}

// Controller drives the category admin dialog: a create/edit form state
// machine, an explicit delete-confirmation step, and a category list that
// is only ever mutated by refetching from the server.
type Controller struct {
	repo     domcategory.Repository
	notifier domnotify.Notifier
	validate *validator.Validate
	log      *zap.Logger

	mu            sync.Mutex
	mode          Mode
	editingID     string
	form          Form
	pendingDelete string
	categories    []domcategory.Category
}

func NewController(repo domcategory.Repository, notifier domnotify.Notifier, log *zap.Logger) *Controller {
	return &Controller{
		repo:     repo,
		notifier: notifier,
		validate: validator.New(),
		log:      log.Named("categoryadmin"),
		mode:     ModeIdle,
	}
}

// Refresh reloads the category list from the server. Unlike the
// storefront's ancillary list, a failure here is surfaced to the admin.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.repo.List(ctx)
	if err != nil {
		c.log.Error("category list refresh failed", zap.Error(err))
		c.notifier.Notify(domnotify.Notification{
			Title:       "Error",
			Description: "categories could not be loaded",
			Severity:    domnotify.SeverityDestructive,
		})
		return err
	}

	c.mu.Lock()
	c.categories = items
	c.mu.Unlock()
	return nil
}

// OpenCreate opens the dialog with a blank form.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeCreating
	c.editingID = ""
	c.form = Form{}
}

// OpenEdit opens the dialog pre-filled from an existing category.
func (c *Controller) OpenEdit(cat domcategory.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeEditing
	c.editingID = cat.ID
	c.form = Form{
		Name:         cat.Name,
		DisplayOrder: strconv.Itoa(cat.DisplayOrder),
	}
	if cat.Description != nil {
		c.form.Description = *cat.Description
	}
}

// BeginEdit fetches the category by id and opens the edit dialog for it.
func (c *Controller) BeginEdit(ctx context.Context, id string) error {
	cat, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.OpenEdit(*cat)
	return nil
}

// CloseForm abandons the dialog and clears the form.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Submit validates the form and performs the insert or update the current
// mode calls for. On success the dialog closes, the form resets and the
// list is refreshed. On failure the dialog stays open with the form
// intact so the user can retry without re-entering anything.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	c.mu.Lock()
	if c.mode == ModeIdle {
		c.mu.Unlock()
		return ErrFormClosed
	}
	c.form = form
	mode, editingID := c.mode, c.editingID
	c.mu.Unlock()

	if err := c.apply(ctx, mode, editingID, form); err != nil {
		return err
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	return nil
}

// SubmitEdit validates and applies an edit to one category in a single
// step. The target id stays local to the call instead of round-tripping
// through the shared dialog state, so concurrent edits cannot redirect
// each other; an open dialog is left untouched.
func (c *Controller) SubmitEdit(ctx context.Context, id string, form Form) error {
	if _, err := c.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return c.apply(ctx, ModeEditing, id, form)
}

func (c *Controller) apply(ctx context.Context, mode Mode, editingID string, form Form) error {
	// Rejected before any network round-trip.
	if err := c.validate.Struct(form); err != nil {
		return domcategory.ErrCategoryInvalidName
	}

	cat := &domcategory.Category{
		Name:         form.Name,
		Description:  normalizeDescription(form.Description),
		DisplayOrder: parseDisplayOrder(form.DisplayOrder),
	}

	var (
		opErr error
		title string
	)
	if mode == ModeEditing {
		cat.ID = editingID
		_, opErr = c.repo.Update(ctx, cat)
		title = "Category updated"
	} else {
		_, opErr = c.repo.Create(ctx, cat)
		title = "Category created"
	}

	if opErr != nil {
		c.notifier.Notify(domnotify.Notification{
			Title:       "Error",
			Description: opErr.Error(),
			Severity:    domnotify.SeverityDestructive,
		})
		return opErr
	}

	c.notifier.Notify(domnotify.Notification{Title: title, Severity: domnotify.SeverityNormal})
	_ = c.Refresh(ctx)
	return nil
}

// RequestDelete arms the confirmation step for one category. Nothing is
// sent to the gateway until ConfirmDelete.
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
}

// CancelDelete disarms a pending delete without any gateway call.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = ""
}

// PendingDelete reports which category, if any, awaits confirmation.
func (c *Controller) PendingDelete() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete
}

// ConfirmDelete performs the armed delete. On failure no local state
// changes: the category still appears in the list, since the list is only
// mutated by refreshing from the server.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pendingDelete
	c.pendingDelete = ""
	c.mu.Unlock()

	if id == "" {
		return ErrNoPendingDelete
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		c.notifier.Notify(domnotify.Notification{
			Title:       "Error",
			Description: err.Error(),
			Severity:    domnotify.SeverityDestructive,
		})
		return err
	}

	c.notifier.Notify(domnotify.Notification{Title: "Category deleted", Severity: domnotify.SeverityNormal})
	_ = c.Refresh(ctx)
	return nil
}

// Categories is a copy of the last refreshed list.
func (c *Controller) Categories() []domcategory.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domcategory.Category(nil), c.categories...)
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) FormValues() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) reset() {
	c.mode = ModeIdle
	c.editingID = ""
	c.form = Form{}
}

// normalizeDescription maps an empty submission to an absent value.
func normalizeDescription(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// parseDisplayOrder follows the form semantics: empty or unparsable input
// defaults to 0.
func parseDisplayOrder(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
