// Package view holds the session state of the UI: which child is open,
// whether edit mode is on, the pending deletion and the numeric pad. Every
// front end drives the store through a Controller and renders from its
// Snapshot.
package view

import (
	"context"
	"errors"
	"sync"

	"punti/internal/core"
	"punti/internal/editor"
	"punti/internal/log"
)

// Store is the subset of *state.Store the controller drives.
type Store interface {
	editor.Applier
	Children() []core.Child
	Child(id core.ChildID) (core.Child, bool)
	AddChild(ctx context.Context, name, color string) (core.Child, error)
	DeleteChild(ctx context.Context, id core.ChildID) error
	MoveChild(ctx context.Context, id core.ChildID, dir core.Direction) error
}

// Open is either no child (the zero value) or exactly one open child.
type Open struct {
	id   core.ChildID
	open bool
}

// Opened returns the variant for an open child.
func Opened(id core.ChildID) Open { return Open{id: id, open: true} }

func (o Open) ID() (core.ChildID, bool) { return o.id, o.open }

func (o Open) IsOpen() bool { return o.open }

type Controller struct {
	mu sync.Mutex

	store        Store
	editor       *editor.Editor
	logger       *log.Logger
	defaultColor string

	open          Open
	editMode      bool
	pendingDelete *core.ChildID
}

type Option func(*Controller)

func WithMaxDigits(n int) Option {
	return func(c *Controller) { c.editor = editor.New(n) }
}

func WithDefaultColor(color string) Option {
	return func(c *Controller) {
		if color != "" {
			c.defaultColor = color
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentView)
		}
	}
}

func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		editor:       editor.New(core.DefaultMaxDigits),
		logger:       log.FromSlog(nil, log.ComponentView),
		defaultColor: core.DefaultColor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ToggleEditMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = !c.editMode
}

func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

func (c *Controller) Open() Open {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcile()
	return c.open
}

// AddChild adds a child. An empty color selects the configured default.
func (c *Controller) AddChild(ctx context.Context, name, color string) (core.Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if color == "" {
		color = c.defaultColor
	}
	return c.store.AddChild(ctx, name, color)
}

func (c *Controller) MoveChild(ctx context.Context, id core.ChildID, dir core.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.MoveChild(ctx, id, dir)
}

// RequestDelete stages id for deletion, replacing any earlier request.
// Unknown ids are ignored.
func (c *Controller) RequestDelete(id core.ChildID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Child(id); !ok {
		return false
	}
	c.pendingDelete = &id
	return true
}

// ConfirmDelete removes the staged child. Without a staged request it does
// nothing.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return nil
	}
	id := *c.pendingDelete
	c.pendingDelete = nil

	err := c.store.DeleteChild(ctx, id)
	c.reconcile()
	return err
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// PendingDelete returns the child staged for deletion, if any.
func (c *Controller) PendingDelete() (core.ChildID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return 0, false
	}
	return *c.pendingDelete, true
}

// OpenChild shows the pad for id. It is ignored in edit mode and for
// unknown ids.
func (c *Controller) OpenChild(id core.ChildID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editMode {
		return false
	}
	if _, ok := c.store.Child(id); !ok {
		return false
	}
	c.editor.Reset()
	c.open = Opened(id)
	return true
}

func (c *Controller) CloseChild() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

func (c *Controller) Digit(d byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.padActive() {
		return false
	}
	return c.editor.AppendDigit(d)
}

func (c *Controller) Backspace() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.padActive() {
		c.editor.Backspace()
	}
}

func (c *Controller) ClearEntry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.padActive() {
		c.editor.Clear()
	}
}

func (c *Controller) Stage(kind core.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.padActive() {
		return false
	}
	return c.editor.Stage(kind)
}

// ConfirmTransaction applies the staged transaction to the open child.
// applied is false when nothing was staged or no child is open.
func (c *Controller) ConfirmTransaction(ctx context.Context) (child core.Child, applied bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.padActive() {
		return core.Child{}, false, nil
	}
	id, _ := c.open.ID()

	child, applied, err = c.editor.Confirm(ctx, c.store, id)
	if errors.Is(err, core.ErrNotFound) {
		c.logger.WarnContext(ctx, "Open child vanished before confirm", log.FieldChildID, int64(id))
		c.close()
		return core.Child{}, false, err
	}
	return child, applied, err
}

func (c *Controller) CancelTransaction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.padActive() {
		c.editor.Cancel()
	}
}

// padActive reports whether a child is open, closing the view first if
// that child no longer exists. Callers hold c.mu.
func (c *Controller) padActive() bool {
	c.reconcile()
	return c.open.IsOpen()
}

func (c *Controller) reconcile() {
	id, ok := c.open.ID()
	if !ok {
		return
	}
	if _, exists := c.store.Child(id); !exists {
		c.close()
	}
}

func (c *Controller) close() {
	c.editor.Reset()
	c.open = Open{}
}
