// Package draft implements the editor lifecycle shared by every entity:
// a single editable copy that is validated, persisted and then discarded.
//
//	Idle -> Drafting (New) | Editing (Edit)
//	Drafting/Editing -> Saving (Save, after validation)
//	Saving -> Idle (persisted) | Drafting/Editing (persist failed, draft kept)
//	any -> Idle (Cancel)
package draft

import (
	"context"
	"errors"
	"sync"
)

type State int

const (
	Idle State = iota
	Drafting
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drafting:
		return "drafting"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// Mode tells Persist whether the draft is a new entity or an edit of an existing one
type Mode int

const (
	Create Mode = iota
	Update
)

var (
	ErrNoDraft      = errors.New("no draft is open")
	ErrSaveInFlight = errors.New("a save is already in progress")
)

// Hooks binds the controller to one entity type
type Hooks[T any] struct {
	// Defaults builds the field values of a new entity.
	Defaults func() T
	// Clone deep-copies an entity. Plain value copy when nil.
	Clone func(T) T
	// Validate checks required fields before anything is persisted.
	Validate func(T) error
	// Prepare recomputes derived fields right before persisting. Optional.
	Prepare func(*T)
	// Persist writes the entity. It may fill in generated fields.
	Persist func(ctx context.Context, entity *T, mode Mode) error
}

type Controller[T any] struct {
	mu    sync.Mutex
	hooks Hooks[T]
	state State
	open  State // Drafting or Editing while a draft exists
	draft T
	gen   uint64
}

func NewController[T any](hooks Hooks[T]) *Controller[T] {
	return &Controller[T]{hooks: hooks}
}

func (c *Controller[T]) clone(v T) T {
	if c.hooks.Clone == nil {
		return v
	}
	return c.hooks.Clone(v)
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// New opens an empty draft with default values, discarding any previous one
func (c *Controller[T]) New() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var v T
	if c.hooks.Defaults != nil {
		v = c.hooks.Defaults()
	}
	c.reset(Drafting, v)
}

// Edit opens a draft holding a copy of entity; entity itself is never modified
func (c *Controller[T]) Edit(entity T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(Editing, c.clone(entity))
}

func (c *Controller[T]) reset(state State, v T) {
	c.gen++
	c.state = state
	c.open = state
	c.draft = v
}

// Draft returns a copy of the current draft
func (c *Controller[T]) Draft() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		var zero T
		return zero, false
	}
	return c.clone(c.draft), true
}

// Update applies fn to the open draft
func (c *Controller[T]) Update(fn func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		return ErrNoDraft
	case Saving:
		return ErrSaveInFlight
	}
	fn(&c.draft)
	return nil
}

// Save validates and persists the draft. On success the draft is discarded and
// the persisted entity returned. On any failure the draft stays open untouched.
func (c *Controller[T]) Save(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
		return zero, ErrNoDraft
	case Saving:
		c.mu.Unlock()
		return zero, ErrSaveInFlight
	}

	if c.hooks.Validate != nil {
		if err := c.hooks.Validate(c.draft); err != nil {
			c.mu.Unlock()
			return zero, err
		}
	}
	if c.hooks.Prepare != nil {
		c.hooks.Prepare(&c.draft)
	}

	mode := Create
	if c.open == Editing {
		mode = Update
	}
	work := c.clone(c.draft)
	gen := c.gen
	c.state = Saving
	c.mu.Unlock()

	err := c.hooks.Persist(ctx, &work, mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// cancelled or reopened while saving
		return work, err
	}
	if err != nil {
		c.state = c.open
		return zero, err
	}
	c.state = Idle
	c.draft = zero
	return work, nil
}

// Cancel discards the draft unconditionally
func (c *Controller[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.gen++
	c.state = Idle
	c.open = Idle
	c.draft = zero
}
