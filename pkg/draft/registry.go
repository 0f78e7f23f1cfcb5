package draft

import (
	"errors"
	"net/http"
	"sync"
)

// Registry gives each key (account + entity) at most one open controller, so a
// second request for the same entity is refused while the first is still saving.
type Registry[T any] struct {
	mu    sync.Mutex
	hooks Hooks[T]
	busy  map[string]*Controller[T]
}

func NewRegistry[T any](hooks Hooks[T]) *Registry[T] {
	return &Registry[T]{hooks: hooks, busy: make(map[string]*Controller[T])}
}

// Acquire returns a fresh controller for key and the func that frees the key.
// It fails with ErrSaveInFlight while another holder has not released it.
func (r *Registry[T]) Acquire(key string) (*Controller[T], func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.busy[key]; ok {
		return nil, nil, ErrSaveInFlight
	}
	c := NewController(r.hooks)
	r.busy[key] = c

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.busy[key] == c {
				delete(r.busy, key)
			}
		})
	}
	return c, release, nil
}

func (r *Registry[T]) Busy(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.busy[key]
	return ok
}

// StatusOf maps a Save error to the HTTP status handlers answer with
func StatusOf(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrSaveInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrNoDraft):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// MissingFields lists the fields of a validation failure, nil for other errors
func MissingFields(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
