package draft

import "strings"

// Filter keeps the items where any display field contains query, ignoring case.
// An empty query keeps everything. items is never modified.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if q == "" || matches(fields(item), q) {
			out = append(out, item)
		}
	}
	return out
}

func matches(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Collection is an ordered set of entities keyed by id
type Collection[T any] struct {
	key   func(T) string
	items []T
	index map[string]int
}

func NewCollection[T any](key func(T) string, items ...T) *Collection[T] {
	c := &Collection[T]{key: key, index: make(map[string]int)}
	for _, item := range items {
		c.Put(item)
	}
	return c
}

// Put appends a new entity or replaces the one with the same id.
// It reports whether the entity was new.
func (c *Collection[T]) Put(item T) bool {
	k := c.key(item)
	if i, ok := c.index[k]; ok {
		c.items[i] = item
		return false
	}
	c.index[k] = len(c.items)
	c.items = append(c.items, item)
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	if i, ok := c.index[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

// List returns a copy of the entities in insertion order
func (c *Collection[T]) List() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Filter(query string, fields func(T) []string) []T {
	return Filter(c.items, query, fields)
}
