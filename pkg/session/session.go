// Package session carries the signed-in account through request handling and
// fans out sign-in/sign-out notifications to whoever subscribed.
package session

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "session"

// Session identifies the account a request acts for
type Session struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

func (s Session) Valid() bool {
	return s.AccountID != uuid.Nil
}

// Set attaches the session to the request context
func Set(c *gin.Context, s Session) {
	c.Set(contextKey, s)
}

// From returns the session attached by the auth middleware
func From(c *gin.Context) (Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok && s.Valid()
}

// Current is From without the ok flag, for routes already behind the auth middleware
func Current(c *gin.Context) Session {
	s, _ := From(c)
	return s
}

type EventKind string

const (
	SignedUp       EventKind = "sign_up"
	SignedIn       EventKind = "sign_in"
	SignedOut      EventKind = "sign_out"
	TokenRefreshed EventKind = "token_refreshed"
)

type Event struct {
	Kind      EventKind
	Session   Session
	IPAddress string
}

// Hub delivers session events to subscribers synchronously, in subscription order
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
