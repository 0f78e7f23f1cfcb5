package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := From(c)
	assert.False(t, ok)

	s := Session{AccountID: uuid.New(), Email: "ateliê@exemplo.com"}
	Set(c, s)

	got, ok := From(c)
	require.True(t, ok)
	assert.Equal(t, s, got)
	assert.Equal(t, s, Current(c))
}

func TestFromRejectsEmptyAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	Set(c, Session{Email: "x@y.z"})

	_, ok := From(c)
	assert.False(t, ok)
}

func TestHubDeliversInOrderUntilUnsubscribed(t *testing.T) {
	h := NewHub()
	var got []string

	unsubA := h.Subscribe(func(e Event) { got = append(got, "a:"+string(e.Kind)) })
	h.Subscribe(func(e Event) { got = append(got, "b:"+string(e.Kind)) })
	require.Equal(t, 2, h.Len())

	h.Publish(Event{Kind: SignedIn})
	unsubA()
	unsubA()
	h.Publish(Event{Kind: SignedOut})

	assert.Equal(t, []string{"a:sign_in", "b:sign_in", "b:sign_out"}, got)
	assert.Equal(t, 1, h.Len())
}

func TestHubSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	h := NewHub()
	calls := 0
	var unsub func()
	unsub = h.Subscribe(func(Event) {
		calls++
		unsub()
	})

	h.Publish(Event{Kind: SignedUp})
	h.Publish(Event{Kind: SignedUp})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, h.Len())
}
