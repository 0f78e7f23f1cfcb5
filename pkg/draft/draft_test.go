package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID    string
	Title string
	Tags  []string
	Words int
}

type fakeStore struct {
	saved   []note
	modes   []Mode
	fail    error
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeStore) persist(_ context.Context, n *note, mode Mode) error {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	if s.fail != nil {
		return s.fail
	}
	if mode == Create {
		n.ID = "generated"
	}
	s.saved = append(s.saved, *n)
	s.modes = append(s.modes, mode)
	return nil
}

func newNotes(store *fakeStore) *Controller[note] {
	return NewController(Hooks[note]{
		Defaults: func() note { return note{Title: "untitled"} },
		Clone: func(n note) note {
			n.Tags = append([]string(nil), n.Tags...)
			return n
		},
		Validate: func(n note) error {
			var r Rules
			return r.RequireText("title", n.Title).Err()
		},
		Prepare: func(n *note) { n.Words = len(n.Tags) },
		Persist: store.persist,
	})
}

func TestNewStartsDraftingWithDefaults(t *testing.T) {
	c := newNotes(&fakeStore{})
	assert.Equal(t, Idle, c.State())

	c.New()

	d, ok := c.Draft()
	require.True(t, ok)
	assert.Equal(t, Drafting, c.State())
	assert.Equal(t, "untitled", d.Title)
}

func TestEditWorksOnCopy(t *testing.T) {
	c := newNotes(&fakeStore{})
	original := note{ID: "n1", Title: "a", Tags: []string{"x"}}

	c.Edit(original)
	require.NoError(t, c.Update(func(n *note) {
		n.Title = "b"
		n.Tags[0] = "changed"
	}))

	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "a", original.Title)
	assert.Equal(t, "x", original.Tags[0])
}

func TestSaveCreateReturnsToIdle(t *testing.T) {
	store := &fakeStore{}
	c := newNotes(store)
	c.New()
	require.NoError(t, c.Update(func(n *note) { n.Tags = []string{"p", "q"} }))

	saved, err := c.Save(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "generated", saved.ID)
	assert.Equal(t, 2, saved.Words)
	assert.Equal(t, []Mode{Create}, store.modes)
	assert.Equal(t, Idle, c.State())
	_, ok := c.Draft()
	assert.False(t, ok)
}

func TestSaveEditUsesUpdateMode(t *testing.T) {
	store := &fakeStore{}
	c := newNotes(store)
	c.Edit(note{ID: "n1", Title: "a"})

	saved, err := c.Save(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "n1", saved.ID)
	assert.Equal(t, []Mode{Update}, store.modes)
}

func TestValidationFailureKeepsDraft(t *testing.T) {
	store := &fakeStore{}
	c := newNotes(store)
	c.New()
	require.NoError(t, c.Update(func(n *note) {
		n.Title = "  "
		n.Tags = []string{"kept"}
	}))

	_, err := c.Save(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title"}, verr.Fields)
	assert.Equal(t, Drafting, c.State())
	d, ok := c.Draft()
	require.True(t, ok)
	assert.Equal(t, []string{"kept"}, d.Tags)
	assert.Empty(t, store.saved)
}

func TestPersistFailureReturnsToEditing(t *testing.T) {
	boom := errors.New("backend unavailable")
	c := newNotes(&fakeStore{fail: boom})
	c.Edit(note{ID: "n1", Title: "a"})

	_, err := c.Save(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Editing, c.State())
	d, ok := c.Draft()
	require.True(t, ok)
	assert.Equal(t, "a", d.Title)
}

func TestSaveWithoutDraft(t *testing.T) {
	c := newNotes(&fakeStore{})

	_, err := c.Save(context.Background())

	assert.ErrorIs(t, err, ErrNoDraft)
	assert.ErrorIs(t, c.Update(func(*note) {}), ErrNoDraft)
}

func TestSecondSaveWhileSavingIsRejected(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{})}
	c := newNotes(store)
	c.New()

	done := make(chan error, 1)
	go func() {
		_, err := c.Save(context.Background())
		done <- err
	}()
	<-store.entered

	assert.Equal(t, Saving, c.State())
	_, err := c.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)
	assert.ErrorIs(t, c.Update(func(*note) {}), ErrSaveInFlight)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, c.State())
	assert.Len(t, store.saved, 1)
}

func TestCancelDiscardsDraft(t *testing.T) {
	c := newNotes(&fakeStore{})
	c.Edit(note{ID: "n1", Title: "a"})

	c.Cancel()

	assert.Equal(t, Idle, c.State())
	_, ok := c.Draft()
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "saving", Saving.String())
	assert.Equal(t, "unknown", State(42).String())
}
