package draft

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRefusesSecondHolder(t *testing.T) {
	r := NewRegistry(Hooks[note]{})

	c, release, err := r.Acquire("acc:n1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, r.Busy("acc:n1"))

	_, _, err = r.Acquire("acc:n1")
	assert.ErrorIs(t, err, ErrSaveInFlight)

	other, releaseOther, err := r.Acquire("acc:n2")
	require.NoError(t, err)
	assert.NotSame(t, c, other)
	releaseOther()

	release()
	release()
	assert.False(t, r.Busy("acc:n1"))

	_, release, err = r.Acquire("acc:n1")
	require.NoError(t, err)
	release()
}

func TestStatusOf(t *testing.T) {
	validation := (&Rules{}).RequireText("name", "").Err()

	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusBadRequest, StatusOf(validation))
	assert.Equal(t, http.StatusBadRequest, StatusOf(fmt.Errorf("save: %w", validation)))
	assert.Equal(t, http.StatusConflict, StatusOf(ErrSaveInFlight))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("connection refused")))

	assert.Equal(t, []string{"name"}, MissingFields(validation))
	assert.Nil(t, MissingFields(ErrSaveInFlight))
}
