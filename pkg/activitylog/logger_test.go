package activitylog

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryEncodesDetails(t *testing.T) {
	account := uuid.New()
	id := uuid.New()

	entry := Entry(account, "toggle", "order", &id, map[string]string{"from": "pendente", "to": "recebido"}, "10.0.0.1")

	assert.Equal(t, account, entry.AccountID)
	assert.Equal(t, "toggle", entry.Action)
	assert.Equal(t, "order", entry.EntityType)
	require.NotNil(t, entry.EntityID)
	assert.Equal(t, id, *entry.EntityID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)

	var details map[string]string
	require.NoError(t, json.Unmarshal([]byte(entry.Details), &details))
	assert.Equal(t, "recebido", details["to"])
}

func TestEntryWithoutDetails(t *testing.T) {
	entry := Entry(uuid.New(), "sign_out", "session", nil, nil, "")
	assert.Empty(t, entry.Details)
	assert.Nil(t, entry.EntityID)
}
