package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOrderReceipt(t *testing.T) {
	var got sendEmailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewEmailService("key", "loja@exemplo.com")
	s.endpoint = srv.URL

	err := s.SendOrderReceipt(context.Background(), "ana@exemplo.com", "Meu Ateliê de Laços", "PED-20261017-0001", "<p>ok</p>", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, []string{"ana@exemplo.com"}, got.To)
	assert.Equal(t, "Meu Ateliê de Laços - Pedido PED-20261017-0001", got.Subject)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "pedido-PED-20261017-0001.pdf", got.Attachments[0].Filename)
	assert.Equal(t, []byte("%PDF"), got.Attachments[0].Content)
}

func TestSendFailsOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewEmailService("key", "loja@exemplo.com")
	s.endpoint = srv.URL

	err := s.SendEmail(context.Background(), "ana@exemplo.com", "oi", "<p/>")
	assert.ErrorContains(t, err, "422")
}

func TestUnconfigured(t *testing.T) {
	s := NewEmailService("", "")
	assert.False(t, s.IsConfigured())
	assert.ErrorIs(t, s.SendEmail(context.Background(), "a@b.c", "x", "y"), ErrNotConfigured)
}
