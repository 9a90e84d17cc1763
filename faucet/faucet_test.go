package faucet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermata-systems/near-client/keys"
)

func TestCreateAccount(t *testing.T) {
	key, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)

	var got createAccountRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err = New(srv.URL).CreateAccount(context.Background(), "fresh.testnet", key.PublicKey())
	require.NoError(t, err)
	assert.EqualValues(t, "fresh.testnet", got.NewAccountID)
	assert.Equal(t, key.PublicKey().String(), got.NewAccountPublicKey)
}

func TestCreateAccountSurfacesHTTPFailure(t *testing.T) {
	key, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "account already exists", http.StatusForbidden)
	}))
	defer srv.Close()

	err = New(srv.URL).CreateAccount(context.Background(), "taken.testnet", key.PublicKey())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "account already exists")
}

func TestCreateAccountUnreachable(t *testing.T) {
	key, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err = New(srv.URL).CreateAccount(context.Background(), "fresh.testnet", key.PublicKey())
	assert.Error(t, err)
}
