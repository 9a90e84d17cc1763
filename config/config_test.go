package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRPCEndpointDefaults(t *testing.T) {
	e := NewRPCEndpoint("https://rpc.example.org")
	assert.Equal(t, DefaultNumRetries, e.NumRetries)
	assert.Equal(t, DefaultBackoffMin, e.BackoffMin)
	assert.Equal(t, DefaultBackoffMax, e.BackoffMax)
	assert.Empty(t, e.APIKey)
}

func TestEndpointWithOptionsCopies(t *testing.T) {
	base := NewRPCEndpoint("https://rpc.example.org")
	keyed := base.WithAPIKey("sekrit").WithRetries(2)

	assert.Equal(t, "sekrit", keyed.APIKey)
	assert.Equal(t, 2, keyed.NumRetries)
	assert.Empty(t, base.APIKey, "the original endpoint is untouched")
	assert.Equal(t, DefaultNumRetries, base.NumRetries)
}

func TestBackoffBounds(t *testing.T) {
	e := RPCEndpoint{
		URL:        "https://rpc.example.org",
		BackoffMin: 10 * time.Millisecond,
		BackoffMax: 80 * time.Millisecond,
	}
	boff := e.Backoff()
	for i := 0; i < 20; i++ {
		d := boff.Duration()
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}

	// each call gets an independent backoff sequence
	assert.NotSame(t, boff, e.Backoff())
}

func TestWellKnownNetworks(t *testing.T) {
	mainnet := Mainnet()
	require.NoError(t, mainnet.Validate())
	assert.Equal(t, "mainnet", mainnet.Name)
	assert.EqualValues(t, "near", mainnet.LinkdropAccountID)

	testnet := Testnet()
	require.NoError(t, testnet.Validate())
	assert.EqualValues(t, "testnet", testnet.LinkdropAccountID)
	assert.NotEmpty(t, testnet.FaucetURL)
}

func TestWithEndpointsAppendsBackups(t *testing.T) {
	base := Testnet()
	extended := base.WithEndpoints(NewRPCEndpoint("https://backup.example.org"))

	require.Len(t, extended.Endpoints, 2)
	assert.Equal(t, base.Endpoints[0].URL, extended.Endpoints[0].URL, "primary stays first")
	assert.Equal(t, "https://backup.example.org", extended.Endpoints[1].URL)
	assert.Len(t, base.Endpoints, 1, "the original config is untouched")
}

func TestValidate(t *testing.T) {
	assert.Error(t, NetworkConfig{}.Validate())
	assert.Error(t, NetworkConfig{Name: "x"}.Validate())
	assert.Error(t, NetworkConfig{
		Name:      "x",
		Endpoints: []RPCEndpoint{{URL: ""}},
	}.Validate())
	assert.Error(t, NetworkConfig{
		Name:      "x",
		Endpoints: []RPCEndpoint{{URL: "https://rpc.example.org", NumRetries: -1}},
	}.Validate())
	assert.NoError(t, FromURL("sandbox", "http://localhost:3030").Validate())
}
