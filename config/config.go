// Package config holds the network-level configuration: the ordered RPC
// endpoint list with per-endpoint retry policy, plus network metadata used
// by account creation.
package config

import (
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/types"
)

const (
	DefaultNumRetries = 5
	DefaultBackoffMin = 500 * time.Millisecond
	DefaultBackoffMax = 10 * time.Second
)

// RPCEndpoint is one RPC server plus its retry budget and backoff bounds.
type RPCEndpoint struct {
	URL string
	// APIKey, when set, is sent as the x-api-key header.
	APIKey string
	// NumRetries is how many times a Retry-classified failure is re-sent to
	// this endpoint before failing over to the next one.
	NumRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// NewRPCEndpoint returns an endpoint with the default retry policy.
func NewRPCEndpoint(url string) RPCEndpoint {
	return RPCEndpoint{
		URL:        url,
		NumRetries: DefaultNumRetries,
		BackoffMin: DefaultBackoffMin,
		BackoffMax: DefaultBackoffMax,
	}
}

// WithAPIKey returns a copy carrying the API key header value.
func (e RPCEndpoint) WithAPIKey(key string) RPCEndpoint {
	e.APIKey = key
	return e
}

// WithRetries returns a copy with the retry budget.
func (e RPCEndpoint) WithRetries(n int) RPCEndpoint {
	e.NumRetries = n
	return e
}

// Backoff returns a fresh jittered exponential backoff for one call against
// this endpoint. Delays are non-decreasing in expectation and capped at
// BackoffMax.
func (e RPCEndpoint) Backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    e.BackoffMin,
		Max:    e.BackoffMax,
		Jitter: true,
	}
}

// NetworkConfig describes one network: the ordered endpoint list (primary
// first) and the metadata account creation needs. Read-only after
// construction.
type NetworkConfig struct {
	Name              string
	Endpoints         []RPCEndpoint
	LinkdropAccountID types.AccountID
	FaucetURL         string
}

// Mainnet is the well-known production network.
func Mainnet() NetworkConfig {
	return NetworkConfig{
		Name: "mainnet",
		Endpoints: []RPCEndpoint{
			NewRPCEndpoint("https://rpc.mainnet.near.org"),
		},
		LinkdropAccountID: "near",
	}
}

// Testnet is the well-known public test network.
func Testnet() NetworkConfig {
	return NetworkConfig{
		Name: "testnet",
		Endpoints: []RPCEndpoint{
			NewRPCEndpoint("https://rpc.testnet.near.org"),
		},
		LinkdropAccountID: "testnet",
		FaucetURL:         "https://helper.nearprotocol.com/account",
	}
}

// FromURL configures a private or sandbox deployment from a single RPC URL.
func FromURL(name, url string) NetworkConfig {
	return NetworkConfig{
		Name:      name,
		Endpoints: []RPCEndpoint{NewRPCEndpoint(url)},
	}
}

// WithEndpoints returns a copy with additional backup endpoints appended.
func (c NetworkConfig) WithEndpoints(endpoints ...RPCEndpoint) NetworkConfig {
	combined := make([]RPCEndpoint, 0, len(c.Endpoints)+len(endpoints))
	combined = append(combined, c.Endpoints...)
	combined = append(combined, endpoints...)
	c.Endpoints = combined
	return c
}

func (c NetworkConfig) Validate() error {
	if c.Name == "" {
		return errors.New("network config: empty name")
	}
	if len(c.Endpoints) == 0 {
		return errors.New("network config: no endpoints")
	}
	for _, e := range c.Endpoints {
		if e.URL == "" {
			return errors.New("network config: endpoint with empty URL")
		}
		if e.NumRetries < 0 {
			return errors.Errorf("network config: endpoint %s: negative retry count", e.URL)
		}
	}
	return nil
}
