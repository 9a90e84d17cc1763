// Package faucet is the thin HTTP client for the account-creation faucet
// service. It is not an RPC endpoint and does not go through retry
// classification.
package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

type Client struct {
	url  string
	http *http.Client
}

func New(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type createAccountRequest struct {
	NewAccountID        types.AccountID `json:"newAccountId"`
	NewAccountPublicKey string          `json:"newAccountPublicKey"`
}

// CreateAccount asks the faucet to create and fund newAccountID with
// publicKey as its full-access key.
func (c *Client) CreateAccount(ctx context.Context, newAccountID types.AccountID, publicKey keys.PublicKey) error {
	body, err := json.Marshal(createAccountRequest{
		NewAccountID:        newAccountID,
		NewAccountPublicKey: publicKey.String(),
	})
	if err != nil {
		return errors.Wrap(err, "encoding faucet request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building faucet request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling faucet %s", c.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("faucet %s returned HTTP %d: %s", c.url, resp.StatusCode, payload)
	}
	return nil
}
