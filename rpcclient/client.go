// Package rpcclient implements the retry-classifying JSON-RPC client: each
// attempt against an endpoint is classified Ok, Retry or Critical, with
// per-endpoint retry budgets, jittered backoff and ordered failover across
// the configured endpoint list.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fermata-systems/near-client/config"
)

const apiKeyHeader = "x-api-key"

// Client sends JSON-RPC requests against an ordered endpoint list. Safe for
// concurrent use.
type Client struct {
	network   string
	endpoints []config.RPCEndpoint
	http      *http.Client
	log       *zap.Logger
	overrides ClassifierOverrides
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClassifierOverrides remaps individual server error causes, e.g. to
// make NO_GLOBAL_CONTRACT_CODE critical instead of the retryable default.
func WithClassifierOverrides(o ClassifierOverrides) Option {
	return func(c *Client) { c.overrides = o }
}

func New(cfg config.NetworkConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		network:   cfg.Name,
		endpoints: cfg.Endpoints,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("rpcclient").With(zap.String("network", cfg.Name))
	return c, nil
}

type requestEnvelope struct {
	ID      string `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type responseEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// call drives one logical RPC call through the failover state machine and
// unmarshals the result into out on success.
func (c *Client) call(ctx context.Context, family methodFamily, method string, params any, out any) error {
	start := time.Now()
	defer func() {
		promRPCLatency.WithLabelValues(c.network, method).Observe(time.Since(start).Seconds())
	}()

	var attemptErrs []error
	sawServerAnswer := false

	for i, endpoint := range c.endpoints {
		if i > 0 {
			promRPCFailovers.WithLabelValues(c.network, method).Inc()
		}
		done, answered, errs, terminal := c.tryEndpoint(ctx, endpoint, family, method, params, out)
		sawServerAnswer = sawServerAnswer || answered
		attemptErrs = append(attemptErrs, errs...)
		if done {
			return nil
		}
		if terminal != nil {
			return terminal
		}
		// Budget spent on this endpoint; move on with a fresh budget. The
		// failover attempt is not charged against the exhausted endpoint.
	}

	kind := KindExhausted
	if !sawServerAnswer {
		kind = KindUnreachable
	}
	return &CallError{Kind: kind, Method: method, Err: multierr.Combine(attemptErrs...)}
}

// tryEndpoint spends one endpoint's retry budget. done means the call
// succeeded; terminal is set for critical failures that must not fail over;
// otherwise the budget ran out on retryable failures collected in errs.
func (c *Client) tryEndpoint(ctx context.Context, endpoint config.RPCEndpoint, family methodFamily, method string, params, out any) (done, answered bool, errs []error, terminal *CallError) {
	boff := endpoint.Backoff()

	for attempt := 0; ; attempt++ {
		promRPCAttempts.WithLabelValues(c.network, endpoint.URL, method).Inc()
		decision, gotAnswer, err := c.attempt(ctx, endpoint, family, method, params, out)
		answered = answered || gotAnswer

		switch decision {
		case DecisionOk:
			return true, answered, errs, nil
		case DecisionCritical:
			promRPCCriticalErrors.WithLabelValues(c.network, endpoint.URL, method).Inc()
			c.log.Error("rpc attempt failed with critical error",
				zap.String("endpoint", endpoint.URL),
				zap.String("method", method),
				zap.Error(err))
			kind := KindUnreachable
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) {
				kind = KindRejected
			}
			return false, answered, errs, &CallError{Kind: kind, Method: method, Err: err}
		case DecisionRetry:
			promRPCRetries.WithLabelValues(c.network, endpoint.URL, method).Inc()
			errs = append(errs, errors.Wrapf(err, "endpoint %s attempt %d", endpoint.URL, attempt+1))
			if attempt >= endpoint.NumRetries {
				c.log.Warn("endpoint retry budget exhausted, failing over",
					zap.String("endpoint", endpoint.URL),
					zap.String("method", method),
					zap.Int("attempts", attempt+1))
				return false, answered, errs, nil
			}
			delay := boff.Duration()
			c.log.Debug("retrying rpc attempt",
				zap.String("endpoint", endpoint.URL),
				zap.String("method", method),
				zap.Duration("backoff", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				errs = append(errs, ctx.Err())
				return false, answered, errs, &CallError{Kind: KindUnreachable, Method: method, Err: multierr.Combine(errs...)}
			case <-time.After(delay):
			}
		}
	}
}

// attempt sends one request to one endpoint and classifies the outcome.
// answered reports whether an RPC server produced a JSON-RPC level answer.
func (c *Client) attempt(ctx context.Context, endpoint config.RPCEndpoint, family methodFamily, method string, params, out any) (RetryDecision, bool, error) {
	body, err := json.Marshal(requestEnvelope{
		ID:      uuid.NewString(),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return DecisionCritical, false, errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return DecisionCritical, false, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if endpoint.APIKey != "" {
		req.Header.Set(apiKeyHeader, endpoint.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return DecisionCritical, false, ctx.Err()
		}
		return DecisionRetry, false, errors.Wrapf(err, "sending request to %s", endpoint.URL)
	}
	defer resp.Body.Close()

	if d := classifyHTTPStatus(resp.StatusCode); d != DecisionOk {
		return d, false, &HTTPStatusError{StatusCode: resp.StatusCode, Endpoint: endpoint.URL}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return DecisionRetry, false, errors.Wrap(err, "reading response body")
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return DecisionRetry, false, errors.Wrapf(err, "malformed response from %s", endpoint.URL)
	}

	if envelope.Error != nil {
		decision := classifyServerError(family, envelope.Error.Cause.Name, c.overrides)
		return decision, true, envelope.Error
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return DecisionCritical, true, errors.Wrap(err, "decoding result")
		}
	}
	return DecisionOk, true, nil
}
