// Package client is the execution orchestrator: it resolves keys and
// nonces, signs transactions, submits them through the retry-classifying
// RPC client and classifies the outcome.
package client

import (
	"go.uber.org/zap"

	"github.com/fermata-systems/near-client/config"
	"github.com/fermata-systems/near-client/rpcclient"
	"github.com/fermata-systems/near-client/types"
)

// Client coordinates the transaction pipeline for one network. Constructed
// once at startup; safe for concurrent use.
type Client struct {
	cfg       config.NetworkConfig
	rpc       *rpcclient.Client
	nonces    *nonceCache
	log       *zap.Logger
	waitUntil types.TxExecutionStatus
}

type Option func(*options)

type options struct {
	log       *zap.Logger
	waitUntil types.TxExecutionStatus
	rpcOpts   []rpcclient.Option
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithWaitUntil sets the execution level submissions wait for before
// returning. Defaults to EXECUTED_OPTIMISTIC.
func WithWaitUntil(w types.TxExecutionStatus) Option {
	return func(o *options) { o.waitUntil = w }
}

// WithRPCOptions forwards options to the underlying RPC client.
func WithRPCOptions(rpcOpts ...rpcclient.Option) Option {
	return func(o *options) { o.rpcOpts = append(o.rpcOpts, rpcOpts...) }
}

func New(cfg config.NetworkConfig, opts ...Option) (*Client, error) {
	o := &options{
		log:       zap.NewNop(),
		waitUntil: types.TxExecutionExecutedOptimistic,
	}
	for _, opt := range opts {
		opt(o)
	}

	rpc, err := rpcclient.New(cfg, append([]rpcclient.Option{rpcclient.WithLogger(o.log)}, o.rpcOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:       cfg,
		rpc:       rpc,
		nonces:    newNonceCache(),
		log:       o.log.Named("client").With(zap.String("network", cfg.Name)),
		waitUntil: o.waitUntil,
	}, nil
}

// RPC exposes the underlying RPC client for direct queries.
func (c *Client) RPC() *rpcclient.Client {
	return c.rpc
}

// NetworkConfig returns the network the client was built for.
func (c *Client) NetworkConfig() config.NetworkConfig {
	return c.cfg
}
