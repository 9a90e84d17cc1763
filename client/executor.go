package client

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fermata-systems/near-client/rpcclient"
	"github.com/fermata-systems/near-client/signer"
	"github.com/fermata-systems/near-client/transaction"
	"github.com/fermata-systems/near-client/types"
)

// SignAndSend runs the full pipeline for one transaction: pick the signer
// identity, resolve its nonce and a recent block hash, validate, sign,
// submit and classify.
//
// Passing a signer.Pool rotates identities per call; with a single-key
// signer, concurrent calls stay nonce-safe through the cache's atomic
// increment, but the chain may accept them in any order.
//
// On a deterministic invalid-nonce rejection the cached nonce is refreshed
// from chain and the submission retried exactly once.
func (c *Client) SignAndSend(ctx context.Context, tx transaction.PrepopulatedTransaction, s signer.Signer) (*Outcome, error) {
	if pool, ok := s.(*signer.Pool); ok {
		s = pool.Pick()
	}

	outcome, err := c.signAndSendOnce(ctx, tx, s)
	if err != nil && isInvalidNonce(err) {
		pub, pubErr := s.PublicKey()
		if pubErr != nil {
			return nil, err
		}
		c.log.Warn("nonce rejected by network, refreshing cache and retrying once",
			zap.String("signer", tx.SignerID.String()),
			zap.String("publicKey", pub.String()))
		c.nonces.invalidate(tx.SignerID, pub)
		return c.signAndSendOnce(ctx, tx, s)
	}
	return outcome, err
}

func (c *Client) signAndSendOnce(ctx context.Context, tx transaction.PrepopulatedTransaction, s signer.Signer) (*Outcome, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return nil, err
	}

	if err := validateTransaction(tx, c.cfg.LinkdropAccountID); err != nil {
		return nil, err
	}

	nonce, err := c.nonces.next(ctx, c.rpc, tx.SignerID, pub)
	if err != nil {
		return nil, err
	}

	block, err := c.rpc.Block(ctx, rpcclient.BlockAtFinality(types.FinalityFinal))
	if err != nil {
		return nil, errors.Wrap(err, "fetching recent block hash")
	}

	unsigned := transaction.Transaction{
		SignerID:   tx.SignerID,
		PublicKey:  pub,
		Nonce:      nonce,
		ReceiverID: tx.ReceiverID,
		BlockHash:  block.Header.Hash,
		Actions:    tx.Actions,
	}
	hash, err := unsigned.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := s.Sign(ctx, hash[:])
	if err != nil {
		return nil, err
	}

	return c.SendSigned(ctx, transaction.NewSignedTransaction(unsigned, sig))
}

// SendSigned submits an already-signed transaction (including ones signed
// offline or by another process) through the retry path.
func (c *Client) SendSigned(ctx context.Context, signed *transaction.SignedTransaction) (*Outcome, error) {
	encoded, err := signed.Base64()
	if err != nil {
		return nil, err
	}
	hash, err := signed.Hash()
	if err != nil {
		return nil, err
	}

	c.log.Debug("broadcasting transaction",
		zap.String("hash", hash.String()),
		zap.String("signer", signed.Transaction.SignerID.String()),
		zap.String("receiver", signed.Transaction.ReceiverID.String()),
		zap.Uint64("nonce", signed.Transaction.Nonce))

	raw, err := c.rpc.SendTransaction(ctx, encoded, c.waitUntil)
	if err != nil {
		return nil, err
	}
	return newOutcome(raw, hash, signed.Transaction.PublicKey), nil
}

// SendAll dispatches every transaction concurrently against the signer and
// collects the outcomes in input order. With a pooled signer the load
// spreads round-robin across its keys; with a single key, all submissions
// contend on one nonce sequence and the chain may accept them in any order.
func (c *Client) SendAll(ctx context.Context, txs []transaction.PrepopulatedTransaction, s signer.Signer) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(txs))
	errs := make([]error, len(txs))

	var wg sync.WaitGroup
	for i, tx := range txs {
		wg.Add(1)
		go func(i int, tx transaction.PrepopulatedTransaction) {
			defer wg.Done()
			outcomes[i], errs[i] = c.SignAndSend(ctx, tx, s)
		}(i, tx)
	}
	wg.Wait()

	return outcomes, multierr.Combine(errs...)
}

// SignDelegate prepares a meta-transaction: the signer authorizes the
// actions and a relayer later wraps the result in a Delegate action and
// pays for its submission.
func (c *Client) SignDelegate(ctx context.Context, tx transaction.PrepopulatedTransaction, s signer.Signer, maxBlockHeight uint64) (transaction.SignedDelegateAction, error) {
	if pool, ok := s.(*signer.Pool); ok {
		s = pool.Pick()
	}
	pub, err := s.PublicKey()
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	nonce, err := c.nonces.next(ctx, c.rpc, tx.SignerID, pub)
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	action, err := transaction.NewDelegate(tx.SignerID, tx.ReceiverID, tx.Actions, nonce, maxBlockHeight, pub)
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	return s.SignDelegate(ctx, action)
}

// isInvalidNonce detects the deterministic invalid-nonce rejection in a
// terminal RPC error.
func isInvalidNonce(err error) bool {
	var rpcErr *rpcclient.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	if bytes.Contains(rpcErr.Cause.Info, []byte("InvalidNonce")) {
		return true
	}
	return bytes.Contains(rpcErr.Data, []byte("InvalidNonce"))
}
