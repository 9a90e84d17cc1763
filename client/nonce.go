package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/rpcclient"
	"github.com/fermata-systems/near-client/types"
)

// nonceCache tracks the last known nonce per (account, public key). The
// network requires every transaction's nonce to be strictly greater than
// the key's last accepted one, so concurrent submissions through the same
// key must never be handed the same value: the increment is a single locked
// read-modify-write per entry.
//
// Entries live for the process; there is no eviction.
type nonceCache struct {
	mu      sync.Mutex
	entries map[nonceKey]*nonceEntry
}

type nonceKey struct {
	accountID types.AccountID
	publicKey string
}

type nonceEntry struct {
	mu        sync.Mutex
	lastKnown uint64
	filled    bool
}

func newNonceCache() *nonceCache {
	return &nonceCache{entries: make(map[nonceKey]*nonceEntry)}
}

func (c *nonceCache) entry(accountID types.AccountID, pub keys.PublicKey) *nonceEntry {
	key := nonceKey{accountID: accountID, publicKey: pub.String()}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &nonceEntry{}
		c.entries[key] = e
	}
	return e
}

// next returns the nonce to use for the key's next transaction. On first
// use it fetches the key's current on-chain nonce; afterwards it increments
// the cached value. The per-entry lock spans the fetch so a burst of first
// calls performs one query, not many.
func (c *nonceCache) next(ctx context.Context, rpc *rpcclient.Client, accountID types.AccountID, pub keys.PublicKey) (uint64, error) {
	e := c.entry(accountID, pub)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.filled {
		view, err := rpc.ViewAccessKey(ctx, accountID, pub, types.FinalityOptimistic)
		if err != nil {
			return 0, errors.Wrapf(err, "resolving nonce for %s %s", accountID, pub)
		}
		e.lastKnown = view.Nonce
		e.filled = true
	}

	e.lastKnown++
	return e.lastKnown, nil
}

// invalidate drops the cached value so the next call re-fetches from chain.
// Used after a deterministic invalid-nonce rejection, which means the cache
// and the chain disagree (typically another process used the same key).
func (c *nonceCache) invalidate(accountID types.AccountID, pub keys.PublicKey) {
	e := c.entry(accountID, pub)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filled = false
}
