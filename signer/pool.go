package signer

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/transaction"
)

// Pool holds several signer identities for the same account, each with its
// own access key and therefore its own independent nonce counter. Rotating
// across them lets concurrent submissions avoid contending on one nonce.
//
// Selection is round-robin by call order: the first added identity is index
// 0 and each pick advances the cursor modulo pool size. The pool never
// checks chain state; callers must have added every key on-chain first.
//
// Reads of the member list are shared, membership changes and cursor
// advances are exclusive, so concurrent picks and AddSigner calls are safe.
type Pool struct {
	mu      sync.RWMutex
	signers []Signer
	cursor  int
}

var _ Signer = (*Pool)(nil)

func NewPool(signers ...Signer) (*Pool, error) {
	if len(signers) == 0 {
		return nil, errors.New("pool needs at least one signer")
	}
	return &Pool{signers: signers}, nil
}

// AddSigner registers another identity. Safe to call while other goroutines
// are picking signers.
func (p *Pool) AddSigner(s Signer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signers = append(p.signers, s)
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.signers)
}

// Pick returns the next identity in round-robin order.
func (p *Pool) Pick() Signer {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.signers[p.cursor%len(p.signers)]
	p.cursor = (p.cursor + 1) % len(p.signers)
	return s
}

// PublicKey returns the first identity's key. Use Pick when the pick and
// the signature must come from the same identity; the orchestrator does.
func (p *Pool) PublicKey() (keys.PublicKey, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.signers[0].PublicKey()
}

// Sign picks the next identity and signs with it.
func (p *Pool) Sign(ctx context.Context, message []byte) (keys.Signature, error) {
	return p.Pick().Sign(ctx, message)
}

// SignDelegate picks the next identity and signs with it.
func (p *Pool) SignDelegate(ctx context.Context, action transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	return p.Pick().SignDelegate(ctx, action)
}
