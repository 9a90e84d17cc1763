// Package signer defines the signing interface the execution pipeline works
// against and its backends: in-memory secret keys, seed-phrase derivation,
// the OS keychain, and external hardware devices, plus a round-robin pool of
// identities for nonce-parallel submission.
package signer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/transaction"
)

var (
	// ErrPublicKeyUnavailable means the signer has no key configured or the
	// backing store is unreachable.
	ErrPublicKeyUnavailable = errors.New("public key unavailable")
	// ErrSecretKeyUnavailable means the signer only knows the public half of
	// the key and cannot produce signatures locally.
	ErrSecretKeyUnavailable = errors.New("secret key unavailable")
	// ErrSignatureMalformed means a backing store returned signature bytes
	// that do not parse.
	ErrSignatureMalformed = errors.New("malformed signature from signing backend")
)

// Signer produces signatures for one identity. Implementations backed by
// hardware or the OS keychain may block on device or user interaction;
// Sign and SignDelegate take a context for that reason, PublicKey never
// performs I/O.
type Signer interface {
	// PublicKey returns the identity's public key without I/O.
	PublicKey() (keys.PublicKey, error)
	// Sign signs message, which for transactions is the 32-byte payload hash.
	Sign(ctx context.Context, message []byte) (keys.Signature, error)
	// SignDelegate stamps the signer's public key onto the delegate action
	// and signs its NEP-461 payload, producing a meta-transaction ready for
	// relaying.
	SignDelegate(ctx context.Context, action transaction.DelegateAction) (transaction.SignedDelegateAction, error)
}

// signDelegate is the shared SignDelegate implementation: every backend
// signs the same discriminant-prefixed payload.
func signDelegate(ctx context.Context, s Signer, action transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	action.PublicKey = pub
	hash, err := action.SigningHash()
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	sig, err := s.Sign(ctx, hash[:])
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	return transaction.SignedDelegateAction{DelegateAction: action, Signature: sig}, nil
}

// PanicError carries a panic recovered from a blocking signing worker so the
// caller sees a typed error instead of a process abort.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("signing worker panicked: %v", e.Value)
}

type blockingResult[T any] struct {
	value T
	err   error
}

// runBlocking executes fn on its own goroutine and waits for it or the
// context. Keychain and device backends use this so interactive unlocks and
// device round trips never run inline on a caller's scheduling thread. If
// the context ends first the worker is abandoned; fn may still complete in
// the background.
func runBlocking[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	out := make(chan blockingResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				out <- blockingResult[T]{zero, &PanicError{Value: r}}
			}
		}()
		v, err := fn()
		out <- blockingResult[T]{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-out:
		return res.value, res.err
	}
}
