package signer

import (
	"context"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/transaction"
)

// SecretKeySigner signs with an in-memory secret key. No I/O.
type SecretKeySigner struct {
	key keys.SecretKey
}

var _ Signer = (*SecretKeySigner)(nil)

func NewSecretKeySigner(key keys.SecretKey) *SecretKeySigner {
	return &SecretKeySigner{key: key}
}

// FromSecretKeyString builds a signer from the "<curve>:<base58>" secret key
// form.
func FromSecretKeyString(s string) (*SecretKeySigner, error) {
	key, err := keys.ParseSecretKey(s)
	if err != nil {
		return nil, err
	}
	return NewSecretKeySigner(key), nil
}

func (s *SecretKeySigner) PublicKey() (keys.PublicKey, error) {
	return s.key.PublicKey(), nil
}

func (s *SecretKeySigner) Sign(_ context.Context, message []byte) (keys.Signature, error) {
	return s.key.Sign(message)
}

func (s *SecretKeySigner) SignDelegate(ctx context.Context, action transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	return signDelegate(ctx, s, action)
}
