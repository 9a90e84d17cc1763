package signer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/transaction"
	"github.com/fermata-systems/near-client/types"
)

// KeyringSigner signs with a secret key stored in the OS keychain. The
// secret is fetched per signature and never retained. Keychain access can
// block on an interactive unlock, so it runs on a blocking worker.
//
// The keychain service name is servicePrefix:network, scoped through the
// constructor rather than process-wide state so two clients with different
// prefixes never collide.
type KeyringSigner struct {
	service   string
	accountID types.AccountID
	publicKey keys.PublicKey
	hasKey    bool
}

var _ Signer = (*KeyringSigner)(nil)

func NewKeyringSigner(servicePrefix, network string, accountID types.AccountID, publicKey keys.PublicKey) *KeyringSigner {
	return &KeyringSigner{
		service:   fmt.Sprintf("%s:%s", servicePrefix, network),
		accountID: accountID,
		publicKey: publicKey,
		hasKey:    true,
	}
}

// StoreKey writes a secret key into the OS keychain where a KeyringSigner
// with the same prefix, network and account can find it.
func StoreKey(servicePrefix, network string, accountID types.AccountID, key keys.SecretKey) error {
	service := fmt.Sprintf("%s:%s", servicePrefix, network)
	user := keyringUser(accountID, key.PublicKey())
	if err := keyring.Set(service, user, key.String()); err != nil {
		return errors.Wrapf(err, "storing key for %s in keychain service %q", accountID, service)
	}
	return nil
}

func keyringUser(accountID types.AccountID, pub keys.PublicKey) string {
	return fmt.Sprintf("%s:%s", accountID, pub)
}

func (s *KeyringSigner) PublicKey() (keys.PublicKey, error) {
	if !s.hasKey {
		return keys.PublicKey{}, ErrPublicKeyUnavailable
	}
	return s.publicKey, nil
}

func (s *KeyringSigner) Sign(ctx context.Context, message []byte) (keys.Signature, error) {
	key, err := runBlocking(ctx, func() (keys.SecretKey, error) {
		raw, err := keyring.Get(s.service, keyringUser(s.accountID, s.publicKey))
		if err != nil {
			return keys.SecretKey{}, errors.Wrapf(ErrSecretKeyUnavailable, "keychain lookup for %s failed: %v", s.accountID, err)
		}
		return keys.ParseSecretKey(raw)
	})
	if err != nil {
		return keys.Signature{}, err
	}
	return key.Sign(message)
}

func (s *KeyringSigner) SignDelegate(ctx context.Context, action transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	return signDelegate(ctx, s, action)
}
