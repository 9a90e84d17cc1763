package signer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/transaction"
)

// Device is the narrow surface an external signing device must provide.
// Both calls involve device round trips and may block on user confirmation.
// Devices hold ed25519 keys; the secret never leaves the hardware.
type Device interface {
	GetPublicKey() (keys.PublicKey, error)
	// SignHash signs a 32-byte payload hash and returns the raw 64-byte
	// ed25519 signature.
	SignHash(hash []byte) ([]byte, error)
}

// DeviceSigner signs through an external hardware device. It holds only the
// public half of the key; ErrSecretKeyUnavailable is implicit in the shape
// of the type. Device I/O runs on a blocking worker.
type DeviceSigner struct {
	device    keys.PublicKey
	transport Device
}

var _ Signer = (*DeviceSigner)(nil)

// NewDeviceSigner fetches the device's public key once and caches it, so
// PublicKey never touches the device afterwards.
func NewDeviceSigner(ctx context.Context, transport Device) (*DeviceSigner, error) {
	pub, err := runBlocking(ctx, transport.GetPublicKey)
	if err != nil {
		return nil, errors.Wrapf(ErrPublicKeyUnavailable, "device unreachable: %v", err)
	}
	return &DeviceSigner{device: pub, transport: transport}, nil
}

func (s *DeviceSigner) PublicKey() (keys.PublicKey, error) {
	return s.device, nil
}

func (s *DeviceSigner) Sign(ctx context.Context, message []byte) (keys.Signature, error) {
	raw, err := runBlocking(ctx, func() ([]byte, error) {
		return s.transport.SignHash(message)
	})
	if err != nil {
		return keys.Signature{}, err
	}
	if len(raw) != 64 {
		return keys.Signature{}, errors.Wrapf(ErrSignatureMalformed, "device returned %d bytes, want 64", len(raw))
	}
	return keys.SignatureFromED25519([64]byte(raw)), nil
}

func (s *DeviceSigner) SignDelegate(ctx context.Context, action transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	return signDelegate(ctx, s, action)
}
