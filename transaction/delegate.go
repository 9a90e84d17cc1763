package transaction

import (
	"encoding/binary"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// ErrNestedDelegate is returned when a delegate action would wrap another
// delegate action. Delegation cannot be nested.
var ErrNestedDelegate = errors.New("delegate actions cannot contain another delegate action")

// delegateDiscriminant is the NEP-461 signable-message prefix for delegate
// actions: 2^30 + the NEP number (366).
const delegateDiscriminant uint32 = (1 << 30) + 366

// DelegateAction is the inner payload of a meta-transaction: the actions the
// sender authorizes a relayer to submit on its behalf, valid until
// MaxBlockHeight.
type DelegateAction struct {
	SenderID       types.AccountID
	ReceiverID     types.AccountID
	Actions        []Action
	Nonce          uint64
	MaxBlockHeight uint64
	PublicKey      keys.PublicKey
}

// NewDelegate validates and assembles a delegate action. Actions must not
// themselves be delegate actions.
func NewDelegate(sender, receiver types.AccountID, actions []Action, nonce, maxBlockHeight uint64, pub keys.PublicKey) (DelegateAction, error) {
	for _, a := range actions {
		if a.IsDelegate() {
			return DelegateAction{}, ErrNestedDelegate
		}
	}
	return DelegateAction{
		SenderID:       sender,
		ReceiverID:     receiver,
		Actions:        actions,
		Nonce:          nonce,
		MaxBlockHeight: maxBlockHeight,
		PublicKey:      pub,
	}, nil
}

// SigningPayload returns the NEP-461 discriminant-prefixed borsh encoding,
// the byte sequence whose sha256 is signed.
func (d *DelegateAction) SigningPayload() ([]byte, error) {
	for _, a := range d.Actions {
		if a.IsDelegate() {
			return nil, ErrNestedDelegate
		}
	}
	body, err := borsh.Serialize(*d)
	if err != nil {
		return nil, errors.Wrap(err, "serializing delegate action")
	}
	payload := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(payload, delegateDiscriminant)
	return append(payload, body...), nil
}

// SigningHash returns the sha256 of the signing payload.
func (d *DelegateAction) SigningHash() (types.CryptoHash, error) {
	payload, err := d.SigningPayload()
	if err != nil {
		return types.CryptoHash{}, err
	}
	return types.HashBytes(payload), nil
}

// SignedDelegateAction is a delegate action plus the sender's signature,
// ready for a relayer to wrap in a Delegate action and submit.
type SignedDelegateAction struct {
	DelegateAction DelegateAction
	Signature      keys.Signature
}

// Verify checks the signature against the delegate action's public key.
func (s *SignedDelegateAction) Verify() (bool, error) {
	hash, err := s.DelegateAction.SigningHash()
	if err != nil {
		return false, err
	}
	return s.Signature.Verify(hash[:], s.DelegateAction.PublicKey), nil
}
