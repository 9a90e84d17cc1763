package transaction

import (
	"encoding/base64"
	"sync"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// Transaction is the unsigned transaction in the exact field order of the
// borsh wire format. The signature is computed over the sha256 of this
// serialization.
type Transaction struct {
	SignerID   types.AccountID
	PublicKey  keys.PublicKey
	Nonce      uint64
	ReceiverID types.AccountID
	BlockHash  types.CryptoHash
	Actions    []Action
}

// Serialize returns the deterministic borsh encoding.
func (t *Transaction) Serialize() ([]byte, error) {
	data, err := borsh.Serialize(*t)
	if err != nil {
		return nil, errors.Wrap(err, "serializing transaction")
	}
	return data, nil
}

// Hash returns the sha256 of the borsh encoding. This is the transaction
// hash reported by the network.
func (t *Transaction) Hash() (types.CryptoHash, error) {
	data, err := t.Serialize()
	if err != nil {
		return types.CryptoHash{}, err
	}
	return types.HashBytes(data), nil
}

// SignedTransaction is a transaction plus its signature. Immutable after
// construction; the hash is computed once on demand and memoized.
type SignedTransaction struct {
	Transaction Transaction
	Signature   keys.Signature

	hashOnce sync.Once        `borsh_skip:"true"`
	hash     types.CryptoHash `borsh_skip:"true"`
	hashErr  error            `borsh_skip:"true"`
}

// NewSignedTransaction pairs a transaction with its signature. It does not
// verify the signature.
func NewSignedTransaction(tx Transaction, sig keys.Signature) *SignedTransaction {
	return &SignedTransaction{Transaction: tx, Signature: sig}
}

// Sign signs the transaction with the given secret key and returns the
// signed envelope. The key must match tx.PublicKey for the result to be
// accepted by the network.
func Sign(tx Transaction, key keys.SecretKey) (*SignedTransaction, error) {
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(hash[:])
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}
	return NewSignedTransaction(tx, sig), nil
}

// Hash returns the transaction hash (the hash of the unsigned transaction).
func (st *SignedTransaction) Hash() (types.CryptoHash, error) {
	st.hashOnce.Do(func() {
		st.hash, st.hashErr = st.Transaction.Hash()
	})
	return st.hash, st.hashErr
}

// Serialize returns the borsh encoding of the signed envelope.
func (st *SignedTransaction) Serialize() ([]byte, error) {
	data, err := borsh.Serialize(struct {
		Transaction Transaction
		Signature   keys.Signature
	}{st.Transaction, st.Signature})
	if err != nil {
		return nil, errors.Wrap(err, "serializing signed transaction")
	}
	return data, nil
}

// Base64 returns the broadcast wire form: standard base64 of the borsh
// encoding.
func (st *SignedTransaction) Base64() (string, error) {
	data, err := st.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Verify checks the signature against the transaction's own public key.
func (st *SignedTransaction) Verify() (bool, error) {
	hash, err := st.Hash()
	if err != nil {
		return false, err
	}
	return st.Signature.Verify(hash[:], st.Transaction.PublicKey), nil
}
