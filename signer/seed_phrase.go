package signer

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/fermata-systems/near-client/keys"
)

const hardenedOffset = 0x80000000

// DefaultDerivationPath is the chain's registered coin type under BIP-44.
var DefaultDerivationPath = []uint32{44, 397, 0}

// NewSeedPhraseSigner derives an ed25519 key from a BIP-39 mnemonic via
// SLIP-0010 on the default path and wraps it in a SecretKeySigner.
func NewSeedPhraseSigner(mnemonic, passphrase string) (*SecretKeySigner, error) {
	return NewSeedPhraseSignerWithPath(mnemonic, passphrase, DefaultDerivationPath)
}

// NewSeedPhraseSignerWithPath derives on a custom path. All indices are
// hardened, as SLIP-0010 requires for ed25519.
func NewSeedPhraseSignerWithPath(mnemonic, passphrase string, path []uint32) (*SecretKeySigner, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid BIP-39 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	keySeed := deriveSLIP10(seed, path)
	return NewSecretKeySigner(keys.SecretKeyFromSeed(keySeed)), nil
}

// deriveSLIP10 walks the SLIP-0010 ed25519 derivation tree from the master
// seed, hardening every index.
func deriveSLIP10(seed []byte, path []uint32) [32]byte {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	digest := mac.Sum(nil)
	key, chainCode := digest[:32], digest[32:]

	for _, index := range path {
		var data [37]byte
		copy(data[1:33], key)
		binary.BigEndian.PutUint32(data[33:], index|hardenedOffset)
		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data[:])
		digest = mac.Sum(nil)
		key, chainCode = digest[:32], digest[32:]
	}
	return [32]byte(key)
}
