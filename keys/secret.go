package keys

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// SecretKey holds in-memory signing key material for one of the two
// supported curves. Immutable once created.
type SecretKey struct {
	keyType KeyType
	ed      ed25519.PrivateKey
	secp    *secp256k1.PrivateKey
}

// GenerateSecretKey creates a fresh random key on the given curve.
func GenerateSecretKey(keyType KeyType) (SecretKey, error) {
	switch keyType {
	case KeyTypeED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return SecretKey{}, errors.Wrap(err, "generating ed25519 key")
		}
		return SecretKey{keyType: keyType, ed: priv}, nil
	case KeyTypeSECP256K1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return SecretKey{}, errors.Wrap(err, "generating secp256k1 key")
		}
		return SecretKey{keyType: keyType, secp: priv}, nil
	default:
		return SecretKey{}, errors.Errorf("unknown key type %d", keyType)
	}
}

// SecretKeyFromSeed deterministically derives an ed25519 secret key from a
// 32-byte seed.
func SecretKeyFromSeed(seed [32]byte) SecretKey {
	return SecretKey{keyType: KeyTypeED25519, ed: ed25519.NewKeyFromSeed(seed[:])}
}

// ParseSecretKey parses the "<curve>:<base58 data>" string form. The ed25519
// payload is the 64-byte expanded key (seed followed by public key); the
// secp256k1 payload is the 32-byte scalar.
func ParseSecretKey(s string) (SecretKey, error) {
	keyType, raw, err := splitKeyString(s)
	if err != nil {
		return SecretKey{}, err
	}
	switch keyType {
	case KeyTypeED25519:
		if len(raw) != ed25519.PrivateKeySize {
			return SecretKey{}, errors.Errorf("ed25519 secret key has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
		}
		return SecretKey{keyType: keyType, ed: ed25519.PrivateKey(raw)}, nil
	case KeyTypeSECP256K1:
		if len(raw) != 32 {
			return SecretKey{}, errors.Errorf("secp256k1 secret key has %d bytes, want 32", len(raw))
		}
		return SecretKey{keyType: keyType, secp: secp256k1.PrivKeyFromBytes(raw)}, nil
	default:
		return SecretKey{}, errors.Errorf("unknown key type %d", keyType)
	}
}

func (k SecretKey) Type() KeyType {
	return k.keyType
}

func (k SecretKey) String() string {
	if k.keyType == KeyTypeSECP256K1 {
		return k.keyType.String() + ":" + base58.Encode(k.secp.Serialize())
	}
	return k.keyType.String() + ":" + base58.Encode(k.ed)
}

// PublicKey returns the public half of the key.
func (k SecretKey) PublicKey() PublicKey {
	if k.keyType == KeyTypeSECP256K1 {
		// uncompressed SEC1 form without the 0x04 prefix
		uncompressed := k.secp.PubKey().SerializeUncompressed()
		return PublicKeyFromSECP256K1([64]byte(uncompressed[1:]))
	}
	pub := k.ed.Public().(ed25519.PublicKey)
	return PublicKeyFromED25519([32]byte(pub))
}

// Sign signs data, which for transaction signing is the 32-byte sha256 of
// the borsh-serialized payload. secp256k1 signing requires exactly a 32-byte
// digest; ed25519 accepts arbitrary bytes.
func (k SecretKey) Sign(data []byte) (Signature, error) {
	switch k.keyType {
	case KeyTypeED25519:
		return SignatureFromED25519([64]byte(ed25519.Sign(k.ed, data))), nil
	case KeyTypeSECP256K1:
		if len(data) != 32 {
			return Signature{}, errors.Errorf("secp256k1 signs a 32-byte digest, got %d bytes", len(data))
		}
		compact := secpecdsa.SignCompact(k.secp, data, false)
		// SignCompact yields [recovery+27] || r || s; the wire format is
		// r || s || recovery.
		var sig [65]byte
		copy(sig[:64], compact[1:])
		sig[64] = compact[0] - 27
		return SignatureFromSECP256K1(sig), nil
	default:
		return Signature{}, errors.Errorf("unknown key type %d", k.keyType)
	}
}
