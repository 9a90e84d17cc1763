package keys

import (
	"bytes"
	"crypto/ed25519"

	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// Signature is a curve-tagged signature. The struct layout doubles as the
// borsh wire form: a one-byte curve tag followed by 64 bytes for ed25519 or
// 65 bytes (r || s || recovery id) for secp256k1.
type Signature struct {
	Enum      borsh.Enum `borsh_enum:"true"`
	ED25519   [64]byte
	SECP256K1 [65]byte
}

func SignatureFromED25519(raw [64]byte) Signature {
	return Signature{Enum: borsh.Enum(KeyTypeED25519), ED25519: raw}
}

func SignatureFromSECP256K1(raw [65]byte) Signature {
	return Signature{Enum: borsh.Enum(KeyTypeSECP256K1), SECP256K1: raw}
}

// ParseSignature parses the "<curve>:<base58 data>" string form.
func ParseSignature(s string) (Signature, error) {
	keyType, raw, err := splitKeyString(s)
	if err != nil {
		return Signature{}, err
	}
	switch keyType {
	case KeyTypeED25519:
		if len(raw) != 64 {
			return Signature{}, errors.Errorf("ed25519 signature has %d bytes, want 64", len(raw))
		}
		return SignatureFromED25519([64]byte(raw)), nil
	case KeyTypeSECP256K1:
		if len(raw) != 65 {
			return Signature{}, errors.Errorf("secp256k1 signature has %d bytes, want 65", len(raw))
		}
		return SignatureFromSECP256K1([65]byte(raw)), nil
	default:
		return Signature{}, errors.Errorf("unknown key type %d", keyType)
	}
}

func (s Signature) Type() KeyType {
	return KeyType(s.Enum)
}

func (s Signature) Bytes() []byte {
	if s.Type() == KeyTypeSECP256K1 {
		return s.SECP256K1[:]
	}
	return s.ED25519[:]
}

func (s Signature) String() string {
	return s.Type().String() + ":" + base58.Encode(s.Bytes())
}

// Verify reports whether s is a valid signature of data by pub. The curve
// types of s and pub must match.
func (s Signature) Verify(data []byte, pub PublicKey) bool {
	if s.Type() != pub.Type() {
		return false
	}
	switch s.Type() {
	case KeyTypeED25519:
		return ed25519.Verify(pub.ED25519[:], data, s.ED25519[:])
	case KeyTypeSECP256K1:
		if len(data) != 32 {
			return false
		}
		compact := make([]byte, 65)
		compact[0] = s.SECP256K1[64] + 27
		copy(compact[1:], s.SECP256K1[:64])
		recovered, _, err := secpecdsa.RecoverCompact(compact, data)
		if err != nil {
			return false
		}
		return bytes.Equal(recovered.SerializeUncompressed()[1:], pub.SECP256K1[:])
	default:
		return false
	}
}
