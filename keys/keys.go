// Package keys implements the two key curves accepted by the chain and the
// string / binary encodings used for them on the RPC and transaction wire
// formats.
package keys

import (
	"encoding/json"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// KeyType identifies the curve of a key or signature.
type KeyType uint8

const (
	KeyTypeED25519 KeyType = iota
	KeyTypeSECP256K1
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeED25519:
		return "ed25519"
	case KeyTypeSECP256K1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

func parseKeyType(s string) (KeyType, error) {
	switch s {
	case "ed25519":
		return KeyTypeED25519, nil
	case "secp256k1":
		return KeyTypeSECP256K1, nil
	default:
		return 0, errors.Errorf("unknown key type %q", s)
	}
}

// PublicKey is a curve-tagged public key. The struct layout doubles as the
// borsh wire form: a one-byte curve tag followed by the raw key bytes
// (32 for ed25519, 64 for uncompressed secp256k1 without the format prefix).
type PublicKey struct {
	Enum      borsh.Enum `borsh_enum:"true"`
	ED25519   [32]byte
	SECP256K1 [64]byte
}

func PublicKeyFromED25519(raw [32]byte) PublicKey {
	return PublicKey{Enum: borsh.Enum(KeyTypeED25519), ED25519: raw}
}

func PublicKeyFromSECP256K1(raw [64]byte) PublicKey {
	return PublicKey{Enum: borsh.Enum(KeyTypeSECP256K1), SECP256K1: raw}
}

// ParsePublicKey parses the "<curve>:<base58 data>" string form.
func ParsePublicKey(s string) (PublicKey, error) {
	keyType, raw, err := splitKeyString(s)
	if err != nil {
		return PublicKey{}, err
	}
	switch keyType {
	case KeyTypeED25519:
		if len(raw) != 32 {
			return PublicKey{}, errors.Errorf("ed25519 public key has %d bytes, want 32", len(raw))
		}
		return PublicKeyFromED25519([32]byte(raw)), nil
	case KeyTypeSECP256K1:
		if len(raw) != 64 {
			return PublicKey{}, errors.Errorf("secp256k1 public key has %d bytes, want 64", len(raw))
		}
		return PublicKeyFromSECP256K1([64]byte(raw)), nil
	default:
		return PublicKey{}, errors.Errorf("unknown key type %d", keyType)
	}
}

func (p PublicKey) Type() KeyType {
	return KeyType(p.Enum)
}

// Bytes returns the raw key material without the curve tag.
func (p PublicKey) Bytes() []byte {
	if p.Type() == KeyTypeSECP256K1 {
		return p.SECP256K1[:]
	}
	return p.ED25519[:]
}

func (p PublicKey) String() string {
	return p.Type().String() + ":" + base58.Encode(p.Bytes())
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func splitKeyString(s string) (KeyType, []byte, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, nil, errors.Errorf("malformed key %q: want <curve>:<base58 data>", s)
	}
	keyType, err := parseKeyType(parts[0])
	if err != nil {
		return 0, nil, err
	}
	raw, err := base58.Decode(parts[1])
	if err != nil {
		return 0, nil, errors.Wrapf(err, "malformed key data in %q", s)
	}
	return keyType, raw, nil
}
