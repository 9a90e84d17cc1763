package types

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// CryptoHash is a 32-byte sha256 digest, rendered in base58 on the RPC
// surface.
type CryptoHash [32]byte

// HashBytes returns the sha256 digest of data.
func HashBytes(data []byte) CryptoHash {
	return CryptoHash(sha256.Sum256(data))
}

func ParseCryptoHash(s string) (CryptoHash, error) {
	var h CryptoHash
	raw, err := base58.Decode(s)
	if err != nil {
		return h, errors.Wrapf(err, "malformed hash %q", s)
	}
	if len(raw) != len(h) {
		return h, errors.Errorf("hash %q has %d bytes, want %d", s, len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}

func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *CryptoHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCryptoHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
