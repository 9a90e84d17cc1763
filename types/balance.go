package types

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Balance is a token amount in yoctoNEAR, the chain's smallest unit.
// One NEAR is 10^24 yoctoNEAR. On the wire it is a u128; the RPC layer
// represents it as a decimal string inside JSON.
type Balance struct {
	inner big.Int
}

// NEARDecimals is the number of decimals of the native token.
const NEARDecimals = 24

var yoctoPerNEAR = new(big.Int).Exp(big.NewInt(10), big.NewInt(NEARDecimals), nil)

// NEAR returns a balance of n whole NEAR.
func NEAR(n uint64) Balance {
	var b Balance
	b.inner.Mul(new(big.Int).SetUint64(n), yoctoPerNEAR)
	return b
}

// Yocto returns a balance of n yoctoNEAR.
func Yocto(n uint64) Balance {
	var b Balance
	b.inner.SetUint64(n)
	return b
}

// BalanceFromBig copies v into a Balance. Negative values are invalid.
func BalanceFromBig(v *big.Int) (Balance, error) {
	if v.Sign() < 0 {
		return Balance{}, errors.Errorf("balance cannot be negative: %s", v)
	}
	var b Balance
	b.inner.Set(v)
	return b, nil
}

// BigInt returns a copy of the underlying integer.
func (b Balance) BigInt() *big.Int {
	return new(big.Int).Set(&b.inner)
}

func (b Balance) Cmp(other Balance) int {
	return b.inner.Cmp(&other.inner)
}

func (b Balance) String() string {
	return b.inner.String()
}

// NEARString renders the balance in whole NEAR with full precision,
// e.g. "1.5".
func (b Balance) NEARString() string {
	return decimal.NewFromBigInt(&b.inner, -NEARDecimals).String()
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.inner.String())
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return errors.Errorf("malformed balance %q", s)
	}
	b.inner.Set(v)
	return nil
}
