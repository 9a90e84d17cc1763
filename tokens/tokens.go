// Package tokens handles fungible-token amounts: converting human-readable
// quantities into integer base units under a stated decimal count, and
// validating that count against the contract's actual metadata before
// anything touches the network.
package tokens

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fermata-systems/near-client/types"
)

// FTMetadata is the relevant slice of a fungible-token contract's metadata.
type FTMetadata struct {
	Spec     string `json:"spec"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Amount is a token quantity paired with the decimal count it was expressed
// under. The decimal count is an assumption about the contract until
// CheckDecimals confirms it.
type Amount struct {
	value    decimal.Decimal
	decimals uint8
}

// NewAmount parses a human-readable quantity ("100", "1.5") at the given
// decimal count.
func NewAmount(human string, decimals uint8) (Amount, error) {
	value, err := decimal.NewFromString(human)
	if err != nil {
		return Amount{}, errors.Wrapf(err, "parsing amount %q", human)
	}
	if value.IsNegative() {
		return Amount{}, errors.Errorf("amount %q is negative", human)
	}
	return Amount{value: value, decimals: decimals}, nil
}

// WholeUnits returns an integer number of whole tokens.
func WholeUnits(n uint64, decimals uint8) Amount {
	return Amount{value: decimal.NewFromUint64(n), decimals: decimals}
}

func (a Amount) Decimals() uint8 {
	return a.decimals
}

// CheckDecimals validates the assumed decimal count against the contract's
// actual one. A mismatch is a ValidationError: silently rescaling would
// move the decimal point of the transfer.
func (a Amount) CheckDecimals(actual uint8) error {
	if a.decimals != actual {
		return types.NewValidationError(
			"amount was expressed at %d decimals but the contract uses %d", a.decimals, actual)
	}
	return nil
}

// BaseUnits converts to the integer on-chain representation, validating
// against the contract metadata first.
func (a Amount) BaseUnits(meta FTMetadata) (types.Balance, error) {
	if err := a.CheckDecimals(meta.Decimals); err != nil {
		return types.Balance{}, err
	}
	scaled := a.value.Shift(int32(a.decimals))
	if !scaled.IsInteger() {
		return types.Balance{}, types.NewValidationError(
			"amount %s has more fractional digits than the token's %d decimals", a.value, a.decimals)
	}
	return types.BalanceFromBig(scaled.BigInt())
}
