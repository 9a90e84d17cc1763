package client

import (
	"github.com/fermata-systems/near-client/transaction"
	"github.com/fermata-systems/near-client/types"
)

// validateTransaction asserts network-specific invariants before signing.
// Violations never go on the wire.
//
// The only rule enforced at this layer: an account-creation transaction must
// target either a direct sub-account of the signer or the network's
// linkdrop account (which funnels top-level creation).
func validateTransaction(tx transaction.PrepopulatedTransaction, linkdrop types.AccountID) error {
	for _, action := range tx.Actions {
		if !action.IsCreateAccount() {
			continue
		}
		if tx.ReceiverID.IsSubAccountOf(tx.SignerID) {
			continue
		}
		if linkdrop != "" && tx.ReceiverID == linkdrop {
			continue
		}
		return types.NewValidationError(
			"account %q can only be created as a direct sub-account of signer %q or through the linkdrop account %q",
			tx.ReceiverID, tx.SignerID, linkdrop)
	}
	return nil
}
