package transaction

import (
	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// PendingCreateAccount is an account-creation request with every input fixed
// except the new account's key. The key often arrives later (fresh
// generation, hardware device, or a key handed over out of band), so the
// request is finalized in a second phase.
type PendingCreateAccount struct {
	CreatorID    types.AccountID
	NewAccountID types.AccountID
	Deposit      types.Balance
}

// Finalize consumes the pending request and produces the prepopulated
// create-account transaction: CreateAccount, a funding Transfer, and a
// full-access AddKey for the supplied public key, targeting the new account.
func (p PendingCreateAccount) Finalize(pub keys.PublicKey) (PrepopulatedTransaction, error) {
	if err := p.NewAccountID.Validate(); err != nil {
		return PrepopulatedTransaction{}, errors.Wrap(err, "new account id")
	}
	return NewBuilder(p.CreatorID, p.NewAccountID).
		CreateAccount().
		Transfer(p.Deposit).
		AddFullAccessKey(pub).
		Build()
}
