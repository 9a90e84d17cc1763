package transaction

import (
	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// PrepopulatedTransaction holds everything the caller decides about a
// transaction: who signs, who receives, and the ordered action list. Nonce,
// block hash and key are resolved at submission time. Treated as immutable
// once handed to the orchestrator.
type PrepopulatedTransaction struct {
	SignerID   types.AccountID
	ReceiverID types.AccountID
	Actions    []Action
}

// Builder accumulates actions for one (signer, receiver) pair. Pure data
// assembly; no network or crypto state.
type Builder struct {
	signerID   types.AccountID
	receiverID types.AccountID
	actions    []Action
}

func NewBuilder(signer, receiver types.AccountID) *Builder {
	return &Builder{signerID: signer, receiverID: receiver}
}

func (b *Builder) AddAction(actions ...Action) *Builder {
	b.actions = append(b.actions, actions...)
	return b
}

func (b *Builder) CreateAccount() *Builder {
	return b.AddAction(NewCreateAccountAction())
}

func (b *Builder) Transfer(amount types.Balance) *Builder {
	return b.AddAction(NewTransferAction(amount))
}

func (b *Builder) FunctionCall(method string, args []byte, gas uint64, deposit types.Balance) *Builder {
	return b.AddAction(NewFunctionCallAction(method, args, gas, deposit))
}

func (b *Builder) DeployContract(code []byte) *Builder {
	return b.AddAction(NewDeployContractAction(code))
}

func (b *Builder) Stake(amount types.Balance, pub keys.PublicKey) *Builder {
	return b.AddAction(NewStakeAction(amount, pub))
}

func (b *Builder) AddFullAccessKey(pub keys.PublicKey) *Builder {
	return b.AddAction(NewAddKeyAction(pub, FullAccessKey()))
}

func (b *Builder) AddFunctionCallKey(pub keys.PublicKey, receiver types.AccountID, methods []string, allowance *types.Balance) *Builder {
	return b.AddAction(NewAddKeyAction(pub, FunctionCallKey(receiver, methods, allowance)))
}

func (b *Builder) DeleteKey(pub keys.PublicKey) *Builder {
	return b.AddAction(NewDeleteKeyAction(pub))
}

func (b *Builder) DeleteAccount(beneficiary types.AccountID) *Builder {
	return b.AddAction(NewDeleteAccountAction(beneficiary))
}

func (b *Builder) Delegate(signed SignedDelegateAction) *Builder {
	return b.AddAction(NewDelegateAction(signed))
}

// Build validates the account ids and returns the immutable prepopulated
// transaction.
func (b *Builder) Build() (PrepopulatedTransaction, error) {
	if err := b.signerID.Validate(); err != nil {
		return PrepopulatedTransaction{}, errors.Wrap(err, "signer id")
	}
	if err := b.receiverID.Validate(); err != nil {
		return PrepopulatedTransaction{}, errors.Wrap(err, "receiver id")
	}
	if len(b.actions) == 0 {
		return PrepopulatedTransaction{}, errors.New("transaction has no actions")
	}
	actions := make([]Action, len(b.actions))
	copy(actions, b.actions)
	return PrepopulatedTransaction{
		SignerID:   b.signerID,
		ReceiverID: b.receiverID,
		Actions:    actions,
	}, nil
}
