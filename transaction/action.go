// Package transaction defines the transaction wire model: the action tagged
// union, unsigned and signed transactions, delegate actions for
// meta-transactions, and their deterministic borsh encodings used for
// hashing and signing.
package transaction

import (
	"math/big"

	"github.com/near/borsh-go"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// Action ordinals in the borsh encoding. The order is protocol-defined and
// must never change.
const (
	ordCreateAccount uint8 = iota
	ordDeployContract
	ordFunctionCall
	ordTransfer
	ordStake
	ordAddKey
	ordDeleteKey
	ordDeleteAccount
	ordDelegate
)

// Action is the tagged union of operations a transaction can carry. Exactly
// one variant field is active, selected by Enum.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
	Transfer       Transfer
	Stake          Stake
	AddKey         AddKey
	DeleteKey      DeleteKey
	DeleteAccount  DeleteAccount
	Delegate       SignedDelegateAction
}

type CreateAccount struct{}

type DeployContract struct {
	Code []byte
}

type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    big.Int
}

type Transfer struct {
	Deposit big.Int
}

type Stake struct {
	Stake     big.Int
	PublicKey keys.PublicKey
}

type AddKey struct {
	PublicKey keys.PublicKey
	AccessKey AccessKey
}

type DeleteKey struct {
	PublicKey keys.PublicKey
}

type DeleteAccount struct {
	BeneficiaryID types.AccountID
}

// AccessKey describes an on-chain access key: its nonce counter and what it
// is permitted to do.
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// AccessKeyPermission is FunctionCall (variant 0) or FullAccess (variant 1).
type AccessKeyPermission struct {
	Enum         borsh.Enum `borsh_enum:"true"`
	FunctionCall FunctionCallPermission
	FullAccess   struct{}
}

// FunctionCallPermission restricts a key to calling the named methods on one
// receiver, spending at most Allowance on gas (nil means unlimited).
type FunctionCallPermission struct {
	Allowance   *big.Int
	ReceiverID  types.AccountID
	MethodNames []string
}

func FullAccessKey() AccessKey {
	return AccessKey{Permission: AccessKeyPermission{Enum: 1}}
}

func FunctionCallKey(receiver types.AccountID, methods []string, allowance *types.Balance) AccessKey {
	perm := FunctionCallPermission{ReceiverID: receiver, MethodNames: methods}
	if allowance != nil {
		perm.Allowance = allowance.BigInt()
	}
	return AccessKey{Permission: AccessKeyPermission{Enum: 0, FunctionCall: perm}}
}

func NewCreateAccountAction() Action {
	return Action{Enum: borsh.Enum(ordCreateAccount)}
}

func NewDeployContractAction(code []byte) Action {
	return Action{Enum: borsh.Enum(ordDeployContract), DeployContract: DeployContract{Code: code}}
}

func NewFunctionCallAction(method string, args []byte, gas uint64, deposit types.Balance) Action {
	return Action{Enum: borsh.Enum(ordFunctionCall), FunctionCall: FunctionCall{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    *deposit.BigInt(),
	}}
}

func NewTransferAction(deposit types.Balance) Action {
	return Action{Enum: borsh.Enum(ordTransfer), Transfer: Transfer{Deposit: *deposit.BigInt()}}
}

func NewStakeAction(stake types.Balance, pub keys.PublicKey) Action {
	return Action{Enum: borsh.Enum(ordStake), Stake: Stake{Stake: *stake.BigInt(), PublicKey: pub}}
}

func NewAddKeyAction(pub keys.PublicKey, accessKey AccessKey) Action {
	return Action{Enum: borsh.Enum(ordAddKey), AddKey: AddKey{PublicKey: pub, AccessKey: accessKey}}
}

func NewDeleteKeyAction(pub keys.PublicKey) Action {
	return Action{Enum: borsh.Enum(ordDeleteKey), DeleteKey: DeleteKey{PublicKey: pub}}
}

func NewDeleteAccountAction(beneficiary types.AccountID) Action {
	return Action{Enum: borsh.Enum(ordDeleteAccount), DeleteAccount: DeleteAccount{BeneficiaryID: beneficiary}}
}

func NewDelegateAction(signed SignedDelegateAction) Action {
	return Action{Enum: borsh.Enum(ordDelegate), Delegate: signed}
}

// IsDelegate reports whether the action is a meta-transaction wrapper.
func (a Action) IsDelegate() bool {
	return uint8(a.Enum) == ordDelegate
}

// IsCreateAccount reports whether the action creates an account.
func (a Action) IsCreateAccount() bool {
	return uint8(a.Enum) == ordCreateAccount
}
