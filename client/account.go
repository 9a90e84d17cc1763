package client

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/faucet"
	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/signer"
	"github.com/fermata-systems/near-client/transaction"
	"github.com/fermata-systems/near-client/types"
)

// CreateSubAccount creates newAccountID as a direct sub-account of the
// signer, funds it with deposit and registers newKey as its full-access
// key.
func (c *Client) CreateSubAccount(ctx context.Context, creator types.AccountID, newAccountID types.AccountID, deposit types.Balance, newKey keys.PublicKey, s signer.Signer) (*Outcome, error) {
	pending := transaction.PendingCreateAccount{
		CreatorID:    creator,
		NewAccountID: newAccountID,
		Deposit:      deposit,
	}
	tx, err := pending.Finalize(newKey)
	if err != nil {
		return nil, err
	}
	return c.SignAndSend(ctx, tx, s)
}

type linkdropCreateArgs struct {
	NewAccountID types.AccountID `json:"new_account_id"`
	NewPublicKey string          `json:"new_public_key"`
}

// CreateTopLevelAccount creates a top-level account through the network's
// linkdrop account, which performs the creation on the signer's behalf.
func (c *Client) CreateTopLevelAccount(ctx context.Context, creator types.AccountID, newAccountID types.AccountID, deposit types.Balance, newKey keys.PublicKey, s signer.Signer) (*Outcome, error) {
	if c.cfg.LinkdropAccountID == "" {
		return nil, types.NewValidationError("network %q has no linkdrop account configured", c.cfg.Name)
	}
	args, err := json.Marshal(linkdropCreateArgs{
		NewAccountID: newAccountID,
		NewPublicKey: newKey.String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding linkdrop args")
	}

	const createAccountGas = 50_000_000_000_000 // 50 Tgas, ample for linkdrop create_account
	tx, err := transaction.NewBuilder(creator, c.cfg.LinkdropAccountID).
		FunctionCall("create_account", args, createAccountGas, deposit).
		Build()
	if err != nil {
		return nil, err
	}
	return c.SignAndSend(ctx, tx, s)
}

// CreateAccountWithFaucet requests creation and funding of a new account
// from the network's faucet service. Only available on networks that
// configure one.
func (c *Client) CreateAccountWithFaucet(ctx context.Context, newAccountID types.AccountID, newKey keys.PublicKey) error {
	if c.cfg.FaucetURL == "" {
		return types.NewValidationError("network %q has no faucet configured", c.cfg.Name)
	}
	return faucet.New(c.cfg.FaucetURL).CreateAccount(ctx, newAccountID, newKey)
}

// DeleteAccount deletes the signer's account, sending its remaining balance
// to beneficiary.
func (c *Client) DeleteAccount(ctx context.Context, accountID, beneficiary types.AccountID, s signer.Signer) (*Outcome, error) {
	tx, err := transaction.NewBuilder(accountID, accountID).
		DeleteAccount(beneficiary).
		Build()
	if err != nil {
		return nil, err
	}
	return c.SignAndSend(ctx, tx, s)
}

// Balance returns the account's liquid balance at optimistic finality.
func (c *Client) Balance(ctx context.Context, accountID types.AccountID) (types.Balance, error) {
	view, err := c.rpc.ViewAccount(ctx, accountID, types.FinalityOptimistic)
	if err != nil {
		return types.Balance{}, err
	}
	return view.Amount, nil
}
