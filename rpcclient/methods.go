package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// Block fetches a block header by finality, height or hash.
func (c *Client) Block(ctx context.Context, ref BlockReference) (*BlockView, error) {
	var out BlockView
	if err := c.call(ctx, familyBlock, "block", ref, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type queryParams struct {
	RequestType string          `json:"request_type"`
	Finality    types.Finality  `json:"finality,omitempty"`
	BlockID     any             `json:"block_id,omitempty"`
	AccountID   types.AccountID `json:"account_id,omitempty"`
	PublicKey   string          `json:"public_key,omitempty"`
	MethodName  string          `json:"method_name,omitempty"`
	ArgsBase64  *string         `json:"args_base64,omitempty"`
	PrefixB64   *string         `json:"prefix_base64,omitempty"`
}

// ViewAccount fetches an account's balance and storage state.
func (c *Client) ViewAccount(ctx context.Context, accountID types.AccountID, finality types.Finality) (*AccountView, error) {
	var out AccountView
	err := c.call(ctx, familyQuery, "query", queryParams{
		RequestType: "view_account",
		Finality:    finality,
		AccountID:   accountID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewAccessKey fetches the state of one access key, including its current
// nonce.
func (c *Client) ViewAccessKey(ctx context.Context, accountID types.AccountID, publicKey keys.PublicKey, finality types.Finality) (*AccessKeyView, error) {
	var out AccessKeyView
	err := c.call(ctx, familyQuery, "query", queryParams{
		RequestType: "view_access_key",
		Finality:    finality,
		AccountID:   accountID,
		PublicKey:   publicKey.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewAccessKeyList fetches every access key registered on an account.
func (c *Client) ViewAccessKeyList(ctx context.Context, accountID types.AccountID, finality types.Finality) (*AccessKeyListView, error) {
	var out AccessKeyListView
	err := c.call(ctx, familyQuery, "query", queryParams{
		RequestType: "view_access_key_list",
		Finality:    finality,
		AccountID:   accountID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CallFunction runs a read-only contract method.
func (c *Client) CallFunction(ctx context.Context, accountID types.AccountID, method string, args []byte, finality types.Finality) (*CallFunctionResult, error) {
	encoded := base64.StdEncoding.EncodeToString(args)
	var out CallFunctionResult
	err := c.call(ctx, familyQuery, "query", queryParams{
		RequestType: "call_function",
		Finality:    finality,
		AccountID:   accountID,
		MethodName:  method,
		ArgsBase64:  &encoded,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewState fetches contract state entries under a key prefix.
func (c *Client) ViewState(ctx context.Context, accountID types.AccountID, prefix []byte, finality types.Finality) (*ViewStateResult, error) {
	encoded := base64.StdEncoding.EncodeToString(prefix)
	var out ViewStateResult
	err := c.call(ctx, familyQuery, "query", queryParams{
		RequestType: "view_state",
		Finality:    finality,
		AccountID:   accountID,
		PrefixB64:   &encoded,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type sendTxParams struct {
	SignedTxBase64 string                  `json:"signed_tx_base64"`
	WaitUntil      types.TxExecutionStatus `json:"wait_until,omitempty"`
}

// SendTransaction broadcasts a signed, base64-encoded transaction, waiting
// for the requested execution level before returning.
func (c *Client) SendTransaction(ctx context.Context, signedTxBase64 string, waitUntil types.TxExecutionStatus) (*FinalExecutionOutcome, error) {
	var out FinalExecutionOutcome
	err := c.call(ctx, familyTx, "send_tx", sendTxParams{
		SignedTxBase64: signedTxBase64,
		WaitUntil:      waitUntil,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type txStatusParams struct {
	TxHash          string                  `json:"tx_hash"`
	SenderAccountID types.AccountID         `json:"sender_account_id"`
	WaitUntil       types.TxExecutionStatus `json:"wait_until,omitempty"`
}

// TxStatus looks up a previously broadcast transaction.
func (c *Client) TxStatus(ctx context.Context, txHash types.CryptoHash, sender types.AccountID, waitUntil types.TxExecutionStatus) (*FinalExecutionOutcome, error) {
	var out FinalExecutionOutcome
	err := c.call(ctx, familyTx, "tx", txStatusParams{
		TxHash:          txHash.String(),
		SenderAccountID: sender,
		WaitUntil:       waitUntil,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Validators fetches the current validator set.
func (c *Client) Validators(ctx context.Context) (*ValidatorsResponse, error) {
	var out ValidatorsResponse
	if err := c.call(ctx, familyValidators, "validators", []any{nil}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SandboxPatchState overwrites arbitrary state records. Only available on
// sandbox nodes; production networks reject the method.
func (c *Client) SandboxPatchState(ctx context.Context, records json.RawMessage) error {
	params := map[string]json.RawMessage{"records": records}
	return c.call(ctx, familyQuery, "sandbox_patch_state", params, nil)
}

// SandboxFastForward advances the chain by deltaHeight blocks. Sandbox only.
func (c *Client) SandboxFastForward(ctx context.Context, deltaHeight uint64) error {
	params := map[string]uint64{"delta_height": deltaHeight}
	return c.call(ctx, familyQuery, "sandbox_fast_forward", params, nil)
}
