package rpcclient

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/types"
)

// BlockReference selects a block by finality, height or hash. Exactly one
// selector must be set.
type BlockReference struct {
	Finality types.Finality `json:"finality,omitempty"`
	BlockID  any            `json:"block_id,omitempty"`
}

func BlockAtFinality(f types.Finality) BlockReference {
	return BlockReference{Finality: f}
}

func BlockAtHeight(height uint64) BlockReference {
	return BlockReference{BlockID: height}
}

func BlockAtHash(hash types.CryptoHash) BlockReference {
	return BlockReference{BlockID: hash.String()}
}

type BlockView struct {
	Author types.AccountID `json:"author"`
	Header BlockHeaderView `json:"header"`
}

type BlockHeaderView struct {
	Height    uint64           `json:"height"`
	EpochID   types.CryptoHash `json:"epoch_id"`
	Hash      types.CryptoHash `json:"hash"`
	PrevHash  types.CryptoHash `json:"prev_hash"`
	Timestamp uint64           `json:"timestamp"`
}

type AccountView struct {
	Amount        types.Balance    `json:"amount"`
	Locked        types.Balance    `json:"locked"`
	CodeHash      types.CryptoHash `json:"code_hash"`
	StorageUsage  uint64           `json:"storage_usage"`
	StoragePaidAt uint64           `json:"storage_paid_at"`
}

// AccessKeyView is the on-chain state of one access key, including the
// nonce counter the next transaction must exceed.
type AccessKeyView struct {
	Nonce      uint64          `json:"nonce"`
	Permission json.RawMessage `json:"permission"`
}

type AccessKeyInfoView struct {
	PublicKey keys.PublicKey `json:"public_key"`
	AccessKey AccessKeyView  `json:"access_key"`
}

type AccessKeyListView struct {
	Keys []AccessKeyInfoView `json:"keys"`
}

// byteArray decodes the call_function result field, which the RPC encodes
// as a JSON array of byte values rather than base64.
type byteArray []byte

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var raw []uint16
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]byte, len(raw))
	for i, v := range raw {
		if v > 255 {
			return errors.Errorf("byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

type CallFunctionResult struct {
	Result      byteArray `json:"result"`
	Logs        []string  `json:"logs"`
	BlockHeight uint64    `json:"block_height"`
}

// Bytes returns the raw return value of the contract call.
func (r *CallFunctionResult) Bytes() []byte {
	return []byte(r.Result)
}

type ViewStateResult struct {
	Values []StateItem `json:"values"`
}

type StateItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExecutionStatus is the tagged status of a transaction or receipt
// execution. Exactly one field is set.
type ExecutionStatus struct {
	SuccessValue     *string           `json:"SuccessValue,omitempty"`
	SuccessReceiptID *types.CryptoHash `json:"SuccessReceiptId,omitempty"`
	Failure          json.RawMessage   `json:"Failure,omitempty"`
	Unknown          *json.RawMessage  `json:"Unknown,omitempty"`
}

// IsSuccess reports whether execution completed without failure.
func (s ExecutionStatus) IsSuccess() bool {
	return s.Failure == nil && s.Unknown == nil
}

// DecodedSuccessValue base64-decodes the return value, empty when execution
// produced none.
func (s ExecutionStatus) DecodedSuccessValue() ([]byte, error) {
	if s.SuccessValue == nil {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(*s.SuccessValue)
	if err != nil {
		return nil, errors.Wrap(err, "decoding success value")
	}
	return raw, nil
}

type ExecutionOutcome struct {
	Logs        []string           `json:"logs"`
	ReceiptIDs  []types.CryptoHash `json:"receipt_ids"`
	GasBurnt    uint64             `json:"gas_burnt"`
	TokensBurnt types.Balance      `json:"tokens_burnt"`
	ExecutorID  types.AccountID    `json:"executor_id"`
	Status      ExecutionStatus    `json:"status"`
}

type ExecutionOutcomeWithID struct {
	ID      types.CryptoHash `json:"id"`
	Outcome ExecutionOutcome `json:"outcome"`
}

// FinalExecutionOutcome is the full result of a broadcast transaction:
// the top-level status plus the per-receipt outcomes.
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	Transaction        json.RawMessage          `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

type ValidatorInfo struct {
	AccountID types.AccountID `json:"account_id"`
	PublicKey keys.PublicKey  `json:"public_key"`
	Stake     types.Balance   `json:"stake"`
	IsSlashed bool            `json:"is_slashed"`
}

type ValidatorsResponse struct {
	CurrentValidators []ValidatorInfo `json:"current_validators"`
	NextValidators    []ValidatorInfo `json:"next_validators"`
	EpochStartHeight  uint64          `json:"epoch_start_height"`
	EpochHeight       uint64          `json:"epoch_height"`
}
