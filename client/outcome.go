package client

import (
	"encoding/json"

	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/rpcclient"
	"github.com/fermata-systems/near-client/types"
)

// Status is the caller-facing classification of a completed submission.
type Status uint8

const (
	// StatusSuccess: the transaction and all spawned receipts executed
	// successfully.
	StatusSuccess Status = iota + 1
	// StatusSuccessWithFailedReceipts: the transaction was accepted and
	// converted to receipts, but at least one receipt failed on-chain.
	StatusSuccessWithFailedReceipts
	// StatusFailure: the transaction itself failed during execution.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuccessWithFailedReceipts:
		return "success_with_failed_receipts"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the structured result of one submission. The three Status
// values are distinguishable without inspecting transport details; a
// contract-level failure always lands here, never in a transport error.
type Outcome struct {
	Status          Status
	TransactionHash types.CryptoHash
	// PublicKey is the signing key the submission actually used, which for
	// pooled signers varies per call.
	PublicKey keys.PublicKey
	Raw       *rpcclient.FinalExecutionOutcome
}

func newOutcome(raw *rpcclient.FinalExecutionOutcome, hash types.CryptoHash, pub keys.PublicKey) *Outcome {
	return &Outcome{
		Status:          classifyOutcome(raw),
		TransactionHash: hash,
		PublicKey:       pub,
		Raw:             raw,
	}
}

func classifyOutcome(raw *rpcclient.FinalExecutionOutcome) Status {
	if !raw.Status.IsSuccess() {
		return StatusFailure
	}
	for _, receipt := range raw.ReceiptsOutcome {
		if !receipt.Outcome.Status.IsSuccess() {
			return StatusSuccessWithFailedReceipts
		}
	}
	return StatusSuccess
}

// ReturnValue decodes the transaction's return value, nil when there is
// none.
func (o *Outcome) ReturnValue() ([]byte, error) {
	return o.Raw.Status.DecodedSuccessValue()
}

// ReturnValueInto JSON-decodes the return value of a contract call into v.
func (o *Outcome) ReturnValueInto(v any) error {
	raw, err := o.ReturnValue()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Failure returns the raw on-chain failure payload, nil on success.
func (o *Outcome) Failure() json.RawMessage {
	return o.Raw.Status.Failure
}

// Logs collects the logs of every receipt in execution order.
func (o *Outcome) Logs() []string {
	var logs []string
	logs = append(logs, o.Raw.TransactionOutcome.Outcome.Logs...)
	for _, receipt := range o.Raw.ReceiptsOutcome {
		logs = append(logs, receipt.Outcome.Logs...)
	}
	return logs
}
