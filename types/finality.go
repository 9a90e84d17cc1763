package types

// Finality is the confirmation depth to read chain state at.
type Finality string

const (
	// FinalityOptimistic uses the latest block the queried node has processed.
	FinalityOptimistic Finality = "optimistic"
	// FinalityNearFinal uses the latest doomslug-confirmed block.
	FinalityNearFinal Finality = "near-final"
	// FinalityFinal uses the latest fully finalized block.
	FinalityFinal Finality = "final"
)

// TxExecutionStatus is the wait level for transaction broadcast: how far
// through execution the RPC node should wait before replying.
type TxExecutionStatus string

const (
	TxExecutionNone               TxExecutionStatus = "NONE"
	TxExecutionIncluded           TxExecutionStatus = "INCLUDED"
	TxExecutionExecutedOptimistic TxExecutionStatus = "EXECUTED_OPTIMISTIC"
	TxExecutionIncludedFinal      TxExecutionStatus = "INCLUDED_FINAL"
	TxExecutionExecuted           TxExecutionStatus = "EXECUTED"
	TxExecutionFinal              TxExecutionStatus = "FINAL"
)
