package rpcclient

import "net/http"

// RetryDecision is the tri-state classification of one RPC attempt.
type RetryDecision uint8

const (
	// DecisionOk: the attempt succeeded.
	DecisionOk RetryDecision = iota
	// DecisionRetry: transient failure; retry on the same endpoint after a
	// backoff, failing over once the endpoint's budget is spent.
	DecisionRetry
	// DecisionCritical: deterministic failure; stop immediately, no further
	// attempts on any endpoint.
	DecisionCritical
)

func (d RetryDecision) String() string {
	switch d {
	case DecisionOk:
		return "ok"
	case DecisionRetry:
		return "retry"
	case DecisionCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// methodFamily selects which server-error rule table applies. Each RPC
// method family partitions its error causes differently.
type methodFamily uint8

const (
	familyBlock methodFamily = iota
	familyQuery
	familyTx
	familyValidators
)

// causeNoGlobalContractCode may reflect state that has not propagated yet
// rather than a real absence, so it is retried by default. That is a
// judgment call, not a protocol guarantee; override it with
// ClassifierOverrides if the conservative default is wrong for a workload.
const causeNoGlobalContractCode = "NO_GLOBAL_CONTRACT_CODE"

// ClassifierOverrides remaps individual server error causes to a fixed
// decision, taking precedence over the built-in tables.
type ClassifierOverrides map[string]RetryDecision

var retryableCauses = map[methodFamily]map[string]struct{}{
	familyBlock: {
		"NOT_SYNCED_YET": {},
		"INTERNAL_ERROR": {},
	},
	familyQuery: {
		"NOT_SYNCED_YET":          {},
		"NO_SYNCED_BLOCKS":        {},
		"UNAVAILABLE_SHARD":       {},
		"INTERNAL_ERROR":          {},
		causeNoGlobalContractCode: {},
	},
	familyTx: {
		"TIMEOUT_ERROR":        {},
		"DOES_NOT_TRACK_SHARD": {},
		"INTERNAL_ERROR":       {},
	},
	familyValidators: {
		"INTERNAL_ERROR": {},
	},
}

// Everything not retryable is critical; the explicit entries below exist
// only for documentation and tests. Unknown causes default to critical: a
// cause we cannot name is a cause we cannot safely re-send.
var criticalCauses = map[methodFamily]map[string]struct{}{
	familyBlock: {
		"UNKNOWN_BLOCK":           {},
		"GARBAGE_COLLECTED_BLOCK": {},
		"PARSE_ERROR":             {},
	},
	familyQuery: {
		"UNKNOWN_ACCOUNT":          {},
		"UNKNOWN_ACCESS_KEY":       {},
		"INVALID_ACCOUNT":          {},
		"NO_CONTRACT_CODE":         {},
		"CONTRACT_EXECUTION_ERROR": {},
		"UNKNOWN_BLOCK":            {},
		"GARBAGE_COLLECTED_BLOCK":  {},
		"TOO_LARGE_CONTRACT_STATE": {},
		"PARSE_ERROR":              {},
	},
	familyTx: {
		"INVALID_TRANSACTION": {},
		"UNKNOWN_TRANSACTION": {},
		"PARSE_ERROR":         {},
	},
	familyValidators: {
		"UNKNOWN_EPOCH": {},
		"PARSE_ERROR":   {},
	},
}

func classifyServerError(family methodFamily, cause string, overrides ClassifierOverrides) RetryDecision {
	if d, ok := overrides[cause]; ok {
		return d
	}
	if _, ok := retryableCauses[family][cause]; ok {
		return DecisionRetry
	}
	return DecisionCritical
}

// classifyHTTPStatus treats request timeouts, rate limiting and the 5xx
// family as transient; any other non-200 status is critical.
func classifyHTTPStatus(status int) RetryDecision {
	switch {
	case status == http.StatusOK:
		return DecisionOk
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return DecisionRetry
	case status >= 500 && status <= 599:
		return DecisionRetry
	default:
		return DecisionCritical
	}
}
