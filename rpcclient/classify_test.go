package rpcclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyServerError(t *testing.T) {
	tests := []struct {
		name   string
		family methodFamily
		cause  string
		want   RetryDecision
	}{
		{"block not synced", familyBlock, "NOT_SYNCED_YET", DecisionRetry},
		{"block internal", familyBlock, "INTERNAL_ERROR", DecisionRetry},
		{"block unknown block", familyBlock, "UNKNOWN_BLOCK", DecisionCritical},
		{"block garbage collected", familyBlock, "GARBAGE_COLLECTED_BLOCK", DecisionCritical},

		{"query no synced blocks", familyQuery, "NO_SYNCED_BLOCKS", DecisionRetry},
		{"query unavailable shard", familyQuery, "UNAVAILABLE_SHARD", DecisionRetry},
		{"query no global contract code", familyQuery, "NO_GLOBAL_CONTRACT_CODE", DecisionRetry},
		{"query unknown account", familyQuery, "UNKNOWN_ACCOUNT", DecisionCritical},
		{"query unknown access key", familyQuery, "UNKNOWN_ACCESS_KEY", DecisionCritical},
		{"query contract execution error", familyQuery, "CONTRACT_EXECUTION_ERROR", DecisionCritical},

		{"tx timeout", familyTx, "TIMEOUT_ERROR", DecisionRetry},
		{"tx does not track shard", familyTx, "DOES_NOT_TRACK_SHARD", DecisionRetry},
		{"tx invalid transaction", familyTx, "INVALID_TRANSACTION", DecisionCritical},
		{"tx unknown transaction", familyTx, "UNKNOWN_TRANSACTION", DecisionCritical},

		{"validators internal", familyValidators, "INTERNAL_ERROR", DecisionRetry},
		{"validators unknown epoch", familyValidators, "UNKNOWN_EPOCH", DecisionCritical},

		// a cause only one family retries must not leak into another
		{"timeout is tx specific", familyQuery, "TIMEOUT_ERROR", DecisionCritical},
		{"unknown cause defaults to critical", familyTx, "SOME_FUTURE_CAUSE", DecisionCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyServerError(tt.family, tt.cause, nil))
		})
	}
}

func TestClassifyServerErrorOverrides(t *testing.T) {
	overrides := ClassifierOverrides{
		"NO_GLOBAL_CONTRACT_CODE": DecisionCritical,
		"UNKNOWN_ACCOUNT":         DecisionRetry,
	}
	assert.Equal(t, DecisionCritical, classifyServerError(familyQuery, "NO_GLOBAL_CONTRACT_CODE", overrides))
	assert.Equal(t, DecisionRetry, classifyServerError(familyQuery, "UNKNOWN_ACCOUNT", overrides))
	// untouched causes keep the built-in decision
	assert.Equal(t, DecisionRetry, classifyServerError(familyQuery, "NOT_SYNCED_YET", overrides))
}

func TestClassifyHTTPStatus(t *testing.T) {
	assert.Equal(t, DecisionOk, classifyHTTPStatus(http.StatusOK))
	assert.Equal(t, DecisionRetry, classifyHTTPStatus(http.StatusRequestTimeout))
	assert.Equal(t, DecisionRetry, classifyHTTPStatus(http.StatusTooManyRequests))
	assert.Equal(t, DecisionRetry, classifyHTTPStatus(http.StatusInternalServerError))
	assert.Equal(t, DecisionRetry, classifyHTTPStatus(http.StatusBadGateway))
	assert.Equal(t, DecisionRetry, classifyHTTPStatus(http.StatusServiceUnavailable))
	assert.Equal(t, DecisionCritical, classifyHTTPStatus(http.StatusBadRequest))
	assert.Equal(t, DecisionCritical, classifyHTTPStatus(http.StatusForbidden))
	assert.Equal(t, DecisionCritical, classifyHTTPStatus(http.StatusNotFound))
}
