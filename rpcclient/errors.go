package rpcclient

import (
	"encoding/json"
	"fmt"
)

// RPCError is the error payload of a JSON-RPC response. Classification keys
// off Cause.Name.
type RPCError struct {
	Name    string     `json:"name"`
	Cause   ErrorCause `json:"cause"`
	Code    int64      `json:"code"`
	Message string     `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Cause.Name != "" {
		return fmt.Sprintf("rpc error %s (%s): %s", e.Name, e.Cause.Name, e.Message)
	}
	return fmt.Sprintf("rpc error %s: %s", e.Name, e.Message)
}

// CallErrorKind partitions terminal call failures by what the caller can
// conclude from them.
type CallErrorKind uint8

const (
	// KindUnreachable: the request never produced a server answer on any
	// endpoint. The transaction may or may not have reached the network.
	KindUnreachable CallErrorKind = iota + 1
	// KindRejected: a server answered and rejected the request
	// deterministically. Retrying the same request will not help.
	KindRejected
	// KindExhausted: every endpoint's retry budget ran out on transient
	// failures without a deterministic answer.
	KindExhausted
)

func (k CallErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// CallError is the terminal error of one RPC call after retry and failover
// are done. Err holds the underlying cause (for KindExhausted, the
// accumulated per-attempt errors).
type CallError struct {
	Kind   CallErrorKind
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("rpc call %s failed (%s): %v", e.Method, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a non-200 response outside the retryable set.
type HTTPStatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("endpoint %s returned HTTP %d", e.Endpoint, e.StatusCode)
}
