package rpcclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promRPCAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "near_rpc_attempts_total",
		Help: "The total number of RPC attempts per endpoint and method",
	}, []string{"network", "endpoint", "method"})
	promRPCRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "near_rpc_retries_total",
		Help: "The total number of retry-classified RPC failures per endpoint and method",
	}, []string{"network", "endpoint", "method"})
	promRPCFailovers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "near_rpc_failovers_total",
		Help: "The total number of failovers to a backup endpoint after a retry budget ran out",
	}, []string{"network", "method"})
	promRPCCriticalErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "near_rpc_critical_errors_total",
		Help: "The total number of critical-classified RPC failures per endpoint and method",
	}, []string{"network", "endpoint", "method"})
	promRPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "near_rpc_call_duration_seconds",
		Help:    "End-to-end RPC call duration including retries and failover",
		Buckets: prometheus.DefBuckets,
	}, []string{"network", "method"})
)
