package internaldefs

import (
	gatekeeper "github.com/tekreview/gatekeeper"
)

// CounterDef defines a public type used by gatekeeper APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   gatekeeper.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by gatekeeper APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   gatekeeper.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the gatekeeping engine.
var CounterDefs = []CounterDef{
	{ID: gatekeeper.MetricRequestAllowed, Name: "gatekeeper_request_allowed_total", Help: "Requests that passed all gatekeeping stages."},
	{ID: gatekeeper.MetricRequestThrottled, Name: "gatekeeper_request_throttled_total", Help: "Requests rejected by rate limiting."},
	{ID: gatekeeper.MetricUnauthenticated, Name: "gatekeeper_unauthenticated_total", Help: "Protected requests without a valid session."},
	{ID: gatekeeper.MetricForbidden, Name: "gatekeeper_forbidden_total", Help: "Authenticated requests rejected for missing admin role."},
	{ID: gatekeeper.MetricCSRFRejected, Name: "gatekeeper_csrf_rejected_total", Help: "Mutating requests rejected for anti-forgery token mismatch."},
	{ID: gatekeeper.MetricStoreFailOpen, Name: "gatekeeper_store_fail_open_total", Help: "Rate checks that failed open due to store errors."},
	{ID: gatekeeper.MetricLoginSuccess, Name: "gatekeeper_login_success_total", Help: "Successful credential exchanges."},
	{ID: gatekeeper.MetricLoginFailure, Name: "gatekeeper_login_failure_total", Help: "Failed credential exchanges."},
	{ID: gatekeeper.MetricLoginRateLimited, Name: "gatekeeper_login_rate_limited_total", Help: "Rate-limited credential exchanges."},
	{ID: gatekeeper.MetricTokenIssued, Name: "gatekeeper_token_issued_total", Help: "Session tokens issued."},
}

// HistogramDefs is an exported constant or variable used by the gatekeeping engine.
var HistogramDefs = []HistogramDef{
	{ID: gatekeeper.MetricEvaluateLatency, Name: "gatekeeper_evaluate_latency_seconds", Help: "Evaluate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the gatekeeping engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the gatekeeping engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
