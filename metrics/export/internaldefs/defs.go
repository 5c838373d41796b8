package internaldefs

import (
	goSocial "github.com/MrEthical07/goSocial"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goSocial.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goSocial.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goSocial.MetricSessionRestored, Name: "gosocial_session_restored_total", Help: "Persisted sessions restored at startup or reload."},
	{ID: goSocial.MetricCredentialExpired, Name: "gosocial_credential_expired_total", Help: "Persisted credentials discarded because they had expired."},
	{ID: goSocial.MetricCredentialMalformed, Name: "gosocial_credential_malformed_total", Help: "Persisted credentials discarded because they could not be decoded."},
	{ID: goSocial.MetricLoginSuccess, Name: "gosocial_login_success_total", Help: "Successful logins."},
	{ID: goSocial.MetricLoginFailure, Name: "gosocial_login_failure_total", Help: "Failed logins."},
	{ID: goSocial.MetricRegisterSuccess, Name: "gosocial_register_success_total", Help: "Successful registrations."},
	{ID: goSocial.MetricRegisterFailure, Name: "gosocial_register_failure_total", Help: "Failed registrations."},
	{ID: goSocial.MetricLogout, Name: "gosocial_logout_total", Help: "Logouts."},
	{ID: goSocial.MetricQuerySuccess, Name: "gosocial_query_success_total", Help: "Successful API queries."},
	{ID: goSocial.MetricQueryFailure, Name: "gosocial_query_failure_total", Help: "Failed API queries."},
	{ID: goSocial.MetricMutationSuccess, Name: "gosocial_mutation_success_total", Help: "Successful API mutations."},
	{ID: goSocial.MetricMutationFailure, Name: "gosocial_mutation_failure_total", Help: "Failed API mutations."},
}

// HistogramDefs lists every histogram in exposition order.
var HistogramDefs = []HistogramDef{
	{ID: goSocial.MetricRequestLatency, Name: "gosocial_request_latency_seconds", Help: "API request latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the histogram buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
