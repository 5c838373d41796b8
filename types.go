package goSocial

import (
	"io"

	internalaudit "github.com/MrEthical07/goSocial/internal/audit"
	internalmetrics "github.com/MrEthical07/goSocial/internal/metrics"
	"go.uber.org/zap"
)

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// LoggerSink is an [AuditSink] that writes events to a zap logger.
type LoggerSink = internalaudit.LoggerSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLoggerSink creates a [LoggerSink] writing under the "audit" logger name.
func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	return internalaudit.NewLoggerSink(logger)
}

// Audit event types.
const (
	AuditSessionRestored     = "session_restored"
	AuditCredentialExpired   = "credential_expired"
	AuditCredentialMalformed = "credential_malformed"
	AuditLoginSuccess        = "login_success"
	AuditLoginFailure        = "login_failure"
	AuditRegisterSuccess     = "register_success"
	AuditRegisterFailure     = "register_failure"
	AuditLogout              = "logout"
)

// MetricID identifies a specific counter or histogram in the in-process metrics
// system.
type MetricID = internalmetrics.MetricID

const (
	// MetricSessionRestored counts persisted credentials accepted at open or reload.
	MetricSessionRestored = MetricID(internalmetrics.MetricSessionRestored)
	// MetricCredentialExpired counts persisted credentials discarded as expired.
	MetricCredentialExpired = MetricID(internalmetrics.MetricCredentialExpired)
	// MetricCredentialMalformed counts persisted credentials discarded as undecodable.
	MetricCredentialMalformed = MetricID(internalmetrics.MetricCredentialMalformed)
	MetricLoginSuccess        = MetricID(internalmetrics.MetricLoginSuccess)
	MetricLoginFailure        = MetricID(internalmetrics.MetricLoginFailure)
	MetricRegisterSuccess     = MetricID(internalmetrics.MetricRegisterSuccess)
	MetricRegisterFailure     = MetricID(internalmetrics.MetricRegisterFailure)
	MetricLogout              = MetricID(internalmetrics.MetricLogout)
	// MetricQuerySuccess and the three below count API operations by kind and outcome.
	MetricQuerySuccess    = MetricID(internalmetrics.MetricQuerySuccess)
	MetricQueryFailure    = MetricID(internalmetrics.MetricQueryFailure)
	MetricMutationSuccess = MetricID(internalmetrics.MetricMutationSuccess)
	MetricMutationFailure = MetricID(internalmetrics.MetricMutationFailure)
	// MetricRequestLatency is the API round-trip latency histogram.
	MetricRequestLatency = MetricID(internalmetrics.MetricRequestLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
