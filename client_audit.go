package goSocial

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/session"
)

var sessionMetrics = map[session.EventKind]MetricID{
	session.EventRestored:  MetricSessionRestored,
	session.EventExpired:   MetricCredentialExpired,
	session.EventMalformed: MetricCredentialMalformed,
	session.EventLogin:     MetricLoginSuccess,
	session.EventLogout:    MetricLogout,
}

var sessionAuditTypes = map[session.EventKind]string{
	session.EventRestored:  AuditSessionRestored,
	session.EventExpired:   AuditCredentialExpired,
	session.EventMalformed: AuditCredentialMalformed,
	session.EventLogin:     AuditLoginSuccess,
	session.EventLogout:    AuditLogout,
}

// onSessionEvent runs on the session's mutating goroutine and must not block.
func (c *Client) onSessionEvent(ev session.Event) {
	if id, ok := sessionMetrics[ev.Kind]; ok {
		c.metrics.Inc(id)
	}

	eventType, ok := sessionAuditTypes[ev.Kind]
	if !ok {
		return
	}
	event := AuditEvent{
		Timestamp: ev.At,
		EventType: eventType,
		Username:  ev.Username,
		Success:   ev.Err == nil,
	}
	switch ev.Kind {
	case session.EventExpired, session.EventMalformed:
		event.Success = false
	}
	if ev.Err != nil {
		event.Error = ev.Err.Error()
	}
	c.emitAudit(context.Background(), event)
}

func (c *Client) fail(ctx context.Context, metric MetricID, eventType, username string, err error) {
	c.metrics.Inc(metric)
	c.emitAudit(ctx, AuditEvent{
		EventType: eventType,
		Username:  username,
		Error:     auditReason(err),
	})
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}
	event.Backend = c.backend
	c.audit.Emit(ctx, event)
}

// auditReason keeps only the API's message, never request details.
func auditReason(err error) string {
	var opErr *api.OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return err.Error()
}
