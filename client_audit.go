package goClient

import (
	"context"
	"errors"
	"log"
	"time"
)

// AuditErrorCode defines a public type used by goClient APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthorized         AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials   AuditErrorCode = "invalid_credentials"
	auditErrRegistrationRejected AuditErrorCode = "registration_rejected"
	auditErrNoRefreshToken       AuditErrorCode = "no_refresh_token"
	auditErrRefreshInvalid       AuditErrorCode = "refresh_invalid"
	auditErrRefreshTimeout       AuditErrorCode = "refresh_timeout"
	auditErrTransport            AuditErrorCode = "transport_failure"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	eventType string,
	success bool,
	requestID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: requestID,
		Success:   success,
		Metadata:  metadata,
	}
	if user := c.store.Get().User; user != nil {
		event.UserID = user.ID
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(context.Background(), event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrRegistrationRejected):
		return auditErrRegistrationRejected
	case errors.Is(err, ErrNoRefreshToken):
		return auditErrNoRefreshToken
	case errors.Is(err, ErrRefreshInvalid):
		return auditErrRefreshInvalid
	case errors.Is(err, ErrRefreshTimeout):
		return auditErrRefreshTimeout
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return auditErrTransport
	default:
		return auditErrInternal
	}
}

func logPersistFailure(op string) {
	log.Print("goClient: session persist failed after " + op)
}
