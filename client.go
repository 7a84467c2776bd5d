package goClient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goClient/jwt"
	"github.com/MrEthical07/goClient/session"
	"github.com/google/uuid"
)

// Client defines a public type used by goClient APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config     Config
	store      *session.Store
	refresher  *refreshCoordinator
	gate       *sessionGate
	httpClient *http.Client
	audit      *auditDispatcher
	metrics    *Metrics
	closed     atomic.Bool
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closed.Store(true)
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	requestID := requestIDFor(ctx)

	// The credential exchange bypasses the refresh interceptor: a rejected
	// login is a credential failure, never a token-expiry recovery case.
	resp, err := c.send(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/login/",
		Body:   credentialsPayload{Username: username, Password: password},
	}, requestID)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(auditEventLoginFailure, false, requestID, err, func() map[string]string {
			return map[string]string{"username": username, "reason": "transport"}
		})
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		c.metricInc(MetricLoginFailure)
		c.emitAudit(auditEventLoginFailure, false, requestID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"username": username, "reason": "rejected"}
		})
		return nil, ErrInvalidCredentials
	default:
		c.metricInc(MetricLoginFailure)
		c.emitAudit(auditEventLoginFailure, false, requestID, nil, func() map[string]string {
			return map[string]string{"username": username, "reason": "unexpected_status"}
		})
		return nil, fmt.Errorf("login failed: unexpected status %d", resp.StatusCode)
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		c.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("login failed: malformed response: %w", err)
	}
	if body.Access == "" || body.Refresh == "" {
		c.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("login failed: response missing token pair")
	}

	if err := c.store.SetAuth(ctx, body.User, body.Access, body.Refresh); err != nil {
		// Memory committed; only the durable mirror failed.
		logPersistFailure("login")
	}

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(auditEventLoginSuccess, true, requestID, nil, func() map[string]string {
		return map[string]string{"username": username}
	})

	return body.User, nil
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	requestID := requestIDFor(ctx)

	resp, err := c.send(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/register/",
		Body:   registerPayload{Username: username, Email: email, Password: password},
	}, requestID)
	if err != nil {
		c.metricInc(MetricRegisterFailure)
		c.emitAudit(auditEventRegisterFailure, false, requestID, err, func() map[string]string {
			return map[string]string{"username": username, "reason": "transport"}
		})
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict:
		c.metricInc(MetricRegisterFailure)
		c.emitAudit(auditEventRegisterFailure, false, requestID, ErrRegistrationRejected, func() map[string]string {
			return map[string]string{"username": username, "reason": "rejected"}
		})
		return nil, ErrRegistrationRejected
	default:
		c.metricInc(MetricRegisterFailure)
		return nil, fmt.Errorf("register failed: unexpected status %d", resp.StatusCode)
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		c.metricInc(MetricRegisterFailure)
		return nil, fmt.Errorf("register failed: malformed response: %w", err)
	}

	result := &RegisterResult{User: body.User}

	// Token absence means registration succeeded without auto-login.
	if body.Access != "" && body.Refresh != "" {
		if err := c.store.SetAuth(ctx, body.User, body.Access, body.Refresh); err != nil {
			logPersistFailure("register")
		}
		result.AutoLoggedIn = true
	}

	c.metricInc(MetricRegisterSuccess)
	c.emitAudit(auditEventRegisterSuccess, true, requestID, nil, func() map[string]string {
		return map[string]string{
			"username":   username,
			"auto_login": fmt.Sprintf("%t", result.AutoLoggedIn),
		}
	})

	return result, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrClientNotReady
	}

	c.emitAudit(auditEventLogout, true, "", nil, nil)
	err := c.store.Clear(ctx)
	c.metricInc(MetricLogout)
	return err
}

// SessionInfo describes the sessioninfo operation and its observable behavior.
//
// SessionInfo may return an error when input validation, dependency calls, or security checks fail.
// SessionInfo does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) SessionInfo() SessionInfo {
	if c == nil || c.store == nil {
		return SessionInfo{}
	}

	s := c.store.Get()
	return SessionInfo{
		User:              s.User,
		IsAuthenticated:   s.IsAuthenticated,
		AccessTokenExpiry: jwt.ExpiresAt(s.AccessToken),
	}
}

// Do sends req through the authenticated transport. An authorization failure
// on an unretried request suspends the caller on the single-flight refresh;
// every other remote status is returned as a plain response for the calling
// layer to interpret. Transport failures surface immediately and are never
// retried here.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	requestID := requestIDFor(ctx)

	if c.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			c.metrics.Observe(MetricRequestLatency, time.Since(start))
		}()
	}

	resp, err := c.send(ctx, req, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if c.config.Refresh.MaxRetries == 0 {
		return nil, ErrUnauthorized
	}

	pending := &pendingRequest{
		ctx:       ctx,
		req:       req,
		requestID: requestID,
		attempt:   1,
		enqueued:  time.Now(),
		result:    make(chan pendingResult, 1),
	}
	c.refresher.enqueue(pending)

	timer := time.NewTimer(c.config.Refresh.WaiterTimeout)
	defer timer.Stop()

	select {
	case r := <-pending.result:
		return r.resp, r.err
	case <-timer.C:
		c.metricInc(MetricWaiterTimeout)
		return nil, ErrRefreshTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post describes the post operation and its observable behavior.
//
// Post may return an error when input validation, dependency calls, or security checks fail.
// Post does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// refreshCall performs the single refresh exchange. It runs on the
// coordinator's goroutine with its own deadline, detached from any one
// caller's context.
func (c *Client) refreshCall(refreshToken string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.HTTP.RefreshTimeout)
	defer cancel()

	resp, err := c.send(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/refresh/",
		Body:   refreshPayload{Refresh: refreshToken},
	}, uuid.NewString())
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", ErrRefreshInvalid
	}

	var body refreshResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", ErrRefreshInvalid
	}
	if body.Access == "" {
		return "", ErrRefreshInvalid
	}
	return body.Access, nil
}

func requestIDFor(ctx context.Context) string {
	if id := requestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
