package goClient

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrEthical07/goClient/jwt"
)

type refreshState uint8

const (
	stateIdle refreshState = iota
	stateRefreshing
)

// pendingRequest is a suspended caller request awaiting the outcome of an
// in-flight refresh. attempt counts sends already performed, so retry
// eligibility is a pure function of the counter and never a mutable flag on
// the transport object.
type pendingRequest struct {
	ctx       context.Context
	req       *Request
	requestID string
	attempt   int
	enqueued  time.Time

	// result is buffered so a late replay outcome for a waiter that stopped
	// waiting is delivered and discarded, never blocking the drain.
	result chan pendingResult
}

type pendingResult struct {
	resp *Response
	err  error
}

// refreshCoordinator owns the process-wide refresh state: at most one refresh
// call is outstanding at any time, and every request that observes an
// authorization failure while one is in flight joins the same waiter queue.
type refreshCoordinator struct {
	client *Client

	mu      sync.Mutex
	state   refreshState
	waiters []*pendingRequest
}

func newRefreshCoordinator(c *Client) *refreshCoordinator {
	return &refreshCoordinator{client: c}
}

// enqueue appends p to the waiter queue and, when the state is Idle, starts
// the single refresh. Queue position is assigned under the lock, so waiters
// are replayed in the order their failures were observed.
func (rc *refreshCoordinator) enqueue(p *pendingRequest) {
	rc.mu.Lock()
	rc.waiters = append(rc.waiters, p)
	trigger := rc.state == stateIdle
	if trigger {
		rc.state = stateRefreshing
	}
	rc.mu.Unlock()

	c := rc.client
	if trigger {
		c.metricInc(MetricRefreshTriggered)
		c.emitAudit(auditEventRefreshTriggered, true, p.requestID, nil, func() map[string]string {
			meta := map[string]string{"path": p.req.Path}
			if exp := jwt.ExpiresAt(c.store.AccessToken()); !exp.IsZero() {
				meta["access_expired_at"] = exp.UTC().Format(time.RFC3339)
			}
			return meta
		})
		go rc.run()
		return
	}

	c.metricInc(MetricRefreshJoined)
}

// run drives one refresh to completion. It executes off the caller's
// goroutine; every waiter, the trigger included, observes the outcome through
// its result channel.
func (rc *refreshCoordinator) run() {
	c := rc.client

	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		// Irrecoverable before it starts: no refresh call is attempted.
		rc.finishFailure(ErrNoRefreshToken)
		return
	}

	access, err := c.refreshCall(refreshToken)
	if err != nil {
		rc.finishFailure(err)
		return
	}

	persistCtx, cancel := context.WithTimeout(context.Background(), c.config.HTTP.RequestTimeout)
	defer cancel()
	if err := c.store.UpdateAccessToken(persistCtx, access); err != nil {
		// Memory is authoritative; a failed durable mirror must not reject
		// the waiters.
		log.Print("goClient: session persist failed after refresh")
	}

	rc.finishSuccess()
}

// finishSuccess transitions back to Idle and replays every waiter exactly
// once, in enqueue order. Each replay reads the store again at send time, so
// it carries the token the refresh just committed.
func (rc *refreshCoordinator) finishSuccess() {
	waiters := rc.drain()

	c := rc.client
	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(auditEventRefreshSuccess, true, "", nil, func() map[string]string {
		return map[string]string{"waiters": strconv.Itoa(len(waiters))}
	})

	for _, w := range waiters {
		w.result <- rc.replay(w)
	}
}

// finishFailure transitions back to Idle, rejects every waiter with the
// original authorization error, and invokes the session gate.
func (rc *refreshCoordinator) finishFailure(cause error) {
	waiters := rc.drain()

	c := rc.client
	c.metricInc(MetricRefreshFailure)
	c.emitAudit(auditEventRefreshFailure, false, "", cause, func() map[string]string {
		return map[string]string{"waiters": strconv.Itoa(len(waiters))}
	})

	for _, w := range waiters {
		// Callers see the authorization failure that suspended them, not the
		// refresh call's own error.
		w.result <- pendingResult{err: ErrUnauthorized}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.HTTP.RequestTimeout)
	defer cancel()
	c.gate.terminate(ctx)
}

func (rc *refreshCoordinator) drain() []*pendingRequest {
	rc.mu.Lock()
	waiters := rc.waiters
	rc.waiters = nil
	rc.state = stateIdle
	rc.mu.Unlock()
	return waiters
}

func (rc *refreshCoordinator) replay(w *pendingRequest) pendingResult {
	c := rc.client
	c.metricInc(MetricRequestReplayed)

	resp, err := c.send(w.ctx, w.req, w.requestID)
	if err != nil {
		return pendingResult{err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Second authorization failure after a replay is final; the request
		// is never requeued.
		c.metricInc(MetricRetryExhausted)
		c.emitAudit(auditEventRetryExhausted, false, w.requestID, ErrUnauthorized, func() map[string]string {
			return map[string]string{
				"path":    w.req.Path,
				"attempt": strconv.Itoa(w.attempt + 1),
				"waited":  time.Since(w.enqueued).Round(time.Millisecond).String(),
			}
		})
		return pendingResult{err: ErrUnauthorized}
	}
	return pendingResult{resp: resp}
}
