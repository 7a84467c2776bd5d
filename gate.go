package goClient

import (
	"context"
	"log"

	"github.com/MrEthical07/goClient/session"
)

// Navigator receives the session gate's sole signal: the session is gone and
// the hosting application should present its unauthenticated entry point. It
// is the only integration point exposed to the routing/UI layer.
type Navigator interface {
	NavigateToLogin(ctx context.Context)
}

// NoOpNavigator defines a public type used by goClient APIs.
//
// NoOpNavigator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpNavigator struct{}

// NavigateToLogin describes the navigatetologin operation and its observable behavior.
//
// NavigateToLogin may return an error when input validation, dependency calls, or security checks fail.
// NavigateToLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpNavigator) NavigateToLogin(context.Context) {}

// sessionGate reacts to irrecoverable authentication failure. terminate is
// idempotent: clearing an already-clear session is a no-op beyond the
// navigation signal.
type sessionGate struct {
	client    *Client
	store     *session.Store
	navigator Navigator
}

func (g *sessionGate) terminate(ctx context.Context) {
	c := g.client
	if err := g.store.Clear(ctx); err != nil {
		// The in-memory session is already gone; only the durable record
		// outlived it.
		log.Print("goClient: durable session clear failed on termination")
	}

	c.metricInc(MetricSessionTerminated)
	c.emitAudit(auditEventSessionTerminated, true, "", nil, nil)

	g.navigator.NavigateToLogin(ctx)
}
