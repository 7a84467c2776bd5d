package goClient

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples audit emission from the request path: Login,
// refresh, and termination paths enqueue events and a single worker feeds the
// sink, so a slow sink never blocks a caller or the refresh coordinator.
type auditDispatcher struct {
	sink AuditSink

	events chan AuditEvent
	done   chan struct{}
	wg     sync.WaitGroup

	dropIfFull   bool
	flushOnClose bool

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:         sink,
		events:       make(chan AuditEvent, buffer),
		done:         make(chan struct{}),
		dropIfFull:   cfg.DropIfFull,
		flushOnClose: cfg.FlushOnClose,
	}

	d.wg.Add(1)
	go d.pump()

	return d
}

// pump is the single consumer. Shutdown takes priority over pending events;
// the backlog still buffered at that point is flushed to the sink or discarded
// and counted, per AuditConfig.FlushOnClose.
func (d *auditDispatcher) pump() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			d.drainBacklog()
			return
		default:
		}

		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drainBacklog()
			return
		}
	}
}

func (d *auditDispatcher) drainBacklog() {
	for {
		select {
		case event := <-d.events:
			if d.flushOnClose {
				d.sink.Emit(context.Background(), event)
			} else {
				d.dropped.Add(1)
			}
		default:
			return
		}
	}
}

// Emit enqueues event for asynchronous delivery. With DropIfFull set a full
// buffer sheds the event immediately; otherwise the caller blocks until there
// is room, the context ends, or the dispatcher shuts down. Every event that
// fails to reach the sink is counted in Dropped.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
		d.dropped.Add(1)
	}
}

// Close stops the worker and waits for it to finish handling the backlog.
// Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were shed since the dispatcher started.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
