package goClient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func collectEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("never observed %q event", eventType)
		}
	}
}

func TestAuditLoginEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access":  "a1",
			"refresh": "r1",
			"user":    map[string]string{"id": "u1", "username": "alice"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Audit.Enabled = true

	sink := NewChannelSink(16)
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	client, err := New().WithConfig(cfg).WithRedis(rdb).WithAuditSink(sink).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()

	ctx := WithRequestID(context.Background(), "login-req-1")
	if _, err := client.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	event := collectEvent(t, sink, "login_success")
	if !event.Success {
		t.Error("expected a successful login event")
	}
	if event.RequestID != "login-req-1" {
		t.Errorf("expected correlation ID on the event, got %q", event.RequestID)
	}
	if event.UserID != "u1" {
		t.Errorf("expected the session user on the event, got %q", event.UserID)
	}
	if event.Metadata["username"] != "alice" {
		t.Errorf("unexpected metadata: %v", event.Metadata)
	}
}

func TestAuditRefreshLifecycleEvents(t *testing.T) {
	backend := newAuthServer("stale")
	srv := httptest.NewServer(backend.handler(t, "fresh", 0))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Audit.Enabled = true

	sink := NewChannelSink(16)
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	client, err := New().WithConfig(cfg).WithRedis(rdb).WithAuditSink(sink).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()
	seedSession(t, client, "expired", "refresh-1")

	if _, err := client.Get(context.Background(), "/projects/", nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	triggered := collectEvent(t, sink, "refresh_triggered")
	if triggered.Metadata["path"] != "/projects/" {
		t.Errorf("expected the triggering path in metadata, got %v", triggered.Metadata)
	}

	success := collectEvent(t, sink, "refresh_success")
	if success.Metadata["waiters"] != "1" {
		t.Errorf("expected one recorded waiter, got %v", success.Metadata)
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: "logout",
		UserID:    "u9",
		Success:   true,
	})

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if decoded.EventType != "logout" || decoded.UserID != "u9" || !decoded.Success {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := &blockingSink{block: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest drop.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}

	waitFor(t, time.Second, func() bool { return d.Dropped() > 0 }, "no events dropped")

	close(block)
	d.Close()
}

func TestDispatcherFlushesBacklogOnClose(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true, FlushOnClose: true}, sink)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
		default:
			if delivered != 3 {
				t.Fatalf("expected the full backlog delivered on close, got %d", delivered)
			}
			if d.Dropped() != 0 {
				t.Fatalf("expected no drops when flushing, got %d", d.Dropped())
			}
			return
		}
	}
}

func TestDispatcherDiscardsBacklogOnClose(t *testing.T) {
	block := make(chan struct{})
	sink := &blockingSink{block: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)

	// The worker blocks in the sink on the first event; two stay buffered.
	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}
	waitFor(t, time.Second, func() bool { return sink.started.Load() == 1 }, "worker never reached the sink")

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	waitFor(t, time.Second, func() bool { return d.closed.Load() }, "close never signaled")
	close(block)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close never returned")
	}

	if got := d.Dropped(); got != 2 {
		t.Fatalf("expected the buffered backlog counted as dropped, got %d", got)
	}
	if got := sink.started.Load(); got != 1 {
		t.Fatalf("expected no backlog delivery without FlushOnClose, got %d emits", got)
	}
}

type blockingSink struct {
	block   chan struct{}
	started atomic.Int64
}

func (s *blockingSink) Emit(ctx context.Context, event AuditEvent) {
	s.started.Add(1)
	<-s.block
}
