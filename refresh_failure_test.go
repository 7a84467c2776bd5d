package goClient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestRefreshFailureTerminatesSession(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	nav := &recordingNavigator{}
	client, mr, done := newTestClient(t, testConfig(srv.URL), nav)
	defer done()
	seedSession(t, client, "expired", "refresh-dead")

	_, err := client.Get(context.Background(), "/projects/", nil)
	if err != ErrUnauthorized {
		t.Fatalf("waiters see the authorization failure, not the refresh error; got %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", got)
	}

	// Termination runs after the waiters have been released.
	waitFor(t, time.Second, func() bool { return nav.Calls() == 1 }, "navigator never signaled")
	waitFor(t, time.Second, func() bool { return !client.SessionInfo().IsAuthenticated }, "session never cleared")

	if mr.Exists("goclient:session") {
		t.Fatal("expected durable record removed on termination")
	}
}

func TestMissingRefreshTokenSkipsNetworkCall(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	nav := &recordingNavigator{}
	client, _, done := newTestClient(t, testConfig(srv.URL), nav)
	defer done()
	// Access token without a refresh token: the failure is irrecoverable
	// before any refresh exchange starts.
	seedSession(t, client, "expired", "")

	_, err := client.Get(context.Background(), "/projects/", nil)
	if err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Fatalf("expected no refresh call without a refresh token, got %d", got)
	}

	waitFor(t, time.Second, func() bool { return nav.Calls() == 1 }, "navigator never signaled")
}

func TestWaiterTimeout(t *testing.T) {
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	// Unblock the handler before Close waits on it.
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.Refresh.WaiterTimeout = 50 * time.Millisecond

	client, _, done := newTestClient(t, cfg, nil)
	defer done()
	seedSession(t, client, "expired", "refresh-1")

	_, err := client.Get(context.Background(), "/projects/", nil)
	if err != ErrRefreshTimeout {
		t.Fatalf("expected ErrRefreshTimeout, got %v", err)
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricWaiterTimeout] != 1 {
		t.Errorf("expected one waiter timeout, got %d", snap.Counters[MetricWaiterTimeout])
	}
}

func TestLogoutDuringRefreshStaysLoggedOut(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh/", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"ok": "true"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, mr, done := newTestClient(t, testConfig(srv.URL), nil)
	defer done()
	seedSession(t, client, "expired", "refresh-1")

	errc := make(chan error, 1)
	go func() {
		_, err := client.Get(context.Background(), "/projects/", nil)
		errc <- err
	}()

	// Log out while the refresh is held open, then let it complete. The
	// rotated token must not resurrect the cleared session.
	<-entered
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	close(release)

	select {
	case err := <-errc:
		if err != ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("suspended request never returned")
	}

	if client.SessionInfo().IsAuthenticated {
		t.Fatal("expected the session to stay logged out")
	}
	if got := client.store.AccessToken(); got != "" {
		t.Fatalf("rotated token resurrected a cleared session: %q", got)
	}
	if mr.Exists("goclient:session") {
		t.Fatal("expected no durable record after logout raced a refresh")
	}
}

func TestCallerContextCancelReleasesWaiter(t *testing.T) {
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer close(release)

	client, _, done := newTestClient(t, testConfig(srv.URL), nil)
	defer done()
	seedSession(t, client, "expired", "refresh-1")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := client.Get(ctx, "/projects/", nil)
		errc <- err
	}()

	// Give the request time to suspend on the refresh, then abandon it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled waiter never returned")
	}
}
