package session

import (
	"context"
	"log"
	"sync"
)

// Store holds the live session in process memory and mirrors every mutation to
// durable storage. Memory is authoritative; the mirror exists only so a restart
// can rehydrate.
//
//	Docs: docs/session.md
type Store struct {
	mu      sync.RWMutex
	current Session
	seq     uint64
	storage Storage

	// persistMu serializes mirror writes. Each mutation captures a sequence
	// number under mu; a mirror write whose sequence is older than the last
	// one persisted is discarded, so two racing mutations can never leave the
	// older snapshot as the durable record.
	persistMu    sync.Mutex
	persistedSeq uint64
}

// NewStore creates a session [Store] over the given durable storage. storage
// may be nil, in which case the session lives in memory only and does not
// survive a restart.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Rehydrate reads the durable record once and seeds the in-memory session.
// A missing record leaves the store logged out. A corrupt record is discarded
// and the durable copy cleared so the next start is clean.
func (s *Store) Rehydrate(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	data, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	sess, err := decodeRecord(data)
	if err != nil {
		log.Print("goClient: discarding corrupt session record")
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			log.Print("goClient: session record cleanup failed")
		}
		return nil
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Get returns the current in-memory session. No side effects.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// AccessToken returns the current access token, or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

// SetAuth atomically replaces the full session and mirrors it to durable
// storage. The in-memory commit succeeds even when the mirror write fails;
// the mirror error is returned for the caller to report.
func (s *Store) SetAuth(ctx context.Context, user *User, accessToken, refreshToken string) error {
	s.mu.Lock()
	s.current = derive(accessToken, refreshToken, user)
	snapshot, seq := s.current, s.nextSeq()
	s.mu.Unlock()

	return s.persist(ctx, snapshot, seq)
}

// UpdateAccessToken atomically replaces only the access token, leaving the
// refresh token and user untouched, and mirrors the result. Used exclusively
// by the refresh coordinator after a successful refresh.
//
// A rotation against a session with no refresh token is discarded: the session
// was cleared after the refresh started, and the new token must not resurrect
// it in memory or in the durable record.
func (s *Store) UpdateAccessToken(ctx context.Context, accessToken string) error {
	s.mu.Lock()
	if s.current.RefreshToken == "" {
		s.mu.Unlock()
		return nil
	}
	s.current = derive(accessToken, s.current.RefreshToken, s.current.User)
	snapshot, seq := s.current, s.nextSeq()
	s.mu.Unlock()

	return s.persist(ctx, snapshot, seq)
}

// Clear atomically resets to the unauthenticated empty session and removes the
// durable record. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	seq := s.nextSeq()
	s.mu.Unlock()

	if s.storage == nil {
		return nil
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.persistedSeq {
		return nil
	}
	if err := s.storage.Clear(ctx); err != nil {
		return err
	}
	s.persistedSeq = seq
	return nil
}

// nextSeq must be called with mu held.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Store) persist(ctx context.Context, snapshot Session, seq uint64) error {
	if s.storage == nil {
		return nil
	}

	data, err := encodeRecord(snapshot)
	if err != nil {
		return err
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.persistedSeq {
		// A newer snapshot already reached the mirror.
		return nil
	}
	if err := s.storage.Save(ctx, data); err != nil {
		return err
	}
	s.persistedSeq = seq
	return nil
}
