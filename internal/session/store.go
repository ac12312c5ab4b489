package session

import (
	"log/slog"
	"sync"
	"time"
)

// credentialInfo tracks an active Google credential for cleanup.
type credentialInfo struct {
	expiresAt  time.Time
	lastAccess time.Time
}

// bindingInfo tracks an MCP session binding for cleanup.
type bindingInfo struct {
	email      string
	lastAccess time.Time
}

// Store tracks which user accounts currently hold valid Google credentials
// and which MCP sessions have been bound to a user. It backs the stdio
// fallbacks of the auth resolver (explicit-user and single-user lookup)
// as well as session re-resolution on later requests within one MCP session.
type Store struct {
	credentials map[string]*credentialInfo // user email -> active credential
	bindings    map[string]*bindingInfo    // MCP session ID -> bound user

	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan bool
	bindingTimeout time.Duration
	logger         *slog.Logger
}

// NewStore creates a session store with a 24h binding timeout and the
// default logger.
func NewStore() *Store {
	return NewStoreWithLogger(24*time.Hour, slog.Default())
}

// NewStoreWithLogger creates a session store with a custom binding timeout
// and logger.
func NewStoreWithLogger(timeout time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		credentials:    make(map[string]*credentialInfo),
		bindings:       make(map[string]*bindingInfo),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan bool),
		bindingTimeout: timeout,
		logger:         logger,
	}

	go s.cleanupExpired()

	return s
}

// RegisterCredential records that the given user holds a valid Google
// credential until expiresAt. A zero expiresAt means the credential does
// not expire (typical for file-backed refresh tokens).
func (s *Store) RegisterCredential(email string, expiresAt time.Time) {
	if email == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[email] = &credentialInfo{
		expiresAt:  expiresAt,
		lastAccess: time.Now(),
	}
}

// RemoveCredential forgets the active credential for a user, e.g. after
// revocation or an auth failure that invalidates the stored token.
func (s *Store) RemoveCredential(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, email)
}

// HasActiveCredential reports whether the given user currently holds a
// valid, unexpired Google credential.
func (s *Store) HasActiveCredential(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.credentials[email]
	if !ok {
		return false
	}
	if !info.expiresAt.IsZero() && time.Now().After(info.expiresAt) {
		delete(s.credentials, email)
		return false
	}
	info.lastAccess = time.Now()
	return true
}

// SingleActiveUser returns the user email when exactly one user holds an
// active credential. With zero or multiple active users it returns
// ("", false): the caller cannot disambiguate and must not guess.
func (s *Store) SingleActiveUser() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var found string
	count := 0
	for email, info := range s.credentials {
		if !info.expiresAt.IsZero() && now.After(info.expiresAt) {
			delete(s.credentials, email)
			continue
		}
		found = email
		count++
		if count > 1 {
			return "", false
		}
	}
	if count != 1 {
		return "", false
	}
	return found, true
}

// ActiveUsers returns the emails of all users with unexpired credentials.
func (s *Store) ActiveUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	users := make([]string, 0, len(s.credentials))
	for email, info := range s.credentials {
		if !info.expiresAt.IsZero() && now.After(info.expiresAt) {
			continue
		}
		users = append(users, email)
	}
	return users
}

// BindSession associates an MCP session ID with a user email so later
// requests in the same session resolve without re-presenting a token.
// Empty session IDs (stdio transport has none) are ignored.
func (s *Store) BindSession(sessionID, email string) {
	if sessionID == "" || email == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[sessionID] = &bindingInfo{
		email:      email,
		lastAccess: time.Now(),
	}
}

// UserForSession returns the user bound to an MCP session, if any.
func (s *Store) UserForSession(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bindings[sessionID]
	if !ok {
		return "", false
	}
	info.lastAccess = time.Now()
	return info.email, true
}

// UnbindSession removes an MCP session binding, e.g. when the client
// disconnects.
func (s *Store) UnbindSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, sessionID)
}

// cleanupExpired periodically drops expired credentials and stale
// session bindings.
func (s *Store) cleanupExpired() {
	for {
		select {
		case <-s.cleanupTicker.C:
			s.mu.Lock()
			now := time.Now()
			expired := 0
			for email, info := range s.credentials {
				if !info.expiresAt.IsZero() && now.After(info.expiresAt) {
					delete(s.credentials, email)
					expired++
				}
			}
			stale := 0
			for sessionID, info := range s.bindings {
				if now.Sub(info.lastAccess) > s.bindingTimeout {
					delete(s.bindings, sessionID)
					stale++
				}
			}
			s.mu.Unlock()
			if expired > 0 || stale > 0 {
				s.logger.Info("Cleaned up session store",
					"expired_credentials", expired,
					"stale_bindings", stale)
			}
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (s *Store) Stop() {
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}
	if s.cleanupDone != nil {
		close(s.cleanupDone)
	}
}
