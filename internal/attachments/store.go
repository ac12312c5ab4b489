package attachments

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a stored attachment stays downloadable.
const DefaultTTL = 1 * time.Hour

// MaxAttachmentSize defines the maximum attachment size in bytes (25MB).
const MaxAttachmentSize = 25 * 1024 * 1024

// Record describes a stored attachment.
type Record struct {
	ID        string
	Filename  string
	MimeType  string
	Size      int64
	Path      string
	ExpiresAt time.Time
}

// Store writes attachment payloads to a temp directory under random IDs
// and serves them until they expire. Metadata lives in memory only; a
// process restart drops all records and the cleanup pass removes any
// leftover files.
type Store struct {
	dir     string
	ttl     time.Duration
	records map[string]*Record

	mu            sync.RWMutex
	cleanupTicker *time.Ticker
	cleanupDone   chan bool
	logger        *slog.Logger
}

// NewStore creates an attachment store rooted at dir. An empty dir uses a
// fresh directory under the OS temp dir.
func NewStore(dir string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "workspace-mcp-attachments-")
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment directory: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}

	s := &Store{
		dir:           dir,
		ttl:           ttl,
		records:       make(map[string]*Record),
		cleanupTicker: time.NewTicker(10 * time.Minute),
		cleanupDone:   make(chan bool),
		logger:        logger,
	}

	go s.cleanupExpired()

	return s, nil
}

// Put stores an attachment payload and returns its record. The download
// ID is random, so a URL cannot be guessed from message metadata.
func (s *Store) Put(filename, mimeType string, data []byte) (*Record, error) {
	if int64(len(data)) > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", len(data), MaxAttachmentSize)
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write attachment file: %w", err)
	}

	record := &Record{
		ID:        id,
		Filename:  filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Path:      path,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.records[id] = record
	s.mu.Unlock()

	return record, nil
}

// Get returns the record for an attachment ID, or false when the ID is
// unknown or expired.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(record.ExpiresAt) {
		s.remove(id)
		return nil, false
	}
	return record, true
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// remove deletes a record and its file.
func (s *Store) remove(id string) {
	s.mu.Lock()
	record, ok := s.records[id]
	delete(s.records, id)
	s.mu.Unlock()

	if ok {
		if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove attachment file",
				"path", record.Path,
				"error", err)
		}
	}
}

// cleanupExpired periodically removes expired attachments.
func (s *Store) cleanupExpired() {
	for {
		select {
		case <-s.cleanupTicker.C:
			now := time.Now()
			s.mu.RLock()
			var expired []string
			for id, record := range s.records {
				if now.After(record.ExpiresAt) {
					expired = append(expired, id)
				}
			}
			s.mu.RUnlock()

			for _, id := range expired {
				s.remove(id)
			}
			if len(expired) > 0 {
				s.logger.Info("Cleaned up expired attachments", "count", len(expired))
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
