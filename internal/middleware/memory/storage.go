// Package memory is a trivial expiring in-memory cache used by the response
// cache middleware.
package memory

import (
	"sync"
	"time"
)

type entry struct {
	content  []byte
	deadline time.Time
}

// Storage ...
type Storage struct {
	mu sync.Mutex
	m  map[string]entry
}

// NewStorage ...
func NewStorage() *Storage {
	return &Storage{
		m: make(map[string]entry),
	}
}

// Get returns the cached content or nil. Expired entries are evicted on read.
func (s *Storage) Get(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return nil
	}

	if time.Now().After(e.deadline) {
		delete(s.m, key)
		return nil
	}

	return e.content
}

// Set stores content under key for the given duration.
func (s *Storage) Set(key string, content []byte, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = entry{
		content:  content,
		deadline: time.Now().Add(duration),
	}
}
