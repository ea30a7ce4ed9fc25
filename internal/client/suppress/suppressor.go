// Package suppress tracks mutations this client just issued so their echo on
// the push stream can be dropped instead of double-applied.
package suppress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Suppressor is a time-bounded set of local-operation keys. A present,
// unexpired key means "the next matching push event is our own echo".
type Suppressor struct {
	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
	now     func() time.Time
}

// New creates an empty suppressor.
func New() *Suppressor {
	return &Suppressor{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Key derives a local-operation key from an event type, the reservation id
// or customer key, and the reservation's date and time. The derivation must
// be byte-identical on the writer side (mutation/undo managers) and the
// reader side (sync client event handler).
func Key(eventType, entityKey, date, timeSlot string) string {
	return fmt.Sprintf("%s:%s:%s:%s", eventType, entityKey, date, NormalizeClock(timeSlot))
}

// NormalizeClock canonicalizes a clock string to zero-padded "HH:MM".
// Inputs it cannot parse are returned unchanged so a malformed writer key
// still matches the same malformed reader key.
func NormalizeClock(s string) string {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return s
	}
	h, m := parts[0], parts[1]
	if len(h) == 1 {
		h = "0" + h
	}
	if len(m) == 1 {
		m = "0" + m
	}
	return h + ":" + m
}

// Mark inserts key with the given lifetime. Marking an existing key
// overwrites its expiry.
func (s *Suppressor) Mark(key string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.now().Add(ttl)
}

// ConsumeIfPresent performs a single check-and-remove. It reports true only
// for a present, unexpired key. The entry is deleted in every present case:
// an expired key must never hide a genuine later change, and deleting it
// bounds the set.
func (s *Suppressor) ConsumeIfPresent(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	return s.now().Before(expiry)
}

// Len returns the number of tracked keys, expired ones included.
func (s *Suppressor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
