package chat

import "sync"

// Store is the ordered, append-only transcript plus the set of remote
// message ids that have already been turned into Messages. Both are
// scoped to one session and cleared together.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	seen     map[string]struct{}
}

func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// Append adds a message at the end. Insertion order is preserved and
// entries are never reordered or removed except by Clear.
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Seen reports whether a remote id was already processed.
func (s *Store) Seen(remoteID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[remoteID]
	return ok
}

// MarkSeen records a remote id as processed. Empty ids are ignored.
func (s *Store) MarkSeen(remoteID string) {
	if remoteID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[remoteID] = struct{}{}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns a copy of the transcript in order. The presentation
// layer renders from snapshots; the store keeps the canonical order.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the transcript and the processed-id set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.seen = make(map[string]struct{})
}
