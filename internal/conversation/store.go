package conversation

import "sync"

// Store maps user identifiers to their conversation turns. It is safe for
// concurrent use. Conversations are created lazily on first append, live in
// memory only, and are lost on process exit.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]Turn
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		conversations: make(map[string][]Turn),
	}
}

// Get returns a copy of the user's conversation, oldest turn first, or an
// empty sequence if the user has none. Callers may modify the returned slice
// freely.
func (s *Store) Get(userID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.conversations[userID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Append adds turns to the end of the user's conversation in the order
// given, creating the conversation if absent.
func (s *Store) Append(userID string, turns ...Turn) {
	if len(turns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[userID] = append(s.conversations[userID], turns...)
}

// Trim retains only the last maxLen turns of the user's conversation,
// discarding the oldest first. No-op if the conversation is already within
// the bound.
func (s *Store) Trim(userID string, maxLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.conversations[userID]
	if len(turns) <= maxLen {
		return
	}
	s.conversations[userID] = ApplyBound(turns, maxLen)
}

// Clear removes the user's conversation entirely. Clearing a user with no
// conversation is a no-op.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, userID)
}

// Len reports the number of turns stored for a user.
func (s *Store) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations[userID])
}
