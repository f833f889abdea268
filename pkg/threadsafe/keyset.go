package threadsafe

import "sync"

// KeySet tracks keys that are currently claimed. A key can be held by one
// claimant at a time.
type KeySet[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

func NewKeySet[K comparable]() *KeySet[K] {
	return &KeySet[K]{keys: make(map[K]struct{})}
}

// TryAcquire claims key and reports false if it is already held.
func (s *KeySet[K]) TryAcquire(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.keys[key]; held {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *KeySet[K]) Release(key K) {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
}

func (s *KeySet[K]) Held(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.keys[key]
	return held
}

func (s *KeySet[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
