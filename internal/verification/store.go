package verification

import "sync"

// Store is the keyed record storage backing the ledger. The ledger
// serializes all access to a given identity itself, so implementations
// only need to be safe for concurrent use across identities.
//
// ForEach visits a snapshot of the entries; records added or removed
// mid-iteration may or may not be seen
type Store interface {
	Get(identity string) (*Record, bool)
	Set(identity string, r *Record)
	Delete(identity string)
	ForEach(fn func(identity string, r *Record) bool)
}

// MemoryStore is the default in-process Store. A restart forgets all
// pending codes and cooldowns, which callers must tolerate
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Get(identity string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[identity]
	return r, ok
}

func (s *MemoryStore) Set(identity string, r *Record) {
	s.mu.Lock()
	s.records[identity] = r
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(identity string) {
	s.mu.Lock()
	delete(s.records, identity)
	s.mu.Unlock()
}

func (s *MemoryStore) ForEach(fn func(identity string, r *Record) bool) {
	// Iterate over a key snapshot so callers can delete entries while
	// we walk. An entry gone by the time we revisit it is fine
	s.mu.RLock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	for _, k := range keys {
		r, ok := s.Get(k)
		if !ok {
			continue
		}

		if !fn(k, r) {
			return
		}
	}
}

// Len is only used by tests and the sweeper's debug logging
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
