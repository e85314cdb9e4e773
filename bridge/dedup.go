package bridge

import "sync"

const (
	// processedHighWater is the set size that triggers eviction.
	processedHighWater = 10000
	// processedKeep is the number of most recent entries kept after eviction.
	processedKeep = 5000
)

// processedSet is a bounded, insertion-ordered set of relayed event ids.
// Dedup state lives only in the owning bridge's memory; a process restart
// starts empty and may re-relay, which is the accepted at-least-once
// semantic.
type processedSet struct {
	mutex sync.RWMutex
	ids   map[string]struct{}
	order []string
}

func newProcessedSet() *processedSet {
	return &processedSet{
		ids: make(map[string]struct{}),
	}
}

// Contains reports whether the id has already been relayed.
func (s *processedSet) Contains(id string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Add marks an id as relayed. Re-adding an existing id is a no-op.
func (s *processedSet) Add(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

// Len returns the current set size.
func (s *processedSet) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.ids)
}

// Trim evicts the oldest entries once the set grows past the high-water
// mark, keeping only the most recently added ones.
func (s *processedSet) Trim() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.order) <= processedHighWater {
		return
	}

	cut := len(s.order) - processedKeep
	for _, id := range s.order[:cut] {
		delete(s.ids, id)
	}
	s.order = append([]string(nil), s.order[cut:]...)
}
