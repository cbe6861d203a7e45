package workspace

import "github.com/pcouderc/worksched/core/model"

// Store caches the server-authoritative allocation list for one scope.
// The workspace owns the store exclusively; it is not safe for concurrent
// use on its own.
type Store struct {
	items []model.Allocation
	index map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Load replaces the baseline with a deep copy of items.
func (s *Store) Load(items []model.Allocation) {
	s.items = model.CloneAllocations(items)
	s.reindex()
}

// Baseline returns a deep copy of the cached allocations.
func (s *Store) Baseline() []model.Allocation {
	return model.CloneAllocations(s.items)
}

// Get looks up an allocation by id.
func (s *Store) Get(id string) (model.Allocation, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Allocation{}, false
	}
	return s.items[i].Clone(), true
}

// Upsert inserts or replaces a committed allocation, keeping positions
// stable for existing entries so display order does not jump.
func (s *Store) Upsert(a model.Allocation) {
	if i, ok := s.index[a.ID]; ok {
		s.items[i] = a.Clone()
		return
	}
	s.items = append(s.items, a.Clone())
	s.index[a.ID] = len(s.items) - 1
}

// Remove drops an allocation by id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
}

// Len returns the number of cached allocations.
func (s *Store) Len() int { return len(s.items) }

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, a := range s.items {
		s.index[a.ID] = i
	}
}
