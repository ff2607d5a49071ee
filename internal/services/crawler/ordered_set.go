package crawler

// OrderedIDSet is an insertion-ordered set of product ids.
// The 1-based insertion position of an id is its global rank.
// Not safe for concurrent use; each crawl owns its own set.
type OrderedIDSet struct {
	index map[string]int
	ids   []string
}

// NewOrderedIDSet creates an empty set
func NewOrderedIDSet() *OrderedIDSet {
	return &OrderedIDSet{
		index: make(map[string]int),
	}
}

// Add inserts id and reports whether it was new. Empty ids are ignored.
func (s *OrderedIDSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

// AddAll inserts ids in order and returns how many were new
func (s *OrderedIDSet) AddAll(ids []string) int {
	added := 0
	for _, id := range ids {
		if s.Add(id) {
			added++
		}
	}
	return added
}

func (s *OrderedIDSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IndexOf returns the 0-based insertion index of id, or -1
func (s *OrderedIDSet) IndexOf(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// Rank returns the 1-based insertion position of id, or 0 when absent
func (s *OrderedIDSet) Rank(id string) int {
	return s.IndexOf(id) + 1
}

func (s *OrderedIDSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order
func (s *OrderedIDSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
