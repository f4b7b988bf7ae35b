package finder

// Subsumes returns the first found key that is a subset of candidate.
// A candidate containing a confirmed key is unique already and can be skipped.
func Subsumes(candidate Candidate, found []Candidate) (Candidate, bool) {
	for _, key := range found {
		if candidate.Contains(key) {
			return key, true
		}
	}
	return nil, false
}

// FoundSet is the growing collection of confirmed keys, in discovery order.
// It is not safe for concurrent writes; the engine only adds between
// size classes.
type FoundSet struct {
	keys []Candidate
}

// Add records a confirmed key.
func (s *FoundSet) Add(c Candidate) {
	s.keys = append(s.keys, c.Clone())
}

// Covering returns the found key that makes candidate redundant, if any.
func (s *FoundSet) Covering(candidate Candidate) (Candidate, bool) {
	return Subsumes(candidate, s.keys)
}

// Len returns the number of confirmed keys.
func (s *FoundSet) Len() int {
	return len(s.keys)
}

// Keys returns the confirmed keys in discovery order.
func (s *FoundSet) Keys() []Candidate {
	return s.keys
}
