package housekeeping

import "slices"

// IDSet is a set of tag IDs.
type IDSet map[uint]struct{}

// NewIDSet returns a set holding ids. The zero ID is never a valid tag and
// is dropped.
func NewIDSet(ids ...uint) IDSet {
	s := make(IDSet, len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids into the set, ignoring the zero ID.
func (s IDSet) Add(ids ...uint) {
	for _, id := range ids {
		if id != 0 {
			s[id] = struct{}{}
		}
	}
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Union adds every ID of other to s.
func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Difference returns the IDs of s that are not in other.
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if !other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the IDs in ascending order.
func (s IDSet) Sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
