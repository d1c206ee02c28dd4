package linelog

import "sort"

// RevSet is a set of revision numbers.
type RevSet map[Rev]struct{}

// NewRevSet builds a set from the given revisions.
func NewRevSet(revs ...Rev) RevSet {
	s := make(RevSet, len(revs))
	for _, r := range revs {
		s[r] = struct{}{}
	}
	return s
}

// RevRange builds the set {start, ..., end-1}.
func RevRange(start, end Rev) RevSet {
	s := make(RevSet)
	for r := start; r < end; r++ {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether rev is in the set.
func (s RevSet) Contains(rev Rev) bool {
	_, ok := s[rev]
	return ok
}

// Add inserts rev into the set.
func (s RevSet) Add(rev Rev) {
	s[rev] = struct{}{}
}

// Remove deletes rev from the set.
func (s RevSet) Remove(rev Rev) {
	delete(s, rev)
}

// Clone returns an independent copy of the set.
func (s RevSet) Clone() RevSet {
	c := make(RevSet, len(s))
	for r := range s {
		c[r] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same revisions.
func (s RevSet) Equal(o RevSet) bool {
	if len(s) != len(o) {
		return false
	}
	for r := range s {
		if !o.Contains(r) {
			return false
		}
	}
	return true
}

// Sorted returns the revisions in ascending order.
func (s RevSet) Sorted() []Rev {
	revs := make([]Rev, 0, len(s))
	for r := range s {
		revs = append(revs, r)
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i] < revs[j] })
	return revs
}
