package dataflow

import (
	"sort"

	"github.com/dolthub/swiss"
)

// IntSet is a set of small non-negative integers: var-ids, definition-ids,
// or array-ids, depending on the analysis. Every set-valued dataflow
// analysis in this module (uninit, gcinfo liveness/interference/reaching-
// defs, renormalize) builds its lattice element out of IntSet rather than
// a bare Go map, since these sets are rebuilt and merged once per block per
// worklist iteration across every function in the module — the same
// workload mna-nenuphar's swiss-table-backed Map is built for.
type IntSet struct {
	m *swiss.Map[int, struct{}]
}

// NewIntSet returns an empty set with room for at least capacity entries.
func NewIntSet(capacity int) IntSet {
	if capacity < 1 {
		capacity = 1
	}
	return IntSet{m: swiss.NewMap[int, struct{}](uint32(capacity))}
}

// Add inserts v into the set.
func (s IntSet) Add(v int) { s.m.Put(v, struct{}{}) }

// Remove deletes v from the set, if present.
func (s IntSet) Remove(v int) { s.m.Delete(v) }

// Has reports whether v is in the set.
func (s IntSet) Has(v int) bool {
	_, ok := s.m.Get(v)
	return ok
}

// Len returns the number of elements in the set.
func (s IntSet) Len() int { return s.m.Count() }

// Clone returns an independent copy of s.
func (s IntSet) Clone() IntSet {
	out := NewIntSet(s.Len())
	s.m.Iter(func(k int, _ struct{}) bool {
		out.Add(k)
		return false
	})
	return out
}

// UnionInto adds every element of other into s and returns s.
func (s IntSet) UnionInto(other IntSet) IntSet {
	if other.m == nil {
		return s
	}
	other.m.Iter(func(k int, _ struct{}) bool {
		s.Add(k)
		return false
	})
	return s
}

// IntersectInto removes from s every element not present in other and
// returns s.
func (s IntSet) IntersectInto(other IntSet) IntSet {
	var drop []int
	s.m.Iter(func(k int, _ struct{}) bool {
		if !other.Has(k) {
			drop = append(drop, k)
		}
		return false
	})
	for _, k := range drop {
		s.Remove(k)
	}
	return s
}

// SubtractInto removes from s every element present in other and returns
// s.
func (s IntSet) SubtractInto(other IntSet) IntSet {
	if other.m == nil {
		return s
	}
	other.m.Iter(func(k int, _ struct{}) bool {
		s.Remove(k)
		return false
	})
	return s
}

// Equal reports whether s and other contain the same elements.
func (s IntSet) Equal(other IntSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	eq := true
	s.m.Iter(func(k int, _ struct{}) bool {
		if !other.Has(k) {
			eq = false
			return true
		}
		return false
	})
	return eq
}

// ToSortedSlice returns the set's elements in ascending order. Swiss-map
// iteration order is unspecified, so every place this module emits
// user-visible or test-visible output from an IntSet goes through this
// method for determinism.
func (s IntSet) ToSortedSlice() []int {
	if s.m == nil {
		return nil
	}
	out := make([]int, 0, s.Len())
	s.m.Iter(func(k int, _ struct{}) bool {
		out = append(out, k)
		return false
	})
	sort.Ints(out)
	return out
}

// CopyIntSet assigns a clone of src into *dst, satisfying the
// Framework.Copy contract's deep-copy requirement.
func CopyIntSet(dst *IntSet, src IntSet) {
	*dst = src.Clone()
}
