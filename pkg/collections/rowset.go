// Package collections provides the compact set types backing the engine's
// row bookkeeping.
package collections

import "math/bits"

// RowSet is a set of row indices backed by a bit vector. Every Single,
// Interaction and DSet in the engine carries one, and rows are only ever
// appended, so the set grows monotonically at the high end.
//
// Memory comparison for 1M rows:
//   - map[int]struct{}: ~48MB with bucket overhead
//   - []bool: ~1MB
//   - RowSet: ~128KB
type RowSet struct {
	words []uint64
	size  int
}

// NewRowSet creates a row set sized for the given number of rows. The set
// still grows automatically when a higher index is added.
func NewRowSet(size int) *RowSet {
	if size <= 0 {
		size = 64
	}
	return &RowSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Add inserts row index i.
func (s *RowSet) Add(i int) {
	if i < 0 {
		return
	}
	w := i / 64
	if w >= len(s.words) {
		s.grow(i + 1)
	}
	s.words[w] |= 1 << (i % 64)
	if i >= s.size {
		s.size = i + 1
	}
}

// Remove deletes row index i.
func (s *RowSet) Remove(i int) {
	if i < 0 || i/64 >= len(s.words) {
		return
	}
	s.words[i/64] &^= 1 << (i % 64)
}

// Contains reports whether row index i is in the set.
func (s *RowSet) Contains(i int) bool {
	if i < 0 || i/64 >= len(s.words) {
		return false
	}
	return s.words[i/64]&(1<<(i%64)) != 0
}

// Len returns the number of rows in the set.
func (s *RowSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set holds no rows.
func (s *RowSet) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s *RowSet) grow(newSize int) {
	need := (newSize + 63) / 64
	if need <= len(s.words) {
		return
	}
	newCap := len(s.words) * 2
	if newCap < need {
		newCap = need
	}
	words := make([]uint64, newCap)
	copy(words, s.words)
	s.words = words
}

// Clone returns a deep copy of the set.
func (s *RowSet) Clone() *RowSet {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return &RowSet{words: words, size: s.size}
}

// CopyFrom overwrites the receiver with the contents of other.
func (s *RowSet) CopyFrom(other *RowSet) {
	if len(s.words) < len(other.words) {
		s.words = make([]uint64, len(other.words))
	}
	n := copy(s.words, other.words)
	for i := n; i < len(s.words); i++ {
		s.words[i] = 0
	}
	s.size = other.size
}

// UnionWith adds every row of other to the receiver.
func (s *RowSet) UnionWith(other *RowSet) {
	if other == nil {
		return
	}
	if len(other.words) > len(s.words) {
		s.grow(other.size)
	}
	for i := 0; i < len(other.words) && i < len(s.words); i++ {
		s.words[i] |= other.words[i]
	}
	if other.size > s.size {
		s.size = other.size
	}
}

// IntersectWith drops every row of the receiver not present in other.
func (s *RowSet) IntersectWith(other *RowSet) {
	if other == nil {
		for i := range s.words {
			s.words[i] = 0
		}
		return
	}
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		s.words[i] &= other.words[i]
	}
	for i := n; i < len(s.words); i++ {
		s.words[i] = 0
	}
}

// DiffCount returns |s \ other|, the number of rows in the receiver that are
// not in other. This is the separation measure behind detection deltas.
func (s *RowSet) DiffCount(other *RowSet) int {
	n := 0
	for i, w := range s.words {
		if other != nil && i < len(other.words) {
			w &^= other.words[i]
		}
		n += bits.OnesCount64(w)
	}
	return n
}

// SubsetOf reports whether every row of the receiver is in other.
func (s *RowSet) SubsetOf(other *RowSet) bool {
	for i, w := range s.words {
		var o uint64
		if other != nil && i < len(other.words) {
			o = other.words[i]
		}
		if w&^o != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether two sets hold exactly the same rows.
func (s *RowSet) Equal(other *RowSet) bool {
	if other == nil {
		return s.IsEmpty()
	}
	n := len(s.words)
	if len(other.words) > n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		if a != b {
			return false
		}
	}
	return true
}

// Iterate calls fn for each row index in ascending order until fn returns
// false.
func (s *RowSet) Iterate(fn func(i int) bool) {
	for wi, w := range s.words {
		base := wi * 64
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			if !fn(base + tz) {
				return
			}
			w &= w - 1
		}
	}
}

// ToSlice returns all row indices in ascending order.
func (s *RowSet) ToSlice() []int {
	out := make([]int, 0, s.Len())
	s.Iterate(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}
