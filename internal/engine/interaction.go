package engine

import "github.com/covergen/pkg/collections"

// Interaction is a t-tuple of Singles on pairwise distinct factors, ordered
// by strictly increasing factor. Its id is its index in the engine's
// interaction arena, assigned in enumeration order; the Singles and Sets
// slices are immutable after enumeration and shared with clones.
type Interaction struct {
	ID int

	// Singles holds single ids, ascending by factor.
	Singles []int

	// Sets holds the ids of every DSet containing this interaction,
	// ascending.
	Sets []int

	// Rows is the intersection of the member Singles' row sets.
	Rows *collections.RowSet

	// IsCovered is true once Rows is non-empty.
	IsCovered bool

	// Deltas maps every DSet id this interaction is NOT a member of to
	// |Rows \ set.Rows|, the current separation. Values may dip negative
	// mid-update but are exact in the quiescent state while the
	// interaction is still undetectable.
	Deltas map[int]int64

	// IsDetectable is true once every delta has reached the requested
	// separation.
	IsDetectable bool
}

// DSet is a set of d distinct Interactions, ordered by strictly increasing
// interaction id. Its id is its index in the engine's set arena. The
// Interactions and Singles slices are immutable after enumeration and
// shared with clones.
type DSet struct {
	ID int

	// Interactions holds interaction ids, ascending.
	Interactions []int

	// Singles is the concatenation of the member interactions' single ids;
	// duplicates are kept on purpose so that issue accounting touches a
	// single once per membership.
	Singles []int

	// Rows is the union of the member interactions' row sets.
	Rows *collections.RowSet

	// LocationConflicts holds the ids of every other DSet that still
	// occurs in exactly the rows this set occurs in. It shrinks
	// monotonically; the set becomes locatable when it empties.
	LocationConflicts map[int]struct{}

	// IsLocatable is true once LocationConflicts is empty after the set
	// has appeared in at least one row.
	IsLocatable bool
}
