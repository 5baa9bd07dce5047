package engine

import "github.com/covergen/pkg/collections"

// Single is one (factor, value) pair. It tracks the rows in which it occurs
// and a rolling count of the unresolved coverage, location and detection
// issues it is involved in. The issue counters drive every row-seeding and
// row-tweaking decision the engine makes.
type Single struct {
	ID     int
	Factor int
	Value  int

	Rows *collections.RowSet

	CIssues int64
	LIssues int64
	DIssues int64
}

// issueScore is the weighted issue total used by the single-driven row
// initializer. The weights are calibration knobs; change them and the
// produced arrays change size.
func (s *Single) issueScore() int64 {
	return s.CIssues/3 + s.LIssues/2 + s.DIssues
}

// Factor is one column of the array: its level bound, its Singles, and
// issue counters aggregated over them. A factor whose counters hit zero for
// a property class is a candidate for the corresponding don't-care level.
type Factor struct {
	ID      int
	Level   int
	Singles []*Single

	CIssues int64
	LIssues int64
	DIssues int64
}
