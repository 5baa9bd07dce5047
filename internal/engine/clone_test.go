package engine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covergen/pkg/model"
)

func TestClone_CopiesMutableState(t *testing.T) {
	e := newTestEngine(t, []int{2, 2, 2}, model.PropertyAll, 2, 1, 1)
	e.UpdateArray([]int{0, 0, 0}, true)
	e.UpdateArray([]int{1, 1, 0}, true)

	clone := e.Clone()
	require.NotNil(t, clone)

	assert.Equal(t, e.score, clone.score)
	assert.Equal(t, e.coverageProblems, clone.coverageProblems)
	assert.Equal(t, e.locationProblems, clone.locationProblems)
	assert.Equal(t, e.detectionProblems, clone.detectionProblems)
	assert.Equal(t, len(e.rows), len(clone.rows))

	for i := range e.singles {
		assert.Equal(t, e.singles[i].CIssues, clone.singles[i].CIssues)
		assert.Equal(t, e.singles[i].LIssues, clone.singles[i].LIssues)
		assert.Equal(t, e.singles[i].DIssues, clone.singles[i].DIssues)
		assert.True(t, e.singles[i].Rows.Equal(clone.singles[i].Rows))
	}
	for i := range e.interactions {
		assert.Equal(t, e.interactions[i].IsCovered, clone.interactions[i].IsCovered)
		assert.Equal(t, e.interactions[i].IsDetectable, clone.interactions[i].IsDetectable)
		assert.True(t, e.interactions[i].Rows.Equal(clone.interactions[i].Rows))
		assert.Equal(t, e.interactions[i].Deltas, clone.interactions[i].Deltas)
	}
	for i := range e.sets {
		assert.Equal(t, e.sets[i].IsLocatable, clone.sets[i].IsLocatable)
		assert.True(t, e.sets[i].Rows.Equal(clone.sets[i].Rows))
		assert.Equal(t, e.sets[i].LocationConflicts, clone.sets[i].LocationConflicts)
	}
}

func TestClone_SharesImmutableStructure(t *testing.T) {
	e := newTestEngine(t, []int{2, 2, 2}, model.PropertyAll, 2, 1, 1)
	clone := e.Clone()
	require.NotNil(t, clone)

	// The structural graph is shared, not copied.
	for i := range e.interactions {
		assert.Same(t, &e.interactions[i].Singles[0], &clone.interactions[i].Singles[0])
	}
	for i := range e.sets {
		assert.Same(t, &e.sets[i].Interactions[0], &clone.sets[i].Interactions[0])
	}
}

func TestClone_MutationIndependence(t *testing.T) {
	e := newTestEngine(t, []int{2, 2, 2}, model.PropertyAll, 2, 1, 1)
	e.UpdateArray([]int{0, 0, 0}, true)

	before := e.score
	beforeRows := len(e.rows)

	clone := e.Clone()
	require.NotNil(t, clone)
	clone.UpdateArray([]int{0, 1, 1}, false)

	// The live engine saw nothing.
	assert.Equal(t, before, e.score)
	assert.Len(t, e.rows, beforeRows)
	for _, s := range e.singles {
		assert.False(t, s.Rows.Contains(1))
	}
	assert.NotEqual(t, before, clone.score)
}

func TestClone_MemoryGuard(t *testing.T) {
	e := newTestEngine(t, []int{2, 2, 2}, model.PropertyCoverage, 2, 0, 0)
	// Keep 4 MiB live so the heap is above the 1 MiB limit however small
	// the rest of the test process is.
	ballast := make([]byte, 4<<20)
	defer runtime.KeepAlive(ballast)
	e.memoryLimitMB = 1 // exceeded while the ballast is live
	assert.Nil(t, e.Clone())
	assert.False(t, e.probeMemory())

	e.memoryLimitMB = 0
	assert.NotNil(t, e.Clone())
	assert.True(t, e.probeMemory())
}

func TestCloneScoring_MatchesCommittedCounters(t *testing.T) {
	// The deep scorer's measured row score is the weighted counter delta
	// between the live engine and a clone that applied the row without
	// keeping it. Those counters must be exactly the ones a real commit
	// would produce.
	e := newTestEngine(t, []int{2, 2, 2}, model.PropertyAll, 2, 1, 1)
	e.UpdateArray([]int{0, 0, 0}, true)

	row := []int{1, 1, 1}

	scored := e.Clone()
	require.NotNil(t, scored)
	scored.UpdateArray(append([]int(nil), row...), false)

	committed := e.Clone()
	require.NotNil(t, committed)
	committed.UpdateArray(append([]int(nil), row...), true)

	var fromScoring, fromCommit uint64
	for id, s := range e.singles {
		weight := uint64(e.levels[s.Factor])
		fromScoring += uint64(s.CIssues-scored.singles[id].CIssues) * weight / 3
		fromScoring += uint64(s.LIssues-scored.singles[id].LIssues) * weight / 2
		fromScoring += uint64(s.DIssues-scored.singles[id].DIssues) * weight
		fromCommit += uint64(s.CIssues-committed.singles[id].CIssues) * weight / 3
		fromCommit += uint64(s.LIssues-committed.singles[id].LIssues) * weight / 2
		fromCommit += uint64(s.DIssues-committed.singles[id].DIssues) * weight
	}
	assert.Equal(t, fromCommit, fromScoring)
	assert.Equal(t, committed.score, scored.score)
}
