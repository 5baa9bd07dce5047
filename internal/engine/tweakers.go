package engine

import (
	"math"

	"github.com/covergen/pkg/model"
)

// tweakCOnly is the lightweight row tweaker: it only chases coverage. Each
// column is scored by how many already-covered interactions it participates
// in (minus the uncovered ones), the worst columns get their values cycled
// until the picture improves, and a final pass hunts for anything still
// missing.
func (e *Engine) tweakCOnly(row []int) {
	problems := make([]int, e.numFactors)
	dontCares := append([]model.PropertyMode(nil), e.dontCares...)

	e.rowInteractions(row, func(id int) {
		inter := e.interactions[id]
		if !inter.Rows.IsEmpty() { // interaction already covered
			for _, sid := range inter.Singles {
				// don't account for interactions involving completed factors
				if dontCares[e.singles[sid].Factor] != model.PropertyNone {
					return
				}
			}
			for _, sid := range inter.Singles {
				problems[e.singles[sid].Factor]++
			}
		} else { // not covered; reward the factors involved instead
			for _, sid := range inter.Singles {
				problems[e.singles[sid].Factor]--
			}
		}
	})

	maxProblems := 0
	for col := 0; col < e.numFactors; col++ {
		if problems[col] > maxProblems {
			maxProblems = problems[col]
		}
	}
	if maxProblems == 0 { // row is good enough as is
		return
	}

	// Try altering the values contributing the least on the worst columns.
	for i := 0; i < e.numFactors; i++ {
		col := e.permutation[i]
		if problems[col] != maxProblems {
			continue
		}
		tempProblems := make([]int, e.numFactors)
		improved := false
		for v := 1; v < e.levels[col]; v++ {
			row[col] = (row[col] + 1) % e.levels[col]
			if e.recountProblems(row, tempProblems) < maxProblems {
				improved = true
				break
			}
		}
		if improved {
			return
		}
		row[col] = (row[col] + 1) % e.levels[col] // cycled back to the original
	}

	// Last resort: go looking for anything at all that is missing.
	for i := 0; i < e.numFactors; i++ {
		col := e.permutation[i]
		if dontCares[col] != model.PropertyNone {
			continue
		}
		improved := false
		for v := 0; v < e.levels[col]; v++ {
			row[col] = (row[col] + 1) % e.levels[col]
			improved = false
			e.rowInteractions(row, func(id int) {
				inter := e.interactions[id]
				if inter.Rows.IsEmpty() { // found an uncovered interaction
					for _, sid := range inter.Singles {
						dontCares[e.singles[sid].Factor] = model.PropertyCoverage
					}
					improved = true // keep going, mark as many columns as possible
				}
			})
			if improved {
				break // keep this factor at this value
			}
		}
		if !improved {
			row[col] = e.rng.Intn(e.levels[col])
		}
	}
}

// recountProblems rescores a candidate mutation of the row for tweakCOnly.
// problems accumulates across calls on purpose; the returned value is the
// worst count among factors that still have coverage work.
func (e *Engine) recountProblems(row []int, problems []int) int {
	e.rowInteractions(row, func(id int) {
		inter := e.interactions[id]
		if !inter.Rows.IsEmpty() {
			for _, sid := range inter.Singles {
				if e.singles[sid].CIssues == 0 { // completed single, skip
					return
				}
			}
			for _, sid := range inter.Singles {
				problems[e.singles[sid].Factor]++
			}
		} else {
			for _, sid := range inter.Singles {
				problems[e.singles[sid].Factor]--
			}
		}
	})

	maxProblems := math.MinInt
	for col := 0; col < e.numFactors; col++ {
		if e.factors[col].Singles[row[col]].CIssues == 0 {
			continue // already completed factor
		}
		if problems[col] > maxProblems {
			maxProblems = problems[col]
		}
	}
	return maxProblems
}

// tweakLOnly holds the locked interaction's columns fixed and, for every
// free column, picks the value whose single appears least among the singles
// of the locked set's remaining location conflicts.
func (e *Engine) tweakLOnly(row []int, lockedSet *DSet, lockedInter *Interaction) {
	lockedCols := make([]bool, e.numFactors)
	for _, sid := range lockedInter.Singles {
		lockedCols[e.singles[sid].Factor] = true
	}

	scores := make([]int64, len(e.singles))
	for tid := range lockedSet.LocationConflicts {
		for _, sid := range e.sets[tid].Singles {
			scores[sid]++
		}
	}

	// A larger score means the single feeds more of the remaining conflicts.
	for col := 0; col < e.numFactors; col++ {
		if lockedCols[col] {
			continue
		}
		bestVal := e.rng.Intn(e.levels[col])
		bestScore := int64(math.MaxInt64)
		for v := 0; v < e.levels[col]; v++ {
			if s := scores[e.singleBase[col]+v]; s < bestScore {
				bestVal = v
				bestScore = s
			}
		}
		if bestScore != 0 {
			row[col] = bestVal // else leave it random
		}
	}
}

// tweakLAndD is tweakLOnly's detection sibling: free columns are chosen to
// avoid the singles of the sets the locked interaction still needs
// separation from, weighted by how much separation is missing.
func (e *Engine) tweakLAndD(row []int, locked *Interaction) {
	lockedCols := make([]bool, e.numFactors)
	for _, sid := range locked.Singles {
		lockedCols[e.singles[sid].Factor] = true
	}

	scores := make([]int64, len(e.singles))
	for tid, sep := range locked.Deltas {
		if sep >= int64(e.delta) {
			continue // separation already sufficient
		}
		for _, sid := range e.sets[tid].Singles {
			scores[sid] += int64(e.delta) - sep
		}
	}

	for col := 0; col < e.numFactors; col++ {
		if lockedCols[col] {
			continue
		}
		bestVal := e.rng.Intn(e.levels[col])
		bestScore := int64(math.MaxInt64)
		for v := 0; v < e.levels[col]; v++ {
			if s := scores[e.singleBase[col]+v]; s < bestScore {
				bestVal = v
				bestScore = s
			}
		}
		if bestScore != 0 {
			row[col] = bestVal // else leave it random
		}
	}
}
