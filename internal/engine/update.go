package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/covergen/pkg/model"
)

// UpdateArray appends row to the array and updates every score, counter and
// flag that the addition touches. With keep=false the score bookkeeping is
// still performed (that is what candidate scoring measures) but the row
// itself is rewound: it is erased from all row sets and popped from the row
// store.
//
// The caller keeps ownership of nothing: row is stored as-is.
func (e *Engine) UpdateArray(row []int, keep bool) {
	e.rows = append(e.rows, row)
	if e.output == OutputNormal && keep {
		e.logger.Info("> Pushed row:\t%s", rowString(row, "\t"))
	}
	rowIdx := len(e.rows) - 1

	rowInters := make([]int, 0, e.numRowInteractions())
	e.rowInteractions(row, func(id int) {
		rowInters = append(rowInters, id)
	})

	rowSets := make(map[int]struct{})
	for _, iid := range rowInters {
		inter := e.interactions[iid]
		for _, sid := range inter.Singles {
			e.singles[sid].Rows.Add(rowIdx)
		}
		inter.Rows.Add(rowIdx)
		for _, tid := range inter.Sets {
			e.sets[tid].Rows.Add(rowIdx)
			rowSets[tid] = struct{}{}
		}
	}

	e.updateScores(rowInters, rowSets)

	if !keep {
		for _, iid := range rowInters {
			inter := e.interactions[iid]
			for _, sid := range inter.Singles {
				e.singles[sid].Rows.Remove(rowIdx)
			}
			inter.Rows.Remove(rowIdx)
			for _, tid := range inter.Sets {
				e.sets[tid].Rows.Remove(rowIdx)
			}
		}
		e.rows = e.rows[:rowIdx]
		return
	}

	e.updateDontCares()
	if e.heuristic != heuristicAll {
		// Let the deep scorer skip this row later; with δ > 1 the same row
		// can still raise separations, so it stays attractive instead.
		if e.delta <= 1 {
			e.rowScores[rowKey(row)] = 1
		} else {
			e.rowScores[rowKey(row)] = math.MaxUint64
		}
	}
	e.updateHeuristic()
}

// updateScores walks the row's interactions and sets and settles all three
// property classes. Coverage must run before detection, detection before
// location: the is_covering/is_locating/is_detecting flags short-circuit
// later updates, so the ordering is observable.
func (e *Engine) updateScores(rowInters []int, rowSets map[int]struct{}) {
	numSets := int64(len(e.sets))

	// Coverage and detection hang off interactions.
	for _, iid := range rowInters {
		inter := e.interactions[iid]

		if !inter.IsCovered {
			inter.IsCovered = true
			for _, sid := range inter.Singles {
				s := e.singles[sid]
				e.factors[s.Factor].CIssues--
				s.CIssues--
				e.score--
			}
			e.score--
			e.coverageProblems--
			if e.coverageProblems == 0 {
				e.isCovering = true
			}
		}

		if e.mode != model.PropertyAll {
			continue
		}
		if inter.IsDetectable {
			continue
		}
		inter.IsDetectable = true // reset below if any separation still short

		// For every set in this row the interaction is not part of, the
		// separation will not actually move: pre-decrement so the global
		// increment below becomes a no-op, and pre-charge the issue
		// counters to offset the decrement the global pass will apply.
		for tid := range rowSets {
			if containsID(inter.Sets, tid) {
				continue
			}
			if inter.Deltas[tid] <= int64(e.delta) {
				for _, sid := range inter.Singles {
					s := e.singles[sid]
					e.factors[s.Factor].DIssues++
					s.DIssues++
					e.score++
				}
			}
			inter.Deltas[tid]--
		}
		for tid, sep := range inter.Deltas {
			sep++
			inter.Deltas[tid] = sep
			if sep < int64(e.delta) {
				inter.IsDetectable = false
			}
			if sep <= int64(e.delta) {
				for _, sid := range inter.Singles {
					s := e.singles[sid]
					e.factors[s.Factor].DIssues--
					s.DIssues--
					e.score--
				}
			}
		}
		if inter.IsDetectable {
			e.score--
			e.detectionProblems--
			if e.detectionProblems == 0 {
				e.isDetecting = true
			}
		}
	}

	// Location hangs off sets of interactions.
	if e.mode == model.PropertyCoverage || e.isLocating {
		return
	}
	for tid := range rowSets {
		t1 := e.sets[tid]
		if t1.IsLocatable {
			continue
		}
		if t1.Rows.Len() == 1 {
			// First appearance: drop the "never seen" conflict load, then
			// re-conflict against every other set debuting in this row.
			for _, sid := range t1.Singles {
				s := e.singles[sid]
				e.factors[s.Factor].LIssues -= numSets
				s.LIssues -= numSets
				e.score -= numSets
			}
			t1.LocationConflicts = make(map[int]struct{})
			for t2id := range rowSets {
				if t2id == tid || e.sets[t2id].Rows.Len() > 1 {
					continue
				}
				t1.LocationConflicts[t2id] = struct{}{}
				for _, sid := range t1.Singles {
					s := e.singles[sid]
					e.factors[s.Factor].LIssues++
					s.LIssues++
					e.score++
				}
			}
		} else {
			// Seen before: conflicts shrink to the sets sharing this row.
			solved := int64(0)
			for t2id := range t1.LocationConflicts {
				if _, inRow := rowSets[t2id]; inRow {
					continue
				}
				delete(t1.LocationConflicts, t2id)
				solved++
				t2 := e.sets[t2id]
				if _, ok := t2.LocationConflicts[tid]; !ok {
					panic("engine: location conflicts lost symmetry, bookkeeping bug upstream")
				}
				delete(t2.LocationConflicts, tid)
				for _, sid := range t2.Singles {
					s := e.singles[sid]
					e.factors[s.Factor].LIssues--
					s.LIssues--
					e.score--
				}
				if len(t2.LocationConflicts) == 0 {
					t2.IsLocatable = true
					e.score--
					e.locationProblems--
					if e.locationProblems == 0 {
						panic("engine: location solved while a conflicted set remains, bookkeeping bug upstream")
					}
				}
			}
			for _, sid := range t1.Singles {
				s := e.singles[sid]
				e.factors[s.Factor].LIssues -= solved
				s.LIssues -= solved
				e.score -= solved
			}
		}
		if len(t1.LocationConflicts) == 0 {
			t1.IsLocatable = true
			e.score--
			e.locationProblems--
			if e.locationProblems == 0 {
				e.isLocating = true
			}
		}
	}
}

// updateDontCares raises per-factor don't-care levels as each property class
// empties for the factor: none → coverage → coverage+location → all. A
// don't-care column is freed for random choice during row seeding.
func (e *Engine) updateDontCares() {
	for col := 0; col < e.numFactors; col++ {
		if e.dontCares[col] == model.PropertyNone && e.factors[col].CIssues == 0 {
			e.dontCares[col] = model.PropertyCoverage
			if e.debug {
				e.logger.Debug("All coverage issues associated with factor %d are solved", col)
			}
		}
		if e.mode != model.PropertyCoverage &&
			e.dontCares[col] == model.PropertyCoverage && e.factors[col].LIssues == 0 {
			e.dontCares[col] = model.PropertyCoverageLocation
			if e.debug {
				e.logger.Debug("All location issues associated with factor %d are solved", col)
			}
		}
		if e.mode == model.PropertyAll &&
			e.dontCares[col] == model.PropertyCoverageLocation && e.factors[col].DIssues == 0 {
			e.dontCares[col] = model.PropertyAll
			if e.debug {
				e.logger.Debug("All detection issues associated with factor %d are solved", col)
			}
		}
	}
}

// containsID reports membership in an ascending id slice.
func containsID(ids []int, id int) bool {
	i := sort.SearchInts(ids, id)
	return i < len(ids) && ids[i] == id
}

// rowKey is the canonical memoization key for a row.
func rowKey(row []int) string {
	return rowString(row, " ")
}

func rowString(row []int, sep string) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// parseRowKey turns a memoization key back into a row.
func parseRowKey(key string) []int {
	fields := strings.Fields(key)
	row := make([]int, len(fields))
	for i, f := range fields {
		v, _ := strconv.Atoi(f)
		row[i] = v
	}
	return row
}
