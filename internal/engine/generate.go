package engine

import (
	"time"

	"github.com/covergen/pkg/model"
)

// AddRow constructs one row under the controller's current heuristic and
// commits it. The column iteration order is reshuffled every round so that
// no factor is systematically favored by the seeding or tweaking passes.
func (e *Engine) AddRow() {
	e.rng.Shuffle(len(e.permutation), func(i, j int) {
		e.permutation[i], e.permutation[j] = e.permutation[j], e.permutation[i]
	})

	var row []int
	switch e.heuristic {
	case heuristicCOnly:
		row = e.seedRowS()
		e.tweakCOnly(row)
	case heuristicLOnly:
		var lockedSet *DSet
		var lockedInter *Interaction
		row, lockedSet, lockedInter = e.seedRowT()
		e.tweakLOnly(row, lockedSet, lockedInter)
	case heuristicLAndD:
		var locked *Interaction
		row, locked = e.seedRowI()
		e.tweakLAndD(row, locked)
	case heuristicDOnly:
		var locked *Interaction
		row, locked = e.seedRowRLocked(nil)
		if !e.heuristicAllLocked(row, locked) {
			e.reportOutOfMemory()
			return
		}
	case heuristicAll:
		row = e.seedRowR()
		if !e.heuristicAllGlobal(row) {
			e.reportOutOfMemory()
			return
		}
	default:
		row = e.seedRowR()
	}

	e.UpdateArray(row, true)
}

// Generate runs the engine loop: commit the partial prefix, then add rows
// until the score reaches zero, the score stagnates, or memory runs out.
// The rows accumulated so far are always part of the result; only callers
// decide whether a degraded status is fatal.
func (e *Engine) Generate(partial [][]int) *model.GenerationResult {
	start := time.Now()

	for _, row := range partial {
		e.UpdateArray(append([]int(nil), row...), true)
	}

	e.printStats(true)

	stagnation := 0
	for e.score > 0 {
		prev := e.score
		e.AddRow()
		if e.outOfMemory {
			break
		}
		if e.score == prev {
			stagnation++
		} else {
			stagnation = 0
		}
		if stagnation > e.stagnationLimit {
			break
		}
		e.printStats(false)
	}

	status := model.RunStatusCompleted
	switch {
	case e.score == 0:
		status = model.RunStatusCompleted
	case e.outOfMemory:
		status = model.RunStatusOutOfMemory
	default:
		status = model.RunStatusStagnated
	}

	return &model.GenerationResult{
		Rows:              e.rows,
		Status:            status,
		Score:             e.score,
		Duration:          time.Since(start),
		TotalProblems:     e.totalProblems,
		CoverageSolved:    e.isCovering,
		LocationSolved:    e.isLocating,
		DetectionSolved:   e.isDetecting,
		RowsFromPartial:   len(partial),
		HeuristicAtFinish: e.heuristic.String(),
	}
}
