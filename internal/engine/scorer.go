package engine

import (
	"context"
	"math"
	"runtime"

	"github.com/covergen/pkg/errors"
	"github.com/covergen/pkg/parallel"
)

// candidate is one complete row assignment queued for deep scoring.
type candidate struct {
	row []int
	key string
}

// heuristicAllGlobal is the deep scorer: it enumerates every assignment of
// the free columns, scores each candidate on a clone of the engine, and
// rewrites row with the best scorer. Results are memoized across rows in
// rowScores; the memo prune threshold minPositiveScore is load-bearing for
// performance, not correctness.
//
// Returns false when the memory probe refuses the fan-out.
func (e *Engine) heuristicAllGlobal(row []int) bool {
	if !e.probeMemory() {
		return false
	}

	cands := e.collectCandidates(row, nil, true)
	if !e.scoreCandidates(cands, nil) {
		return false
	}

	best := uint64(0)
	e.minPositiveScore = math.MaxUint64
	var bestRows []string
	for key, score := range e.rowScores {
		if score >= best { // better or tied
			if score > best {
				best = score
				bestRows = bestRows[:0]
			}
			bestRows = append(bestRows, key)
		}
		if score < e.minPositiveScore {
			e.minPositiveScore = score
		}
	}
	if e.minPositiveScore == math.MaxUint64 {
		e.minPositiveScore = 0 // shouldn't ever happen
	}
	// Next time, skip candidates scoring below two thirds of (min + best).
	e.minPositiveScore = 2 * (e.minPositiveScore + best) / 3
	if e.minPositiveScore == 0 {
		e.minPositiveScore = 1
	}

	choice := bestRows[e.rng.Intn(len(bestRows))]
	copy(row, parseRowKey(choice))

	// The chosen row can keep helping separations when δ > 1; otherwise it
	// is spent and the memo should skip it from now on.
	if e.delta <= 1 {
		e.rowScores[choice] = 0
	} else {
		e.rowScores[choice] = e.minPositiveScore - 1
	}
	return true
}

// heuristicAllLocked is the deep scorer constrained to rows containing the
// locked interaction: only the free columns vary and scores go to a local
// map, leaving the global memo untouched.
func (e *Engine) heuristicAllLocked(row []int, locked *Interaction) bool {
	if !e.probeMemory() {
		return false
	}

	local := make(map[string]uint64)
	cands := e.collectCandidates(row, locked, false)
	if !e.scoreCandidates(cands, local) {
		return false
	}

	best := uint64(0)
	var bestRows []string
	for key, score := range local {
		if score >= best {
			if score > best {
				best = score
				bestRows = bestRows[:0]
			}
			bestRows = append(bestRows, key)
		}
	}

	choice := bestRows[e.rng.Intn(len(bestRows))]
	copy(row, parseRowKey(choice))
	return true
}

// collectCandidates enumerates the candidate rows in the current shuffled
// column order. In global mode the memo is consulted: a heuristic switch
// invalidates every memoized score with a wrapping max-add, and candidates
// whose remembered score sits below the prune threshold are skipped.
func (e *Engine) collectCandidates(row []int, locked *Interaction, global bool) []candidate {
	lockedCols := make([]bool, e.numFactors)
	if locked != nil {
		for _, sid := range locked.Singles {
			lockedCols[e.singles[sid].Factor] = true
		}
	}

	var cands []candidate
	var walk func(idx int)
	walk = func(idx int) {
		if idx == e.numFactors {
			key := rowKey(row)
			if global {
				score := e.rowScores[key]
				if e.justSwitched {
					score += math.MaxUint64 // wraps: stale scores invalidated
				}
				e.rowScores[key] = score
				if score < e.minPositiveScore {
					return
				}
			}
			cands = append(cands, candidate{row: append([]int(nil), row...), key: key})
			return
		}
		col := e.permutation[idx]
		if lockedCols[col] {
			walk(idx + 1)
			return
		}
		for offset := 0; offset < e.levels[col]; offset++ {
			orig := row[col]
			row[col] = (row[col] + offset) % e.levels[col]
			walk(idx + 1)
			row[col] = orig
		}
	}
	walk(0)
	return cands
}

// scoreCandidates fans the candidates out over the worker pool. Each worker
// clones the engine, applies the candidate without keeping it, and scores
// the row as the weighted sum of per-single issue improvements; the weights
// are calibration constants. Results land in local when non-nil, in the
// shared memo otherwise, both under scoresMu.
//
// Returns false when a worker could not obtain a clone.
func (e *Engine) scoreCandidates(cands []candidate, local map[string]uint64) bool {
	if len(cands) == 0 {
		return true
	}

	pool := parallel.NewWorkerPool[candidate, uint64](
		parallel.DefaultPoolConfig().WithWorkers(e.maxWorkers))

	results := pool.ExecuteFunc(context.Background(), cands,
		func(_ context.Context, cand candidate) (uint64, error) {
			clone := e.Clone()
			if clone == nil {
				return 0, errors.ErrOutOfMemory
			}
			clone.UpdateArray(cand.row, false)

			var rowScore uint64
			for id, s := range e.singles {
				cs := clone.singles[id]
				weight := uint64(e.levels[s.Factor]) // higher-level factors hold more weight
				rowScore += uint64(s.CIssues-cs.CIssues) * weight / 3
				rowScore += uint64(s.LIssues-cs.LIssues) * weight / 2
				rowScore += uint64(s.DIssues-cs.DIssues) * weight
			}

			if e.debug {
				e.logger.Debug("For row [%s], score is %d", cand.key, rowScore)
			}

			e.scoresMu.Lock()
			if local != nil {
				local[cand.key] = rowScore
			} else {
				e.rowScores[cand.key] = rowScore
			}
			e.scoresMu.Unlock()
			return rowScore, nil
		})

	for _, r := range results {
		if r.Error != nil {
			return false
		}
	}
	return true
}

// probeMemory checks that the deep scorer can afford at least one clone
// before committing to the fan-out.
func (e *Engine) probeMemory() bool {
	clone := e.Clone()
	return clone != nil
}

// memoryOK enforces the configured soft heap ceiling.
func (e *Engine) memoryOK() bool {
	if e.memoryLimitMB <= 0 {
		return true
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc < uint64(e.memoryLimitMB)*1024*1024
}

// reportOutOfMemory flags the engine so the loop can flush what it has and
// stop. The flag is never reset.
func (e *Engine) reportOutOfMemory() {
	e.logger.Error("Out of memory. The problem size is too large for the current environment.")
	e.logger.Error("You may be able to succeed using an environment with more RAM.")
	e.outOfMemory = true
}

func defaultMaxWorkers() int {
	return parallel.DefaultPoolConfig().MaxWorkers
}
