package engine

import (
	"github.com/covergen/pkg/model"
	"github.com/covergen/pkg/utils"
)

// Clone produces a deep copy of the engine's mutable state for what-if
// scoring. The structural graph — level bounds, combination bases, each
// interaction's singles and set memberships, each set's members — is
// immutable after enumeration and shared with the clone; only row sets,
// flags, counters, don't-care levels, the current heuristic, deltas and
// conflict sets are copied, and the clone starts with an empty row-score
// memo. Workers therefore never observe or disturb the live array.
//
// Returns nil when the memory guard refuses the allocation; the caller
// backs off instead of fanning out.
func (e *Engine) Clone() *Engine {
	if !e.memoryOK() {
		return nil
	}

	clone := &Engine{
		mode:       e.mode,
		t:          e.t,
		d:          e.d,
		delta:      e.delta,
		numFactors: e.numFactors,
		levels:     e.levels,
		singleBase: e.singleBase,
		comboBase:  e.comboBase,

		score:             e.score,
		totalProblems:     e.totalProblems,
		coverageProblems:  e.coverageProblems,
		locationProblems:  e.locationProblems,
		detectionProblems: e.detectionProblems,
		isCovering:        e.isCovering,
		isLocating:        e.isLocating,
		isDetecting:       e.isDetecting,
		dontCares:         append([]model.PropertyMode(nil), e.dontCares...),
		heuristic:         e.heuristic,
		rowScores:         make(map[string]uint64),

		logger: &utils.NullLogger{},
		output: OutputSilent,
	}

	clone.rows = make([][]int, len(e.rows), len(e.rows)+1)
	copy(clone.rows, e.rows)

	clone.singles = make([]*Single, len(e.singles))
	clone.factors = make([]*Factor, len(e.factors))
	for f, factor := range e.factors {
		cf := &Factor{
			ID:      factor.ID,
			Level:   factor.Level,
			Singles: make([]*Single, factor.Level),
			CIssues: factor.CIssues,
			LIssues: factor.LIssues,
			DIssues: factor.DIssues,
		}
		for v, s := range factor.Singles {
			cs := &Single{
				ID:      s.ID,
				Factor:  s.Factor,
				Value:   s.Value,
				Rows:    s.Rows.Clone(),
				CIssues: s.CIssues,
				LIssues: s.LIssues,
				DIssues: s.DIssues,
			}
			cf.Singles[v] = cs
			clone.singles[s.ID] = cs
		}
		clone.factors[f] = cf
	}

	clone.interactions = make([]*Interaction, len(e.interactions))
	for i, inter := range e.interactions {
		ci := &Interaction{
			ID:           inter.ID,
			Singles:      inter.Singles,
			Sets:         inter.Sets,
			Rows:         inter.Rows.Clone(),
			IsCovered:    inter.IsCovered,
			IsDetectable: inter.IsDetectable,
		}
		if inter.Deltas != nil {
			ci.Deltas = make(map[int]int64, len(inter.Deltas))
			for tid, sep := range inter.Deltas {
				ci.Deltas[tid] = sep
			}
		}
		clone.interactions[i] = ci
	}

	clone.sets = make([]*DSet, len(e.sets))
	for i, set := range e.sets {
		cs := &DSet{
			ID:           set.ID,
			Interactions: set.Interactions,
			Singles:      set.Singles,
			Rows:         set.Rows.Clone(),
			IsLocatable:  set.IsLocatable,
		}
		cs.LocationConflicts = make(map[int]struct{}, len(set.LocationConflicts))
		for tid := range set.LocationConflicts {
			cs.LocationConflicts[tid] = struct{}{}
		}
		clone.sets[i] = cs
	}

	return clone
}
