package engine

import "github.com/covergen/pkg/model"

// seedRowR creates a fully random row.
func (e *Engine) seedRowR() []int {
	row := make([]int, e.numFactors)
	for col := 0; col < e.numFactors; col++ {
		row[col] = e.rng.Intn(e.levels[col])
	}
	return row
}

// seedRowRLocked creates a random row, then locks the interaction whose
// singles carry the most unresolved issues (with a bias towards
// interactions appearing in few rows) and freezes its columns in the row.
//
// When ties is non-nil and more than one interaction ties for worst, the
// tied list is handed back without locking so the caller can judge the tie
// itself; otherwise the tie is broken uniformly at random.
func (e *Engine) seedRowRLocked(ties *[]*Interaction) ([]int, *Interaction) {
	row := e.seedRowR()

	var local []*Interaction
	toUse := ties
	if toUse == nil {
		toUse = &local
	}
	worstCount := int64(0)
	for _, inter := range e.interactions {
		cur := 4 * int64(len(e.rows)-inter.Rows.Len()) // bias towards unused ones
		for _, sid := range inter.Singles {
			s := e.singles[sid]
			cur += s.CIssues + s.LIssues + s.DIssues
		}
		if cur >= worstCount {
			if cur > worstCount {
				worstCount = cur
				*toUse = (*toUse)[:0]
			}
			*toUse = append(*toUse, inter)
		}
	}
	if ties != nil && len(*toUse) > 1 {
		return row, nil // caller judges the ties itself
	}

	locked := (*toUse)[e.rng.Intn(len(*toUse))]
	for _, sid := range locked.Singles {
		s := e.singles[sid]
		row[s.Factor] = s.Value
	}
	if e.debug {
		e.logger.Debug("Locking interaction %s", e.interactionString(locked))
	}
	return row, locked
}

// seedRowS builds a row greedily from the singles that appear to need the
// most attention, visiting columns in the current shuffled permutation.
// Columns whose don't-care level has reached the requested property mode
// get a uniformly random value instead.
func (e *Engine) seedRowS() []int {
	row := make([]int, e.numFactors)

	for i := 0; i < e.numFactors; i++ {
		col := e.permutation[i]
		if (e.mode == model.PropertyAll && e.dontCares[col] == model.PropertyAll) ||
			(e.mode == model.PropertyCoverageLocation && e.dontCares[col] == model.PropertyCoverageLocation) ||
			(e.mode == model.PropertyCoverage && e.dontCares[col] == model.PropertyCoverage) {
			row[col] = e.rng.Intn(e.levels[col])
			continue
		}
		worst := e.factors[col].Singles[0]
		worstScore := worst.issueScore()
		for v := 1; v < e.levels[col]; v++ {
			cur := e.factors[col].Singles[v]
			curScore := cur.issueScore()
			if curScore > worstScore || (curScore == worstScore && e.rng.Intn(2) == 0) {
				worst = cur
				worstScore = curScore
			}
		}
		row[col] = worst.Value
	}
	return row
}

// seedRowT builds a row around the set with the most location conflicts:
// among the interactions tied for the worst single-issue score, it keeps
// those appearing in the most conflicted set, locks that set plus one of
// its interactions, and freezes the interaction's columns.
func (e *Engine) seedRowT() ([]int, *DSet, *Interaction) {
	var ties []*Interaction
	row, locked := e.seedRowRLocked(&ties)

	inTies := make(map[int]bool, len(ties))
	for _, inter := range ties {
		inTies[inter.ID] = true
	}
	var workingSets []*DSet
	for _, set := range e.sets {
		for _, iid := range set.Interactions {
			if inTies[iid] {
				workingSets = append(workingSets, set)
				break
			}
		}
	}

	worstCount := -1
	var worstSets []*DSet
	for _, set := range workingSets {
		if len(set.LocationConflicts) >= worstCount {
			if len(set.LocationConflicts) > worstCount {
				worstCount = len(set.LocationConflicts)
				worstSets = worstSets[:0]
			}
			worstSets = append(worstSets, set)
		}
	}

	lockedSet := worstSets[e.rng.Intn(len(worstSets))]
	if len(ties) == 1 {
		if e.debug {
			e.logger.Debug("Locking set %v", lockedSet.Interactions)
		}
		return row, lockedSet, locked
	}

	lockedInter := e.interactions[lockedSet.Interactions[e.rng.Intn(len(lockedSet.Interactions))]]
	for _, sid := range lockedInter.Singles {
		s := e.singles[sid]
		row[s.Factor] = s.Value
	}
	if e.debug {
		e.logger.Debug("Locking interaction %s", e.interactionString(lockedInter))
		e.logger.Debug("Locking set %v", lockedSet.Interactions)
	}
	return row, lockedSet, lockedInter
}

// seedRowI builds a row around the interaction with the largest total
// separation deficit across its deltas, locking it and freezing its
// columns.
func (e *Engine) seedRowI() ([]int, *Interaction) {
	var ties []*Interaction
	row, locked := e.seedRowRLocked(&ties)
	if len(ties) == 1 {
		return row, locked // no ties; seedRowRLocked already locked one
	}

	worstCount := int64(0)
	var worst []*Interaction
	for _, inter := range ties {
		cur := int64(0)
		for _, sep := range inter.Deltas {
			if sep < int64(e.delta) {
				cur += int64(e.delta) - sep
			}
		}
		if cur >= worstCount {
			if cur > worstCount {
				worstCount = cur
				worst = worst[:0]
			}
			worst = append(worst, inter)
		}
	}

	locked = worst[e.rng.Intn(len(worst))]
	for _, sid := range locked.Singles {
		s := e.singles[sid]
		row[s.Factor] = s.Value
	}
	if e.debug {
		e.logger.Debug("Locking interaction %s", e.interactionString(locked))
	}
	return row, locked
}
