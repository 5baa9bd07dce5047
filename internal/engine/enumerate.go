package engine

import "github.com/covergen/pkg/collections"

// buildTWayInteractions fills the interaction arena: every C-choose-t column
// combination in lexicographic order, expanded over the Cartesian product of
// the chosen columns' level sets (first chosen column most significant).
// comboBase records where each combination's block starts so that
// rowInteractions can map a row back to interaction ids with pure index
// arithmetic.
func (e *Engine) buildTWayInteractions() {
	chosen := make([]int, 0, e.t)
	singles := make([]int, 0, e.t)

	var expand func(idx int)
	expand = func(idx int) {
		if idx == len(chosen) {
			e.addInteraction(singles)
			return
		}
		f := chosen[idx]
		for v := 0; v < e.levels[f]; v++ {
			singles = append(singles, e.singleBase[f]+v)
			expand(idx + 1)
			singles = singles[:len(singles)-1]
		}
	}

	var choose func(start, remaining int)
	choose = func(start, remaining int) {
		if remaining == 0 {
			e.comboBase = append(e.comboBase, len(e.interactions))
			expand(0)
			return
		}
		for col := start; col <= e.numFactors-remaining; col++ {
			chosen = append(chosen, col)
			choose(col+1, remaining-1)
			chosen = chosen[:len(chosen)-1]
		}
	}
	choose(0, e.t)
}

// addInteraction appends one interaction and charges its coverage problem to
// every constituent single and factor.
func (e *Engine) addInteraction(singleIDs []int) {
	inter := &Interaction{
		ID:      len(e.interactions),
		Singles: append([]int(nil), singleIDs...),
		Rows:    collections.NewRowSet(64),
	}
	e.interactions = append(e.interactions, inter)
	for _, sid := range inter.Singles {
		s := e.singles[sid]
		e.factors[s.Factor].CIssues++
		s.CIssues++
		e.totalProblems++
		e.score++
	}
}

// buildSizeDSets fills the set arena: every size-d subset of the interaction
// arena in lexicographic order over interaction ids.
func (e *Engine) buildSizeDSets() {
	chosen := make([]int, 0, e.d)

	var choose func(start, remaining int)
	choose = func(start, remaining int) {
		if remaining == 0 {
			e.addSet(chosen)
			return
		}
		for i := start; i <= len(e.interactions)-remaining; i++ {
			chosen = append(chosen, i)
			choose(i+1, remaining-1)
			chosen = chosen[:len(chosen)-1]
		}
	}
	choose(0, e.d)
}

// addSet appends one set, registers it with its member interactions, and
// collects the members' singles (duplicates kept).
func (e *Engine) addSet(interactionIDs []int) {
	set := &DSet{
		ID:                len(e.sets),
		Interactions:      append([]int(nil), interactionIDs...),
		Rows:              collections.NewRowSet(64),
		LocationConflicts: make(map[int]struct{}),
	}
	for _, iid := range set.Interactions {
		inter := e.interactions[iid]
		inter.Sets = append(inter.Sets, set.ID)
		set.Singles = append(set.Singles, inter.Singles...)
	}
	e.sets = append(e.sets, set)
}

// rowInteractions maps a row to the ids of the interactions occurring in it,
// walking the column combinations in the same lexicographic order the
// enumeration used, so each completed combination lines up with its
// comboBase entry.
func (e *Engine) rowInteractions(row []int, visit func(id int)) {
	combo := 0

	var walk func(start, remaining, valIdx int)
	walk = func(start, remaining, valIdx int) {
		if remaining == 0 {
			visit(e.comboBase[combo] + valIdx)
			combo++
			return
		}
		for col := start; col <= e.numFactors-remaining; col++ {
			walk(col+1, remaining-1, valIdx*e.levels[col]+row[col])
		}
	}
	walk(0, e.t, 0)
}

// numRowInteractions is C(numFactors, t), the number of interactions any
// single row contains.
func (e *Engine) numRowInteractions() int {
	return len(e.comboBase)
}
