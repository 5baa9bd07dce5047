package engine

import "github.com/covergen/pkg/model"

// heuristic identifies one of the row-construction strategies. The ladder
// starts cheap and ends with the deep clone-and-score heuristic; the
// controller only ever moves forward within a run.
type heuristic int

const (
	heuristicNone heuristic = iota
	heuristicCOnly
	heuristicLOnly
	heuristicLAndD
	heuristicDOnly
	heuristicAll
)

// String returns the heuristic's reporting name.
func (h heuristic) String() string {
	switch h {
	case heuristicCOnly:
		return "heuristic_c_only"
	case heuristicLOnly:
		return "heuristic_l_only"
	case heuristicLAndD:
		return "heuristic_l_and_d"
	case heuristicDOnly:
		return "heuristic_d_only"
	case heuristicAll:
		return "heuristic_all"
	default:
		return "none"
	}
}

// nextHeuristic is the controller's transition function. It is pure in
// (mode, score, totalProblems, current) and returns the heuristic to use
// for the next row. The numeric thresholds are calibration constants that
// trade row quality against the cost of the deeper heuristics.
func nextHeuristic(mode model.PropertyMode, score, total int64, cur heuristic) heuristic {
	ratio := float64(score) / float64(total)

	switch mode {
	case model.PropertyCoverage:
		switch {
		case cur != heuristicAll && total < 20000:
			return heuristicAll
		case cur == heuristicDOnly && ratio < 0.20 && score < 100000:
			return heuristicAll
		case cur == heuristicCOnly && ratio < 0.40 && score < 500000:
			return heuristicDOnly
		case cur == heuristicNone:
			return heuristicCOnly
		}

	case model.PropertyCoverageLocation:
		switch {
		case cur != heuristicAll && total < 15000:
			return heuristicAll
		case cur == heuristicDOnly && ratio < 0.15 && score < 75000:
			return heuristicAll
		case cur == heuristicLOnly && ratio < 0.30 && score < 250000:
			return heuristicDOnly
		case cur == heuristicCOnly && ratio < 0.80 && score < 750000:
			return heuristicLOnly
		case cur == heuristicNone:
			return heuristicCOnly
		}

	case model.PropertyAll:
		switch {
		case cur != heuristicAll && total < 10000:
			return heuristicAll
		case cur == heuristicDOnly && ratio < 0.10 && score < 50000:
			return heuristicAll
		case cur == heuristicLAndD && ratio < 0.20 && score < 100000:
			return heuristicDOnly
		case cur == heuristicLOnly && ratio < 0.60 && score < 500000:
			return heuristicLAndD
		case cur == heuristicCOnly && ratio < 0.85 && score < 1000000:
			return heuristicLOnly
		case cur == heuristicNone:
			return heuristicCOnly
		}
	}
	return cur
}

// updateHeuristic advances the controller after a committed row. The
// justSwitched pulse is consumed once by the deep scorer to invalidate its
// memoized row scores.
func (e *Engine) updateHeuristic() {
	next := nextHeuristic(e.mode, e.score, e.totalProblems, e.heuristic)
	e.justSwitched = next != e.heuristic
	e.heuristic = next
}
