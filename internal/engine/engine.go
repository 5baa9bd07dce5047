// Package engine implements the row-generation core: the structural graph of
// singles, interactions and interaction sets, the score bookkeeping that
// measures distance from the requested array property, and the family of
// row-construction heuristics that drive the score to zero.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/covergen/pkg/collections"
	"github.com/covergen/pkg/model"
	"github.com/covergen/pkg/utils"
)

// OutputMode controls how much progress reporting the engine emits.
type OutputMode int

const (
	// OutputNormal reports every row as it is added.
	OutputNormal OutputMode = iota
	// OutputHalfway suppresses the per-row lines.
	OutputHalfway
	// OutputSilent reports nothing but the final result.
	OutputSilent
)

// Options carries the engine's tuning knobs and reporting hooks.
type Options struct {
	Logger          utils.Logger
	Output          OutputMode
	Verbose         bool
	Debug           bool
	MaxWorkers      int
	StagnationLimit int
	MemoryLimitMB   int
}

// Engine owns the structural graph and all mutable generation state. It is
// not safe for concurrent use; the only parallelism happens inside the deep
// scoring heuristic, where workers operate on clones.
type Engine struct {
	mode  model.PropertyMode
	t     int
	d     int
	delta int

	numFactors int
	levels     []int

	factors      []*Factor
	singles      []*Single
	interactions []*Interaction
	sets         []*DSet

	// singleBase[f] is the id of factor f's value-0 single; comboBase[k]
	// is the id of the first interaction of the k-th column combination
	// in lexicographic order. Together they make row→interaction lookup
	// pure index arithmetic.
	singleBase []int
	comboBase  []int

	rows [][]int

	score             int64
	totalProblems     int64
	coverageProblems  int64
	locationProblems  int64
	detectionProblems int64

	isCovering   bool
	isLocating   bool
	isDetecting  bool
	dontCares    []model.PropertyMode
	permutation  []int
	heuristic    heuristic
	justSwitched bool

	// rowScores memoizes deep-scorer results across rows; guarded by
	// scoresMu during the parallel fan-out.
	rowScores        map[string]uint64
	minPositiveScore uint64
	scoresMu         sync.Mutex

	outOfMemory     bool
	maxWorkers      int
	stagnationLimit int
	memoryLimitMB   int

	rng     *rand.Rand
	logger  utils.Logger
	output  OutputMode
	verbose bool
	debug   bool
}

// New builds the structural graph (singles, factors, interactions, sets)
// for the request and initializes the score so that zero means "all
// requested properties hold". The request is expected to have passed the
// parser's feasibility validation.
func New(req *model.GenerationRequest, opts Options) (*Engine, error) {
	switch req.Mode {
	case model.PropertyCoverage, model.PropertyCoverageLocation, model.PropertyAll:
	default:
		return nil, fmt.Errorf("unsupported property mode: %s", req.Mode)
	}
	if req.T < 1 || req.T > req.Profile.Columns {
		return nil, fmt.Errorf("interaction strength t=%d out of range for %d columns", req.T, req.Profile.Columns)
	}

	logger := opts.Logger
	if logger == nil {
		logger = &utils.NullLogger{}
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		mode:             req.Mode,
		t:                req.T,
		d:                req.D,
		delta:            req.Delta,
		numFactors:       req.Profile.Columns,
		levels:           append([]int(nil), req.Profile.Levels...),
		rowScores:        make(map[string]uint64),
		minPositiveScore: math.MaxUint64,
		maxWorkers:       opts.MaxWorkers,
		stagnationLimit:  opts.StagnationLimit,
		memoryLimitMB:    opts.MemoryLimitMB,
		rng:              rand.New(rand.NewSource(seed)),
		logger:           logger,
		output:           opts.Output,
		verbose:          opts.Verbose,
		debug:            opts.Debug,
	}
	if e.maxWorkers < 1 {
		e.maxWorkers = defaultMaxWorkers()
	}
	if e.stagnationLimit < 1 {
		e.stagnationLimit = 10
	}

	e.dontCares = make([]model.PropertyMode, e.numFactors)
	e.permutation = make([]int, e.numFactors)
	for col := 0; col < e.numFactors; col++ {
		e.permutation[col] = col
	}

	if e.output != OutputSilent {
		e.logger.Info("Building internal data structures....")
	}

	e.buildSingles()
	e.buildTWayInteractions()
	if e.debug {
		e.dumpSingles()
		e.dumpInteractions()
	}
	e.totalProblems += int64(len(e.interactions))
	e.coverageProblems = int64(len(e.interactions))
	e.score += int64(len(e.interactions))

	// No need to spend effort building sets if they won't be used.
	if e.mode == model.PropertyCoverage {
		return e, nil
	}

	e.buildSizeDSets()
	if e.debug {
		e.dumpSets()
	}
	numSets := int64(len(e.sets))
	for _, set := range e.sets {
		for _, sid := range set.Singles {
			s := e.singles[sid]
			e.factors[s.Factor].LIssues += numSets
			s.LIssues += numSets
			e.totalProblems += numSets
		}
		for _, other := range e.sets {
			if other.ID == set.ID {
				continue
			}
			set.LocationConflicts[other.ID] = struct{}{}
		}
	}
	e.totalProblems += numSets
	e.locationProblems = numSets
	e.score = e.totalProblems

	if e.mode != model.PropertyAll {
		return e, nil
	}

	e.buildDetectionDeltas()
	e.totalProblems += int64(len(e.interactions))
	e.detectionProblems = int64(len(e.interactions))
	e.score += int64(len(e.interactions))

	return e, nil
}

func (e *Engine) buildSingles() {
	e.singleBase = make([]int, e.numFactors)
	e.factors = make([]*Factor, e.numFactors)
	for f := 0; f < e.numFactors; f++ {
		e.singleBase[f] = len(e.singles)
		factor := &Factor{ID: f, Level: e.levels[f], Singles: make([]*Single, e.levels[f])}
		for v := 0; v < e.levels[f]; v++ {
			s := &Single{
				ID:     len(e.singles),
				Factor: f,
				Value:  v,
				Rows:   collections.NewRowSet(64),
			}
			factor.Singles[v] = s
			e.singles = append(e.singles, s)
		}
		e.factors[f] = factor
	}
}

// buildDetectionDeltas initializes every interaction's separation map: one
// zero entry per set the interaction is not a member of, with the matching
// issue counters.
func (e *Engine) buildDetectionDeltas() {
	member := make([]bool, len(e.sets))
	for _, inter := range e.interactions {
		for _, tid := range inter.Sets {
			member[tid] = true
		}
		inter.Deltas = make(map[int]int64, len(e.sets)-len(inter.Sets))
		for _, set := range e.sets {
			if member[set.ID] {
				continue
			}
			inter.Deltas[set.ID] = 0
			for _, sid := range inter.Singles {
				s := e.singles[sid]
				e.factors[s.Factor].DIssues += int64(e.delta)
				s.DIssues += int64(e.delta)
				e.totalProblems += int64(e.delta)
				e.score += int64(e.delta)
			}
		}
		for _, tid := range inter.Sets {
			member[tid] = false
		}
	}
}

// Score returns the current distance from the requested property; zero
// means done.
func (e *Engine) Score() int64 { return e.score }

// TotalProblems returns the initial problem count the score started from.
func (e *Engine) TotalProblems() int64 { return e.totalProblems }

// Rows returns the committed rows. The caller must not mutate them.
func (e *Engine) Rows() [][]int { return e.rows }

// OutOfMemory reports whether candidate scoring hit the memory guard.
func (e *Engine) OutOfMemory() bool { return e.outOfMemory }

// IsCovering reports whether every interaction is covered.
func (e *Engine) IsCovering() bool { return e.isCovering }

// IsLocating reports whether every set is locatable.
func (e *Engine) IsLocating() bool { return e.isLocating }

// IsDetecting reports whether every interaction is detectable.
func (e *Engine) IsDetecting() bool { return e.isDetecting }

// printStats reports the engine state between rows, honoring the output
// mode: normal shows
// everything, halfway drops the per-row lines, silent shows nothing.
func (e *Engine) printStats(initial bool) {
	if e.output != OutputSilent {
		switch {
		case initial && e.score == 0:
			e.logger.Info("The partial array already meets all requirements, no rows need to be added.")
			return
		case initial:
			e.logger.Info("There are %d total problems to solve.", e.totalProblems)
		case e.score == 0:
			e.logger.Info("Completed array with %d rows.", len(e.rows))
			return
		}
		if e.output == OutputNormal {
			e.logger.Info("Array score is currently %d.", e.score)
		} else {
			e.logger.Info("Array score is currently %d, adding row #%d.", e.score, len(e.rows)+1)
		}
	}
	if e.verbose {
		cScore, lScore, dScore := e.coverageProblems, e.locationProblems, e.detectionProblems
		for _, s := range e.singles {
			cScore += s.CIssues
			lScore += s.LIssues
			dScore += s.DIssues
		}
		e.logger.Info("\t- Current coverage score: %d", cScore)
		if e.mode != model.PropertyCoverage {
			e.logger.Info("\t- Current location score: %d", lScore)
		}
		if e.mode == model.PropertyAll {
			e.logger.Info("\t- Current detection score: %d", dScore)
		}
		if !initial {
			e.logger.Info("\t- The array is now at %.4f%% completion.",
				float64(e.totalProblems-e.score)/float64(e.totalProblems)*100)
		}
	}
	if e.output == OutputNormal {
		e.logger.Info("Adding row #%d.", len(e.rows)+1)
	}
	if e.verbose && e.heuristic != heuristicNone {
		e.logger.Info("\t- Using %s.", e.heuristic)
	}
}

func (e *Engine) dumpSingles() {
	e.logger.Debug("Listing all singles below:")
	for _, factor := range e.factors {
		for _, s := range factor.Singles {
			e.logger.Debug("\t(f%d, %d): %v", s.Factor, s.Value, s.Rows.ToSlice())
		}
	}
}

func (e *Engine) dumpInteractions() {
	e.logger.Debug("Listing all interactions below:")
	for _, inter := range e.interactions {
		e.logger.Debug("Interaction %d: %s rows %v", inter.ID, e.interactionString(inter), inter.Rows.ToSlice())
	}
}

func (e *Engine) dumpSets() {
	e.logger.Debug("Listing all sets below:")
	for _, set := range e.sets {
		e.logger.Debug("Set %d: %v rows %v", set.ID, set.Interactions, set.Rows.ToSlice())
	}
}

// interactionString renders an interaction's (factor, value) pairs for
// debug output.
func (e *Engine) interactionString(inter *Interaction) string {
	out := "{"
	for _, sid := range inter.Singles {
		s := e.singles[sid]
		out += fmt.Sprintf(" (f%d, %d)", s.Factor, s.Value)
	}
	return out + " }"
}
