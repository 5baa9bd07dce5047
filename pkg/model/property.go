// Package model defines the shared types exchanged between the CLI, the
// generation engine, and the persistence layers.
package model

import (
	"fmt"
	"strings"
)

// PropertyMode identifies which combination of array properties a generation
// run is asked to establish. The zero value None is reserved for the engine's
// per-factor "don't care" ladder, which reuses these constants to record how
// much of a column's work is finished.
type PropertyMode int

const (
	// PropertyNone marks a factor with no solved property class yet.
	PropertyNone PropertyMode = iota
	// PropertyCoverage requests a t-covering array.
	PropertyCoverage
	// PropertyLocation requests location without explicit coverage tracking.
	PropertyLocation
	// PropertyDetection requests detection without explicit coverage tracking.
	PropertyDetection
	// PropertyCoverageLocation requests a (d,t)-locating array.
	PropertyCoverageLocation
	// PropertyCoverageDetection requests coverage plus detection.
	PropertyCoverageDetection
	// PropertyLocationDetection requests location plus detection.
	PropertyLocationDetection
	// PropertyAll requests a (d,t,δ)-detecting array.
	PropertyAll
)

// String returns the canonical mode name.
func (m PropertyMode) String() string {
	switch m {
	case PropertyNone:
		return "none"
	case PropertyCoverage:
		return "coverage"
	case PropertyLocation:
		return "location"
	case PropertyDetection:
		return "detection"
	case PropertyCoverageLocation:
		return "coverage+location"
	case PropertyCoverageDetection:
		return "coverage+detection"
	case PropertyLocationDetection:
		return "location+detection"
	case PropertyAll:
		return "coverage+location+detection"
	default:
		return "unknown"
	}
}

// NeedsLocation reports whether the mode tracks location conflicts.
func (m PropertyMode) NeedsLocation() bool {
	switch m {
	case PropertyLocation, PropertyCoverageLocation, PropertyLocationDetection, PropertyAll:
		return true
	}
	return false
}

// NeedsDetection reports whether the mode tracks separation deltas.
func (m PropertyMode) NeedsDetection() bool {
	switch m {
	case PropertyDetection, PropertyCoverageDetection, PropertyLocationDetection, PropertyAll:
		return true
	}
	return false
}

// ParsePropertyMode parses a mode string as stored in run records.
func ParsePropertyMode(s string) (PropertyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coverage", "c":
		return PropertyCoverage, nil
	case "coverage+location", "cl":
		return PropertyCoverageLocation, nil
	case "coverage+location+detection", "all":
		return PropertyAll, nil
	default:
		return PropertyNone, fmt.Errorf("unknown property mode: %q", s)
	}
}

// ModeForParamCount maps the number of positional integer arguments on the
// command line to the property mode being requested: one integer (t) asks for
// coverage, two (d t) for location, three (d t δ) for detection.
func ModeForParamCount(n int) (PropertyMode, error) {
	switch n {
	case 1:
		return PropertyCoverage, nil
	case 2:
		return PropertyCoverageLocation, nil
	case 3:
		return PropertyAll, nil
	default:
		return PropertyNone, fmt.Errorf("expected 1 to 3 integer arguments, got %d", n)
	}
}
