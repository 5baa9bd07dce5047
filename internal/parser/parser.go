// Package parser reads and validates the generator's input files: the
// factor profile that describes the array to build, and the optional
// partial array the output must extend. It also enforces the feasibility
// rules that must reject a request before enumeration starts.
package parser

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/covergen/pkg/errors"
	"github.com/covergen/pkg/model"
)

// Parameters is the fully validated input of a generation run.
type Parameters struct {
	Profile model.Profile
	Mode    model.PropertyMode
	T       int
	D       int
	Delta   int
}

// ReadProfile reads the factor profile:
//
//	line 1: C, the number of columns
//	line 2: L_1 L_2 ... L_C, the level bound of each column
//
// Errors carry the offending line number and token.
func ReadProfile(r io.Reader) (model.Profile, error) {
	scanner := bufio.NewScanner(r)

	line, ok := nextLine(scanner)
	if !ok {
		return model.Profile{}, syntaxError(1, "C", "<end of input>")
	}
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return model.Profile{}, syntaxError(1, "C", line)
	}
	columns, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Profile{}, syntaxError(1, "C", fields[0])
	}
	if columns < 1 {
		return model.Profile{}, errors.Newf(errors.CodeInputSemantics,
			"line 1: number of columns must be positive, got %d", columns)
	}

	line, ok = nextLine(scanner)
	if !ok {
		return model.Profile{}, syntaxError(2, "L_1 L_2 ... L_C", "<end of input>")
	}
	fields = strings.Fields(line)
	if len(fields) != columns {
		return model.Profile{}, errors.Newf(errors.CodeInputSyntax,
			"line 2: expected %d levels, got %d", columns, len(fields))
	}
	levels := make([]int, columns)
	for i, field := range fields {
		level, err := strconv.Atoi(field)
		if err != nil {
			return model.Profile{}, syntaxError(2, "integer level", field)
		}
		if level < 1 {
			return model.Profile{}, errors.Newf(errors.CodeInputSemantics,
				"line 2: level for column %d must be positive, got %d", i+1, level)
		}
		levels[i] = level
	}

	if err := scanner.Err(); err != nil {
		return model.Profile{}, errors.Wrap(errors.CodeInputSyntax, "reading input", err)
	}
	return model.Profile{Columns: columns, Levels: levels}, nil
}

// ReadProfileFile reads the factor profile from a file.
func ReadProfileFile(path string) (model.Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Profile{}, errors.Wrap(errors.CodeInputSyntax, "opening input file", err)
	}
	defer file.Close()
	return ReadProfile(file)
}

// ReadPartial reads a pre-existing row prefix: one row per line, C
// whitespace-separated non-negative integers, each below the column's level
// bound.
func ReadPartial(r io.Reader, profile model.Profile) ([][]int, error) {
	scanner := bufio.NewScanner(r)
	var rows [][]int
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != profile.Columns {
			return nil, errors.Newf(errors.CodeInputSyntax,
				"line %d: expected %d values, got %d", lineno, profile.Columns, len(fields))
		}
		row := make([]int, profile.Columns)
		for col, field := range fields {
			val, err := strconv.Atoi(field)
			if err != nil {
				return nil, syntaxError(lineno, "integer value", field)
			}
			if val < 0 {
				return nil, errors.Newf(errors.CodeInputSemantics,
					"row %d, column %d: array values should not be negative, got %d",
					len(rows)+1, col+1, val)
			}
			if val >= profile.Levels[col] {
				return nil, errors.Newf(errors.CodeInputSemantics,
					"row %d, column %d: level is %d but value is %d which is too large",
					len(rows)+1, col+1, profile.Levels[col], val)
			}
			row[col] = val
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeInputSyntax, "reading partial array", err)
	}
	return rows, nil
}

// ReadPartialFile reads a partial array from a file.
func ReadPartialFile(path string, profile model.Profile) ([][]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInputSyntax, "opening partial file", err)
	}
	defer file.Close()
	return ReadPartial(file, profile)
}

// Validate enforces the feasibility rules for the requested property mode.
// Infeasible requests must be refused here, before enumeration commits any
// memory to them.
func (p *Parameters) Validate() error {
	if p.T < 1 {
		return errors.Newf(errors.CodeParamInfeasible, "interaction strength t must be positive, got %d", p.T)
	}
	if p.T > p.Profile.Columns {
		return errors.Newf(errors.CodeParamInfeasible,
			"interaction strength t=%d exceeds the %d columns", p.T, p.Profile.Columns)
	}

	if p.Mode.NeedsLocation() || p.Mode.NeedsDetection() {
		if p.D < 1 {
			return errors.Newf(errors.CodeParamInfeasible, "set size d must be positive, got %d", p.D)
		}
	}

	if p.Mode.NeedsDetection() {
		if p.Delta < 1 {
			return errors.Newf(errors.CodeParamInfeasible, "separation δ must be positive, got %d", p.Delta)
		}
		for col, level := range p.Profile.Levels {
			if level <= p.D {
				return errors.Newf(errors.CodeParamInfeasible,
					"detection with d=%d requires every level above d, but column %d has level %d",
					p.D, col+1, level)
			}
		}
	} else if p.Mode.NeedsLocation() {
		atD := 0
		for col, level := range p.Profile.Levels {
			if level < p.D {
				return errors.Newf(errors.CodeParamInfeasible,
					"location with d=%d requires every level at least d, but column %d has level %d",
					p.D, col+1, level)
			}
			if level == p.D {
				atD++
			}
		}
		if atD >= 2 {
			return errors.Newf(errors.CodeParamInfeasible,
				"location with d=%d allows at most one column with level exactly d, found %d", p.D, atD)
		}
	}

	return nil
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func syntaxError(lineno int, expected, actual string) error {
	return errors.Newf(errors.CodeInputSyntax,
		"input format violated on line %d: expected %q but got %q", lineno, expected, actual)
}
