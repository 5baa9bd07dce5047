package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covergen/pkg/errors"
	"github.com/covergen/pkg/model"
)

func TestReadProfile(t *testing.T) {
	profile, err := ReadProfile(strings.NewReader("3\n2 3 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Columns)
	assert.Equal(t, []int{2, 3, 4}, profile.Levels)
}

func TestReadProfile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty input", "", errors.CodeInputSyntax},
		{"non-integer columns", "abc\n2 2\n", errors.CodeInputSyntax},
		{"zero columns", "0\n\n", errors.CodeInputSemantics},
		{"negative columns", "-2\n\n", errors.CodeInputSemantics},
		{"missing level", "3\n2 2\n", errors.CodeInputSyntax},
		{"extra level", "2\n2 2 2\n", errors.CodeInputSyntax},
		{"non-integer level", "2\n2 x\n", errors.CodeInputSyntax},
		{"zero level", "2\n2 0\n", errors.CodeInputSemantics},
		{"missing levels line", "2\n", errors.CodeInputSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProfile(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
		})
	}
}

func TestReadPartial(t *testing.T) {
	profile := model.Profile{Columns: 3, Levels: []int{2, 3, 2}}

	rows, err := ReadPartial(strings.NewReader("0 2 1\n1 0 0\n\n"), profile)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2, 1}, {1, 0, 0}}, rows)
}

func TestReadPartial_Errors(t *testing.T) {
	profile := model.Profile{Columns: 2, Levels: []int{2, 2}}

	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"short row", "0\n", errors.CodeInputSyntax},
		{"long row", "0 1 0\n", errors.CodeInputSyntax},
		{"non-integer", "0 x\n", errors.CodeInputSyntax},
		{"negative value", "0 -1\n", errors.CodeInputSemantics},
		{"out of range", "0 2\n", errors.CodeInputSemantics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPartial(strings.NewReader(tt.input), profile)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
		})
	}
}

func TestReadPartial_ErrorMentionsRowAndColumn(t *testing.T) {
	profile := model.Profile{Columns: 2, Levels: []int{2, 2}}
	_, err := ReadPartial(strings.NewReader("0 1\n1 5\n"), profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "column 2")
}

func TestValidate_AcceptsFeasibleRequests(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
	}{
		{"coverage", Parameters{
			Profile: model.Profile{Columns: 3, Levels: []int{2, 2, 2}},
			Mode:    model.PropertyCoverage, T: 2,
		}},
		{"location", Parameters{
			Profile: model.Profile{Columns: 4, Levels: []int{3, 3, 3, 3}},
			Mode:    model.PropertyCoverageLocation, T: 2, D: 2,
		}},
		{"location with one level at d", Parameters{
			Profile: model.Profile{Columns: 3, Levels: []int{2, 3, 3}},
			Mode:    model.PropertyCoverageLocation, T: 2, D: 2,
		}},
		{"detection", Parameters{
			Profile: model.Profile{Columns: 4, Levels: []int{3, 3, 3, 3}},
			Mode:    model.PropertyAll, T: 2, D: 2, Delta: 2,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.params.Validate())
		})
	}
}

func TestValidate_RejectsInfeasibleRequests(t *testing.T) {
	base := model.Profile{Columns: 3, Levels: []int{2, 2, 2}}

	tests := []struct {
		name   string
		params Parameters
	}{
		{"t zero", Parameters{Profile: base, Mode: model.PropertyCoverage, T: 0}},
		{"t above columns", Parameters{Profile: base, Mode: model.PropertyCoverage, T: 4}},
		{"d zero for location", Parameters{Profile: base, Mode: model.PropertyCoverageLocation, T: 2, D: 0}},
		{"delta zero for detection", Parameters{
			Profile: model.Profile{Columns: 3, Levels: []int{3, 3, 3}},
			Mode:    model.PropertyAll, T: 2, D: 2, Delta: 0,
		}},
		{"location level below d", Parameters{
			Profile: model.Profile{Columns: 3, Levels: []int{2, 3, 3}},
			Mode:    model.PropertyCoverageLocation, T: 2, D: 3,
		}},
		{"location two levels at d", Parameters{
			Profile: base, Mode: model.PropertyCoverageLocation, T: 2, D: 2,
		}},
		{"detection level equal to d", Parameters{
			Profile: base, Mode: model.PropertyAll, T: 2, D: 2, Delta: 1,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInfeasible(err), "expected PARAM_INFEASIBLE, got %v", err)
		})
	}
}
