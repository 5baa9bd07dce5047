package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		params []int
		files  []string
		ok     bool
	}{
		{"covering", []string{"2", "in.txt"}, []int{2}, []string{"in.txt"}, true},
		{"locating", []string{"1", "2", "in.txt", "out.txt"}, []int{1, 2}, []string{"in.txt", "out.txt"}, true},
		{"detecting", []string{"1", "2", "2", "in.txt"}, []int{1, 2, 2}, []string{"in.txt"}, true},
		{"no params", []string{"in.txt", "out.txt"}, nil, nil, false},
		{"too many files", []string{"2", "a", "b", "c"}, nil, nil, false},
		{"params only", []string{"1", "2"}, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, files, err := splitArgs(tt.args)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.params, params)
			assert.Equal(t, tt.files, files)
		})
	}
}
