package match_test

import (
	"testing"

	"arcadechat/internal/match"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_AllWinningTriples(t *testing.T) {
	triples := [][]int{
		{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
		{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
		{0, 4, 8}, {2, 4, 6},
	}

	for _, triple := range triples {
		pattern, won := match.Evaluate(triple)
		assert.True(t, won, "triple %v should win", triple)
		assert.ElementsMatch(t, triple, pattern[:])
	}
}

func TestEvaluate_WinWithinLargerMoveSet(t *testing.T) {
	// Moves in play order; the line 1-4-7 is buried in the middle.
	pattern, won := match.Evaluate([]int{1, 8, 4, 6, 7})
	assert.True(t, won)
	assert.ElementsMatch(t, []int{1, 4, 7}, pattern[:])
}

func TestEvaluate_NonWinningSets(t *testing.T) {
	tests := []struct {
		name  string
		moves []int
	}{
		{"five moves no line", []int{0, 1, 5, 6, 8}},
		{"five moves no line corner heavy", []int{1, 2, 3, 7, 8}},
		{"five moves no line center free", []int{0, 2, 3, 7, 8}},
		{"two moves can never win", []int{0, 1}},
		{"no moves", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, won := match.Evaluate(tt.moves)
			assert.False(t, won)
		})
	}
}
