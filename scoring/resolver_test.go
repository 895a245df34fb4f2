package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpoint/bracket-system/models"
)

func TestResolveBestOfThree(t *testing.T) {
	testCases := []struct {
		name     string
		sets     []models.Set
		expected Side
	}{
		{
			name:     "straight sets side 1",
			sets:     []models.Set{{Score1: 11, Score2: 5}, {Score1: 11, Score2: 8}},
			expected: Side1,
		},
		{
			name:     "straight sets side 2",
			sets:     []models.Set{{Score1: 3, Score2: 11}, {Score1: 9, Score2: 11}},
			expected: Side2,
		},
		{
			name:     "decided in the third",
			sets:     []models.Set{{Score1: 11, Score2: 7}, {Score1: 6, Score2: 11}, {Score1: 11, Score2: 9}},
			expected: Side1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			side, err := Resolve(tc.sets, Rules{BestOf: 3})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, side)
		})
	}
}

func TestResolveZeroBestOfDefaultsToThree(t *testing.T) {
	side, err := Resolve([]models.Set{{Score1: 11, Score2: 5}, {Score1: 11, Score2: 8}}, Rules{})
	require.NoError(t, err)
	assert.Equal(t, Side1, side)
}

func TestResolveIncomplete(t *testing.T) {
	_, err := Resolve([]models.Set{{Score1: 11, Score2: 5}}, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrIncompleteResult)

	_, err = Resolve([]models.Set{{Score1: 11, Score2: 5}, {Score1: 5, Score2: 11}}, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrIncompleteResult)
}

func TestResolveNoSets(t *testing.T) {
	_, err := Resolve(nil, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrNoSets)
}

func TestResolveRejectsEvenBestOf(t *testing.T) {
	_, err := Resolve([]models.Set{{Score1: 11, Score2: 5}}, Rules{BestOf: 2})
	assert.Error(t, err)
}

func TestResolveRejectsTooManySets(t *testing.T) {
	sets := []models.Set{
		{Score1: 11, Score2: 5},
		{Score1: 11, Score2: 5},
		{Score1: 11, Score2: 5},
		{Score1: 11, Score2: 5},
	}
	_, err := Resolve(sets, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSet)
}

func TestResolveRejectsSetsAfterClinch(t *testing.T) {
	sets := []models.Set{
		{Score1: 11, Score2: 5},
		{Score1: 11, Score2: 5},
		{Score1: 5, Score2: 11},
	}
	_, err := Resolve(sets, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSet)
}

func TestResolveRejectsNegativeScores(t *testing.T) {
	_, err := Resolve([]models.Set{{Score1: -1, Score2: 5}}, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSet)
}

func TestResolveTieBreakDecidesLevelSet(t *testing.T) {
	sets := []models.Set{
		{Score1: 10, Score2: 10, TieBreak: &models.TieBreak{Score1: 7, Score2: 5}},
		{Score1: 11, Score2: 6},
	}
	side, err := Resolve(sets, Rules{BestOf: 3})
	require.NoError(t, err)
	assert.Equal(t, Side1, side)
}

func TestResolveLevelSetWithoutTieBreak(t *testing.T) {
	_, err := Resolve([]models.Set{{Score1: 10, Score2: 10}}, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSet)
}

func TestResolveLevelTieBreak(t *testing.T) {
	sets := []models.Set{{Score1: 10, Score2: 10, TieBreak: &models.TieBreak{Score1: 7, Score2: 7}}}
	_, err := Resolve(sets, Rules{BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSet)
}

func TestResolveBestOfFive(t *testing.T) {
	sets := []models.Set{
		{Score1: 11, Score2: 5},
		{Score1: 5, Score2: 11},
		{Score1: 11, Score2: 5},
		{Score1: 5, Score2: 11},
		{Score1: 11, Score2: 9},
	}
	side, err := Resolve(sets, Rules{BestOf: 5})
	require.NoError(t, err)
	assert.Equal(t, Side1, side)
}
