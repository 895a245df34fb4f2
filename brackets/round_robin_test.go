package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairKey(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func TestRoundRobinEveryPairExactlyOnce(t *testing.T) {
	for _, n := range []int{2, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			names := make([]string, n)
			for i := range names {
				names[i] = fmt.Sprintf("T%d", i+1)
			}
			entrants := makeTeams(names...)

			structure, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{
				Entrants: entrants,
			})
			require.NoError(t, err)

			assert.Equal(t, n*(n-1)/2, structure.MatchCount())

			seen := make(map[string]int)
			for _, round := range structure.Rounds {
				perRound := make(map[int]bool)
				for _, m := range round.Matches {
					require.NotNil(t, m.Slot1.TeamID)
					require.NotNil(t, m.Slot2.TeamID)
					a, b := *m.Slot1.TeamID, *m.Slot2.TeamID
					seen[pairKey(a, b)]++

					// At most one appearance per team per round.
					assert.False(t, perRound[a], "team %d plays twice in round %d", a, round.Number)
					assert.False(t, perRound[b], "team %d plays twice in round %d", b, round.Number)
					perRound[a], perRound[b] = true, true
				}
			}
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %s", pair)
			}
		})
	}
}

func TestRoundRobinRoundCount(t *testing.T) {
	// Even n plays n-1 rounds, odd n plays n rounds with one sit-out each.
	even, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: makeTeams("A", "B", "C", "D"),
	})
	require.NoError(t, err)
	assert.Len(t, even.Rounds, 3)

	odd, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: makeTeams("A", "B", "C", "D", "E"),
	})
	require.NoError(t, err)
	assert.Len(t, odd.Rounds, 5)
	for _, round := range odd.Rounds {
		assert.Len(t, round.Matches, 2)
	}
}

func TestRoundRobinDeterministic(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D", "E", "F")

	first, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{Entrants: entrants})
	require.NoError(t, err)
	second, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{Entrants: entrants})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoundRobinRejectsSingleEntrant(t *testing.T) {
	_, err := NewRoundRobinGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: makeTeams("A"),
	})
	assert.ErrorIs(t, err, ErrInsufficientEntrants)
}
