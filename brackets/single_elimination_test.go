package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpoint/bracket-system/models"
)

func TestSingleEliminationFourTeams(t *testing.T) {
	// Teams in seed order A, B, C, D: round one pairs seed 1 vs 4 and
	// seed 2 vs 3, the final takes the two winners.
	entrants := makeTeams("A", "B", "C", "D")

	structure, err := NewSingleEliminationGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
	})
	require.NoError(t, err)

	require.Len(t, structure.Rounds, 2)
	assert.Equal(t, 3, structure.MatchCount())

	r1 := structure.Rounds[0]
	assert.Equal(t, "Semifinals", r1.Label)
	require.Len(t, r1.Matches, 2)
	assert.Equal(t, 1, *r1.Matches[0].Slot1.TeamID) // A
	assert.Equal(t, 4, *r1.Matches[0].Slot2.TeamID) // D
	assert.Equal(t, 2, *r1.Matches[1].Slot1.TeamID) // B
	assert.Equal(t, 3, *r1.Matches[1].Slot2.TeamID) // C

	final := structure.Rounds[1]
	assert.Equal(t, "Final", final.Label)
	require.Len(t, final.Matches, 1)
	gf := final.Matches[0]
	require.NotNil(t, gf.Slot1.SourceUID)
	require.NotNil(t, gf.Slot2.SourceUID)
	assert.Equal(t, r1.Matches[0].UID, *gf.Slot1.SourceUID)
	assert.Equal(t, r1.Matches[1].UID, *gf.Slot2.SourceUID)
	assert.Equal(t, models.SlotOutcomeWinner, gf.Slot1.Outcome)
	assert.Equal(t, models.SlotOutcomeWinner, gf.Slot2.Outcome)
}

func TestSingleEliminationFiveTeamsWithByes(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D", "E")

	structure, err := NewSingleEliminationGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
	})
	require.NoError(t, err)

	// Padded to a bracket of 8: three rounds, seeds 1-3 drawing byes in
	// round one and seeds 4 and 5 playing the only contested match.
	require.Len(t, structure.Rounds, 3)
	assert.Equal(t, 7, structure.MatchCount())

	real, byes := 0, 0
	for _, m := range structure.Rounds[0].Matches {
		if m.Slot1.Bye || m.Slot2.Bye {
			byes++
		} else {
			real++
		}
	}
	assert.Equal(t, 1, real)
	assert.Equal(t, 3, byes)

	assert.Len(t, structure.Rounds[1].Matches, 2)
	assert.Len(t, structure.Rounds[2].Matches, 1)
	assert.Equal(t, "Final", structure.Rounds[2].Label)
}

func TestSingleEliminationPowerOfTwoMatchCount(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('A' + i%26))
		}
		entrants := make([]*models.Team, n)
		for i := range entrants {
			entrants[i] = &models.Team{ID: i + 1, Name: names[i]}
		}

		structure, err := NewSingleEliminationGenerator().GenerateStructure(context.Background(), GenerateParams{
			Entrants: entrants,
		})
		require.NoError(t, err)
		assert.Equal(t, n-1, structure.MatchCount(), "n=%d", n)
	}
}

func TestSingleEliminationThirdPlaceMatch(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D")

	structure, err := NewSingleEliminationGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
		Settings: Settings{ThirdPlace: true},
	})
	require.NoError(t, err)

	final := structure.Rounds[len(structure.Rounds)-1]
	require.Len(t, final.Matches, 2)

	cons := final.Matches[1]
	assert.Equal(t, models.MatchStageConsolation, cons.Stage)
	require.NotNil(t, cons.Slot1.SourceUID)
	require.NotNil(t, cons.Slot2.SourceUID)
	assert.Equal(t, models.SlotOutcomeLoser, cons.Slot1.Outcome)
	assert.Equal(t, models.SlotOutcomeLoser, cons.Slot2.Outcome)
}

func TestSingleEliminationSourcesPointBackward(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D", "E", "F", "G")

	structure, err := NewSingleEliminationGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, round := range structure.Rounds {
		for _, m := range round.Matches {
			for _, slot := range []SlotRef{m.Slot1, m.Slot2} {
				if slot.SourceUID != nil {
					assert.True(t, seen[*slot.SourceUID], "match %s references %s before it exists", m.UID, *slot.SourceUID)
				}
			}
		}
		for _, m := range round.Matches {
			seen[m.UID] = true
		}
	}
}
