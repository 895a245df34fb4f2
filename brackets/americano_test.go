package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpoint/bracket-system/models"
)

func TestAmericanoDefaultsToFullCycle(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D")

	structure, err := NewAmericanoGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
	})
	require.NoError(t, err)

	// One full cycle for 4 entrants is 3 rotations of 2 matches.
	require.Len(t, structure.Rounds, 3)
	for _, round := range structure.Rounds {
		assert.Len(t, round.Matches, 2)
		for _, m := range round.Matches {
			assert.Equal(t, models.MatchStageMain, m.Stage)
			assert.NotNil(t, m.Slot1.TeamID)
			assert.NotNil(t, m.Slot2.TeamID)
		}
	}

	// No pairing repeats within the cycle.
	seen := make(map[string]bool)
	for _, round := range structure.Rounds {
		for _, m := range round.Matches {
			key := pairKey(*m.Slot1.TeamID, *m.Slot2.TeamID)
			assert.False(t, seen[key], "pairing %s repeats", key)
			seen[key] = true
		}
	}
}

func TestAmericanoConfiguredRounds(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D", "E")

	structure, err := NewAmericanoGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
		Settings: Settings{Rounds: 2},
	})
	require.NoError(t, err)

	require.Len(t, structure.Rounds, 2)
	assert.Equal(t, "Rotation 1", structure.Rounds[0].Label)
	assert.Equal(t, "Rotation 2", structure.Rounds[1].Label)

	// Odd entrant count sits one team out per rotation.
	for _, round := range structure.Rounds {
		assert.Len(t, round.Matches, 2)
	}
}

func TestAmericanoRoundsBeyondCycleKeepRotating(t *testing.T) {
	entrants := makeTeams("A", "B", "C", "D")

	structure, err := NewAmericanoGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: entrants,
		Settings: Settings{Rounds: 5},
	})
	require.NoError(t, err)

	require.Len(t, structure.Rounds, 5)
	// Rotation 4 wraps around to the rotation 1 pairings.
	r1 := structure.Rounds[0]
	r4 := structure.Rounds[3]
	for i := range r1.Matches {
		assert.Equal(t, *r1.Matches[i].Slot1.TeamID, *r4.Matches[i].Slot1.TeamID)
		assert.Equal(t, *r1.Matches[i].Slot2.TeamID, *r4.Matches[i].Slot2.TeamID)
	}
}

func TestAmericanoRejectsSingleEntrant(t *testing.T) {
	_, err := NewAmericanoGenerator().GenerateStructure(context.Background(), GenerateParams{
		Entrants: makeTeams("A"),
	})
	assert.ErrorIs(t, err, ErrInsufficientEntrants)
}
