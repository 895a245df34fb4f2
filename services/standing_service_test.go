package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpoint/bracket-system/models"
)

func intPtr(v int) *int { return &v }

func finalizedMatch(team1, team2, winner int, sets ...models.Set) *models.Match {
	return &models.Match{
		Slot1:    models.Slot{TeamID: &team1},
		Slot2:    models.Slot{TeamID: &team2},
		Status:   models.MatchStatusFinalized,
		Sets:     sets,
		WinnerID: &winner,
	}
}

func TestComputeStandingsRanksByPointsThenSets(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Bravo"},
		{ID: 3, Name: "Charlie"},
	}
	matches := []*models.Match{
		finalizedMatch(1, 2, 1, models.Set{Score1: 11, Score2: 5}, models.Set{Score1: 11, Score2: 7}),
		finalizedMatch(1, 3, 1, models.Set{Score1: 11, Score2: 3}, models.Set{Score1: 11, Score2: 6}),
		finalizedMatch(2, 3, 2, models.Set{Score1: 11, Score2: 9}, models.Set{Score1: 5, Score2: 11}, models.Set{Score1: 11, Score2: 8}),
	}

	standings := ComputeStandings(teams, matches)
	require.Len(t, standings, 3)

	assert.Equal(t, 1, standings[0].TeamID)
	assert.Equal(t, 4, standings[0].Points)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 4, standings[0].SetsFor)
	assert.Equal(t, 0, standings[0].SetsAgainst)

	assert.Equal(t, 2, standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Points)
	assert.Equal(t, 2, standings[1].Rank)

	assert.Equal(t, 3, standings[2].TeamID)
	assert.Equal(t, 0, standings[2].Points)
	assert.Equal(t, 3, standings[2].Rank)
	assert.Equal(t, 2, standings[2].Losses)
}

func TestComputeStandingsSetDifferenceBreaksTies(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Bravo"},
		{ID: 3, Name: "Charlie"},
		{ID: 4, Name: "Delta"},
	}
	// 1 beats 2 in straight sets, 3 beats 4 in three; both winners sit on
	// one win but team 1 has the better set difference.
	matches := []*models.Match{
		finalizedMatch(1, 2, 1, models.Set{Score1: 11, Score2: 5}, models.Set{Score1: 11, Score2: 7}),
		finalizedMatch(3, 4, 3, models.Set{Score1: 11, Score2: 9}, models.Set{Score1: 5, Score2: 11}, models.Set{Score1: 11, Score2: 8}),
	}

	standings := ComputeStandings(teams, matches)
	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].TeamID)
	assert.Equal(t, 2, standings[0].SetDifference)
	assert.Equal(t, 3, standings[1].TeamID)
	assert.Equal(t, 1, standings[1].SetDifference)
}

func TestComputeStandingsIgnoresUnfinalizedAndByes(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Bravo"},
	}
	pendingMatch := &models.Match{
		Slot1:  models.Slot{TeamID: intPtr(1)},
		Slot2:  models.Slot{TeamID: intPtr(2)},
		Status: models.MatchStatusPending,
	}
	byeMatch := &models.Match{
		Slot1:    models.Slot{TeamID: intPtr(1)},
		Slot2:    models.Slot{Bye: true},
		Status:   models.MatchStatusFinalized,
		WinnerID: intPtr(1),
	}

	standings := ComputeStandings(teams, []*models.Match{pendingMatch, byeMatch})
	require.Len(t, standings, 2)
	for _, row := range standings {
		assert.Zero(t, row.MatchesPlayed)
		assert.Zero(t, row.Points)
	}
}

func TestComputeStandingsZeroMatches(t *testing.T) {
	teams := []*models.Team{
		{ID: 2, Name: "Bravo"},
		{ID: 1, Name: "Alpha"},
	}

	standings := ComputeStandings(teams, nil)
	require.Len(t, standings, 2)
	// All-zero rows fall back to team id order.
	assert.Equal(t, 1, standings[0].TeamID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestComputeStandingsTieBreakSetCounts(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Bravo"},
	}
	match := finalizedMatch(1, 2, 1,
		models.Set{Score1: 10, Score2: 10, TieBreak: &models.TieBreak{Score1: 7, Score2: 4}},
		models.Set{Score1: 11, Score2: 8},
	)

	standings := ComputeStandings(teams, []*models.Match{match})
	require.Len(t, standings, 2)
	assert.Equal(t, 2, standings[0].SetsFor)
	assert.Equal(t, 0, standings[0].SetsAgainst)
}
