package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/clubpoint/bracket-system/models"
	"github.com/clubpoint/bracket-system/repositories"
	"github.com/clubpoint/bracket-system/scoring"
)

const pointsPerWin = 2

type StandingService interface {
	// GetByDivision recomputes standings from the finalized matches of a
	// round-robin or americano bracket. Standings are derived state; they
	// are never stored.
	GetByDivision(ctx context.Context, divisionID int) ([]models.Standing, error)
}

type standingService struct {
	divisionRepo repositories.DivisionRepository
	teamRepo     repositories.TeamRepository
	bracketRepo  repositories.BracketRepository
	matchRepo    repositories.MatchRepository
}

func NewStandingService(
	divisionRepo repositories.DivisionRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
) StandingService {
	return &standingService{
		divisionRepo: divisionRepo,
		teamRepo:     teamRepo,
		bracketRepo:  bracketRepo,
		matchRepo:    matchRepo,
	}
}

func (s *standingService) GetByDivision(ctx context.Context, divisionID int) ([]models.Standing, error) {
	division, err := s.divisionRepo.GetByID(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}
	if division.Format != models.FormatRoundRobin && division.Format != models.FormatAmericano {
		return nil, fmt.Errorf("%w: standings apply to round robin and americano only", ErrUnsupportedConfiguration)
	}

	teams, err := s.teamRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	var matches []*models.Match
	bracket, err := s.bracketRepo.GetByDivision(ctx, divisionID)
	switch {
	case err == nil:
		matches, err = s.matchRepo.ListByBracket(ctx, nil, bracket.ID)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrBracketNotFound):
		// Ungenerated division: everyone at zero.
	default:
		return nil, err
	}

	return ComputeStandings(teams, matches), nil
}

// ComputeStandings tallies finalized matches into per-team rows and ranks
// them by points, then wins, then set difference, then sets won, with team
// id as the final stable tiebreak.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []models.Standing {
	rows := make(map[int]*models.Standing, len(teams))
	for _, t := range teams {
		rows[t.ID] = &models.Standing{TeamID: t.ID, TeamName: t.Name}
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusFinalized || m.IsBye() {
			continue
		}
		if m.Slot1.TeamID == nil || m.Slot2.TeamID == nil || m.WinnerID == nil {
			continue
		}
		row1, ok1 := rows[*m.Slot1.TeamID]
		row2, ok2 := rows[*m.Slot2.TeamID]
		if !ok1 || !ok2 {
			continue
		}

		row1.MatchesPlayed++
		row2.MatchesPlayed++
		if *m.WinnerID == *m.Slot1.TeamID {
			row1.Wins++
			row2.Losses++
		} else {
			row2.Wins++
			row1.Losses++
		}

		for _, set := range m.Sets {
			switch setTaker(set) {
			case scoring.Side1:
				row1.SetsFor++
				row2.SetsAgainst++
			case scoring.Side2:
				row2.SetsFor++
				row1.SetsAgainst++
			}
		}
	}

	standings := make([]models.Standing, 0, len(rows))
	for _, row := range rows {
		row.Points = row.Wins * pointsPerWin
		row.SetDifference = row.SetsFor - row.SetsAgainst
		standings = append(standings, *row)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.SetDifference != b.SetDifference {
			return a.SetDifference > b.SetDifference
		}
		if a.SetsFor != b.SetsFor {
			return a.SetsFor > b.SetsFor
		}
		return a.TeamID < b.TeamID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// setTaker is a tolerant per-set winner: malformed sets cannot exist on a
// finalized match, but a level set without tie-break counts for neither side.
func setTaker(set models.Set) scoring.Side {
	switch {
	case set.Score1 > set.Score2:
		return scoring.Side1
	case set.Score2 > set.Score1:
		return scoring.Side2
	case set.TieBreak != nil && set.TieBreak.Score1 > set.TieBreak.Score2:
		return scoring.Side1
	case set.TieBreak != nil && set.TieBreak.Score2 > set.TieBreak.Score1:
		return scoring.Side2
	default:
		return scoring.SideNone
	}
}
