package brackets

import (
	"context"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateStructure builds a knockout tree from the seeded, bye-padded
// sequence. Round one pairs adjacent padded slots; every later slot is a
// winner reference into the previous round, so the whole structure is a
// forward-reference graph that the progression engine resolves as results
// arrive. Bye matches are real matches (one team, one bye) and are
// auto-finalized when the bracket is stored.
func (g *SingleEliminationGenerator) GenerateStructure(ctx context.Context, params GenerateParams) (*Structure, error) {
	entrants := params.Entrants
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: single elimination needs at least 2 entrants, found %d", ErrInsufficientEntrants, len(entrants))
	}

	slots := paddedSlots(entrants)
	numRounds := 0
	for size := len(slots); size > 1; size /= 2 {
		numRounds++
	}

	structure := &Structure{}
	current := slots
	var semifinals []*StructureMatch

	for r := 1; r <= numRounds; r++ {
		round := &StructureRound{
			Number: r,
			Label:  eliminationRoundLabel(r, numRounds),
		}
		next := make([]SlotRef, 0, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			uid := fmt.Sprintf("R%dM%d", r, i/2+1)
			match := &StructureMatch{
				UID:   uid,
				Round: r,
				Order: i/2 + 1,
				Stage: models.MatchStageMain,
				Slot1: current[i],
				Slot2: current[i+1],
			}
			round.Matches = append(round.Matches, match)
			next = append(next, winnerOf(uid))
			if r == numRounds-1 {
				semifinals = append(semifinals, match)
			}
		}
		structure.Rounds = append(structure.Rounds, round)
		current = next
	}

	if params.Settings.ThirdPlace && len(semifinals) == 2 {
		final := structure.Rounds[len(structure.Rounds)-1]
		final.Matches = append(final.Matches, &StructureMatch{
			UID:   "CONS",
			Round: numRounds,
			Order: len(final.Matches) + 1,
			Stage: models.MatchStageConsolation,
			Slot1: dropRef(semifinals[0]),
			Slot2: dropRef(semifinals[1]),
		})
	}

	return structure, nil
}

// dropRef is the loser side of a match: a real loser reference, or a bye
// when the match itself is a bye and produces no loser.
func dropRef(m *StructureMatch) SlotRef {
	if m.Slot1.Bye || m.Slot2.Bye {
		return byeRef()
	}
	return loserOf(m.UID)
}

func eliminationRoundLabel(r, numRounds int) string {
	switch numRounds - r {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round %d", r)
	}
}
