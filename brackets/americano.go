package brackets

import (
	"context"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

type AmericanoGenerator struct{}

func NewAmericanoGenerator() Generator {
	return &AmericanoGenerator{}
}

func (g *AmericanoGenerator) GetName() string {
	return "Americano"
}

// GenerateStructure builds a fixed number of independent rotation rounds.
// Pairings come from the same circle rotation as the round robin, which
// maximizes opponent variety: no pairing repeats within one full cycle of
// n-1 rotations. There is no progression between rounds; the final ranking
// is the aggregate standing over all finalized rotation matches.
//
// Settings.Rounds picks the rotation count (default: one full cycle).
// Asking for more rounds than a cycle simply continues rotating, so the
// schedule repeats with maximal spacing between rematches.
func (g *AmericanoGenerator) GenerateStructure(ctx context.Context, params GenerateParams) (*Structure, error) {
	entrants := params.Entrants
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: americano needs at least 2 entrants, found %d", ErrInsufficientEntrants, len(entrants))
	}

	circle := make([]*models.Team, len(entrants))
	copy(circle, entrants)
	if len(circle)%2 != 0 {
		circle = append(circle, nil) // sit-out marker
	}
	m := len(circle)

	rotations := params.Settings.Rounds
	if rotations <= 0 {
		rotations = m - 1
	}

	structure := &Structure{}
	for r := 1; r <= rotations; r++ {
		round := &StructureRound{
			Number: r,
			Label:  fmt.Sprintf("Rotation %d", r),
		}
		order := 0
		for i := 0; i < m/2; i++ {
			a, b := circle[i], circle[m-1-i]
			if a == nil || b == nil {
				continue
			}
			order++
			round.Matches = append(round.Matches, &StructureMatch{
				UID:   fmt.Sprintf("A%dM%d", r, order),
				Round: r,
				Order: order,
				Stage: models.MatchStageMain,
				Slot1: teamRef(a.ID),
				Slot2: teamRef(b.ID),
			})
		}
		structure.Rounds = append(structure.Rounds, round)

		circle = rotateCircle(circle)
	}

	return structure, nil
}
