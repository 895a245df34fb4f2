package brackets

import (
	"context"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateStructure builds a single round-robin using the circle method:
// one entrant stays fixed while the rest rotate, which guarantees every
// entrant plays at most once per round and everyone exactly once overall.
// With an odd entrant count the rotating bye sits one team out per round;
// no match row is produced for the sit-out.
func (g *RoundRobinGenerator) GenerateStructure(ctx context.Context, params GenerateParams) (*Structure, error) {
	entrants := params.Entrants
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2 entrants, found %d", ErrInsufficientEntrants, len(entrants))
	}

	circle := make([]*models.Team, len(entrants))
	copy(circle, entrants)
	if len(circle)%2 != 0 {
		circle = append(circle, nil) // sit-out marker
	}
	m := len(circle)

	structure := &Structure{}
	for r := 1; r < m; r++ {
		round := &StructureRound{
			Number: r,
			Label:  fmt.Sprintf("Round %d", r),
		}
		order := 0
		for i := 0; i < m/2; i++ {
			a, b := circle[i], circle[m-1-i]
			if a == nil || b == nil {
				continue
			}
			order++
			round.Matches = append(round.Matches, &StructureMatch{
				UID:   fmt.Sprintf("R%dM%d", r, order),
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

// rotateCircle keeps position 0 fixed and rotates everything else one step
// clockwise.
func rotateCircle(circle []*models.Team) []*models.Team {
	m := len(circle)
	rotated := make([]*models.Team, m)
	rotated[0] = circle[0]
	rotated[1] = circle[m-1]
	copy(rotated[2:], circle[1:m-1])
	return rotated
}
