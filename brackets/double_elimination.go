package brackets

import (
	"context"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateStructure builds the winners bracket as a knockout tree, then
// threads every winners-bracket loser into the losers bracket with the
// standard alternation: each losers round that absorbs a fresh batch of
// droppers is followed by a consolidation round among the survivors. The
// dropper order is reversed on entry so teams that just met in the winners
// bracket cannot meet again immediately. The grand final pairs the two
// bracket champions; the decisive reset match is not part of the structure,
// it is created on demand when the losers-bracket champion takes the grand
// final.
//
// Byes thread through the losers bracket as pass-throughs: a pairing with
// one bye side advances the other side without a match, a pairing of two
// byes advances a bye.
func (g *DoubleEliminationGenerator) GenerateStructure(ctx context.Context, params GenerateParams) (*Structure, error) {
	entrants := params.Entrants
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: double elimination needs at least 2 entrants, found %d", ErrInsufficientEntrants, len(entrants))
	}

	slots := paddedSlots(entrants)
	numRounds := 0
	for size := len(slots); size > 1; size /= 2 {
		numRounds++
	}

	b := &deBuilder{structure: &Structure{}}

	// Winners bracket.
	current := slots
	winnersRounds := make([][]*StructureMatch, 0, numRounds)
	for r := 1; r <= numRounds; r++ {
		b.round++
		round := &StructureRound{
			Number: b.round,
			Label:  winnersRoundLabel(r, numRounds),
		}
		next := make([]SlotRef, 0, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			uid := fmt.Sprintf("W%dM%d", r, i/2+1)
			match := &StructureMatch{
				UID:   uid,
				Round: b.round,
				Order: i/2 + 1,
				Stage: models.MatchStageWinners,
				Slot1: current[i],
				Slot2: current[i+1],
			}
			round.Matches = append(round.Matches, match)
			next = append(next, winnerOf(uid))
		}
		b.structure.Rounds = append(b.structure.Rounds, round)
		winnersRounds = append(winnersRounds, round.Matches)
		current = next
	}
	winnersChampion := current[0]

	// Losers bracket.
	var survivors []SlotRef
	for r := 1; r <= numRounds; r++ {
		drops := make([]SlotRef, 0, len(winnersRounds[r-1]))
		for _, m := range winnersRounds[r-1] {
			drops = append(drops, dropRef(m))
		}

		if r == 1 {
			survivors = drops
		} else {
			// Entry round: survivors meet the fresh droppers, reversed.
			for i, j := 0, len(drops)-1; i < j; i, j = i+1, j-1 {
				drops[i], drops[j] = drops[j], drops[i]
			}
			survivors = b.addLosersRound(zip(survivors, drops))
		}
		if r < numRounds && len(survivors) >= 2 {
			// Consolidation round among losers-bracket survivors.
			survivors = b.addLosersRound(adjacentPairs(survivors))
		}
	}
	if len(survivors) != 1 {
		return nil, fmt.Errorf("losers bracket did not converge to a single champion (got %d nodes)", len(survivors))
	}
	losersChampion := survivors[0]

	// Grand final.
	b.round++
	b.structure.Rounds = append(b.structure.Rounds, &StructureRound{
		Number: b.round,
		Label:  "Grand Final",
		Matches: []*StructureMatch{{
			UID:   "GF",
			Round: b.round,
			Order: 1,
			Stage: models.MatchStageGrandFinal,
			Slot1: winnersChampion,
			Slot2: losersChampion,
		}},
	})

	return b.structure, nil
}

type deBuilder struct {
	structure *Structure
	round     int
	lbRounds  int
}

// addLosersRound materializes matches for the given pairings. Pairings with
// a bye side produce no match; the non-bye side passes through. The round
// is emitted only when it contains at least one match.
func (b *deBuilder) addLosersRound(pairs [][2]SlotRef) []SlotRef {
	out := make([]SlotRef, 0, len(pairs))
	var contested [][2]SlotRef
	for _, p := range pairs {
		switch {
		case p[0].Bye && p[1].Bye:
			out = append(out, byeRef())
		case p[0].Bye:
			out = append(out, p[1])
		case p[1].Bye:
			out = append(out, p[0])
		default:
			contested = append(contested, p)
			out = append(out, SlotRef{}) // patched below
		}
	}
	if len(contested) == 0 {
		return out
	}

	b.lbRounds++
	b.round++
	round := &StructureRound{
		Number: b.round,
		Label:  fmt.Sprintf("Losers Round %d", b.lbRounds),
	}
	matchIdx := 0
	for i := range out {
		if out[i].TeamID != nil || out[i].SourceUID != nil || out[i].Bye {
			continue
		}
		p := contested[matchIdx]
		matchIdx++
		uid := fmt.Sprintf("L%dM%d", b.lbRounds, matchIdx)
		round.Matches = append(round.Matches, &StructureMatch{
			UID:   uid,
			Round: b.round,
			Order: matchIdx,
			Stage: models.MatchStageLosers,
			Slot1: p[0],
			Slot2: p[1],
		})
		out[i] = winnerOf(uid)
	}
	b.structure.Rounds = append(b.structure.Rounds, round)
	return out
}

func zip(a, b []SlotRef) [][2]SlotRef {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	pairs := make([][2]SlotRef, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]SlotRef{a[i], b[i]})
	}
	return pairs
}

func adjacentPairs(refs []SlotRef) [][2]SlotRef {
	pairs := make([][2]SlotRef, 0, len(refs)/2)
	for i := 0; i+1 < len(refs); i += 2 {
		pairs = append(pairs, [2]SlotRef{refs[i], refs[i+1]})
	}
	if len(refs)%2 != 0 {
		// Odd survivor advances unpaired.
		pairs = append(pairs, [2]SlotRef{refs[len(refs)-1], byeRef()})
	}
	return pairs
}

func winnersRoundLabel(r, numRounds int) string {
	if r == numRounds {
		return "Winners Final"
	}
	return fmt.Sprintf("Winners Round %d", r)
}
