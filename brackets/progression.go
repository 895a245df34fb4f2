package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/clubpoint/bracket-system/models"
)

// ErrPropagationConflict is the deliberate safety stop: a corrected result
// would overwrite a slot of a match that is already finalized. Resolution
// is administrative, never automatic.
var ErrPropagationConflict = errors.New("propagation reached an already finalized match")

// Advance writes the winner (and loser, where a slot asks for one) of the
// finalized src match into every downstream slot that references it, then
// follows the consequences: a destination left with a concrete team against
// a bye is finalized in turn and its own winner advanced.
//
// matches must hold every match of the bracket, src included. Matches are
// mutated in place; the returned slice lists every match other than src
// whose fields changed, deduplicated, in id order. The caller owns
// persistence and version bumps.
//
// Propagation is idempotent per edge: writing a value already present is a
// no-op. Writing a different value (a correction) supersedes it while the
// destination is still pending or reported; a reported destination loses
// its provisional result, since it referred to a team no longer in the
// match. If the destination is already finalized, Advance fails with
// ErrPropagationConflict and the caller must roll back.
func Advance(matches []*models.Match, src *models.Match) ([]*models.Match, error) {
	if src.WinnerID == nil {
		return nil, fmt.Errorf("cannot advance match %d without a winner", src.ID)
	}

	changed := make(map[int]*models.Match)
	queue := []*models.Match{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dst := range matches {
			slots := [2]*models.Slot{&dst.Slot1, &dst.Slot2}
			for i, slot := range slots {
				if slot.SourceMatchID == nil || *slot.SourceMatchID != cur.ID {
					continue
				}

				team := cur.WinnerID
				if slot.SourceOutcome != nil && *slot.SourceOutcome == models.SlotOutcomeLoser {
					team = cur.LoserID()
				}
				if team == nil {
					// Loser of a bye pairing: the slot resolves to a bye.
					if !slot.Bye {
						slot.Bye = true
						changed[dst.ID] = dst
					}
				} else {
					if slot.TeamID != nil && *slot.TeamID == *team {
						continue // idempotent edge
					}
					if dst.Status == models.MatchStatusFinalized {
						return nil, fmt.Errorf("%w: match %d, slot %d", ErrPropagationConflict, dst.ID, i+1)
					}
					if dst.Status == models.MatchStatusReported {
						// The provisional result referred to a superseded
						// team; it has to be re-reported.
						dst.Status = models.MatchStatusPending
						dst.Sets = nil
						dst.WinnerID = nil
					}
					teamID := *team
					slot.TeamID = &teamID
					changed[dst.ID] = dst
				}

				if resolveBye(dst) {
					changed[dst.ID] = dst
					queue = append(queue, dst)
				}
			}
		}
	}

	out := make([]*models.Match, 0, len(changed))
	for id, m := range changed {
		if id == src.ID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FinalizeByes auto-finalizes every pending bye match (one concrete team
// against a bye) and propagates the advancing teams. It runs once at
// generation time, before the stored bracket is visible to anyone. The
// returned slice holds every changed match in id order, byes included.
func FinalizeByes(matches []*models.Match) ([]*models.Match, error) {
	changed := make(map[int]*models.Match)
	for _, m := range matches {
		if !resolveBye(m) {
			continue
		}
		changed[m.ID] = m
		downstream, err := Advance(matches, m)
		if err != nil {
			return nil, err
		}
		for _, d := range downstream {
			changed[d.ID] = d
		}
	}
	out := make([]*models.Match, 0, len(changed))
	for _, m := range changed {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// resolveBye finalizes a pending match whose slots have settled into a
// concrete team against a bye. Returns true when the match was finalized.
func resolveBye(m *models.Match) bool {
	if m.Status != models.MatchStatusPending {
		return false
	}
	var winner *int
	switch {
	case m.Slot1.TeamID != nil && m.Slot2.Bye:
		winner = m.Slot1.TeamID
	case m.Slot2.TeamID != nil && m.Slot1.Bye:
		winner = m.Slot2.TeamID
	default:
		return false
	}
	m.Status = models.MatchStatusFinalized
	m.WinnerID = winner
	return true
}
