// Package scoring maps a submitted sequence of set scores to a match
// outcome. It is pure and format-independent: the same rules apply to a
// knockout final and an americano rotation match.
package scoring

import (
	"errors"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

// Side identifies the winning side of a match, relative to slot order.
type Side int

const (
	SideNone Side = 0
	Side1    Side = 1
	Side2    Side = 2
)

var (
	// ErrNoSets rejects the degenerate zero-sets submission; it is invalid
	// input, not "undetermined".
	ErrNoSets = errors.New("result must contain at least one set")
	// ErrInvalidSet rejects malformed set scores before any other check.
	ErrInvalidSet = errors.New("invalid set score")
	// ErrIncompleteResult means the submitted sets cannot yet produce a
	// best-of majority; the caller submitted too few sets.
	ErrIncompleteResult = errors.New("submitted sets do not decide the match")
)

// Rules configures resolution. BestOf must be odd; zero means best of 3.
type Rules struct {
	BestOf int
}

// Resolve computes the winner of a match from its ordered sets. A side
// wins a set on the higher score; a level score needs the tie-break to
// decide it. A side wins the match by taking a majority of the best-of
// count. Sets past the clinching set are rejected as malformed.
func Resolve(sets []models.Set, rules Rules) (Side, error) {
	bestOf := rules.BestOf
	if bestOf == 0 {
		bestOf = 3
	}
	if bestOf < 1 || bestOf%2 == 0 {
		return SideNone, fmt.Errorf("best-of count must be a positive odd number, got %d", bestOf)
	}

	if len(sets) == 0 {
		return SideNone, ErrNoSets
	}
	if len(sets) > bestOf {
		return SideNone, fmt.Errorf("%w: %d sets submitted for a best-of-%d match", ErrInvalidSet, len(sets), bestOf)
	}

	need := bestOf/2 + 1
	var wins1, wins2 int
	for i, set := range sets {
		winner, err := setWinner(set)
		if err != nil {
			return SideNone, fmt.Errorf("set %d: %w", i+1, err)
		}
		if wins1 >= need || wins2 >= need {
			return SideNone, fmt.Errorf("%w: set %d played after the match was decided", ErrInvalidSet, i+1)
		}
		switch winner {
		case Side1:
			wins1++
		case Side2:
			wins2++
		}
	}

	switch {
	case wins1 >= need:
		return Side1, nil
	case wins2 >= need:
		return Side2, nil
	default:
		return SideNone, ErrIncompleteResult
	}
}

func setWinner(set models.Set) (Side, error) {
	if set.Score1 < 0 || set.Score2 < 0 {
		return SideNone, fmt.Errorf("%w: negative score", ErrInvalidSet)
	}
	switch {
	case set.Score1 > set.Score2:
		return Side1, nil
	case set.Score2 > set.Score1:
		return Side2, nil
	}
	// Level game score: the tie-break has to decide the set.
	tb := set.TieBreak
	if tb == nil {
		return SideNone, fmt.Errorf("%w: level score without a tie-break", ErrInvalidSet)
	}
	switch {
	case tb.Score1 > tb.Score2:
		return Side1, nil
	case tb.Score2 > tb.Score1:
		return Side2, nil
	default:
		return SideNone, fmt.Errorf("%w: level tie-break score", ErrInvalidSet)
	}
}
