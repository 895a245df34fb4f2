package brackets

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/clubpoint/bracket-system/models"
)

// SeedingPolicy decides how the registration snapshot is ordered into a
// seed sequence before a format generator consumes it.
type SeedingPolicy string

const (
	// SeedingManual uses the caller-supplied order verbatim.
	SeedingManual SeedingPolicy = "manual"
	// SeedingRandom shuffles uniformly; the caller may supply a seed for a
	// deterministic shuffle.
	SeedingRandom SeedingPolicy = "random"
	// SeedingRating orders by descending rating, ties broken by stable
	// input order. Teams without a rating sort last.
	SeedingRating SeedingPolicy = "rating"
)

func (p SeedingPolicy) Valid() bool {
	switch p {
	case SeedingManual, SeedingRandom, SeedingRating:
		return true
	}
	return false
}

// Seed orders teams into a seed sequence. The input slice is not modified.
// src may be nil for SeedingRandom, in which case the shuffle is not
// reproducible.
func Seed(teams []*models.Team, policy SeedingPolicy, src rand.Source) ([]*models.Team, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: found %d, minimum 2", ErrInsufficientEntrants, len(teams))
	}

	seeded := make([]*models.Team, len(teams))
	copy(seeded, teams)

	switch policy {
	case SeedingManual:
		// Caller order is the seed order.
	case SeedingRandom:
		var rnd *rand.Rand
		if src != nil {
			rnd = rand.New(src)
		} else {
			rnd = rand.New(rand.NewSource(rand.Int63()))
		}
		rnd.Shuffle(len(seeded), func(i, j int) {
			seeded[i], seeded[j] = seeded[j], seeded[i]
		})
	case SeedingRating:
		sort.SliceStable(seeded, func(i, j int) bool {
			ri, rj := seeded[i].Rating, seeded[j].Rating
			switch {
			case ri == nil && rj == nil:
				return false
			case rj == nil:
				return true
			case ri == nil:
				return false
			default:
				return *ri > *rj
			}
		})
	default:
		return nil, fmt.Errorf("unknown seeding policy %q", policy)
	}

	return seeded, nil
}

// seedOrder returns the standard bracket placement of seeds 1..size so that
// seed i meets seed size+1-i in round one and the top seeds cannot meet
// before the final. size must be a power of two.
func seedOrder(size int) []int {
	order := []int{1, 2}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		for _, s := range order {
			next = append(next, s, len(order)*2+1-s)
		}
		order = next
	}
	return order
}

// paddedSlots places the seeded entrants into a bye-padded bracket of the
// next power of two, in standard seed order. Byes land opposite the top
// seeds, so two byes can never meet in round one.
func paddedSlots(entrants []*models.Team) []SlotRef {
	size := 1
	for size < len(entrants) {
		size <<= 1
	}
	order := seedOrder(size)
	slots := make([]SlotRef, size)
	for pos, seed := range order {
		if seed <= len(entrants) {
			slots[pos] = teamRef(entrants[seed-1].ID)
		} else {
			slots[pos] = byeRef()
		}
	}
	return slots
}
