package brackets

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/clubpoint/bracket-system/models"
)

var (
	ErrInsufficientEntrants     = errors.New("not enough entrants for the requested format")
	ErrUnsupportedConfiguration = errors.New("no valid bracket structure for this format configuration")
)

// Settings are the per-division format knobs, stored as JSON on the
// division and parsed at generation time.
type Settings struct {
	// BestOf is the set count a match is played over (odd, default 3).
	BestOf int `json:"best_of"`
	// Rounds is the rotation count for americano; 0 means one full cycle.
	Rounds int `json:"rounds"`
	// ThirdPlace appends a consolation match fed by the semifinal losers
	// (single elimination only).
	ThirdPlace bool `json:"third_place"`
}

// ParseSettings decodes the division settings JSON, falling back to the
// defaults on absence or malformed input.
func ParseSettings(raw *string) Settings {
	settings := Settings{BestOf: 3}
	if raw == nil || *raw == "" {
		return settings
	}
	var parsed Settings
	if err := json.Unmarshal([]byte(*raw), &parsed); err != nil {
		return settings
	}
	if parsed.BestOf >= 1 && parsed.BestOf%2 == 1 {
		settings.BestOf = parsed.BestOf
	}
	if parsed.Rounds > 0 {
		settings.Rounds = parsed.Rounds
	}
	settings.ThirdPlace = parsed.ThirdPlace
	return settings
}

type GenerateParams struct {
	Division *models.Division
	// Entrants is the seeded sequence; order is significant.
	Entrants []*models.Team
	Settings Settings
}

// SlotRef is a structure-time slot: a concrete team, a reference to the
// winner/loser of another structure match, or a bye.
type SlotRef struct {
	TeamID    *int
	SourceUID *string
	Outcome   models.SlotOutcome
	Bye       bool
}

func teamRef(id int) SlotRef { return SlotRef{TeamID: &id} }

func byeRef() SlotRef { return SlotRef{Bye: true} }

func winnerOf(uid string) SlotRef {
	return SlotRef{SourceUID: &uid, Outcome: models.SlotOutcomeWinner}
}
func loserOf(uid string) SlotRef {
	return SlotRef{SourceUID: &uid, Outcome: models.SlotOutcomeLoser}
}

// StructureMatch is one generated match before persistence. UIDs are local
// to the structure ("W2M1", "L3M2", "GF") and resolved to database ids when
// the bracket is stored.
type StructureMatch struct {
	UID   string
	Round int
	Order int
	Stage models.MatchStage
	Slot1 SlotRef
	Slot2 SlotRef
}

type StructureRound struct {
	Number  int
	Label   string
	Matches []*StructureMatch
}

// Structure is a complete bracket skeleton. Source references only ever
// point at matches of earlier rounds, so rounds can be persisted in order.
type Structure struct {
	Rounds []*StructureRound
}

func (s *Structure) MatchCount() int {
	count := 0
	for _, r := range s.Rounds {
		count += len(r.Matches)
	}
	return count
}

// Generator produces the round/match skeleton for one format. Generators
// are deterministic: identical (entrant sequence, settings) inputs yield an
// identical structure.
type Generator interface {
	GenerateStructure(ctx context.Context, params GenerateParams) (*Structure, error)
	GetName() string
}

// ForFormat selects the generator for a format kind.
func ForFormat(format models.BracketFormat) (Generator, error) {
	switch format {
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatAmericano:
		return NewAmericanoGenerator(), nil
	default:
		return nil, ErrUnsupportedConfiguration
	}
}
