package models

import "time"

// BracketFormat enumerates the supported competition formats.
type BracketFormat string

const (
	FormatRoundRobin        BracketFormat = "round_robin"
	FormatSingleElimination BracketFormat = "single_elimination"
	FormatDoubleElimination BracketFormat = "double_elimination"
	FormatAmericano         BracketFormat = "americano"
)

func (f BracketFormat) Valid() bool {
	switch f {
	case FormatRoundRobin, FormatSingleElimination, FormatDoubleElimination, FormatAmericano:
		return true
	}
	return false
}

// BracketLockState reflects whether the bracket structure may still change.
// Generation locks the bracket in the same transaction that creates it, so
// no caller ever observes an open bracket.
type BracketLockState string

const (
	BracketLockOpen   BracketLockState = "open"
	BracketLockLocked BracketLockState = "locked"
)

// Bracket is the generated round/match structure for exactly one division.
// Once locked, only match results may change; round and match wiring is
// immutable.
type Bracket struct {
	ID          int              `json:"id" db:"id"`
	DivisionID  int              `json:"division_id" db:"division_id"`
	Format      BracketFormat    `json:"format" db:"format"`
	LockState   BracketLockState `json:"lock_state" db:"lock_state"`
	GeneratedAt time.Time        `json:"generated_at" db:"generated_at"`

	Rounds []*Round `json:"rounds" db:"-"`
}

// Round is one ordered stage within a bracket.
type Round struct {
	ID        int    `json:"id" db:"id"`
	BracketID int    `json:"bracket_id" db:"bracket_id"`
	Number    int    `json:"number" db:"number"`
	Label     string `json:"label" db:"label"`

	Matches []*Match `json:"matches" db:"-"`
}
