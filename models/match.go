package models

import "time"

// MatchStatus is the match result lifecycle.
//
//	pending:   no result submitted yet
//	reported:  sets submitted and a winner computed, not yet finalized
//	finalized: winner locked in and propagated downstream
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusReported  MatchStatus = "reported"
	MatchStatusFinalized MatchStatus = "finalized"
)

// MatchStage distinguishes the sections of a double-elimination bracket.
// Matches of every other format carry MatchStageMain.
type MatchStage string

const (
	MatchStageMain            MatchStage = "main"
	MatchStageWinners         MatchStage = "winners"
	MatchStageLosers          MatchStage = "losers"
	MatchStageGrandFinal      MatchStage = "grand_final"
	MatchStageGrandFinalReset MatchStage = "grand_final_reset"
	MatchStageConsolation     MatchStage = "consolation"
)

// SlotOutcome says which side of a source match feeds a slot.
type SlotOutcome string

const (
	SlotOutcomeWinner SlotOutcome = "winner"
	SlotOutcomeLoser  SlotOutcome = "loser"
)

// Slot is one side of a match: either a concrete team, a forward reference
// to the winner/loser of an earlier match, or a bye marker.
type Slot struct {
	TeamID        *int         `json:"team_id,omitempty" db:"team_id"`
	SourceMatchID *int         `json:"source_match_id,omitempty" db:"source_match_id"`
	SourceOutcome *SlotOutcome `json:"source_outcome,omitempty" db:"source_outcome"`
	Bye           bool         `json:"bye,omitempty" db:"bye"`
}

// TieBreak carries the tie-break points of a set whose game score is level.
type TieBreak struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// Set is one scored game within a match. A match's sets are always replaced
// as a whole batch on submission, never patched individually.
type Set struct {
	Score1   int       `json:"score1"`
	Score2   int       `json:"score2"`
	TieBreak *TieBreak `json:"tie_break,omitempty"`
}

// Match is the atomic contest. Slot wiring is immutable after generation;
// only status, sets, winner, corrected and version mutate afterwards.
// Version is a monotonic counter used purely for optimistic concurrency.
type Match struct {
	ID        int         `json:"id" db:"id"`
	BracketID int         `json:"bracket_id" db:"bracket_id"`
	RoundID   int         `json:"round_id" db:"round_id"`
	Position  int         `json:"position" db:"position"`
	Stage     MatchStage  `json:"stage" db:"stage"`
	Slot1     Slot        `json:"slot1"`
	Slot2     Slot        `json:"slot2"`
	Status    MatchStatus `json:"status" db:"status"`
	Sets      []Set       `json:"sets"`
	WinnerID  *int        `json:"winner_id,omitempty" db:"winner_team_id"`
	Corrected bool        `json:"corrected" db:"corrected"`
	Version   int         `json:"version" db:"version"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// LoserID returns the concrete loser of a decided match, nil for byes and
// undecided matches.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil {
		return nil
	}
	if m.Slot1.TeamID != nil && *m.Slot1.TeamID != *m.WinnerID {
		return m.Slot1.TeamID
	}
	if m.Slot2.TeamID != nil && *m.Slot2.TeamID != *m.WinnerID {
		return m.Slot2.TeamID
	}
	return nil
}

// IsBye reports whether the match was created with a bye on either side.
func (m *Match) IsBye() bool {
	return m.Slot1.Bye || m.Slot2.Bye
}
